// Package manifest holds the list of files a run uploads.
package manifest

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultManifest []byte

// ErrInvalidTask is wrapped by every validation failure.
var ErrInvalidTask = errors.New("invalid task")

// Task is one local file and the commit message used to push it. Path is
// slash separated and names both the local file (under the root directory)
// and the destination in the repository.
type Task struct {
	Path    string `yaml:"path"`
	Message string `yaml:"message"`
}

type Manifest struct {
	Tasks []Task `yaml:"files"`
}

// Default returns the built-in manifest.
func Default() (Manifest, error) {
	return Parse(defaultManifest)
}

func Load(file string) (Manifest, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return Manifest{}, fmt.Errorf("%s: %w", file, err)
	}
	return m, nil
}

func Parse(data []byte) (Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return Manifest{}, fmt.Errorf("parse manifest: %w", err)
	}
	for i := range m.Tasks {
		m.Tasks[i].Path = strings.TrimSpace(m.Tasks[i].Path)
		m.Tasks[i].Message = strings.TrimSpace(m.Tasks[i].Message)
	}
	if err := m.Validate(); err != nil {
		return Manifest{}, err
	}
	return m, nil
}

func (m Manifest) Validate() error {
	if len(m.Tasks) == 0 {
		return fmt.Errorf("%w: manifest lists no files", ErrInvalidTask)
	}
	seen := make(map[string]int, len(m.Tasks))
	for i, t := range m.Tasks {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("files[%d]: %w", i, err)
		}
		if j, dup := seen[t.Path]; dup {
			return fmt.Errorf("files[%d]: %w: %s duplicates files[%d]", i, ErrInvalidTask, t.Path, j)
		}
		seen[t.Path] = i
	}
	return nil
}

func (t Task) Validate() error {
	switch {
	case t.Path == "":
		return fmt.Errorf("%w: empty path", ErrInvalidTask)
	case t.Message == "":
		return fmt.Errorf("%w: %s: empty commit message", ErrInvalidTask, t.Path)
	case strings.Contains(t.Path, `\`):
		return fmt.Errorf("%w: %s: use / as separator", ErrInvalidTask, t.Path)
	case path.IsAbs(t.Path):
		return fmt.Errorf("%w: %s: path must be relative", ErrInvalidTask, t.Path)
	case path.Clean(t.Path) != t.Path || t.Path == "." || t.Path == ".." || strings.HasPrefix(t.Path, "../"):
		return fmt.Errorf("%w: %s: path must be clean and stay under the root", ErrInvalidTask, t.Path)
	}
	return nil
}
