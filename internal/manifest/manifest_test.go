package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	m, err := Default()
	require.NoError(t, err)
	require.NotEmpty(t, m.Tasks)
	for _, task := range m.Tasks {
		assert.NotEmpty(t, task.Path)
		assert.NotEmpty(t, task.Message)
	}
}

func TestParse_keepsOrder(t *testing.T) {
	m, err := Parse([]byte(`
files:
  - path: b.md
    message: " second "
  - path: dir/a.md
    message: first
`))
	require.NoError(t, err)
	assert.Equal(t, []Task{
		{Path: "b.md", Message: "second"},
		{Path: "dir/a.md", Message: "first"},
	}, m.Tasks)
}

func TestParse_invalid(t *testing.T) {
	tests := map[string]string{
		"empty":        ``,
		"no message":   "files:\n  - path: a.md\n",
		"no path":      "files:\n  - message: m\n",
		"absolute":     "files:\n  - path: /etc/passwd\n    message: m\n",
		"escapes root": "files:\n  - path: ../x\n    message: m\n",
		"unclean":      "files:\n  - path: a//b\n    message: m\n",
		"backslash":    "files:\n  - path: 'a\\b'\n    message: m\n",
		"duplicate":    "files:\n  - path: a\n    message: m\n  - path: a\n    message: n\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidTask), "got %v", err)
		})
	}
}

func TestParse_unknownField(t *testing.T) {
	_, err := Parse([]byte("files:\n  - path: a\n    msg: m\n"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidTask))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "push.yaml")
	require.NoError(t, os.WriteFile(f, []byte("files:\n  - path: a.md\n    message: add a\n"), 0o644))
	m, err := Load(f)
	require.NoError(t, err)
	assert.Equal(t, []Task{{Path: "a.md", Message: "add a"}}, m.Tasks)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
