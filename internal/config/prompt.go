package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompter fills in session values that were not configured by asking on
// the terminal, in the order owner, repo, branch, token.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
	// readSecret reads the token without echo; nil means read a plain line.
	readSecret func() (string, error)
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	p := &Prompter{in: bufio.NewReader(in), out: out}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())
		p.readSecret = func() (string, error) {
			b, err := term.ReadPassword(fd)
			fmt.Fprintln(out)
			return string(b), err
		}
	}
	return p
}

// Complete returns the session for s, prompting for anything left empty.
func (p *Prompter) Complete(s Settings) (Session, error) {
	sess := Session{
		Owner:  strings.TrimSpace(s.Owner),
		Repo:   strings.TrimSpace(s.Repo),
		Branch: strings.TrimSpace(s.Branch),
		Token:  strings.TrimSpace(s.Token),
		APIURL: strings.TrimSpace(s.APIURL),
	}
	var err error
	if sess.Owner == "" {
		if sess.Owner, err = p.ask("GitHub owner (user or organization): ", ""); err != nil {
			return Session{}, err
		}
	}
	if sess.Repo == "" {
		if sess.Repo, err = p.ask("Repository name: ", ""); err != nil {
			return Session{}, err
		}
	}
	if sess.Branch == "" {
		if sess.Branch, err = p.ask(fmt.Sprintf("Branch [%s]: ", DefaultBranch), DefaultBranch); err != nil {
			return Session{}, err
		}
	}
	if sess.Token == "" {
		if sess.Token, err = p.askSecret("Personal access token: "); err != nil {
			return Session{}, err
		}
	}
	if err := sess.Validate(); err != nil {
		return Session{}, err
	}
	return sess, nil
}

func (p *Prompter) ask(label, def string) (string, error) {
	fmt.Fprint(p.out, label)
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			if def != "" {
				fmt.Fprintln(p.out)
				return def, nil
			}
			return "", fmt.Errorf("%s %w: input closed", strings.TrimSuffix(strings.TrimSpace(label), ":"), ErrMissingValue)
		}
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return def, nil
	}
	return line, nil
}

func (p *Prompter) askSecret(label string) (string, error) {
	if p.readSecret == nil {
		return p.ask(label, "")
	}
	fmt.Fprint(p.out, label)
	v, err := p.readSecret()
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	return strings.TrimSpace(v), nil
}
