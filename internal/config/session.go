package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const (
	DefaultBranch = "main"
	DefaultAPIURL = "https://api.github.com/"
)

// ErrMissingValue is returned when a required session value is empty.
var ErrMissingValue = errors.New("missing required value")

// Session is the per-run GitHub target. It is built once and passed by value.
type Session struct {
	Owner  string
	Repo   string
	Branch string
	Token  string
	APIURL string
}

func (s Session) Validate() error {
	for _, f := range []struct{ name, val string }{
		{"owner", s.Owner},
		{"repo", s.Repo},
		{"branch", s.Branch},
		{"token", s.Token},
	} {
		if strings.TrimSpace(f.val) == "" {
			return fmt.Errorf("%s: %w", f.name, ErrMissingValue)
		}
	}
	if s.APIURL != "" {
		if _, err := s.BaseURL(); err != nil {
			return err
		}
	}
	return nil
}

// BaseURL returns the API root with a trailing slash, as go-github expects.
func (s Session) BaseURL() (*url.URL, error) {
	raw := s.APIURL
	if raw == "" {
		raw = DefaultAPIURL
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid api url %q: %w", raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api url %q: scheme and host required", raw)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u, nil
}

// HistoryURL links to the commit list of the target branch.
func (s Session) HistoryURL() string {
	web := "https://github.com"
	if u, err := s.BaseURL(); err == nil && u.Host != "api.github.com" {
		web = u.Scheme + "://" + u.Host
	}
	return fmt.Sprintf("%s/%s/%s/commits/%s", web, s.Owner, s.Repo, s.Branch)
}
