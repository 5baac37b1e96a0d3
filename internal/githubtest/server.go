// Package githubtest runs an in-process fake of the GitHub repository
// contents API for tests.
package githubtest

import (
	"net/http/httptest"

	"github.com/shaun/repopush/internal/github"
)

// Server serves GET and PUT /repos/{owner}/{repo}/contents/{path} for one
// repository and accepts only the given bearer token.
type Server struct {
	*httptest.Server
	store *store
}

func NewServer(owner, repo, token string) *Server {
	s := &Server{store: newStore()}
	h := &handler{owner: owner, repo: repo, store: s.store}
	s.Server = httptest.NewServer(newRouter(h, token))
	return s
}

// Seed stores content at path on branch and returns its blob sha.
func (s *Server) Seed(branch, path string, content []byte) string {
	f := &File{Path: path, Content: content, SHA: github.BlobSHA(content)}
	s.store.put(branch, f)
	return f.SHA
}

// File returns what is stored at path on branch.
func (s *Server) File(branch, path string) (File, bool) {
	f, ok := s.store.get(branch, path)
	if !ok {
		return File{}, false
	}
	return *f, true
}

// FailProbe makes GETs of path answer status with message.
func (s *Server) FailProbe(path string, status int, message string) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	s.store.probeFail[path] = failure{status: status, message: message}
}

// FailPut makes PUTs to path answer status with message.
func (s *Server) FailPut(path string, status int, message string) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	s.store.putFail[path] = failure{status: status, message: message}
}

// Requests returns every request received so far, in order.
func (s *Server) Requests() []Request {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	out := make([]Request, len(s.store.requests))
	copy(out, s.store.requests)
	return out
}

// Puts returns only the write requests.
func (s *Server) Puts() []Request {
	var out []Request
	for _, r := range s.Requests() {
		if r.Method == "PUT" {
			out = append(out, r)
		}
	}
	return out
}
