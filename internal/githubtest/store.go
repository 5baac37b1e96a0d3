package githubtest

import (
	"sync"
)

// File is one blob on one branch of the fake repository.
type File struct {
	Path    string
	Content []byte
	SHA     string
}

// Request is one call the fake API received.
type Request struct {
	Method        string
	Path          string
	Ref           string
	Authorization string
	Accept        string
	APIVersion    string
	Put           *PutRequest
	// RawBody is the undecoded PUT body, for checking which keys were sent.
	RawBody []byte
}

type failure struct {
	status  int
	message string
}

type store struct {
	mu        sync.Mutex
	files     map[string]*File // branch + ":" + path
	requests  []Request
	probeFail map[string]failure
	putFail   map[string]failure
	commits   int
}

func newStore() *store {
	return &store{
		files:     make(map[string]*File),
		probeFail: make(map[string]failure),
		putFail:   make(map[string]failure),
	}
}

func key(branch, path string) string {
	return branch + ":" + path
}

func (s *store) get(branch, path string) (*File, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[key(branch, path)]
	return f, ok
}

func (s *store) put(branch string, f *File) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[key(branch, f.Path)] = f
	s.commits++
	return commitSHA(s.commits)
}

func (s *store) record(r Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, r)
}

func (s *store) failureFor(m map[string]failure, path string) (failure, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := m[path]
	return f, ok
}
