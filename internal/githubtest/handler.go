package githubtest

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/shaun/repopush/internal/github"
)

const defaultRef = "main"

type handler struct {
	owner string
	repo  string
	store *store
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func commitSHA(n int) string {
	return fmt.Sprintf("%040x", n)
}

func contentPath(r *http.Request) string {
	p := chi.URLParam(r, "*")
	if u, err := url.PathUnescape(p); err == nil {
		p = u
	}
	return p
}

// recordRequest logs every call, authorized or not.
func (h *handler) recordRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			Ref:           r.URL.Query().Get("ref"),
			Authorization: r.Header.Get("Authorization"),
			Accept:        r.Header.Get("Accept"),
			APIVersion:    r.Header.Get("X-GitHub-Api-Version"),
		}
		if r.Method == http.MethodPut {
			body, _ := io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(body))
			rec.RawBody = body
			var put PutRequest
			if json.Unmarshal(body, &put) == nil {
				rec.Put = &put
			}
		}
		h.store.record(rec)
		next.ServeHTTP(w, r)
	})
}

func (h *handler) knownRepo(w http.ResponseWriter, r *http.Request) bool {
	if chi.URLParam(r, "owner") != h.owner || chi.URLParam(r, "repo") != h.repo {
		respondJSON(w, http.StatusNotFound, errorResponse{Message: "Not Found"})
		return false
	}
	return true
}

func (h *handler) getContents(w http.ResponseWriter, r *http.Request) {
	if !h.knownRepo(w, r) {
		return
	}
	p := contentPath(r)
	if f, ok := h.store.failureFor(h.store.probeFail, p); ok {
		respondJSON(w, f.status, errorResponse{Message: f.message})
		return
	}
	ref := r.URL.Query().Get("ref")
	if ref == "" {
		ref = defaultRef
	}
	f, ok := h.store.get(ref, p)
	if !ok {
		respondJSON(w, http.StatusNotFound, errorResponse{Message: "Not Found"})
		return
	}
	respondJSON(w, http.StatusOK, contentResponse{
		Type:     "file",
		Encoding: "base64",
		Name:     path.Base(f.Path),
		Path:     f.Path,
		SHA:      f.SHA,
		Size:     len(f.Content),
		Content:  base64.StdEncoding.EncodeToString(f.Content),
	})
}

func (h *handler) putContents(w http.ResponseWriter, r *http.Request) {
	if !h.knownRepo(w, r) {
		return
	}
	p := contentPath(r)
	var req PutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Message: "Problems parsing JSON"})
		return
	}
	if f, ok := h.store.failureFor(h.store.putFail, p); ok {
		respondJSON(w, f.status, errorResponse{Message: f.message})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		respondJSON(w, http.StatusUnprocessableEntity, errorResponse{Message: "Invalid request.\n\n\"message\" wasn't supplied."})
		return
	}
	content, err := base64.StdEncoding.DecodeString(req.Content)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Message: "content is not valid Base64"})
		return
	}
	branch := req.Branch
	if branch == "" {
		branch = defaultRef
	}

	existing, exists := h.store.get(branch, p)
	switch {
	case exists && req.SHA == nil:
		respondJSON(w, http.StatusUnprocessableEntity, errorResponse{Message: "Invalid request.\n\n\"sha\" wasn't supplied."})
		return
	case exists && *req.SHA != existing.SHA:
		respondJSON(w, http.StatusConflict, errorResponse{Message: fmt.Sprintf("%s does not match %s", p, *req.SHA)})
		return
	case !exists && req.SHA != nil:
		respondJSON(w, http.StatusNotFound, errorResponse{Message: "Not Found"})
		return
	}

	f := &File{Path: p, Content: content, SHA: github.BlobSHA(content)}
	commit := h.store.put(branch, f)
	status := http.StatusCreated
	if exists {
		status = http.StatusOK
	}
	var res putResponse
	res.Content = contentResponse{Type: "file", Name: path.Base(p), Path: p, SHA: f.SHA, Size: len(content)}
	res.Commit.SHA = commit
	res.Commit.Message = req.Message
	respondJSON(w, status, res)
}
