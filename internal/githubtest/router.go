package githubtest

import (
	"github.com/go-chi/chi/v5"
)

func newRouter(h *handler, token string) chi.Router {
	r := chi.NewRouter()
	r.Use(h.recordRequest)
	r.Use(bearerAuth(token))
	r.Route("/repos/{owner}/{repo}/contents", func(r chi.Router) {
		r.Get("/*", h.getContents)
		r.Put("/*", h.putContents)
	})
	return r
}
