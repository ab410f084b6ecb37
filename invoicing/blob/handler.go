package blob

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func (s *Store) Handler() http.Handler {
	router := chi.NewRouter()

	router.Get("/", s.stage)
	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Get(pathPrefix+"{id}", s.blob)

	return router
}

func (s *Store) stage(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(s.page)
}

func (s *Store) blob(w http.ResponseWriter, r *http.Request) {
	o, ok := s.lookup(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", o.contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(o.data)))
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(o.data)
}
