package server

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"company-registration/backend/internal/response"
)

// LogoOpener opens a stored logo by file name; *logostore.Local satisfies it.
type LogoOpener interface {
	Open(name string) (*os.File, error)
}

// serveLogo serves one stored logo. Directory listings are never produced.
func serveLogo(logos LogoOpener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "file")
		f, err := logos.Open(name)
		if err != nil {
			response.Error(w, http.StatusNotFound, "Not found")
			return
		}
		defer f.Close()
		st, err := f.Stat()
		if err != nil || st.IsDir() {
			response.Error(w, http.StatusNotFound, "Not found")
			return
		}
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Cache-Control", "public, max-age=86400")
		http.ServeContent(w, r, name, st.ModTime(), f)
	}
}
