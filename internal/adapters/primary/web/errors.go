package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/nmashkov/yatube-project/internal/core/domain"
)

// mapDomainError traduit une erreur du domaine en réponse HTTP.
// Validation errors never reach it: form handlers re-render them.
func (s *Server) mapDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		s.notFound(w, r)
	case errors.Is(err, domain.ErrUnauthenticated):
		redirectToLogin(w, r)
	case errors.Is(err, domain.ErrForbidden):
		s.renderError(w, r, http.StatusForbidden)
	default:
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		s.renderError(w, r, http.StatusInternalServerError)
	}
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.renderError(w, r, http.StatusNotFound)
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int) {
	s.render(w, r, status, "error.html", map[string]any{
		"title":  http.StatusText(status),
		"status": status,
	})
}
