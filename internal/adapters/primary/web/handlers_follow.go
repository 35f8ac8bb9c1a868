package web

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (s *Server) followIndex(w http.ResponseWriter, r *http.Request) {
	feed, err := s.Listing.ListFollowed(r.Context(), CallerFrom(r.Context()), r.URL.Query().Get("page"))
	if err != nil {
		s.mapDomainError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "follow.html", map[string]any{
		"title":    feed.Message,
		"message":  feed.Message,
		"page_obj": feed.Page,
	})
}

func (s *Server) profileFollow(w http.ResponseWriter, r *http.Request) {
	author, err := s.Follows.Follow(r.Context(), CallerFrom(r.Context()), mux.Vars(r)["username"])
	if err != nil {
		s.mapDomainError(w, r, err)
		return
	}
	s.metrics.Action("follow")
	http.Redirect(w, r, profileURL(author.Username), http.StatusFound)
}

func (s *Server) profileUnfollow(w http.ResponseWriter, r *http.Request) {
	author, err := s.Follows.Unfollow(r.Context(), CallerFrom(r.Context()), mux.Vars(r)["username"])
	if err != nil {
		s.mapDomainError(w, r, err)
		return
	}
	s.metrics.Action("unfollow")
	http.Redirect(w, r, profileURL(author.Username), http.StatusFound)
}
