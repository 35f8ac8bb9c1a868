package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/nmashkov/yatube-project/internal/core/domain"
)

const (
	titleIndex    = "Latest updates on the site"
	titleNewPost  = "New post"
	titleEditPost = "Edit post"
)

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	page, err := s.Listing.ListIndex(r.Context(), r.URL.Query().Get("page"))
	if err != nil {
		s.mapDomainError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "index.html", map[string]any{
		"title":    titleIndex,
		"page_obj": page,
	})
}

func (s *Server) groupPosts(w http.ResponseWriter, r *http.Request) {
	listing, err := s.Listing.ListByGroup(r.Context(), mux.Vars(r)["slug"], r.URL.Query().Get("page"))
	if err != nil {
		s.mapDomainError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "group_list.html", map[string]any{
		"title":    "Posts of community " + listing.Group.Title,
		"group":    listing.Group,
		"page_obj": listing.Page,
	})
}

func (s *Server) profile(w http.ResponseWriter, r *http.Request) {
	caller := CallerFrom(r.Context())
	listing, err := s.Listing.ListByAuthor(r.Context(), caller, mux.Vars(r)["username"], r.URL.Query().Get("page"))
	if err != nil {
		s.mapDomainError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "profile.html", map[string]any{
		"title":           "Profile of user " + listing.Author.Username,
		"author":          listing.Author,
		"page_obj":        listing.Page,
		"posts_count":     listing.PostCount,
		"followers_count": listing.FollowerCount,
		"following":       listing.Following,
		"is_self":         caller.Is(listing.Author.ID),
	})
}

func (s *Server) postDetail(w http.ResponseWriter, r *http.Request) {
	postID, ok := postIDFrom(r)
	if !ok {
		s.notFound(w, r)
		return
	}

	caller := CallerFrom(r.Context())
	detail, err := s.Listing.GetPostDetail(r.Context(), caller, postID)
	if err != nil {
		s.mapDomainError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "post_detail.html", map[string]any{
		"title":           detail.Post.ShortTitle(),
		"post":            detail.Post,
		"comments":        detail.Comments,
		"posts_count":     detail.PostCount,
		"followers_count": detail.FollowerCount,
		"following":       detail.Following,
		"is_author":       caller.Is(detail.Post.AuthorID),
		"form":            newFormState(),
	})
}

func (s *Server) postCreate(w http.ResponseWriter, r *http.Request) {
	caller := CallerFrom(r.Context())
	if r.Method == http.MethodGet {
		s.renderPostForm(w, r, nil, newFormState())
		return
	}

	in, form, err := parsePostForm(w, r)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}

	_, err = s.Authoring.CreatePost(r.Context(), caller, in)
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		s.renderPostForm(w, r, nil, form.withErrors(err))
	case err != nil:
		s.mapDomainError(w, r, err)
	default:
		s.metrics.Action("post_created")
		http.Redirect(w, r, profileURL(caller.Username), http.StatusFound)
	}
}

func (s *Server) postEdit(w http.ResponseWriter, r *http.Request) {
	postID, ok := postIDFrom(r)
	if !ok {
		s.notFound(w, r)
		return
	}
	caller := CallerFrom(r.Context())

	if r.Method == http.MethodGet {
		post, err := s.Authoring.PostForEdit(r.Context(), caller, postID)
		if errors.Is(err, domain.ErrForbidden) {
			http.Redirect(w, r, postURL(postID), http.StatusFound)
			return
		}
		if err != nil {
			s.mapDomainError(w, r, err)
			return
		}
		s.renderPostForm(w, r, post, postFormFrom(post))
		return
	}

	in, form, err := parsePostForm(w, r)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}

	_, err = s.Authoring.EditPost(r.Context(), caller, postID, in)
	var verr *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrForbidden):
		http.Redirect(w, r, postURL(postID), http.StatusFound)
	case errors.As(err, &verr):
		post, lookupErr := s.Authoring.PostForEdit(r.Context(), caller, postID)
		if lookupErr != nil {
			s.mapDomainError(w, r, lookupErr)
			return
		}
		s.renderPostForm(w, r, post, form.withErrors(err))
	case err != nil:
		s.mapDomainError(w, r, err)
	default:
		s.metrics.Action("post_edited")
		http.Redirect(w, r, postURL(postID), http.StatusFound)
	}
}

// addComment redirige vers le post quel que soit le résultat de la validation
func (s *Server) addComment(w http.ResponseWriter, r *http.Request) {
	postID, ok := postIDFrom(r)
	if !ok {
		s.notFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		s.badRequest(w, r, err)
		return
	}

	in := domain.CommentInput{Text: r.PostFormValue("text")}
	_, err := s.Authoring.AddComment(r.Context(), CallerFrom(r.Context()), postID, in)
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
	case err != nil:
		s.mapDomainError(w, r, err)
		return
	default:
		s.metrics.Action("comment_added")
	}
	http.Redirect(w, r, postURL(postID), http.StatusFound)
}

// renderPostForm sert à la fois la création (post == nil) et l'édition.
func (s *Server) renderPostForm(w http.ResponseWriter, r *http.Request, post *domain.Post, form *formState) {
	groups, err := s.Listing.ListGroups(r.Context())
	if err != nil {
		s.mapDomainError(w, r, err)
		return
	}

	data := map[string]any{
		"title":   titleNewPost,
		"form":    form,
		"groups":  groups,
		"is_edit": post != nil,
	}
	if post != nil {
		data["title"] = titleEditPost
		data["post"] = post
	}
	s.render(w, r, http.StatusOK, "create_post.html", data)
}

func (s *Server) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errUploadTooLarge) {
		slog.InfoContext(r.Context(), "upload rejected", "path", r.URL.Path, "limit", maxUploadSize)
		s.renderError(w, r, http.StatusRequestEntityTooLarge)
		return
	}
	slog.DebugContext(r.Context(), "malformed form", "path", r.URL.Path, "error", err)
	s.renderError(w, r, http.StatusBadRequest)
}

func postIDFrom(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func postURL(id uint) string {
	return fmt.Sprintf("/posts/%d/", id)
}

func profileURL(username string) string {
	return "/profile/" + url.PathEscape(username) + "/"
}
