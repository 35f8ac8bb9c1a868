package web

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/nmashkov/yatube-project/internal/core/domain"
	"github.com/nmashkov/yatube-project/internal/core/ports"
)

const (
	titleLogin  = "Log in"
	titleSignUp = "Sign up"

	msgBadLogin = "Please enter a correct username and password."
)

func (s *Server) signUp(w http.ResponseWriter, r *http.Request) {
	form := newFormState()
	if r.Method == http.MethodGet {
		s.render(w, r, http.StatusOK, "signup.html", map[string]any{"title": titleSignUp, "form": form})
		return
	}
	if err := r.ParseForm(); err != nil {
		s.badRequest(w, r, err)
		return
	}

	cmd := ports.SignUpCmd{
		Username:  r.PostFormValue("username"),
		Password:  r.PostFormValue("password"),
		FirstName: r.PostFormValue("first_name"),
		LastName:  r.PostFormValue("last_name"),
		Email:     r.PostFormValue("email"),
	}
	for _, field := range []string{"username", "first_name", "last_name", "email"} {
		form.Values[field] = r.PostFormValue(field)
	}

	_, err := s.Identity.SignUp(r.Context(), cmd)
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		s.render(w, r, http.StatusOK, "signup.html", map[string]any{"title": titleSignUp, "form": form.withErrors(err)})
	case err != nil:
		s.mapDomainError(w, r, err)
	default:
		s.metrics.Action("signup")
		http.Redirect(w, r, "/auth/login/", http.StatusFound)
	}
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	next := safeNext(r.URL.Query().Get("next"))
	form := newFormState()

	if r.Method == http.MethodGet {
		s.render(w, r, http.StatusOK, "login.html", map[string]any{"title": titleLogin, "form": form, "next": next})
		return
	}
	if err := r.ParseForm(); err != nil {
		s.badRequest(w, r, err)
		return
	}
	if v := r.PostFormValue("next"); v != "" {
		next = safeNext(v)
	}
	form.Values["username"] = r.PostFormValue("username")

	sess, err := s.Identity.Login(r.Context(), r.PostFormValue("username"), r.PostFormValue("password"))
	if errors.Is(err, domain.ErrInvalidCredentials) {
		form.Errors["__all__"] = []string{msgBadLogin}
		s.render(w, r, http.StatusOK, "login.html", map[string]any{"title": titleLogin, "form": form, "next": next})
		return
	}
	if err != nil {
		s.mapDomainError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.Token,
		Path:     "/",
		MaxAge:   int(sess.ExpiresIn.Seconds()),
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	s.metrics.Action("login")
	http.Redirect(w, r, next, http.StatusFound)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusFound)
}

// safeNext n'accepte que des chemins locaux, jamais "//hote" ou une URL absolue.
// Caractères de contrôle et antislash refusés : un navigateur les efface ou les lit comme "/".
func safeNext(next string) string {
	for _, c := range next {
		if c < 0x20 || c == 0x7f || c == '\\' {
			return "/"
		}
	}
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	return next
}
