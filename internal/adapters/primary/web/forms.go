package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/nmashkov/yatube-project/internal/core/domain"
)

const (
	maxUploadSize  = 10 << 20
	maxRequestBody = maxUploadSize + 1<<20 // image + champs texte et en-têtes multipart
)

var errUploadTooLarge = errors.New("upload exceeds the size limit")

// formState is what a template needs to redisplay a submitted form.
type formState struct {
	Values map[string]string
	Errors map[string][]string
}

func newFormState() *formState {
	return &formState{Values: map[string]string{}, Errors: map[string][]string{}}
}

func (f *formState) Value(field string) string { return f.Values[field] }

func (f *formState) ErrorsFor(field string) []string { return f.Errors[field] }

func (f *formState) HasErrors() bool { return len(f.Errors) > 0 }

func (f *formState) withErrors(err error) *formState {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		for field, msgs := range verr.Fields {
			f.Errors[field] = append(f.Errors[field], msgs...)
		}
	}
	return f
}

func postFormFrom(p *domain.Post) *formState {
	f := newFormState()
	f.Values["text"] = p.Text
	if p.GroupID != nil {
		f.Values["group"] = strconv.FormatUint(uint64(*p.GroupID), 10)
	}
	return f
}

// parsePostForm reads text, group, image and image-clear from a (multipart) form.
// Bodies over maxRequestBody and images over maxUploadSize yield errUploadTooLarge.
func parsePostForm(w http.ResponseWriter, r *http.Request) (domain.PostInput, *formState, error) {
	var in domain.PostInput
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return in, nil, errUploadTooLarge
		}
		return in, nil, fmt.Errorf("parse form: %w", err)
	}

	f := newFormState()
	f.Values["text"] = r.PostFormValue("text")
	f.Values["group"] = strings.TrimSpace(r.PostFormValue("group"))
	in.Text = f.Values["text"]

	if raw := f.Values["group"]; raw != "" {
		// Un identifiant illisible devient 0, qui n'existe jamais : "choix invalide"
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			id = 0
		}
		gid := uint(id)
		in.GroupID = &gid
	}

	in.ClearImage = r.PostFormValue("image-clear") != ""

	if r.MultipartForm != nil {
		file, header, err := r.FormFile("image")
		switch {
		case errors.Is(err, http.ErrMissingFile):
		case err != nil:
			return in, nil, fmt.Errorf("read upload: %w", err)
		case header.Size > maxUploadSize:
			file.Close()
			return in, nil, errUploadTooLarge
		default:
			defer file.Close()
			content, err := io.ReadAll(file)
			if err != nil {
				return in, nil, fmt.Errorf("read upload: %w", err)
			}
			if header.Filename != "" {
				in.Image = &domain.Upload{Filename: header.Filename, Content: content}
			}
		}
	}

	return in, f, nil
}
