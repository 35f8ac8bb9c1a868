package domain

import "time"

const (
	shortTextLen  = 100
	shortTitleLen = 30
	ellipsis      = "..."
)

type Post struct {
	ID       uint
	Text     string
	AuthorID uint
	Author   *User
	GroupID  *uint
	Group    *Group
	Image    string // path relative to the media root, empty when none
	Created  time.Time
}

// ShortText is used by listing cards.
func (p *Post) ShortText() string {
	return truncate(p.Text, shortTextLen)
}

// ShortTitle is the detail page title.
func (p *Post) ShortTitle() string {
	return "Post: " + truncate(p.Text, shortTitleLen)
}

func (p *Post) HasImage() bool {
	return p.Image != ""
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + ellipsis
}

// PostInput is what a create/edit form submits.
type PostInput struct {
	Text       string `validate:"required"`
	GroupID    *uint
	Image      *Upload
	ClearImage bool
}

// Upload is a file received from a multipart form.
type Upload struct {
	Filename string
	Content  []byte
}
