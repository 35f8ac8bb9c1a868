package domain

import "time"

type Comment struct {
	ID       uint
	Text     string
	PostID   uint
	AuthorID uint
	Author   *User
	Created  time.Time
}

type CommentInput struct {
	Text string `validate:"required"`
}
