package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmashkov/yatube-project/internal/core/domain"
)

func TestCreatePost(t *testing.T) {
	f := newFixture(t)
	author, caller := f.user("auth")
	g := f.group("cats")

	_, err := f.authoring.CreatePost(f.ctx, domain.Anonymous, domain.PostInput{Text: "x"})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	post, err := f.authoring.CreatePost(f.ctx, caller, domain.PostInput{
		Text:    "  New post  ",
		GroupID: &g.ID,
		Image:   &domain.Upload{Filename: "small.gif", Content: smallGIF},
	})
	require.NoError(t, err)
	assert.Equal(t, "New post", post.Text)
	assert.Equal(t, author.ID, post.AuthorID)
	assert.Regexp(t, `^posts/[0-9a-f-]{36}\.gif$`, post.Image)
	assert.Len(t, f.mediaFiles(), 1)

	stored, err := f.posts.FindByID(f.ctx, post.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.GroupID)
	assert.Equal(t, g.ID, *stored.GroupID)
	assert.Equal(t, []string{"post.created"}, f.pub.Events())
}

func TestCreatePost_Invalid(t *testing.T) {
	f := newFixture(t)
	_, caller := f.user("auth")
	missing := uint(404)

	_, err := f.authoring.CreatePost(f.ctx, caller, domain.PostInput{
		Text:    "   ",
		GroupID: &missing,
		Image:   &domain.Upload{Filename: "notes.txt", Content: []byte("plain text")},
	})
	fields := fieldErrors(t, err)
	assert.Equal(t, []string{domain.MsgRequired}, fields["text"])
	assert.Equal(t, []string{domain.MsgInvalidChoice}, fields["group"])
	assert.Equal(t, []string{domain.MsgNotAnImage}, fields["image"])

	_, err = f.authoring.CreatePost(f.ctx, caller, domain.PostInput{
		Text:  "fake image",
		Image: &domain.Upload{Filename: "fake.png", Content: []byte("not really a png")},
	})
	fields = fieldErrors(t, err)
	assert.Equal(t, []string{domain.MsgNotAnImage}, fields["image"])

	count, err := f.posts.Count(f.ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, f.mediaFiles())
	assert.Empty(t, f.pub.Events())
}

func TestPostForEdit(t *testing.T) {
	f := newFixture(t)
	author, caller := f.user("auth")
	_, stranger := f.user("stranger")
	post := f.post(author, nil, "mine")

	got, err := f.authoring.PostForEdit(f.ctx, caller, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, got.ID)

	_, err = f.authoring.PostForEdit(f.ctx, stranger, post.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.authoring.PostForEdit(f.ctx, domain.Anonymous, post.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	_, err = f.authoring.PostForEdit(f.ctx, caller, 9999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEditPost(t *testing.T) {
	f := newFixture(t)
	author, caller := f.user("auth")
	_, stranger := f.user("stranger")
	g := f.group("cats")
	post := f.post(author, g, "original")
	created := post.Created

	_, err := f.authoring.EditPost(f.ctx, stranger, post.ID, domain.PostInput{Text: "hijack"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	edited, err := f.authoring.EditPost(f.ctx, caller, post.ID, domain.PostInput{
		Text:  "edited",
		Image: &domain.Upload{Filename: "small.gif", Content: smallGIF},
	})
	require.NoError(t, err)
	firstImage := edited.Image
	assert.NotEmpty(t, firstImage)

	stored, err := f.posts.FindByID(f.ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", stored.Text)
	assert.Nil(t, stored.GroupID)
	assert.Equal(t, author.ID, stored.AuthorID)
	assert.True(t, created.Equal(stored.Created))

	// Une nouvelle image remplace l'ancienne sur disque
	edited, err = f.authoring.EditPost(f.ctx, caller, post.ID, domain.PostInput{
		Text:  "edited again",
		Image: &domain.Upload{Filename: "other.gif", Content: smallGIF},
	})
	require.NoError(t, err)
	assert.NotEqual(t, firstImage, edited.Image)
	assert.Len(t, f.mediaFiles(), 1)

	edited, err = f.authoring.EditPost(f.ctx, caller, post.ID, domain.PostInput{Text: "no image", ClearImage: true})
	require.NoError(t, err)
	assert.Empty(t, edited.Image)
	assert.Empty(t, f.mediaFiles())

	_, err = f.authoring.EditPost(f.ctx, caller, post.ID, domain.PostInput{Text: ""})
	assert.Contains(t, fieldErrors(t, err), "text")

	assert.Equal(t, []string{"post.updated", "post.updated", "post.updated"}, f.pub.Events())
}

func TestAddComment(t *testing.T) {
	f := newFixture(t)
	author, _ := f.user("auth")
	_, reader := f.user("reader")
	post := f.post(author, nil, "commented")

	_, err := f.authoring.AddComment(f.ctx, domain.Anonymous, post.ID, domain.CommentInput{Text: "hi"})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = f.authoring.AddComment(f.ctx, reader, 9999, domain.CommentInput{Text: "hi"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.authoring.AddComment(f.ctx, reader, post.ID, domain.CommentInput{Text: "  \n "})
	assert.Equal(t, []string{domain.MsgRequired}, fieldErrors(t, err)["text"])

	c, err := f.authoring.AddComment(f.ctx, reader, post.ID, domain.CommentInput{Text: " Nice post "})
	require.NoError(t, err)
	assert.Equal(t, "Nice post", c.Text)
	assert.Equal(t, post.ID, c.PostID)
	assert.Equal(t, reader.UserID, c.AuthorID)

	comments, err := f.comments.ListByPost(f.ctx, post.ID)
	require.NoError(t, err)
	assert.Len(t, comments, 1)
	assert.Equal(t, []string{"comment.created"}, f.pub.Events())
}
