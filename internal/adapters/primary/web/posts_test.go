package web

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmashkov/yatube-project/internal/core/domain"
)

func pageLen(t *testing.T, data map[string]any) int {
	t.Helper()
	page, ok := data["page_obj"].(*domain.PostPage)
	require.True(t, ok, "page_obj missing from context")
	return page.Len()
}

func TestPaginator(t *testing.T) {
	e := newTestEnv(t)
	author := e.createUser("auth")
	group := e.createGroup("test-slug")
	for i := 0; i < 11; i++ {
		e.createPost(author, group, fmt.Sprintf("post %d", i))
	}

	for _, base := range []string{"/", "/group/test-slug/", "/profile/auth/"} {
		t.Run(base, func(t *testing.T) {
			cases := map[string]int{
				"":        10,
				"?page=1": 10,
				"?page=2": 1,
				"?page=9": 1,
				"?page=x": 10,
			}
			for query, want := range cases {
				rec := e.get(base+query, nil)
				require.Equal(t, http.StatusOK, rec.Code)
				_, data := e.lastContext()
				if rec.Header().Get("X-Page-Cache") == "hit" {
					continue
				}
				assert.Equal(t, want, pageLen(t, data), base+query)
			}
		})
	}
}

func TestListings_ShowPostWithGroupAndImage(t *testing.T) {
	e := newTestEnv(t)
	author := e.createUser("auth")
	group := e.createGroup("test-slug")
	other := e.createGroup("other")

	rel, err := e.media.Save(context.Background(), "posts", &domain.Upload{Filename: "small.gif", Content: smallGIF})
	require.NoError(t, err)
	post := &domain.Post{Text: "Post with image", AuthorID: author.ID, GroupID: &group.ID, Image: rel, Created: e.clock}
	require.NoError(t, e.posts.Save(context.Background(), post))
	e.createPost(author, other, "Newer post of another group")

	for _, target := range []string{"/", "/group/test-slug/", "/profile/auth/"} {
		rec := e.get(target, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Post with image", target)
		assert.Contains(t, rec.Body.String(), "/media/"+rel, target)
	}

	// Le groupe ne montre jamais les posts d'un autre groupe, même plus récents
	rec := e.get("/group/test-slug/", nil)
	assert.NotContains(t, rec.Body.String(), "Newer post of another group")
	_, data := e.lastContext()
	assert.Equal(t, 1, pageLen(t, data))
	assert.Equal(t, group.ID, data["group"].(*domain.Group).ID)

	rec = e.get(fmt.Sprintf("/posts/%d/", post.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	_, data = e.lastContext()
	assert.Equal(t, rel, data["post"].(*domain.Post).Image)
	assert.Equal(t, int64(2), data["posts_count"])

	img := e.get("/media/"+rel, nil)
	assert.Equal(t, http.StatusOK, img.Code)
	assert.Equal(t, smallGIF, img.Body.Bytes())
}

func TestProfile_Context(t *testing.T) {
	e := newTestEnv(t)
	author := e.createUser("auth")
	reader := e.createUser("reader")
	e.createPost(author, nil, "one")
	e.createPost(author, nil, "two")
	require.NoError(t, e.follows.Create(context.Background(), reader.ID, author.ID))

	rec := e.get("/profile/auth/", reader)
	require.Equal(t, http.StatusOK, rec.Code)
	_, data := e.lastContext()
	assert.Equal(t, int64(2), data["posts_count"])
	assert.Equal(t, int64(1), data["followers_count"])
	assert.Equal(t, true, data["following"])
	assert.Equal(t, "auth", data["author"].(*domain.User).Username)
	assert.Contains(t, rec.Body.String(), "/profile/auth/unfollow/")
}

func TestCreatePost(t *testing.T) {
	e := newTestEnv(t)
	author := e.createUser("auth")
	group := e.createGroup("test-slug")
	ctx := context.Background()

	rec := e.postMultipart("/create/", author, map[string]string{
		"text":  "Brand new post",
		"group": strconv.FormatUint(uint64(group.ID), 10),
	}, "small.gif", smallGIF)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/profile/auth/", rec.Header().Get("Location"))

	total, err := e.posts.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	posts, err := e.posts.List(ctx, 0, 1)
	require.NoError(t, err)
	created := posts[0]
	assert.Equal(t, "Brand new post", created.Text)
	assert.Equal(t, author.ID, created.AuthorID)
	require.NotNil(t, created.GroupID)
	assert.Equal(t, group.ID, *created.GroupID)
	assert.True(t, strings.HasPrefix(created.Image, "posts/"))

	_, err = os.Stat(filepath.Join(e.media.Root, filepath.FromSlash(created.Image)))
	assert.NoError(t, err)
}

func TestCreatePost_InvalidFormPersistsNothing(t *testing.T) {
	e := newTestEnv(t)
	author := e.createUser("auth")

	tests := []struct {
		name     string
		fields   map[string]string
		filename string
		content  []byte
		field    string
		message  string
	}{
		{"empty text", map[string]string{"text": "   "}, "", nil, "text", domain.MsgRequired},
		{"unknown group", map[string]string{"text": "ok", "group": "999"}, "", nil, "group", domain.MsgInvalidChoice},
		{"not an image", map[string]string{"text": "ok"}, "fake.png", []byte("plain text"), "image", domain.MsgNotAnImage},
		{"video", map[string]string{"text": "ok"}, "clip.mp4", smallGIF, "image", `File extension "mp4" is not allowed.`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.postMultipart("/create/", author, tt.fields, tt.filename, tt.content)
			require.Equal(t, http.StatusOK, rec.Code)

			_, data := e.lastContext()
			form := data["form"].(*formState)
			assert.Contains(t, form.ErrorsFor(tt.field), tt.message)

			total, err := e.posts.Count(context.Background())
			require.NoError(t, err)
			assert.Zero(t, total)
		})
	}

	entries, err := os.ReadDir(e.media.Root)
	require.NoError(t, err)
	assert.Empty(t, entries, "no file may be stored for a rejected form")
}

func oversizedGIF(size int) []byte {
	content := make([]byte, size)
	copy(content, smallGIF)
	return content
}

func TestPostForms_RejectOversizedUploads(t *testing.T) {
	e := newTestEnv(t)
	author := e.createUser("auth")
	post := e.createPost(author, nil, "Original text")

	tests := []struct {
		name   string
		target string
		size   int
	}{
		{"create, body over the limit", "/create/", maxRequestBody + 1<<20},
		{"create, image just over the limit", "/create/", maxUploadSize + 1},
		{"edit, body over the limit", postURL(post.ID) + "edit/", maxRequestBody + 1<<20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.postMultipart(tt.target, author, map[string]string{"text": "Too big"}, "big.gif", oversizedGIF(tt.size))
			assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		})
	}

	total, err := e.posts.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	stored, err := e.posts.FindByID(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Original text", stored.Text)
	assert.False(t, stored.HasImage())

	entries, err := os.ReadDir(e.media.Root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEditPost(t *testing.T) {
	e := newTestEnv(t)
	author := e.createUser("auth")
	stranger := e.createUser("stranger")
	group := e.createGroup("test-slug")
	post := e.createPost(author, group, "Original text")
	ctx := context.Background()
	editURL := fmt.Sprintf("/posts/%d/edit/", post.ID)
	detailURL := fmt.Sprintf("/posts/%d/", post.ID)

	t.Run("form is prefilled for the author", func(t *testing.T) {
		rec := e.get(editURL, author)
		require.Equal(t, http.StatusOK, rec.Code)
		_, data := e.lastContext()
		assert.Equal(t, true, data["is_edit"])
		assert.Equal(t, "Original text", data["form"].(*formState).Value("text"))
	})

	t.Run("non-author is sent to the detail page", func(t *testing.T) {
		rec := e.get(editURL, stranger)
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, detailURL, rec.Header().Get("Location"))

		rec = e.postMultipart(editURL, stranger, map[string]string{"text": "Hijacked"}, "", nil)
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, detailURL, rec.Header().Get("Location"))

		stored, err := e.posts.FindByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, "Original text", stored.Text)
	})

	t.Run("author edit updates in place", func(t *testing.T) {
		rec := e.postMultipart(editURL, author, map[string]string{"text": "Edited text"}, "small.gif", smallGIF)
		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, detailURL, rec.Header().Get("Location"))

		stored, err := e.posts.FindByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, "Edited text", stored.Text)
		assert.Nil(t, stored.GroupID)
		assert.Equal(t, author.ID, stored.AuthorID)
		assert.True(t, post.Created.Equal(stored.Created))
		assert.True(t, stored.HasImage())

		total, err := e.posts.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
	})

	t.Run("clearing the image removes the file", func(t *testing.T) {
		before, err := e.posts.FindByID(ctx, post.ID)
		require.NoError(t, err)
		path := filepath.Join(e.media.Root, filepath.FromSlash(before.Image))

		rec := e.postMultipart(editURL, author, map[string]string{"text": "Edited text", "image-clear": "on"}, "", nil)
		require.Equal(t, http.StatusFound, rec.Code)

		after, err := e.posts.FindByID(ctx, post.ID)
		require.NoError(t, err)
		assert.False(t, after.HasImage())
		_, err = os.Stat(path)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("invalid edit re-renders the form", func(t *testing.T) {
		rec := e.postMultipart(editURL, author, map[string]string{"text": ""}, "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		_, data := e.lastContext()
		assert.Contains(t, data["form"].(*formState).ErrorsFor("text"), domain.MsgRequired)
	})

	t.Run("unknown post", func(t *testing.T) {
		rec := e.get("/posts/9999/edit/", author)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestAddComment(t *testing.T) {
	e := newTestEnv(t)
	author := e.createUser("auth")
	reader := e.createUser("reader")
	post := e.createPost(author, nil, "Post to discuss")
	detailURL := fmt.Sprintf("/posts/%d/", post.ID)
	commentURL := detailURL + "comment/"

	rec := e.postForm(commentURL, reader, url.Values{"text": {"Nice post"}})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, detailURL, rec.Header().Get("Location"))

	rec = e.postForm(commentURL, reader, url.Values{"text": {""}})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, detailURL, rec.Header().Get("Location"))

	rec = e.get(detailURL, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	_, data := e.lastContext()
	comments := data["comments"].([]*domain.Comment)
	require.Len(t, comments, 1)
	assert.Equal(t, "Nice post", comments[0].Text)
	assert.Equal(t, "reader", comments[0].Author.Username)
	assert.Contains(t, rec.Body.String(), "Nice post")

	rec = e.postForm("/posts/9999/comment/", reader, url.Values{"text": {"lost"}})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestIndexCache(t *testing.T) {
	e := newTestEnv(t)
	author := e.createUser("auth")
	post := e.createPost(author, nil, "Soon to be deleted")
	ctx := context.Background()

	first := e.get("/", nil)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Contains(t, first.Body.String(), "Soon to be deleted")

	require.NoError(t, e.posts.Delete(ctx, post.ID))

	second := e.get("/", nil)
	assert.Equal(t, "hit", second.Header().Get("X-Page-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())

	require.NoError(t, e.cache.Clear(ctx))

	third := e.get("/", nil)
	assert.NotContains(t, third.Body.String(), "Soon to be deleted")
}

func TestIndexCache_KeyedBySession(t *testing.T) {
	e := newTestEnv(t)
	author := e.createUser("auth")

	anon := e.get("/", nil)
	require.Equal(t, http.StatusOK, anon.Code)

	logged := e.get("/", author)
	require.Equal(t, http.StatusOK, logged.Code)
	assert.Empty(t, logged.Header().Get("X-Page-Cache"))
	assert.Contains(t, logged.Body.String(), "/profile/auth/")
	assert.NotContains(t, anon.Body.String(), "/profile/auth/")
}
