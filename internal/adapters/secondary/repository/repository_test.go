package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nmashkov/yatube-project/internal/core/domain"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) *domain.User {
	t.Helper()
	u := &domain.User{Username: username, PasswordHash: "x", CreatedAt: time.Now().UTC()}
	require.NoError(t, NewUserRepo(db).Save(context.Background(), u))
	return u
}

func createGroup(t *testing.T, db *gorm.DB, slug string) *domain.Group {
	t.Helper()
	g := &domain.Group{Title: "Group " + slug, Slug: slug, Description: "about " + slug}
	require.NoError(t, NewGroupRepo(db).Save(context.Background(), g))
	return g
}

func createPost(t *testing.T, db *gorm.DB, author *domain.User, group *domain.Group, text string, at time.Time) *domain.Post {
	t.Helper()
	p := &domain.Post{Text: text, AuthorID: author.ID, Created: at}
	if group != nil {
		p.GroupID = &group.ID
	}
	require.NoError(t, NewPostRepo(db).Save(context.Background(), p))
	return p
}

func TestPostRepo_ListNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewPostRepo(db)
	author := createUser(t, db, "leo")

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 11; i++ {
		createPost(t, db, author, nil, fmt.Sprintf("post %d", i), base.Add(time.Duration(i)*time.Minute))
	}

	total, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(11), total)

	first, err := repo.List(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, first, 10)
	assert.Equal(t, "post 10", first[0].Text)
	require.NotNil(t, first[0].Author)
	assert.Equal(t, "leo", first[0].Author.Username)

	second, err := repo.List(ctx, 10, 10)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "post 0", second[0].Text)
}

func TestPostRepo_ListByGroupIgnoresOtherGroups(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewPostRepo(db)
	author := createUser(t, db, "leo")
	cats := createGroup(t, db, "cats")
	dogs := createGroup(t, db, "dogs")

	now := time.Now().UTC()
	createPost(t, db, author, cats, "about cats", now.Add(-time.Hour))
	createPost(t, db, author, dogs, "about dogs", now)

	n, err := repo.CountByGroup(ctx, cats.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	posts, err := repo.ListByGroup(ctx, cats.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "about cats", posts[0].Text)
	require.NotNil(t, posts[0].Group)
	assert.Equal(t, "cats", posts[0].Group.Slug)
}

func TestPostRepo_ListByAuthors(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewPostRepo(db)
	leo := createUser(t, db, "leo")
	ann := createUser(t, db, "ann")
	bob := createUser(t, db, "bob")

	now := time.Now().UTC()
	createPost(t, db, leo, nil, "leo", now.Add(-2*time.Minute))
	createPost(t, db, ann, nil, "ann", now.Add(-time.Minute))
	createPost(t, db, bob, nil, "bob", now)

	n, err := repo.CountByAuthors(ctx, []uint{leo.ID, ann.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	posts, err := repo.ListByAuthors(ctx, []uint{leo.ID, ann.ID}, 0, 10)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "ann", posts[0].Text)
	assert.Equal(t, "leo", posts[1].Text)

	empty, err := repo.ListByAuthors(ctx, nil, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestPostRepo_UpdateKeepsAuthorAndDate(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewPostRepo(db)
	author := createUser(t, db, "leo")
	group := createGroup(t, db, "cats")
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	post := createPost(t, db, author, group, "before", created)

	post.Text = "after"
	post.GroupID = nil
	post.Image = "posts/new.png"
	require.NoError(t, repo.Update(ctx, post))

	stored, err := repo.FindByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "after", stored.Text)
	assert.Nil(t, stored.GroupID)
	assert.Equal(t, "posts/new.png", stored.Image)
	assert.Equal(t, author.ID, stored.AuthorID)
	assert.True(t, created.Equal(stored.Created))

	err = repo.Update(ctx, &domain.Post{ID: 9999, Text: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPostRepo_FindAndDelete(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewPostRepo(db)
	post := createPost(t, db, createUser(t, db, "leo"), nil, "text", time.Now().UTC())

	require.NoError(t, repo.Delete(ctx, post.ID))

	_, err := repo.FindByID(ctx, post.ID)
	assert.ErrorIs(t, err, domain.ErrPostNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, post.ID), domain.ErrNotFound)
}

func TestConstraints_CascadeAndSetNull(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	posts := NewPostRepo(db)
	leo := createUser(t, db, "leo")
	group := createGroup(t, db, "cats")
	post := createPost(t, db, leo, group, "text", time.Now().UTC())
	require.NoError(t, NewCommentRepo(db).Save(ctx, &domain.Comment{
		PostID: post.ID, AuthorID: leo.ID, Text: "hi", Created: time.Now().UTC(),
	}))

	// Suppression du groupe : le post survit sans groupe
	require.NoError(t, db.Delete(&groupModel{}, group.ID).Error)
	stored, err := posts.FindByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.GroupID)

	// Suppression de l'auteur : posts et commentaires partent avec lui
	require.NoError(t, db.Delete(&userModel{}, leo.ID).Error)
	_, err = posts.FindByID(ctx, post.ID)
	assert.ErrorIs(t, err, domain.ErrPostNotFound)

	var comments int64
	require.NoError(t, db.Model(&commentModel{}).Count(&comments).Error)
	assert.Zero(t, comments)
}

func TestCommentRepo_ListByPostInInsertionOrder(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewCommentRepo(db)
	leo := createUser(t, db, "leo")
	post := createPost(t, db, leo, nil, "text", time.Now().UTC())
	other := createPost(t, db, leo, nil, "other", time.Now().UTC())

	for _, text := range []string{"first", "second"} {
		require.NoError(t, repo.Save(ctx, &domain.Comment{
			PostID: post.ID, AuthorID: leo.ID, Text: text, Created: time.Now().UTC(),
		}))
	}
	require.NoError(t, repo.Save(ctx, &domain.Comment{
		PostID: other.ID, AuthorID: leo.ID, Text: "elsewhere", Created: time.Now().UTC(),
	}))

	comments, err := repo.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Text)
	assert.Equal(t, "second", comments[1].Text)
	require.NotNil(t, comments[0].Author)
	assert.Equal(t, "leo", comments[0].Author.Username)
}

func TestGroupRepo_SaveUpsertsBySlug(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewGroupRepo(db)

	g := &domain.Group{Title: "Cats", Slug: "cats", Description: "v1"}
	require.NoError(t, repo.Save(ctx, g))
	firstID := g.ID
	assert.NotZero(t, firstID)

	again := &domain.Group{Title: "Cats!", Slug: "cats", Description: "v2"}
	require.NoError(t, repo.Save(ctx, again))
	assert.Equal(t, firstID, again.ID)

	stored, err := repo.FindBySlug(ctx, "cats")
	require.NoError(t, err)
	assert.Equal(t, "Cats!", stored.Title)
	assert.Equal(t, "v2", stored.Description)

	_, err = repo.FindBySlug(ctx, "dogs")
	assert.ErrorIs(t, err, domain.ErrGroupNotFound)
	_, err = repo.FindByID(ctx, 4242)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserRepo(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewUserRepo(db)
	leo := createUser(t, db, "leo")

	byName, err := repo.GetByUsername(ctx, "leo")
	require.NoError(t, err)
	assert.Equal(t, leo.ID, byName.ID)

	byID, err := repo.GetByID(ctx, leo.ID)
	require.NoError(t, err)
	assert.Equal(t, "leo", byID.Username)

	_, err = repo.GetByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	err = repo.Save(ctx, &domain.User{Username: "leo", PasswordHash: "y"})
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)
}

func TestFollowRepo_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewFollowRepo(db)
	reader := createUser(t, db, "reader")
	author := createUser(t, db, "author")

	require.NoError(t, repo.Create(ctx, reader.ID, author.ID))
	require.NoError(t, repo.Create(ctx, reader.ID, author.ID))

	n, err := repo.CountFollowers(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	ok, err := repo.Exists(ctx, reader.ID, author.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ids, err := repo.FollowedAuthorIDs(ctx, reader.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{author.ID}, ids)

	require.NoError(t, repo.Delete(ctx, reader.ID, author.ID))
	require.NoError(t, repo.Delete(ctx, reader.ID, author.ID))

	ok, err = repo.Exists(ctx, reader.ID, author.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}
