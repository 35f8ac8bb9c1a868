package ports

import (
	"context"

	"github.com/nmashkov/yatube-project/internal/core/domain"
)

// --- PERSISTANCE (DB) ---

type PostRepository interface {
	Save(ctx context.Context, post *domain.Post) error
	Update(ctx context.Context, post *domain.Post) error
	Delete(ctx context.Context, postID uint) error
	FindByID(ctx context.Context, postID uint) (*domain.Post, error)

	// Listings are newest first; offset/limit come from a domain.PageWindow.
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context, offset, limit int) ([]*domain.Post, error)
	CountByGroup(ctx context.Context, groupID uint) (int64, error)
	ListByGroup(ctx context.Context, groupID uint, offset, limit int) ([]*domain.Post, error)
	CountByAuthors(ctx context.Context, authorIDs []uint) (int64, error)
	ListByAuthors(ctx context.Context, authorIDs []uint, offset, limit int) ([]*domain.Post, error)
}

type GroupRepository interface {
	Save(ctx context.Context, group *domain.Group) error
	FindByID(ctx context.Context, id uint) (*domain.Group, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Group, error)
	List(ctx context.Context) ([]*domain.Group, error)
}

type CommentRepository interface {
	Save(ctx context.Context, comment *domain.Comment) error
	ListByPost(ctx context.Context, postID uint) ([]*domain.Comment, error)
}

type UserRepository interface {
	Save(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uint) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// FollowRepository stores the follow graph. Create and Delete are idempotent.
type FollowRepository interface {
	Create(ctx context.Context, userID, authorID uint) error
	Delete(ctx context.Context, userID, authorID uint) error
	Exists(ctx context.Context, userID, authorID uint) (bool, error)
	CountFollowers(ctx context.Context, authorID uint) (int64, error)
	FollowedAuthorIDs(ctx context.Context, userID uint) ([]uint, error)
}

// --- STOCKAGE MEDIA ---

type MediaStore interface {
	// ValidateImage rejects anything that does not decode as an image; the error text
	// is shown next to the form field.
	ValidateImage(up *domain.Upload) error
	Save(ctx context.Context, namespace string, up *domain.Upload) (string, error)
	Remove(ctx context.Context, path string) error
}

// --- MESSAGERIE (BROKER) ---

type EventPublisher interface {
	PublishPostCreated(ctx context.Context, post *domain.Post) error
	PublishPostUpdated(ctx context.Context, post *domain.Post) error
	PublishCommentCreated(ctx context.Context, comment *domain.Comment) error
	PublishFollowed(ctx context.Context, follow domain.Follow) error
	PublishUnfollowed(ctx context.Context, follow domain.Follow) error
}

// --- CACHE ---

// PageCache keeps whole rendered pages for a fixed TTL chosen by the adapter.
type PageCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, page []byte) error
	Clear(ctx context.Context) error
}

// --- SÉCURITÉ (CRYPTO) ---

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type TokenProvider interface {
	Generate(user *domain.User) (string, error)
	Validate(token string) (userID uint, err error)
}
