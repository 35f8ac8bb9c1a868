package ports

import (
	"context"
	"time"

	"github.com/nmashkov/yatube-project/internal/core/domain"
)

// --- OUTPUTS ---

type GroupListing struct {
	Group *domain.Group
	Page  *domain.PostPage
}

type AuthorListing struct {
	Author        *domain.User
	Page          *domain.PostPage
	PostCount     int64
	FollowerCount int64
	Following     bool
}

// FeedListing is the followed-authors page. Page is empty when Message says so.
type FeedListing struct {
	Page    *domain.PostPage
	Message string
}

type PostDetail struct {
	Post          *domain.Post
	Comments      []*domain.Comment
	PostCount     int64
	FollowerCount int64
	Following     bool
}

// --- INPUTS ---

type SignUpCmd struct {
	Username  string `validate:"required"`
	Password  string `validate:"required,min=8"`
	FirstName string
	LastName  string
	Email     string `validate:"omitempty,email"`
}

type Session struct {
	User      *domain.User
	Token     string
	ExpiresIn time.Duration
}

// --- PORTS PRIMAIRES (Driving) ---

type ListingService interface {
	ListIndex(ctx context.Context, page string) (*domain.PostPage, error)
	ListByGroup(ctx context.Context, slug, page string) (*GroupListing, error)
	ListByAuthor(ctx context.Context, caller domain.Caller, username, page string) (*AuthorListing, error)
	ListFollowed(ctx context.Context, caller domain.Caller, page string) (*FeedListing, error)
	GetPostDetail(ctx context.Context, caller domain.Caller, postID uint) (*PostDetail, error)
	ListGroups(ctx context.Context) ([]*domain.Group, error)
}

type AuthoringService interface {
	CreatePost(ctx context.Context, caller domain.Caller, in domain.PostInput) (*domain.Post, error)
	PostForEdit(ctx context.Context, caller domain.Caller, postID uint) (*domain.Post, error)
	EditPost(ctx context.Context, caller domain.Caller, postID uint, in domain.PostInput) (*domain.Post, error)
	AddComment(ctx context.Context, caller domain.Caller, postID uint, in domain.CommentInput) (*domain.Comment, error)
}

type FollowService interface {
	Follow(ctx context.Context, caller domain.Caller, username string) (*domain.User, error)
	Unfollow(ctx context.Context, caller domain.Caller, username string) (*domain.User, error)
}

type IdentityService interface {
	SignUp(ctx context.Context, cmd SignUpCmd) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*Session, error)
	Authenticate(ctx context.Context, token string) domain.Caller
}
