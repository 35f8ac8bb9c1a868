package services

import (
	"context"
	"fmt"

	"github.com/nmashkov/yatube-project/internal/core/domain"
	"github.com/nmashkov/yatube-project/internal/core/ports"
)

type listingService struct {
	posts    ports.PostRepository
	groups   ports.GroupRepository
	users    ports.UserRepository
	comments ports.CommentRepository
	follows  ports.FollowRepository
	pageSize int
}

func NewListingService(
	posts ports.PostRepository,
	groups ports.GroupRepository,
	users ports.UserRepository,
	comments ports.CommentRepository,
	follows ports.FollowRepository,
	pageSize int,
) ports.ListingService {
	if pageSize <= 0 {
		pageSize = domain.DefaultPageSize
	}
	return &listingService{
		posts:    posts,
		groups:   groups,
		users:    users,
		comments: comments,
		follows:  follows,
		pageSize: pageSize,
	}
}

func (s *listingService) ListIndex(ctx context.Context, page string) (*domain.PostPage, error) {
	total, err := s.posts.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}
	w := domain.NewPaginator(total, s.pageSize).GetPage(page)

	posts, err := s.posts.List(ctx, w.Offset, w.Limit)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return &domain.PostPage{PageWindow: w, Posts: posts}, nil
}

func (s *listingService) ListByGroup(ctx context.Context, slug, page string) (*ports.GroupListing, error) {
	group, err := s.groups.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	total, err := s.posts.CountByGroup(ctx, group.ID)
	if err != nil {
		return nil, fmt.Errorf("count group posts: %w", err)
	}
	w := domain.NewPaginator(total, s.pageSize).GetPage(page)

	posts, err := s.posts.ListByGroup(ctx, group.ID, w.Offset, w.Limit)
	if err != nil {
		return nil, fmt.Errorf("list group posts: %w", err)
	}
	return &ports.GroupListing{
		Group: group,
		Page:  &domain.PostPage{PageWindow: w, Posts: posts},
	}, nil
}

func (s *listingService) ListByAuthor(ctx context.Context, caller domain.Caller, username, page string) (*ports.AuthorListing, error) {
	author, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	authorIDs := []uint{author.ID}
	total, err := s.posts.CountByAuthors(ctx, authorIDs)
	if err != nil {
		return nil, fmt.Errorf("count author posts: %w", err)
	}
	w := domain.NewPaginator(total, s.pageSize).GetPage(page)

	posts, err := s.posts.ListByAuthors(ctx, authorIDs, w.Offset, w.Limit)
	if err != nil {
		return nil, fmt.Errorf("list author posts: %w", err)
	}

	followers, following, err := s.followState(ctx, caller, author.ID)
	if err != nil {
		return nil, err
	}

	return &ports.AuthorListing{
		Author:        author,
		Page:          &domain.PostPage{PageWindow: w, Posts: posts},
		PostCount:     total,
		FollowerCount: followers,
		Following:     following,
	}, nil
}

func (s *listingService) ListFollowed(ctx context.Context, caller domain.Caller, page string) (*ports.FeedListing, error) {
	if !caller.IsAuthenticated() {
		return nil, domain.ErrUnauthenticated
	}

	authorIDs, err := s.follows.FollowedAuthorIDs(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("followed authors: %w", err)
	}
	if len(authorIDs) == 0 {
		return &ports.FeedListing{Page: s.emptyPage(), Message: domain.FeedNoSubscriptions}, nil
	}

	total, err := s.posts.CountByAuthors(ctx, authorIDs)
	if err != nil {
		return nil, fmt.Errorf("count feed posts: %w", err)
	}
	if total == 0 {
		return &ports.FeedListing{Page: s.emptyPage(), Message: domain.FeedNoPosts}, nil
	}

	w := domain.NewPaginator(total, s.pageSize).GetPage(page)
	posts, err := s.posts.ListByAuthors(ctx, authorIDs, w.Offset, w.Limit)
	if err != nil {
		return nil, fmt.Errorf("list feed posts: %w", err)
	}
	return &ports.FeedListing{
		Page:    &domain.PostPage{PageWindow: w, Posts: posts},
		Message: domain.FeedSubscriptions,
	}, nil
}

func (s *listingService) GetPostDetail(ctx context.Context, caller domain.Caller, postID uint) (*ports.PostDetail, error) {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	comments, err := s.comments.ListByPost(ctx, post.ID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	count, err := s.posts.CountByAuthors(ctx, []uint{post.AuthorID})
	if err != nil {
		return nil, fmt.Errorf("count author posts: %w", err)
	}

	followers, following, err := s.followState(ctx, caller, post.AuthorID)
	if err != nil {
		return nil, err
	}

	return &ports.PostDetail{
		Post:          post,
		Comments:      comments,
		PostCount:     count,
		FollowerCount: followers,
		Following:     following,
	}, nil
}

func (s *listingService) ListGroups(ctx context.Context) ([]*domain.Group, error) {
	return s.groups.List(ctx)
}

// followState returns the follower count of authorID and whether caller follows them.
func (s *listingService) followState(ctx context.Context, caller domain.Caller, authorID uint) (int64, bool, error) {
	followers, err := s.follows.CountFollowers(ctx, authorID)
	if err != nil {
		return 0, false, fmt.Errorf("count followers: %w", err)
	}
	if !caller.IsAuthenticated() || caller.UserID == authorID {
		return followers, false, nil
	}
	following, err := s.follows.Exists(ctx, caller.UserID, authorID)
	if err != nil {
		return 0, false, fmt.Errorf("check follow: %w", err)
	}
	return followers, following, nil
}

func (s *listingService) emptyPage() *domain.PostPage {
	return &domain.PostPage{PageWindow: domain.NewPaginator(0, s.pageSize).GetPage("")}
}
