package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nmashkov/yatube-project/internal/core/domain"
	"github.com/nmashkov/yatube-project/internal/core/ports"
)

type followService struct {
	users     ports.UserRepository
	follows   ports.FollowRepository
	publisher ports.EventPublisher
}

func NewFollowService(users ports.UserRepository, follows ports.FollowRepository, pub ports.EventPublisher) ports.FollowService {
	return &followService{users: users, follows: follows, publisher: pub}
}

// Follow returns the target so the caller can redirect to its profile.
// Following yourself or someone already followed is a no-op.
func (s *followService) Follow(ctx context.Context, caller domain.Caller, username string) (*domain.User, error) {
	if !caller.IsAuthenticated() {
		return nil, domain.ErrUnauthenticated
	}

	target, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if caller.Is(target.ID) {
		return target, nil
	}

	exists, err := s.follows.Exists(ctx, caller.UserID, target.ID)
	if err != nil {
		return nil, fmt.Errorf("check follow: %w", err)
	}
	if exists {
		return target, nil
	}

	// Create reste idempotent si deux requêtes se croisent
	if err := s.follows.Create(ctx, caller.UserID, target.ID); err != nil {
		return nil, fmt.Errorf("create follow: %w", err)
	}

	edge := domain.Follow{UserID: caller.UserID, AuthorID: target.ID}
	if err := s.publisher.PublishFollowed(ctx, edge); err != nil {
		slog.WarnContext(ctx, "publish followed failed", "user_id", edge.UserID, "author_id", edge.AuthorID, "error", err)
	}
	return target, nil
}

func (s *followService) Unfollow(ctx context.Context, caller domain.Caller, username string) (*domain.User, error) {
	if !caller.IsAuthenticated() {
		return nil, domain.ErrUnauthenticated
	}

	target, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	exists, err := s.follows.Exists(ctx, caller.UserID, target.ID)
	if err != nil {
		return nil, fmt.Errorf("check follow: %w", err)
	}
	if !exists {
		return target, nil
	}

	if err := s.follows.Delete(ctx, caller.UserID, target.ID); err != nil {
		return nil, fmt.Errorf("delete follow: %w", err)
	}

	edge := domain.Follow{UserID: caller.UserID, AuthorID: target.ID}
	if err := s.publisher.PublishUnfollowed(ctx, edge); err != nil {
		slog.WarnContext(ctx, "publish unfollowed failed", "user_id", edge.UserID, "author_id", edge.AuthorID, "error", err)
	}
	return target, nil
}
