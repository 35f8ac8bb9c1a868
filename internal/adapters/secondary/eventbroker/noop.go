package eventbroker

import (
	"context"

	"github.com/nmashkov/yatube-project/internal/core/domain"
)

// NoopPublisher is used when NATS_URL is empty.
type NoopPublisher struct{}

func (NoopPublisher) PublishPostCreated(context.Context, *domain.Post) error       { return nil }
func (NoopPublisher) PublishPostUpdated(context.Context, *domain.Post) error       { return nil }
func (NoopPublisher) PublishCommentCreated(context.Context, *domain.Comment) error { return nil }
func (NoopPublisher) PublishFollowed(context.Context, domain.Follow) error         { return nil }
func (NoopPublisher) PublishUnfollowed(context.Context, domain.Follow) error       { return nil }
