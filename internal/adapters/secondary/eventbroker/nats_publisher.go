package eventbroker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/nmashkov/yatube-project/internal/core/domain"
)

// Subjects published by the service.
const (
	SubjectPostCreated    = "yatube.post.created"
	SubjectPostUpdated    = "yatube.post.updated"
	SubjectCommentCreated = "yatube.comment.created"
	SubjectFollowCreated  = "yatube.follow.created"
	SubjectFollowDeleted  = "yatube.follow.deleted"
)

type NatsPublisher struct {
	nc *nats.Conn
}

func NewNatsPublisher(nc *nats.Conn) *NatsPublisher {
	return &NatsPublisher{nc: nc}
}

// Structures des events (contrat implicite avec les consommateurs)

type PostEvent struct {
	ID       uint      `json:"id"`
	AuthorID uint      `json:"author_id"`
	GroupID  *uint     `json:"group_id,omitempty"`
	Snippet  string    `json:"snippet"`
	HasImage bool      `json:"has_image"`
	Created  time.Time `json:"created"`
}

type CommentEvent struct {
	ID       uint      `json:"id"`
	PostID   uint      `json:"post_id"`
	AuthorID uint      `json:"author_id"`
	Created  time.Time `json:"created"`
}

type FollowEvent struct {
	UserID   uint      `json:"user_id"`
	AuthorID uint      `json:"author_id"`
	At       time.Time `json:"at"`
}

func (p *NatsPublisher) PublishPostCreated(ctx context.Context, post *domain.Post) error {
	return p.publish(ctx, SubjectPostCreated, postEvent(post))
}

func (p *NatsPublisher) PublishPostUpdated(ctx context.Context, post *domain.Post) error {
	return p.publish(ctx, SubjectPostUpdated, postEvent(post))
}

func (p *NatsPublisher) PublishCommentCreated(ctx context.Context, c *domain.Comment) error {
	return p.publish(ctx, SubjectCommentCreated, CommentEvent{
		ID:       c.ID,
		PostID:   c.PostID,
		AuthorID: c.AuthorID,
		Created:  c.Created,
	})
}

func (p *NatsPublisher) PublishFollowed(ctx context.Context, f domain.Follow) error {
	return p.publish(ctx, SubjectFollowCreated, FollowEvent{UserID: f.UserID, AuthorID: f.AuthorID, At: time.Now().UTC()})
}

func (p *NatsPublisher) PublishUnfollowed(ctx context.Context, f domain.Follow) error {
	return p.publish(ctx, SubjectFollowDeleted, FollowEvent{UserID: f.UserID, AuthorID: f.AuthorID, At: time.Now().UTC()})
}

func (p *NatsPublisher) publish(ctx context.Context, subject string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshalling error: %w", err)
	}

	msg := &nats.Msg{
		Subject: subject,
		Data:    data,
		Header:  nats.Header{},
	}
	// Span producteur, parent du span consommateur côté abonnés
	ctx, span := otel.Tracer("yatube-eventbroker").Start(ctx, "publish "+subject, trace.WithSpanKind(trace.SpanKindProducer))
	defer span.End()

	// 👇 Injection du trace context dans les headers NATS
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(msg.Header))

	slog.DebugContext(ctx, "📢 Publishing event with trace context", "subject", subject)
	if err := p.nc.PublishMsg(msg); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func postEvent(post *domain.Post) PostEvent {
	return PostEvent{
		ID:       post.ID,
		AuthorID: post.AuthorID,
		GroupID:  post.GroupID,
		Snippet:  post.ShortText(),
		HasImage: post.HasImage(),
		Created:  post.Created,
	}
}
