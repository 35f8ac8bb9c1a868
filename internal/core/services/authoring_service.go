package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nmashkov/yatube-project/internal/core/domain"
	"github.com/nmashkov/yatube-project/internal/core/ports"
)

const postImageNamespace = "posts"

type authoringService struct {
	posts     ports.PostRepository
	groups    ports.GroupRepository
	comments  ports.CommentRepository
	media     ports.MediaStore
	publisher ports.EventPublisher
}

func NewAuthoringService(
	posts ports.PostRepository,
	groups ports.GroupRepository,
	comments ports.CommentRepository,
	media ports.MediaStore,
	pub ports.EventPublisher,
) ports.AuthoringService {
	return &authoringService{
		posts:     posts,
		groups:    groups,
		comments:  comments,
		media:     media,
		publisher: pub,
	}
}

func (s *authoringService) CreatePost(ctx context.Context, caller domain.Caller, in domain.PostInput) (*domain.Post, error) {
	if !caller.IsAuthenticated() {
		return nil, domain.ErrUnauthenticated
	}

	// 1. Validation du formulaire (texte, groupe, image)
	if err := s.validatePost(ctx, &in); err != nil {
		return nil, err
	}

	// 2. L'image n'est écrite qu'une fois le formulaire valide
	var image string
	if in.Image != nil {
		path, err := s.media.Save(ctx, postImageNamespace, in.Image)
		if err != nil {
			return nil, fmt.Errorf("store image: %w", err)
		}
		image = path
	}

	post := &domain.Post{
		Text:     in.Text,
		AuthorID: caller.UserID,
		GroupID:  in.GroupID,
		Image:    image,
		Created:  time.Now().UTC(),
	}

	// 3. Sauvegarde DB (Source of Truth)
	if err := s.posts.Save(ctx, post); err != nil {
		s.discardImage(ctx, image)
		return nil, fmt.Errorf("save post: %w", err)
	}

	// 4. Publication (best effort)
	if err := s.publisher.PublishPostCreated(ctx, post); err != nil {
		slog.WarnContext(ctx, "publish post created failed", "post_id", post.ID, "error", err)
	}

	return post, nil
}

func (s *authoringService) PostForEdit(ctx context.Context, caller domain.Caller, postID uint) (*domain.Post, error) {
	if !caller.IsAuthenticated() {
		return nil, domain.ErrUnauthenticated
	}
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	// Seul l'auteur peut modifier
	if !caller.Is(post.AuthorID) {
		return nil, domain.ErrForbidden
	}
	return post, nil
}

func (s *authoringService) EditPost(ctx context.Context, caller domain.Caller, postID uint, in domain.PostInput) (*domain.Post, error) {
	// 1. Récupérer l'existant et vérifier la propriété
	post, err := s.PostForEdit(ctx, caller, postID)
	if err != nil {
		return nil, err
	}

	if err := s.validatePost(ctx, &in); err != nil {
		return nil, err
	}

	// 2. Mise à jour des champs
	previousImage := post.Image
	if in.Image != nil {
		path, err := s.media.Save(ctx, postImageNamespace, in.Image)
		if err != nil {
			return nil, fmt.Errorf("store image: %w", err)
		}
		post.Image = path
	} else if in.ClearImage {
		post.Image = ""
	}
	post.Text = in.Text
	post.GroupID = in.GroupID
	post.Group = nil

	// 3. Persistance
	if err := s.posts.Update(ctx, post); err != nil {
		if post.Image != previousImage {
			s.discardImage(ctx, post.Image)
		}
		return nil, fmt.Errorf("update post: %w", err)
	}
	if previousImage != "" && post.Image != previousImage {
		s.discardImage(ctx, previousImage)
	}

	if err := s.publisher.PublishPostUpdated(ctx, post); err != nil {
		slog.WarnContext(ctx, "publish post updated failed", "post_id", post.ID, "error", err)
	}

	return post, nil
}

func (s *authoringService) AddComment(ctx context.Context, caller domain.Caller, postID uint, in domain.CommentInput) (*domain.Comment, error) {
	if !caller.IsAuthenticated() {
		return nil, domain.ErrUnauthenticated
	}

	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	in.Text = strings.TrimSpace(in.Text)
	verr := domain.NewValidationError()
	if err := checkStruct(verr, in); err != nil {
		return nil, err
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		Text:     in.Text,
		PostID:   post.ID,
		AuthorID: caller.UserID,
		Created:  time.Now().UTC(),
	}
	if err := s.comments.Save(ctx, comment); err != nil {
		return nil, fmt.Errorf("save comment: %w", err)
	}

	if err := s.publisher.PublishCommentCreated(ctx, comment); err != nil {
		slog.WarnContext(ctx, "publish comment created failed", "comment_id", comment.ID, "error", err)
	}

	return comment, nil
}

// validatePost normalises in and collects every field error before returning.
func (s *authoringService) validatePost(ctx context.Context, in *domain.PostInput) error {
	in.Text = strings.TrimSpace(in.Text)

	verr := domain.NewValidationError()
	if err := checkStruct(verr, *in); err != nil {
		return err
	}

	if in.GroupID != nil {
		if _, err := s.groups.FindByID(ctx, *in.GroupID); err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("lookup group: %w", err)
			}
			verr.Add("group", domain.MsgInvalidChoice)
		}
	}

	if in.Image != nil {
		if err := s.media.ValidateImage(in.Image); err != nil {
			verr.Add("image", err.Error())
		}
	}

	return verr.OrNil()
}

func (s *authoringService) discardImage(ctx context.Context, path string) {
	if path == "" {
		return
	}
	if err := s.media.Remove(ctx, path); err != nil {
		slog.WarnContext(ctx, "remove image failed", "path", path, "error", err)
	}
}
