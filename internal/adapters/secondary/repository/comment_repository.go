package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nmashkov/yatube-project/internal/core/domain"
	"github.com/nmashkov/yatube-project/internal/core/ports"
)

type CommentRepo struct {
	db *gorm.DB
}

func NewCommentRepo(db *gorm.DB) ports.CommentRepository {
	return &CommentRepo{db: db}
}

func (r *CommentRepo) Save(ctx context.Context, comment *domain.Comment) error {
	m := &commentModel{
		PostID:   comment.PostID,
		AuthorID: comment.AuthorID,
		Text:     comment.Text,
		Created:  comment.Created,
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error; err != nil {
		return err
	}
	comment.ID = m.ID
	return nil
}

// ListByPost returns comments in insertion order.
func (r *CommentRepo) ListByPost(ctx context.Context, postID uint) ([]*domain.Comment, error) {
	var rows []commentModel
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	comments := make([]*domain.Comment, 0, len(rows))
	for i := range rows {
		comments = append(comments, rows[i].toDomain())
	}
	return comments, nil
}
