package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nmashkov/yatube-project/internal/core/ports"
)

type FollowRepo struct {
	db *gorm.DB
}

func NewFollowRepo(db *gorm.DB) ports.FollowRepository {
	return &FollowRepo{db: db}
}

// Create s'appuie sur l'index unique (user_id, author_id) : un doublon est ignoré.
func (r *FollowRepo) Create(ctx context.Context, userID, authorID uint) error {
	m := &followModel{UserID: userID, AuthorID: authorID}
	return r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(m).Error
}

func (r *FollowRepo) Delete(ctx context.Context, userID, authorID uint) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&followModel{}).Error
}

func (r *FollowRepo) Exists(ctx context.Context, userID, authorID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&followModel{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&n).Error
	return n > 0, err
}

func (r *FollowRepo) CountFollowers(ctx context.Context, authorID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&followModel{}).Where("author_id = ?", authorID).Count(&n).Error
	return n, err
}

func (r *FollowRepo) FollowedAuthorIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&followModel{}).
		Where("user_id = ?", userID).
		Order("author_id").
		Pluck("author_id", &ids).Error
	return ids, err
}
