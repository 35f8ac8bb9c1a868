package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nmashkov/yatube-project/internal/core/domain"
	"github.com/nmashkov/yatube-project/internal/core/ports"
)

type GroupRepo struct {
	db *gorm.DB
}

func NewGroupRepo(db *gorm.DB) ports.GroupRepository {
	return &GroupRepo{db: db}
}

// Save inserts the group, or refreshes title and description when the slug exists.
func (r *GroupRepo) Save(ctx context.Context, group *domain.Group) error {
	m := &groupModel{Title: group.Title, Slug: group.Slug, Description: group.Description}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "description"}),
	}).Create(m).Error
	if err != nil {
		return err
	}

	// Après un upsert l'ID n'est pas toujours renvoyé par le driver
	stored, err := r.FindBySlug(ctx, group.Slug)
	if err != nil {
		return err
	}
	group.ID = stored.ID
	return nil
}

func (r *GroupRepo) FindByID(ctx context.Context, id uint) (*domain.Group, error) {
	var m groupModel
	err := r.db.WithContext(ctx).First(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrGroupNotFound
	}
	if err != nil {
		return nil, err
	}
	return m.toDomain(), nil
}

func (r *GroupRepo) FindBySlug(ctx context.Context, slug string) (*domain.Group, error) {
	var m groupModel
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrGroupNotFound
	}
	if err != nil {
		return nil, err
	}
	return m.toDomain(), nil
}

func (r *GroupRepo) List(ctx context.Context) ([]*domain.Group, error) {
	var rows []groupModel
	if err := r.db.WithContext(ctx).Order("title").Find(&rows).Error; err != nil {
		return nil, err
	}
	groups := make([]*domain.Group, 0, len(rows))
	for i := range rows {
		groups = append(groups, rows[i].toDomain())
	}
	return groups, nil
}
