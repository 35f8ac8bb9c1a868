package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nmashkov/yatube-project/internal/core/domain"
	"github.com/nmashkov/yatube-project/internal/core/ports"
)

const newestFirst = "created DESC, id DESC"

type PostRepo struct {
	db *gorm.DB
}

func NewPostRepo(db *gorm.DB) ports.PostRepository {
	return &PostRepo{db: db}
}

func (r *PostRepo) Save(ctx context.Context, post *domain.Post) error {
	m := postFromDomain(post)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error; err != nil {
		return err
	}
	post.ID = m.ID
	return nil
}

// Update réécrit les colonnes éditables ; id, auteur et date restent inchangés.
func (r *PostRepo) Update(ctx context.Context, post *domain.Post) error {
	res := r.db.WithContext(ctx).
		Model(&postModel{}).
		Where("id = ?", post.ID).
		Select("text", "group_id", "image").
		Updates(map[string]any{
			"text":     post.Text,
			"group_id": post.GroupID,
			"image":    post.Image,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}

func (r *PostRepo) Delete(ctx context.Context, postID uint) error {
	res := r.db.WithContext(ctx).Delete(&postModel{}, postID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}

func (r *PostRepo) FindByID(ctx context.Context, postID uint) (*domain.Post, error) {
	var m postModel
	err := r.withRelations(ctx).First(&m, postID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	return m.toDomain(), nil
}

func (r *PostRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&postModel{}).Count(&n).Error
	return n, err
}

func (r *PostRepo) List(ctx context.Context, offset, limit int) ([]*domain.Post, error) {
	return r.page(r.withRelations(ctx), offset, limit)
}

func (r *PostRepo) CountByGroup(ctx context.Context, groupID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&postModel{}).Where("group_id = ?", groupID).Count(&n).Error
	return n, err
}

func (r *PostRepo) ListByGroup(ctx context.Context, groupID uint, offset, limit int) ([]*domain.Post, error) {
	return r.page(r.withRelations(ctx).Where("group_id = ?", groupID), offset, limit)
}

func (r *PostRepo) CountByAuthors(ctx context.Context, authorIDs []uint) (int64, error) {
	if len(authorIDs) == 0 {
		return 0, nil
	}
	var n int64
	err := r.db.WithContext(ctx).Model(&postModel{}).Where("author_id IN ?", authorIDs).Count(&n).Error
	return n, err
}

func (r *PostRepo) ListByAuthors(ctx context.Context, authorIDs []uint, offset, limit int) ([]*domain.Post, error) {
	if len(authorIDs) == 0 {
		return []*domain.Post{}, nil
	}
	return r.page(r.withRelations(ctx).Where("author_id IN ?", authorIDs), offset, limit)
}

func (r *PostRepo) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Author").Preload("Group")
}

func (r *PostRepo) page(q *gorm.DB, offset, limit int) ([]*domain.Post, error) {
	var rows []postModel
	if err := q.Order(newestFirst).Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	posts := make([]*domain.Post, 0, len(rows))
	for i := range rows {
		posts = append(posts, rows[i].toDomain())
	}
	return posts, nil
}
