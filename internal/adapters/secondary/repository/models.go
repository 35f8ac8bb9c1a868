package repository

import (
	"time"

	"github.com/nmashkov/yatube-project/internal/core/domain"
)

// Les modèles GORM restent dans l'adapter : le domaine ne porte aucun tag de persistance.

type userModel struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"size:150;not null;uniqueIndex"`
	PasswordHash string `gorm:"not null"`
	FirstName    string `gorm:"size:150"`
	LastName     string `gorm:"size:150"`
	Email        string `gorm:"size:254"`
	CreatedAt    time.Time
}

func (userModel) TableName() string { return "users" }

type groupModel struct {
	ID          uint   `gorm:"primaryKey"`
	Title       string `gorm:"size:200;not null"`
	Slug        string `gorm:"size:255;not null;uniqueIndex"`
	Description string `gorm:"type:text"`
}

func (groupModel) TableName() string { return "groups" }

type postModel struct {
	ID       uint        `gorm:"primaryKey"`
	Text     string      `gorm:"type:text;not null"`
	Created  time.Time   `gorm:"not null;index"`
	AuthorID uint        `gorm:"not null;index"`
	Author   *userModel  `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	GroupID  *uint       `gorm:"index"`
	Group    *groupModel `gorm:"foreignKey:GroupID;constraint:OnDelete:SET NULL"`
	Image    string      `gorm:"size:255"`
}

func (postModel) TableName() string { return "posts" }

type commentModel struct {
	ID       uint       `gorm:"primaryKey"`
	PostID   uint       `gorm:"not null;index"`
	Post     *postModel `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	AuthorID uint       `gorm:"not null;index"`
	Author   *userModel `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Text     string     `gorm:"type:text;not null"`
	Created  time.Time  `gorm:"not null"`
}

func (commentModel) TableName() string { return "comments" }

type followModel struct {
	ID        uint       `gorm:"primaryKey"`
	UserID    uint       `gorm:"not null;uniqueIndex:idx_follow_pair"`
	User      *userModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	AuthorID  uint       `gorm:"not null;uniqueIndex:idx_follow_pair;index"`
	Author    *userModel `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

func (followModel) TableName() string { return "follows" }

// --- MAPPING ---

func (m *userModel) toDomain() *domain.User {
	if m == nil {
		return nil
	}
	return &domain.User{
		ID:           m.ID,
		Username:     m.Username,
		PasswordHash: m.PasswordHash,
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		Email:        m.Email,
		CreatedAt:    m.CreatedAt,
	}
}

func userFromDomain(u *domain.User) *userModel {
	return &userModel{
		ID:           u.ID,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		CreatedAt:    u.CreatedAt,
	}
}

func (m *groupModel) toDomain() *domain.Group {
	if m == nil {
		return nil
	}
	return &domain.Group{ID: m.ID, Title: m.Title, Slug: m.Slug, Description: m.Description}
}

func (m *postModel) toDomain() *domain.Post {
	return &domain.Post{
		ID:       m.ID,
		Text:     m.Text,
		AuthorID: m.AuthorID,
		Author:   m.Author.toDomain(),
		GroupID:  m.GroupID,
		Group:    m.Group.toDomain(),
		Image:    m.Image,
		Created:  m.Created,
	}
}

func postFromDomain(p *domain.Post) *postModel {
	return &postModel{
		ID:       p.ID,
		Text:     p.Text,
		Created:  p.Created,
		AuthorID: p.AuthorID,
		GroupID:  p.GroupID,
		Image:    p.Image,
	}
}

func (m *commentModel) toDomain() *domain.Comment {
	return &domain.Comment{
		ID:       m.ID,
		Text:     m.Text,
		PostID:   m.PostID,
		AuthorID: m.AuthorID,
		Author:   m.Author.toDomain(),
		Created:  m.Created,
	}
}
