package domain

import (
	"net/mail"
	"strings"
	"time"
)

type User struct {
	ID           uint
	Username     string
	PasswordHash string
	FirstName    string
	LastName     string
	Email        string
	CreatedAt    time.Time
}

// NewUser validates the sign-up invariants and builds the entity.
func NewUser(username, passwordHash, firstName, lastName, email string) (*User, error) {
	verr := NewValidationError()

	username = strings.TrimSpace(username)
	if len([]rune(username)) < 3 {
		verr.Add("username", "Username must be at least 3 characters.")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			verr.Add("email", "Enter a valid email address.")
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	return &User{
		Username:     username,
		PasswordHash: passwordHash,
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
		Email:        email,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// DisplayName falls back to the username when no full name was given.
func (u *User) DisplayName() string {
	full := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if full == "" {
		return u.Username
	}
	return full
}
