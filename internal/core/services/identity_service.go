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

const msgUsernameTaken = "A user with that username already exists."

var _ ports.IdentityService = (*IdentityService)(nil)

// IdentityService handles accounts and web sessions.
type IdentityService struct {
	users      ports.UserRepository
	hasher     ports.PasswordHasher
	tokens     ports.TokenProvider
	sessionTTL time.Duration
}

func NewIdentityService(users ports.UserRepository, hasher ports.PasswordHasher, tokens ports.TokenProvider, sessionTTL time.Duration) *IdentityService {
	return &IdentityService{
		users:      users,
		hasher:     hasher,
		tokens:     tokens,
		sessionTTL: sessionTTL,
	}
}

// --- AUTHENTIFICATION ---

func (s *IdentityService) SignUp(ctx context.Context, cmd ports.SignUpCmd) (*domain.User, error) {
	cmd.Username = strings.TrimSpace(cmd.Username)
	cmd.Email = strings.TrimSpace(cmd.Email)

	verr := domain.NewValidationError()
	if err := checkStruct(verr, cmd); err != nil {
		return nil, err
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	// 1. Fail Fast : unicité du username (la contrainte UNIQUE reste la garantie finale)
	if _, err := s.users.GetByUsername(ctx, cmd.Username); err == nil {
		return nil, usernameTaken()
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	// 2. Hachage du mot de passe
	hash, err := s.hasher.Hash(cmd.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing failed: %w", err)
	}

	// 3. Invariants du domaine
	user, err := domain.NewUser(cmd.Username, hash, cmd.FirstName, cmd.LastName, cmd.Email)
	if err != nil {
		return nil, err
	}

	// 4. Persistance
	if err := s.users.Save(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUsernameTaken) {
			return nil, usernameTaken()
		}
		return nil, fmt.Errorf("repository save failed: %w", err)
	}

	slog.InfoContext(ctx, "user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

func (s *IdentityService) Login(ctx context.Context, username, password string) (*ports.Session, error) {
	// On ne dit pas si c'est le username ou le mot de passe qui est faux
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, fmt.Errorf("login token gen failed: %w", err)
	}

	return &ports.Session{User: user, Token: token, ExpiresIn: s.sessionTTL}, nil
}

// Authenticate never fails: a bad or stale token is an anonymous caller.
func (s *IdentityService) Authenticate(ctx context.Context, token string) domain.Caller {
	if token == "" {
		return domain.Anonymous
	}

	userID, err := s.tokens.Validate(token)
	if err != nil {
		slog.DebugContext(ctx, "session token rejected", "error", err)
		return domain.Anonymous
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return domain.Anonymous
	}
	return domain.CallerFor(user)
}

func usernameTaken() error {
	verr := domain.NewValidationError()
	verr.Add("username", msgUsernameTaken)
	return verr
}
