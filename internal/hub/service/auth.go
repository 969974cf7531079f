package service

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/mydigitalspace/knowledgehub/internal/hub/domain"
	"github.com/mydigitalspace/knowledgehub/internal/hub/store"
	"github.com/mydigitalspace/knowledgehub/pkg/cryptox"
	"github.com/mydigitalspace/knowledgehub/pkg/idx"
	"github.com/mydigitalspace/knowledgehub/pkg/jwtx"
	"github.com/mydigitalspace/knowledgehub/pkg/slogx"
)

type AuthService struct {
	Store  store.Store
	Signer jwtx.Signer
	Issuer string
	TTL    time.Duration
}

// Register creates a new account and signs an access token for it. New
// users are editors who may create notes.
func (s *AuthService) Register(ctx context.Context, name, email, password, confirmPassword string) (domain.User, string, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if len(name) < 2 || len(name) > 100 {
		return domain.User{}, "", invalidf("Name must be between 2 and 100 characters")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return domain.User{}, "", invalidf("A valid email address is required")
	}
	if len(password) < 6 {
		return domain.User{}, "", invalidf("Password must be at least 6 characters")
	}
	if password != confirmPassword {
		return domain.User{}, "", invalidf("Passwords do not match")
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, "", err
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:             idx.New().String(),
		Email:          email,
		Name:           name,
		PasswordHash:   hash,
		Role:           domain.RoleEditor,
		CanCreateNotes: true,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		return domain.User{}, "", err
	}

	token, err := s.issueToken(ctx, user)
	if err != nil {
		return domain.User{}, "", err
	}

	slogx.FromContext(ctx).Info("user registered",
		slog.String("user_id", user.ID))
	return user, token, nil
}

// Login verifies credentials and issues an access token. Unknown emails,
// disabled accounts, and wrong passwords all look the same to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return domain.User{}, "", invalidf("Email and password are required")
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, "", ErrInvalidCredentials
		}
		return domain.User{}, "", err
	}

	if !user.IsActive {
		return domain.User{}, "", ErrInvalidCredentials
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		slogx.FromContext(ctx).Info("login failed",
			slog.String("user_id", user.ID))
		return domain.User{}, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(ctx, user)
	if err != nil {
		return domain.User{}, "", err
	}

	return user, token, nil
}

func (s *AuthService) issueToken(ctx context.Context, user domain.User) (string, error) {
	now := time.Now().UTC()
	claims := jwtx.NewAccessClaims(user.ID, user.Email, user.Role, s.TTL, s.Issuer, now)

	token, err := s.Signer.Sign(claims)
	if err != nil {
		return "", err
	}

	if err := s.Store.Sessions().CreateSession(ctx, domain.UserSession{
		ID:        claims.ID,
		UserID:    user.ID,
		ExpiresAt: claims.ExpiresAt.Time,
		CreatedAt: now,
	}); err != nil {
		return "", err
	}

	// Opportunistic housekeeping; failures are not the caller's problem.
	if err := s.Store.Sessions().DeleteExpiredSessions(ctx); err != nil {
		slogx.FromContext(ctx).Warn("session cleanup failed", slog.Any("error", err))
	}

	return token, nil
}

// GetProfile returns the active user by id.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (domain.User, error) {
	return s.Store.Users().GetActiveUserByID(ctx, userID)
}

// UpdateProfile changes the display name.
func (s *AuthService) UpdateProfile(ctx context.Context, userID, name string) (domain.User, error) {
	name = strings.TrimSpace(name)
	if len(name) < 2 {
		return domain.User{}, invalidf("Name must be at least 2 characters")
	}

	if err := s.Store.Users().UpdateName(ctx, userID, name); err != nil {
		return domain.User{}, err
	}
	return s.Store.Users().GetActiveUserByID(ctx, userID)
}
