package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mydigitalspace/knowledgehub/internal/hub/domain"
	"github.com/mydigitalspace/knowledgehub/internal/hub/service"
	"github.com/mydigitalspace/knowledgehub/internal/hub/store"
	"github.com/mydigitalspace/knowledgehub/internal/hub/store/drivers/sqlite"
	"github.com/mydigitalspace/knowledgehub/pkg/jwtx"
)

const testIssuer = "knowledgehub"

var testSecret = []byte("test-secret-at-least-32-bytes-long!")

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newAuthService(t *testing.T, s store.Store) *service.AuthService {
	t.Helper()

	signer, err := jwtx.NewSignerHS256(testSecret)
	require.NoError(t, err)
	return &service.AuthService{
		Store:  s,
		Signer: signer,
		Issuer: testIssuer,
		TTL:    time.Hour,
	}
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestStore(t)
	auth := newAuthService(t, s)
	ctx := context.Background()

	user, token, err := auth.Register(ctx, "Alice", "Alice@Example.com", "secret1", "secret1")
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", user.Email, "email is lowercased")
	require.Equal(t, domain.RoleEditor, user.Role)
	require.True(t, user.CanCreateNotes)
	require.NotEmpty(t, token)

	verifier, err := jwtx.NewVerifierHS256(testSecret, testIssuer)
	require.NoError(t, err)
	claims, err := verifier.Verify(token)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.Subject)
	require.NotEmpty(t, claims.ID, "token carries a jti")

	loggedIn, token2, err := auth.Login(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)
	require.Equal(t, user.ID, loggedIn.ID)
	require.NotEmpty(t, token2)
}

func TestRegisterValidation(t *testing.T) {
	s := newTestStore(t)
	auth := newAuthService(t, s)
	ctx := context.Background()

	cases := []struct {
		name                              string
		userName, email, password, confirm string
	}{
		{"short name", "A", "a@b.com", "secret1", "secret1"},
		{"bad email", "Alice", "not-an-email", "secret1", "secret1"},
		{"short password", "Alice", "a@b.com", "12345", "12345"},
		{"mismatched confirm", "Alice", "a@b.com", "secret1", "secret2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := auth.Register(ctx, tc.userName, tc.email, tc.password, tc.confirm)
			require.True(t, service.IsValidation(err), "expected validation error, got %v", err)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	auth := newAuthService(t, s)
	ctx := context.Background()

	_, _, err := auth.Register(ctx, "Alice", "a@b.com", "secret1", "secret1")
	require.NoError(t, err)

	_, _, err = auth.Register(ctx, "Other", "a@b.com", "secret2", "secret2")
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestLoginFailuresLookAlike(t *testing.T) {
	s := newTestStore(t)
	auth := newAuthService(t, s)
	ctx := context.Background()

	_, _, err := auth.Register(ctx, "Alice", "a@b.com", "secret1", "secret1")
	require.NoError(t, err)

	_, _, err = auth.Login(ctx, "unknown@b.com", "secret1")
	require.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, _, err = auth.Login(ctx, "a@b.com", "wrong-password")
	require.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestUpdateProfile(t *testing.T) {
	s := newTestStore(t)
	auth := newAuthService(t, s)
	ctx := context.Background()

	user, _, err := auth.Register(ctx, "Alice", "a@b.com", "secret1", "secret1")
	require.NoError(t, err)

	updated, err := auth.UpdateProfile(ctx, user.ID, "  Alice Cooper  ")
	require.NoError(t, err)
	require.Equal(t, "Alice Cooper", updated.Name)

	_, err = auth.UpdateProfile(ctx, user.ID, " A ")
	require.True(t, service.IsValidation(err))
}
