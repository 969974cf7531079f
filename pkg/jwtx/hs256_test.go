package jwtx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testIssuer = "knowledgehub"

func TestHS256RoundTrip(t *testing.T) {
	secret := []byte("test-secret-at-least-32-bytes-long!")

	signer, err := NewSignerHS256(secret)
	require.NoError(t, err)
	verifier, err := NewVerifierHS256(secret, testIssuer)
	require.NoError(t, err)

	claims := NewAccessClaims(
		"01HZXW4N8PQR5T6V7X8Y9Z0A1B",
		"alice@example.com",
		"editor",
		time.Hour,
		testIssuer,
		time.Now().UTC(),
	)

	token, err := signer.Sign(claims)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := verifier.Verify(token)
	require.NoError(t, err)
	require.Equal(t, claims.Subject, got.Subject)
	require.Equal(t, "alice@example.com", got.Email)
	require.Equal(t, "editor", got.Role)
	require.NotEmpty(t, got.ID, "expected a jti")
}

func TestHS256RejectsWrongSecret(t *testing.T) {
	signer, err := NewSignerHS256([]byte("secret-one-which-is-long-enough!"))
	require.NoError(t, err)
	verifier, err := NewVerifierHS256([]byte("secret-two-which-is-long-enough!"), testIssuer)
	require.NoError(t, err)

	token, err := signer.Sign(NewAccessClaims(
		"user", "a@b.c", "viewer", time.Hour, testIssuer, time.Now().UTC(),
	))
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, ErrInvalidSig)
}

func TestHS256RejectsExpiredToken(t *testing.T) {
	secret := []byte("test-secret-at-least-32-bytes-long!")
	signer, err := NewSignerHS256(secret)
	require.NoError(t, err)
	verifier, err := NewVerifierHS256(secret, testIssuer)
	require.NoError(t, err)

	token, err := signer.Sign(NewAccessClaims(
		"user", "a@b.c", "viewer", time.Hour, testIssuer,
		time.Now().UTC().Add(-2*time.Hour),
	))
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, ErrExpired)
}

func TestHS256RejectsWrongIssuer(t *testing.T) {
	secret := []byte("test-secret-at-least-32-bytes-long!")
	signer, err := NewSignerHS256(secret)
	require.NoError(t, err)
	verifier, err := NewVerifierHS256(secret, "someone-else")
	require.NoError(t, err)

	token, err := signer.Sign(NewAccessClaims(
		"user", "a@b.c", "viewer", time.Hour, testIssuer, time.Now().UTC(),
	))
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, ErrIssuer)
}

func TestHS256RejectsGarbage(t *testing.T) {
	verifier, err := NewVerifierHS256([]byte("test-secret-at-least-32-bytes!!!"), testIssuer)
	require.NoError(t, err)

	_, err = verifier.Verify("definitely.not.ajwt")
	require.Error(t, err)
}

func TestEmptySecretRejected(t *testing.T) {
	_, err := NewSignerHS256(nil)
	require.Error(t, err)
	_, err = NewVerifierHS256(nil, "")
	require.Error(t, err)
}
