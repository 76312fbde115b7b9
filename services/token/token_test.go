package token

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"cargo-delivery/apperrors"
	"cargo-delivery/models/user"
)

func testUser() *user.User {
	return &user.User{
		ID:       1,
		Uuid:     "11111111-2222-3333-4444-555555555555",
		Username: "alice",
		Mail:     "alice@x.com",
		Role:     user.RoleDistributor,
	}
}

func TestIssueAndValidate(t *testing.T) {
	svc := New([]byte("test-secret"), time.Hour)

	signed, err := svc.Issue(testUser())
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	claims, err := svc.Validate(signed)
	require.NoError(t, err)
	require.Equal(t, "alice", claims.Username)
	require.Equal(t, user.RoleDistributor, claims.Role)
	require.Equal(t, "11111111-2222-3333-4444-555555555555", claims.Subject)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	svc := New([]byte("test-secret"), -time.Minute)

	signed, err := svc.Issue(testUser())
	require.NoError(t, err)

	_, err = svc.Validate(signed)
	require.True(t, errors.Is(err, apperrors.ErrUnauthorized))
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	signer := New([]byte("secret-a"), time.Hour)
	verifier := New([]byte("secret-b"), time.Hour)

	signed, err := signer.Issue(testUser())
	require.NoError(t, err)

	_, err = verifier.Validate(signed)
	require.True(t, errors.Is(err, apperrors.ErrUnauthorized))
}

func TestValidateRejectsGarbage(t *testing.T) {
	svc := New([]byte("test-secret"), time.Hour)

	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		_, err := svc.Validate(raw)
		require.True(t, errors.Is(err, apperrors.ErrUnauthorized), "raw=%q", raw)
	}
}
