package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/analytica/backend/internal/config"
	"github.com/analytica/backend/internal/model"
)

func newTestAuthService(t *testing.T) (*AuthService, *fakeUserRepo, *fakeLedger) {
	t.Helper()
	users := newFakeUserRepo()
	ledger := newFakeLedger()
	svc, err := NewAuthService(users, ledger, config.AuthConfig{JWTSecret: "test-secret", JWTAccessTTL: "1h"}, nil)
	require.NoError(t, err)
	return svc, users, ledger
}

func TestNewAuthServiceValidatesConfig(t *testing.T) {
	_, err := NewAuthService(newFakeUserRepo(), newFakeLedger(), config.AuthConfig{JWTAccessTTL: "1h"}, nil)
	assert.ErrorIs(t, err, ErrMisconfigured)

	_, err = NewAuthService(newFakeUserRepo(), newFakeLedger(), config.AuthConfig{JWTSecret: "x", JWTAccessTTL: "soon"}, nil)
	assert.ErrorIs(t, err, ErrMisconfigured)
}

func TestRegisterAndVerify(t *testing.T) {
	svc, users, _ := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "password123")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NotEqual(t, "password123", users.users["alice"].PasswordHash)

	verified, err := svc.Verify(ctx, "alice", "password123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, verified.ID)
}

func TestRegisterRejectsDuplicate(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "password123")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "another-password")
	assert.ErrorIs(t, err, ErrDuplicateUsername)
}

func TestRegisterValidatesLengths(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	cases := []struct{ username, password string }{
		{"", "password123"},
		{"al", "password123"},
		{"alice", ""},
		{"alice", "short"},
		{strings.Repeat("u", maxUsernameLength+1), "password123"},
		{"alice", strings.Repeat("p", maxPasswordBytes+1)},
		{"alice", strings.Repeat("p", 100)},
		{"alice", strings.Repeat("é", 37)},
	}
	for _, tc := range cases {
		_, err := svc.Register(ctx, tc.username, tc.password)
		assert.ErrorIs(t, err, ErrInvalidInput, "%q/%q", tc.username, tc.password)
	}
}

func TestRegisterAcceptsUpperBounds(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	cases := []struct{ username, password string }{
		{strings.Repeat("u", maxUsernameLength), "password123"},
		{"alice", strings.Repeat("p", maxPasswordBytes)},
		{strings.Repeat("ü", maxUsernameLength), "password123"},
		{"bob", strings.Repeat("é", 36)},
	}
	for _, tc := range cases {
		user, err := svc.Register(ctx, tc.username, tc.password)
		require.NoError(t, err, "%q/%q", tc.username, tc.password)

		_, err = svc.Verify(ctx, user.Username, tc.password)
		assert.NoError(t, err)
	}
}

func TestVerifyFailuresAreUniform(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, "alice", "password123")
	require.NoError(t, err)

	_, unknownErr := svc.Verify(ctx, "mallory", "password123")
	_, wrongErr := svc.Verify(ctx, "alice", "wrong-password")

	assert.ErrorIs(t, unknownErr, ErrInvalidCredentials)
	assert.ErrorIs(t, wrongErr, ErrInvalidCredentials)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
}

func TestVerifyReportsStorageFailure(t *testing.T) {
	svc, users, _ := newTestAuthService(t)
	users.err = errors.New("connection refused")

	_, err := svc.Verify(context.Background(), "alice", "password123")
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginThenAdmit(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, "alice", "password123")
	require.NoError(t, err)

	tok, err := svc.Login(ctx, "alice", "password123")
	require.NoError(t, err)

	user, err := svc.Admit(ctx, tok.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, tok.TokenID, user.TokenID)
}

func TestLogoutRevokesOnlyThatToken(t *testing.T) {
	svc, _, ledger := newTestAuthService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, "alice", "password123")
	require.NoError(t, err)

	first, err := svc.Login(ctx, "alice", "password123")
	require.NoError(t, err)
	second, err := svc.Login(ctx, "alice", "password123")
	require.NoError(t, err)

	user, err := svc.Admit(ctx, first.Token)
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx, user))
	require.NoError(t, svc.Logout(ctx, user))
	assert.Len(t, ledger.revoked, 1)

	_, err = svc.Admit(ctx, first.Token)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	_, err = svc.Admit(ctx, second.Token)
	assert.NoError(t, err)
}

func TestLogoutRequiresTokenID(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	err := svc.Logout(context.Background(), &model.AuthUser{ID: 1, Username: "alice"})
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestAdmitRejectsExpiredToken(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, "alice", "password123")
	require.NoError(t, err)

	start := time.Now()
	svc.tokens.now = fixedClock(start)
	tok, err := svc.Login(ctx, "alice", "password123")
	require.NoError(t, err)

	svc.tokens.now = fixedClock(start.Add(2 * time.Hour))
	_, err = svc.Admit(ctx, tok.Token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestAdmitChecksRevocationBeforeAccount(t *testing.T) {
	svc, users, ledger := newTestAuthService(t)
	ctx := context.Background()

	tok, err := svc.Tokens().Issue("ghost")
	require.NoError(t, err)

	_, err = svc.Admit(ctx, tok.Token)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	ledger.revoked[tok.TokenID] = tok.ExpiresAt
	_, err = svc.Admit(ctx, tok.Token)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	users.err = errors.New("down")
	ledger.err = errors.New("down")
	_, err = svc.Admit(ctx, tok.Token)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestPurgeExpiredRevocations(t *testing.T) {
	svc, _, ledger := newTestAuthService(t)
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = fixedClock(now)
	ledger.revoked["old"] = now.Add(-time.Minute)
	ledger.revoked["live"] = now.Add(time.Minute)

	n, err := svc.PurgeExpiredRevocations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Contains(t, ledger.revoked, "live")
	assert.NotContains(t, ledger.revoked, "old")
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	svc, users, _ := newTestAuthService(t)
	ctx := context.Background()

	require.NoError(t, svc.EnsureAdmin(ctx, "admin", "admin-password"))
	require.NoError(t, svc.EnsureAdmin(ctx, "admin", "admin-password"))
	assert.Len(t, users.users, 1)
}
