package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/analytica/backend/internal/config"
	"github.com/analytica/backend/internal/db"
	"github.com/analytica/backend/internal/model"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 64
	minPasswordLength = 8
	// bcrypt only accepts the first 72 bytes of a password.
	maxPasswordBytes = 72
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrMisconfigured      = errors.New("auth config invalid")
)

type UserRepo interface {
	CreateUser(ctx context.Context, username, passwordHash string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
}

type TokenLedger interface {
	RevokeToken(ctx context.Context, jti, username string, expiresAt time.Time) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
	PurgeRevokedTokens(ctx context.Context, before time.Time) (int64, error)
}

type AuthService struct {
	users     UserRepo
	ledger    TokenLedger
	tokens    *TokenIssuer
	dummyHash []byte
	now       func() time.Time
	logger    *zap.Logger
}

func NewAuthService(users UserRepo, ledger TokenLedger, cfg config.AuthConfig, logger *zap.Logger) (*AuthService, error) {
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, fmt.Errorf("%w: JWT_SECRET is required", ErrMisconfigured)
	}

	accessTTL, err := time.ParseDuration(cfg.JWTAccessTTL)
	if err != nil || accessTTL <= 0 {
		return nil, fmt.Errorf("%w: invalid JWT_ACCESS_TTL", ErrMisconfigured)
	}

	dummyHash, err := newDummyHash()
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &AuthService{
		users:     users,
		ledger:    ledger,
		tokens:    NewTokenIssuer([]byte(cfg.JWTSecret), accessTTL),
		dummyHash: dummyHash,
		now:       time.Now,
		logger:    logger,
	}, nil
}

func (s *AuthService) Tokens() *TokenIssuer {
	return s.tokens
}

// EnsureAdmin creates the bootstrap account unless it already exists.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string) error {
	_, err := s.users.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err == nil {
		return nil
	}
	if !db.IsNoRows(err) {
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	_, err = s.Register(ctx, username, password)
	if errors.Is(err, ErrDuplicateUsername) {
		return nil
	}
	return err
}

func (s *AuthService) Register(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, ErrInvalidInput
		}
		return nil, err
	}

	user, err := s.users.CreateUser(ctx, username, string(hash))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	s.logger.Info("account registered", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

// Verify checks credentials. An unknown username and a wrong password both
// yield ErrInvalidCredentials after one bcrypt comparison.
func (s *AuthService) Verify(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if !db.IsNoRows(err) {
			return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*AccessToken, error) {
	user, err := s.Verify(ctx, username, password)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(user.Username)
	if err != nil {
		return nil, err
	}

	s.logger.Info("access token issued",
		zap.String("username", user.Username),
		zap.String("jti", token.TokenID),
		zap.Time("expires_at", token.ExpiresAt),
	)
	return token, nil
}

// Logout revokes the caller's current token. Revoking twice succeeds.
func (s *AuthService) Logout(ctx context.Context, user *model.AuthUser) error {
	if user == nil || user.TokenID == "" {
		return ErrTokenMalformed
	}
	if err := s.ledger.RevokeToken(ctx, user.TokenID, user.Username, user.ExpiresAt); err != nil {
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	s.logger.Info("access token revoked", zap.String("username", user.Username), zap.String("jti", user.TokenID))
	return nil
}

// Admit runs the admission check for a protected call: structural
// validation, then the revocation ledger, then account resolution.
func (s *AuthService) Admit(ctx context.Context, tokenStr string) (*model.AuthUser, error) {
	claims, err := s.tokens.Validate(tokenStr)
	if err != nil {
		return nil, err
	}

	revoked, err := s.ledger.IsTokenRevoked(ctx, claims.TokenID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	user, err := s.users.GetUserByUsername(ctx, claims.Username)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	return &model.AuthUser{
		ID:        user.ID,
		Username:  user.Username,
		TokenID:   claims.TokenID,
		ExpiresAt: claims.ExpiresAt,
	}, nil
}

// PurgeExpiredRevocations drops ledger records whose tokens can no longer
// pass structural validation anyway.
func (s *AuthService) PurgeExpiredRevocations(ctx context.Context) (int64, error) {
	n, err := s.ledger.PurgeRevokedTokens(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	return n, nil
}

func validateCredentials(username, password string) error {
	if n := utf8.RuneCountInString(username); n < minUsernameLength || n > maxUsernameLength {
		return ErrInvalidInput
	}
	if utf8.RuneCountInString(password) < minPasswordLength || len(password) > maxPasswordBytes {
		return ErrInvalidInput
	}
	return nil
}

func newDummyHash() ([]byte, error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return nil, err
	}
	return bcrypt.GenerateFromPassword(raw, bcrypt.DefaultCost)
}
