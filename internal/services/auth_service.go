package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/GabKongroo/NothingSpecial/internal/config"
	"github.com/GabKongroo/NothingSpecial/internal/logger"
	jwtpkg "github.com/GabKongroo/NothingSpecial/pkg/jwt"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

// OperatorSubject is the subject of every token issued by the admin login.
const OperatorSubject = "operator"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenRevoked       = errors.New("token is blacklisted")
	ErrInvalidTokenType   = errors.New("invalid token type")
)

type AuthService struct {
	redis        redis.Cmdable
	cfg          *config.Config
	passwordHash []byte
}

// NewAuthService hashes the configured admin password once at startup.
func NewAuthService(redis redis.Cmdable, cfg *config.Config) (*AuthService, error) {
	if cfg.AdminPassword == "" {
		return nil, errors.New("ADMIN_PASSWORD is not set")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	return &AuthService{redis: redis, cfg: cfg, passwordHash: hash}, nil
}

// Login checks the operator password and returns an access token with its
// expiry.
func (s *AuthService) Login(password string) (string, time.Time, error) {
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return "", time.Time{}, ErrInvalidCredentials
	}
	expiresAt := time.Now().Add(s.cfg.JWTAccessTokenDuration)
	token, err := jwtpkg.GenerateToken(OperatorSubject, jwtpkg.AccessToken, s.cfg.JWTSecret, s.cfg.JWTAccessTokenDuration)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

func blacklistKey(token string) string {
	return fmt.Sprintf("blacklist:token:%s", token)
}

// Logout blacklists token until it would have expired.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := jwtpkg.ValidateToken(token, s.cfg.JWTSecret)
	if err != nil {
		return err
	}
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		if remaining := time.Until(claims.ExpiresAt.Time); remaining > 0 {
			ttl = remaining
		}
	}
	return s.redis.Set(ctx, blacklistKey(token), "1", ttl).Err()
}

// ValidateAccessToken validates an access token and returns claims. When
// Redis is down the blacklist check is skipped.
func (s *AuthService) ValidateAccessToken(ctx context.Context, token string) (*jwtpkg.Claims, error) {
	claims, err := jwtpkg.ValidateToken(token, s.cfg.JWTSecret)
	if err != nil {
		return nil, err
	}

	if claims.TokenType != jwtpkg.AccessToken {
		return nil, ErrInvalidTokenType
	}

	exists, err := s.redis.Exists(ctx, blacklistKey(token)).Result()
	if err != nil {
		logger.Warn("token blacklist check skipped", logger.ErrorField(err))
	} else if exists > 0 {
		return nil, ErrTokenRevoked
	}

	return claims, nil
}
