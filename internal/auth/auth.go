// Package auth signs the single owner in and guards the API with bearer
// tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// Identity is who a request acts as.
type Identity struct {
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type Config struct {
	Secret            string
	OwnerEmail        string
	OwnerPasswordHash string
	TokenTTL          time.Duration
}

type Service struct {
	secret       []byte
	ownerEmail   string
	passwordHash []byte
	ttl          time.Duration
	now          func() time.Time
}

func NewService(cfg Config) *Service {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &Service{
		secret:       []byte(cfg.Secret),
		ownerEmail:   strings.ToLower(strings.TrimSpace(cfg.OwnerEmail)),
		passwordHash: []byte(cfg.OwnerPasswordHash),
		ttl:          ttl,
		now:          time.Now,
	}
}

// Login checks the owner's credentials and returns a signed token.
func (s *Service) Login(_ context.Context, email, password string) (string, *Identity, error) {
	if s.ownerEmail == "" || len(s.passwordHash) == 0 {
		return "", nil, ErrInvalidCredentials
	}

	if strings.ToLower(strings.TrimSpace(email)) != s.ownerEmail {
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	return s.Issue(s.ownerEmail)
}

func (s *Service) Issue(email string) (string, *Identity, error) {
	now := s.now()
	expires := now.Add(s.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("signing token: %w", err)
	}

	return signed, &Identity{Email: email, ExpiresAt: expires.UTC().Truncate(time.Second)}, nil
}

// Verify parses a token issued by this service.
func (s *Service) Verify(raw string) (*Identity, error) {
	var c claims

	_, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	return &Identity{Email: c.Email, ExpiresAt: c.ExpiresAt.UTC()}, nil
}

// HashPassword produces a value for OWNER_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}

	return string(hash), nil
}
