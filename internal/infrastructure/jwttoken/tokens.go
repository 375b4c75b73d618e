package jwttoken

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	domauth "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/auth"
)

const DefaultTTL = 24 * time.Hour

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Service signs HS256 identity tokens with a process-wide secret.
type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type Option func(*Service)

// WithClock replaces the wall clock used for issuing and validating tokens.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func New(secret string, opts ...Option) (*Service, error) {
	if secret == "" {
		return nil, errors.New("jwttoken: signing secret is required")
	}
	s := &Service{
		secret: []byte(secret),
		ttl:    DefaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Service) Issue(email string) (string, error) {
	if email == "" {
		return "", fmt.Errorf("jwttoken: email is required")
	}
	now := s.now()
	c := claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("jwttoken: sign: %w", err)
	}
	return signed, nil
}

func (s *Service) Verify(tokenStr string) (domauth.Claims, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &claims{}, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return domauth.Claims{}, classify(err)
	}
	c, ok := t.Claims.(*claims)
	if !ok || !t.Valid || c.Email == "" {
		return domauth.Claims{}, domauth.ErrTokenMalformed
	}
	out := domauth.Claims{Email: c.Email}
	if c.IssuedAt != nil {
		out.IssuedAt = c.IssuedAt.UTC()
	}
	if c.ExpiresAt != nil {
		out.ExpiresAt = c.ExpiresAt.UTC()
	}
	return out, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %w", domauth.ErrTokenExpired, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %w", domauth.ErrTokenInvalidSignature, err)
	default:
		return fmt.Errorf("%w: %w", domauth.ErrTokenMalformed, err)
	}
}
