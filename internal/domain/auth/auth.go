package auth

import (
	"errors"
	"time"
)

var (
	// ErrUnauthorized means no credential or an undecodable one; the caller must authenticate.
	ErrUnauthorized = errors.New("auth: unauthorized")
	// ErrForbidden means the credential was understood but does not grant the operation.
	ErrForbidden = errors.New("auth: forbidden")

	ErrTokenMalformed        = errors.New("auth: token malformed")
	ErrTokenInvalidSignature = errors.New("auth: token signature invalid")
	ErrTokenExpired          = errors.New("auth: token expired")
)

// Claims is the verified content of an identity token.
type Claims struct {
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenService issues and verifies stateless identity tokens.
type TokenService interface {
	Issue(email string) (string, error)
	Verify(token string) (Claims, error)
}
