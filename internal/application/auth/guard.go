package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Zhima-Mochi/minishop-marketplace/internal/application"
	domauth "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/auth"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/domain/identity"
)

// RoleReader is the slice of the profile store the guard depends on.
type RoleReader interface {
	Get(ctx context.Context, email string) (*identity.Profile, error)
}

// Guard decides whether a caller may perform an action. It is stateless
// apart from the token service and the role store it reads from.
type Guard struct {
	tokens domauth.TokenService
	roles  RoleReader
}

func NewGuard(tokens domauth.TokenService, roles RoleReader) *Guard {
	return &Guard{tokens: tokens, roles: roles}
}

// RequireIdentity verifies a bearer token and returns the email it is bound to.
// A missing or undecodable token is ErrUnauthorized; a tampered or expired
// one is ErrForbidden. The token error stays in the chain.
func (g *Guard) RequireIdentity(ctx context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", fmt.Errorf("%w: missing token", domauth.ErrUnauthorized)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	claims, err := g.tokens.Verify(token)
	switch {
	case err == nil:
		return claims.Email, nil
	case errors.Is(err, domauth.ErrTokenMalformed):
		return "", fmt.Errorf("%w: %w", domauth.ErrUnauthorized, err)
	default:
		return "", fmt.Errorf("%w: %w", domauth.ErrForbidden, err)
	}
}

// RequireAdmin passes only when email belongs to an existing admin profile.
func (g *Guard) RequireAdmin(ctx context.Context, email string) error {
	email, err := identity.NormalizeEmail(email)
	if err != nil {
		return fmt.Errorf("%w: no identity", domauth.ErrForbidden)
	}
	profile, err := g.roles.Get(ctx, email)
	switch {
	case errors.Is(err, identity.ErrNotFound):
		return fmt.Errorf("%w: %s has no profile", domauth.ErrForbidden, email)
	case err != nil:
		return application.Upstream("profile_store", err)
	case !profile.IsAdmin():
		return fmt.Errorf("%w: %s is not an admin", domauth.ErrForbidden, email)
	}
	return nil
}

// RequireSelf passes when the verified caller acts for their own email.
func (g *Guard) RequireSelf(caller, claimed string) error {
	if caller == "" || !strings.EqualFold(caller, strings.TrimSpace(claimed)) {
		return fmt.Errorf("%w: identity does not match %q", domauth.ErrForbidden, claimed)
	}
	return nil
}

// RequireOwnerOrAdmin passes when the caller owns the resource or is an admin.
func (g *Guard) RequireOwnerOrAdmin(ctx context.Context, caller, owner string) error {
	if caller != "" && strings.EqualFold(caller, owner) {
		return nil
	}
	return g.RequireAdmin(ctx, caller)
}

// IsAdmin reports whether email is an admin without failing on absence.
func (g *Guard) IsAdmin(ctx context.Context, email string) (bool, error) {
	err := g.RequireAdmin(ctx, email)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domauth.ErrForbidden):
		return false, nil
	default:
		return false, err
	}
}
