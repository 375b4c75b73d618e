package identity

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/Zhima-Mochi/minishop-marketplace/internal/application"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/application/auth"
	domauth "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/auth"
	domain "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/identity"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/observability"
)

const (
	identityService = "identity-service"

	useCaseUpsertProfile = "identity.upsert_profile"
	useCaseListProfiles  = "identity.list_profiles"
	useCaseIsAdmin       = "identity.is_admin"
	useCaseGetRole       = "identity.get_role"
	useCaseSetRole       = "identity.set_role"
)

var ErrNotFound = domain.ErrNotFound

// Service owns profiles and their roles.
type Service struct {
	repo   domain.Repository
	guard  *auth.Guard
	tokens domauth.TokenService
	obs    *application.Instrument
}

func NewService(repo domain.Repository, guard *auth.Guard, tokens domauth.TokenService, tel observability.Observability) *Service {
	return &Service{
		repo:   repo,
		guard:  guard,
		tokens: tokens,
		obs:    application.NewInstrument(tel, identityService),
	}
}

type UpsertProfileResult struct {
	Profile  *domain.Profile
	Inserted bool
	Token    string
}

// UpsertProfile creates or merges the profile for email and issues a fresh
// identity token for it. It never changes the role.
func (s *Service) UpsertProfile(ctx context.Context, email string, fields domain.Fields) (_ *UpsertProfileResult, err error) {
	ctx, run := s.obs.Begin(ctx, useCaseUpsertProfile, "UpsertProfile")
	defer func() { run.End(err) }()

	email, err = domain.NormalizeEmail(email)
	if err != nil {
		run.Fail("EMAIL_INVALID")
		return nil, fmt.Errorf("%w: %w", application.ErrValidation, err)
	}
	if err := ctx.Err(); err != nil {
		run.Fail("CONTEXT_CANCELED")
		return nil, err
	}

	profile, inserted, err := s.repo.Upsert(ctx, email, fields)
	if err != nil {
		run.Fail("REPO_UPSERT_FAILED")
		return nil, application.Upstream("profile_store", err)
	}
	token, err := s.tokens.Issue(email)
	if err != nil {
		run.Fail("TOKEN_ISSUE_FAILED")
		return nil, fmt.Errorf("identity: issue token: %w", err)
	}

	run.Span().SetAttributes(attribute.Bool("profile.inserted", inserted))
	return &UpsertProfileResult{Profile: profile, Inserted: inserted, Token: token}, nil
}

// ListProfiles returns every profile, newest first, to a caller acting for
// their own email.
func (s *Service) ListProfiles(ctx context.Context, caller, claimed string) (_ []*domain.Profile, err error) {
	ctx, run := s.obs.Begin(ctx, useCaseListProfiles, "ListProfiles")
	defer func() { run.End(err) }()

	if err := s.guard.RequireSelf(caller, claimed); err != nil {
		run.Deny("NOT_SELF")
		return nil, err
	}
	profiles, err := s.repo.List(ctx)
	if err != nil {
		run.Fail("REPO_LIST_FAILED")
		return nil, application.Upstream("profile_store", err)
	}
	return profiles, nil
}

// IsAdmin tells a caller whether their own profile carries the admin role.
func (s *Service) IsAdmin(ctx context.Context, caller, email string) (_ bool, err error) {
	ctx, run := s.obs.Begin(ctx, useCaseIsAdmin, "IsAdmin")
	defer func() { run.End(err) }()

	if err := s.guard.RequireSelf(caller, email); err != nil {
		run.Deny("NOT_SELF")
		return false, err
	}
	ok, err := s.guard.IsAdmin(ctx, caller)
	if err != nil {
		run.Fail("ROLE_LOOKUP_FAILED")
		return false, err
	}
	return ok, nil
}

func (s *Service) GetRole(ctx context.Context, email string) (_ domain.Role, err error) {
	ctx, run := s.obs.Begin(ctx, useCaseGetRole, "GetRole")
	defer func() { run.End(err) }()

	email, err = domain.NormalizeEmail(email)
	if err != nil {
		run.Fail("EMAIL_INVALID")
		return domain.RoleNone, fmt.Errorf("%w: %w", application.ErrValidation, err)
	}
	profile, err := s.repo.Get(ctx, email)
	if err != nil {
		run.Fail("PROFILE_LOAD_FAILED")
		return domain.RoleNone, wrapRepositoryError(err)
	}
	return profile.Role, nil
}

// SetRole changes the role of target. Only admins may call it.
func (s *Service) SetRole(ctx context.Context, caller, target string, role domain.Role) (_ *domain.Profile, err error) {
	ctx, run := s.obs.Begin(ctx, useCaseSetRole, "SetRole",
		attribute.String("identity.role", role.String()),
	)
	defer func() { run.End(err) }()
	run.With(observability.F("target", target), observability.F("role", role.String()))

	if err := s.guard.RequireAdmin(ctx, caller); err != nil {
		if errors.Is(err, domauth.ErrForbidden) {
			run.Deny("NOT_ADMIN")
		} else {
			run.Fail("ROLE_LOOKUP_FAILED")
		}
		return nil, err
	}
	if role != domain.RoleAdmin && role != domain.RoleNone {
		run.Fail("ROLE_INVALID")
		return nil, fmt.Errorf("%w: %w", application.ErrValidation, domain.ErrInvalidRole)
	}
	target, err = domain.NormalizeEmail(target)
	if err != nil {
		run.Fail("EMAIL_INVALID")
		return nil, fmt.Errorf("%w: %w", application.ErrValidation, err)
	}
	if err := ctx.Err(); err != nil {
		run.Fail("CONTEXT_CANCELED")
		return nil, err
	}

	profile, err := s.repo.SetRole(ctx, target, role)
	if err != nil {
		run.Fail("REPO_SET_ROLE_FAILED")
		return nil, wrapRepositoryError(err)
	}
	return profile, nil
}

// GrantAdmin promotes target. The requester named in the request must be
// the verified caller.
func (s *Service) GrantAdmin(ctx context.Context, caller, requester, target string) (*domain.Profile, error) {
	if err := s.guard.RequireSelf(caller, requester); err != nil {
		return nil, err
	}
	return s.SetRole(ctx, caller, target, domain.RoleAdmin)
}

func (s *Service) RevokeAdmin(ctx context.Context, caller, target string) (*domain.Profile, error) {
	return s.SetRole(ctx, caller, target, domain.RoleNone)
}

func wrapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		return ErrNotFound
	}
	return application.Upstream("profile_store", err)
}
