package identity

import "context"

type Repository interface {
	// Upsert creates the profile for email or merges fields into the existing one.
	// It reports whether a new profile was inserted. Role is never changed.
	Upsert(ctx context.Context, email string, fields Fields) (profile *Profile, inserted bool, err error)
	Get(ctx context.Context, email string) (*Profile, error)
	List(ctx context.Context) ([]*Profile, error)
	// SetRole fails with ErrNotFound when no profile exists for email.
	SetRole(ctx context.Context, email string, role Role) (*Profile, error)
}
