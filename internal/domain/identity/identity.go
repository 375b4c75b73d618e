package identity

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound     = errors.New("identity: profile not found")
	ErrInvalidEmail = errors.New("identity: email is required")
	ErrInvalidRole  = errors.New("identity: unknown role")
)

// Role is the privilege level of a profile. The zero value is RoleNone.
type Role string

const (
	RoleNone  Role = ""
	RoleAdmin Role = "admin"
)

// ParseRole accepts "admin" and the empty/"none" spellings of RoleNone.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin, nil
	case "", "none":
		return RoleNone, nil
	default:
		return RoleNone, fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
}

func (r Role) String() string {
	if r == RoleNone {
		return "none"
	}
	return string(r)
}

// Profile is a marketplace user keyed by email.
type Profile struct {
	Email     string
	Role      Role
	Name      string
	Phone     string
	Address   string
	Education string
	LinkedIn  string
	Image     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p *Profile) IsAdmin() bool { return p != nil && p.Role == RoleAdmin }

// Fields carries the mutable descriptive part of a profile. Empty values leave
// the stored value untouched on upsert.
type Fields struct {
	Name      string
	Phone     string
	Address   string
	Education string
	LinkedIn  string
	Image     string
}

// Merge applies non-empty fields onto p.
func (p *Profile) Merge(f Fields) {
	set := func(dst *string, v string) {
		if v = strings.TrimSpace(v); v != "" {
			*dst = v
		}
	}
	set(&p.Name, f.Name)
	set(&p.Phone, f.Phone)
	set(&p.Address, f.Address)
	set(&p.Education, f.Education)
	set(&p.LinkedIn, f.LinkedIn)
	set(&p.Image, f.Image)
}

// NormalizeEmail trims and lower-cases an email key.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", ErrInvalidEmail
	}
	return email, nil
}

func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
