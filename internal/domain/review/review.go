package review

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidRating  = errors.New("review: rating must be between 1 and 5")
	ErrAuthorRequired = errors.New("review: author email is required")
)

type Review struct {
	ID          string
	AuthorEmail string
	Name        string
	Rating      int
	Comment     string
	CreatedAt   time.Time
}

func New(id, authorEmail, name string, rating int, comment string) (*Review, error) {
	if strings.TrimSpace(authorEmail) == "" {
		return nil, ErrAuthorRequired
	}
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}
	return &Review{
		ID:          id,
		AuthorEmail: authorEmail,
		Name:        strings.TrimSpace(name),
		Rating:      rating,
		Comment:     strings.TrimSpace(comment),
		CreatedAt:   time.Now().UTC(),
	}, nil
}

type Repository interface {
	Insert(ctx context.Context, r *Review) error
	// List returns reviews newest first; limit <= 0 means no limit.
	List(ctx context.Context, limit int) ([]*Review, error)
}
