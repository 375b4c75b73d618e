package review

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zhima-Mochi/minishop-marketplace/internal/application"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/application/auth"
	domauth "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/auth"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/infrastructure/id"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/infrastructure/jwttoken"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/infrastructure/memory"
	"github.com/Zhima-Mochi/minishop-marketplace/internal/observability"
)

func newService(t *testing.T) *Service {
	t.Helper()
	tokens, err := jwttoken.New("test-secret")
	require.NoError(t, err)
	guard := auth.NewGuard(tokens, memory.NewProfileRepository())
	return NewService(memory.NewReviewRepository(), guard, id.NewUUIDGenerator(), observability.Nop())
}

func TestAddReview(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	r, err := svc.Add(ctx, AddReviewInput{Caller: "a@x.com", Claimed: "a@x.com", Name: "Ann", Rating: 5, Comment: "great"})
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", r.AuthorEmail)
	assert.NotEmpty(t, r.ID)

	_, err = svc.Add(ctx, AddReviewInput{Caller: "a@x.com", Claimed: "b@x.com", Rating: 5})
	assert.ErrorIs(t, err, domauth.ErrForbidden)

	_, err = svc.Add(ctx, AddReviewInput{Caller: "a@x.com", Claimed: "a@x.com", Rating: 6})
	assert.ErrorIs(t, err, application.ErrValidation)
}

func TestListReviewsNewestFirst(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	for i := 1; i <= HomeLimit+2; i++ {
		_, err := svc.Add(ctx, AddReviewInput{Caller: "a@x.com", Claimed: "a@x.com", Rating: 4, Comment: strconv.Itoa(i)})
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}

	home, err := svc.List(ctx, HomeLimit)
	require.NoError(t, err)
	require.Len(t, home, HomeLimit)
	assert.Equal(t, strconv.Itoa(HomeLimit+2), home[0].Comment)

	all, err := svc.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, HomeLimit+2)
}
