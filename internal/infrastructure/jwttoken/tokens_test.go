package jwttoken

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domauth "github.com/Zhima-Mochi/minishop-marketplace/internal/domain/auth"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func TestIssueVerifyRoundTrip(t *testing.T) {
	c := &clock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	svc, err := New("secret", WithClock(c.now))
	require.NoError(t, err)

	token, err := svc.Issue("a@x.com")
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.True(t, c.t.Add(DefaultTTL).Equal(claims.ExpiresAt))

	c.t = c.t.Add(DefaultTTL - time.Minute)
	_, err = svc.Verify(token)
	assert.NoError(t, err)

	c.t = c.t.Add(2 * time.Minute)
	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, domauth.ErrTokenExpired)
}

func TestVerifyRejectsOtherSecret(t *testing.T) {
	a, err := New("secret-a")
	require.NoError(t, err)
	b, err := New("secret-b")
	require.NoError(t, err)

	token, err := a.Issue("a@x.com")
	require.NoError(t, err)

	_, err = b.Verify(token)
	assert.ErrorIs(t, err, domauth.ErrTokenInvalidSignature)
}

func TestVerifyRejectsOtherAlgorithm(t *testing.T) {
	svc, err := New("secret")
	require.NoError(t, err)

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims{
		Email: "a@x.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = svc.Verify(signed)
	assert.ErrorIs(t, err, domauth.ErrTokenInvalidSignature)
}

func TestVerifyMalformed(t *testing.T) {
	svc, err := New("secret")
	require.NoError(t, err)

	for _, token := range []string{"garbage", "a.b.c", ""} {
		_, err := svc.Verify(token)
		assert.ErrorIs(t, err, domauth.ErrTokenMalformed, token)
	}
}

func TestVerifyRequiresEmailClaim(t *testing.T) {
	svc, err := New("secret")
	require.NoError(t, err)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = svc.Verify(signed)
	assert.ErrorIs(t, err, domauth.ErrTokenMalformed)
}

func TestNewRequiresSecret(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}
