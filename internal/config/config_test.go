package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TOKEN_SECRET", "s3cret")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "minishop", c.ServiceName)
	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, 24*time.Hour, c.TokenTTL)
	assert.Equal(t, StoreMemory, c.StoreDriver)
	assert.Equal(t, PaymentSimulated, c.PaymentProvider)
	assert.Equal(t, "usd", c.PaymentCurrency)
	assert.InDelta(t, 0.7, c.SimulatedSuccessRate, 1e-9)
	assert.False(t, c.TrustProxyHeaders)
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("TOKEN_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := App{TokenSecret: "s", TokenTTL: time.Hour, StoreDriver: StoreMemory, PaymentProvider: PaymentSimulated}
	require.NoError(t, base.Validate())

	tests := []struct {
		name   string
		mutate func(*App)
	}{
		{name: "unknown store", mutate: func(c *App) { c.StoreDriver = "sqlite" }},
		{name: "postgres without dsn", mutate: func(c *App) { c.StoreDriver = StorePostgres }},
		{name: "stripe without key", mutate: func(c *App) { c.PaymentProvider = PaymentStripe }},
		{name: "omise without keys", mutate: func(c *App) { c.PaymentProvider = PaymentOmise }},
		{name: "unknown provider", mutate: func(c *App) { c.PaymentProvider = "paypal" }},
		{name: "zero ttl", mutate: func(c *App) { c.TokenTTL = 0 }},
		{name: "empty secret", mutate: func(c *App) { c.TokenSecret = "" }},
		{name: "blank secret", mutate: func(c *App) { c.TokenSecret = "  \t" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}
