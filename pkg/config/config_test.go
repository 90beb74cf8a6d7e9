package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	base := Config{
		Database: DBConfig{DSN: "postgres://localhost/petrel"},
		Auth:     AuthConfig{JWTSecret: "0123456789abcdef0123456789abcdef"},
	}

	t.Run("valid", func(t *testing.T) {
		c := base
		require.NoError(t, c.Validate())
	})

	t.Run("short jwt secret rejected", func(t *testing.T) {
		c := base
		c.Auth.JWTSecret = "too-short"
		require.Error(t, c.Validate())
	})

	t.Run("missing dsn rejected", func(t *testing.T) {
		c := base
		c.Database.DSN = ""
		require.Error(t, c.Validate())
	})

	t.Run("missing webhook secret allowed", func(t *testing.T) {
		// The verifier refuses webhook traffic instead; API startup proceeds.
		c := base
		c.Billing.WebhookSecret = ""
		require.NoError(t, c.Validate())
	})
}
