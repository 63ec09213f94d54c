package config

import (
	"testing"
	"time"

	"paylands-gateway/internal/paylands"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	// t.Setenv restores every variable when the test ends.
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "testuser")
	t.Setenv("DB_PASSWORD", "testpass")
	t.Setenv("DB_NAME", "testdb")
	t.Setenv("DB_PORT", "5432")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("APP_ENV", "test")
	t.Setenv("PAYLANDS_API_KEY", "key")
	t.Setenv("PAYLANDS_SIGNATURE", "sig")
	t.Setenv("PAYLANDS_SERVICE", "svc")
	t.Setenv("PAYLANDS_MODE", "LIVE")
	t.Setenv("PAYLANDS_TEMPLATE_UUID", "")
	t.Setenv("PAYLANDS_TIMEOUT", "")
	t.Setenv("PUBLIC_BASE_URL", "https://shop.example.com/")
	t.Setenv("STATE_SECRET", "secret")
}

func TestLoad(t *testing.T) {
	t.Run("Success loading from env", func(t *testing.T) {
		setBaseEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "localhost", cfg.DBHost)
		assert.Equal(t, "testuser", cfg.DBUser)
		assert.Equal(t, "testpass", cfg.DBPassword)
		assert.Equal(t, "testdb", cfg.DBName)
		assert.Equal(t, "5432", cfg.DBPort)
		assert.Equal(t, "8080", cfg.AppPort)
		assert.Equal(t, "test", cfg.AppEnv)
		assert.Equal(t, "https://shop.example.com", cfg.PublicBaseURL)
		assert.Equal(t, "secret", cfg.StateSecret)
		assert.Equal(t, paylands.DefaultTimeout, cfg.PaylandsTimeout)
	})

	t.Run("Custom timeout", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("PAYLANDS_TIMEOUT", "5s")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 5*time.Second, cfg.PaylandsTimeout)
	})

	t.Run("Invalid timeout", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("PAYLANDS_TIMEOUT", "soon")

		_, err := Load()
		assert.ErrorContains(t, err, "PAYLANDS_TIMEOUT")
	})

	t.Run("Missing DB host", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("DB_HOST", "")

		_, err := Load()
		assert.Error(t, err)
	})
}

func TestConfig_Paylands(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	pc := cfg.Paylands()
	assert.Equal(t, "key", pc.APIKey)
	assert.Equal(t, "sig", pc.Signature)
	assert.Equal(t, "svc", pc.Service)
	assert.Equal(t, paylands.ModeLive, pc.Mode)
	assert.Equal(t, paylands.DefaultOperative, pc.Operative)
	assert.NoError(t, pc.Validate())
}
