package paylands

import (
	"testing"

	"paylands-gateway/internal/payment"

	"github.com/stretchr/testify/assert"
)

func TestResolveEndpoint(t *testing.T) {
	assert.Equal(t, "https://api.paylands.com/v1/sandbox", ResolveEndpoint(ModeTest))
	assert.Equal(t, "https://api.paylands.com/v1", ResolveEndpoint(ModeLive))
	assert.Equal(t, "https://api.paylands.com/v1", ResolveEndpoint(""))

	cfg := Config{Mode: ModeTest}
	assert.Equal(t, sandboxURL, cfg.Endpoint())
}

func TestRequireCredentials(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"Valid", Config{APIKey: "key", Signature: "sig"}, ""},
		{"MissingAPIKey", Config{Signature: "sig"}, "api key not provided"},
		{"MissingSignature", Config{APIKey: "key"}, "signature not provided"},
		{"MissingBoth", Config{}, "api key not provided"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RequireCredentials(tt.cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, payment.ErrConfiguration)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{
		APIKey:       "key",
		Signature:    "sig",
		Service:      "5C5D8F1B-2F8C-4E0E-9A5B-3D4E5F6A7B8C",
		Mode:         ModeTest,
		TemplateUUID: "6a3d8f4e-2b1c-4d5e-8f9a-0b1c2d3e4f5a",
	}

	t.Run("Valid", func(t *testing.T) {
		assert.NoError(t, valid.Validate())
	})

	t.Run("UnknownMode", func(t *testing.T) {
		cfg := valid
		cfg.Mode = "staging"
		assert.ErrorIs(t, cfg.Validate(), payment.ErrConfiguration)
	})

	t.Run("MissingService", func(t *testing.T) {
		cfg := valid
		cfg.Service = ""
		assert.ErrorIs(t, cfg.Validate(), payment.ErrConfiguration)
	})

	t.Run("BadOperative", func(t *testing.T) {
		cfg := valid
		cfg.Operative = "REFUND"
		assert.ErrorIs(t, cfg.Validate(), payment.ErrConfiguration)
	})

	t.Run("MissingCredentialsFirst", func(t *testing.T) {
		cfg := valid
		cfg.Signature = ""
		err := cfg.Validate()
		assert.ErrorIs(t, err, payment.ErrConfiguration)
		assert.Contains(t, err.Error(), "signature not provided")
	})
}

func TestConfig_ValidateMode(t *testing.T) {
	for _, mode := range []Mode{ModeLive, ModeTest} {
		assert.NoError(t, Config{Mode: mode}.ValidateMode(), mode)
	}

	for _, mode := range []Mode{"", "sandbox", "LIVE", "prod"} {
		err := Config{Mode: mode, APIKey: "key", Signature: "sig"}.ValidateMode()
		assert.ErrorIs(t, err, payment.ErrConfiguration, mode)
	}
}
