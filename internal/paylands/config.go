package paylands

import (
	"errors"
	"fmt"
	"time"

	"paylands-gateway/internal/payment"

	"github.com/go-playground/validator/v10"
)

const (
	productionURL = "https://api.paylands.com/v1"
	sandboxURL    = "https://api.paylands.com/v1/sandbox"

	DefaultOperative = "AUTHORIZATION"
	DefaultTimeout   = 15 * time.Second
)

type Mode string

const (
	ModeLive Mode = "live"
	ModeTest Mode = "test"
)

// Endpoint returns the API base URL for the mode. Anything but test talks to
// production.
func (m Mode) Endpoint() string {
	if m == ModeTest {
		return sandboxURL
	}
	return productionURL
}

func ResolveEndpoint(mode Mode) string {
	return mode.Endpoint()
}

// Config holds the credentials of one configured gateway.
type Config struct {
	APIKey       string `validate:"required"`
	Signature    string `validate:"required"`
	Service      string `validate:"required"`
	Mode         Mode   `validate:"required,oneof=live test"`
	TemplateUUID string `validate:"omitempty,uuid"`
	Operative    string `validate:"omitempty,oneof=AUTHORIZATION DEFERRED"`
	Timeout      time.Duration
}

var validate = validator.New()

// RequireCredentials fails with payment.ErrConfiguration when the API key or
// the signature is missing. It is checked before every remote call.
func RequireCredentials(cfg Config) error {
	err := validate.StructPartial(cfg, "APIKey", "Signature")
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		switch verrs[0].Field() {
		case "APIKey":
			return fmt.Errorf("%w: api key not provided", payment.ErrConfiguration)
		case "Signature":
			return fmt.Errorf("%w: signature not provided", payment.ErrConfiguration)
		}
	}
	return fmt.Errorf("%w: %v", payment.ErrConfiguration, err)
}

// ValidateMode rejects any mode but live or test. Endpoint treats unknown
// modes as live, so a typo must not get past startup.
func (c Config) ValidateMode() error {
	if err := validate.StructPartial(c, "Mode"); err != nil {
		return fmt.Errorf("%w: mode must be one of live, test (got %q)", payment.ErrConfiguration, c.Mode)
	}
	return nil
}

// Validate checks the whole configuration, as done when the operator saves it.
func (c Config) Validate() error {
	if err := RequireCredentials(c); err != nil {
		return err
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", payment.ErrConfiguration, err)
	}
	return nil
}

func (c Config) Endpoint() string {
	return c.Mode.Endpoint()
}

func (c Config) operative() string {
	if c.Operative == "" {
		return DefaultOperative
	}
	return c.Operative
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}
