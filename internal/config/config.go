package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"paylands-gateway/internal/paylands"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBSSLMode  string
	AppPort    string
	AppEnv     string

	PaylandsAPIKey       string
	PaylandsSignature    string
	PaylandsService      string
	PaylandsMode         string
	PaylandsTemplateUUID string
	PaylandsTimeout      time.Duration

	PublicBaseURL string
	StateSecret   string
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:               os.Getenv("DB_HOST"),
		DBUser:               os.Getenv("DB_USER"),
		DBPassword:           os.Getenv("DB_PASSWORD"),
		DBName:               os.Getenv("DB_NAME"),
		DBPort:               getEnv("DB_PORT", "5432"),
		DBSSLMode:            getEnv("DB_SSLMODE", "disable"),
		AppPort:              getEnv("APP_PORT", "8080"),
		AppEnv:               getEnv("APP_ENV", "development"),
		PaylandsAPIKey:       os.Getenv("PAYLANDS_API_KEY"),
		PaylandsSignature:    os.Getenv("PAYLANDS_SIGNATURE"),
		PaylandsService:      os.Getenv("PAYLANDS_SERVICE"),
		PaylandsMode:         getEnv("PAYLANDS_MODE", string(paylands.ModeTest)),
		PaylandsTemplateUUID: os.Getenv("PAYLANDS_TEMPLATE_UUID"),
		PaylandsTimeout:      paylands.DefaultTimeout,
		PublicBaseURL:        strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/"),
		StateSecret:          os.Getenv("STATE_SECRET"),
	}

	if raw := os.Getenv("PAYLANDS_TIMEOUT"); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil || timeout <= 0 {
			return nil, fmt.Errorf("invalid PAYLANDS_TIMEOUT %q", raw)
		}
		cfg.PaylandsTimeout = timeout
	}

	if cfg.DBHost == "" {
		return nil, errors.New("environment variables not loaded properly: DB_HOST is empty")
	}

	return cfg, nil
}

// LoadConfig is Load for entrypoints that cannot run without configuration.
func LoadConfig() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatal(err)
	}
	return cfg
}

// Paylands builds the gateway configuration. Credentials are not checked
// here: a missing key or signature surfaces as a configuration error on
// the first payment attempt.
func (c *Config) Paylands() paylands.Config {
	return paylands.Config{
		APIKey:       c.PaylandsAPIKey,
		Signature:    c.PaylandsSignature,
		Service:      c.PaylandsService,
		Mode:         paylands.Mode(strings.ToLower(c.PaylandsMode)),
		TemplateUUID: c.PaylandsTemplateUUID,
		Operative:    paylands.DefaultOperative,
		Timeout:      c.PaylandsTimeout,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
