package global

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

var ErrMissingSecretKey = errors.New("Missing STRIPE_SECRET_KEY environment variable.")

// Config is read once at startup and shared read-only by every request.
type Config struct {
	Env  string
	Port string

	StripeSecretKey string
	StripeAPIURL    string

	AllowedPriceIDs   []string
	ClientURL         string
	AllowedOrigins    []string
	ReturnPath        string
	ShippingRateID    string
	ShippingCountries []string

	MongoURI      string
	MongoDatabase string
	RedisAddress  string
	RedisPassword string

	// AdminTokenHash is the bcrypt hash of the operator token guarding
	// the catalog write routes. Empty disables them.
	AdminTokenHash string

	ProviderTimeout time.Duration
}

// LoadEnvFile loads a .env file when present. A missing file is not an
// error: hosted functions get their settings from the platform.
func LoadEnvFile(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

// LoadConfig reads the configuration from the environment.
func LoadConfig() (*Config, error) {
	clientURL := strings.TrimRight(GetEnvOrDefault("CLIENT_URL", "http://localhost:5500"), "/")

	cfg := &Config{
		Env:               os.Getenv("ENV"),
		Port:              GetEnvOrDefault("PORT", "4242"),
		StripeSecretKey:   strings.TrimSpace(os.Getenv("STRIPE_SECRET_KEY")),
		StripeAPIURL:      os.Getenv("STRIPE_API_URL"),
		AllowedPriceIDs:   SplitList(os.Getenv("ALLOWED_PRICE_IDS")),
		ClientURL:         clientURL,
		AllowedOrigins:    SplitList(GetEnvOrDefault("CLIENT_URLS", clientURL)),
		ReturnPath:        GetEnvOrDefault("CHECKOUT_RETURN_PATH", "/store.html"),
		ShippingRateID:    strings.TrimSpace(os.Getenv("SHIPPING_RATE_ID")),
		ShippingCountries: SplitList(GetEnvOrDefault("SHIPPING_COUNTRIES", "US")),
		MongoURI:          os.Getenv("MONGODB_URI"),
		MongoDatabase:     GetEnvOrDefault("MONGODB_DATABASE", "storefront"),
		RedisAddress:      os.Getenv("REDIS_ADDRESS"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		AdminTokenHash:    strings.TrimSpace(os.Getenv("ADMIN_TOKEN_HASH")),
		ProviderTimeout:   30 * time.Second,
	}

	if raw := os.Getenv("PROVIDER_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid PROVIDER_TIMEOUT %q: %w", raw, err)
		}
		cfg.ProviderTimeout = d
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.StripeSecretKey == "" {
		return ErrMissingSecretKey
	}
	if len(c.AllowedOrigins) == 0 {
		return errors.New("at least one allowed origin is required")
	}
	for _, origin := range c.AllowedOrigins {
		u, err := url.Parse(origin)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid origin %q: must be an absolute http(s) URL", origin)
		}
	}
	if len(c.ShippingCountries) == 0 {
		return errors.New("at least one shipping country is required")
	}
	for i, country := range c.ShippingCountries {
		if len(country) != 2 {
			return fmt.Errorf("invalid shipping country %q: expected ISO 3166-1 alpha-2", country)
		}
		c.ShippingCountries[i] = strings.ToUpper(country)
	}
	if c.AdminTokenHash != "" {
		if _, err := bcrypt.Cost([]byte(c.AdminTokenHash)); err != nil {
			return fmt.Errorf("invalid ADMIN_TOKEN_HASH: %w", err)
		}
	}
	if !strings.HasPrefix(c.ReturnPath, "/") {
		c.ReturnPath = "/" + c.ReturnPath
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
