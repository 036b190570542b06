package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config is read once at startup from the environment (.env is loaded by main).
type Config struct {
	Port     string
	Env      string
	LogLevel string

	DBDriver    string
	DatabaseURL string

	JWTSecret    string
	SessionKey   string
	CookieDomain string
	CookieSecure bool

	BaseURL        string
	ClientURL      string
	AllowedOrigins []string

	Google   OAuthClient
	Facebook OAuthClient
	Apple    AppleClient

	S3Bucket    string
	S3PublicURL string
}

type OAuthClient struct {
	ClientID     string
	ClientSecret string
}

func (c OAuthClient) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// AppleClient signs its client secret per request from a .p8 private key.
type AppleClient struct {
	ClientID   string
	TeamID     string
	KeyID      string
	PrivateKey string
}

func (c AppleClient) Enabled() bool {
	return c.ClientID != "" && c.TeamID != "" && c.KeyID != "" && c.PrivateKey != ""
}

var defaultOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:         getEnv("PORT", "3000"),
		Env:          getEnv("APP_ENV", "development"),
		LogLevel:     os.Getenv("LOG_LEVEL"),
		DBDriver:     getEnv("DB_DRIVER", "postgres"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		SessionKey:   os.Getenv("SESSION_KEY"),
		CookieDomain: os.Getenv("COOKIE_DOMAIN"),
		BaseURL:      strings.TrimRight(getEnv("BASE_URL", "http://localhost:3000"), "/"),
		ClientURL:    strings.TrimRight(os.Getenv("CLIENT_URL"), "/"),
		Google: OAuthClient{
			ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		},
		Facebook: OAuthClient{
			ClientID:     os.Getenv("FACEBOOK_CLIENT_ID"),
			ClientSecret: os.Getenv("FACEBOOK_CLIENT_SECRET"),
		},
		Apple: AppleClient{
			ClientID: os.Getenv("APPLE_CLIENT_ID"),
			TeamID:   os.Getenv("APPLE_TEAM_ID"),
			KeyID:    os.Getenv("APPLE_KEY_ID"),
			// Keys pasted into a single env line keep their newlines escaped.
			PrivateKey: strings.ReplaceAll(os.Getenv("APPLE_PRIVATE_KEY"), `\n`, "\n"),
		},
		S3Bucket:    os.Getenv("S3_BUCKET"),
		S3PublicURL: os.Getenv("S3_PUBLIC_URL"),
	}

	secure, err := parseBool("COOKIE_SECURE", cfg.Env == "production")

	if err != nil {
		return nil, err
	}

	cfg.CookieSecure = secure
	cfg.AllowedOrigins = allowedOrigins(cfg.ClientURL, os.Getenv("ALLOWED_ORIGINS"))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is not set")
	}

	if len(c.SessionKey) < 32 {
		return fmt.Errorf("SESSION_KEY must be at least 32 characters")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func allowedOrigins(clientURL, extra string) []string {
	origins := make([]string, len(defaultOrigins))
	copy(origins, defaultOrigins)

	if clientURL != "" {
		origins = append(origins, clientURL)
	}

	for _, origin := range strings.Split(extra, ",") {
		trimmed := strings.TrimSpace(origin)

		if trimmed != "" {
			origins = append(origins, trimmed)
		}
	}

	return origins
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}

	return fallback
}

func parseBool(key string, fallback bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))

	if raw == "" {
		return fallback, nil
	}

	value, err := strconv.ParseBool(raw)

	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}

	return value, nil
}
