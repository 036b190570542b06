package config

import (
	"strings"
	"testing"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "file::memory:")
	t.Setenv("JWT_SECRET", "jwt-secret")
	t.Setenv("SESSION_KEY", strings.Repeat("k", 32))
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("COOKIE_SECURE", "")
	t.Setenv("CLIENT_URL", "https://iheartbourbon.com/")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "3000" {
		t.Errorf("Port = %q, want 3000", cfg.Port)
	}
	if cfg.DBDriver != "postgres" {
		t.Errorf("DBDriver = %q, want postgres", cfg.DBDriver)
	}
	if cfg.CookieSecure {
		t.Error("CookieSecure should default to false outside production")
	}
	if cfg.ClientURL != "https://iheartbourbon.com" {
		t.Errorf("ClientURL = %q", cfg.ClientURL)
	}

	want := []string{"http://localhost:3000", "http://localhost:5173", "https://iheartbourbon.com", "https://a.example", "https://b.example"}
	if strings.Join(cfg.AllowedOrigins, "|") != strings.Join(want, "|") {
		t.Errorf("AllowedOrigins = %v, want %v", cfg.AllowedOrigins, want)
	}
}

func TestLoadProductionSecureCookies(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("COOKIE_SECURE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.CookieSecure {
		t.Error("CookieSecure should default to true in production")
	}
}

func TestLoadRejectsMissingSecrets(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
		want string
	}{
		{"no database", "DATABASE_URL", "", "DATABASE_URL"},
		{"no jwt secret", "JWT_SECRET", "", "JWT_SECRET"},
		{"short session key", "SESSION_KEY", "short", "SESSION_KEY"},
		{"bad cookie flag", "COOKIE_SECURE", "maybe", "COOKIE_SECURE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Load error = %v, want mention of %s", err, tt.want)
			}
		})
	}
}

func TestProviderEnabled(t *testing.T) {
	if (OAuthClient{ClientID: "id"}).Enabled() {
		t.Error("client without secret should be disabled")
	}
	if !(OAuthClient{ClientID: "id", ClientSecret: "s"}).Enabled() {
		t.Error("complete client should be enabled")
	}
	if (AppleClient{ClientID: "id", TeamID: "t", KeyID: "k"}).Enabled() {
		t.Error("apple client without key should be disabled")
	}
}
