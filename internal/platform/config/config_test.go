package config

import (
	"strings"
	"testing"
	"time"
)

func setJWTEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_ISSUER", "https://issuer.test")
	t.Setenv("JWT_AUDIENCE", "triphive")
	t.Setenv("JWT_JWKS_URL", "https://issuer.test/jwks.json")
}

func TestLoad_Defaults(t *testing.T) {
	setJWTEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 8080 {
		t.Fatalf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.StorageBackend != StorageMemory {
		t.Fatalf("StorageBackend = %q, want memory", cfg.StorageBackend)
	}
	if cfg.AuthMode != AuthModeJWT {
		t.Fatalf("AuthMode = %q, want jwt", cfg.AuthMode)
	}
	if cfg.JWT.ClockSkew != 30*time.Second {
		t.Fatalf("ClockSkew = %v, want 30s", cfg.JWT.ClockSkew)
	}
	if cfg.JWT.RefreshInterval != 5*time.Minute {
		t.Fatalf("RefreshInterval = %v, want 5m", cfg.JWT.RefreshInterval)
	}
}

func TestLoad_PostgresRequiresDatabaseURL(t *testing.T) {
	setJWTEnv(t)
	t.Setenv("STORAGE_BACKEND", "postgres")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Fatalf("error should name DATABASE_URL: %v", err)
	}
}

func TestLoad_JWTModeRequiresIssuer(t *testing.T) {
	t.Setenv("JWT_ISSUER", "")
	t.Setenv("JWT_AUDIENCE", "triphive")
	t.Setenv("JWT_JWKS_URL", "https://issuer.test/jwks.json")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "JWT_ISSUER") {
		t.Fatalf("error should name JWT_ISSUER: %v", err)
	}
}

func TestLoad_DevModeSkipsJWT(t *testing.T) {
	t.Setenv("AUTH_MODE", "dev")
	t.Setenv("DEV_SUBJECT", "sub-local")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AuthMode != AuthModeDev || cfg.DevSubject != "sub-local" {
		t.Fatalf("unexpected auth config: %+v", cfg)
	}
}

func TestLoad_AggregatesProblems(t *testing.T) {
	setJWTEnv(t)
	t.Setenv("PORT", "notaport")
	t.Setenv("LOG_LEVEL", "loud")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected error")
	}
	for _, want := range []string{"PORT", "LOG_LEVEL"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error should mention %s: %v", want, err)
		}
	}
}

func TestLoad_CORSAndTravelAPI(t *testing.T) {
	setJWTEnv(t)
	t.Setenv("CORS_ORIGINS", "https://app.example.com, https://staging.example.com")
	t.Setenv("TRAVEL_API_BASE_URL", "https://quotes.example.com")
	t.Setenv("TRAVEL_API_KEY", "k-123")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://staging.example.com" {
		t.Fatalf("unexpected CORSOrigins: %v", cfg.CORSOrigins)
	}
	if cfg.TravelAPIBaseURL == "" || cfg.TravelAPIKey != "k-123" {
		t.Fatalf("unexpected travel api config: %+v", cfg)
	}
}

func TestLoad_TravelAPIKeyRequiredWithBaseURL(t *testing.T) {
	setJWTEnv(t)
	t.Setenv("TRAVEL_API_BASE_URL", "https://quotes.example.com")
	t.Setenv("TRAVEL_API_KEY", "")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "TRAVEL_API_KEY") {
		t.Fatalf("expected TRAVEL_API_KEY error, got %v", err)
	}
}
