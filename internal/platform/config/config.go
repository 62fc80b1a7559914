// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/triphive/triphive-api/internal/platform/auth/jwtverifier"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"

	AuthModeJWT = "jwt"
	AuthModeDev = "dev"
)

type Config struct {
	// Port the HTTP server listens on.
	Port int
	// LogLevel is one of debug, info, warn, error.
	LogLevel string

	// StorageBackend selects "memory" or "postgres".
	StorageBackend string
	// DatabaseURL is required when StorageBackend is "postgres".
	DatabaseURL string
	// MigrateOnStart applies pending migrations during startup.
	MigrateOnStart bool

	// CORSOrigins lists allowed browser origins; empty disables CORS.
	CORSOrigins []string

	// AuthMode selects "jwt" (JWKS-verified bearer tokens) or "dev"
	// (X-Debug-Subject header; local use only).
	AuthMode string
	// DevSubject is the fallback subject in dev auth mode.
	DevSubject string

	JWT jwtverifier.Config

	// TravelAPIBaseURL and TravelAPIKey configure the live quote provider.
	// Empty base URL means quotes come from the seeded mock provider.
	TravelAPIBaseURL string
	TravelAPIKey     string
}

// Load reads configuration from the environment, applying defaults and
// aggregating every missing or malformed variable into a single error.
func Load() (Config, error) {
	var problems []string

	cfg := Config{
		Port:           8080,
		LogLevel:       "info",
		StorageBackend: StorageMemory,
		AuthMode:       AuthModeJWT,
	}

	if v := os.Getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p <= 0 || p > 65535 {
			problems = append(problems, "PORT must be a valid port number")
		} else {
			cfg.Port = p
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		switch strings.ToLower(v) {
		case "debug", "info", "warn", "error":
			cfg.LogLevel = strings.ToLower(v)
		default:
			problems = append(problems, "LOG_LEVEL must be one of debug, info, warn, error")
		}
	}

	if v := os.Getenv("STORAGE_BACKEND"); v != "" {
		switch v {
		case StorageMemory, StoragePostgres:
			cfg.StorageBackend = v
		default:
			problems = append(problems, "STORAGE_BACKEND must be \"memory\" or \"postgres\"")
		}
	}
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.StorageBackend == StoragePostgres && cfg.DatabaseURL == "" {
		problems = append(problems, "DATABASE_URL is required when STORAGE_BACKEND=postgres")
	}
	if v := os.Getenv("MIGRATE_ON_START"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			problems = append(problems, "MIGRATE_ON_START must be a boolean")
		} else {
			cfg.MigrateOnStart = b
		}
	}

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}

	if v := os.Getenv("AUTH_MODE"); v != "" {
		switch v {
		case AuthModeJWT, AuthModeDev:
			cfg.AuthMode = v
		default:
			problems = append(problems, "AUTH_MODE must be \"jwt\" or \"dev\"")
		}
	}
	cfg.DevSubject = os.Getenv("DEV_SUBJECT")

	if cfg.AuthMode == AuthModeJWT {
		jwt, errs := loadJWT()
		cfg.JWT = jwt
		problems = append(problems, errs...)
	}

	cfg.TravelAPIBaseURL = os.Getenv("TRAVEL_API_BASE_URL")
	cfg.TravelAPIKey = os.Getenv("TRAVEL_API_KEY")
	if cfg.TravelAPIBaseURL != "" && cfg.TravelAPIKey == "" {
		problems = append(problems, "TRAVEL_API_KEY is required when TRAVEL_API_BASE_URL is set")
	}

	if len(problems) > 0 {
		return Config{}, fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return cfg, nil
}

func loadJWT() (jwtverifier.Config, []string) {
	var problems []string

	cfg := jwtverifier.Config{
		Issuer:   os.Getenv("JWT_ISSUER"),
		Audience: os.Getenv("JWT_AUDIENCE"),
		JWKSURL:  os.Getenv("JWT_JWKS_URL"),

		ClockSkew:          30 * time.Second,
		RefreshInterval:    5 * time.Minute,
		MinRefreshInterval: 10 * time.Second,
		HTTPTimeout:        5 * time.Second,
	}
	for _, name := range []string{"JWT_ISSUER", "JWT_AUDIENCE", "JWT_JWKS_URL"} {
		if os.Getenv(name) == "" {
			problems = append(problems, name+" is required when AUTH_MODE=jwt")
		}
	}

	durations := []struct {
		name string
		dst  *time.Duration
	}{
		{"JWT_CLOCK_SKEW", &cfg.ClockSkew},
		{"JWT_JWKS_REFRESH_INTERVAL", &cfg.RefreshInterval},
		{"JWT_JWKS_MIN_REFRESH_INTERVAL", &cfg.MinRefreshInterval},
		{"JWT_HTTP_TIMEOUT", &cfg.HTTPTimeout},
	}
	for _, d := range durations {
		if v := os.Getenv(d.name); v != "" {
			parsed, err := time.ParseDuration(v)
			if err != nil {
				problems = append(problems, d.name+" must be a duration (e.g. 30s)")
				continue
			}
			*d.dst = parsed
		}
	}

	return cfg, problems
}
