package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// EnvProduction is the APP_ENV value that enables production-only behaviour.
const EnvProduction = "production"

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Env               string
	Port              string
	DatabaseURL       string
	SessionSecret     string
	SessionRevocation bool
	BcryptCost        int
	AutoMigrate       bool
	CORSOrigins       []string

	// GeneratedSecret reports that SessionSecret was generated because none
	// was configured outside production.
	GeneratedSecret bool
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	cfg := Config{
		Env:               strings.ToLower(fallback(os.Getenv("APP_ENV"), "development")),
		Port:              fallback(os.Getenv("PORT"), "8080"),
		DatabaseURL:       strings.TrimSpace(os.Getenv("DATABASE_URL")),
		SessionSecret:     fallback(os.Getenv("SESSION_SECRET"), strings.TrimSpace(os.Getenv("JWT_SECRET"))),
		SessionRevocation: parseBool(os.Getenv("SESSION_REVOCATION"), false),
		AutoMigrate:       parseBool(os.Getenv("AUTO_MIGRATE"), true),
		CORSOrigins:       parseCSV(fallback(os.Getenv("CORS_ALLOWED_ORIGINS"), "*")),
		BcryptCost:        bcrypt.DefaultCost,
	}

	if cost, err := strconv.Atoi(strings.TrimSpace(os.Getenv("BCRYPT_COST"))); err == nil {
		cfg.BcryptCost = min(max(cost, bcrypt.MinCost), bcrypt.MaxCost)
	}

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL is required")
	}
	if cfg.IsProduction() && !cfg.hasExplicitOrigin() {
		return Config{}, errors.New("CORS_ALLOWED_ORIGINS must list explicit origins in production")
	}
	if cfg.SessionSecret == "" {
		if cfg.IsProduction() {
			return Config{}, errors.New("SESSION_SECRET is required in production")
		}
		secret, err := randomSecret()
		if err != nil {
			return Config{}, fmt.Errorf("generate session secret: %w", err)
		}
		cfg.SessionSecret = secret
		cfg.GeneratedSecret = true
	}

	return cfg, nil
}

// IsProduction reports whether the process runs with APP_ENV=production.
func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

func (c Config) hasExplicitOrigin() bool {
	for _, origin := range c.CORSOrigins {
		if origin != "*" {
			return true
		}
	}
	return false
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func parseBool(value string, def bool) bool {
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return def
	}
	return parsed
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
