// Package config centralizes environment-driven configuration and the fixed
// consultancy profile substituted into every rendered document.
package config

import (
	"os"
	"time"
)

// ConsultancyProfile is the organizational identity of the consulting
// practice. Its fields feed the {{CONSULTORA_*}} placeholder tokens and the
// consultant-side attestation blocks.
type ConsultancyProfile struct {
	Name       string // Trade name of the practice
	Consultant string // Full legal name of the consultant
	TaxID      string // Consultant CPF, formatted
	Address    string // Full street address
	Phone      string
	Email      string
}

// Consultoria is the process-wide consultancy profile. It is a constant of
// the product, not a per-deployment setting.
var Consultoria = ConsultancyProfile{
	Name:       "Borges Consultoria",
	Consultant: "Danieli Borges de Lima",
	TaxID:      "012.926.211-09",
	Address:    "Rua Nova Andradina, 683 – Bataguassu/MS",
	Phone:      "(67) 92001-5785",
	Email:      "contato@borgesconsultoria.com.br",
}

// Config holds server configuration read from the environment.
type Config struct {
	// DatabaseURL is the PostgreSQL connection string (DATABASE_URL).
	DatabaseURL string

	// Port the HTTP server listens on (PORT, default 8080).
	Port string

	// ConsultantSecret is the shared secret for the consultant login,
	// compared after stripping non-digit characters (CONSULTANT_SECRET).
	// Defaults to the consultant CPF digits, matching the shipped portal.
	ConsultantSecret string

	// PasswordScheme selects the client credential verifier:
	// "plaintext" (default, behavioral contract) or "bcrypt"
	// (CLIENT_PASSWORD_SCHEME).
	PasswordScheme string

	// SessionTimeout is the session inactivity timeout.
	SessionTimeout time.Duration

	// Environment is "production" or anything else for development (ENV).
	Environment string
}

// Load reads configuration from the environment, applying defaults for
// everything except DATABASE_URL, which the database package validates when
// connecting.
func Load() *Config {
	return &Config{
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		Port:             getenv("PORT", "8080"),
		ConsultantSecret: getenv("CONSULTANT_SECRET", "01292621109"),
		PasswordScheme:   getenv("CLIENT_PASSWORD_SCHEME", "plaintext"),
		SessionTimeout:   8 * time.Hour,
		Environment:      getenv("ENV", "development"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
