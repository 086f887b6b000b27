// Package security provides centralized security configuration and utilities
// for the consulting portal: input validation, rate limiting and structured
// security logging.
package security

import (
	"time"
)

// SecurityConfig holds all security-related configuration values.
type SecurityConfig struct {
	// Session management
	SessionTimeout    time.Duration // Session inactivity timeout
	SessionCookieName string        // Name of session cookie
	SessionSecure     bool          // Require HTTPS for session cookies
	SessionHTTPOnly   bool          // Prevent JavaScript access to session cookies
	SessionSameSite   string        // CSRF protection via SameSite attribute

	// Brute force protection. Rate limiting only: failed client logins never
	// lock the account, they only slow the origin down.
	LoginRateLimit int // Max login attempts per minute per IP

	// Input validation
	MaxDocumentTitleLength int // Maximum characters in a document title
	MaxDocumentContentSize int // Maximum bytes of rendered document content
	MaxChecklistSize       int // Maximum bytes of checklist JSON
	MinSignerNameLength    int // Minimum characters of a trimmed signer name

	// Database
	QueryTimeout time.Duration // Deadline for the startup connect and ping

	// Rate limiting (requests per time window)
	RateLimitSign int // Signature endpoints
	RateLimitSave int // Document/checklist save endpoints
}

// DefaultSecurityConfig returns security configuration with recommended
// defaults.
func DefaultSecurityConfig() *SecurityConfig {
	return &SecurityConfig{
		SessionTimeout:    8 * time.Hour,
		SessionCookieName: "consultoria_session",
		SessionSecure:     true,     // Requires HTTPS
		SessionHTTPOnly:   true,     // No JavaScript access
		SessionSameSite:   "Strict", // Strong CSRF protection

		LoginRateLimit: 5, // per minute

		MaxDocumentTitleLength: 200,
		MaxDocumentContentSize: 1024 * 1024, // 1MB
		MaxChecklistSize:       256 * 1024,  // 256KB of JSON
		MinSignerNameLength:    5,

		QueryTimeout: 30 * time.Second,

		RateLimitSign: 20, // per minute per session
		RateLimitSave: 60, // per minute per session
	}
}
