// Package middleware provides the security middleware stack: CSRF
// protection, rate limiting, request logging and response headers.
package middleware

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/jornalismobataguassu-droid/Consultoria/internal/security"
)

// SecurityMiddleware bundles the security concerns applied around the
// handlers. There is deliberately no account lockout: failed client logins
// are only rate limited per origin, never lock the account.
type SecurityMiddleware struct {
	logger            *security.Logger
	config            *security.SecurityConfig
	loginLimiter      *security.RateLimiter
	validationService *security.ValidationService
}

// NewSecurityMiddleware creates a security middleware instance.
func NewSecurityMiddleware(logger *security.Logger, config *security.SecurityConfig) *SecurityMiddleware {
	return &SecurityMiddleware{
		logger:            logger,
		config:            config,
		loginLimiter:      security.NewRateLimiter(config.LoginRateLimit, time.Minute/time.Duration(config.LoginRateLimit)),
		validationService: security.NewValidationService(config),
	}
}

// LoginRateLimit checks the per-origin login budget. Returns an error safe
// to show on the login page when the origin is throttled.
func (sm *SecurityMiddleware) LoginRateLimit(identifier, ipAddress string) error {
	if !sm.loginLimiter.Allow(ipAddress) {
		sm.logger.SecurityEvent(security.EventRateLimitExceeded, "", identifier, ipAddress, "",
			map[string]interface{}{
				"endpoint": "/login",
				"limit":    sm.config.LoginRateLimit,
			})
		return fmt.Errorf("muitas tentativas de login, tente novamente em instantes")
	}
	return nil
}

// RecordLoginFailure logs a failed login attempt. No lockout is recorded.
func (sm *SecurityMiddleware) RecordLoginFailure(identifier, ipAddress string) {
	sm.logger.SecurityEvent(security.EventLoginFailure, "", identifier, ipAddress, "", nil)
}

// RecordLoginSuccess logs a successful login.
func (sm *SecurityMiddleware) RecordLoginSuccess(clientID, identifier, ipAddress string) {
	sm.logger.SecurityEvent(security.EventLoginSuccess, clientID, identifier, ipAddress, "",
		map[string]interface{}{
			"success": true,
		})
}

// CSRFProtection validates the CSRF token on state-changing methods.
func (sm *SecurityMiddleware) CSRFProtection(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() != "POST" && c.Method() != "PUT" && c.Method() != "DELETE" {
			return c.Next()
		}

		sess, err := store.Get(c)
		if err != nil {
			return c.Status(fiber.StatusForbidden).SendString("Sessão inválida")
		}

		sessionToken := sess.Get("csrf_token")
		if sessionToken == nil {
			sess.Set("csrf_token", generateCSRFToken())
			_ = sess.Save()

			sm.logger.SecurityEvent(security.EventCSRFViolation, "", "", c.IP(), c.Get("User-Agent"),
				map[string]interface{}{
					"method": c.Method(),
					"path":   c.Path(),
					"reason": "missing_token",
				})
			return c.Status(fiber.StatusForbidden).SendString("Token CSRF ausente")
		}

		requestToken := c.Get("X-CSRF-Token")
		if requestToken == "" {
			requestToken = c.FormValue("csrf_token")
		}

		if requestToken != sessionToken {
			sm.logger.SecurityEvent(security.EventCSRFViolation, "", "", c.IP(), c.Get("User-Agent"),
				map[string]interface{}{
					"method": c.Method(),
					"path":   c.Path(),
					"reason": "token_mismatch",
				})
			return c.Status(fiber.StatusForbidden).SendString("Token CSRF inválido")
		}

		return c.Next()
	}
}

// SetCSRFToken ensures the session carries a CSRF token and exposes it to
// templates via c.Locals("csrf_token").
func (sm *SecurityMiddleware) SetCSRFToken(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return c.Next()
		}

		token := sess.Get("csrf_token")
		if token == nil {
			token = generateCSRFToken()
			sess.Set("csrf_token", token)
			_ = sess.Save()
		}

		c.Locals("csrf_token", token)
		return c.Next()
	}
}

// RateLimit applies a token bucket to an endpoint group, keyed on the
// session's client id when authenticated, the origin IP otherwise.
func (sm *SecurityMiddleware) RateLimit(limiter *security.RateLimiter, endpointName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identifier := c.IP()
		if clientID, ok := c.Locals("client_id").(string); ok && clientID != "" {
			identifier = "client_" + clientID
		}

		if !limiter.Allow(identifier) {
			sm.logger.SecurityEvent(security.EventRateLimitExceeded, "", "", c.IP(), c.Get("User-Agent"),
				map[string]interface{}{
					"endpoint":   endpointName,
					"identifier": identifier,
				})

			c.Set("Retry-After", "60")
			return c.Status(fiber.StatusTooManyRequests).
				SendString("Limite de requisições excedido, tente novamente em instantes")
		}

		return c.Next()
	}
}

// RequestLogger logs every handled request, plus a security event for
// forbidden responses.
func (sm *SecurityMiddleware) RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		latency := time.Since(start)
		sm.logger.HTTPRequest(
			c.Method(),
			c.Path(),
			c.Response().StatusCode(),
			latency.Milliseconds(),
			c.IP(),
			c.Get("User-Agent"),
		)

		if c.Response().StatusCode() == fiber.StatusForbidden {
			clientID, _ := c.Locals("client_id").(string)
			sm.logger.SecurityEvent(security.EventUnauthorizedAccess, clientID, "", c.IP(), c.Get("User-Agent"),
				map[string]interface{}{
					"method": c.Method(),
					"path":   c.Path(),
				})
		}

		return err
	}
}

// SecureHeaders adds security headers to every response. The CSP allows
// inline styles because rendered documents and attestation blocks carry
// style attributes.
func (sm *SecurityMiddleware) SecureHeaders() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; font-src 'self'; connect-src 'self'; frame-ancestors 'none'")
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
		return c.Next()
	}
}

// generateCSRFToken generates a cryptographically secure random token.
func generateCSRFToken() string {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		// Timestamp fallback keeps the request path alive if the entropy
		// source ever fails
		return base64.URLEncoding.EncodeToString([]byte(fmt.Sprintf("%d", time.Now().UnixNano())))
	}
	return base64.URLEncoding.EncodeToString(bytes)
}
