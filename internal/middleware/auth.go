// Package middleware provides HTTP middleware for authentication,
// authorization and the onboarding gate that keeps clients on the NDA page
// until they sign.
package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// Portal roles stored in the session under "role".
const (
	RoleConsultant = "consultora"
	RoleClient     = "cliente"
)

// NDAPath is where unsigned clients are confined.
const NDAPath = "/cliente/nda"

// AuthRequired ensures the request carries an authenticated session of
// either role, redirecting to the login page otherwise.
//
// Context Locals Set:
//   - role: RoleConsultant or RoleClient
//   - client_id, client_name: the client identity (client sessions only)
//   - nda_signed: whether the client has signed their NDA (bool)
//
// Example:
//
//	cliente := app.Group("/cliente", middleware.AuthRequired(store))
func AuthRequired(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return c.Redirect("/login")
		}

		role := sess.Get("role")
		if role == nil {
			return c.Redirect("/login")
		}

		// Pass session identity to downstream handlers
		c.Locals("role", role)
		c.Locals("client_id", sess.Get("client_id"))
		c.Locals("client_name", sess.Get("client_name"))
		c.Locals("nda_signed", sess.Get("nda_signed"))

		return c.Next()
	}
}

// ConsultantOnly restricts a route group to the consultant role. Must be
// chained after AuthRequired.
func ConsultantOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Locals("role") != RoleConsultant {
			return c.Status(fiber.StatusForbidden).SendString("Acesso restrito à consultora")
		}
		return c.Next()
	}
}

// ClientOnly restricts a route group to the client role. Must be chained
// after AuthRequired.
func ClientOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Locals("role") != RoleClient {
			return c.Status(fiber.StatusForbidden).SendString("Acesso restrito a clientes")
		}
		return c.Next()
	}
}

// NDAGate confines a client whose NDA is unsigned to the NDA page. Every
// other client route redirects there until the signature lands. The signed
// flag is set at login and updated by the NDA signature handler. Must be
// chained after AuthRequired and ClientOnly.
func NDAGate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if signed, ok := c.Locals("nda_signed").(bool); !ok || !signed {
			return c.Redirect(NDAPath)
		}
		return c.Next()
	}
}
