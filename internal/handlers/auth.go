// Package handlers implements the HTTP handlers of the consulting portal.
// This file handles login, logout and session creation for the two portal
// roles.
package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/jornalismobataguassu-droid/Consultoria/internal/middleware"
	"github.com/jornalismobataguassu-droid/Consultoria/internal/security"
	"github.com/jornalismobataguassu-droid/Consultoria/internal/services"
)

// AuthHandler handles authentication requests: the consultant's shared
// secret login and the client CNPJ+password login. Client login doubles as
// first contact: it provisions the NDA when none exists yet.
type AuthHandler struct {
	store      *session.Store
	auth       *services.AuthService
	onboarding *services.OnboardingService
	sec        *middleware.SecurityMiddleware
	logger     *security.Logger
}

// NewAuthHandler creates an AuthHandler with its dependencies injected.
func NewAuthHandler(
	store *session.Store,
	auth *services.AuthService,
	onboarding *services.OnboardingService,
	sec *middleware.SecurityMiddleware,
	logger *security.Logger,
) *AuthHandler {
	return &AuthHandler{
		store:      store,
		auth:       auth,
		onboarding: onboarding,
		sec:        sec,
		logger:     logger,
	}
}

// ShowLogin renders the login page with both login forms.
func (h *AuthHandler) ShowLogin(c *fiber.Ctx) error {
	return c.Render("login", fiber.Map{
		"Title": "Login - Borges Consultoria",
	}, "layouts/blank")
}

// ConsultantLogin authenticates the consultant shared secret and creates a
// consultant session.
//
// Form Data:
//   - secret: the shared secret, formatting characters ignored
func (h *AuthHandler) ConsultantLogin(c *fiber.Ctx) error {
	secret := c.FormValue("secret")

	if err := h.sec.LoginRateLimit("consultora", c.IP()); err != nil {
		return c.Render("login", fiber.Map{"Error": err.Error()}, "layouts/blank")
	}

	if err := h.auth.AuthenticateConsultant(secret); err != nil {
		h.sec.RecordLoginFailure("consultora", c.IP())
		return c.Render("login", fiber.Map{
			"Error": "Senha da consultora incorreta.",
		}, "layouts/blank")
	}

	sess, err := h.store.Get(c)
	if err != nil {
		return err
	}
	// Fresh session id on privilege change
	if err := sess.Regenerate(); err != nil {
		return err
	}
	sess.Set("role", middleware.RoleConsultant)
	if err := sess.Save(); err != nil {
		return err
	}

	h.sec.RecordLoginSuccess("", "consultora", c.IP())
	return c.Redirect("/consultoria/dashboard")
}

// ClientLogin authenticates a client and creates a client session.
//
// On success the client's NDA is provisioned if this is their first contact,
// and the session records whether it is already signed. An unsigned NDA
// confines the session to the NDA page until the signature lands.
//
// Form Data:
//   - cnpj: headquarters CNPJ, with or without formatting
//   - password: the client access password
func (h *AuthHandler) ClientLogin(c *fiber.Ctx) error {
	cnpj := c.FormValue("cnpj")
	password := c.FormValue("password")

	if err := h.sec.LoginRateLimit(cnpj, c.IP()); err != nil {
		return c.Render("login", fiber.Map{"Error": err.Error()}, "layouts/blank")
	}

	client, err := h.auth.AuthenticateClient(c.Context(), cnpj, password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			h.sec.RecordLoginFailure(cnpj, c.IP())
			return c.Render("login", fiber.Map{
				"Error": err.Error(),
			}, "layouts/blank")
		}
		h.logger.Error("client login failed", err)
		return fiber.ErrInternalServerError
	}

	// First contact provisions the NDA; later logins just load it
	nda, err := h.onboarding.GetOrProvisionNDA(c.Context(), client)
	if err != nil {
		h.logger.Error("NDA provisioning failed", err)
		return fiber.ErrInternalServerError
	}

	sess, err := h.store.Get(c)
	if err != nil {
		return err
	}
	if err := sess.Regenerate(); err != nil {
		return err
	}
	sess.Set("role", middleware.RoleClient)
	sess.Set("client_id", client.ID)
	sess.Set("client_name", client.MainCompany.LegalName)
	sess.Set("nda_signed", nda.Signed())
	if err := sess.Save(); err != nil {
		return err
	}

	h.sec.RecordLoginSuccess(client.ID, cnpj, c.IP())

	if !nda.Signed() {
		return c.Redirect(middleware.NDAPath)
	}
	return c.Redirect("/cliente/dashboard")
}

// Logout destroys the session and returns to the login page.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sess, err := h.store.Get(c)
	if err != nil {
		return c.Redirect("/login")
	}

	if clientID, ok := sess.Get("client_id").(string); ok && clientID != "" {
		h.logger.SecurityEvent(security.EventLogout, clientID, "", c.IP(), c.Get("User-Agent"), nil)
	}

	if err := sess.Destroy(); err != nil {
		return err
	}
	return c.Redirect("/login")
}
