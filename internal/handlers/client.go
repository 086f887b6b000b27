// This file handles the client-facing portal: the NDA wall, the
// value-proposition presentation, the dashboard and the document library.
package handlers

import (
	"errors"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/jornalismobataguassu-droid/Consultoria/internal/models"
	"github.com/jornalismobataguassu-droid/Consultoria/internal/repository"
	"github.com/jornalismobataguassu-droid/Consultoria/internal/security"
	"github.com/jornalismobataguassu-droid/Consultoria/internal/services"
)

// ClientHandler handles the authenticated client area.
type ClientHandler struct {
	store      *session.Store
	clients    *services.ClientService
	documents  *services.DocumentService
	signatures *services.SignatureService
	onboarding *services.OnboardingService
	logger     *security.Logger
}

// NewClientHandler creates a ClientHandler with its dependencies injected.
func NewClientHandler(
	store *session.Store,
	clients *services.ClientService,
	documents *services.DocumentService,
	signatures *services.SignatureService,
	onboarding *services.OnboardingService,
	logger *security.Logger,
) *ClientHandler {
	return &ClientHandler{
		store:      store,
		clients:    clients,
		documents:  documents,
		signatures: signatures,
		onboarding: onboarding,
		logger:     logger,
	}
}

// sessionClient loads the client record bound to the session.
func (h *ClientHandler) sessionClient(c *fiber.Ctx) (*models.Client, error) {
	clientID, _ := c.Locals("client_id").(string)
	if clientID == "" {
		return nil, fiber.ErrForbidden
	}
	return h.clients.Get(c.Context(), clientID)
}

// NDA renders the NDA wall: the pending NDA with its sign form, or a
// redirect onward when it is already signed.
func (h *ClientHandler) NDA(c *fiber.Ctx) error {
	client, err := h.sessionClient(c)
	if err != nil {
		return err
	}

	nda, err := h.onboarding.GetOrProvisionNDA(c.Context(), client)
	if err != nil {
		h.logger.Error("NDA load failed", err)
		return fiber.ErrInternalServerError
	}

	if nda.Signed() {
		return c.Redirect("/cliente/dashboard")
	}

	return c.Render("client/nda", fiber.Map{
		"Title":      "Termo de Confidencialidade",
		"ClientName": client.MainCompany.LegalName,
		"Document":   nda,
		"Error":      c.Query("erro"),
	}, "layouts/blank")
}

// SignNDA captures the client signature on the NDA and releases the
// onboarding gate.
//
// Form Data:
//   - signer_name: full name typed as the electronic signature
func (h *ClientHandler) SignNDA(c *fiber.Ctx) error {
	client, err := h.sessionClient(c)
	if err != nil {
		return err
	}

	nda, err := h.onboarding.GetOrProvisionNDA(c.Context(), client)
	if err != nil {
		h.logger.Error("NDA load failed", err)
		return fiber.ErrInternalServerError
	}

	signerName := c.FormValue("signer_name")
	signed, err := h.onboarding.SignNDA(c.Context(), client, nda.ID, signerName)
	if err != nil {
		if errors.Is(err, security.ErrSignerNameTooShort) {
			return c.Render("client/nda", fiber.Map{
				"Title":      "Termo de Confidencialidade",
				"ClientName": client.MainCompany.LegalName,
				"Document":   nda,
				"Error":      err.Error(),
			}, "layouts/blank")
		}
		if errors.Is(err, services.ErrDocumentSigned) {
			return c.Redirect("/cliente/dashboard")
		}
		h.logger.Error("NDA signature failed", err)
		return fiber.ErrInternalServerError
	}

	h.logger.SecurityEvent(security.EventNDASign, client.ID, "", c.IP(), c.Get("User-Agent"),
		map[string]interface{}{"document_id": signed.ID})

	// Release the gate for this session
	sess, err := h.store.Get(c)
	if err != nil {
		return err
	}
	sess.Set("nda_signed", true)
	if err := sess.Save(); err != nil {
		return err
	}

	if client.PresentationHTML != "" {
		return c.Redirect("/cliente/apresentacao")
	}
	return c.Redirect("/cliente/dashboard")
}

// Presentation renders the client's value-proposition page. Clients without
// presentation content skip straight to the dashboard.
func (h *ClientHandler) Presentation(c *fiber.Ctx) error {
	client, err := h.sessionClient(c)
	if err != nil {
		return err
	}

	if client.PresentationHTML == "" {
		return c.Redirect("/cliente/dashboard")
	}

	return c.Render("client/presentation", fiber.Map{
		"Title":      "Apresentação",
		"ClientName": client.MainCompany.LegalName,
		"Content":    client.PresentationHTML,
	}, "layouts/blank")
}

// ContinueOnboarding finishes the presentation step: the proposal document
// is generated (once) and the client lands on their dashboard.
func (h *ClientHandler) ContinueOnboarding(c *fiber.Ctx) error {
	client, err := h.sessionClient(c)
	if err != nil {
		return err
	}

	if _, err := h.onboarding.GenerateProposal(c.Context(), client); err != nil {
		h.logger.Error("proposal generation failed", err)
		return fiber.ErrInternalServerError
	}

	h.logger.SecurityEvent(security.EventProposalGenerate, client.ID, "", c.IP(), c.Get("User-Agent"), nil)
	return c.Redirect("/cliente/dashboard")
}

// Dashboard renders the client home: their documents and pending items.
func (h *ClientHandler) Dashboard(c *fiber.Ctx) error {
	client, err := h.sessionClient(c)
	if err != nil {
		return err
	}

	docs, err := h.documents.ListByClient(c.Context(), client.ID)
	if err != nil {
		h.logger.Error("client document listing failed", err)
		return fiber.ErrInternalServerError
	}

	pending := 0
	for _, d := range docs {
		if d.Status == models.StatusPendingSignature {
			pending++
		}
	}

	return c.Render("client/dashboard", fiber.Map{
		"Title":      "Portal do Cliente",
		"ClientName": client.MainCompany.LegalName,
		"Documents":  listViews(docs),
		"Pending":    pending,
	}, "layouts/main")
}

// Documents renders the client's document library.
func (h *ClientHandler) Documents(c *fiber.Ctx) error {
	client, err := h.sessionClient(c)
	if err != nil {
		return err
	}

	docs, err := h.documents.ListByClient(c.Context(), client.ID)
	if err != nil {
		h.logger.Error("client document listing failed", err)
		return fiber.ErrInternalServerError
	}

	return c.Render("client/documents", fiber.Map{
		"Title":      "Meus Documentos",
		"ClientName": client.MainCompany.LegalName,
		"Documents":  listViews(docs),
	}, "layouts/main")
}

// ViewDocument renders one of the client's documents. Documents of other
// clients are not found, deliberately indistinguishable from nonexistent
// ones.
func (h *ClientHandler) ViewDocument(c *fiber.Ctx) error {
	client, err := h.sessionClient(c)
	if err != nil {
		return err
	}

	doc, err := h.clientDocument(c, client)
	if err != nil {
		return err
	}

	return c.Render("document_view", fiber.Map{
		"Title":       doc.Title,
		"ClientName":  client.MainCompany.LegalName,
		"Document":    doc,
		"StatusLabel": models.StatusLabel(doc.Status),
		"CanSign":     doc.Status == models.StatusPendingSignature,
		"SignAction":  "/cliente/documentos/" + doc.ID + "/assinar",
		"Error":       c.Query("erro"),
	}, "layouts/main")
}

// SignDocument captures the client's signature on one of their pending
// documents.
//
// Form Data:
//   - signer_name: full name typed as the electronic signature
func (h *ClientHandler) SignDocument(c *fiber.Ctx) error {
	client, err := h.sessionClient(c)
	if err != nil {
		return err
	}

	doc, err := h.clientDocument(c, client)
	if err != nil {
		return err
	}

	signed, err := h.signatures.Sign(c.Context(), doc.ID, c.FormValue("signer_name"), models.ActorClient)
	if err != nil {
		switch {
		case errors.Is(err, security.ErrSignerNameTooShort):
			return c.Redirect("/cliente/documentos/" + doc.ID + "?erro=" + url.QueryEscape(err.Error()))
		case errors.Is(err, services.ErrDocumentSigned):
			return c.Redirect("/cliente/documentos/" + doc.ID)
		default:
			h.logger.Error("document signature failed", err)
			return fiber.ErrInternalServerError
		}
	}

	h.logger.SecurityEvent(security.EventDocumentSign, client.ID, "", c.IP(), c.Get("User-Agent"),
		map[string]interface{}{"document_id": signed.ID})
	return c.Redirect("/cliente/documentos/" + signed.ID)
}

// clientDocument loads the :id document and enforces ownership.
func (h *ClientHandler) clientDocument(c *fiber.Ctx, client *models.Client) (*models.Document, error) {
	doc, err := h.documents.Get(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fiber.ErrNotFound
		}
		h.logger.Error("document load failed", err)
		return nil, fiber.ErrInternalServerError
	}
	if doc.ClientID != client.ID {
		return nil, fiber.ErrNotFound
	}
	return doc, nil
}

// listViews decorates documents with their localized status labels.
func listViews(docs []models.Document) []models.DocumentListView {
	views := make([]models.DocumentListView, len(docs))
	for i, d := range docs {
		views[i] = models.DocumentListView{
			Document:    d,
			StatusLabel: models.StatusLabel(d.Status),
		}
	}
	return views
}
