// This file handles the consultant's back office: dashboard, client
// management, the diagnostic checklist, document authoring and lifecycle,
// template management and the audit trail view.
package handlers

import (
	"encoding/json"
	"errors"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jornalismobataguassu-droid/Consultoria/internal/attestation"
	"github.com/jornalismobataguassu-droid/Consultoria/internal/models"
	"github.com/jornalismobataguassu-droid/Consultoria/internal/repository"
	"github.com/jornalismobataguassu-droid/Consultoria/internal/security"
	"github.com/jornalismobataguassu-droid/Consultoria/internal/services"
)

// ConsultantHandler handles the consultant back office.
type ConsultantHandler struct {
	clients    *services.ClientService
	documents  *services.DocumentService
	signatures *services.SignatureService
	checklists *services.ChecklistService
	audit      *services.AuditService
	templates  services.TemplateStore
	source     attestation.Source
	validate   *security.ValidationService
	logger     *security.Logger
}

// NewConsultantHandler creates a ConsultantHandler with its dependencies
// injected.
func NewConsultantHandler(
	clients *services.ClientService,
	documents *services.DocumentService,
	signatures *services.SignatureService,
	checklists *services.ChecklistService,
	audit *services.AuditService,
	tpls services.TemplateStore,
	source attestation.Source,
	validate *security.ValidationService,
	logger *security.Logger,
) *ConsultantHandler {
	return &ConsultantHandler{
		clients:    clients,
		documents:  documents,
		signatures: signatures,
		checklists: checklists,
		audit:      audit,
		templates:  tpls,
		source:     source,
		validate:   validate,
		logger:     logger,
	}
}

// Dashboard renders the consultant home: client count, pending signatures
// and the latest activity.
func (h *ConsultantHandler) Dashboard(c *fiber.Ctx) error {
	clients, err := h.clients.List(c.Context())
	if err != nil {
		h.logger.Error("client listing failed", err)
		return fiber.ErrInternalServerError
	}

	docs, err := h.documents.List(c.Context())
	if err != nil {
		h.logger.Error("document listing failed", err)
		return fiber.ErrInternalServerError
	}

	pending := 0
	for _, d := range docs {
		if d.Status == models.StatusPendingSignature {
			pending++
		}
	}

	trail, err := h.audit.Recent(c.Context(), 10)
	if err != nil {
		h.logger.Error("audit listing failed", err)
		return fiber.ErrInternalServerError
	}

	return c.Render("consultant/dashboard", fiber.Map{
		"Title":         "Painel da Consultora",
		"ClientCount":   len(clients),
		"DocumentCount": len(docs),
		"Pending":       pending,
		"Activity":      trail,
	}, "layouts/main")
}

// Clients renders the client list.
func (h *ConsultantHandler) Clients(c *fiber.Ctx) error {
	clients, err := h.clients.List(c.Context())
	if err != nil {
		h.logger.Error("client listing failed", err)
		return fiber.ErrInternalServerError
	}

	return c.Render("consultant/clients", fiber.Map{
		"Title":   "Clientes",
		"Clients": clients,
	}, "layouts/main")
}

// ClientForm renders the client create/edit form.
func (h *ConsultantHandler) ClientForm(c *fiber.Ctx) error {
	client := &models.Client{Status: models.ClientProspect}

	if id := c.Params("id"); id != "" {
		loaded, err := h.clients.Get(c.Context(), id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fiber.ErrNotFound
			}
			h.logger.Error("client load failed", err)
			return fiber.ErrInternalServerError
		}
		client = loaded
	}

	return c.Render("consultant/client_form", fiber.Map{
		"Title":  "Cadastro de Cliente",
		"Client": client,
		"Error":  c.Query("erro"),
	}, "layouts/main")
}

// SaveClient persists the client form, whole record at a time.
func (h *ConsultantHandler) SaveClient(c *fiber.Ctx) error {
	cnpj := c.FormValue("cnpj")
	if err := h.validate.ValidateCNPJ(cnpj); err != nil {
		return c.Redirect(clientFormPath(c.Params("id")) + "?erro=" + url.QueryEscape(err.Error()))
	}
	if err := h.validate.ValidateEmail(c.FormValue("contact_email")); err != nil {
		return c.Redirect(clientFormPath(c.Params("id")) + "?erro=" + url.QueryEscape(err.Error()))
	}

	client := &models.Client{
		ID:       c.Params("id"),
		Password: c.FormValue("password"),
		MainCompany: models.Company{
			ID:             c.FormValue("company_id"),
			LegalName:      h.validate.SanitizeString(c.FormValue("legal_name")),
			TaxID:          cnpj,
			Address:        h.validate.SanitizeString(c.FormValue("address")),
			City:           h.validate.SanitizeString(c.FormValue("city")),
			Region:         h.validate.SanitizeString(c.FormValue("region")),
			IsHeadquarters: true,
		},
		OtherGroupCompanies: h.validate.SanitizeString(c.FormValue("other_companies")),
		LegalRepresentative: models.LegalRepresentative{
			Name:  h.validate.SanitizeString(c.FormValue("rep_name")),
			TaxID: c.FormValue("rep_cpf"),
			Role:  h.validate.SanitizeString(c.FormValue("rep_role")),
		},
		ContactEmail:     c.FormValue("contact_email"),
		ContactPhone:     c.FormValue("contact_phone"),
		VenueCity:        h.validate.SanitizeString(c.FormValue("venue_city")),
		Status:           models.ClientStatus(c.FormValue("status", string(models.ClientProspect))),
		PresentationHTML: c.FormValue("presentation_html"),
	}
	if client.MainCompany.ID == "" {
		client.MainCompany.ID = uuid.NewString()
	}

	if err := h.clients.Save(c.Context(), client, models.ActorConsultant); err != nil {
		h.logger.Error("client save failed", err)
		return fiber.ErrInternalServerError
	}

	h.logger.SecurityEvent(security.EventClientUpdate, client.ID, security.Digits(cnpj),
		c.IP(), c.Get("User-Agent"), nil)
	return c.Redirect("/consultoria/clientes")
}

// Checklist renders the diagnostic checklist of one client.
func (h *ConsultantHandler) Checklist(c *fiber.Ctx) error {
	client, err := h.clients.Get(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fiber.ErrNotFound
		}
		h.logger.Error("client load failed", err)
		return fiber.ErrInternalServerError
	}

	checklist, err := h.checklists.GetOrEmpty(c.Context(), client.ID)
	if err != nil {
		h.logger.Error("checklist load failed", err)
		return fiber.ErrInternalServerError
	}

	data, err := json.MarshalIndent(checklist.Data, "", "  ")
	if err != nil {
		return fiber.ErrInternalServerError
	}

	return c.Render("consultant/checklist", fiber.Map{
		"Title":     "Checklist de Diagnóstico",
		"Client":    client,
		"Checklist": checklist,
		"Data":      string(data),
		"Error":     c.Query("erro"),
	}, "layouts/main")
}

// SaveChecklist upserts the checklist wholesale from the submitted JSON
// payload.
//
// Form Data:
//   - data: the checklist answers as a JSON object
func (h *ConsultantHandler) SaveChecklist(c *fiber.Ctx) error {
	clientID := c.Params("id")
	payload := []byte(c.FormValue("data", "{}"))

	if err := h.validate.ValidateChecklistSize(payload); err != nil {
		return c.Redirect("/consultoria/clientes/" + clientID + "/checklist?erro=" + url.QueryEscape(err.Error()))
	}

	var data map[string]any
	if err := json.Unmarshal(payload, &data); err != nil {
		return c.Redirect("/consultoria/clientes/" + clientID + "/checklist?erro=" +
			url.QueryEscape("conteúdo do checklist não é um JSON válido"))
	}

	checklist, err := h.checklists.GetOrEmpty(c.Context(), clientID)
	if err != nil {
		h.logger.Error("checklist load failed", err)
		return fiber.ErrInternalServerError
	}

	checklist.Data = data
	checklist.UpdatedBy = models.ActorConsultant
	if err := h.checklists.Save(c.Context(), checklist); err != nil {
		h.logger.Error("checklist save failed", err)
		return fiber.ErrInternalServerError
	}

	return c.Redirect("/consultoria/clientes/" + clientID + "/checklist")
}

// Documents renders the full document list across clients.
func (h *ConsultantHandler) Documents(c *fiber.Ctx) error {
	docs, err := h.documents.List(c.Context())
	if err != nil {
		h.logger.Error("document listing failed", err)
		return fiber.ErrInternalServerError
	}

	return c.Render("consultant/documents", fiber.Map{
		"Title":     "Documentos",
		"Documents": listViews(docs),
	}, "layouts/main")
}

// NewDocumentForm renders the document creation form: pick a client, pick a
// template (or start blank).
func (h *ConsultantHandler) NewDocumentForm(c *fiber.Ctx) error {
	clients, err := h.clients.List(c.Context())
	if err != nil {
		h.logger.Error("client listing failed", err)
		return fiber.ErrInternalServerError
	}

	tpls, err := h.templates.List(c.Context())
	if err != nil {
		h.logger.Error("template listing failed", err)
		return fiber.ErrInternalServerError
	}

	return c.Render("consultant/document_form", fiber.Map{
		"Title":     "Novo Documento",
		"Clients":   clients,
		"Templates": tpls,
		"Error":     c.Query("erro"),
	}, "layouts/main")
}

// CreateDocument creates a draft for a client from a template or from ad-hoc
// content. Drafts keep their content tokens unresolved; finalizing the
// document renders them against the client.
//
// Form Data:
//   - client_id: the client the document binds to
//   - template_id: optional source template
//   - title: document title (defaults to the template title)
//   - content: ad-hoc content when no template is selected
func (h *ConsultantHandler) CreateDocument(c *fiber.Ctx) error {
	client, err := h.clients.Get(c.Context(), c.FormValue("client_id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Redirect("/consultoria/documentos/novo?erro=" + url.QueryEscape("selecione um cliente"))
		}
		h.logger.Error("client load failed", err)
		return fiber.ErrInternalServerError
	}

	title := c.FormValue("title")
	content := c.FormValue("content")
	templateID := c.FormValue("template_id")

	if templateID != "" {
		tpl, err := h.templates.FindByID(c.Context(), templateID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return c.Redirect("/consultoria/documentos/novo?erro=" + url.QueryEscape("template não encontrado"))
			}
			h.logger.Error("template load failed", err)
			return fiber.ErrInternalServerError
		}
		content = tpl.Content
		if title == "" {
			title = tpl.Title
		}
	}

	if err := h.validate.ValidateDocumentTitle(title); err != nil {
		return c.Redirect("/consultoria/documentos/novo?erro=" + url.QueryEscape(err.Error()))
	}
	if err := h.validate.ValidateDocumentContent(content); err != nil {
		return c.Redirect("/consultoria/documentos/novo?erro=" + url.QueryEscape(err.Error()))
	}

	doc, err := h.documents.CreateDraft(c.Context(), title, content,
		client.ID, client.MainCompany.LegalName, templateID)
	if err != nil {
		h.logger.Error("draft creation failed", err)
		return fiber.ErrInternalServerError
	}

	return c.Redirect("/consultoria/documentos/" + doc.ID)
}

// ViewDocument renders one document with its lifecycle actions.
func (h *ConsultantHandler) ViewDocument(c *fiber.Ctx) error {
	doc, err := h.loadDocument(c)
	if err != nil {
		return err
	}

	return c.Render("document_view", fiber.Map{
		"Title":       doc.Title,
		"Document":    doc,
		"StatusLabel": models.StatusLabel(doc.Status),
		"CanEdit":     doc.Status == models.StatusDraft,
		"CanFinalize": doc.Status == models.StatusDraft,
		"CanSign":     doc.Status == models.StatusPendingSignature,
		"SignAction":  "/consultoria/documentos/" + doc.ID + "/assinar",
		"Error":       c.Query("erro"),
	}, "layouts/main")
}

// UpdateDocument saves edits to a draft. Documents already finalized were
// rendered against their client; editing them could put unresolved tokens
// back in front of a signer, so anything past draft rejects the save.
func (h *ConsultantHandler) UpdateDocument(c *fiber.Ctx) error {
	doc, err := h.loadDocument(c)
	if err != nil {
		return err
	}

	title := c.FormValue("title", doc.Title)
	if err := h.validate.ValidateDocumentTitle(title); err != nil {
		return c.Redirect("/consultoria/documentos/" + doc.ID + "?erro=" + url.QueryEscape(err.Error()))
	}
	content := c.FormValue("content", doc.Content)
	if err := h.validate.ValidateDocumentContent(content); err != nil {
		return c.Redirect("/consultoria/documentos/" + doc.ID + "?erro=" + url.QueryEscape(err.Error()))
	}

	if _, err := h.documents.UpdateDraft(c.Context(), doc.ID, title, content, models.ActorConsultant); err != nil {
		switch {
		case errors.Is(err, services.ErrDocumentSigned):
			return c.Redirect("/consultoria/documentos/" + doc.ID + "?erro=" +
				url.QueryEscape("documento assinado não pode ser alterado"))
		case errors.Is(err, services.ErrNotEditable):
			return c.Redirect("/consultoria/documentos/" + doc.ID + "?erro=" + url.QueryEscape(err.Error()))
		default:
			h.logger.Error("document save failed", err)
			return fiber.ErrInternalServerError
		}
	}

	return c.Redirect("/consultoria/documentos/" + doc.ID)
}

// FinalizeDocument renders a draft against its client and sends it out for
// signature.
func (h *ConsultantHandler) FinalizeDocument(c *fiber.Ctx) error {
	doc, err := h.loadDocument(c)
	if err != nil {
		return err
	}

	client, err := h.clients.Get(c.Context(), doc.ClientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Redirect("/consultoria/documentos/" + doc.ID + "?erro=" +
				url.QueryEscape("documento sem cliente vinculado"))
		}
		h.logger.Error("client load failed", err)
		return fiber.ErrInternalServerError
	}

	if _, err := h.documents.Finalize(c.Context(), doc.ID, client, models.ActorConsultant); err != nil {
		if errors.Is(err, services.ErrNotDraft) {
			return c.Redirect("/consultoria/documentos/" + doc.ID + "?erro=" +
				url.QueryEscape("somente rascunhos podem ser enviados para assinatura"))
		}
		h.logger.Error("document finalize failed", err)
		return fiber.ErrInternalServerError
	}

	return c.Redirect("/consultoria/documentos/" + doc.ID)
}

// SignDocument captures the consultant's signature on a pending document.
func (h *ConsultantHandler) SignDocument(c *fiber.Ctx) error {
	doc, err := h.loadDocument(c)
	if err != nil {
		return err
	}

	signed, err := h.signatures.Sign(c.Context(), doc.ID, c.FormValue("signer_name"), models.ActorConsultant)
	if err != nil {
		switch {
		case errors.Is(err, security.ErrSignerNameTooShort):
			return c.Redirect("/consultoria/documentos/" + doc.ID + "?erro=" + url.QueryEscape(err.Error()))
		case errors.Is(err, services.ErrDocumentSigned):
			return c.Redirect("/consultoria/documentos/" + doc.ID)
		default:
			h.logger.Error("document signature failed", err)
			return fiber.ErrInternalServerError
		}
	}

	h.logger.SecurityEvent(security.EventDocumentSign, "", "", c.IP(), c.Get("User-Agent"),
		map[string]interface{}{"document_id": signed.ID})
	return c.Redirect("/consultoria/documentos/" + signed.ID)
}

// Templates renders the template list.
func (h *ConsultantHandler) Templates(c *fiber.Ctx) error {
	tpls, err := h.templates.List(c.Context())
	if err != nil {
		h.logger.Error("template listing failed", err)
		return fiber.ErrInternalServerError
	}

	return c.Render("consultant/templates", fiber.Map{
		"Title":     "Templates",
		"Templates": tpls,
	}, "layouts/main")
}

// TemplateForm renders the template create/edit form.
func (h *ConsultantHandler) TemplateForm(c *fiber.Ctx) error {
	tpl := &models.Template{Category: models.CategoryOther}

	if id := c.Params("id"); id != "" {
		loaded, err := h.templates.FindByID(c.Context(), id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fiber.ErrNotFound
			}
			h.logger.Error("template load failed", err)
			return fiber.ErrInternalServerError
		}
		tpl = loaded
	}

	return c.Render("consultant/template_form", fiber.Map{
		"Title":    "Template",
		"Template": tpl,
		"Error":    c.Query("erro"),
	}, "layouts/main")
}

// SaveTemplate persists a template. Editing a template never touches
// documents already rendered from it.
func (h *ConsultantHandler) SaveTemplate(c *fiber.Ctx) error {
	title := c.FormValue("title")
	if err := h.validate.ValidateDocumentTitle(title); err != nil {
		return c.Redirect("/consultoria/templates?erro=" + url.QueryEscape(err.Error()))
	}

	tpl := &models.Template{
		ID:           c.Params("id"),
		Title:        title,
		Category:     models.TemplateCategory(c.FormValue("category", string(models.CategoryOther))),
		Content:      c.FormValue("content"),
		LastModified: h.source.Now(),
	}
	if tpl.ID == "" {
		tpl.ID = uuid.NewString()
	}

	if err := h.templates.Save(c.Context(), tpl); err != nil {
		h.logger.Error("template save failed", err)
		return fiber.ErrInternalServerError
	}

	return c.Redirect("/consultoria/templates")
}

// Audit renders the activity trail, newest first.
func (h *ConsultantHandler) Audit(c *fiber.Ctx) error {
	trail, err := h.audit.Recent(c.Context(), services.DefaultAuditLimit)
	if err != nil {
		h.logger.Error("audit listing failed", err)
		return fiber.ErrInternalServerError
	}

	return c.Render("consultant/audit", fiber.Map{
		"Title":   "Trilha de Auditoria",
		"Entries": trail,
	}, "layouts/main")
}

// loadDocument loads the :id document for the consultant, who can see every
// client's documents.
func (h *ConsultantHandler) loadDocument(c *fiber.Ctx) (*models.Document, error) {
	doc, err := h.documents.Get(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fiber.ErrNotFound
		}
		h.logger.Error("document load failed", err)
		return nil, fiber.ErrInternalServerError
	}
	return doc, nil
}

// clientFormPath returns the form URL for a new or existing client.
func clientFormPath(id string) string {
	if id == "" {
		return "/consultoria/clientes/novo"
	}
	return "/consultoria/clientes/" + id + "/editar"
}
