// This file implements the document lifecycle: creation from templates or
// ad-hoc content, draft editing, finalization for signature, and the
// immutability guard protecting signed documents.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jornalismobataguassu-droid/Consultoria/internal/attestation"
	"github.com/jornalismobataguassu-droid/Consultoria/internal/models"
	"github.com/jornalismobataguassu-droid/Consultoria/internal/repository"
	"github.com/jornalismobataguassu-droid/Consultoria/internal/templates"
)

// ErrDocumentSigned rejects any mutation of a document that already carries
// a signature. Signed content is immutable.
var ErrDocumentSigned = errors.New("documento assinado não pode ser alterado")

// ErrNotDraft rejects finalization of a document outside the draft state.
var ErrNotDraft = errors.New("somente rascunhos podem ser enviados para assinatura")

// ErrNotEditable rejects content edits on a document past the draft state. A
// pending document was rendered at finalization; editing it could reintroduce
// unresolved content tokens into what gets signed.
var ErrNotEditable = errors.New("somente rascunhos podem ser editados")

// ErrClientReassigned rejects saves that move a document to another client.
// The client binding is fixed at creation.
var ErrClientReassigned = errors.New("documento não pode ser transferido para outro cliente")

// DocumentService manages the document lifecycle.
//
// State machine: draft → pending_signature → signed. There is no transition
// out of signed and no delete operation; "archived" exists in the model but
// no operation enters it.
type DocumentService struct {
	docs   DocumentStore
	audit  *AuditService
	source attestation.Source
	engine *templates.Engine
}

// NewDocumentService creates a DocumentService.
func NewDocumentService(docs DocumentStore, audit *AuditService, source attestation.Source, engine *templates.Engine) *DocumentService {
	return &DocumentService{
		docs:   docs,
		audit:  audit,
		source: source,
		engine: engine,
	}
}

// Get returns one document by id.
func (s *DocumentService) Get(ctx context.Context, id string) (*models.Document, error) {
	return s.docs.FindByID(ctx, id)
}

// GetByClientAndKind returns the client's document of the given kind, if
// one exists. Used for one-per-client provisioning (NDA, proposal).
func (s *DocumentService) GetByClientAndKind(ctx context.Context, clientID string, kind models.DocumentKind) (*models.Document, error) {
	return s.docs.FindByClientAndKind(ctx, clientID, kind)
}

// List returns every document, newest first. Consultant view.
func (s *DocumentService) List(ctx context.Context) ([]models.Document, error) {
	return s.docs.List(ctx)
}

// ListByClient returns the documents bound to one client, newest first.
// Client view: a client never sees another client's documents.
func (s *DocumentService) ListByClient(ctx context.Context, clientID string) ([]models.Document, error) {
	return s.docs.ListByClient(ctx, clientID)
}

// CreateDraft creates a new general document in draft state and persists it.
//
// Parameters:
//   - title, content: the document as authored by the consultant
//   - clientID, clientName: the client binding, immutable afterwards
//   - templateID: provenance of the content, empty for ad-hoc documents
func (s *DocumentService) CreateDraft(ctx context.Context, title, content, clientID, clientName, templateID string) (*models.Document, error) {
	doc := &models.Document{
		ID:         uuid.NewString(),
		Title:      title,
		ClientID:   clientID,
		ClientName: clientName,
		TemplateID: templateID,
		Kind:       models.KindGeneral,
		Content:    content,
		Status:     models.StatusDraft,
		CreatedAt:  s.source.Now(),
	}

	if err := s.Save(ctx, doc, models.ActorConsultant); err != nil {
		return nil, err
	}
	return doc, nil
}

// UpdateDraft saves title and content edits to a draft. Documents past the
// draft state reject the edit: signed with ErrDocumentSigned, pending with
// ErrNotEditable.
func (s *DocumentService) UpdateDraft(ctx context.Context, id, title, content, actor string) (*models.Document, error) {
	doc, err := s.docs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.Signed() {
		return nil, ErrDocumentSigned
	}
	if doc.Status != models.StatusDraft {
		return nil, ErrNotEditable
	}

	doc.Title = title
	doc.Content = content
	if err := s.Save(ctx, doc, actor); err != nil {
		return nil, err
	}
	return doc, nil
}

// Save persists a document, enforcing the immutability invariants, and
// records a DOC_SAVE audit entry attributed to the given actor.
//
// Guards, checked against the stored record:
//   - a stored signed document rejects every save with ErrDocumentSigned
//     (the transition INTO signed passes, because the stored record is
//     still pending at that moment);
//   - the client binding cannot change (ErrClientReassigned).
//
// Failed guards never reach the audit trail.
func (s *DocumentService) Save(ctx context.Context, doc *models.Document, actor string) error {
	existing, err := s.docs.FindByID(ctx, doc.ID)
	switch {
	case err == nil:
		if existing.Signed() {
			return ErrDocumentSigned
		}
		// Finalize binds an unassigned draft; after that the binding is fixed
		if existing.ClientID != "" && existing.ClientID != doc.ClientID {
			return ErrClientReassigned
		}
	case errors.Is(err, repository.ErrNotFound):
		// New document
	default:
		return fmt.Errorf("document lookup: %w", err)
	}

	if err := s.docs.Save(ctx, doc); err != nil {
		return fmt.Errorf("document save: %w", err)
	}

	s.audit.Record(ctx, models.ActionDocSave,
		fmt.Sprintf("Documento %q salvo/atualizado.", doc.Title), actor)
	return nil
}

// Finalize renders a draft against its client and moves it to
// pending_signature: the content tokens are resolved, the client binding is
// stamped, and from here on only a signature changes the document.
//
// This is the only legal draft → pending_signature transition. Any other
// starting state is rejected with ErrNotDraft; in particular a signed
// document never goes back to pending. Rendering already-resolved content is
// a no-op, so finalizing a draft authored from a pre-rendered template is
// safe.
func (s *DocumentService) Finalize(ctx context.Context, id string, client *models.Client, actor string) (*models.Document, error) {
	doc, err := s.docs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if doc.Status != models.StatusDraft {
		return nil, ErrNotDraft
	}

	doc.Content = s.engine.Render(doc.Content, *client)
	doc.ClientID = client.ID
	doc.ClientName = client.MainCompany.LegalName
	doc.Status = models.StatusPendingSignature
	if err := s.Save(ctx, doc, actor); err != nil {
		return nil, err
	}
	return doc, nil
}
