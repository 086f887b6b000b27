// This file implements the client onboarding flow: the mandatory NDA gate
// and the value-proposition proposal generated after the client views their
// presentation.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jornalismobataguassu-droid/Consultoria/internal/attestation"
	"github.com/jornalismobataguassu-droid/Consultoria/internal/config"
	"github.com/jornalismobataguassu-droid/Consultoria/internal/models"
	"github.com/jornalismobataguassu-droid/Consultoria/internal/repository"
	"github.com/jornalismobataguassu-droid/Consultoria/internal/templates"
)

// Fixed titles of the provisioned onboarding documents.
const (
	NDATitle      = "Termo de Confidencialidade (NDA)"
	ProposalTitle = "Proposta de Valor - Parceria Estratégica"
)

// ErrNoTemplate is returned when onboarding needs a template category that
// has no template registered.
var ErrNoTemplate = errors.New("nenhum template cadastrado para a categoria")

// ErrNotClientDocument rejects a client acting on a document bound to
// another client.
var ErrNotClientDocument = errors.New("documento não pertence ao cliente")

// OnboardingService drives the client onboarding flow.
//
// Every client must sign an NDA before reaching the rest of the portal. The
// NDA is provisioned at most once per client, keyed on the document kind,
// and arrives pre-signed by the consultant. After the client signs and views
// their presentation, a proposal document is generated, also at most once.
type OnboardingService struct {
	docs       *DocumentService
	templates  TemplateStore
	signatures *SignatureService
	audit      *AuditService
	engine     *templates.Engine
	source     attestation.Source
	profile    config.ConsultancyProfile
}

// NewOnboardingService creates an OnboardingService.
func NewOnboardingService(
	docs *DocumentService,
	tpls TemplateStore,
	signatures *SignatureService,
	audit *AuditService,
	engine *templates.Engine,
	source attestation.Source,
	profile config.ConsultancyProfile,
) *OnboardingService {
	return &OnboardingService{
		docs:       docs,
		templates:  tpls,
		signatures: signatures,
		audit:      audit,
		engine:     engine,
		source:     source,
		profile:    profile,
	}
}

// GetOrProvisionNDA returns the client's NDA, creating it on first call.
//
// Idempotence keys on the document kind: if the client already has an NDA
// document, in any status, it is returned unchanged. Calling this twice
// never creates a second NDA and never resets an existing signature.
//
// A fresh NDA renders the registered NDA template against the client record,
// appends the consultant's pre-signed attestation block, and enters the
// pending_signature state awaiting the client's own signature.
func (s *OnboardingService) GetOrProvisionNDA(ctx context.Context, client *models.Client) (*models.Document, error) {
	existing, err := s.docs.GetByClientAndKind(ctx, client.ID, models.KindNDA)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("NDA lookup: %w", err)
	}

	tpl, err := s.templates.FindByCategory(ctx, models.CategoryNDA)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNoTemplate, models.CategoryNDA)
		}
		return nil, fmt.Errorf("NDA template: %w", err)
	}

	content := s.engine.Render(tpl.Content, *client)
	content += attestation.ConsultantBlock(attestation.Block{
		SignerName: s.profile.Consultant,
		SignerID:   s.profile.TaxID,
		SignedAt:   s.source.Now(),
		Origin:     attestation.ConsultantOrigin,
		Token:      s.source.Token(attestation.TokenLength),
	})

	doc := &models.Document{
		ID:         uuid.NewString(),
		Title:      NDATitle,
		ClientID:   client.ID,
		ClientName: client.MainCompany.LegalName,
		TemplateID: tpl.ID,
		Kind:       models.KindNDA,
		Content:    content,
		Status:     models.StatusPendingSignature,
		CreatedAt:  s.source.Now(),
	}

	if err := s.docs.Save(ctx, doc, models.ActorSystem); err != nil {
		return nil, err
	}
	return doc, nil
}

// SignNDA captures the client's signature on their NDA and releases the
// onboarding gate.
//
// The document must belong to the client and be their NDA; the signature
// itself goes through the regular signature preconditions. On success one
// NDA_SIGNED audit entry is recorded in addition to the SIGNATURE entry.
func (s *OnboardingService) SignNDA(ctx context.Context, client *models.Client, docID, signerName string) (*models.Document, error) {
	doc, err := s.docs.Get(ctx, docID)
	if err != nil {
		return nil, err
	}
	if doc.ClientID != client.ID || doc.Kind != models.KindNDA {
		return nil, ErrNotClientDocument
	}

	signed, err := s.signatures.Sign(ctx, docID, signerName, models.ActorClient)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, models.ActionNDASigned,
		fmt.Sprintf("NDA assinado pelo cliente %s.", client.MainCompany.LegalName),
		models.ActorClient)
	return signed, nil
}

// GenerateProposal creates the client's proposal document after they view
// their presentation.
//
// Rules:
//   - a client without presentation content gets no proposal; the call is a
//     no-op returning (nil, nil);
//   - at most one proposal per client, keyed on the document kind; a second
//     call returns the existing proposal unchanged;
//   - the proposal renders the registered proposal template and is created
//     already signed, attributed to the consultant, with the consultant's
//     fixed origin marker.
//
// The generation is recorded as PROPOSAL_GEN attributed to the system actor.
func (s *OnboardingService) GenerateProposal(ctx context.Context, client *models.Client) (*models.Document, error) {
	if strings.TrimSpace(client.PresentationHTML) == "" {
		return nil, nil
	}

	existing, err := s.docs.GetByClientAndKind(ctx, client.ID, models.KindProposal)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("proposal lookup: %w", err)
	}

	tpl, err := s.templates.FindByCategory(ctx, models.CategoryProposal)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNoTemplate, models.CategoryProposal)
		}
		return nil, fmt.Errorf("proposal template: %w", err)
	}

	now := s.source.Now()
	doc := &models.Document{
		ID:            uuid.NewString(),
		Title:         ProposalTitle,
		ClientID:      client.ID,
		ClientName:    client.MainCompany.LegalName,
		TemplateID:    tpl.ID,
		Kind:          models.KindProposal,
		Content:       s.engine.Render(tpl.Content, *client),
		Status:        models.StatusSigned,
		CreatedAt:     now,
		SignedAt:      &now,
		SignedBy:      s.profile.Consultant,
		SignedIP:      attestation.ConsultantOrigin,
		SignatureHash: s.source.Token(attestation.TokenLength),
	}

	if err := s.docs.Save(ctx, doc, models.ActorSystem); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, models.ActionProposalGen,
		fmt.Sprintf("Proposta gerada para %s.", client.MainCompany.LegalName),
		models.ActorSystem)
	return doc, nil
}
