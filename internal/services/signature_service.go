// This file implements electronic signature capture. A signature stamps the
// document with the signer's name, the attestation timestamp, a synthesized
// origin marker and a high-entropy integrity token, then appends a rendered
// attestation block to the content. It never replaces prior content.
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/jornalismobataguassu-droid/Consultoria/internal/attestation"
	"github.com/jornalismobataguassu-droid/Consultoria/internal/models"
	"github.com/jornalismobataguassu-droid/Consultoria/internal/security"
)

// SignatureService captures electronic signatures on documents.
type SignatureService struct {
	docs     *DocumentService
	audit    *AuditService
	source   attestation.Source
	validate *security.ValidationService
}

// NewSignatureService creates a SignatureService.
func NewSignatureService(docs *DocumentService, audit *AuditService, source attestation.Source, validate *security.ValidationService) *SignatureService {
	return &SignatureService{
		docs:     docs,
		audit:    audit,
		source:   source,
		validate: validate,
	}
}

// Sign captures a signature on a document.
//
// Preconditions, checked in order:
//   - the trimmed signer name reaches the minimum length
//     (security.ErrSignerNameTooShort otherwise);
//   - the document is not already signed (ErrDocumentSigned; a signature is
//     captured at most once, re-signing is rejected).
//
// On success the four signature fields are set together, the status becomes
// signed, and one attestation block is appended to the content: the client
// NDA block for NDA documents, the generic footer otherwise. One SIGNATURE
// audit entry is recorded attributed to the given actor. Failed
// preconditions never log and never mutate the document.
func (s *SignatureService) Sign(ctx context.Context, docID, signerName, actor string) (*models.Document, error) {
	trimmed := strings.TrimSpace(signerName)
	if err := s.validate.ValidateSignerName(trimmed); err != nil {
		return nil, err
	}

	doc, err := s.docs.Get(ctx, docID)
	if err != nil {
		return nil, err
	}
	if doc.Signed() {
		return nil, ErrDocumentSigned
	}

	now := s.source.Now()
	block := attestation.Block{
		SignerName: trimmed,
		SignedAt:   now,
		Origin:     s.source.SignatureOrigin(),
		Token:      s.source.Token(attestation.TokenLength),
	}

	doc.SignedAt = &now
	doc.SignedBy = trimmed
	doc.SignedIP = block.Origin
	doc.SignatureHash = block.Token
	doc.Status = models.StatusSigned

	if doc.Kind == models.KindNDA {
		doc.Content += attestation.ClientBlock(block)
	} else {
		doc.Content += attestation.FooterBlock(block)
	}

	if err := s.docs.Save(ctx, doc, actor); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, models.ActionSignature,
		fmt.Sprintf("Documento %q assinado por %s.", doc.Title, trimmed), actor)
	return doc, nil
}
