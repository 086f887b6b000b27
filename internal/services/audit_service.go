// This file implements the business audit trail: an append-only record of
// every mutating operation, displayed newest-first in the consultant's
// activity view.
package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/jornalismobataguassu-droid/Consultoria/internal/attestation"
	"github.com/jornalismobataguassu-droid/Consultoria/internal/models"
	"github.com/jornalismobataguassu-droid/Consultoria/internal/security"
)

// DefaultAuditLimit is how many entries the activity view shows.
const DefaultAuditLimit = 50

// AuditService records and lists audit trail entries.
//
// Recording never fails the business operation it documents: append errors
// are logged to the operational log and swallowed. Entries are immutable
// once written; there is no update or delete.
type AuditService struct {
	store  AuditStore
	source attestation.Source
	logger *security.Logger
}

// NewAuditService creates an AuditService.
func NewAuditService(store AuditStore, source attestation.Source, logger *security.Logger) *AuditService {
	return &AuditService{
		store:  store,
		source: source,
		logger: logger,
	}
}

// Record appends one entry to the audit trail. An empty actor defaults to
// the consultant, matching how the portal attributes unattributed actions.
// The origin marker is synthesized by the attestation source.
func (s *AuditService) Record(ctx context.Context, action, details, actor string) {
	if actor == "" {
		actor = models.ActorConsultant
	}

	entry := &models.AuditLogEntry{
		ID:        uuid.NewString(),
		Timestamp: s.source.Now(),
		Action:    action,
		Details:   details,
		User:      actor,
		IP:        s.source.AuditOrigin(),
	}

	if err := s.store.Append(ctx, entry); err != nil {
		s.logger.Error("audit trail append failed", err)
	}
}

// Recent returns up to limit entries, newest first by insertion order. A
// non-positive limit uses DefaultAuditLimit.
func (s *AuditService) Recent(ctx context.Context, limit int) ([]models.AuditLogEntry, error) {
	if limit <= 0 {
		limit = DefaultAuditLimit
	}
	return s.store.ListRecent(ctx, limit)
}
