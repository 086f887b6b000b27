// This file implements the diagnostic checklist: a free-form per-client
// questionnaire the consultant fills in during discovery. No state machine,
// wholesale upsert on every save.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jornalismobataguassu-droid/Consultoria/internal/attestation"
	"github.com/jornalismobataguassu-droid/Consultoria/internal/models"
	"github.com/jornalismobataguassu-droid/Consultoria/internal/repository"
)

// ChecklistService manages diagnostic checklists.
type ChecklistService struct {
	store  ChecklistStore
	audit  *AuditService
	source attestation.Source
}

// NewChecklistService creates a ChecklistService.
func NewChecklistService(store ChecklistStore, audit *AuditService, source attestation.Source) *ChecklistService {
	return &ChecklistService{
		store:  store,
		audit:  audit,
		source: source,
	}
}

// GetOrEmpty returns the client's checklist, or a fresh empty one when the
// client has never had one saved. The empty checklist is not persisted.
func (s *ChecklistService) GetOrEmpty(ctx context.Context, clientID string) (*models.DiagnosticChecklist, error) {
	checklist, err := s.store.FindByClient(ctx, clientID)
	if err == nil {
		return checklist, nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return &models.DiagnosticChecklist{
			ClientID: clientID,
			Data:     map[string]any{},
		}, nil
	}
	return nil, fmt.Errorf("checklist lookup: %w", err)
}

// Save upserts a checklist wholesale, stamping LastUpdated, and records a
// CHECKLIST_UPDATE audit entry attributed to UpdatedBy.
func (s *ChecklistService) Save(ctx context.Context, checklist *models.DiagnosticChecklist) error {
	if checklist.ID == "" {
		checklist.ID = uuid.NewString()
	}
	checklist.LastUpdated = s.source.Now()

	if err := s.store.Save(ctx, checklist); err != nil {
		return fmt.Errorf("checklist save: %w", err)
	}

	s.audit.Record(ctx, models.ActionChecklistUpdate,
		"Checklist de diagnóstico atualizado.", checklist.UpdatedBy)
	return nil
}
