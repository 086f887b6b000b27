package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jornalismobataguassu-droid/Consultoria/internal/database"
	"github.com/jornalismobataguassu-droid/Consultoria/internal/models"
)

// ChecklistRepository handles the per-client diagnostic checklist: one row
// per client, replaced wholesale on every save.
type ChecklistRepository struct {
	db database.DBInterface
}

// NewChecklistRepository creates a ChecklistRepository over the given database.
func NewChecklistRepository(db database.DBInterface) *ChecklistRepository {
	return &ChecklistRepository{db: db}
}

// FindByClient retrieves the checklist for a client.
func (r *ChecklistRepository) FindByClient(ctx context.Context, clientID string) (*models.DiagnosticChecklist, error) {
	query := `SELECT id, client_id, last_updated, updated_by, data FROM checklists WHERE client_id = $1`

	var c models.DiagnosticChecklist
	var raw []byte
	err := r.db.QueryRow(ctx, query, clientID).Scan(&c.ID, &c.ClientID, &c.LastUpdated, &c.UpdatedBy, &raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(raw, &c.Data); err != nil {
		return nil, fmt.Errorf("failed to decode checklist data: %w", err)
	}
	return &c, nil
}

// Save upserts the checklist, keyed by client: the nested data document is
// replaced in full.
func (r *ChecklistRepository) Save(ctx context.Context, checklist *models.DiagnosticChecklist) error {
	raw, err := json.Marshal(checklist.Data)
	if err != nil {
		return fmt.Errorf("failed to encode checklist data: %w", err)
	}

	query := `
        INSERT INTO checklists (id, client_id, last_updated, updated_by, data)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (client_id) DO UPDATE SET
            last_updated = EXCLUDED.last_updated,
            updated_by = EXCLUDED.updated_by,
            data = EXCLUDED.data
    `

	if _, err := r.db.Exec(ctx, query,
		checklist.ID, checklist.ClientID, checklist.LastUpdated, checklist.UpdatedBy, raw,
	); err != nil {
		return fmt.Errorf("failed to save checklist: %w", err)
	}
	return nil
}
