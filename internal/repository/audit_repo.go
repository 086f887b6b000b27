package repository

import (
	"context"
	"fmt"

	"github.com/jornalismobataguassu-droid/Consultoria/internal/database"
	"github.com/jornalismobataguassu-droid/Consultoria/internal/models"
)

// AuditRepository handles the append-only audit trail.
//
// Immutability Note: audit entries are never modified or removed once
// created; the table has no UPDATE or DELETE path in this codebase. Ordering
// is by insertion sequence (seq), newest first, never re-sorted by the
// informational timestamp.
type AuditRepository struct {
	db database.DBInterface
}

// NewAuditRepository creates an AuditRepository over the given database.
func NewAuditRepository(db database.DBInterface) *AuditRepository {
	return &AuditRepository{db: db}
}

// Append inserts one audit entry at the head of the trail.
func (r *AuditRepository) Append(ctx context.Context, entry *models.AuditLogEntry) error {
	query := `
        INSERT INTO audit_log (id, logged_at, action, details, actor, ip)
        VALUES ($1, $2, $3, $4, $5, $6)
    `

	_, err := r.db.Exec(ctx, query,
		entry.ID, entry.Timestamp, entry.Action, entry.Details, entry.User, entry.IP,
	)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

// ListRecent retrieves the newest entries, head of the trail first.
func (r *AuditRepository) ListRecent(ctx context.Context, limit int) ([]models.AuditLogEntry, error) {
	query := `
        SELECT id, logged_at, action, details, actor, ip
        FROM audit_log
        ORDER BY seq DESC
        LIMIT $1
    `

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.AuditLogEntry
	for rows.Next() {
		var e models.AuditLogEntry
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Action, &e.Details, &e.User, &e.IP); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
