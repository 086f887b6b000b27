package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jornalismobataguassu-droid/Consultoria/internal/models"
	"github.com/jornalismobataguassu-droid/Consultoria/internal/repository"
)

var auditColumns = []string{"id", "logged_at", "action", "details", "actor", "ip"}

// TestAuditRepository_Append tests inserting one audit trail entry.
func TestAuditRepository_Append(t *testing.T) {
	loggedAt := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	entry := &models.AuditLogEntry{
		ID:        "a1",
		Timestamp: loggedAt,
		Action:    models.ActionSignature,
		Details:   "Documento \"NDA\" assinado por Maria Souza.",
		User:      models.ActorClient,
		IP:        "192.168.1.7",
	}

	mock.ExpectExec("INSERT INTO audit_log").
		WithArgs("a1", loggedAt, models.ActionSignature, entry.Details, models.ActorClient, "192.168.1.7").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repo := repository.NewAuditRepository(mock)

	err = repo.Append(context.Background(), entry)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestAuditRepository_ListRecent tests retrieval by insertion sequence,
// newest first. The informational timestamp never drives the ordering.
func TestAuditRepository_ListRecent(t *testing.T) {
	loggedAt := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT(.+)FROM audit_log(.+)ORDER BY seq DESC").
		WithArgs(50).
		WillReturnRows(pgxmock.NewRows(auditColumns).
			AddRow("a2", loggedAt, models.ActionNDASigned, "NDA assinado pelo cliente Nascimento & Cia Ltda.", models.ActorClient, "192.168.1.8").
			AddRow("a1", loggedAt, models.ActionDocSave, "Documento \"NDA\" salvo/atualizado.", models.ActorSystem, "192.168.1.7"))

	repo := repository.NewAuditRepository(mock)

	entries, err := repo.ListRecent(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a2", entries[0].ID)
	assert.Equal(t, models.ActionNDASigned, entries[0].Action)
	assert.NoError(t, mock.ExpectationsWereMet())
}
