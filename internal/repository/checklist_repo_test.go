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

var checklistColumns = []string{"id", "client_id", "last_updated", "updated_by", "data"}

// TestChecklistRepository_FindByClient tests loading a checklist and
// decoding the nested JSON document.
func TestChecklistRepository_FindByClient(t *testing.T) {
	updatedAt := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT(.+)FROM checklists WHERE client_id").
		WithArgs("1").
		WillReturnRows(pgxmock.NewRows(checklistColumns).AddRow(
			"ck1", "1", updatedAt, models.ActorConsultant,
			[]byte(`{"possui_cipa":true,"funcionarios":42}`),
		))

	repo := repository.NewChecklistRepository(mock)

	checklist, err := repo.FindByClient(context.Background(), "1")
	require.NoError(t, err)

	assert.Equal(t, "ck1", checklist.ID)
	assert.Equal(t, true, checklist.Data["possui_cipa"])
	assert.Equal(t, float64(42), checklist.Data["funcionarios"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestChecklistRepository_FindByClient_NotFound tests the miss sentinel the
// service layer turns into a fresh empty checklist.
func TestChecklistRepository_FindByClient_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT(.+)FROM checklists WHERE client_id").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(checklistColumns))

	repo := repository.NewChecklistRepository(mock)

	_, err = repo.FindByClient(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestChecklistRepository_Save tests the wholesale replace keyed by client.
func TestChecklistRepository_Save(t *testing.T) {
	updatedAt := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	checklist := &models.DiagnosticChecklist{
		ID:          "ck1",
		ClientID:    "1",
		LastUpdated: updatedAt,
		UpdatedBy:   models.ActorConsultant,
		Data:        map[string]any{"possui_cipa": true},
	}

	mock.ExpectExec("INSERT INTO checklists").
		WithArgs("ck1", "1", updatedAt, models.ActorConsultant, []byte(`{"possui_cipa":true}`)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repo := repository.NewChecklistRepository(mock)

	err = repo.Save(context.Background(), checklist)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
