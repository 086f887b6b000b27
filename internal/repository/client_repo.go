// Package repository provides the data access layer for the portal. Each
// repository owns one persistence collection and is constructed over an
// injected database.DBInterface so tests can substitute pgxmock.
//
// Save semantics across the package are whole-record replace-or-append:
// every mutation is an upsert keyed by id, never a partial update. The
// client-group save spans several statements and runs in a transaction.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jornalismobataguassu-droid/Consultoria/internal/database"
	"github.com/jornalismobataguassu-droid/Consultoria/internal/models"
)

// ErrNotFound is returned by lookup methods when no record matches. Callers
// that treat lookup misses as "nothing to do" test for it with errors.Is.
var ErrNotFound = errors.New("record not found")

const clientColumns = `id, password, other_group_companies, rep_name, rep_cpf, rep_role,
       contact_email, contact_phone, venue_city, status, created_at, presentation_html`

// ClientRepository handles client-group persistence: the client record plus
// its headquarters and subsidiary companies.
type ClientRepository struct {
	db database.DBInterface
}

// NewClientRepository creates a ClientRepository over the given database.
func NewClientRepository(db database.DBInterface) *ClientRepository {
	return &ClientRepository{db: db}
}

// FindByID retrieves a client with its full company group.
func (r *ClientRepository) FindByID(ctx context.Context, id string) (*models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`

	client, err := r.scanClient(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadCompanies(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

// FindByTaxID retrieves the client whose headquarters CNPJ matches the given
// digits-only tax id. This is the authentication identity lookup.
func (r *ClientRepository) FindByTaxID(ctx context.Context, digits string) (*models.Client, error) {
	query := `SELECT ` + clientColumns + `
        FROM clients
        WHERE id = (
            SELECT client_id FROM companies
            WHERE is_headquarters AND regexp_replace(cnpj, '[^0-9]', '', 'g') = $1
            LIMIT 1
        )`

	client, err := r.scanClient(r.db.QueryRow(ctx, query, digits))
	if err != nil {
		return nil, err
	}
	if err := r.loadCompanies(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

// List retrieves all clients with their company groups, newest first.
func (r *ClientRepository) List(ctx context.Context) ([]models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []models.Client
	for rows.Next() {
		client, err := r.scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, *client)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range clients {
		if err := r.loadCompanies(ctx, &clients[i]); err != nil {
			return nil, err
		}
	}
	return clients, nil
}

// Save upserts the client record and replaces its company group wholesale.
// The companies rows are deleted and re-inserted inside one transaction so
// the stored group always mirrors the submitted record exactly; a failure
// anywhere in the sequence leaves the previous group intact.
func (r *ClientRepository) Save(ctx context.Context, client *models.Client) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin client save: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
        INSERT INTO clients (id, password, other_group_companies, rep_name, rep_cpf, rep_role,
                             contact_email, contact_phone, venue_city, status, created_at, presentation_html)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        ON CONFLICT (id) DO UPDATE SET
            password = EXCLUDED.password,
            other_group_companies = EXCLUDED.other_group_companies,
            rep_name = EXCLUDED.rep_name,
            rep_cpf = EXCLUDED.rep_cpf,
            rep_role = EXCLUDED.rep_role,
            contact_email = EXCLUDED.contact_email,
            contact_phone = EXCLUDED.contact_phone,
            venue_city = EXCLUDED.venue_city,
            status = EXCLUDED.status,
            presentation_html = EXCLUDED.presentation_html
    `

	_, err = tx.Exec(ctx, query,
		client.ID, client.Password, client.OtherGroupCompanies,
		client.LegalRepresentative.Name, client.LegalRepresentative.TaxID, client.LegalRepresentative.Role,
		client.ContactEmail, client.ContactPhone, client.VenueCity,
		client.Status, client.CreatedAt, client.PresentationHTML,
	)
	if err != nil {
		return fmt.Errorf("failed to save client: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM companies WHERE client_id = $1`, client.ID); err != nil {
		return fmt.Errorf("failed to replace company group: %w", err)
	}

	companies := append([]models.Company{client.MainCompany}, client.Subsidiaries...)
	for _, co := range companies {
		_, err := tx.Exec(ctx, `
            INSERT INTO companies (id, client_id, legal_name, cnpj, address, city, region, is_headquarters, parent_id)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			co.ID, client.ID, co.LegalName, co.TaxID, co.Address, co.City, co.Region,
			co.IsHeadquarters, co.ParentID,
		)
		if err != nil {
			return fmt.Errorf("failed to save company %s: %w", co.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit client save: %w", err)
	}
	return nil
}

// scanClient reads one clients row. Works for both QueryRow and Query rows.
func (r *ClientRepository) scanClient(row pgx.Row) (*models.Client, error) {
	var c models.Client
	err := row.Scan(
		&c.ID, &c.Password, &c.OtherGroupCompanies,
		&c.LegalRepresentative.Name, &c.LegalRepresentative.TaxID, &c.LegalRepresentative.Role,
		&c.ContactEmail, &c.ContactPhone, &c.VenueCity,
		&c.Status, &c.CreatedAt, &c.PresentationHTML,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// loadCompanies fills MainCompany and Subsidiaries. Headquarters first so
// the main company is deterministic when scanning.
func (r *ClientRepository) loadCompanies(ctx context.Context, client *models.Client) error {
	query := `
        SELECT id, legal_name, cnpj, address, city, region, is_headquarters, parent_id
        FROM companies
        WHERE client_id = $1
        ORDER BY is_headquarters DESC, id
    `

	rows, err := r.db.Query(ctx, query, client.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	client.Subsidiaries = nil
	for rows.Next() {
		var co models.Company
		if err := rows.Scan(&co.ID, &co.LegalName, &co.TaxID, &co.Address, &co.City,
			&co.Region, &co.IsHeadquarters, &co.ParentID); err != nil {
			return err
		}
		if co.IsHeadquarters {
			client.MainCompany = co
		} else {
			client.Subsidiaries = append(client.Subsidiaries, co)
		}
	}
	return rows.Err()
}
