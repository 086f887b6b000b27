package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jornalismobataguassu-droid/Consultoria/internal/database"
	"github.com/jornalismobataguassu-droid/Consultoria/internal/models"
)

const documentColumns = `id, title, client_id, client_name, template_id, kind, content,
       status, created_at, signed_at, signed_by, signed_ip, signature_hash`

// DocumentRepository handles document persistence. Documents are never
// deleted; every write is an upsert of the whole record keyed by id.
type DocumentRepository struct {
	db database.DBInterface
}

// NewDocumentRepository creates a DocumentRepository over the given database.
func NewDocumentRepository(db database.DBInterface) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// FindByID retrieves a document by id.
func (r *DocumentRepository) FindByID(ctx context.Context, id string) (*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	return r.scanDocument(r.db.QueryRow(ctx, query, id))
}

// FindByClientAndKind retrieves a client's document of the given kind. The
// onboarding gate keys NDA and proposal idempotence on this lookup.
func (r *DocumentRepository) FindByClientAndKind(ctx context.Context, clientID string, kind models.DocumentKind) (*models.Document, error) {
	query := `SELECT ` + documentColumns + `
        FROM documents WHERE client_id = $1 AND kind = $2
        ORDER BY created_at LIMIT 1`
	return r.scanDocument(r.db.QueryRow(ctx, query, clientID, kind))
}

// List retrieves every document, newest first. Consultant view.
func (r *DocumentRepository) List(ctx context.Context) ([]models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(rows)
}

// ListByClient retrieves the documents belonging to one client, newest
// first. Client view: the role scoping is a read-time projection, documents
// of all clients share the same table.
func (r *DocumentRepository) ListByClient(ctx context.Context, clientID string) ([]models.Document, error) {
	query := `SELECT ` + documentColumns + `
        FROM documents WHERE client_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(rows)
}

// Save upserts a document by id: replaces in place when the id exists,
// appends otherwise.
func (r *DocumentRepository) Save(ctx context.Context, doc *models.Document) error {
	query := `
        INSERT INTO documents (id, title, client_id, client_name, template_id, kind, content,
                               status, created_at, signed_at, signed_by, signed_ip, signature_hash)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
        ON CONFLICT (id) DO UPDATE SET
            title = EXCLUDED.title,
            client_id = EXCLUDED.client_id,
            client_name = EXCLUDED.client_name,
            template_id = EXCLUDED.template_id,
            kind = EXCLUDED.kind,
            content = EXCLUDED.content,
            status = EXCLUDED.status,
            signed_at = EXCLUDED.signed_at,
            signed_by = EXCLUDED.signed_by,
            signed_ip = EXCLUDED.signed_ip,
            signature_hash = EXCLUDED.signature_hash
    `

	_, err := r.db.Exec(ctx, query,
		doc.ID, doc.Title, doc.ClientID, doc.ClientName, doc.TemplateID, doc.Kind, doc.Content,
		doc.Status, doc.CreatedAt, doc.SignedAt, doc.SignedBy, doc.SignedIP, doc.SignatureHash,
	)
	if err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) collect(rows pgx.Rows) ([]models.Document, error) {
	var docs []models.Document
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(
			&d.ID, &d.Title, &d.ClientID, &d.ClientName, &d.TemplateID, &d.Kind, &d.Content,
			&d.Status, &d.CreatedAt, &d.SignedAt, &d.SignedBy, &d.SignedIP, &d.SignatureHash,
		); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (r *DocumentRepository) scanDocument(row pgx.Row) (*models.Document, error) {
	var d models.Document
	err := row.Scan(
		&d.ID, &d.Title, &d.ClientID, &d.ClientName, &d.TemplateID, &d.Kind, &d.Content,
		&d.Status, &d.CreatedAt, &d.SignedAt, &d.SignedBy, &d.SignedIP, &d.SignatureHash,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}
