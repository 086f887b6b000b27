package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jornalismobataguassu-droid/Consultoria/internal/database"
	"github.com/jornalismobataguassu-droid/Consultoria/internal/models"
)

// TemplateRepository handles document-template persistence. Templates are
// immutable during rendering; Save is only reached from the consultant's
// template editor.
type TemplateRepository struct {
	db database.DBInterface
}

// NewTemplateRepository creates a TemplateRepository over the given database.
func NewTemplateRepository(db database.DBInterface) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// FindByID retrieves a template by id.
func (r *TemplateRepository) FindByID(ctx context.Context, id string) (*models.Template, error) {
	query := `SELECT id, title, category, content, last_modified FROM templates WHERE id = $1`
	return r.scanTemplate(r.db.QueryRow(ctx, query, id))
}

// FindByCategory retrieves the first template of a category. The NDA gate
// uses it to locate the confidentiality-agreement source text.
func (r *TemplateRepository) FindByCategory(ctx context.Context, category models.TemplateCategory) (*models.Template, error) {
	query := `SELECT id, title, category, content, last_modified
        FROM templates WHERE category = $1 ORDER BY id LIMIT 1`
	return r.scanTemplate(r.db.QueryRow(ctx, query, category))
}

// List retrieves all templates ordered by title.
func (r *TemplateRepository) List(ctx context.Context) ([]models.Template, error) {
	query := `SELECT id, title, category, content, last_modified FROM templates ORDER BY title`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []models.Template
	for rows.Next() {
		var t models.Template
		if err := rows.Scan(&t.ID, &t.Title, &t.Category, &t.Content, &t.LastModified); err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

// Save upserts a template by id.
func (r *TemplateRepository) Save(ctx context.Context, tpl *models.Template) error {
	query := `
        INSERT INTO templates (id, title, category, content, last_modified)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (id) DO UPDATE SET
            title = EXCLUDED.title,
            category = EXCLUDED.category,
            content = EXCLUDED.content,
            last_modified = EXCLUDED.last_modified
    `

	_, err := r.db.Exec(ctx, query, tpl.ID, tpl.Title, tpl.Category, tpl.Content, tpl.LastModified)
	if err != nil {
		return fmt.Errorf("failed to save template: %w", err)
	}
	return nil
}

func (r *TemplateRepository) scanTemplate(row pgx.Row) (*models.Template, error) {
	var t models.Template
	err := row.Scan(&t.ID, &t.Title, &t.Category, &t.Content, &t.LastModified)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}
