// Package services provides the business logic layer for the consulting
// portal: authentication, document lifecycle, signature capture, client
// onboarding and the audit trail. Services depend on narrow store
// interfaces so tests can substitute in-memory fakes and repository tests
// can run against pgxmock.
package services

import (
	"context"

	"github.com/jornalismobataguassu-droid/Consultoria/internal/models"
)

// ClientStore is the persistence surface the services need for clients.
// Implemented by repository.ClientRepository.
type ClientStore interface {
	FindByID(ctx context.Context, id string) (*models.Client, error)
	FindByTaxID(ctx context.Context, digits string) (*models.Client, error)
	List(ctx context.Context) ([]models.Client, error)
	Save(ctx context.Context, client *models.Client) error
}

// TemplateStore is the persistence surface for document templates.
// Implemented by repository.TemplateRepository.
type TemplateStore interface {
	FindByID(ctx context.Context, id string) (*models.Template, error)
	FindByCategory(ctx context.Context, category models.TemplateCategory) (*models.Template, error)
	List(ctx context.Context) ([]models.Template, error)
	Save(ctx context.Context, tpl *models.Template) error
}

// DocumentStore is the persistence surface for documents. There is
// deliberately no delete: documents are never destroyed.
// Implemented by repository.DocumentRepository.
type DocumentStore interface {
	FindByID(ctx context.Context, id string) (*models.Document, error)
	FindByClientAndKind(ctx context.Context, clientID string, kind models.DocumentKind) (*models.Document, error)
	List(ctx context.Context) ([]models.Document, error)
	ListByClient(ctx context.Context, clientID string) ([]models.Document, error)
	Save(ctx context.Context, doc *models.Document) error
}

// AuditStore is the persistence surface for the append-only audit trail.
// Implemented by repository.AuditRepository.
type AuditStore interface {
	Append(ctx context.Context, entry *models.AuditLogEntry) error
	ListRecent(ctx context.Context, limit int) ([]models.AuditLogEntry, error)
}

// ChecklistStore is the persistence surface for diagnostic checklists.
// Implemented by repository.ChecklistRepository.
type ChecklistStore interface {
	FindByClient(ctx context.Context, clientID string) (*models.DiagnosticChecklist, error)
	Save(ctx context.Context, checklist *models.DiagnosticChecklist) error
}
