// Package models defines the domain entities and data transfer objects for
// the consulting portal. It includes database models mapped to PostgreSQL
// tables, form DTOs for user input, and view models for template rendering.
package models

import "time"

// ============================================================================
// Domain Models (Database Entities)
// ============================================================================

// ClientStatus is the commercial relationship state of a client.
type ClientStatus string

const (
	ClientActive   ClientStatus = "active"
	ClientInactive ClientStatus = "inactive"
	ClientProspect ClientStatus = "prospect"
)

// Company is a legal entity belonging to a client group. A client's main
// company always has IsHeadquarters=true; subsidiaries reference the group
// through ClientID grouping. ParentID is informational and not validated.
//
// Database Table: companies
type Company struct {
	ID             string `db:"id"`
	LegalName      string `db:"legal_name"` // Razão social
	TaxID          string `db:"cnpj"`       // CNPJ, formatted
	Address        string `db:"address"`
	City           string `db:"city"`
	Region         string `db:"region"` // UF
	IsHeadquarters bool   `db:"is_headquarters"`
	ParentID       string `db:"parent_id"`
}

// LegalRepresentative identifies who signs on behalf of the client group.
type LegalRepresentative struct {
	Name  string `db:"rep_name"`
	TaxID string `db:"rep_cpf"` // CPF, formatted
	Role  string `db:"rep_role"`
}

// Client is one consulting client: exactly one per physical company group.
// The authentication identity key is the digits-only TaxID of MainCompany.
//
// Database Tables: clients + companies
// Security Note: Password is compared through a CredentialVerifier; the
// default scheme reproduces the portal's plain-text comparison.
type Client struct {
	ID                  string `db:"id"`
	Password            string `db:"password"`
	MainCompany         Company
	Subsidiaries        []Company
	OtherGroupCompanies string `db:"other_group_companies"` // Free text
	LegalRepresentative LegalRepresentative
	ContactEmail        string       `db:"contact_email"`
	ContactPhone        string       `db:"contact_phone"`
	VenueCity           string       `db:"venue_city"` // Cidade do foro
	Status              ClientStatus `db:"status"`
	CreatedAt           time.Time    `db:"created_at"`
	PresentationHTML    string       `db:"presentation_html"` // Value-proposition page
}

// TemplateCategory classifies document templates.
type TemplateCategory string

const (
	CategoryNDA       TemplateCategory = "nda"
	CategoryProposal  TemplateCategory = "proposal"
	CategoryChecklist TemplateCategory = "checklist"
	CategoryMinutes   TemplateCategory = "minutes"
	CategoryReport    TemplateCategory = "report"
	CategoryOther     TemplateCategory = "other"
)

// Template is placeholder-bearing document source text. A render never
// mutates the template.
//
// Database Table: templates
type Template struct {
	ID           string           `db:"id"`
	Title        string           `db:"title"`
	Category     TemplateCategory `db:"category"`
	Content      string           `db:"content"` // HTML with {{TOKEN}} placeholders
	LastModified time.Time        `db:"last_modified"`
}

// DocumentStatus is the lifecycle state of a document.
//
// Transitions: draft → pending_signature → signed. "archived" is declared in
// the model but no operation currently transitions into it; it is reserved.
type DocumentStatus string

const (
	StatusDraft            DocumentStatus = "draft"
	StatusPendingSignature DocumentStatus = "pending_signature"
	StatusSigned           DocumentStatus = "signed"
	StatusArchived         DocumentStatus = "archived"
)

// DocumentKind marks what a document is for. It exists so that
// one-per-client provisioning (NDA, proposal) keys on a typed field instead
// of matching title substrings.
type DocumentKind string

const (
	KindNDA      DocumentKind = "nda"
	KindProposal DocumentKind = "proposal"
	KindGeneral  DocumentKind = "general"
)

// Document is a rendered, client-bound instance of a template (or ad-hoc
// content) moving through the signature lifecycle.
//
// Invariants:
//   - SignedAt/SignedBy/SignedIP/SignatureHash are all-or-nothing: present
//     exactly when Status == signed.
//   - Content is append-only once signed; the attestation block is
//     concatenated, never replaces prior content.
//   - ClientID is immutable after creation.
//   - No delete operation exists for documents.
//
// Database Table: documents
type Document struct {
	ID            string         `db:"id"`
	Title         string         `db:"title"`
	ClientID      string         `db:"client_id"`
	ClientName    string         `db:"client_name"`
	TemplateID    string         `db:"template_id"`
	Kind          DocumentKind   `db:"kind"`
	Content       string         `db:"content"` // Rendered markup
	Status        DocumentStatus `db:"status"`
	CreatedAt     time.Time      `db:"created_at"`
	SignedAt      *time.Time     `db:"signed_at"`
	SignedBy      string         `db:"signed_by"`
	SignedIP      string         `db:"signed_ip"`      // Synthesized origin marker
	SignatureHash string         `db:"signature_hash"` // Attestation event token, not a digest
}

// Signed reports whether the document carries a completed signature.
func (d *Document) Signed() bool {
	return d.Status == StatusSigned
}

// AuditLogEntry is one immutable line of the append-only audit trail.
// Ordering is newest-first by insertion sequence, never re-sorted by
// timestamp.
//
// Database Table: audit_log
type AuditLogEntry struct {
	ID        string    `db:"id"`
	Timestamp time.Time `db:"logged_at"`
	Action    string    `db:"action"`  // Tag, e.g. DOC_SAVE, SIGNATURE
	Details   string    `db:"details"` // Human-readable description
	User      string    `db:"actor"`   // "Consultora", "Cliente" or "Sistema"
	IP        string    `db:"ip"`      // Synthesized origin marker
}

// Audit action tags. Every mutating operation emits exactly one of these per
// success; failed preconditions never log.
const (
	ActionDocSave         = "DOC_SAVE"
	ActionSignature       = "SIGNATURE"
	ActionNDASigned       = "NDA_SIGNED"
	ActionProposalGen     = "PROPOSAL_GEN"
	ActionClientUpdate    = "CLIENT_UPDATE"
	ActionChecklistUpdate = "CHECKLIST_UPDATE"
)

// Audit actor tags.
const (
	ActorConsultant = "Consultora"
	ActorClient     = "Cliente"
	ActorSystem     = "Sistema"
)

// DiagnosticChecklist is a per-client nested free-form questionnaire,
// upserted wholesale on every save. It carries no state machine.
//
// Database Table: checklists
type DiagnosticChecklist struct {
	ID          string         `db:"id"`
	ClientID    string         `db:"client_id"`
	LastUpdated time.Time      `db:"last_updated"`
	UpdatedBy   string         `db:"updated_by"`
	Data        map[string]any `db:"data"` // Stored as JSONB
}

// ============================================================================
// Data Transfer Objects (DTOs) - Form Input
// ============================================================================

// ConsultantLoginForm carries the consultant shared secret.
type ConsultantLoginForm struct {
	Secret string
}

// ClientLoginForm carries client credentials: the CNPJ is matched after
// digit-only normalization.
type ClientLoginForm struct {
	CNPJ     string
	Password string
}

// SignForm carries an electronic-signature submission.
type SignForm struct {
	DocumentID string
	SignerName string
}

// ============================================================================
// View Models - Template Rendering
// ============================================================================

// DocumentListView is a document row for the library listing.
type DocumentListView struct {
	Document
	StatusLabel string // Localized status ("Assinado", "Pendente Ass.", ...)
}

// StatusLabel returns the localized display label for a document status.
func StatusLabel(s DocumentStatus) string {
	switch s {
	case StatusSigned:
		return "Assinado"
	case StatusPendingSignature:
		return "Pendente Ass."
	case StatusArchived:
		return "Arquivado"
	default:
		return "Rascunho"
	}
}
