// Package services_test provides unit tests for the services layer against
// in-memory store fakes, without a database.
package services_test

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jornalismobataguassu-droid/Consultoria/internal/config"
	"github.com/jornalismobataguassu-droid/Consultoria/internal/models"
	"github.com/jornalismobataguassu-droid/Consultoria/internal/repository"
	"github.com/jornalismobataguassu-droid/Consultoria/internal/security"
	"github.com/jornalismobataguassu-droid/Consultoria/internal/services"
	"github.com/jornalismobataguassu-droid/Consultoria/internal/templates"
)

// testProfile mirrors the shipped consultancy profile.
var testProfile = config.ConsultancyProfile{
	Name:       "Borges Consultoria",
	Consultant: "Danieli Borges de Lima",
	TaxID:      "012.926.211-09",
	Address:    "Rua Nova Andradina, 683 – Bataguassu/MS",
	Phone:      "(67) 92001-5785",
	Email:      "contato@borgesconsultoria.com.br",
}

// fixedSource is a deterministic attestation.Source: pinned clock, fixed
// origins, sequential tokens.
type fixedSource struct {
	now    time.Time
	tokens int
}

func newFixedSource() *fixedSource {
	return &fixedSource{now: time.Date(2026, time.January, 2, 10, 0, 0, 0, time.UTC)}
}

func (f *fixedSource) Now() time.Time          { return f.now }
func (f *fixedSource) SignatureOrigin() string { return "189.32.10.20" }
func (f *fixedSource) AuditOrigin() string     { return "192.168.1.7" }

func (f *fixedSource) Token(length int) string {
	f.tokens++
	tok := fmt.Sprintf("TOKEN%011d", f.tokens)
	return tok[:length]
}

// memClients is an in-memory services.ClientStore.
type memClients struct {
	byID map[string]*models.Client
}

func newMemClients(clients ...*models.Client) *memClients {
	m := &memClients{byID: map[string]*models.Client{}}
	for _, c := range clients {
		cp := *c
		m.byID[c.ID] = &cp
	}
	return m
}

func (m *memClients) FindByID(_ context.Context, id string) (*models.Client, error) {
	c, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memClients) FindByTaxID(_ context.Context, digits string) (*models.Client, error) {
	for _, c := range m.byID {
		if security.Digits(c.MainCompany.TaxID) == digits {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memClients) List(_ context.Context) ([]models.Client, error) {
	out := make([]models.Client, 0, len(m.byID))
	for _, c := range m.byID {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memClients) Save(_ context.Context, client *models.Client) error {
	cp := *client
	m.byID[client.ID] = &cp
	return nil
}

// memTemplates is an in-memory services.TemplateStore.
type memTemplates struct {
	byID map[string]*models.Template
}

func newMemTemplates(tpls ...*models.Template) *memTemplates {
	m := &memTemplates{byID: map[string]*models.Template{}}
	for _, tpl := range tpls {
		cp := *tpl
		m.byID[tpl.ID] = &cp
	}
	return m
}

func (m *memTemplates) FindByID(_ context.Context, id string) (*models.Template, error) {
	tpl, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *tpl
	return &cp, nil
}

func (m *memTemplates) FindByCategory(_ context.Context, category models.TemplateCategory) (*models.Template, error) {
	var ids []string
	for id, tpl := range m.byID {
		if tpl.Category == category {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, repository.ErrNotFound
	}
	sort.Strings(ids)
	cp := *m.byID[ids[0]]
	return &cp, nil
}

func (m *memTemplates) List(_ context.Context) ([]models.Template, error) {
	out := make([]models.Template, 0, len(m.byID))
	for _, tpl := range m.byID {
		out = append(out, *tpl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memTemplates) Save(_ context.Context, tpl *models.Template) error {
	cp := *tpl
	m.byID[tpl.ID] = &cp
	return nil
}

// memDocs is an in-memory services.DocumentStore preserving insertion order.
type memDocs struct {
	byID  map[string]*models.Document
	order []string
}

func newMemDocs() *memDocs {
	return &memDocs{byID: map[string]*models.Document{}}
}

func (m *memDocs) FindByID(_ context.Context, id string) (*models.Document, error) {
	doc, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *doc
	return &cp, nil
}

func (m *memDocs) FindByClientAndKind(_ context.Context, clientID string, kind models.DocumentKind) (*models.Document, error) {
	for _, id := range m.order {
		doc := m.byID[id]
		if doc.ClientID == clientID && doc.Kind == kind {
			cp := *doc
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memDocs) List(_ context.Context) ([]models.Document, error) {
	out := make([]models.Document, 0, len(m.order))
	for i := len(m.order) - 1; i >= 0; i-- {
		out = append(out, *m.byID[m.order[i]])
	}
	return out, nil
}

func (m *memDocs) ListByClient(_ context.Context, clientID string) ([]models.Document, error) {
	var out []models.Document
	for i := len(m.order) - 1; i >= 0; i-- {
		if doc := m.byID[m.order[i]]; doc.ClientID == clientID {
			out = append(out, *doc)
		}
	}
	return out, nil
}

func (m *memDocs) Save(_ context.Context, doc *models.Document) error {
	if _, exists := m.byID[doc.ID]; !exists {
		m.order = append(m.order, doc.ID)
	}
	cp := *doc
	m.byID[doc.ID] = &cp
	return nil
}

// memAudit is an in-memory services.AuditStore. failNext makes the next
// Append fail, to verify audit failures never fail business operations.
type memAudit struct {
	entries  []models.AuditLogEntry
	failNext error
}

func newMemAudit() *memAudit { return &memAudit{} }

func (m *memAudit) Append(_ context.Context, entry *models.AuditLogEntry) error {
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return err
	}
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memAudit) ListRecent(_ context.Context, limit int) ([]models.AuditLogEntry, error) {
	var out []models.AuditLogEntry
	for i := len(m.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.entries[i])
	}
	return out, nil
}

// actions returns the recorded action tags in insertion order.
func (m *memAudit) actions() []string {
	out := make([]string, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Action
	}
	return out
}

// memChecklists is an in-memory services.ChecklistStore.
type memChecklists struct {
	byClient map[string]*models.DiagnosticChecklist
}

func newMemChecklists() *memChecklists {
	return &memChecklists{byClient: map[string]*models.DiagnosticChecklist{}}
}

func (m *memChecklists) FindByClient(_ context.Context, clientID string) (*models.DiagnosticChecklist, error) {
	cl, ok := m.byClient[clientID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *cl
	return &cp, nil
}

func (m *memChecklists) Save(_ context.Context, checklist *models.DiagnosticChecklist) error {
	cp := *checklist
	m.byClient[checklist.ClientID] = &cp
	return nil
}

// portal bundles fully wired services over fakes for tests.
type portal struct {
	source     *fixedSource
	clients    *memClients
	tpls       *memTemplates
	docs       *memDocs
	auditStore *memAudit
	checklists *memChecklists

	audit      *services.AuditService
	documents  *services.DocumentService
	signatures *services.SignatureService
	onboarding *services.OnboardingService
	clientSvc  *services.ClientService
	checklist  *services.ChecklistService
	auth       *services.AuthService
}

// ndaTemplate is a compact template exercising the main tokens.
const ndaTemplateContent = `<h1>TERMO DE CONFIDENCIALIDADE</h1>
<p>{{CONSULTORA_NOME}}, CPF {{CONSULTORA_CPF}}, e {{CLIENTE_RAZAO_SOCIAL}},
CNPJ {{CLIENTE_CNPJ}}, representada por {{CLIENTE_REPRESENTANTE_NOME}}.</p>
<p>Foro: {{CLIENTE_CIDADE_FORO}}. Outras empresas: {{CLIENTE_LISTA_OUTRAS_EMPRESAS}}.</p>
<p>{{CLIENTE_CIDADE}}, {{DATA_EXTENSO}}.</p>`

const proposalTemplateContent = `<h1>Proposta de Valor</h1>
<p>Para {{CLIENTE_RAZAO_SOCIAL}} em {{DATA_EXTENSO}}.</p>`

func newPortal(clients ...*models.Client) *portal {
	p := &portal{
		source:     newFixedSource(),
		clients:    newMemClients(clients...),
		docs:       newMemDocs(),
		auditStore: newMemAudit(),
		checklists: newMemChecklists(),
		tpls: newMemTemplates(
			&models.Template{ID: "t1", Title: "NDA Padrão", Category: models.CategoryNDA, Content: ndaTemplateContent},
			&models.Template{ID: "t2", Title: "Proposta", Category: models.CategoryProposal, Content: proposalTemplateContent},
		),
	}

	validate := security.NewValidationService(security.DefaultSecurityConfig())
	engine := templates.NewEngineWithClock(testProfile, p.source.Now)
	verifier := services.NewVerifier("plaintext")

	p.audit = services.NewAuditService(p.auditStore, p.source, security.NewLogger())
	p.documents = services.NewDocumentService(p.docs, p.audit, p.source, engine)
	p.signatures = services.NewSignatureService(p.documents, p.audit, p.source, validate)
	p.onboarding = services.NewOnboardingService(p.documents, p.tpls, p.signatures, p.audit, engine, p.source, testProfile)
	p.clientSvc = services.NewClientService(p.clients, p.audit, verifier)
	p.checklist = services.NewChecklistService(p.checklists, p.audit, p.source)
	p.auth = services.NewAuthService(p.clients, verifier, "01292621109")

	return p
}

// sampleClient returns the canonical test client group.
func sampleClient() *models.Client {
	return &models.Client{
		ID:       "1",
		Password: "478431",
		MainCompany: models.Company{
			ID:             "c1",
			LegalName:      "Nascimento & Cia Ltda",
			TaxID:          "47.843.155/0001-53",
			Address:        "Av. Brasil, 100",
			City:           "Bataguassu",
			Region:         "MS",
			IsHeadquarters: true,
		},
		LegalRepresentative: models.LegalRepresentative{
			Name:  "João Nascimento",
			TaxID: "123.456.789-00",
			Role:  "Sócio Administrador",
		},
		ContactEmail:     "joao@nascimento.com.br",
		VenueCity:        "Bataguassu/MS",
		Status:           models.ClientActive,
		PresentationHTML: "<h1>Bem-vindo</h1>",
	}
}
