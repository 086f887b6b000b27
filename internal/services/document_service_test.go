package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jornalismobataguassu-droid/Consultoria/internal/models"
	"github.com/jornalismobataguassu-droid/Consultoria/internal/services"
)

// TestCreateDraft verifies new documents start as general-kind drafts and
// the save is audited.
func TestCreateDraft(t *testing.T) {
	p := newPortal()
	ctx := context.Background()

	doc, err := p.documents.CreateDraft(ctx, "Ata de Reunião", "<p>conteúdo</p>", "1", "Nascimento & Cia Ltda", "")
	require.NoError(t, err)

	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, models.StatusDraft, doc.Status)
	assert.Equal(t, models.KindGeneral, doc.Kind)
	assert.Nil(t, doc.SignedAt)
	assert.Empty(t, doc.SignedBy)

	assert.Equal(t, []string{models.ActionDocSave}, p.auditStore.actions())
}

// TestSaveRejectsSignedDocument verifies the immutability guard: once a
// document is signed no save goes through, and the rejected save is not
// audited.
func TestSaveRejectsSignedDocument(t *testing.T) {
	p := newPortal()
	ctx := context.Background()

	doc, err := p.documents.CreateDraft(ctx, "Contrato", "<p>v1</p>", "1", "Nascimento & Cia Ltda", "")
	require.NoError(t, err)
	_, err = p.documents.Finalize(ctx, doc.ID, sampleClient(), models.ActorConsultant)
	require.NoError(t, err)
	_, err = p.signatures.Sign(ctx, doc.ID, "João Nascimento", models.ActorClient)
	require.NoError(t, err)

	auditedBefore := len(p.auditStore.entries)

	doc.Content = "<p>adulterado</p>"
	err = p.documents.Save(ctx, doc, models.ActorConsultant)
	assert.ErrorIs(t, err, services.ErrDocumentSigned)

	stored, err := p.documents.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.NotContains(t, stored.Content, "adulterado")
	assert.Len(t, p.auditStore.entries, auditedBefore, "failed guard must not log")
}

// TestUpdateDraft verifies the edit operation: drafts take title and content
// edits, anything past draft rejects them. A pending document keeps the
// content rendered at finalization, so an edit cannot put unresolved tokens
// back in front of the signer.
func TestUpdateDraft(t *testing.T) {
	p := newPortal()
	ctx := context.Background()
	client := sampleClient()

	doc, err := p.documents.CreateDraft(ctx, "Contrato",
		"<p>Contratante: {{CLIENTE_RAZAO_SOCIAL}}</p>", "", "", "")
	require.NoError(t, err)

	updated, err := p.documents.UpdateDraft(ctx, doc.ID, "Contrato v2",
		"<p>Objeto: consultoria. Contratante: {{CLIENTE_RAZAO_SOCIAL}}</p>", models.ActorConsultant)
	require.NoError(t, err)
	assert.Equal(t, "Contrato v2", updated.Title)
	assert.Contains(t, updated.Content, "Objeto: consultoria")

	_, err = p.documents.Finalize(ctx, doc.ID, client, models.ActorConsultant)
	require.NoError(t, err)

	// Pending: the rendered content is what gets signed, edits are rejected
	_, err = p.documents.UpdateDraft(ctx, doc.ID, "Contrato v3",
		"<p>Contratante: {{CLIENTE_RAZAO_SOCIAL}}</p>", models.ActorConsultant)
	assert.ErrorIs(t, err, services.ErrNotEditable)

	stored, err := p.documents.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Contrato v2", stored.Title)
	assert.NotContains(t, stored.Content, "{{")

	_, err = p.signatures.Sign(ctx, doc.ID, "João Nascimento", models.ActorClient)
	require.NoError(t, err)

	_, err = p.documents.UpdateDraft(ctx, doc.ID, "Contrato v4", "<p>x</p>", models.ActorConsultant)
	assert.ErrorIs(t, err, services.ErrDocumentSigned)
}

// TestSaveRejectsClientReassign verifies the client binding is immutable.
func TestSaveRejectsClientReassign(t *testing.T) {
	p := newPortal()
	ctx := context.Background()

	doc, err := p.documents.CreateDraft(ctx, "Contrato", "<p>v1</p>", "1", "Nascimento & Cia Ltda", "")
	require.NoError(t, err)

	doc.ClientID = "2"
	err = p.documents.Save(ctx, doc, models.ActorConsultant)
	assert.ErrorIs(t, err, services.ErrClientReassigned)
}

// TestFinalize verifies the draft → pending_signature transition: content
// tokens resolve against the client, the binding is stamped, and no other
// state can be finalized.
func TestFinalize(t *testing.T) {
	p := newPortal()
	ctx := context.Background()
	client := sampleClient()

	doc, err := p.documents.CreateDraft(ctx, "Contrato",
		"<p>Contratante: {{CLIENTE_RAZAO_SOCIAL}}</p>", "", "", "")
	require.NoError(t, err)

	finalized, err := p.documents.Finalize(ctx, doc.ID, client, models.ActorConsultant)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingSignature, finalized.Status)
	assert.Equal(t, client.ID, finalized.ClientID)
	assert.Equal(t, "Nascimento & Cia Ltda", finalized.ClientName)
	assert.Contains(t, finalized.Content, "Contratante: Nascimento & Cia Ltda")
	assert.NotContains(t, finalized.Content, "{{")

	// Already pending: finalize again is rejected
	_, err = p.documents.Finalize(ctx, doc.ID, client, models.ActorConsultant)
	assert.ErrorIs(t, err, services.ErrNotDraft)

	// Signed documents never go back to pending
	_, err = p.signatures.Sign(ctx, doc.ID, "João Nascimento", models.ActorClient)
	require.NoError(t, err)
	_, err = p.documents.Finalize(ctx, doc.ID, client, models.ActorConsultant)
	assert.ErrorIs(t, err, services.ErrNotDraft)
}

// TestListByClientScopesDocuments verifies a client listing never includes
// another client's documents.
func TestListByClientScopesDocuments(t *testing.T) {
	p := newPortal()
	ctx := context.Background()

	_, err := p.documents.CreateDraft(ctx, "Doc do cliente 1", "x", "1", "Nascimento", "")
	require.NoError(t, err)
	_, err = p.documents.CreateDraft(ctx, "Doc do cliente 2", "x", "2", "Outra Ltda", "")
	require.NoError(t, err)

	docs, err := p.documents.ListByClient(ctx, "1")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Doc do cliente 1", docs[0].Title)

	all, err := p.documents.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, "Doc do cliente 2", all[0].Title, "consultant listing is newest first")
}

// TestAuditFailureDoesNotFailSave verifies an audit append failure never
// fails the business operation it documents.
func TestAuditFailureDoesNotFailSave(t *testing.T) {
	p := newPortal()
	ctx := context.Background()

	p.auditStore.failNext = errors.New("audit unavailable")

	_, err := p.documents.CreateDraft(ctx, "Contrato", "<p>v1</p>", "1", "Nascimento & Cia Ltda", "")
	assert.NoError(t, err, "save must succeed even when the audit append fails")
}
