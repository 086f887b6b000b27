// This file implements client record management: the consultant's CRUD
// surface over client groups, companies and legal representatives.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jornalismobataguassu-droid/Consultoria/internal/models"
	"github.com/jornalismobataguassu-droid/Consultoria/internal/repository"
)

// ClientService manages client records. Saves replace the whole record,
// companies included; there is no partial update and no delete.
type ClientService struct {
	clients  ClientStore
	audit    *AuditService
	verifier CredentialVerifier
}

// NewClientService creates a ClientService.
func NewClientService(clients ClientStore, audit *AuditService, verifier CredentialVerifier) *ClientService {
	return &ClientService{
		clients:  clients,
		audit:    audit,
		verifier: verifier,
	}
}

// Get returns one client by id.
func (s *ClientService) Get(ctx context.Context, id string) (*models.Client, error) {
	return s.clients.FindByID(ctx, id)
}

// List returns every client.
func (s *ClientService) List(ctx context.Context) ([]models.Client, error) {
	return s.clients.List(ctx)
}

// Save persists a client record wholesale and records a CLIENT_UPDATE audit
// entry. A new client gets a generated id.
//
// Password handling: an empty password on an update keeps the stored
// credential; a changed password is passed through the configured
// CredentialVerifier's Hash before storage.
func (s *ClientService) Save(ctx context.Context, client *models.Client, actor string) error {
	if client.ID == "" {
		client.ID = uuid.NewString()
	}

	existing, err := s.clients.FindByID(ctx, client.ID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("client lookup: %w", err)
	}

	switch {
	case client.Password == "" && existing != nil:
		client.Password = existing.Password
	case existing == nil || client.Password != existing.Password:
		hashed, err := s.verifier.Hash(client.Password)
		if err != nil {
			return fmt.Errorf("credential hash: %w", err)
		}
		client.Password = hashed
	}

	if err := s.clients.Save(ctx, client); err != nil {
		return fmt.Errorf("client save: %w", err)
	}

	s.audit.Record(ctx, models.ActionClientUpdate,
		fmt.Sprintf("Cadastro do cliente %q atualizado.", client.MainCompany.LegalName), actor)
	return nil
}
