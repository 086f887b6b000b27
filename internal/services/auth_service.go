// This file implements authentication for the portal's two roles: the
// consultant, who authenticates with a shared secret, and clients, who
// authenticate with CNPJ plus password.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jornalismobataguassu-droid/Consultoria/internal/models"
	"github.com/jornalismobataguassu-droid/Consultoria/internal/repository"
	"github.com/jornalismobataguassu-droid/Consultoria/internal/security"
)

// ErrInvalidCredentials is returned for every client authentication failure.
// The same error covers "CNPJ not found" and "wrong password" so a login
// attempt cannot probe which CNPJs are registered. Its text is the exact
// message shown on the login screen.
var ErrInvalidCredentials = errors.New("CNPJ não encontrado ou senha incorreta.")

// AuthService handles authentication for both portal roles.
//
// Consultant login compares a shared secret after digit normalization, so
// "012.926.211-09" and "01292621109" are the same secret. Client login
// resolves the CNPJ (also digit-normalized) against the headquarters company
// of each client group and verifies the password through the configured
// CredentialVerifier.
type AuthService struct {
	clients  ClientStore
	verifier CredentialVerifier
	secret   string // Consultant shared secret, digits only
}

// NewAuthService creates an AuthService. The consultant secret is stored
// digit-normalized.
func NewAuthService(clients ClientStore, verifier CredentialVerifier, consultantSecret string) *AuthService {
	return &AuthService{
		clients:  clients,
		verifier: verifier,
		secret:   security.Digits(consultantSecret),
	}
}

// AuthenticateConsultant verifies the consultant shared secret. Formatting
// characters in the submitted secret are ignored.
//
// Returns ErrInvalidCredentials on mismatch. An empty submission never
// matches, even if the configured secret were empty.
func (s *AuthService) AuthenticateConsultant(secret string) error {
	digits := security.Digits(secret)
	if digits == "" || digits != s.secret {
		return ErrInvalidCredentials
	}
	return nil
}

// AuthenticateClient verifies client credentials and returns the client
// record on success.
//
// The CNPJ is normalized to digits and matched against the headquarters
// company of each client group. Password verification goes through the
// configured CredentialVerifier.
//
// Returns ErrInvalidCredentials for unknown CNPJ and for wrong password
// alike; infrastructure failures are returned wrapped so the handler can
// distinguish them from a bad login.
func (s *AuthService) AuthenticateClient(ctx context.Context, cnpj, password string) (*models.Client, error) {
	digits := security.Digits(cnpj)
	if digits == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	client, err := s.clients.FindByTaxID(ctx, digits)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("client lookup: %w", err)
	}

	if !s.verifier.Verify(client.Password, password) {
		return nil, ErrInvalidCredentials
	}

	return client, nil
}
