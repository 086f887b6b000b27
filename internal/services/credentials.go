// This file implements client credential verification. The portal stores
// client passwords as plain text and compares them directly; that behavior
// is preserved as the default scheme, but it is isolated behind the
// CredentialVerifier interface so a deployment can switch to bcrypt with
// CLIENT_PASSWORD_SCHEME=bcrypt and a data migration.
package services

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// CredentialVerifier compares a stored client credential against a
// user-provided password, and prepares new credentials for storage.
type CredentialVerifier interface {
	// Verify reports whether the provided password matches the stored
	// credential.
	Verify(stored, provided string) bool

	// Hash prepares a plaintext password for storage under this scheme.
	Hash(password string) (string, error)
}

// NewVerifier selects the verifier for a configured scheme. Unknown schemes
// fall back to plaintext, the portal's shipped behavior.
func NewVerifier(scheme string) CredentialVerifier {
	if scheme == "bcrypt" {
		return &BcryptVerifier{}
	}
	return &PlaintextVerifier{}
}

// PlaintextVerifier compares passwords byte for byte. The comparison is
// constant-time, but the stored credential itself is unhashed.
type PlaintextVerifier struct{}

// Verify compares stored and provided in constant time.
func (p *PlaintextVerifier) Verify(stored, provided string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(provided)) == 1
}

// Hash is the identity under the plaintext scheme.
func (p *PlaintextVerifier) Hash(password string) (string, error) {
	return password, nil
}

// BcryptVerifier stores bcrypt hashes and verifies with constant-time
// comparison.
type BcryptVerifier struct{}

// bcryptCost 12 provides 2^12 iterations, balancing security and login
// latency.
const bcryptCost = 12

// Verify compares the provided password against the stored bcrypt hash.
func (b *BcryptVerifier) Verify(stored, provided string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(provided)) == nil
}

// Hash generates a bcrypt hash of the provided password.
func (b *BcryptVerifier) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(hash), err
}
