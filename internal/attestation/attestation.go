// Package attestation generates signature metadata and renders the
// attestation blocks appended to document content.
//
// The origin markers produced here are simulated network origins, not true
// client addresses, and the integrity token is a high-entropy identifier of
// the signature event, not a digest of the document content. Both are
// tamper-evidence markers by design; callers must not treat them as
// cryptographic proof.
package attestation

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"math/big"
	"strings"
	"time"
)

// ConsultantOrigin is the fixed origin marker stamped on the consultant's
// pre-signed NDA block.
const ConsultantOrigin = "177.200.10.55"

// TokenLength is the default length of a signature integrity token.
const TokenLength = 16

// Source supplies the metadata of one attestation event. It is an interface
// so tests can pin the clock and the randomness.
type Source interface {
	// Now is the attestation clock.
	Now() time.Time

	// SignatureOrigin synthesizes the origin marker recorded on a
	// signature event.
	SignatureOrigin() string

	// AuditOrigin synthesizes the origin marker recorded on an audit
	// entry.
	AuditOrigin() string

	// Token generates a fresh uppercase high-entropy token of the given
	// length, unique per call.
	Token(length int) string
}

// SimulatedSource is the production Source: wall clock, crypto/rand tokens
// and synthesized private-range origin markers matching the portal's
// simulation.
type SimulatedSource struct {
	// Rand is the entropy source for tokens; defaults to crypto/rand.
	Rand io.Reader
}

// NewSource returns a SimulatedSource over crypto/rand.
func NewSource() *SimulatedSource {
	return &SimulatedSource{Rand: rand.Reader}
}

// Now returns the current wall-clock time.
func (s *SimulatedSource) Now() time.Time { return time.Now() }

// SignatureOrigin synthesizes a 189.32.x.y marker.
func (s *SimulatedSource) SignatureOrigin() string {
	return fmt.Sprintf("189.32.%d.%d", s.octet(), s.octet())
}

// AuditOrigin synthesizes a 192.168.1.x marker.
func (s *SimulatedSource) AuditOrigin() string {
	return fmt.Sprintf("192.168.1.%d", s.octet())
}

// Token generates an uppercase hex token of the requested length.
func (s *SimulatedSource) Token(length int) string {
	reader := s.Rand
	if reader == nil {
		reader = rand.Reader
	}
	buf := make([]byte, (length+1)/2)
	if _, err := io.ReadFull(reader, buf); err != nil {
		// Entropy exhaustion never happens with crypto/rand; a custom
		// reader that fails yields a timestamp-derived token instead of
		// aborting the signature.
		return strings.ToUpper(hex.EncodeToString([]byte(fmt.Sprintf("%d", time.Now().UnixNano()))))[:length]
	}
	return strings.ToUpper(hex.EncodeToString(buf))[:length]
}

func (s *SimulatedSource) octet() int {
	reader := s.Rand
	if reader == nil {
		reader = rand.Reader
	}
	n, err := rand.Int(reader, big.NewInt(255))
	if err != nil {
		return 1
	}
	return int(n.Int64())
}

// Block is the data of one rendered attestation. The four fields are always
// rendered in this order: signer, timestamp, origin, token.
type Block struct {
	SignerName string
	SignerID   string // Optional document id of the signer (consultant CPF)
	SignedAt   time.Time
	Origin     string
	Token      string
}

// timestampLayout is the display format inside attestation blocks.
const timestampLayout = "02/01/2006 15:04:05"

// ClientBlock renders the attestation appended when a client signs their
// NDA during onboarding.
func ClientBlock(b Block) string {
	return fmt.Sprintf(`
<div style="margin-top: 20px; padding: 15px; background-color: #fef3c7; border: 1px solid #d97706; border-radius: 8px; font-family: sans-serif; font-size: 11px; color: #78350f;">
  <p style="font-weight: bold; margin-bottom: 4px;">✅ ASSINADO DIGITALMENTE PELO CLIENTE</p>
  <p><strong>Assinado por:</strong> %s</p>
  <p><strong>Data/Hora:</strong> %s</p>
  <p><strong>IP:</strong> %s</p>
  <p><strong>Hash:</strong> %s</p>
</div>`, b.SignerName, b.SignedAt.Format(timestampLayout), b.Origin, b.Token)
}

// ConsultantBlock renders the pre-signed consultant attestation appended to
// every provisioned NDA.
func ConsultantBlock(b Block) string {
	return fmt.Sprintf(`
<div style="margin-top: 40px; padding: 15px; background-color: #f0fdf4; border: 1px solid #10b981; border-radius: 8px; font-family: sans-serif; font-size: 11px; color: #064e3b;">
  <p style="font-weight: bold; margin-bottom: 4px;">✅ ASSINADO DIGITALMENTE PELA CONSULTORA</p>
  <p><strong>Nome:</strong> %s</p>
  <p><strong>CPF:</strong> %s</p>
  <p><strong>Data:</strong> %s</p>
  <p><strong>IP:</strong> %s</p>
  <p><strong>Hash Autenticidade:</strong> %s</p>
</div>`, b.SignerName, b.SignerID, b.SignedAt.Format(timestampLayout), b.Origin, b.Token)
}

// FooterBlock renders the generic signature footer appended to documents
// signed through the document library.
func FooterBlock(b Block) string {
	return fmt.Sprintf(`
<div style="margin-top: 50px; padding-top: 20px; border-top: 1px solid #ccc; font-family: sans-serif; font-size: 10px; color: #666;">
  <p><strong>DOCUMENTO ASSINADO ELETRONICAMENTE</strong></p>
  <p>Assinado por: %s</p>
  <p>Data/Hora: %s</p>
  <p>IP: %s</p>
  <p>Hash: %s</p>
</div>`, b.SignerName, b.SignedAt.Format(timestampLayout), b.Origin, b.Token)
}
