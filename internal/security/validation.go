// Package security provides input validation. Validation errors carry the
// pt-BR messages the portal shows to users verbatim.
package security

import (
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ErrSignerNameTooShort rejects signature submissions whose trimmed signer
// name is shorter than the configured minimum.
var ErrSignerNameTooShort = errors.New("Por favor, digite seu nome completo para assinar.")

var nonDigits = regexp.MustCompile(`\D`)

// Digits strips every non-digit character. Credential identifiers (CNPJ and
// the consultant secret) are compared in this normalized form, so
// "47.843.155/0001-53" and "47843155000153" are the same identity.
func Digits(s string) string {
	return nonDigits.ReplaceAllString(s, "")
}

// ValidationService provides centralized input validation functions.
// All validation methods return descriptive errors that are safe to show to
// users.
type ValidationService struct {
	config *SecurityConfig
}

// NewValidationService creates a new validation service with security
// configuration.
func NewValidationService(config *SecurityConfig) *ValidationService {
	return &ValidationService{
		config: config,
	}
}

// ValidateSignerName validates an electronic-signature name: after trimming
// it must reach the configured minimum length. Whitespace padding never
// satisfies the minimum.
func (v *ValidationService) ValidateSignerName(name string) error {
	if utf8.RuneCountInString(strings.TrimSpace(name)) < v.config.MinSignerNameLength {
		return ErrSignerNameTooShort
	}
	return nil
}

// ValidateCNPJ validates that a CNPJ carries exactly 14 digits once
// formatting is stripped. Check-digit verification is intentionally not
// performed: the identity match happens against stored records.
func (v *ValidationService) ValidateCNPJ(cnpj string) error {
	digits := Digits(cnpj)
	if digits == "" {
		return fmt.Errorf("CNPJ é obrigatório")
	}
	if len(digits) != 14 {
		return fmt.Errorf("CNPJ deve conter 14 dígitos")
	}
	return nil
}

// ValidatePassword validates that a password is present. The portal imposes
// no composition rules on client passwords.
func (v *ValidationService) ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("senha é obrigatória")
	}
	if len(password) > 128 {
		return fmt.Errorf("senha deve ter no máximo 128 caracteres")
	}
	return nil
}

// ValidateEmail validates email address format according to RFC 5322.
func (v *ValidationService) ValidateEmail(email string) error {
	if email == "" {
		return nil // Contact email is optional on client records
	}
	if len(email) > 255 {
		return fmt.Errorf("e-mail deve ter no máximo 255 caracteres")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("formato de e-mail inválido")
	}
	return nil
}

// ValidateDocumentTitle validates document title length and content.
func (v *ValidationService) ValidateDocumentTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("título do documento é obrigatório")
	}
	if utf8.RuneCountInString(title) > v.config.MaxDocumentTitleLength {
		return fmt.Errorf("título deve ter no máximo %d caracteres", v.config.MaxDocumentTitleLength)
	}
	return nil
}

// ValidateDocumentContent validates rendered document content size.
func (v *ValidationService) ValidateDocumentContent(content string) error {
	if len(content) > v.config.MaxDocumentContentSize {
		return fmt.Errorf("conteúdo deve ter no máximo %d bytes", v.config.MaxDocumentContentSize)
	}
	return nil
}

// ValidateChecklistSize validates the serialized checklist payload size.
func (v *ValidationService) ValidateChecklistSize(payload []byte) error {
	if len(payload) > v.config.MaxChecklistSize {
		return fmt.Errorf("checklist deve ter no máximo %d bytes", v.config.MaxChecklistSize)
	}
	return nil
}

// ValidateRequired checks if a required field is present and non-empty.
func (v *ValidationService) ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s é obrigatório", fieldName)
	}
	return nil
}

// SanitizeString removes control characters (except newline and tab) and
// normalizes surrounding whitespace.
func (v *ValidationService) SanitizeString(input string) string {
	input = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`).ReplaceAllString(input, "")
	return strings.TrimSpace(input)
}
