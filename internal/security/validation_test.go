// Package security provides tests for input validation.
package security

import (
	"errors"
	"strings"
	"testing"
)

// TestDigits verifies formatting is stripped before identity comparison.
func TestDigits(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"formatted CNPJ", "47.843.155/0001-53", "47843155000153"},
		{"bare digits", "47843155000153", "47843155000153"},
		{"formatted CPF", "012.926.211-09", "01292621109"},
		{"letters and spaces", "abc 123 def", "123"},
		{"empty", "", ""},
		{"no digits", "---///...", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Digits(tt.input); got != tt.expected {
				t.Errorf("Digits(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

// TestValidateSignerName verifies the minimum trimmed-length rule for
// electronic signatures.
func TestValidateSignerName(t *testing.T) {
	v := NewValidationService(DefaultSecurityConfig())

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"full name", "Maria Souza", false},
		{"exactly five runes", "Maria", false},
		{"four runes", "Ana B", false}, // 5 runes including the space
		{"too short", "Ana", true},
		{"whitespace padding does not count", "  Ana  ", true},
		{"only whitespace", "        ", true},
		{"empty", "", true},
		{"accented runes counted as one", "Érico", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateSignerName(tt.input)
			if tt.wantErr && !errors.Is(err, ErrSignerNameTooShort) {
				t.Errorf("ValidateSignerName(%q) = %v, want ErrSignerNameTooShort", tt.input, err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateSignerName(%q) = %v, want nil", tt.input, err)
			}
		})
	}
}

// TestValidateCNPJ verifies digit-count validation after normalization.
func TestValidateCNPJ(t *testing.T) {
	v := NewValidationService(DefaultSecurityConfig())

	if err := v.ValidateCNPJ("47.843.155/0001-53"); err != nil {
		t.Errorf("Formatted CNPJ should validate: %v", err)
	}

	if err := v.ValidateCNPJ("47843155000153"); err != nil {
		t.Errorf("Bare CNPJ should validate: %v", err)
	}

	if err := v.ValidateCNPJ(""); err == nil {
		t.Error("Empty CNPJ should be rejected")
	}

	if err := v.ValidateCNPJ("123"); err == nil {
		t.Error("Short CNPJ should be rejected")
	}
}

// TestValidatePassword verifies presence-only password validation.
func TestValidatePassword(t *testing.T) {
	v := NewValidationService(DefaultSecurityConfig())

	// No composition rules: a short numeric password is acceptable
	if err := v.ValidatePassword("478431"); err != nil {
		t.Errorf("Numeric password should validate: %v", err)
	}

	if err := v.ValidatePassword(""); err == nil {
		t.Error("Empty password should be rejected")
	}

	if err := v.ValidatePassword(strings.Repeat("x", 129)); err == nil {
		t.Error("Oversized password should be rejected")
	}
}

// TestValidateDocumentTitle verifies title length limits.
func TestValidateDocumentTitle(t *testing.T) {
	v := NewValidationService(DefaultSecurityConfig())

	if err := v.ValidateDocumentTitle("Termo de Confidencialidade (NDA)"); err != nil {
		t.Errorf("Valid title rejected: %v", err)
	}

	if err := v.ValidateDocumentTitle("   "); err == nil {
		t.Error("Blank title should be rejected")
	}

	if err := v.ValidateDocumentTitle(strings.Repeat("a", 201)); err == nil {
		t.Error("Oversized title should be rejected")
	}
}

// TestSanitizeString verifies control character removal.
func TestSanitizeString(t *testing.T) {
	v := NewValidationService(DefaultSecurityConfig())

	got := v.SanitizeString("  hello\x00world\x1f  ")
	if got != "helloworld" {
		t.Errorf("SanitizeString = %q, want %q", got, "helloworld")
	}

	// Newlines and tabs survive
	got = v.SanitizeString("line1\nline2\tend")
	if got != "line1\nline2\tend" {
		t.Errorf("SanitizeString should keep newline/tab, got %q", got)
	}
}
