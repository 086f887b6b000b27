// Package templates implements the placeholder engine that turns template
// text into document-ready content for a specific client.
//
// Resolution is literal global substitution over a fixed token vocabulary.
// The engine is deliberately permissive: unrecognized tokens stay verbatim
// in the output and missing client fields resolve to their raw (possibly
// empty) value, so a partially-filled template still renders and a render
// never fails.
package templates

import (
	"fmt"
	"strings"
	"time"

	"github.com/jornalismobataguassu-droid/Consultoria/internal/config"
	"github.com/jornalismobataguassu-droid/Consultoria/internal/models"
)

// Placeholder token vocabulary. Tokens are exact, case-sensitive literals.
const (
	TokenConsultantName    = "{{CONSULTORA_NOME}}"
	TokenConsultantTaxID   = "{{CONSULTORA_CPF}}"
	TokenConsultantAddress = "{{CONSULTORA_ENDERECO}}"
	TokenConsultantPhone   = "{{CONSULTORA_TELEFONE}}"
	TokenConsultantEmail   = "{{CONSULTORA_EMAIL}}"
	TokenLongDate          = "{{DATA_EXTENSO}}"
	TokenClientLegalName   = "{{CLIENTE_RAZAO_SOCIAL}}"
	TokenClientTaxID       = "{{CLIENTE_CNPJ}}"
	TokenClientFullAddress = "{{CLIENTE_ENDERECO_COMPLETO}}"
	TokenRepName           = "{{CLIENTE_REPRESENTANTE_NOME}}"
	TokenRepTaxID          = "{{CLIENTE_REPRESENTANTE_CPF}}"
	TokenRepRole           = "{{CLIENTE_REPRESENTANTE_CARGO}}"
	TokenClientCity        = "{{CLIENTE_CIDADE}}"
	TokenClientRegion      = "{{CLIENTE_UF}}"
	TokenVenueCity         = "{{CLIENTE_CIDADE_FORO}}"
	TokenClientEmail       = "{{CLIENTE_EMAIL}}"
	TokenClientPhone       = "{{CLIENTE_TELEFONE}}"
	TokenOtherCompanies    = "{{CLIENTE_LISTA_OUTRAS_EMPRESAS}}"
)

// emptyGroupListMarker is substituted for {{CLIENTE_LISTA_OUTRAS_EMPRESAS}}
// when the client has no other group companies on record.
const emptyGroupListMarker = "N/A"

// Engine resolves placeholder tokens against a client profile and the
// process-wide consultancy profile. The clock is injectable so tests can pin
// {{DATA_EXTENSO}}.
type Engine struct {
	profile config.ConsultancyProfile
	now     func() time.Time
}

// NewEngine creates an Engine over the consultancy profile using the wall
// clock.
func NewEngine(profile config.ConsultancyProfile) *Engine {
	return NewEngineWithClock(profile, time.Now)
}

// NewEngineWithClock creates an Engine with an explicit clock.
func NewEngineWithClock(profile config.ConsultancyProfile, now func() time.Time) *Engine {
	return &Engine{profile: profile, now: now}
}

// Render substitutes every occurrence of each recognized token in
// templateContent with its value resolved from the client, the consultancy
// profile and the current date. It never mutates its inputs and never fails.
func (e *Engine) Render(templateContent string, client models.Client) string {
	otherCompanies := client.OtherGroupCompanies
	if otherCompanies == "" {
		otherCompanies = emptyGroupListMarker
	}

	replacements := []struct {
		token string
		value string
	}{
		{TokenConsultantName, e.profile.Name},
		{TokenConsultantTaxID, e.profile.TaxID},
		{TokenConsultantAddress, e.profile.Address},
		{TokenConsultantPhone, e.profile.Phone},
		{TokenConsultantEmail, e.profile.Email},
		{TokenLongDate, LongDate(e.now())},
		{TokenClientLegalName, client.MainCompany.LegalName},
		{TokenClientTaxID, client.MainCompany.TaxID},
		{TokenClientFullAddress, fullAddress(client.MainCompany)},
		{TokenRepName, client.LegalRepresentative.Name},
		{TokenRepTaxID, client.LegalRepresentative.TaxID},
		{TokenRepRole, client.LegalRepresentative.Role},
		{TokenClientCity, client.MainCompany.City},
		{TokenClientRegion, client.MainCompany.Region},
		{TokenVenueCity, client.VenueCity},
		{TokenClientEmail, client.ContactEmail},
		{TokenClientPhone, client.ContactPhone},
		{TokenOtherCompanies, otherCompanies},
	}

	rendered := templateContent
	for _, r := range replacements {
		rendered = strings.ReplaceAll(rendered, r.token, r.value)
	}
	return rendered
}

// fullAddress formats the headquarters address as "address - city/UF".
func fullAddress(co models.Company) string {
	return fmt.Sprintf("%s - %s/%s", co.Address, co.City, co.Region)
}

// Portuguese month names for the long-form date.
var meses = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// LongDate formats a date "por extenso": "2 de janeiro de 2026".
func LongDate(t time.Time) string {
	return fmt.Sprintf("%d de %s de %d", t.Day(), meses[t.Month()-1], t.Year())
}
