package templates

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jornalismobataguassu-droid/Consultoria/internal/config"
	"github.com/jornalismobataguassu-droid/Consultoria/internal/models"
)

var testProfile = config.ConsultancyProfile{
	Name:       "Borges Consultoria",
	Consultant: "Danieli Borges de Lima",
	TaxID:      "012.926.211-09",
	Address:    "Rua Nova Andradina, 683 – Bataguassu/MS",
	Phone:      "(67) 92001-5785",
	Email:      "contato@borgesconsultoria.com.br",
}

func testClient() models.Client {
	return models.Client{
		ID: "1",
		MainCompany: models.Company{
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
		ContactEmail: "joao@nascimento.com.br",
		ContactPhone: "(67) 99999-0000",
		VenueCity:    "Bataguassu/MS",
	}
}

func fixedClock() time.Time {
	return time.Date(2026, time.January, 2, 10, 0, 0, 0, time.UTC)
}

func TestRenderSubstitutesEveryKnownToken(t *testing.T) {
	engine := NewEngineWithClock(testProfile, fixedClock)

	tpl := strings.Join([]string{
		TokenConsultantName, TokenConsultantTaxID, TokenConsultantAddress,
		TokenConsultantPhone, TokenConsultantEmail, TokenLongDate,
		TokenClientLegalName, TokenClientTaxID, TokenClientFullAddress,
		TokenRepName, TokenRepTaxID, TokenRepRole,
		TokenClientCity, TokenClientRegion, TokenVenueCity,
		TokenClientEmail, TokenClientPhone, TokenOtherCompanies,
	}, "\n")

	out := engine.Render(tpl, testClient())

	assert.NotContains(t, out, "{{", "every known token should be resolved")
	assert.Contains(t, out, "Borges Consultoria")
	assert.Contains(t, out, "Nascimento & Cia Ltda")
	assert.Contains(t, out, "Av. Brasil, 100 - Bataguassu/MS")
	assert.Contains(t, out, "2 de janeiro de 2026")
}

func TestRenderRepeatedToken(t *testing.T) {
	engine := NewEngineWithClock(testProfile, fixedClock)

	out := engine.Render("{{CLIENTE_RAZAO_SOCIAL}} e {{CLIENTE_RAZAO_SOCIAL}}", testClient())

	assert.Equal(t, "Nascimento & Cia Ltda e Nascimento & Cia Ltda", out)
}

func TestRenderLeavesUnknownTokensVerbatim(t *testing.T) {
	engine := NewEngineWithClock(testProfile, fixedClock)

	out := engine.Render("antes {{TOKEN_DESCONHECIDO}} depois", testClient())

	assert.Equal(t, "antes {{TOKEN_DESCONHECIDO}} depois", out)
}

func TestRenderEmptyFieldsResolveEmpty(t *testing.T) {
	engine := NewEngineWithClock(testProfile, fixedClock)

	client := testClient()
	client.ContactEmail = ""

	out := engine.Render("[{{CLIENTE_EMAIL}}]", client)

	assert.Equal(t, "[]", out, "missing field resolves to empty, not an error")
}

func TestRenderOtherCompaniesFallback(t *testing.T) {
	engine := NewEngineWithClock(testProfile, fixedClock)

	client := testClient()
	client.OtherGroupCompanies = ""
	assert.Equal(t, "N/A", engine.Render(TokenOtherCompanies, client))

	client.OtherGroupCompanies = "Filial Sul Ltda"
	assert.Equal(t, "Filial Sul Ltda", engine.Render(TokenOtherCompanies, client))
}

func TestRenderDoesNotMutateTemplate(t *testing.T) {
	engine := NewEngineWithClock(testProfile, fixedClock)

	tpl := "Contrato de {{CLIENTE_RAZAO_SOCIAL}}"
	_ = engine.Render(tpl, testClient())

	assert.Equal(t, "Contrato de {{CLIENTE_RAZAO_SOCIAL}}", tpl)
}

func TestLongDate(t *testing.T) {
	tests := []struct {
		in   time.Time
		want string
	}{
		{time.Date(2026, time.January, 2, 0, 0, 0, 0, time.UTC), "2 de janeiro de 2026"},
		{time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC), "31 de março de 2025"},
		{time.Date(2024, time.December, 25, 0, 0, 0, 0, time.UTC), "25 de dezembro de 2024"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, LongDate(tt.in))
	}
}
