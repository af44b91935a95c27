// internal/pdfgen/contract_test.go
package pdfgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validContractData() *ContractData {
	return &ContractData{
		OrderID:         "cs_test_a1b2c3",
		TransactionDate: "2026-03-15",
		LicenseType:     "MP3",
		ProductName:     "Noches de Tepito",
		Price:           349,
		Currency:        "MXN",
		ProducerName:    "El Arquitecto",
		ProducerEmail:   "arquitecto@example.com",
		BuyerName:       "MC Relámpago",
		BuyerEmail:      "relampago@example.com",
		Limits: &UsageLimits{
			Streams:     150000,
			MusicVideos: 2,
		},
	}
}

func TestSecurityHashDeterministic(t *testing.T) {
	h1 := SecurityHash("order-1", "buyer@example.com", "2026-03-15")
	h2 := SecurityHash("order-1", "buyer@example.com", "2026-03-15")
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)
	assert.Regexp(t, "^[0-9a-f]{64}$", h1)
}

func TestSecurityHashSensitiveToEachInput(t *testing.T) {
	base := SecurityHash("order-1", "buyer@example.com", "2026-03-15")
	assert.NotEqual(t, base, SecurityHash("order-2", "buyer@example.com", "2026-03-15"))
	assert.NotEqual(t, base, SecurityHash("order-1", "other@example.com", "2026-03-15"))
	assert.NotEqual(t, base, SecurityHash("order-1", "buyer@example.com", "2026-03-16"))
}

func TestSubstitutePlaceholders(t *testing.T) {
	d := validContractData()
	text := "{PRODUCTOR} otorga a {ARTISTA} una licencia sobre {BEAT} el {FECHA}. {ARTISTA} acepta."

	got := SubstitutePlaceholders(text, d)
	assert.Equal(t, "El Arquitecto otorga a MC Relámpago una licencia sobre Noches de Tepito el 2026-03-15. MC Relámpago acepta.", got)
}

func TestSubstitutePlaceholdersIsCaseSensitive(t *testing.T) {
	d := validContractData()
	text := "{artista} y {Productor} no se tocan, {ARTISTA} sí."

	got := SubstitutePlaceholders(text, d)
	assert.Contains(t, got, "{artista}")
	assert.Contains(t, got, "{Productor}")
	assert.Contains(t, got, "MC Relámpago sí.")
}

func TestQRPayloadFormat(t *testing.T) {
	d := validContractData()
	payload := QRPayload(d)

	lines := strings.Split(payload, "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "TIANGUIS BEATS - VERIFICACION DE LICENCIA", lines[0])
	assert.Equal(t, "Orden: cs_test_a1b2c3", lines[1])
	assert.Equal(t, "Licencia: MP3", lines[2])
	assert.Equal(t, "Comprador: relampago@example.com", lines[3])
}

func TestRenderProducesPDF(t *testing.T) {
	r := NewRenderer("https://tianguisbeats.com/verificar")

	pdf, err := r.Render(validContractData())
	require.NoError(t, err)
	require.NotEmpty(t, pdf)
	assert.True(t, strings.HasPrefix(string(pdf[:5]), "%PDF-"))
}

func TestRenderCustomText(t *testing.T) {
	d := validContractData()
	d.IsCustomText = true
	d.CustomText = "{PRODUCTOR} cede a {ARTISTA} el uso de {BEAT}.\n\nSin más cláusulas."
	d.Limits = nil

	r := NewRenderer("https://tianguisbeats.com/verificar")
	pdf, err := r.Render(d)
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)
}

func TestRenderProClauses(t *testing.T) {
	d := validContractData()
	d.IncludeProClauses = true

	r := NewRenderer("https://tianguisbeats.com/verificar")
	pdf, err := r.Render(d)
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)
}

func TestRenderFailsFastOnMissingIdentity(t *testing.T) {
	r := NewRenderer("https://tianguisbeats.com/verificar")

	cases := []struct {
		name   string
		mutate func(*ContractData)
	}{
		{"missing order id", func(d *ContractData) { d.OrderID = "" }},
		{"missing producer name", func(d *ContractData) { d.ProducerName = "" }},
		{"missing buyer name", func(d *ContractData) { d.BuyerName = "" }},
		{"missing buyer email", func(d *ContractData) { d.BuyerEmail = "" }},
		{"missing product name", func(d *ContractData) { d.ProductName = "" }},
		{"missing transaction date", func(d *ContractData) { d.TransactionDate = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := validContractData()
			tc.mutate(d)
			pdf, err := r.Render(d)
			assert.Error(t, err)
			assert.Nil(t, pdf)
		})
	}
}

func TestRenderMissingLimitsRendersUndefined(t *testing.T) {
	d := validContractData()
	d.Limits = nil

	r := NewRenderer("https://tianguisbeats.com/verificar")
	pdf, err := r.Render(d)
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)
}

func TestFormatLimit(t *testing.T) {
	assert.Equal(t, "Ilimitado", formatLimit(-1))
	assert.Equal(t, "No definido", formatLimit(0))
	assert.Equal(t, "50000", formatLimit(50000))
}
