package render

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgenny/propostas/internal/models"
)

func renderString(t *testing.T, p models.Proposal) string {
	t.Helper()
	r, err := New()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, p))
	return buf.String()
}

func TestRender_DefaultsShowAllSections(t *testing.T) {
	p := models.DefaultProposal(time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC))
	p["cliente"] = "Acme"

	html := renderString(t, p)

	assert.Contains(t, html, "<title>Proposta DGenny para Acme</title>")
	assert.Contains(t, html, "Florianópolis, 15/09/2025")
	assert.Contains(t, html, `id="oferta-feira"`)
	assert.Contains(t, html, `id="fidelidade"`)
	assert.Contains(t, html, `id="integracoes"`)
	assert.Contains(t, html, "Investimento com Oferta Exclusiva")
	assert.Contains(t, html, `class="strikethrough"`)
}

func TestRender_FlagsHideSections(t *testing.T) {
	p := models.DefaultProposal(time.Now())
	p["mostrarOfertaFeira"] = false
	p["mostrarDesconto"] = false
	p["mostrarDescontoImplantacao"] = false
	p["mostrarIntegracoes"] = false
	p["semFidelidade"] = false

	html := renderString(t, p)

	assert.NotContains(t, html, `id="oferta-feira"`)
	assert.NotContains(t, html, `id="fidelidade"`)
	assert.NotContains(t, html, `id="integracoes"`)
	assert.NotContains(t, html, "Oferta Exclusiva")
	assert.NotContains(t, html, `class="strikethrough"`)
}

func TestRender_EscapesValuesAndToleratesMissingFields(t *testing.T) {
	html := renderString(t, models.Proposal{"id": "x", "cliente": `<script>alert("x")</script>`})

	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
	assert.NotContains(t, html, "no value")
}
