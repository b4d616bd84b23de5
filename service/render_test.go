package service

import (
	"testing"

	"lexdraft-backend/models"

	"github.com/stretchr/testify/assert"
)

func renderFixture() []*models.Assertion {
	return []*models.Assertion{
		{Position: 5, Kind: models.KindFact, Text: "F2"},
		{Position: 2, Kind: models.KindRequest, Text: "P1"},
		{Position: 4, Kind: models.KindThesis, Text: "T1"},
		{Position: 1, Kind: models.KindFact, Text: "F1"},
		{Position: 3, Kind: models.KindLegalBasis, Text: "G1"},
		{Position: 6, Kind: models.KindRequest, Text: "P2 <b>"},
	}
}

func TestRenderMarkdown(t *testing.T) {
	want := "## DOS FATOS\n\nF1\n\nF2\n\n\n" +
		"## DO DIREITO\n\nG1\n\nT1\n\n\n" +
		"## DOS PEDIDOS\n\nAnte o exposto, requer:\n\n1. P1\n\n2. P2 <b>\n\n"
	assert.Equal(t, want, Render(renderFixture(), models.FormatMarkdown))
}

func TestRenderHTML(t *testing.T) {
	want := "<article class='legal-document'>\n" +
		"<section class='fatos'>\n<h2>DOS FATOS</h2>\n<p>F1</p>\n<p>F2</p>\n</section>\n" +
		"<section class='direito'>\n<h2>DO DIREITO</h2>\n<p>G1</p>\n<p>T1</p>\n</section>\n" +
		"<section class='pedidos'>\n<h2>DOS PEDIDOS</h2>\n<p>Ante o exposto, requer:</p>\n<ol>\n<li>P1</li>\n<li>P2 &lt;b&gt;</li>\n</ol>\n</section>\n" +
		"</article>"
	assert.Equal(t, want, Render(renderFixture(), models.FormatHTML))
}

func TestRenderOmitsEmptySections(t *testing.T) {
	only := []*models.Assertion{{Position: 1, Kind: models.KindRequest, Text: "P"}}
	assert.Equal(t, "## DOS PEDIDOS\n\nAnte o exposto, requer:\n\n1. P\n\n", Render(only, models.FormatMarkdown))
	assert.Equal(t, "", Render(nil, models.FormatMarkdown))
	assert.Equal(t, "<article class='legal-document'>\n</article>", Render(nil, models.FormatHTML))
}

func TestRenderIsDeterministic(t *testing.T) {
	fixture := renderFixture()
	first := Render(fixture, models.FormatMarkdown)
	assert.Equal(t, first, Render(fixture, models.FormatMarkdown))
	// input order is preserved for the caller
	assert.Equal(t, 5, fixture[0].Position)
}

func TestRenderDocxAndPDFProjectToMarkdown(t *testing.T) {
	fixture := renderFixture()
	md := Render(fixture, models.FormatMarkdown)
	assert.Equal(t, md, Render(fixture, models.FormatDOCX))
	assert.Equal(t, md, Render(fixture, models.FormatPDF))
}
