package service

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"lexdraft-backend/models"
)

type renderSections struct {
	facts    []*models.Assertion
	grounds  []*models.Assertion
	theses   []*models.Assertion
	requests []*models.Assertion
}

func groupByKind(assertions []*models.Assertion) renderSections {
	ordered := make([]*models.Assertion, len(assertions))
	copy(ordered, assertions)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Position < ordered[j].Position
	})

	var s renderSections
	for _, a := range ordered {
		switch a.Kind {
		case models.KindFact:
			s.facts = append(s.facts, a)
		case models.KindLegalBasis:
			s.grounds = append(s.grounds, a)
		case models.KindThesis:
			s.theses = append(s.theses, a)
		case models.KindRequest:
			s.requests = append(s.requests, a)
		}
	}
	return s
}

// Render projects assertions into text. It is pure and deterministic: the
// same assertions always yield the same text and nothing is added beyond
// section headings. Formats without a dedicated projection use markdown.
func Render(assertions []*models.Assertion, format models.RenderFormat) string {
	if format == models.FormatHTML {
		return renderHTML(assertions)
	}
	return renderMarkdown(assertions)
}

func renderMarkdown(assertions []*models.Assertion) string {
	s := groupByKind(assertions)
	var parts []string

	if len(s.facts) > 0 {
		parts = append(parts, "## DOS FATOS\n")
		for _, a := range s.facts {
			parts = append(parts, a.Text+"\n")
		}
		parts = append(parts, "")
	}

	if len(s.grounds) > 0 || len(s.theses) > 0 {
		parts = append(parts, "## DO DIREITO\n")
		for _, a := range s.grounds {
			parts = append(parts, a.Text+"\n")
		}
		for _, a := range s.theses {
			parts = append(parts, a.Text+"\n")
		}
		parts = append(parts, "")
	}

	if len(s.requests) > 0 {
		parts = append(parts, "## DOS PEDIDOS\n", "Ante o exposto, requer:\n")
		for i, a := range s.requests {
			parts = append(parts, fmt.Sprintf("%d. %s\n", i+1, a.Text))
		}
		parts = append(parts, "")
	}

	return strings.Join(parts, "\n")
}

func renderHTML(assertions []*models.Assertion) string {
	s := groupByKind(assertions)
	parts := []string{"<article class='legal-document'>"}

	if len(s.facts) > 0 {
		parts = append(parts, "<section class='fatos'>", "<h2>DOS FATOS</h2>")
		for _, a := range s.facts {
			parts = append(parts, "<p>"+html.EscapeString(a.Text)+"</p>")
		}
		parts = append(parts, "</section>")
	}

	if len(s.grounds) > 0 || len(s.theses) > 0 {
		parts = append(parts, "<section class='direito'>", "<h2>DO DIREITO</h2>")
		for _, a := range s.grounds {
			parts = append(parts, "<p>"+html.EscapeString(a.Text)+"</p>")
		}
		for _, a := range s.theses {
			parts = append(parts, "<p>"+html.EscapeString(a.Text)+"</p>")
		}
		parts = append(parts, "</section>")
	}

	if len(s.requests) > 0 {
		parts = append(parts, "<section class='pedidos'>", "<h2>DOS PEDIDOS</h2>", "<p>Ante o exposto, requer:</p>", "<ol>")
		for _, a := range s.requests {
			parts = append(parts, "<li>"+html.EscapeString(a.Text)+"</li>")
		}
		parts = append(parts, "</ol>", "</section>")
	}

	parts = append(parts, "</article>")
	return strings.Join(parts, "\n")
}
