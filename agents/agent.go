package agents

import (
	"context"
	"sort"

	"lexdraft-backend/models"
)

// Info describes an agent for catalog listings. It never changes after construction.
type Info struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	LegalBasis string `json:"legal_basis"`
	LegalArea  string `json:"legal_area"`
	PieceType  string `json:"piece_type"`
}

// NormalizedInput is the case data an agent works from
type NormalizedInput struct {
	Facts            []string          `json:"fatos"`
	Requests         []string          `json:"pedidos"`
	CandidateGrounds []string          `json:"possiveis_fundamentos"`
	ProceduralClass  string            `json:"classe_procedimental"`
	Parties          map[string]string `json:"partes"`
	ClaimValue       *float64          `json:"valor_causa,omitempty"`
}

// GeneratedAssertion is a structured proposition produced by an agent.
// SuggestedSources holds references, resolved later against the research map.
type GeneratedAssertion struct {
	Text             string                 `json:"text"`
	Kind             models.AssertionKind   `json:"assertion_type"`
	Confidence       models.ConfidenceLevel `json:"confidence_level"`
	SuggestedSources []string               `json:"suggested_sources"`
	Position         int                    `json:"position"`
}

// Agent produces assertions for exactly one kind of legal piece.
// Agents never produce final text.
type Agent interface {
	Info() Info
	Generate(ctx context.Context, input NormalizedInput, sources map[string]*models.LegalSource) ([]GeneratedAssertion, error)
}

// builder accumulates assertions and numbers them in emission order
type builder struct {
	out []GeneratedAssertion
}

func (b *builder) add(text string, kind models.AssertionKind, confidence models.ConfidenceLevel, refs ...string) {
	if refs == nil {
		refs = []string{}
	}
	b.out = append(b.out, GeneratedAssertion{
		Text:             text,
		Kind:             kind,
		Confidence:       confidence,
		SuggestedSources: refs,
		Position:         len(b.out) + 1,
	})
}

func (b *builder) assertions() []GeneratedAssertion {
	if b.out == nil {
		return []GeneratedAssertion{}
	}
	return b.out
}

func has(sources map[string]*models.LegalSource, ref string) bool {
	_, ok := sources[ref]
	return ok
}

// orderedReferences returns the resolved references in the order they were
// requested, followed by any others sorted by name.
func orderedReferences(input NormalizedInput, sources map[string]*models.LegalSource) []string {
	seen := make(map[string]bool, len(sources))
	refs := make([]string, 0, len(sources))
	for _, ref := range input.CandidateGrounds {
		if has(sources, ref) && !seen[ref] {
			seen[ref] = true
			refs = append(refs, ref)
		}
	}
	var rest []string
	for ref := range sources {
		if !seen[ref] {
			rest = append(rest, ref)
		}
	}
	sort.Strings(rest)
	return append(refs, rest...)
}
