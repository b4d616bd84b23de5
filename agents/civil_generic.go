package agents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"lexdraft-backend/constitution"
	"lexdraft-backend/logger"
	"lexdraft-backend/metrics"
	"lexdraft-backend/models"
)

const CivilGenericID = "civil-generic"

// TextGenerator produces raw model output for a pair of prompts
type TextGenerator interface {
	GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

var errEmptyOutput = errors.New("model returned no assertions")

// CivilGeneric is the fallback agent for civil pieces without a specialist.
// With a TextGenerator it asks the model for structured assertions; otherwise,
// or whenever the model misbehaves, it uses a conservative template.
type CivilGeneric struct {
	generator TextGenerator
	log       *logger.Logger
}

// CivilGenericOption is a functional option for CivilGeneric
type CivilGenericOption func(*CivilGeneric)

// CivilGenericWithGenerator enables model-backed generation
func CivilGenericWithGenerator(g TextGenerator) CivilGenericOption {
	return func(a *CivilGeneric) {
		a.generator = g
	}
}

// CivilGenericWithLogger sets the logger
func CivilGenericWithLogger(log *logger.Logger) CivilGenericOption {
	return func(a *CivilGeneric) {
		a.log = log
	}
}

// NewCivilGeneric creates the fallback agent
func NewCivilGeneric(opts ...CivilGenericOption) *CivilGeneric {
	a := &CivilGeneric{log: logger.Nop()}
	for _, opt := range opts {
		opt(a)
	}
	a.log = a.log.With("agent", CivilGenericID)
	return a
}

func (a *CivilGeneric) Info() Info {
	return Info{
		ID:         CivilGenericID,
		Name:       "Agente Civil Genérico",
		LegalBasis: "CPC",
		LegalArea:  "civil",
		PieceType:  "Peça Cível",
	}
}

// Generate never fails: model errors fall back to the template
func (a *CivilGeneric) Generate(ctx context.Context, input NormalizedInput, sources map[string]*models.LegalSource) ([]GeneratedAssertion, error) {
	if a.generator == nil {
		return a.template(input, sources), nil
	}

	out, reason, err := a.generateWithModel(ctx, input, sources)
	if err == nil {
		return out, nil
	}
	if pv, ok := constitution.AsPolicyViolation(err); ok {
		reason = "policy_violation"
		a.log.Error("model output violates constitution, using template", "law", string(pv.Law), "message", pv.Message)
		metrics.ConstitutionViolations.WithLabelValues("policy", string(pv.Law)).Inc()
	} else {
		a.log.Warn("model generation failed, using template", "reason", reason, "error", err)
	}
	metrics.AgentFallbacks.WithLabelValues(CivilGenericID, reason).Inc()
	return a.template(input, sources), nil
}

// template only asserts what is safe: client facts and requests, plus one
// legal basis per resolved source that carries an excerpt.
func (a *CivilGeneric) template(input NormalizedInput, sources map[string]*models.LegalSource) []GeneratedAssertion {
	b := &builder{}
	for _, fato := range input.Facts {
		b.add(fato, models.KindFact, models.ConfidenceHigh)
	}
	for _, ref := range orderedReferences(input, sources) {
		src := sources[ref]
		if src == nil || src.Excerpt == "" {
			continue
		}
		b.add(fmt.Sprintf("Conforme %s: \"%s\"", ref, src.Excerpt), models.KindLegalBasis, models.ConfidenceHigh, ref)
	}
	for _, pedido := range input.Requests {
		b.add("Requer seja "+pedido, models.KindRequest, models.ConfidenceHigh)
	}
	return b.assertions()
}

type modelAssertion struct {
	Text       string   `json:"text"`
	Type       string   `json:"type"`
	Confidence string   `json:"confidence"`
	Sources    []string `json:"sources"`
}

func (a *CivilGeneric) generateWithModel(ctx context.Context, input NormalizedInput, sources map[string]*models.LegalSource) ([]GeneratedAssertion, string, error) {
	prompt, err := a.userPrompt(input, sources)
	if err != nil {
		return nil, "prompt", err
	}

	raw, err := a.generator.GenerateText(ctx, a.systemPrompt(), prompt)
	if err != nil {
		return nil, "generator", err
	}

	items, err := parseModelOutput(raw)
	if err != nil {
		return nil, "malformed", err
	}

	b := &builder{}
	for _, item := range items {
		text := strings.TrimSpace(item.Text)
		if text == "" {
			continue
		}

		kind := models.AssertionKind(item.Type)
		if !kind.Valid() {
			kind = models.KindThesis
		}
		confidence := models.ConfidenceLevel(item.Confidence)
		if !confidence.Valid() {
			confidence = models.ConfidenceLow
		}

		kept := make([]string, 0, len(item.Sources))
		for _, ref := range item.Sources {
			if has(sources, ref) {
				kept = append(kept, ref)
			}
		}
		if len(kept) < len(item.Sources) || (len(kept) == 0 && confidence != models.ConfidenceLow) {
			confidence = models.ConfidenceLow
		}

		b.add(text, kind, confidence, kept...)
	}

	if len(b.out) == 0 {
		return nil, "empty", errEmptyOutput
	}
	return b.assertions(), "", nil
}

// parseModelOutput accepts either {"assertions": [...]} or a bare array,
// optionally wrapped in a markdown code fence.
func parseModelOutput(raw string) ([]modelAssertion, error) {
	content := stripCodeFence(raw)

	var decoded interface{}
	if err := json.Unmarshal([]byte(content), &decoded); err != nil {
		return nil, fmt.Errorf("decode model output: %w", err)
	}

	var payload map[string]interface{}
	switch v := decoded.(type) {
	case []interface{}:
		payload = map[string]interface{}{"assertions": v}
	case map[string]interface{}:
		payload = v
	default:
		return nil, fmt.Errorf("unexpected model output type %T", decoded)
	}

	if err := constitution.ValidateAgentOutput(payload); err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(payload["assertions"])
	if err != nil {
		return nil, err
	}
	var items []modelAssertion
	if err := json.Unmarshal(encoded, &items); err != nil {
		return nil, fmt.Errorf("decode assertions: %w", err)
	}
	return items, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

func (a *CivilGeneric) systemPrompt() string {
	info := a.Info()
	return fmt.Sprintf(`You are a specialized legal agent for Brazilian law.

IDENTITY:
- Agent: %s
- Legal Basis: %s
- Area: %s
- Piece Type: %s

CRITICAL RESTRICTIONS (NEVER VIOLATE):
1. DO NOT invent facts not provided in input
2. DO NOT cite sources not available in the provided sources map
3. DO NOT generate final text - generate ONLY structured assertions
4. DO NOT provide legal advice or opinions
5. DO NOT assume facts not explicitly stated
6. ALWAYS respect the normative hierarchy: Constitution > Law > Case Law > Doctrine

OUTPUT FORMAT:
Generate assertions as structured objects with:
- text: The assertion content
- type: One of [fato, tese, fundamento, pedido]
- confidence: One of [alto, medio, baixo]
- sources: List of source references that support this assertion

CONSERVATIVE POSTURE:
When in doubt, DO NOT assert. Silence is preferable to legal error.
Mark uncertain assertions with confidence="baixo".
`, info.Name, info.LegalBasis, info.LegalArea, info.PieceType)
}

type promptSource struct {
	Reference string            `json:"reference"`
	Type      models.SourceType `json:"type"`
	Excerpt   string            `json:"excerpt"`
}

func (a *CivilGeneric) userPrompt(input NormalizedInput, sources map[string]*models.LegalSource) (string, error) {
	available := make([]promptSource, 0, len(sources))
	for _, ref := range orderedReferences(input, sources) {
		src := sources[ref]
		if src == nil {
			continue
		}
		available = append(available, promptSource{Reference: ref, Type: src.Type, Excerpt: src.Excerpt})
	}

	facts, err := json.Marshal(input.Facts)
	if err != nil {
		return "", err
	}
	requests, err := json.Marshal(input.Requests)
	if err != nil {
		return "", err
	}
	availableJSON, err := json.MarshalIndent(available, "", "  ")
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`
Generate assertions for a legal petition in Brazilian law.

CASE DATA:
- Facts provided by client: %s
- Requests: %s
- Procedural class: %s

AVAILABLE SOURCES (you may ONLY reference these):
%s

CRITICAL RULES:
1. Generate a JSON object {"assertions": [...]} of assertion objects
2. Each assertion must have: text, type, confidence, sources
3. type must be one of: fato, tese, fundamento, pedido
4. confidence must be one of: alto, medio, baixo
5. sources must ONLY contain references from AVAILABLE SOURCES
6. If you cannot find appropriate source, use confidence="baixo" and empty sources
7. DO NOT invent or hallucinate sources

Output ONLY the JSON object, no explanations.
`, facts, requests, input.ProceduralClass, availableJSON), nil
}
