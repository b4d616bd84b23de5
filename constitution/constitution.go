// Package constitution holds the invariants every legal payload, version and
// agent output must satisfy. All checks are pure and perform no I/O.
package constitution

import (
	"fmt"
	"sort"
	"strings"

	"lexdraft-backend/models"
)

// MaxInlineTextLength is the longest string tolerated under a text-like key
const MaxInlineTextLength = 100

var rawTextKeys = []string{"text", "content", "body", "documento", "texto", "conteudo"}

var primaryTextKeys = []string{"generated_text", "final_text", "rendered_text"}

var finalTextKeys = []string{
	"final_text",
	"peticao",
	"petition",
	"document_text",
	"complete_document",
	"generated_document",
}

var clientValidityKeys = []string{
	"is_valid",
	"is_approved",
	"skip_validation",
	"force_save",
	"bypass_checks",
	"juridically_valid",
}

var mutationPatterns = []string{"update", "edit", "modify", "patch", "replace"}

// RejectRawDocumentText refuses payloads that try to store a document as a
// block of text instead of assertions.
func RejectRawDocumentText(payload map[string]interface{}) error {
	for _, key := range rawTextKeys {
		s, ok := payload[key].(string)
		if !ok || len([]rune(s)) <= MaxInlineTextLength {
			continue
		}
		return newPolicyViolation(LawDocumentIsNotText,
			"Documento jurídico não pode ser armazenado como texto único",
			map[string]interface{}{
				"field":  key,
				"length": len([]rune(s)),
				"hint":   "Use assertions estruturadas",
			})
	}
	return nil
}

// RequireSource enforces that an assertion cites a source unless it is
// explicitly low confidence.
func RequireSource(sourceCount int, confidence models.ConfidenceLevel) error {
	if models.AssertionIsValid(sourceCount, confidence) {
		return nil
	}
	return &DomainViolation{
		Code:    CodeAssertionWithoutSource,
		Message: "Assertion sem fonte deve ter confidence_level='baixo'",
		Hint:    "Vincule uma fonte ou marque a assertion como baixa confiança",
	}
}

// ForbidVersionMutation rejects any operation that would change an existing version
func ForbidVersionMutation(operation string) error {
	op := strings.ToLower(operation)
	for _, pattern := range mutationPatterns {
		if strings.Contains(op, pattern) {
			return newPolicyViolation(LawVersioning,
				fmt.Sprintf("Operação '%s' proibida: versões são imutáveis", operation),
				map[string]interface{}{
					"operation": operation,
					"hint":      "Crie uma nova versão",
				})
		}
	}
	return nil
}

// ForbidVersionDeletion always fails. Version history is append-only.
func ForbidVersionDeletion(versionID string) error {
	return newPolicyViolation(LawVersioning,
		"Exclusão de versões é proibida: histórico é imutável",
		map[string]interface{}{
			"version_id": versionID,
			"hint":       "Crie uma nova versão em vez de excluir",
		})
}

// RejectTextAsPrimaryInput refuses rendered or final text offered as input
// without the assertions it should derive from.
func RejectTextAsPrimaryInput(payload map[string]interface{}) error {
	if _, ok := payload["assertions"]; ok {
		return nil
	}
	for _, key := range primaryTextKeys {
		if _, ok := payload[key]; ok {
			return newPolicyViolation(LawDerivedText,
				"Texto final é derivado e não pode ser input primário",
				map[string]interface{}{"field": key})
		}
	}
	return nil
}

// RequireRenderableAssertions blocks rendering while any assertion is invalid
func RequireRenderableAssertions(assertions []*models.Assertion) error {
	if len(assertions) == 0 {
		return &DomainViolation{
			Code:    CodeEmptyVersion,
			Message: "Versão não possui assertions",
			Hint:    "Gere ou crie assertions antes de renderizar",
		}
	}
	var invalid []int
	for _, a := range assertions {
		if !a.IsValid() {
			invalid = append(invalid, a.Position)
		}
	}
	if len(invalid) == 0 {
		return nil
	}
	return &DomainViolation{
		Code:    CodeRenderingBlocked,
		Message: fmt.Sprintf("Renderização bloqueada: assertions sem fonte nas posições %v", invalid),
		Hint:    "Vincule fontes ou marque as assertions como baixa confiança",
	}
}

// ValidateAgentOutput rejects generation output that contains final text or
// lacks the structured assertions list.
func ValidateAgentOutput(payload map[string]interface{}) error {
	for _, key := range finalTextKeys {
		if _, ok := payload[key]; ok {
			return newPolicyViolation(LawStructuredAIOutput,
				"IA não pode produzir texto final",
				map[string]interface{}{"forbidden_key": key})
		}
	}
	if _, ok := payload["assertions"]; !ok {
		return newPolicyViolation(LawStructuredAIOutput,
			"Saída da IA deve conter assertions estruturadas",
			map[string]interface{}{"keys": sortedKeys(payload)})
	}
	return nil
}

// ValidateHierarchy checks that sources are cited from most to least
// authoritative: a later source may never outrank an earlier one.
func ValidateHierarchy(types []models.SourceType) error {
	for i := 1; i < len(types); i++ {
		prev, next := types[i-1], types[i]
		if next.HierarchyRank() < prev.HierarchyRank() {
			return &DomainViolation{
				Code:    CodeHierarchyViolation,
				Message: fmt.Sprintf("Hierarquia normativa invertida: %s não pode vir depois de %s", next, prev),
				Hint:    "Cite na ordem Constituição, Lei, Jurisprudência, Doutrina, Argumentação",
			}
		}
	}
	return nil
}

// RejectClientValidityClaims refuses payloads in which a client tries to
// decide juridical validity. Validity is computed server side only.
func RejectClientValidityClaims(payload map[string]interface{}) error {
	for _, key := range clientValidityKeys {
		if _, ok := payload[key]; ok {
			return newPolicyViolation(LawBackendSovereignty,
				fmt.Sprintf("Frontend não pode definir '%s'", key),
				map[string]interface{}{
					"forbidden_key": key,
					"hint":          "Validação jurídica é responsabilidade exclusiva do backend",
				})
		}
	}
	return nil
}

// Operations understood by CheckPayload
const (
	OperationCreateAssertion = "create_assertion"
	OperationCreateSource    = "create_source"
	OperationGenerate        = "generate"
	OperationCreateDocument  = "create_document"
)

// CheckPayload runs every payload-level law for an operation. An assertion's
// own text field is its content, so the raw-text check does not apply there.
func CheckPayload(payload map[string]interface{}, operation string) error {
	if operation != OperationCreateAssertion {
		if err := RejectRawDocumentText(payload); err != nil {
			return err
		}
	}
	if err := RejectTextAsPrimaryInput(payload); err != nil {
		return err
	}
	if err := RejectClientValidityClaims(payload); err != nil {
		return err
	}
	if operation == OperationCreateAssertion {
		return validateAssertionFields(payload)
	}
	return nil
}

func validateAssertionFields(payload map[string]interface{}) error {
	raw, ok := payload["assertion_type"]
	if !ok {
		raw, ok = payload["type"]
	}
	if !ok {
		return NewDomainViolation(CodeMissingAssertionType, "Tipo de afirmação é obrigatório", "")
	}
	kind, _ := raw.(string)
	if !models.AssertionKind(kind).Valid() {
		return NewDomainViolation(CodeInvalidAssertionType,
			"Tipo de afirmação inválido. Válidos: [fato tese fundamento pedido]", "")
	}
	if c, ok := payload["confidence_level"]; ok {
		level, _ := c.(string)
		if !models.ConfidenceLevel(level).Valid() {
			return NewDomainViolation(CodeInvalidConfidence,
				"Nível de confiança inválido. Válidos: [alto medio baixo]", "")
		}
	}
	return nil
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
