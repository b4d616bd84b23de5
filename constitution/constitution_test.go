package constitution

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"lexdraft-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRejectRawDocumentText(t *testing.T) {
	long := strings.Repeat("a", MaxInlineTextLength+1)

	tests := []struct {
		name    string
		payload map[string]interface{}
		wantErr bool
	}{
		{"short text allowed", map[string]interface{}{"text": "curto"}, false},
		{"exactly at threshold", map[string]interface{}{"body": strings.Repeat("b", MaxInlineTextLength)}, false},
		{"long content", map[string]interface{}{"content": long}, true},
		{"long locale key", map[string]interface{}{"conteudo": long}, true},
		{"long non-text key ignored", map[string]interface{}{"title": long}, false},
		{"non-string value ignored", map[string]interface{}{"texto": 12345}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RejectRawDocumentText(tt.payload)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			pv, ok := AsPolicyViolation(err)
			require.True(t, ok)
			assert.Equal(t, LawDocumentIsNotText, pv.Law)
		})
	}
}

func TestRequireSource(t *testing.T) {
	assert.NoError(t, RequireSource(1, models.ConfidenceHigh))
	assert.NoError(t, RequireSource(0, models.ConfidenceLow))

	err := RequireSource(0, models.ConfidenceMedium)
	dv, ok := AsDomainViolation(err)
	require.True(t, ok)
	assert.Equal(t, CodeAssertionWithoutSource, dv.Code)
	assert.False(t, IsPolicyViolation(err))
}

func TestForbidVersionMutation(t *testing.T) {
	for _, op := range []string{"update_version", "EDIT", "modifyAssertions", "patch", "replace_text"} {
		err := ForbidVersionMutation(op)
		pv, ok := AsPolicyViolation(err)
		require.True(t, ok, op)
		assert.Equal(t, LawVersioning, pv.Law)
	}
	assert.NoError(t, ForbidVersionMutation("create_version"))
}

func TestForbidVersionDeletionAlwaysFails(t *testing.T) {
	for _, id := range []string{"", "00000000-0000-0000-0000-000000000000", "anything"} {
		err := ForbidVersionDeletion(id)
		require.Error(t, err)
		assert.True(t, IsPolicyViolation(err))
		assert.False(t, IsDomainViolation(err))
	}
}

func TestRequireRenderableAssertions(t *testing.T) {
	linked := &models.Assertion{Position: 1, Confidence: models.ConfidenceHigh, Sources: []*models.LegalSource{{Type: models.SourceStatute}}}
	lowNoSource := &models.Assertion{Position: 2, Confidence: models.ConfidenceLow}
	highNoSource := &models.Assertion{Position: 3, Confidence: models.ConfidenceHigh}

	assert.NoError(t, RequireRenderableAssertions([]*models.Assertion{linked, lowNoSource}))

	err := RequireRenderableAssertions([]*models.Assertion{linked, highNoSource})
	dv, ok := AsDomainViolation(err)
	require.True(t, ok)
	assert.Equal(t, CodeRenderingBlocked, dv.Code)
	assert.Contains(t, dv.Message, "3")

	err = RequireRenderableAssertions(nil)
	dv, ok = AsDomainViolation(err)
	require.True(t, ok)
	assert.Equal(t, CodeEmptyVersion, dv.Code)
}

func TestValidateAgentOutput(t *testing.T) {
	assert.NoError(t, ValidateAgentOutput(map[string]interface{}{"assertions": []interface{}{}}))

	err := ValidateAgentOutput(map[string]interface{}{"assertions": nil, "complete_document": "..."})
	pv, ok := AsPolicyViolation(err)
	require.True(t, ok)
	assert.Equal(t, LawStructuredAIOutput, pv.Law)
	assert.Equal(t, "complete_document", pv.Details["forbidden_key"])

	err = ValidateAgentOutput(map[string]interface{}{"items": []interface{}{}})
	assert.True(t, IsPolicyViolation(err))
}

func TestValidateHierarchy(t *testing.T) {
	ok := []models.SourceType{models.SourceConstitution, models.SourceStatute, models.SourceStatute, models.SourceCaseLaw, models.SourceDoctrine}
	assert.NoError(t, ValidateHierarchy(ok))
	assert.NoError(t, ValidateHierarchy(nil))
	assert.NoError(t, ValidateHierarchy([]models.SourceType{models.SourceArgument}))

	err := ValidateHierarchy([]models.SourceType{models.SourceCaseLaw, models.SourceConstitution})
	dv, isDomain := AsDomainViolation(err)
	require.True(t, isDomain)
	assert.Equal(t, CodeHierarchyViolation, dv.Code)
}

func TestRejectClientValidityClaims(t *testing.T) {
	for _, key := range []string{"is_valid", "force_save", "bypass_checks", "juridically_valid"} {
		err := RejectClientValidityClaims(map[string]interface{}{key: true})
		pv, ok := AsPolicyViolation(err)
		require.True(t, ok, key)
		assert.Equal(t, LawBackendSovereignty, pv.Law)
	}
	assert.NoError(t, RejectClientValidityClaims(map[string]interface{}{"text": "x"}))
}

func TestCheckPayloadCreateAssertion(t *testing.T) {
	long := strings.Repeat("x", 300)
	assert.NoError(t, CheckPayload(map[string]interface{}{
		"text":             long,
		"assertion_type":   "fundamento",
		"confidence_level": "alto",
	}, OperationCreateAssertion))

	err := CheckPayload(map[string]interface{}{"text": "x"}, OperationCreateAssertion)
	dv, ok := AsDomainViolation(err)
	require.True(t, ok)
	assert.Equal(t, CodeMissingAssertionType, dv.Code)

	err = CheckPayload(map[string]interface{}{"text": "x", "assertion_type": "opiniao"}, OperationCreateAssertion)
	dv, ok = AsDomainViolation(err)
	require.True(t, ok)
	assert.Equal(t, CodeInvalidAssertionType, dv.Code)

	err = CheckPayload(map[string]interface{}{"text": "x", "assertion_type": "fato", "is_valid": true}, OperationCreateAssertion)
	assert.True(t, IsPolicyViolation(err))

	err = CheckPayload(map[string]interface{}{"content": long}, OperationCreateDocument)
	assert.True(t, IsPolicyViolation(err))

	err = CheckPayload(map[string]interface{}{"final_text": "x"}, OperationGenerate)
	pv, ok := AsPolicyViolation(err)
	require.True(t, ok)
	assert.Equal(t, LawDerivedText, pv.Law)
}

func TestViolationsSurviveWrapping(t *testing.T) {
	wrapped := fmt.Errorf("delete version: %w", ForbidVersionDeletion("v1"))
	assert.True(t, IsPolicyViolation(wrapped))

	var pv *PolicyViolation
	require.True(t, errors.As(wrapped, &pv))
	assert.Equal(t, "v1", pv.Details["version_id"])
}

func TestValidateFlags(t *testing.T) {
	assert.NoError(t, ValidateFlags(Flags{RequireSourceForAssertion: true, RequireVersioning: true}))

	err := ValidateFlags(Flags{RequireSourceForAssertion: false, RequireVersioning: true, AllowDestructiveEdit: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REQUIRE_SOURCE_FOR_ASSERTION")
	assert.Contains(t, err.Error(), "ALLOW_DESTRUCTIVE_EDIT")
}
