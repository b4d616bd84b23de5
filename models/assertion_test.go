package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssertionValidity(t *testing.T) {
	source := &LegalSource{Type: SourceStatute, Reference: "CPC, art. 319"}

	tests := []struct {
		name       string
		sources    []*LegalSource
		confidence ConfidenceLevel
		want       bool
	}{
		{"high with source", []*LegalSource{source}, ConfidenceHigh, true},
		{"medium with source", []*LegalSource{source}, ConfidenceMedium, true},
		{"low with source", []*LegalSource{source}, ConfidenceLow, true},
		{"low without source", nil, ConfidenceLow, true},
		{"high without source", nil, ConfidenceHigh, false},
		{"medium without source", nil, ConfidenceMedium, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Assertion{Confidence: tt.confidence, Sources: tt.sources}
			assert.Equal(t, tt.want, a.IsValid())
			assert.Equal(t, len(tt.sources) > 0 || tt.confidence == ConfidenceLow, a.IsValid())
		})
	}
}

func TestVersionIsValid(t *testing.T) {
	valid := &Assertion{Confidence: ConfidenceLow}
	invalid := &Assertion{Confidence: ConfidenceHigh}

	assert.False(t, VersionIsValid(nil), "empty version is never valid")
	assert.True(t, VersionIsValid([]*Assertion{valid}))
	assert.False(t, VersionIsValid([]*Assertion{valid, invalid}))
}

func TestSourceTypeHierarchy(t *testing.T) {
	for i, st := range SourceTypes {
		assert.Equal(t, i+1, st.HierarchyRank())
		assert.True(t, st.Valid())
	}
	assert.Equal(t, UnknownHierarchyRank, SourceType("parecer").HierarchyRank())
	assert.False(t, SourceType("parecer").Valid())
	assert.Equal(t, "Jurisprudência", SourceCaseLaw.DisplayName())
}

func TestEnumsAreClosed(t *testing.T) {
	assert.True(t, KindLegalBasis.Valid())
	assert.False(t, AssertionKind("opiniao").Valid())
	assert.True(t, ConfidenceMedium.Valid())
	assert.False(t, ConfidenceLevel("high").Valid())
	assert.True(t, DocumentFinalized.Valid())
	assert.False(t, DocumentStatus("archived").Valid())
	assert.True(t, FormatHTML.Valid())
	assert.False(t, RenderFormat("rtf").Valid())
}
