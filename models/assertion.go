package models

import (
	"time"

	"github.com/google/uuid"
)

// AssertionKind is the semantic role of an assertion
type AssertionKind string

const (
	KindFact       AssertionKind = "fato"
	KindThesis     AssertionKind = "tese"
	KindLegalBasis AssertionKind = "fundamento"
	KindRequest    AssertionKind = "pedido"
)

// Valid reports whether k is a known assertion kind
func (k AssertionKind) Valid() bool {
	switch k {
	case KindFact, KindThesis, KindLegalBasis, KindRequest:
		return true
	}
	return false
}

// ConfidenceLevel expresses how strongly an assertion is held
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "alto"
	ConfidenceMedium ConfidenceLevel = "medio"
	ConfidenceLow    ConfidenceLevel = "baixo"
)

// Valid reports whether c is a known confidence level
func (c ConfidenceLevel) Valid() bool {
	switch c {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		return true
	}
	return false
}

// Assertion is the atomic unit of legal content inside a document version
type Assertion struct {
	ID         uuid.UUID       `json:"id"`
	VersionID  uuid.UUID       `json:"document_version_id"`
	Text       string          `json:"text"`
	Kind       AssertionKind   `json:"assertion_type"`
	Confidence ConfidenceLevel `json:"confidence_level"`
	Position   int             `json:"position"`
	CreatedAt  time.Time       `json:"created_at"`

	// Sources is hydrated from the link table, ordered by hierarchy rank
	Sources []*LegalSource `json:"sources"`
}

// AssertionIsValid is the core validity predicate: an assertion stands when
// it cites at least one source or is explicitly marked low confidence.
func AssertionIsValid(sourceCount int, confidence ConfidenceLevel) bool {
	return sourceCount > 0 || confidence == ConfidenceLow
}

// HasSources reports whether at least one source is linked
func (a *Assertion) HasSources() bool {
	return len(a.Sources) > 0
}

// IsValid applies the validity predicate to the hydrated sources
func (a *Assertion) IsValid() bool {
	return AssertionIsValid(len(a.Sources), a.Confidence)
}

// VersionIsValid reports whether a version with the given assertions is valid
func VersionIsValid(assertions []*Assertion) bool {
	if len(assertions) == 0 {
		return false
	}
	for _, a := range assertions {
		if !a.IsValid() {
			return false
		}
	}
	return true
}

// NewAssertion is an assertion not yet persisted, with the sources to link
type NewAssertion struct {
	Text       string
	Kind       AssertionKind
	Confidence ConfidenceLevel
	SourceIDs  []uuid.UUID
}
