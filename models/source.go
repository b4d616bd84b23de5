package models

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// SourceType is the normative category of a legal source
type SourceType string

const (
	SourceConstitution SourceType = "constituicao"
	SourceStatute      SourceType = "lei"
	SourceCaseLaw      SourceType = "jurisprudencia"
	SourceDoctrine     SourceType = "doutrina"
	SourceArgument     SourceType = "argumentacao"
)

// UnknownHierarchyRank is the rank given to types outside the hierarchy
const UnknownHierarchyRank = 99

// SourceTypes lists every source type in hierarchy order
var SourceTypes = []SourceType{
	SourceConstitution,
	SourceStatute,
	SourceCaseLaw,
	SourceDoctrine,
	SourceArgument,
}

// Valid reports whether t is a known source type
func (t SourceType) Valid() bool {
	switch t {
	case SourceConstitution, SourceStatute, SourceCaseLaw, SourceDoctrine, SourceArgument:
		return true
	}
	return false
}

// HierarchyRank returns the normative rank of the type. Lower is more authoritative.
func (t SourceType) HierarchyRank() int {
	switch t {
	case SourceConstitution:
		return 1
	case SourceStatute:
		return 2
	case SourceCaseLaw:
		return 3
	case SourceDoctrine:
		return 4
	case SourceArgument:
		return 5
	default:
		return UnknownHierarchyRank
	}
}

// DisplayName returns the human-readable name of the type
func (t SourceType) DisplayName() string {
	switch t {
	case SourceConstitution:
		return "Constituição Federal"
	case SourceStatute:
		return "Lei"
	case SourceCaseLaw:
		return "Jurisprudência"
	case SourceDoctrine:
		return "Doutrina"
	case SourceArgument:
		return "Argumentação"
	default:
		return string(t)
	}
}

// LegalSource is an immutable citation backing one or more assertions
type LegalSource struct {
	ID        uuid.UUID  `json:"id"`
	Type      SourceType `json:"source_type"`
	Reference string     `json:"reference"`
	Excerpt   string     `json:"excerpt"`
	URL       *string    `json:"url,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// HierarchyRank returns the rank of the source's type
func (s *LegalSource) HierarchyRank() int {
	return s.Type.HierarchyRank()
}

// SortByHierarchy orders sources most authoritative first, then by reference
func SortByHierarchy(sources []*LegalSource) {
	sort.SliceStable(sources, func(i, j int) bool {
		if sources[i].HierarchyRank() != sources[j].HierarchyRank() {
			return sources[i].HierarchyRank() < sources[j].HierarchyRank()
		}
		return sources[i].Reference < sources[j].Reference
	})
}

// SourceTypeInfo describes a source type for catalog listings
type SourceTypeInfo struct {
	Type          SourceType `json:"type"`
	HierarchyRank int        `json:"hierarchy_rank"`
	DisplayName   string     `json:"display_name"`
}

// AssertionSourceLink joins an assertion to a source
type AssertionSourceLink struct {
	ID          uuid.UUID `json:"id"`
	AssertionID uuid.UUID `json:"assertion_id"`
	SourceID    uuid.UUID `json:"source_id"`
	CreatedAt   time.Time `json:"created_at"`
}
