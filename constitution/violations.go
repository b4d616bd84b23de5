package constitution

import (
	"errors"
	"fmt"
	"time"
)

// Law identifies one of the system invariants
type Law string

const (
	LawDocumentIsNotText   Law = "LEI_1"
	LawSourceRequired      Law = "LEI_2"
	LawVersioning          Law = "LEI_3"
	LawDerivedText         Law = "LEI_4"
	LawStructuredAIOutput  Law = "LEI_5"
	LawSingleFunctionAgent Law = "LEI_6"
	LawJuridicalValidation Law = "LEI_7"
	LawBackendSovereignty  Law = "LEI_8"
)

// Version of the rule set, reported by the health endpoint
const Version = "1.0"

// PolicyViolation is raised when code attempts something the system forbids
// outright (mutating a version, storing final text, trusting client validity).
// It is never user-correctable and must not be swallowed.
type PolicyViolation struct {
	Law       Law                    `json:"law"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *PolicyViolation) Error() string {
	return fmt.Sprintf("[%s] %s", e.Law, e.Message)
}

func newPolicyViolation(law Law, message string, details map[string]interface{}) *PolicyViolation {
	return &PolicyViolation{
		Law:       law,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}

// DomainViolation is a user-correctable rejection with a machine-readable code
type DomainViolation struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Hint     string `json:"hint,omitempty"`
	EntityID string `json:"entity_id,omitempty"`
}

func (e *DomainViolation) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Domain violation codes
const (
	CodeAssertionWithoutSource = "ASSERTION_WITHOUT_SOURCE"
	CodeRenderingBlocked       = "RENDERING_BLOCKED"
	CodeHierarchyViolation     = "HIERARCHY_VIOLATION"
	CodeMissingAssertionType   = "MISSING_ASSERTION_TYPE"
	CodeInvalidAssertionType   = "INVALID_ASSERTION_TYPE"
	CodeInvalidConfidence      = "INVALID_CONFIDENCE"
	CodeInvalidSourceType      = "INVALID_SOURCE_TYPE"
	CodeInvalidStatus          = "INVALID_STATUS"
	CodeInvalidFormat          = "INVALID_FORMAT"
	CodeEmptyVersion           = "EMPTY_VERSION"
	CodeInvalidInput           = "INVALID_INPUT"
)

// NewDomainViolation builds a domain violation
func NewDomainViolation(code, message, hint string) *DomainViolation {
	return &DomainViolation{Code: code, Message: message, Hint: hint}
}

// AsPolicyViolation extracts a policy violation from err
func AsPolicyViolation(err error) (*PolicyViolation, bool) {
	var pv *PolicyViolation
	if errors.As(err, &pv) {
		return pv, true
	}
	return nil, false
}

// AsDomainViolation extracts a domain violation from err
func AsDomainViolation(err error) (*DomainViolation, bool) {
	var dv *DomainViolation
	if errors.As(err, &dv) {
		return dv, true
	}
	return nil, false
}

// IsPolicyViolation reports whether err is or wraps a policy violation
func IsPolicyViolation(err error) bool {
	_, ok := AsPolicyViolation(err)
	return ok
}

// IsDomainViolation reports whether err is or wraps a domain violation
func IsDomainViolation(err error) bool {
	_, ok := AsDomainViolation(err)
	return ok
}
