package constitution

import "errors"

// Flags mirrors the invariant switches exposed through configuration
type Flags struct {
	RequireSourceForAssertion bool
	RequireVersioning         bool
	AllowTextAsPrimary        bool
	AllowDestructiveEdit      bool
}

// ValidateFlags refuses any configuration that would relax an invariant
func ValidateFlags(f Flags) error {
	var errs []error
	if !f.RequireSourceForAssertion {
		errs = append(errs, newPolicyViolation(LawSourceRequired, "REQUIRE_SOURCE_FOR_ASSERTION deve ser true", nil))
	}
	if !f.RequireVersioning {
		errs = append(errs, newPolicyViolation(LawVersioning, "REQUIRE_VERSIONING deve ser true", nil))
	}
	if f.AllowTextAsPrimary {
		errs = append(errs, newPolicyViolation(LawDerivedText, "ALLOW_TEXT_AS_PRIMARY deve ser false", nil))
	}
	if f.AllowDestructiveEdit {
		errs = append(errs, newPolicyViolation(LawVersioning, "ALLOW_DESTRUCTIVE_EDIT deve ser false", nil))
	}
	return errors.Join(errs...)
}
