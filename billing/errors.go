/*
errors.go - Error taxonomy for the settlement core

PURPOSE:
  Three kinds of failure, handled differently:

  1. Parse errors  - malformed date text. Low-level converters return an
     empty sentinel; validators turn that into field-keyed messages.
  2. Validation results - bad data (mismatched cost columns, inverted
     ranges, missing dates). Collected into a ValidationResult; the core
     reports and lets the caller decide, it never fails the calculation.
  3. Usage errors - caller contract violations (e.g. a date-range call
     without an end date). These fail fast with a sentinel error.

SEE ALSO:
  - period.go: ValidateDateRange
  - wg.go:     ErrMissingPeriodEnd usage
*/
package billing

import "errors"

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrMissingPeriodEnd is returned when the date-range form of a
	// calculation is called without an end date. This is a caller bug,
	// not bad data.
	ErrMissingPeriodEnd = errors.New("period end date is required")

	// ErrColumnMismatch is returned when the parallel cost columns
	// (names, amounts, policies) differ in length.
	ErrColumnMismatch = errors.New("cost item columns differ in length")
)

// =============================================================================
// VALIDATION RESULT - Structured, non-throwing validation
// =============================================================================

// ValidationResult collects field-keyed errors and free-form warnings.
// IsValid is true only when Errors is empty; warnings alone do not
// invalidate, except where a check deliberately writes its warning into
// the error set (see ValidateDateRange).
type ValidationResult struct {
	Errors   map[string]string
	Warnings []string
}

func newValidationResult() *ValidationResult {
	return &ValidationResult{Errors: map[string]string{}}
}

func (v *ValidationResult) addError(field, msg string) {
	if _, taken := v.Errors[field]; !taken {
		v.Errors[field] = msg
	}
}

func (v *ValidationResult) addWarning(msg string) {
	v.Warnings = append(v.Warnings, msg)
}

// IsValid reports whether the error set is empty.
func (v *ValidationResult) IsValid() bool { return len(v.Errors) == 0 }

// Merge folds another result into this one. Existing field errors win.
func (v *ValidationResult) Merge(other *ValidationResult) {
	if other == nil {
		return
	}
	for field, msg := range other.Errors {
		v.addError(field, msg)
	}
	v.Warnings = append(v.Warnings, other.Warnings...)
}
