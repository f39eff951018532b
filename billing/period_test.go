package billing_test

import (
	"testing"

	"github.com/hauswart/settlement-engine/billing"
)

// =============================================================================
// DATE RANGE VALIDATION
// =============================================================================

func TestValidateDateRange_FullYearIsValid(t *testing.T) {
	result := billing.ValidateDateRange("01.01.2024", "31.12.2024")
	if !result.IsValid() {
		t.Errorf("full year reported invalid: %v", result.Errors)
	}
}

func TestValidateDateRange_MixedEncodingsAccepted(t *testing.T) {
	result := billing.ValidateDateRange("2024-01-01", "31.12.2024")
	if !result.IsValid() {
		t.Errorf("mixed encodings reported invalid: %v", result.Errors)
	}
}

func TestValidateDateRange_EndBeforeStart(t *testing.T) {
	// GIVEN: End date preceding the start date
	// WHEN: Validating the range
	// THEN: A "range" error is reported and the result is invalid

	result := billing.ValidateDateRange("31.12.2024", "01.01.2024")
	if result.IsValid() {
		t.Fatal("inverted range reported valid")
	}
	if _, ok := result.Errors["range"]; !ok {
		t.Errorf("expected range error, got %v", result.Errors)
	}
}

func TestValidateDateRange_EqualDatesAreInvalid(t *testing.T) {
	result := billing.ValidateDateRange("01.01.2024", "01.01.2024")
	if result.IsValid() {
		t.Fatal("zero-length range reported valid")
	}
}

func TestValidateDateRange_UnparseableDatesAreFieldErrors(t *testing.T) {
	result := billing.ValidateDateRange("bogus", "2024-12-31")
	if result.IsValid() {
		t.Fatal("unparseable start reported valid")
	}
	if _, ok := result.Errors["start"]; !ok {
		t.Errorf("expected start error, got %v", result.Errors)
	}
	if _, ok := result.Errors["end"]; ok {
		t.Errorf("end should not be flagged: %v", result.Errors)
	}
}

func TestValidateDateRange_ShortPeriodBlocksValidity(t *testing.T) {
	// A period under 30 days is only a plausibility concern, but it lands
	// in the error set and therefore fails IsValid. Callers that gate on
	// IsValid treat it as blocking; that coupling is load-bearing.

	result := billing.ValidateDateRange("01.01.2024", "15.01.2024")
	if result.IsValid() {
		t.Fatal("15-day period reported valid")
	}
	if _, ok := result.Errors["range"]; !ok {
		t.Errorf("expected range entry for short period, got %v", result.Errors)
	}
}

func TestValidateDateRange_LongPeriodBlocksValidity(t *testing.T) {
	result := billing.ValidateDateRange("01.01.2024", "31.12.2025")
	if result.IsValid() {
		t.Fatal("two-year period reported valid")
	}
	if _, ok := result.Errors["range"]; !ok {
		t.Errorf("expected range entry for long period, got %v", result.Errors)
	}
}

func TestParsePeriod_BuildsInclusivePeriod(t *testing.T) {
	p, err := billing.ParsePeriod("01.04.2024", "2024-06-30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.TotalDays() != 91 {
		t.Errorf("April-June 2024 = %d days, want 91", p.TotalDays())
	}
}
