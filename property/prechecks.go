package property

import (
	"fmt"

	"github.com/hauswart/settlement-engine/billing"
)

// =============================================================================
// PRE-CHECKS - Validation before a statement run
// =============================================================================
// The allocator itself stays silent about data gaps; everything a landlord
// should review before generating statements is collected here.

// CheckMeterCoverage warns about meters with no readings inside the period.
// Such meters contribute zero consumption to the allocation, which is easy
// to miss on the finished statement.
func CheckMeterCoverage(meters []billing.WaterMeter, readings []billing.MeterReading, period billing.Period) []string {
	read := map[string]bool{}
	for _, r := range readings {
		if period.Contains(r.ReadingDate) {
			read[r.MeterID] = true
		}
	}

	var warnings []string
	for _, m := range meters {
		if read[m.ID] {
			continue
		}
		label := m.ID
		if m.CustomID != "" {
			label = m.CustomID
		}
		warnings = append(warnings, fmt.Sprintf("meter %s (apartment %s) has no readings in the billing period", label, m.ApartmentID))
	}
	return warnings
}

// ValidateStatementInput runs every pre-check for a statement run:
// period plausibility, tenant contract data, and meter coverage.
// Tenant data gaps are warnings; the calculation handles them (zero
// occupancy), but the landlord should know.
func ValidateStatementInput(input StatementInput) *billing.ValidationResult {
	result := billing.ValidateDateRange(input.Period.Start.ISO(), input.Period.End.ISO())

	for _, t := range input.Tenants {
		if t.MoveIn.IsZero() {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("tenant %s has no move-in date and will receive zero occupancy", t.Name))
			continue
		}
		if !t.MoveOut.IsZero() && t.MoveOut.Before(t.MoveIn) {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("tenant %s has a move-out date before the move-in date", t.Name))
		}
	}

	result.Warnings = append(result.Warnings, CheckMeterCoverage(input.Meters, input.Readings, input.Period)...)
	return result
}
