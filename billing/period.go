package billing

import "fmt"

// =============================================================================
// PERIOD - The billing period boundary
// =============================================================================

// Period is an inclusive date range [Start, End]. Every settlement
// calculation is bounded by exactly one period, typically a calendar year.
type Period struct {
	Start Date
	End   Date
}

// CalendarYear returns the period Jan 1 - Dec 31 of the given year.
func CalendarYear(year int) Period {
	return Period{Start: StartOfYear(year), End: EndOfYear(year)}
}

// Contains returns true if the date falls within [Start, End].
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// TotalDays counts the days in the period, both endpoints included.
func (p Period) TotalDays() int {
	return DaysInclusive(p.Start, p.End)
}

// Months enumerates the (year, month) pairs the period touches, in order.
func (p Period) Months() []Date {
	var months []Date
	current := StartOfMonth(p.Start.Year(), p.Start.Month())
	last := StartOfMonth(p.End.Year(), p.End.Month())
	for current.BeforeOrEqual(last) {
		months = append(months, current)
		current = current.AddMonths(1)
	}
	return months
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// =============================================================================
// RANGE VALIDATION
// =============================================================================

// Period length bounds outside of which a statement period is suspicious.
const (
	minPeriodDays = 30
	maxPeriodDays = 400
)

// ValidateDateRange checks a textual start/end pair before any calculation.
//
// Unparseable dates are reported under "start"/"end"; an end date not
// strictly after the start is reported under "range". An unusually short
// (<30 days) or long (>400 days) period is also written into the "range"
// error key rather than the warning list, so a caller that gates on
// IsValid() treats it as blocking. Callers that want to proceed anyway
// must inspect the error set themselves.
func ValidateDateRange(startText, endText string) *ValidationResult {
	result := newValidationResult()

	start, errStart := ParseDate(startText)
	if errStart != nil {
		result.addError("start", fmt.Sprintf("unparseable start date %q", startText))
	}
	end, errEnd := ParseDate(endText)
	if errEnd != nil {
		result.addError("end", fmt.Sprintf("unparseable end date %q", endText))
	}
	if errStart != nil || errEnd != nil {
		return result
	}

	if !end.After(start) {
		result.addError("range", "end date must be after start date")
		return result
	}

	days := DaysInclusive(start, end)
	if days < minPeriodDays {
		result.addError("range", fmt.Sprintf("period is only %d days long", days))
	} else if days > maxPeriodDays {
		result.addError("range", fmt.Sprintf("period is %d days long", days))
	}

	return result
}

// ParsePeriod builds a Period from textual dates. Callers are expected to
// run ValidateDateRange first; ParsePeriod only reports parse failures.
func ParsePeriod(startText, endText string) (Period, error) {
	start, err := ParseDate(startText)
	if err != nil {
		return Period{}, err
	}
	end, err := ParseDate(endText)
	if err != nil {
		return Period{}, err
	}
	return Period{Start: start, End: end}, nil
}
