package billing

import (
	"encoding/json"
	"time"
)

// =============================================================================
// DATE - Day-granular point in time
// =============================================================================

// Date is a calendar day. All settlement arithmetic is day-granular;
// hours and time zones never enter the calculation.
type Date struct {
	Time time.Time
}

const (
	// isoLayout is the machine format: 2024-01-31.
	isoLayout = "2006-01-02"

	// germanLayout is the localized format: 31.1.2024. Go accepts
	// zero-padded day/month on input against this layout and strips the
	// padding on output, which matches the documented display behavior.
	germanLayout = "2.1.2006"
)

// Constructors
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts either textual encoding: ISO (2024-01-31) or
// German (31.01.2024 / 31.1.2024).
func ParseDate(s string) (Date, error) {
	if t, err := time.Parse(isoLayout, s); err == nil {
		return Date{Time: t}, nil
	}
	t, err := time.Parse(germanLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// Comparison
func (d Date) Before(other Date) bool { return d.normalize().Before(other.normalize()) }
func (d Date) Equal(other Date) bool  { return d.normalize().Equal(other.normalize()) }
func (d Date) After(other Date) bool  { return d.normalize().After(other.normalize()) }
func (d Date) BeforeOrEqual(other Date) bool { return d.Before(other) || d.Equal(other) }
func (d Date) AfterOrEqual(other Date) bool  { return d.After(other) || d.Equal(other) }

func (d Date) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (d Date) AddDays(n int) Date   { return Date{Time: d.Time.AddDate(0, 0, n)} }
func (d Date) AddMonths(n int) Date { return Date{Time: d.Time.AddDate(0, n, 0)} }

// Properties
func (d Date) Year() int         { return d.Time.Year() }
func (d Date) Month() time.Month { return d.Time.Month() }
func (d Date) Day() int          { return d.Time.Day() }
func (d Date) IsZero() bool      { return d.Time.IsZero() }

func (d Date) ISO() string    { return d.normalize().Format(isoLayout) }
func (d Date) German() string { return d.normalize().Format(germanLayout) }

func (d Date) String() string { return d.ISO() }

// MarshalJSON encodes the date as an ISO string; the zero date encodes as "".
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + d.ISO() + `"`), nil
}

// UnmarshalJSON accepts either textual encoding; "" decodes to the zero date.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Min returns the earlier of two dates, Max the later.
func (d Date) Min(other Date) Date {
	if d.Before(other) {
		return d
	}
	return other
}

func (d Date) Max(other Date) Date {
	if d.After(other) {
		return d
	}
	return other
}

// =============================================================================
// FORMAT CONVERSION
// =============================================================================
// Converters never fail loudly: malformed input yields "" and the caller's
// validation layer turns that into a field-level error.

// GermanToISO converts 31.01.2024 (or 31.1.2024) to 2024-01-31.
// Returns "" for unparseable input.
func GermanToISO(s string) string {
	t, err := time.Parse(germanLayout, s)
	if err != nil {
		return ""
	}
	return t.Format(isoLayout)
}

// ISOToGerman converts 2024-01-31 to 31.1.2024 (leading zeros stripped).
// Returns "" for unparseable input.
func ISOToGerman(s string) string {
	t, err := time.Parse(isoLayout, s)
	if err != nil {
		return ""
	}
	return t.Format(germanLayout)
}

// =============================================================================
// DATE UTILITIES
// =============================================================================

// DaysInclusive counts days from a to b counting both endpoints:
// DaysInclusive(x, x) == 1. Inverted ranges count as 0.
func DaysInclusive(from, to Date) int {
	if to.Before(from) {
		return 0
	}
	return int(to.normalize().Sub(from.normalize()).Hours()/24) + 1
}

func StartOfYear(year int) Date { return NewDate(year, time.January, 1) }
func EndOfYear(year int) Date   { return NewDate(year, time.December, 31) }

func StartOfMonth(year int, month time.Month) Date { return NewDate(year, month, 1) }

func EndOfMonth(year int, month time.Month) Date {
	t := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	return Date{Time: t}
}
