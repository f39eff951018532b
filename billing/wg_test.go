package billing_test

import (
	"errors"
	"testing"
	"time"

	"github.com/hauswart/settlement-engine/billing"
)

// =============================================================================
// DAY-GRANULAR WG FACTORS
// =============================================================================

func TestWGFactors_SoleTenantFullPeriod(t *testing.T) {
	tenants := []billing.Tenant{
		tenant("a", "apt1", date(2020, time.January, 1), noDate, 50),
	}
	factors, err := billing.WGFactors(tenants, year2024())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approxEqual(factors["a"], 1.0) {
		t.Errorf("factor = %f, want 1.0", factors["a"])
	}
}

func TestWGFactors_TwoOverlappingCoTenantsSplitEvenly(t *testing.T) {
	// GIVEN: Two tenants sharing apt1 for the whole year
	// WHEN: Computing WG factors
	// THEN: 0.5 each, summing to 1

	tenants := []billing.Tenant{
		tenant("a", "apt1", date(2020, time.January, 1), noDate, 50),
		tenant("b", "apt1", date(2021, time.March, 1), noDate, 50),
	}
	factors, err := billing.WGFactors(tenants, year2024())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approxEqual(factors["a"], 0.5) || !approxEqual(factors["b"], 0.5) {
		t.Errorf("factors = %f / %f, want 0.5 each", factors["a"], factors["b"])
	}
}

func TestWGFactors_SequentialTenantsSumToOneWhenNoGap(t *testing.T) {
	// GIVEN: Tenant a moves out June 30, tenant b moves in July 1 (2024)
	// WHEN: Computing WG factors over the full year
	// THEN: Factors are 182/366 and 184/366 and sum to exactly 1

	tenants := []billing.Tenant{
		tenant("a", "apt1", date(2020, time.January, 1), date(2024, time.June, 30), 50),
		tenant("b", "apt1", date(2024, time.July, 1), noDate, 50),
	}
	factors, err := billing.WGFactors(tenants, year2024())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approxEqual(factors["a"], 182.0/366.0) {
		t.Errorf("factor a = %f, want %f", factors["a"], 182.0/366.0)
	}
	if !approxEqual(factors["b"], 184.0/366.0) {
		t.Errorf("factor b = %f, want %f", factors["b"], 184.0/366.0)
	}
	if !approxEqual(factors["a"]+factors["b"], 1.0) {
		t.Errorf("factors sum to %f, want 1.0", factors["a"]+factors["b"])
	}
}

func TestWGFactors_VacancyCreditsNobody(t *testing.T) {
	// GIVEN: The apartment is empty in the second half of the year
	// WHEN: Computing WG factors
	// THEN: The sole tenant's factor reflects only the occupied half

	tenants := []billing.Tenant{
		tenant("a", "apt1", date(2020, time.January, 1), date(2024, time.June, 30), 50),
	}
	factors, err := billing.WGFactors(tenants, year2024())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approxEqual(factors["a"], 182.0/366.0) {
		t.Errorf("factor = %f, want %f", factors["a"], 182.0/366.0)
	}
}

func TestWGFactors_PartialOverlapMatchesNaiveDayLoop(t *testing.T) {
	// GIVEN: Three tenants with staggered windows in one apartment
	// WHEN: Computing via the interval sweep and via a naive per-day loop
	// THEN: Results are identical

	tenants := []billing.Tenant{
		tenant("a", "apt1", date(2024, time.January, 1), date(2024, time.August, 15), 50),
		tenant("b", "apt1", date(2024, time.March, 10), date(2024, time.October, 1), 50),
		tenant("c", "apt1", date(2024, time.September, 20), noDate, 50),
	}
	period := year2024()

	factors, err := billing.WGFactors(tenants, period)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	naive := naiveDayFactors(tenants, period)
	for _, tn := range tenants {
		if !approxEqual(factors[tn.ID], naive[tn.ID]) {
			t.Errorf("tenant %s: sweep %f != naive %f", tn.ID, factors[tn.ID], naive[tn.ID])
		}
	}
}

// naiveDayFactors is the reference per-day implementation the sweep must match.
func naiveDayFactors(tenants []billing.Tenant, period billing.Period) map[string]float64 {
	credits := map[string]float64{}
	total := period.TotalDays()

	for d := period.Start; d.BeforeOrEqual(period.End); d = d.AddDays(1) {
		var active []string
		for _, tn := range tenants {
			if tn.MoveIn.IsZero() || tn.MoveIn.After(d) {
				continue
			}
			if !tn.MoveOut.IsZero() && tn.MoveOut.Before(d) {
				continue
			}
			active = append(active, tn.ID)
		}
		for _, id := range active {
			credits[id] += 1.0 / float64(len(active))
		}
	}

	factors := map[string]float64{}
	for _, tn := range tenants {
		factors[tn.ID] = credits[tn.ID] / float64(total)
	}
	return factors
}

func TestWGFactors_SingletonApartmentsHandledUniformly(t *testing.T) {
	// Tenants without an apartment link form their own groups.
	tenants := []billing.Tenant{
		tenant("a", "", date(2020, time.January, 1), noDate, 50),
		tenant("b", "", date(2020, time.January, 1), noDate, 50),
	}
	factors, err := billing.WGFactors(tenants, year2024())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approxEqual(factors["a"], 1.0) || !approxEqual(factors["b"], 1.0) {
		t.Errorf("unlinked tenants should not split: %f / %f", factors["a"], factors["b"])
	}
}

func TestWGFactors_MissingEndDateFailsFast(t *testing.T) {
	tenants := []billing.Tenant{
		tenant("a", "apt1", date(2020, time.January, 1), noDate, 50),
	}
	_, err := billing.WGFactors(tenants, billing.Period{Start: date(2024, time.January, 1)})
	if !errors.Is(err, billing.ErrMissingPeriodEnd) {
		t.Errorf("expected ErrMissingPeriodEnd, got %v", err)
	}
}

// =============================================================================
// LEGACY MONTH-GRANULAR FACTORS
// =============================================================================

func TestWGFactorsForYear_FullYearSoleTenant(t *testing.T) {
	tenants := []billing.Tenant{
		tenant("a", "apt1", date(2020, time.January, 1), noDate, 50),
	}
	factors := billing.WGFactorsForYear(tenants, 2024)
	if !approxEqual(factors["a"], 1.0) {
		t.Errorf("factor = %f, want 1.0", factors["a"])
	}
}

func TestWGFactorsForYear_MonthTouchCountsWholeMonth(t *testing.T) {
	// GIVEN: Tenant b moves in on June 15; tenant a occupies all year
	// WHEN: Computing month-granular factors for 2024
	// THEN: June counts as shared even though b was only present half of it

	tenants := []billing.Tenant{
		tenant("a", "apt1", date(2020, time.January, 1), noDate, 50),
		tenant("b", "apt1", date(2024, time.June, 15), noDate, 50),
	}
	factors := billing.WGFactorsForYear(tenants, 2024)

	// a: 5 whole months + 7 shared months = (5 + 7/2) / 12
	if !approxEqual(factors["a"], (5.0+3.5)/12.0) {
		t.Errorf("factor a = %f, want %f", factors["a"], (5.0+3.5)/12.0)
	}
	// b: 7 shared months = 3.5 / 12
	if !approxEqual(factors["b"], 3.5/12.0) {
		t.Errorf("factor b = %f, want %f", factors["b"], 3.5/12.0)
	}
}
