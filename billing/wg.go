/*
wg.go - Shared-apartment (WG) occupancy factors

PURPOSE:
  Computes, per tenant, the fraction of an apartment-level share they bear
  when several tenants occupy the same apartment during the period,
  overlapping or sequentially. Each day of the period is worth 1/N to each
  of the N tenants active that day; days with no active tenant credit
  nobody. The final factor is day-credits / total period days.

  The day loop is implemented as an interval sweep over move-in/move-out
  boundaries. Within a segment the active set is constant, so crediting
  segmentDays/N per active tenant is identical to the naive per-day loop.

  A legacy month-granularity variant over a whole calendar year is kept:
  a tenant is active in a month if their tenancy touches that month at
  all. It is deliberately coarser than the day-granular form.

SEE ALSO:
  - water.go: uses the same grouping for consumption splitting
*/
package billing

import "sort"

// =============================================================================
// DAY-GRANULAR FACTORS
// =============================================================================

// WGFactors computes each tenant's shared-apartment factor in [0,1] for the
// period. Tenants without any occupancy in the period get factor 0. The
// factors of one apartment's co-tenants sum to 1 exactly when every day of
// the period has at least one active tenant there.
//
// A zero period end date is a caller bug and fails fast with
// ErrMissingPeriodEnd.
func WGFactors(tenants []Tenant, period Period) (map[string]float64, error) {
	if period.End.IsZero() {
		return nil, ErrMissingPeriodEnd
	}

	factors := make(map[string]float64, len(tenants))
	for _, t := range tenants {
		factors[t.ID] = 0
	}

	totalDays := period.TotalDays()
	if totalDays <= 0 {
		return factors, nil
	}

	groups := map[string][]Tenant{}
	for _, t := range tenants {
		groups[t.occupancyGroup()] = append(groups[t.occupancyGroup()], t)
	}

	for _, group := range groups {
		credits := sweepDayCredits(group, period)
		for id, c := range credits {
			factors[id] = c / float64(totalDays)
		}
	}
	return factors, nil
}

// tenantWindow is a tenant's active span as day offsets from period start,
// [start, end] inclusive.
type tenantWindow struct {
	tenantID string
	start    int
	end      int
}

// sweepDayCredits runs the interval sweep for one apartment's tenants and
// returns day-credits per tenant id.
func sweepDayCredits(group []Tenant, period Period) map[string]float64 {
	var windows []tenantWindow
	boundarySet := map[int]struct{}{}

	for _, t := range group {
		start, end, ok := occupancyWindow(t, period)
		if !ok {
			continue
		}
		w := tenantWindow{
			tenantID: t.ID,
			start:    DaysInclusive(period.Start, start) - 1,
			end:      DaysInclusive(period.Start, end) - 1,
		}
		windows = append(windows, w)
		boundarySet[w.start] = struct{}{}
		boundarySet[w.end+1] = struct{}{}
	}
	if len(windows) == 0 {
		return nil
	}

	boundaries := make([]int, 0, len(boundarySet))
	for b := range boundarySet {
		boundaries = append(boundaries, b)
	}
	sort.Ints(boundaries)

	credits := map[string]float64{}
	for i := 0; i+1 < len(boundaries); i++ {
		segStart, segEnd := boundaries[i], boundaries[i+1]-1
		segDays := segEnd - segStart + 1

		var active []string
		for _, w := range windows {
			if w.start <= segStart && segStart <= w.end {
				active = append(active, w.tenantID)
			}
		}
		if len(active) == 0 {
			continue
		}
		perTenant := float64(segDays) / float64(len(active))
		for _, id := range active {
			credits[id] += perTenant
		}
	}
	return credits
}

// =============================================================================
// LEGACY MONTH-GRANULAR FACTORS
// =============================================================================

// WGFactorsForYear computes shared-apartment factors for a whole calendar
// year at month granularity: a tenant is active in a month if their tenancy
// touches the month at all, and each month is worth 1/N to each of the N
// active co-tenants. Kept for statements produced by the older month-based
// calculation.
func WGFactorsForYear(tenants []Tenant, year int) map[string]float64 {
	factors := make(map[string]float64, len(tenants))
	for _, t := range tenants {
		factors[t.ID] = 0
	}

	groups := map[string][]Tenant{}
	for _, t := range tenants {
		groups[t.occupancyGroup()] = append(groups[t.occupancyGroup()], t)
	}

	yearPeriod := CalendarYear(year)
	for _, month := range yearPeriod.Months() {
		monthStart := month
		monthEnd := EndOfMonth(month.Year(), month.Month())

		for _, group := range groups {
			var active []string
			for _, t := range group {
				if activeInRange(t, monthStart, monthEnd) {
					active = append(active, t.ID)
				}
			}
			for _, id := range active {
				factors[id] += 1.0 / float64(len(active)) / 12.0
			}
		}
	}
	return factors
}

// activeInRange reports whether the tenancy interval touches [from, to].
func activeInRange(t Tenant, from, to Date) bool {
	if t.MoveIn.IsZero() || t.MoveIn.After(to) {
		return false
	}
	if !t.MoveOut.IsZero() && t.MoveOut.Before(from) {
		return false
	}
	return true
}
