package billing

// =============================================================================
// OCCUPANCY - A tenant's overlap with the billing period
// =============================================================================

// Occupancy computes how many days of the period the tenant occupied their
// apartment, and the resulting ratio in [0,1].
//
// The effective window is the intersection of [moveIn, moveOut-or-periodEnd]
// with the period. A tenant without a move-in date has zero occupancy
// regardless of the period; an empty or inverted intersection also yields
// zero. Day counts are inclusive of both endpoints.
func Occupancy(tenant Tenant, period Period) OccupancyResult {
	result := OccupancyResult{TenantID: tenant.ID}

	totalDays := period.TotalDays()
	if totalDays <= 0 {
		return result
	}
	if tenant.MoveIn.IsZero() {
		return result
	}

	end := period.End
	if !tenant.MoveOut.IsZero() {
		end = tenant.MoveOut.Min(period.End)
	}
	start := tenant.MoveIn.Max(period.Start)

	if end.Before(start) {
		return result
	}

	result.Days = DaysInclusive(start, end)
	result.Ratio = float64(result.Days) / float64(totalDays)
	return result
}

// occupancyWindow returns the tenant's active window clipped to the period,
// and false when there is no overlap. Shared by the WG and water calculators.
func occupancyWindow(tenant Tenant, period Period) (Date, Date, bool) {
	if tenant.MoveIn.IsZero() {
		return Date{}, Date{}, false
	}
	start := tenant.MoveIn.Max(period.Start)
	end := period.End
	if !tenant.MoveOut.IsZero() {
		end = tenant.MoveOut.Min(period.End)
	}
	if end.Before(start) {
		return Date{}, Date{}, false
	}
	return start, end, true
}
