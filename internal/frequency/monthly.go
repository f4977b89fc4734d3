package frequency

// ResolveMonthlyHomes applies a single home-location rule (any of
// Rule1MostActivity .. Rule6Hierarchical, partially applied over their
// rule-specific parameters) to each month's observation bucket,
// keeping only the months that resolved to an unambiguous home. This
// is the Go equivalent of the original's per-month `get_one_dist_month`
// call returning `None` on an unresolved tie: here that is simply the
// month's absence from the returned map, consistent with
// FindMigrations treating a missing month as "not consecutive".
func ResolveMonthlyHomes(byMonth map[int][]Observation, rule func([]Observation) (int, bool)) map[int]int {
	out := make(map[int]int, len(byMonth))
	for month, obs := range byMonth {
		if loc, ok := rule(obs); ok {
			out[month] = loc
		}
	}
	return out
}
