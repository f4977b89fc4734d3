package frequency

import "sort"

// Observation is one hourly reading: a user seen at a tower (mapped to
// a district) on a given day index and hour of day. Date is expressed
// as a dense day index from a calendar.Index, not a raw YYYYMMDD
// value, so that day arithmetic (e.g. rule 6's previous-day shift)
// never has to cross month/year boundaries by hand.
type Observation struct {
	UserID   string
	Date     int
	Hour     int
	Tower    int
	District int
}

// MonthIndex computes the dense month index used to key home-location
// sequences: month + 12*(year - startYear).
func MonthIndex(month, year, startYear int) int {
	return month + 12*(year-startYear)
}

func isNightHour(h int) bool {
	return (h >= 0 && h <= 9) || (h >= 19 && h <= 24)
}

// modeCandidates returns the district id(s) achieving the maximum
// count in counts, sorted ascending. An empty counts map yields nil.
func modeCandidates(counts map[int]int) []int {
	if len(counts) == 0 {
		return nil
	}
	maxCount := -1
	for _, c := range counts {
		if c > maxCount {
			maxCount = c
		}
	}
	var cands []int
	for d, c := range counts {
		if c == maxCount {
			cands = append(cands, d)
		}
	}
	sort.Ints(cands)
	return cands
}

// filterByMax narrows cands to those with the highest fallback count,
// used to break a tie using a secondary count map.
func filterByMax(cands []int, fallback map[int]int) []int {
	if len(cands) <= 1 {
		return cands
	}
	maxCount := -1
	for _, d := range cands {
		if c := fallback[d]; c > maxCount {
			maxCount = c
		}
	}
	var out []int
	for _, d := range cands {
		if fallback[d] == maxCount {
			out = append(out, d)
		}
	}
	return out
}

// resolveModal picks the mode of counts, narrowing ties against each
// fallback count map in order; if a tie still survives every
// fallback, it is broken deterministically by the smallest id. Rules
// 1 through 5 always produce a home location this way.
func resolveModal(counts map[int]int, fallbacks ...map[int]int) (int, bool) {
	cands := modeCandidates(counts)
	if len(cands) == 0 {
		return 0, false
	}
	for _, fb := range fallbacks {
		if len(cands) == 1 {
			break
		}
		cands = filterByMax(cands, fb)
	}
	return cands[0], true
}

// resolveModalStrict behaves like resolveModal but reports unresolved
// (ok=false) instead of guessing when a tie survives every fallback,
// matching rule 6's explicit unresolved-on-persistent-tie semantics
// (`top1_dist = None` in the original's `get_one_dist_month`).
func resolveModalStrict(counts map[int]int, fallbacks ...map[int]int) (int, bool) {
	cands := modeCandidates(counts)
	if len(cands) == 0 {
		return 0, false
	}
	for _, fb := range fallbacks {
		if len(cands) == 1 {
			break
		}
		cands = filterByMax(cands, fb)
	}
	if len(cands) != 1 {
		return 0, false
	}
	return cands[0], true
}

// Rule1MostActivity picks the district with the most observations in
// the month, breaking ties by smallest district id.
func Rule1MostActivity(obs []Observation) (int, bool) {
	counts := map[int]int{}
	for _, o := range obs {
		counts[o.District]++
	}
	return resolveModal(counts)
}

func distinctDayCounts(obs []Observation) map[int]int {
	seen := map[int]map[int]struct{}{}
	for _, o := range obs {
		days, ok := seen[o.District]
		if !ok {
			days = map[int]struct{}{}
			seen[o.District] = days
		}
		days[o.Date] = struct{}{}
	}
	counts := make(map[int]int, len(seen))
	for d, days := range seen {
		counts[d] = len(days)
	}
	return counts
}

// Rule2MostDistinctDays picks the district observed on the most
// distinct days in the month, breaking ties by smallest district id.
func Rule2MostDistinctDays(obs []Observation) (int, bool) {
	return resolveModal(distinctDayCounts(obs))
}

// Rule2PropGated behaves like Rule2MostDistinctDays but additionally
// requires the winning district's distinct-day count to reach
// prop*daysInMonth; otherwise the user has no home that month.
func Rule2PropGated(obs []Observation, prop float64, daysInMonth int) (int, bool) {
	counts := distinctDayCounts(obs)
	district, ok := resolveModal(counts)
	if !ok {
		return 0, false
	}
	if float64(counts[district]) < prop*float64(daysInMonth) {
		return 0, false
	}
	return district, true
}

// Rule3NightHours restricts observations to night hours ({0..9} union
// {19..24}) before applying Rule1MostActivity.
func Rule3NightHours(obs []Observation) (int, bool) {
	return Rule1MostActivity(nightOnly(obs))
}

func nightOnly(obs []Observation) []Observation {
	var out []Observation
	for _, o := range obs {
		if isNightHour(o.Hour) {
			out = append(out, o)
		}
	}
	return out
}

// Rule4NearbyExpanded expands every observation's tower to itself plus
// its configured neighbors, picks the top tower by observation count
// (ties broken by smallest tower id), and maps that tower to its
// district.
func Rule4NearbyExpanded(obs []Observation, nearby map[int][]int, towerDistrict map[int]int) (int, bool) {
	counts := map[int]int{}
	for _, o := range obs {
		counts[o.Tower]++
		for _, nt := range nearby[o.Tower] {
			counts[nt]++
		}
	}
	topTower, ok := resolveModal(counts)
	if !ok {
		return 0, false
	}
	district, ok := towerDistrict[topTower]
	return district, ok
}

// Rule5NightAndNearby combines the night-hour restriction of Rule3
// with the tower-expansion of Rule4.
func Rule5NightAndNearby(obs []Observation, nearby map[int][]int, towerDistrict map[int]int) (int, bool) {
	return Rule4NearbyExpanded(nightOnly(obs), nearby, towerDistrict)
}

// Rule6Hierarchical resolves a monthly home location through a three
// level modal chain: per (day, hour) modal district (falling back to
// that day's modal, then the month's modal), aggregated to a daily
// modal (falling back to the month's modal), aggregated to a monthly
// modal (no further fallback). Observations at hours 0-8 are assigned
// to the previous day before any aggregation, matching the convention
// that a night out doesn't register as the following day's home.
func Rule6Hierarchical(obs []Observation) (int, bool) {
	type cell struct {
		day  int
		hour int
	}

	cellCounts := map[cell]map[int]int{}
	dailyCounts := map[int]map[int]int{}
	monthlyCounts := map[int]int{}

	for _, o := range obs {
		day := o.Date
		if o.Hour <= 8 {
			day--
		}
		c := cell{day: day, hour: o.Hour}
		if cellCounts[c] == nil {
			cellCounts[c] = map[int]int{}
		}
		cellCounts[c][o.District]++
		if dailyCounts[day] == nil {
			dailyCounts[day] = map[int]int{}
		}
		dailyCounts[day][o.District]++
		monthlyCounts[o.District]++
	}

	hourlyHomeByDay := map[int]map[int]int{} // day -> resolved-district -> vote count
	for c, counts := range cellCounts {
		home, ok := resolveModalStrict(counts, dailyCounts[c.day], monthlyCounts)
		if !ok {
			continue
		}
		if hourlyHomeByDay[c.day] == nil {
			hourlyHomeByDay[c.day] = map[int]int{}
		}
		hourlyHomeByDay[c.day][home]++
	}

	monthlyVotes := map[int]int{}
	for _, votes := range hourlyHomeByDay {
		home, ok := resolveModalStrict(votes, monthlyCounts)
		if !ok {
			continue
		}
		monthlyVotes[home]++
	}

	return resolveModalStrict(monthlyVotes)
}
