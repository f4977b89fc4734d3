package segment

import (
	"sort"

	"github.com/saaga0h/migration-detector/internal/trajectory"
)

// DensityFilter drops segments whose proportion of actually-observed
// days (from the original, pre-gap-fill record) falls below prop. A
// segment [s, e] is kept when appear(s, e) >= prop * (e - s + 1),
// where appear counts original observation days within the segment.
func DensityFilter(original trajectory.Record, segs Collection, prop float64) Collection {
	result := make(Collection)
	for _, loc := range segs.Locations() {
		days := original[loc]
		var kept []Segment
		for _, seg := range segs[loc] {
			appear := countInRange(days, seg.Start, seg.End)
			if float64(appear) >= prop*float64(seg.Len()) {
				kept = append(kept, seg)
			}
		}
		if len(kept) > 0 {
			result[loc] = kept
		}
	}
	return result
}

// countInRange counts how many entries of the sorted slice sortedDays
// fall within the closed interval [s, e].
func countInRange(sortedDays []int, s, e int) int {
	lo := sort.SearchInts(sortedDays, s)
	hi := sort.SearchInts(sortedDays, e+1)
	return hi - lo
}
