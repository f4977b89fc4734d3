package segment

import "github.com/saaga0h/migration-detector/internal/trajectory"

// FindSegments groups each location's (gap-filled) day list into
// maximal contiguous runs and keeps only runs of at least minSegLen
// days. A location with fewer than minSegLen filled days overall is
// skipped entirely; its run, if any, could never clear the threshold.
func FindSegments(rec trajectory.Record, minSegLen int) Collection {
	result := make(Collection)
	for _, loc := range rec.Locations() {
		days := rec[loc]
		if len(days) < minSegLen {
			continue
		}
		segs := segmentsFromSortedDays(days, minSegLen)
		if len(segs) > 0 {
			result[loc] = segs
		}
	}
	return result
}
