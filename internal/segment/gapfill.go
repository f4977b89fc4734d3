package segment

import "github.com/saaga0h/migration-detector/internal/trajectory"

// FillMissingDays returns a copy of rec where, for each location, the
// days between two consecutive observed days whose indices differ by
// at most maxGap are filled in (the missing days are treated as if the
// location had been observed there too). Pairs further apart than
// maxGap are left untouched.
func FillMissingDays(rec trajectory.Record, maxGap int) trajectory.Record {
	out := make(trajectory.Record, len(rec))
	for loc, days := range rec {
		if len(days) == 0 {
			out[loc] = nil
			continue
		}
		filled := make([]int, 0, len(days))
		filled = append(filled, days[0])
		for i := 0; i < len(days)-1; i++ {
			a, b := days[i], days[i+1]
			gap := b - a
			if gap > 1 && gap <= maxGap {
				for d := a + 1; d < b; d++ {
					filled = append(filled, d)
				}
			}
			filled = append(filled, b)
		}
		out[loc] = filled
	}
	return out
}
