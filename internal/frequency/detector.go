package frequency

import "sort"

// MonthlyEvent is a detected migration anchored at month m, the last
// month of the old (home) location run.
type MonthlyEvent struct {
	UserID  string
	Month   int
	HomeLoc int
	DestLoc int
}

// FindMigrations scans a user's month -> home-location sequence (as
// produced by any of the six rules, fed through MonthIndex) for the
// six-month pattern home(m-2)=home(m-1)=home(m) != home(m+1)=home(m+2)
// =home(m+3), reporting an event at month m (the last month of the old
// home) for every anchor m where all six consecutive months are
// present and resolved.
func FindMigrations(userID string, homeByMonth map[int]int) []MonthlyEvent {
	months := make([]int, 0, len(homeByMonth))
	for m := range homeByMonth {
		months = append(months, m)
	}
	sort.Ints(months)

	var events []MonthlyEvent
	for _, m := range months {
		vals := make([]int, 6)
		complete := true
		for i := 0; i < 6; i++ {
			v, ok := homeByMonth[m-2+i]
			if !ok {
				complete = false
				break
			}
			vals[i] = v
		}
		if !complete {
			continue
		}
		if vals[0] == vals[1] && vals[1] == vals[2] &&
			vals[3] == vals[4] && vals[4] == vals[5] &&
			vals[2] != vals[3] {
			events = append(events, MonthlyEvent{
				UserID:  userID,
				Month:   m,
				HomeLoc: vals[2],
				DestLoc: vals[3],
			})
		}
	}
	return events
}
