package migration

import (
	"github.com/saaga0h/migration-detector/internal/calendar"
	"github.com/saaga0h/migration-detector/internal/segment"
	"github.com/saaga0h/migration-detector/internal/trajectory"
)

// ShortTermParams configures the optional §4.11 displacement flag. A
// zero-value ShortTermParams (Enabled false) leaves every event
// unflagged.
type ShortTermParams struct {
	Enabled bool
	HomeMin int
	HomeMax int
	DestMin int
	DestMax int
}

// Flag reports whether a (home length, destination length) pair falls
// within the configured short-term displacement bounds.
func (p ShortTermParams) Flag(homeLen, destLen int) bool {
	if !p.Enabled {
		return false
	}
	return p.HomeMin <= homeLen && homeLen <= p.HomeMax &&
		p.DestMin <= destLen && destLen <= p.DestMax
}

// FindEvents runs the full §4.8-4.11 chain for one user: candidate
// detection, the max_gap_home_des post-filter, change-point
// estimation, the calendar date join, and the optional short-term
// flag.
func FindEvents(userID string, s4 segment.Collection, original trajectory.Record, idx calendar.Index, overlapAllowance, maxGapHomeDes int, shortTerm ShortTermParams) []Event {
	candidates := Detect(s4, overlapAllowance)

	var events []Event
	for _, c := range candidates {
		gap := c.DestSeg.Start - c.HomeSeg.End
		if gap > maxGapHomeDes {
			continue
		}

		m, errDay := EstimateChangePoint(original, c.HomeLoc, c.DestLoc, c.HomeSeg.End, c.DestSeg.Start)

		ev := Event{
			UserID:       userID,
			HomeLoc:      c.HomeLoc,
			DestLoc:      c.DestLoc,
			HomeSeg:      c.HomeSeg,
			DestSeg:      c.DestSeg,
			MigrationDay: m,
			NumErrorDay:  errDay,
			Uncertainty:  gap - 1,
			ShortTerm:    shortTerm.Flag(c.HomeSeg.Len(), c.DestSeg.Len()),
		}.WithDates(idx)
		events = append(events, ev)
	}
	return events
}
