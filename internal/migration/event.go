package migration

import (
	"github.com/saaga0h/migration-detector/internal/calendar"
	"github.com/saaga0h/migration-detector/internal/segment"
)

// Event is one fully resolved, dated migration event ready for output.
type Event struct {
	UserID      string
	HomeLoc     int
	DestLoc     int
	HomeSeg     segment.Segment
	DestSeg     segment.Segment
	MigrationDay int
	NumErrorDay int
	Uncertainty int
	ShortTerm   bool

	MigrationDate         int
	HomeStartDate         int
	HomeEndDate           int
	DestinationStartDate  int
	DestinationEndDate    int
}

// WithDates fills in the YYYYMMDD-dated fields of an event from a
// calendar index, completing the §4.10 join.
func (e Event) WithDates(idx calendar.Index) Event {
	e.MigrationDate = idx.MustIndexToDate(e.MigrationDay)
	e.HomeStartDate = idx.MustIndexToDate(e.HomeSeg.Start)
	e.HomeEndDate = idx.MustIndexToDate(e.HomeSeg.End)
	e.DestinationStartDate = idx.MustIndexToDate(e.DestSeg.Start)
	e.DestinationEndDate = idx.MustIndexToDate(e.DestSeg.End)
	return e
}
