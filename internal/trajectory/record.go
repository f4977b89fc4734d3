// Package trajectory builds per-user location observation records from
// raw (user, date, location) input rows.
package trajectory

import (
	"fmt"
	"sort"

	"github.com/saaga0h/migration-detector/internal/calendar"
)

// ErrDuplicateDay is returned when the same user is observed at more
// than one location on the same calendar date.
var ErrDuplicateDay = fmt.Errorf("trajectory: duplicate day for user")

// Observation is one raw input row: a user observed at a location on a
// calendar date.
type Observation struct {
	UserID   string
	Date     int // YYYYMMDD
	Location int
}

// Record is the observation set O_u for one user: location -> sorted
// day indices on which that location was observed.
type Record map[int][]int

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for loc, days := range r {
		cp := make([]int, len(days))
		copy(cp, days)
		out[loc] = cp
	}
	return out
}

// Locations returns the record's location ids in ascending order.
func (r Record) Locations() []int {
	locs := make([]int, 0, len(r))
	for loc := range r {
		locs = append(locs, loc)
	}
	sort.Ints(locs)
	return locs
}

// Builder accumulates raw observations into per-user records, using a
// calendar index to translate dates into dense day indices.
type Builder struct {
	idx     calendar.Index
	records map[string]Record
	seen    map[string]map[int]int // user -> day index -> location, to detect cross-location duplicates
}

// NewBuilder creates a Builder over the given calendar index.
func NewBuilder(idx calendar.Index) *Builder {
	return &Builder{
		idx:     idx,
		records: make(map[string]Record),
		seen:    make(map[string]map[int]int),
	}
}

// Add ingests one observation. Duplicates of the same (user, date,
// location) are coalesced silently; a (user, date) seen at two
// different locations is rejected with ErrDuplicateDay.
func (b *Builder) Add(obs Observation) error {
	day, ok := b.idx.DateToIndex(obs.Date)
	if !ok {
		return fmt.Errorf("trajectory: date %d out of calendar range", obs.Date)
	}

	userSeen, ok := b.seen[obs.UserID]
	if !ok {
		userSeen = make(map[int]int)
		b.seen[obs.UserID] = userSeen
	}
	if existingLoc, ok := userSeen[day]; ok {
		if existingLoc != obs.Location {
			return fmt.Errorf("%w: user %s date %d has locations %d and %d",
				ErrDuplicateDay, obs.UserID, obs.Date, existingLoc, obs.Location)
		}
		return nil // exact duplicate row, coalesce
	}
	userSeen[day] = obs.Location

	rec, ok := b.records[obs.UserID]
	if !ok {
		rec = make(Record)
		b.records[obs.UserID] = rec
	}
	rec[obs.Location] = append(rec[obs.Location], day)
	return nil
}

// AddAll ingests a batch of observations in order, stopping at the
// first error.
func (b *Builder) AddAll(obs []Observation) error {
	for _, o := range obs {
		if err := b.Add(o); err != nil {
			return err
		}
	}
	return nil
}

// Records returns the finished per-user records, each location's day
// list sorted ascending. Calling Records does not reset the builder.
func (b *Builder) Records() map[string]Record {
	out := make(map[string]Record, len(b.records))
	for user, rec := range b.records {
		cp := rec.Clone()
		for loc := range cp {
			sort.Ints(cp[loc])
		}
		out[user] = cp
	}
	return out
}

// UserIDs returns the user ids seen so far, in sorted order (useful for
// deterministic iteration in the worker pool).
func (b *Builder) UserIDs() []string {
	ids := make([]string, 0, len(b.records))
	for id := range b.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
