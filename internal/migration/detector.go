// Package migration implements the migration-candidate detector
// (§4.8), the change-point estimator (§4.9), and the post-filter and
// short-term displacement flag (§4.10, §4.11) over a resolved segment
// collection.
package migration

import (
	"sort"

	"github.com/saaga0h/migration-detector/internal/segment"
)

// Candidate is one (home, destination) segment pairing produced by
// Detect, not yet validated against max_gap_home_des or assigned a
// change point.
type Candidate struct {
	HomeLoc int
	DestLoc int
	HomeSeg segment.Segment
	DestSeg segment.Segment
}

type locatedSegment struct {
	loc int
	seg segment.Segment
}

// Detect flattens a user's resolved segments (S⁴) into one list,
// sorted by (segment.Start, segment.End, location), and walks it
// looking for a following segment of a different location within K
// days of overlap. Users with 0 or 1 surviving locations never yield
// candidates.
func Detect(s4 segment.Collection, overlapAllowance int) []Candidate {
	if len(s4) < 2 {
		return nil
	}

	var entries []locatedSegment
	for loc, segs := range s4 {
		for _, s := range segs {
			entries = append(entries, locatedSegment{loc: loc, seg: s})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.seg.Start != b.seg.Start {
			return a.seg.Start < b.seg.Start
		}
		if a.seg.End != b.seg.End {
			return a.seg.End < b.seg.End
		}
		return a.loc < b.loc
	})

	var candidates []Candidate
	for i, curr := range entries {
		for j := i + 1; j < len(entries); j++ {
			next := entries[j]
			if next.loc == curr.loc {
				continue
			}
			if next.seg.Start-curr.seg.End >= -overlapAllowance+1 {
				candidates = append(candidates, Candidate{
					HomeLoc: curr.loc,
					DestLoc: next.loc,
					HomeSeg: curr.seg,
					DestSeg: next.seg,
				})
				break
			}
		}
	}
	return candidates
}
