// Package segment implements the interval algebra over per-location day
// indices: gap filling, run detection, density filtering, adjacent-run
// merging, and overlap resolution (spec stages S¹ through S⁴).
package segment

import "sort"

// Segment is a closed day-index interval [Start, End] associated with
// one location (the association is implicit in which Collection bucket
// holds it).
type Segment struct {
	Start int
	End   int
}

// Len returns the number of days covered by the segment.
func (s Segment) Len() int {
	return s.End - s.Start + 1
}

// Collection maps a location id to its ordered, disjoint list of
// segments (S¹, S², S³, or S⁴ depending on pipeline stage).
type Collection map[int][]Segment

// Locations returns the collection's location ids in ascending order.
func (c Collection) Locations() []int {
	locs := make([]int, 0, len(c))
	for loc := range c {
		locs = append(locs, loc)
	}
	sort.Ints(locs)
	return locs
}

// TotalSegments returns the number of segments across all locations.
func (c Collection) TotalSegments() int {
	n := 0
	for _, segs := range c {
		n += len(segs)
	}
	return n
}

// flattenOthers returns every segment belonging to a location other
// than exclude, across the collection.
func flattenOthers(c Collection, exclude int) []Segment {
	var out []Segment
	for loc, segs := range c {
		if loc == exclude {
			continue
		}
		out = append(out, segs...)
	}
	return out
}

// segmentsFromSortedDays groups a sorted, deduplicated list of day
// indices into maximal contiguous runs and keeps those of length >= k.
// This is the shared core of the segment builder (§4.4) and the
// overlap resolver's re-segmentation step (§4.7).
func segmentsFromSortedDays(days []int, k int) []Segment {
	if len(days) < k {
		return nil
	}
	var segs []Segment
	runStart := days[0]
	prev := days[0]
	for _, d := range days[1:] {
		if d == prev+1 {
			prev = d
			continue
		}
		if prev-runStart+1 >= k {
			segs = append(segs, Segment{Start: runStart, End: prev})
		}
		runStart = d
		prev = d
	}
	if prev-runStart+1 >= k {
		segs = append(segs, Segment{Start: runStart, End: prev})
	}
	return segs
}

// overlapIndex answers "does any interval in this set overlap [a,b]" in
// O(log n), per the design note to avoid per-day set materialization
// when checking a gap against all other-location segments.
type overlapIndex struct {
	starts       []int
	prefixMaxEnd []int
}

func buildOverlapIndex(segs []Segment) overlapIndex {
	sorted := make([]Segment, len(segs))
	copy(sorted, segs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	oi := overlapIndex{
		starts:       make([]int, len(sorted)),
		prefixMaxEnd: make([]int, len(sorted)),
	}
	runningMax := 0
	for i, s := range sorted {
		oi.starts[i] = s.Start
		if i == 0 || s.End > runningMax {
			runningMax = s.End
		}
		oi.prefixMaxEnd[i] = runningMax
	}
	return oi
}

// Overlaps reports whether any indexed interval intersects [a, b].
func (oi overlapIndex) Overlaps(a, b int) bool {
	if len(oi.starts) == 0 {
		return false
	}
	// last index with starts[i] <= b
	idx := sort.Search(len(oi.starts), func(i int) bool { return oi.starts[i] > b }) - 1
	if idx < 0 {
		return false
	}
	return oi.prefixMaxEnd[idx] >= a
}
