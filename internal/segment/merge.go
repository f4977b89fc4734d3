package segment

// MergeAdjacent joins consecutive segments of the same location across
// a gap when no other location's segment occupies any day of that gap.
// A user with at most one location is not a migrant candidate and
// yields an empty Collection. Segments within a location are assumed sorted and
// disjoint (the output of FindSegments / DensityFilter guarantees
// this).
func MergeAdjacent(segs Collection) Collection {
	if len(segs) <= 1 {
		return Collection{}
	}

	result := make(Collection)
	for _, loc := range segs.Locations() {
		list := segs[loc]
		if len(list) == 0 {
			continue
		}
		if len(list) == 1 {
			result[loc] = []Segment{list[0]}
			continue
		}

		oi := buildOverlapIndex(flattenOthers(segs, loc))

		merged := make([]Segment, 0, len(list))
		current := list[0]
		for _, next := range list[1:] {
			gapStart, gapEnd := current.End+1, next.Start-1
			if gapStart > gapEnd || !oi.Overlaps(gapStart, gapEnd) {
				current.End = next.End
				continue
			}
			merged = append(merged, current)
			current = next
		}
		merged = append(merged, current)
		result[loc] = merged
	}
	return result
}
