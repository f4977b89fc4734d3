package segment

import "sort"

// ResolveOverlaps processes each location's segments independently
// against the other locations' unresolved s3 segments: for every other
// segment whose total intersection with a location's currently-kept
// days exceeds minOverlap days, that intersection is subtracted. The
// surviving days across all of a location's segments are then
// re-segmented, dropping anything below minSegLen.
//
// "Other locations' segments" always means the original s3 input,
// never a partially-resolved result from another location's pass, so
// location order has no effect on the outcome.
func ResolveOverlaps(s3 Collection, minOverlap, minSegLen int) Collection {
	result := make(Collection)
	for _, loc := range s3.Locations() {
		others := flattenOthers(s3, loc)

		var keptDays []int
		for _, seg := range s3[loc] {
			keep := []Segment{seg}
			for _, other := range others {
				keep = subtractIfOverlapExceeds(keep, other, minOverlap)
			}
			for _, iv := range keep {
				for d := iv.Start; d <= iv.End; d++ {
					keptDays = append(keptDays, d)
				}
			}
		}
		if len(keptDays) == 0 {
			continue
		}
		sort.Ints(keptDays)
		resegmented := segmentsFromSortedDays(keptDays, minSegLen)
		if len(resegmented) > 0 {
			result[loc] = resegmented
		}
	}
	return result
}

// subtractIfOverlapExceeds measures the total intersection between the
// (possibly already fragmented) kept intervals and other as a single
// quantity, and only subtracts it from keep when that total exceeds
// minOverlap days. This matches subtracting from a single running day
// set rather than re-testing each fragment's overlap independently.
func subtractIfOverlapExceeds(keep []Segment, other Segment, minOverlap int) []Segment {
	total := 0
	for _, iv := range keep {
		os, oe := max(iv.Start, other.Start), min(iv.End, other.End)
		if os <= oe {
			total += oe - os + 1
		}
	}
	if total <= minOverlap {
		return keep
	}

	out := make([]Segment, 0, len(keep)+1)
	for _, iv := range keep {
		os, oe := max(iv.Start, other.Start), min(iv.End, other.End)
		if os > oe {
			out = append(out, iv)
			continue
		}
		if iv.Start < os {
			out = append(out, Segment{Start: iv.Start, End: os - 1})
		}
		if iv.End > oe {
			out = append(out, Segment{Start: oe + 1, End: iv.End})
		}
	}
	return out
}
