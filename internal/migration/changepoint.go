package migration

import (
	"sort"

	"github.com/saaga0h/migration-detector/internal/trajectory"
)

// EstimateChangePoint finds the day in [homeEnd, destStart] that best
// separates lingering home-location observations (which should precede
// it) from early destination-location observations (which should
// follow it), per the error function of §4.9. On ties the latest
// minimizing day is returned.
func EstimateChangePoint(original trajectory.Record, homeLoc, destLoc, homeEnd, destStart int) (migrationDay, numErrorDay int) {
	H := windowed(original[homeLoc], homeEnd, destStart)
	D := windowed(original[destLoc], homeEnd, destStart)

	totalH := len(H)
	dLess, hLE := 0, 0 // count of D < m, count of H <= m
	bestErr := -1
	bestM := homeEnd

	for m := homeEnd; m <= destStart; m++ {
		for dLess < len(D) && D[dLess] < m {
			dLess++
		}
		for hLE < totalH && H[hLE] <= m {
			hLE++
		}
		errM := dLess + (totalH - hLE)
		if bestErr == -1 || errM <= bestErr {
			bestErr = errM
			bestM = m
		}
	}
	return bestM, bestErr
}

// windowed returns the subset of a sorted day-index slice falling
// within [lo, hi] inclusive.
func windowed(days []int, lo, hi int) []int {
	start := sort.SearchInts(days, lo)
	end := sort.SearchInts(days, hi+1)
	return days[start:end]
}
