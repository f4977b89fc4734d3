package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/saaga0h/migration-detector/internal/trajectory"
)

func TestFillMissingDays_FillsShortGap(t *testing.T) {
	rec := trajectory.Record{
		1: {0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20,
			21, 22, 23, 24, 25, 26, 27, 28, 29, 30, 31, 32, 33, 34, 35, 36, 37, 38, 39,
			40, 41, 42, 43, 44, 45, 46, 47, 48, 49, 50, 55, 56, 57, 58, 59, 60, 61, 62,
			63, 64, 65, 66, 67, 68, 69, 70, 71, 72, 73, 74, 75, 76, 77, 78, 79, 80},
	}
	filled := FillMissingDays(rec, 7)
	assert.Equal(t, []int{51, 52, 53, 54}, filled[1][51-0:55-0])
	assert.Equal(t, 0, filled[1][0])
	assert.Equal(t, 80, filled[1][len(filled[1])-1])
}

func TestFillMissingDays_LeavesLargeGapIntact(t *testing.T) {
	rec := trajectory.Record{1: {0, 20}}
	filled := FillMissingDays(rec, 7)
	assert.Equal(t, []int{0, 20}, filled[1])
}

func TestFillMissingDays_FillsGapOfExactlyK(t *testing.T) {
	rec := trajectory.Record{1: {0, 8}}
	filled := FillMissingDays(rec, 8)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8}, filled[1])
}

func TestFillMissingDays_Idempotent(t *testing.T) {
	rec := trajectory.Record{1: {0, 3, 9, 40}}
	once := FillMissingDays(rec, 7)
	twice := FillMissingDays(once, 7)
	assert.Equal(t, once[1], twice[1])
}

func TestFillMissingDays_SingleDay(t *testing.T) {
	rec := trajectory.Record{1: {5}}
	filled := FillMissingDays(rec, 7)
	assert.Equal(t, []int{5}, filled[1])
}

func TestFillMissingDays_IndependentAcrossLocations(t *testing.T) {
	rec := trajectory.Record{
		1: {0, 5},
		2: {100, 103},
	}
	filled := FillMissingDays(rec, 5)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, filled[1])
	assert.Equal(t, []int{100, 101, 102, 103}, filled[2])
}
