package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveOverlaps_SubtractsMutualOverlap(t *testing.T) {
	s3 := Collection{
		1: {{Start: 0, End: 120}},
		2: {{Start: 100, End: 260}},
	}
	result := ResolveOverlaps(s3, 0, 30)
	assert.Equal(t, []Segment{{Start: 0, End: 99}}, result[1])
	assert.Equal(t, []Segment{{Start: 121, End: 260}}, result[2])
}

func TestResolveOverlaps_IgnoresOverlapAtOrBelowThreshold(t *testing.T) {
	s3 := Collection{
		1: {{Start: 0, End: 100}},
		2: {{Start: 95, End: 200}}, // overlap [95,100] = 6 days
	}
	result := ResolveOverlaps(s3, 6, 30)
	assert.Equal(t, []Segment{{Start: 0, End: 100}}, result[1])
	assert.Equal(t, []Segment{{Start: 95, End: 200}}, result[2])
}

func TestResolveOverlaps_DropsSegmentBelowMinLenAfterSubtraction(t *testing.T) {
	s3 := Collection{
		1: {{Start: 0, End: 50}},
		2: {{Start: 40, End: 200}}, // overlap [40,50] leaves only [0,39], len 40
	}
	result := ResolveOverlaps(s3, 0, 41)
	assert.NotContains(t, result, 1)
}

func TestResolveOverlaps_NoOverlapLeavesSegmentsUntouched(t *testing.T) {
	s3 := Collection{
		1: {{Start: 0, End: 99}},
		2: {{Start: 120, End: 259}},
	}
	result := ResolveOverlaps(s3, 0, 30)
	assert.Equal(t, s3[1], result[1])
	assert.Equal(t, s3[2], result[2])
}
