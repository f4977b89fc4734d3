package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeAdjacent_SingleLocationReturnsEmpty(t *testing.T) {
	segs := Collection{1: {{Start: 0, End: 99}}}
	result := MergeAdjacent(segs)
	assert.Empty(t, result)
}

func TestMergeAdjacent_JoinsAcrossUncoveredGap(t *testing.T) {
	segs := Collection{
		1: {{Start: 0, End: 49}, {Start: 60, End: 99}},
		2: {{Start: 200, End: 259}},
	}
	result := MergeAdjacent(segs)
	assert.Equal(t, []Segment{{Start: 0, End: 99}}, result[1])
}

func TestMergeAdjacent_DoesNotJoinWhenGapCoveredByOther(t *testing.T) {
	segs := Collection{
		1: {{Start: 0, End: 49}, {Start: 60, End: 99}},
		2: {{Start: 52, End: 55}},
	}
	result := MergeAdjacent(segs)
	assert.Equal(t, []Segment{{Start: 0, End: 49}, {Start: 60, End: 99}}, result[1])
}

func TestMergeAdjacent_AdjacentSegmentsAlwaysJoin(t *testing.T) {
	segs := Collection{
		1: {{Start: 0, End: 49}, {Start: 50, End: 99}},
		2: {{Start: 200, End: 259}},
	}
	result := MergeAdjacent(segs)
	assert.Equal(t, []Segment{{Start: 0, End: 99}}, result[1])
}
