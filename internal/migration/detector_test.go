package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/saaga0h/migration-detector/internal/segment"
)

func TestDetect_DropsSingleLocationUser(t *testing.T) {
	s4 := segment.Collection{1: {{Start: 0, End: 99}}}
	assert.Empty(t, Detect(s4, 0))
}

func TestDetect_PairsTwoLocations(t *testing.T) {
	s4 := segment.Collection{
		1: {{Start: 0, End: 99}},
		2: {{Start: 120, End: 259}},
	}
	candidates := Detect(s4, 0)
	assert.Len(t, candidates, 1)
	assert.Equal(t, 1, candidates[0].HomeLoc)
	assert.Equal(t, 2, candidates[0].DestLoc)
}

func TestDetect_StopsAtFirstSatisfyingSegment(t *testing.T) {
	s4 := segment.Collection{
		1: {{Start: 0, End: 99}},
		2: {{Start: 105, End: 150}},
		3: {{Start: 105, End: 150}},
	}
	candidates := Detect(s4, 10)
	assert.Len(t, candidates, 1)
	assert.Equal(t, 2, candidates[0].DestLoc) // location 2 sorts before 3 on tie
}

func TestDetect_AllowsOverlapUpToK(t *testing.T) {
	s4 := segment.Collection{
		1: {{Start: 0, End: 100}},
		2: {{Start: 95, End: 200}}, // 6 days of overlap
	}
	candidates := Detect(s4, 6)
	assert.Len(t, candidates, 1)

	candidates = Detect(s4, 5)
	assert.Empty(t, candidates)
}
