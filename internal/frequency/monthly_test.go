package frequency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveMonthlyHomes_DropsUnresolvedMonths(t *testing.T) {
	byMonth := map[int][]Observation{
		0: {obsAt(1, 10, 100, 5), obsAt(1, 10, 200, 6)}, // persistent tie at every level, drops
		1: {obsAt(1, 10, 100, 5), obsAt(1, 11, 100, 5)}, // resolves to 5
	}
	homes := ResolveMonthlyHomes(byMonth, Rule6Hierarchical)
	assert.NotContains(t, homes, 0)
	assert.Equal(t, 5, homes[1])
}

func TestResolveMonthlyHomes_TieBreaksDeterministically(t *testing.T) {
	byMonth := map[int][]Observation{
		0: {obsAt(1, 10, 100, 9), obsAt(2, 10, 200, 3)}, // 1-1 tie, rule 1 breaks by smallest id
	}
	homes := ResolveMonthlyHomes(byMonth, Rule1MostActivity)
	assert.Equal(t, 3, homes[0])
}
