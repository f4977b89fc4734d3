package frequency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindMigrations_DetectsSixMonthPattern(t *testing.T) {
	homeByMonth := map[int]int{
		0: 5, 1: 5, 2: 5,
		3: 7, 4: 7, 5: 7,
	}
	events := FindMigrations("u1", homeByMonth)
	require.Len(t, events, 1)
	assert.Equal(t, 2, events[0].Month)
	assert.Equal(t, 5, events[0].HomeLoc)
	assert.Equal(t, 7, events[0].DestLoc)
}

func TestFindMigrations_NoEventWhenIncomplete(t *testing.T) {
	homeByMonth := map[int]int{
		0: 5, 1: 5, 2: 5,
		4: 7, 5: 7, // month 3 missing, breaks consecutiveness
	}
	events := FindMigrations("u1", homeByMonth)
	assert.Empty(t, events)
}

func TestFindMigrations_NoEventWhenNoChange(t *testing.T) {
	homeByMonth := map[int]int{
		0: 5, 1: 5, 2: 5, 3: 5, 4: 5, 5: 5,
	}
	events := FindMigrations("u1", homeByMonth)
	assert.Empty(t, events)
}
