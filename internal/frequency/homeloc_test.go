package frequency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func obsAt(date, hour, tower, district int) Observation {
	return Observation{UserID: "u1", Date: date, Hour: hour, Tower: tower, District: district}
}

func TestMonthIndex(t *testing.T) {
	assert.Equal(t, 0, MonthIndex(1, 2020, 2020))
	assert.Equal(t, 13, MonthIndex(2, 2021, 2020))
}

func TestRule1MostActivity_PicksHighestCount(t *testing.T) {
	obs := []Observation{
		obsAt(1, 10, 100, 5),
		obsAt(1, 11, 100, 5),
		obsAt(2, 10, 200, 7),
	}
	d, ok := Rule1MostActivity(obs)
	assert.True(t, ok)
	assert.Equal(t, 5, d)
}

func TestRule1MostActivity_TieBreaksSmallestID(t *testing.T) {
	obs := []Observation{
		obsAt(1, 10, 100, 9),
		obsAt(2, 10, 200, 3),
	}
	d, ok := Rule1MostActivity(obs)
	assert.True(t, ok)
	assert.Equal(t, 3, d)
}

func TestRule2MostDistinctDays_CountsUniqueDays(t *testing.T) {
	obs := []Observation{
		obsAt(1, 8, 100, 5),
		obsAt(1, 9, 100, 5), // same day, same district, no extra distinct day
		obsAt(2, 8, 100, 5),
		obsAt(3, 8, 200, 7),
	}
	d, ok := Rule2MostDistinctDays(obs)
	assert.True(t, ok)
	assert.Equal(t, 5, d) // 2 distinct days vs 1
}

func TestRule2PropGated_RejectsBelowThreshold(t *testing.T) {
	obs := []Observation{
		obsAt(1, 8, 100, 5),
		obsAt(2, 8, 100, 5),
	}
	_, ok := Rule2PropGated(obs, 0.5, 30) // 2/30 << 0.5
	assert.False(t, ok)
}

func TestRule2PropGated_AcceptsAboveThreshold(t *testing.T) {
	var obs []Observation
	for d := 1; d <= 20; d++ {
		obs = append(obs, obsAt(d, 8, 100, 5))
	}
	district, ok := Rule2PropGated(obs, 0.5, 30) // 20/30 > 0.5
	assert.True(t, ok)
	assert.Equal(t, 5, district)
}

func TestRule3NightHours_IgnoresDaytimeObservations(t *testing.T) {
	obs := []Observation{
		obsAt(1, 12, 100, 9), // daytime, majority count but excluded
		obsAt(1, 13, 100, 9),
		obsAt(1, 14, 100, 9),
		obsAt(1, 3, 200, 4), // night hour
	}
	d, ok := Rule3NightHours(obs)
	assert.True(t, ok)
	assert.Equal(t, 4, d)
}

func TestRule4NearbyExpanded_MapsTowerToDistrict(t *testing.T) {
	obs := []Observation{
		obsAt(1, 10, 100, 1),
		obsAt(2, 10, 100, 1),
		obsAt(3, 10, 50, 1),
	}
	nearby := map[int][]int{100: {101}, 50: {100}}
	towerDistrict := map[int]int{100: 5, 101: 6, 50: 8}
	d, ok := Rule4NearbyExpanded(obs, nearby, towerDistrict)
	assert.True(t, ok)
	assert.Equal(t, 5, d)
}

func TestRule6Hierarchical_ShiftsEarlyHoursToPreviousDay(t *testing.T) {
	obs := []Observation{
		obsAt(1, 23, 100, 5),
		obsAt(2, 1, 100, 5), // hour 1 on day 2 counts toward day 1
		obsAt(3, 10, 100, 5),
		obsAt(4, 10, 200, 7),
	}
	d, ok := Rule6Hierarchical(obs)
	assert.True(t, ok)
	assert.Equal(t, 5, d)
}

func TestRule6Hierarchical_UnresolvedOnPersistentTie(t *testing.T) {
	obs := []Observation{
		obsAt(1, 10, 100, 5),
		obsAt(1, 10, 200, 6),
	}
	_, ok := Rule6Hierarchical(obs)
	assert.False(t, ok)
}
