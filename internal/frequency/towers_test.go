package frequency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineKM_SameCoordinateIsZero(t *testing.T) {
	d := HaversineKM(60.1699, 24.9384, 60.1699, 24.9384)
	assert.InDelta(t, 0, d, 1e-9)
}

func TestHaversineKM_KnownCities(t *testing.T) {
	// Helsinki to Tampere, roughly 160km as the crow flies.
	d := HaversineKM(60.1699, 24.9384, 61.4978, 23.7610)
	assert.InDelta(t, 160, d, 20)
}

func TestNearbyTowers_OnlyWithinRadius(t *testing.T) {
	towers := []TowerLocation{
		{Tower: 1, Lat: 60.0, Lon: 24.0},
		{Tower: 2, Lat: 60.01, Lon: 24.01}, // very close
		{Tower: 3, Lat: 65.0, Lon: 25.0},   // far away
	}
	nearby := NearbyTowers(towers, 5)
	assert.ElementsMatch(t, []int{2}, nearby[1])
	assert.NotContains(t, nearby, 3)
}
