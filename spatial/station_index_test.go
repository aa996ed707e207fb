package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"bikeflow/domain/entities/station"
)

// MIT campus is the default map center
const (
	centerLat = 42.36027
	centerLon = -71.09415
)

func testStations() []*station.StationData {
	return []*station.StationData{
		station.NewStationData("M32006", "MIT at Mass Ave / Amherst St", 42.358100, -71.093198),
		station.NewStationData("M32011", "Kendall T", 42.362428, -71.084955),
		station.NewStationData("A32000", "Fan Pier", 42.353391, -71.044571),
		station.NewStationData("B32000", "Harvard Square", 42.373268, -71.118579),
		station.NewStationData("X00000", "Nowhere", 0, 0),
		nil,
	}
}

func TestNewStationIndexSkipsInvalidStations(t *testing.T) {
	assert.Equal(t, 4, NewStationIndex(testStations()).Len())
}

func TestWithinRadius(t *testing.T) {
	index := NewStationIndex(testStations())

	assert.Equal(t, []string{"M32006"}, index.WithinRadius(centerLat, centerLon, 0.5))
	assert.Equal(t, []string{"M32006", "M32011"}, index.WithinRadius(centerLat, centerLon, 1))
	assert.Equal(t, []string{"A32000", "B32000", "M32006", "M32011"}, index.WithinRadius(centerLat, centerLon, 5))
}

func TestWithinRadiusNothingClose(t *testing.T) {
	index := NewStationIndex(testStations())

	assert.Empty(t, index.WithinRadius(40.7580, -73.9855, 10))
	assert.Empty(t, index.WithinRadius(centerLat, centerLon, -1))
}
