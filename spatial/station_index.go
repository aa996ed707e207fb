package spatial

import (
	"math"
	"sort"

	"github.com/tidwall/rtree"

	"bikeflow/domain/entities/station"
)

const (
	kmPerDegreeLatitude = 111.32
	// minCosLatitude avoids huge longitude spans close to the poles
	minCosLatitude = 0.01
)

// StationIndex answers "which stations are close to this point" questions
type StationIndex struct {
	tree *rtree.RTree
	size int
}

// NewStationIndex creates an R-tree with the given stations. Stations without valid coordinates are ignored
func NewStationIndex(stations []*station.StationData) *StationIndex {
	tree := &rtree.RTree{}
	size := 0

	// For points, min and max are the same [lat, lon]
	for _, stationData := range stations {
		if stationData == nil || !stationData.HasValidCoordinates() {
			continue
		}
		point := [2]float64{stationData.Latitude, stationData.Longitude}
		tree.Insert(point, point, stationData)
		size++
	}

	return &StationIndex{tree: tree, size: size}
}

func (si *StationIndex) Len() int {
	return si.size
}

// WithinRadius returns the short names of the stations at most radiusKm kilometers away from the point,
// sorted by short name
func (si *StationIndex) WithinRadius(latitude float64, longitude float64, radiusKm float64) []string {
	if radiusKm < 0 {
		return []string{}
	}

	latDelta := radiusKm / kmPerDegreeLatitude
	lonDelta := radiusKm / (kmPerDegreeLatitude * math.Max(math.Cos(latitude*math.Pi/180), minCosLatitude))

	result := []string{}
	si.tree.Search(
		[2]float64{latitude - latDelta, longitude - lonDelta},
		[2]float64{latitude + latDelta, longitude + lonDelta},
		func(min, max [2]float64, data interface{}) bool {
			stationData, ok := data.(*station.StationData)
			if ok && stationData.DistanceTo(latitude, longitude) <= radiusKm {
				result = append(result, stationData.ShortName)
			}
			return true
		},
	)

	sort.Strings(result)
	return result
}
