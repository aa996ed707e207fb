package trafficview

import (
	"fmt"
	"time"

	"bikeflow/aggregator"
	"bikeflow/domain/business/stationtraffic"
	"bikeflow/domain/entities"
	"bikeflow/tripindex"
)

const (
	snapshotType = "station-traffic"
	anyTimeLabel = "(any time)"
	clockLayout  = "3:04 PM"
)

// Snapshot is the traffic of every station for a time filter, it's what the map renders
// + Metadata: identifies the snapshot
// + TimeFilter: tripindex.AnyTime or the center minute of the window
// + Label: TimeFilter as shown next to the slider
// + Mode: filter mode used to count trips
// + MaxTotalTraffic: biggest TotalTraffic of the snapshot, marker sizes are relative to it
// + Stations: traffic of each station
type Snapshot struct {
	Metadata        entities.Metadata                `json:"metadata"`
	TimeFilter      int                              `json:"time_filter"`
	Label           string                           `json:"label"`
	Mode            aggregator.FilterMode            `json:"mode"`
	MaxTotalTraffic int                              `json:"max_total_traffic"`
	Stations        []*stationtraffic.StationTraffic `json:"stations"`
}

func newSnapshot(city string, timeFilter int, mode aggregator.FilterMode, stations []*stationtraffic.StationTraffic) *Snapshot {
	maxTotalTraffic := 0
	for _, st := range stations {
		maxTotalTraffic = max(maxTotalTraffic, st.TotalTraffic)
	}

	return &Snapshot{
		Metadata:        entities.NewMetadata(city, snapshotType, viewStr),
		TimeFilter:      timeFilter,
		Label:           FormatTimeFilter(timeFilter),
		Mode:            mode,
		MaxTotalTraffic: maxTotalTraffic,
		Stations:        stations,
	}
}

// FormatTimeFilter returns "(any time)" for tripindex.AnyTime and a 12-hour clock like "3:04 PM" for a minute of the day
func FormatTimeFilter(timeFilter int) string {
	if timeFilter == tripindex.AnyTime {
		return anyTimeLabel
	}
	return time.Date(0, time.January, 1, 0, timeFilter, 0, 0, time.UTC).Format(clockLayout)
}

// RoutingKey returns the key used to publish the snapshot: traffic.city.timeFilter
func (s *Snapshot) RoutingKey() string {
	timeFilter := "any"
	if s.TimeFilter != tripindex.AnyTime {
		timeFilter = fmt.Sprintf("%04d", s.TimeFilter)
	}
	return fmt.Sprintf("traffic.%s.%s", s.Metadata.GetCity(), timeFilter)
}

// Only returns a copy of the snapshot with the stations whose short name is in shortNames
func (s *Snapshot) Only(shortNames []string) *Snapshot {
	keep := make(map[string]bool, len(shortNames))
	for _, shortName := range shortNames {
		keep[shortName] = true
	}

	filtered := *s
	filtered.Stations = make([]*stationtraffic.StationTraffic, 0, len(shortNames))
	filtered.MaxTotalTraffic = 0
	for _, st := range s.Stations {
		if keep[st.GetKey()] {
			filtered.Stations = append(filtered.Stations, st.Copy())
			filtered.MaxTotalTraffic = max(filtered.MaxTotalTraffic, st.TotalTraffic)
		}
	}
	return &filtered
}

func (s *Snapshot) copy() *Snapshot {
	copied := *s
	copied.Stations = make([]*stationtraffic.StationTraffic, len(s.Stations))
	for idx := range s.Stations {
		copied.Stations[idx] = s.Stations[idx].Copy()
	}
	return &copied
}
