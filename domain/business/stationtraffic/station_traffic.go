package stationtraffic

import (
	"encoding/json"
	"math"

	"bikeflow/domain/entities/station"
)

const neutralRatio = 0.5

// flowLevels are the values a departure ratio is quantized to. The ratio domain [0, 1] is split in
// len(flowLevels) bins of the same width
var flowLevels = []float64{0, 0.5, 1}

// StationTraffic struct that counts the trips that arrive to and depart from a station inside the active time filter
// + Station: station the counters belong to. Once set, it cannot change
// + Arrivals: amount of trips that end in the station
// + Departures: amount of trips that begin in the station
// + TotalTraffic: Arrivals + Departures
type StationTraffic struct {
	Station      station.StationData `json:"station"`
	Arrivals     int                 `json:"arrivals"`
	Departures   int                 `json:"departures"`
	TotalTraffic int                 `json:"total_traffic"`
}

// NewStationTraffic returns a copy of the given station with its counters set. Negative counters are treated as zero.
func NewStationTraffic(stationData station.StationData, arrivals int, departures int) *StationTraffic {
	arrivals = max(arrivals, 0)
	departures = max(departures, 0)
	return &StationTraffic{
		Station:      stationData,
		Arrivals:     arrivals,
		Departures:   departures,
		TotalTraffic: arrivals + departures,
	}
}

func (st *StationTraffic) GetKey() string {
	return st.Station.GetPrimaryKey()
}

// DepartureRatio returns Departures / TotalTraffic. A station without traffic has a neutral ratio of 0.5
func (st *StationTraffic) DepartureRatio() float64 {
	if st.TotalTraffic <= 0 {
		return neutralRatio
	}
	return float64(st.Departures) / float64(st.TotalTraffic)
}

// FlowBucket quantizes DepartureRatio: 0 for stations that mostly receive bikes, 1 for stations that
// mostly send them and 0.5 for balanced ones
func (st *StationTraffic) FlowBucket() float64 {
	if st.TotalTraffic <= 0 {
		return neutralRatio
	}

	idx := int(math.Floor(st.DepartureRatio() * float64(len(flowLevels))))
	idx = min(max(idx, 0), len(flowLevels)-1)
	return flowLevels[idx]
}

// Merge returns a new StationTraffic with the counters of both
func (st *StationTraffic) Merge(other *StationTraffic) *StationTraffic {
	// sanity check
	if st.GetKey() != other.GetKey() {
		panic("[StationTraffic] cannot merge two StationTraffic with different station")
	}

	return NewStationTraffic(st.Station, st.Arrivals+other.Arrivals, st.Departures+other.Departures)
}

// Copy returns a StationTraffic that does not share memory with the original one
func (st *StationTraffic) Copy() *StationTraffic {
	copied := *st
	return &copied
}

// MarshalJSON adds the departure ratio and the flow bucket, renderers color the markers with them
func (st *StationTraffic) MarshalJSON() ([]byte, error) {
	type stationTrafficAlias StationTraffic
	return json.Marshal(struct {
		*stationTrafficAlias
		DepartureRatio float64 `json:"departure_ratio"`
		FlowBucket     float64 `json:"flow_bucket"`
	}{
		stationTrafficAlias: (*stationTrafficAlias)(st),
		DepartureRatio:      st.DepartureRatio(),
		FlowBucket:          st.FlowBucket(),
	})
}
