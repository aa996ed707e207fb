package trip

import (
	"time"
)

// TripData struct that contains the trip data
// + RideID: identifier of the ride, empty if the source does not have it
// + StartStationID: short name of the station in which the trip begins
// + EndStationID: short name of the station in which the trip ends
// + StartedAt: moment in which the trip begins, in the city's local time
// + EndedAt: moment in which the trip ends, in the city's local time
type TripData struct {
	RideID         string    `json:"ride_id,omitempty"`
	StartStationID string    `json:"start_station_id"`
	EndStationID   string    `json:"end_station_id"`
	StartedAt      time.Time `json:"started_at"`
	EndedAt        time.Time `json:"ended_at"`
}

func NewTripData(startStationID string, endStationID string, startedAt time.Time, endedAt time.Time) *TripData {
	return &TripData{
		StartStationID: startStationID,
		EndStationID:   endStationID,
		StartedAt:      startedAt,
		EndedAt:        endedAt,
	}
}

// GetStartStationID returns the join key used to count departures
func (td *TripData) GetStartStationID() string {
	return td.StartStationID
}

// GetEndStationID returns the join key used to count arrivals
func (td *TripData) GetEndStationID() string {
	return td.EndStationID
}
