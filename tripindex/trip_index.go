package tripindex

import (
	"time"

	"bikeflow/domain/entities/trip"
)

const (
	// MinutesPerDay amount of buckets of a MinuteIndex. Bucket 0 is 00:00 and bucket 1439 is 23:59
	MinutesPerDay = 24 * 60
	// AnyTime time filter that selects every trip regardless of its time of day
	AnyTime = -1
	// WindowRadius amount of minutes considered before and after the center of a window
	WindowRadius = 60
)

// MinuteIndex groups trips by the minute of the day of one of their timestamps
type MinuteIndex [MinutesPerDay][]*trip.TripData

// TripIndex contains two MinuteIndex built from the same trips:
// + Departures: trips grouped by the minute in which they start
// + Arrivals: trips grouped by the minute in which they end
// Once built it's read only
type TripIndex struct {
	Departures *MinuteIndex
	Arrivals   *MinuteIndex
	size       int
}

// MinutesSinceMidnight returns hour*60 + minute of the given time. The wall clock of the time's own
// location is used, seconds are discarded
func MinutesSinceMidnight(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// BuildIndex appends every trip to the departures bucket of its start minute and to the arrivals
// bucket of its end minute. Trips are neither sorted nor deduplicated, nil trips are skipped
func BuildIndex(trips []*trip.TripData) *TripIndex {
	index := &TripIndex{
		Departures: &MinuteIndex{},
		Arrivals:   &MinuteIndex{},
	}

	for _, tripData := range trips {
		if tripData == nil {
			continue
		}
		startedMinute := MinutesSinceMidnight(tripData.StartedAt)
		endedMinute := MinutesSinceMidnight(tripData.EndedAt)

		index.Departures[startedMinute] = append(index.Departures[startedMinute], tripData)
		index.Arrivals[endedMinute] = append(index.Arrivals[endedMinute], tripData)
		index.size++
	}

	return index
}

// Len returns the amount of trips indexed
func (ti *TripIndex) Len() int {
	return ti.size
}

// Trips returns every indexed trip ordered by departure minute
func (ti *TripIndex) Trips() []*trip.TripData {
	return ti.Departures.FilterByWindow(AnyTime)
}
