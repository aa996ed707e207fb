package tripindex

import (
	"fmt"

	"bikeflow/domain/entities/trip"
)

// Window is a circular range of minutes [Start, End). When Start > End the window wraps past midnight
type Window struct {
	Start int
	End   int
}

// ValidateTimeFilter returns ErrInvalidTimeFilter if timeFilter is not AnyTime nor a minute of the day
func ValidateTimeFilter(timeFilter int) error {
	if timeFilter == AnyTime {
		return nil
	}
	if timeFilter < 0 || timeFilter >= MinutesPerDay {
		return fmt.Errorf("%w: %d", ErrInvalidTimeFilter, timeFilter)
	}
	return nil
}

// NewWindow returns the window of WindowRadius minutes around center. The minute at End is not part of it
func NewWindow(center int) Window {
	return Window{
		Start: normalizeMinute(center - WindowRadius),
		End:   normalizeMinute(center + WindowRadius),
	}
}

// Wraps returns true if the window crosses midnight
func (w Window) Wraps() bool {
	return w.Start > w.End
}

// Len returns the amount of minutes covered by the window
func (w Window) Len() int {
	if w.Wraps() {
		return MinutesPerDay - w.Start + w.End
	}
	return w.End - w.Start
}

// Contains returns true if minute is part of the window
func (w Window) Contains(minute int) bool {
	minute = normalizeMinute(minute)
	if w.Wraps() {
		return minute >= w.Start || minute < w.End
	}
	return w.Start <= minute && minute < w.End
}

// FilterByWindow returns the trips of the window centered at center, ordered by bucket and keeping the
// insertion order inside each bucket. AnyTime returns every trip of the index
func (mi *MinuteIndex) FilterByWindow(center int) []*trip.TripData {
	if center == AnyTime {
		return mi.flatten(0, MinutesPerDay, nil)
	}

	window := NewWindow(center)
	if window.Wraps() {
		size := mi.Count(window.Start, MinutesPerDay) + mi.Count(0, window.End)
		beforeMidnight := mi.flatten(window.Start, MinutesPerDay, make([]*trip.TripData, 0, size))
		return mi.flatten(0, window.End, beforeMidnight)
	}
	return mi.flatten(window.Start, window.End, nil)
}

// Count returns the amount of trips in buckets [from, to)
func (mi *MinuteIndex) Count(from int, to int) int {
	total := 0
	for minute := from; minute < to; minute++ {
		total += len(mi[minute])
	}
	return total
}

// flatten appends the trips of buckets [from, to) to dst
func (mi *MinuteIndex) flatten(from int, to int, dst []*trip.TripData) []*trip.TripData {
	if dst == nil {
		dst = make([]*trip.TripData, 0, mi.Count(from, to))
	}
	for minute := from; minute < to; minute++ {
		dst = append(dst, mi[minute]...)
	}
	return dst
}

func normalizeMinute(minute int) int {
	return ((minute % MinutesPerDay) + MinutesPerDay) % MinutesPerDay
}
