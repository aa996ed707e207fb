package aggregator

import (
	"fmt"

	"github.com/bluele/gcache"
	log "github.com/sirupsen/logrus"

	"bikeflow/domain/business/stationtraffic"
	"bikeflow/domain/entities/station"
	"bikeflow/domain/entities/trip"
	"bikeflow/metrics"
	"bikeflow/tripindex"
)

type FilterMode string

const (
	// FilterModeBucketed counts arrivals in the window of the arrivals index and departures in the
	// window of the departures index
	FilterModeBucketed FilterMode = "bucketed"
	// FilterModeOverlap counts a trip, both as arrival and departure, if its start or its end is at most
	// WindowRadius minutes away from the center. It scans every trip
	FilterModeOverlap FilterMode = "overlap"

	defaultCacheSize = 256
	aggregatorStr    = "aggregator"
)

type Config struct {
	Mode      FilterMode `yaml:"mode" validate:"omitempty,oneof=bucketed overlap"`
	CacheSize int        `yaml:"cache_size" validate:"gte=0"`
}

// Aggregator computes the traffic of every station for a time filter. Stations and trips are fixed at
// construction, so the result for a given time filter never changes and it's cached
type Aggregator struct {
	config   Config
	stations []*station.StationData
	index    *tripindex.TripIndex
	cache    gcache.Cache
}

func NewAggregator(config Config, stations []*station.StationData, index *tripindex.TripIndex) (*Aggregator, error) {
	if config.Mode == "" {
		config.Mode = FilterModeBucketed
	}
	if config.Mode != FilterModeBucketed && config.Mode != FilterModeOverlap {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFilterMode, config.Mode)
	}
	if index == nil {
		return nil, ErrMissingTripIndex
	}
	if config.CacheSize <= 0 {
		config.CacheSize = defaultCacheSize
	}

	return &Aggregator{
		config:   config,
		stations: stations,
		index:    index,
		cache:    gcache.New(config.CacheSize).LRU().Build(),
	}, nil
}

func (a *Aggregator) getLogMessage(method string, message string, err error) string {
	if err != nil {
		return fmt.Sprintf("[component: %s][mode: %s][method: %s][status: ERROR] %s: %s", aggregatorStr, a.config.Mode, method, message, err.Error())
	}
	return fmt.Sprintf("[component: %s][mode: %s][method: %s][status: OK] %s", aggregatorStr, a.config.Mode, method, message)
}

func (a *Aggregator) GetMode() FilterMode {
	return a.config.Mode
}

// Aggregate returns a new StationTraffic for each station with the arrivals and departures that
// happened inside the time filter. The returned values can be modified freely by the caller
func (a *Aggregator) Aggregate(timeFilter int) ([]*stationtraffic.StationTraffic, error) {
	if err := tripindex.ValidateTimeFilter(timeFilter); err != nil {
		return nil, err
	}

	if cached, err := a.cache.Get(timeFilter); err == nil {
		metrics.AggregationCache.WithLabelValues("hit").Inc()
		return copyTraffic(cached.([]*stationtraffic.StationTraffic)), nil
	}
	metrics.AggregationCache.WithLabelValues("miss").Inc()

	arrivals, departures := FilterTrips(a.index, a.config.Mode, timeFilter)
	result := AggregateStations(
		a.stations,
		CountByStation(arrivals, (*trip.TripData).GetEndStationID),
		CountByStation(departures, (*trip.TripData).GetStartStationID),
	)

	if err := a.cache.Set(timeFilter, result); err != nil {
		log.Warn(a.getLogMessage("Aggregate", "error caching result", err))
	}
	log.Debug(a.getLogMessage("Aggregate", fmt.Sprintf("time filter %d: %d arrivals, %d departures", timeFilter, len(arrivals), len(departures)), nil))

	return copyTraffic(result), nil
}

// FilterTrips returns the trips that count as arrivals and as departures for the time filter
func FilterTrips(index *tripindex.TripIndex, mode FilterMode, timeFilter int) ([]*trip.TripData, []*trip.TripData) {
	if mode == FilterModeOverlap {
		overlapping := filterByOverlap(index.Trips(), timeFilter)
		return overlapping, overlapping
	}
	return index.Arrivals.FilterByWindow(timeFilter), index.Departures.FilterByWindow(timeFilter)
}

// CountByStation returns how many trips belong to each station. Trips without station are skipped
func CountByStation(trips []*trip.TripData, stationKey func(*trip.TripData) string) map[string]int {
	counter := make(map[string]int)
	for _, tripData := range trips {
		if tripData == nil {
			continue
		}
		key := stationKey(tripData)
		if key == "" {
			continue
		}
		counter[key]++
	}
	return counter
}

// AggregateStations returns a new StationTraffic per station with the counters found for its short name.
// Stations without counters get zero, counters of unknown stations are ignored
func AggregateStations(stations []*station.StationData, arrivals map[string]int, departures map[string]int) []*stationtraffic.StationTraffic {
	result := make([]*stationtraffic.StationTraffic, 0, len(stations))
	for _, stationData := range stations {
		if stationData == nil {
			continue
		}
		key := stationData.GetPrimaryKey()
		result = append(result, stationtraffic.NewStationTraffic(*stationData, arrivals[key], departures[key]))
	}
	return result
}

// filterByOverlap keeps the trips whose start or end minute is at most WindowRadius minutes away from
// center, going around midnight if it's shorter
func filterByOverlap(trips []*trip.TripData, center int) []*trip.TripData {
	if center == tripindex.AnyTime {
		return trips
	}

	var filtered []*trip.TripData
	for _, tripData := range trips {
		startedMinute := tripindex.MinutesSinceMidnight(tripData.StartedAt)
		endedMinute := tripindex.MinutesSinceMidnight(tripData.EndedAt)
		if circularDistance(startedMinute, center) <= tripindex.WindowRadius || circularDistance(endedMinute, center) <= tripindex.WindowRadius {
			filtered = append(filtered, tripData)
		}
	}
	return filtered
}

func circularDistance(minute int, center int) int {
	distance := minute - center
	if distance < 0 {
		distance = -distance
	}
	return min(distance, tripindex.MinutesPerDay-distance)
}

func copyTraffic(traffic []*stationtraffic.StationTraffic) []*stationtraffic.StationTraffic {
	copied := make([]*stationtraffic.StationTraffic, len(traffic))
	for idx := range traffic {
		copied[idx] = traffic[idx].Copy()
	}
	return copied
}
