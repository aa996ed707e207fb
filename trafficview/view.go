package trafficview

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"bikeflow/aggregator"
	"bikeflow/domain/entities/station"
	"bikeflow/domain/entities/trip"
	"bikeflow/metrics"
	"bikeflow/spatial"
	"bikeflow/tripindex"
)

const (
	viewStr         = "traffic-view"
	contentTypeJson = "application/json"
	publishTimeout  = 5 * time.Second
)

// Publisher sends a message with the given routing key
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message []byte, contentType string) error
}

type Config struct {
	City       string            `yaml:"city"`
	Aggregator aggregator.Config `yaml:"aggregator"`
}

// View keeps the station traffic for the active time filter. Stations and trips arrive independently;
// until both are loaded every query returns ErrNotReady. A snapshot is always replaced as a whole
type View struct {
	mu           sync.RWMutex
	config       Config
	publisher    Publisher
	stations     []*station.StationData
	index        *tripindex.TripIndex
	aggregator   *aggregator.Aggregator
	stationIndex *spatial.StationIndex
	timeFilter   int
	snapshot     *Snapshot
}

// NewView returns an empty View. publisher may be nil
func NewView(config Config, publisher Publisher) *View {
	return &View{
		config:     config,
		publisher:  publisher,
		timeFilter: tripindex.AnyTime,
	}
}

func (v *View) getLogMessage(method string, message string, err error) string {
	if err != nil {
		return fmt.Sprintf("[component: %s][city: %s][method: %s][status: ERROR] %s: %s", viewStr, v.config.City, method, message, err.Error())
	}
	return fmt.Sprintf("[component: %s][city: %s][method: %s][status: OK] %s", viewStr, v.config.City, method, message)
}

// SetStations replaces the known stations. If trips are already loaded the active snapshot is recomputed
func (v *View) SetStations(stations []*station.StationData) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.stations = stations
	v.stationIndex = spatial.NewStationIndex(stations)
	metrics.StationsLoaded.Set(float64(len(stations)))
	log.Info(v.getLogMessage("SetStations", fmt.Sprintf("%d stations set", len(stations)), nil))

	return v.rebuild()
}

// SetTrips indexes the trips and replaces the previous index. If stations are already loaded the active
// snapshot is recomputed
func (v *View) SetTrips(trips []*trip.TripData) error {
	index := tripindex.BuildIndex(trips)

	v.mu.Lock()
	defer v.mu.Unlock()

	v.index = index
	metrics.TripsLoaded.Set(float64(index.Len()))
	log.Info(v.getLogMessage("SetTrips", fmt.Sprintf("%d trips indexed", index.Len()), nil))

	return v.rebuild()
}

// Ready returns true once both stations and trips are loaded
func (v *View) Ready() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.aggregator != nil
}

// TimeFilter returns the active time filter
func (v *View) TimeFilter() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.timeFilter
}

// SetTimeFilter changes the active time filter, recomputes the snapshot and publishes it. If the time filter is
// invalid or data is not ready the View keeps its previous state
func (v *View) SetTimeFilter(ctx context.Context, timeFilter int) (*Snapshot, error) {
	if err := tripindex.ValidateTimeFilter(timeFilter); err != nil {
		return nil, err
	}

	v.mu.Lock()
	if v.aggregator == nil {
		v.mu.Unlock()
		return nil, ErrNotReady
	}

	snapshot, err := v.compute(timeFilter)
	if err != nil {
		v.mu.Unlock()
		log.Error(v.getLogMessage("SetTimeFilter", "error computing snapshot", err))
		return nil, err
	}
	v.timeFilter = timeFilter
	v.snapshot = snapshot
	result := snapshot.copy()
	v.mu.Unlock()

	v.publish(ctx, result)
	return result, nil
}

// Snapshot returns a copy of the snapshot of the active time filter
func (v *View) Snapshot() (*Snapshot, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.snapshot == nil {
		return nil, ErrNotReady
	}
	return v.snapshot.copy(), nil
}

// Query returns the snapshot of timeFilter without changing the active one
func (v *View) Query(timeFilter int) (*Snapshot, error) {
	if err := tripindex.ValidateTimeFilter(timeFilter); err != nil {
		return nil, err
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.aggregator == nil {
		return nil, ErrNotReady
	}
	return v.compute(timeFilter)
}

// StationsWithinRadius returns the short names of the stations at most radiusKm away from the point
func (v *View) StationsWithinRadius(latitude float64, longitude float64, radiusKm float64) ([]string, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.stationIndex == nil {
		return nil, ErrNotReady
	}
	return v.stationIndex.WithinRadius(latitude, longitude, radiusKm), nil
}

// rebuild creates a new aggregator for the loaded data and recomputes the active snapshot. The caller must hold the lock
func (v *View) rebuild() error {
	if v.stations == nil || v.index == nil {
		return nil
	}

	agg, err := aggregator.NewAggregator(v.config.Aggregator, v.stations, v.index)
	if err != nil {
		log.Error(v.getLogMessage("rebuild", "error creating aggregator", err))
		return err
	}
	v.aggregator = agg

	snapshot, err := v.compute(v.timeFilter)
	if err != nil {
		return err
	}
	v.snapshot = snapshot
	log.Info(v.getLogMessage("rebuild", "view is ready", nil))
	return nil
}

// compute the caller must hold the lock
func (v *View) compute(timeFilter int) (*Snapshot, error) {
	start := time.Now()
	defer func() { metrics.RecomputeDuration.Observe(time.Since(start).Seconds()) }()

	stations, err := v.aggregator.Aggregate(timeFilter)
	if err != nil {
		return nil, err
	}
	return newSnapshot(v.config.City, timeFilter, v.aggregator.GetMode(), stations), nil
}

// publish sends the snapshot to the publisher. Errors are logged, the snapshot is already active
func (v *View) publish(ctx context.Context, snapshot *Snapshot) {
	if v.publisher == nil {
		return
	}

	snapshotBytes, err := json.Marshal(snapshot)
	if err != nil {
		log.Error(v.getLogMessage("publish", "error marshalling snapshot", err))
		metrics.SnapshotsPublished.WithLabelValues("error").Inc()
		return
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = v.publisher.Publish(ctx, snapshot.RoutingKey(), snapshotBytes, contentTypeJson)
	if err != nil {
		log.Error(v.getLogMessage("publish", fmt.Sprintf("error publishing snapshot %s", snapshot.RoutingKey()), err))
		metrics.SnapshotsPublished.WithLabelValues("error").Inc()
		return
	}
	metrics.SnapshotsPublished.WithLabelValues("ok").Inc()
}
