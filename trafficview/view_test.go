package trafficview

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bikeflow/aggregator"
	"bikeflow/domain/entities/station"
	"bikeflow/domain/entities/trip"
	"bikeflow/tripindex"
)

type publishedMessage struct {
	routingKey  string
	message     []byte
	contentType string
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []publishedMessage
	err      error
}

func (fp *fakePublisher) Publish(_ context.Context, routingKey string, message []byte, contentType string) error {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	if fp.err != nil {
		return fp.err
	}
	fp.messages = append(fp.messages, publishedMessage{routingKey: routingKey, message: message, contentType: contentType})
	return nil
}

var day = time.Date(2024, time.March, 12, 0, 0, 0, 0, time.UTC)

func at(minute int) time.Time {
	return day.Add(time.Duration(minute) * time.Minute)
}

func testStations() []*station.StationData {
	return []*station.StationData{
		station.NewStationData("M32006", "MIT at Mass Ave / Amherst St", 42.358100, -71.093198),
		station.NewStationData("M32011", "Kendall T", 42.362428, -71.084955),
		station.NewStationData("A32000", "Fan Pier", 42.353391, -71.044571),
	}
}

func testTrips() []*trip.TripData {
	return []*trip.TripData{
		trip.NewTripData("M32006", "M32011", at(5), at(10)),
		trip.NewTripData("M32011", "A32000", at(700), at(730)),
		trip.NewTripData("M32011", "M32006", at(710), at(725)),
		trip.NewTripData("ghost", "M32006", at(715), at(720)),
	}
}

func newReadyView(t *testing.T, publisher Publisher) *View {
	view := NewView(Config{City: "boston"}, publisher)
	require.NoError(t, view.SetStations(testStations()))
	require.NoError(t, view.SetTrips(testTrips()))
	require.True(t, view.Ready())
	return view
}

func trafficOf(snapshot *Snapshot, shortName string) (int, int, int) {
	for _, st := range snapshot.Stations {
		if st.GetKey() == shortName {
			return st.Arrivals, st.Departures, st.TotalTraffic
		}
	}
	return -1, -1, -1
}

func TestViewNotReadyUntilBothLoaded(t *testing.T) {
	view := NewView(Config{City: "boston"}, nil)
	assert.False(t, view.Ready())

	_, err := view.SetTimeFilter(context.Background(), 720)
	assert.ErrorIs(t, err, ErrNotReady)
	_, err = view.Snapshot()
	assert.ErrorIs(t, err, ErrNotReady)
	_, err = view.Query(tripindex.AnyTime)
	assert.ErrorIs(t, err, ErrNotReady)
	_, err = view.StationsWithinRadius(42.36, -71.09, 1)
	assert.ErrorIs(t, err, ErrNotReady)

	require.NoError(t, view.SetTrips(testTrips()))
	assert.False(t, view.Ready())
	assert.Equal(t, tripindex.AnyTime, view.TimeFilter())

	require.NoError(t, view.SetStations(testStations()))
	assert.True(t, view.Ready())
}

func TestViewInitialSnapshotIsAnyTime(t *testing.T) {
	view := newReadyView(t, nil)

	snapshot, err := view.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, tripindex.AnyTime, snapshot.TimeFilter)
	assert.Equal(t, "(any time)", snapshot.Label)
	assert.Equal(t, aggregator.FilterModeBucketed, snapshot.Mode)
	assert.Equal(t, "boston", snapshot.Metadata.GetCity())
	assert.Equal(t, 3, snapshot.MaxTotalTraffic)

	arrivals, departures, total := trafficOf(snapshot, "M32011")
	assert.Equal(t, 1, arrivals)
	assert.Equal(t, 2, departures)
	assert.Equal(t, 3, total)

	arrivals, departures, total = trafficOf(snapshot, "M32006")
	assert.Equal(t, 2, arrivals)
	assert.Equal(t, 1, departures)
	assert.Equal(t, 3, total)
}

func TestViewSetTimeFilterPublishesSnapshot(t *testing.T) {
	publisher := &fakePublisher{}
	view := newReadyView(t, publisher)

	snapshot, err := view.SetTimeFilter(context.Background(), 720)
	require.NoError(t, err)
	assert.Equal(t, 720, view.TimeFilter())
	assert.Equal(t, "12:00 PM", snapshot.Label)

	arrivals, departures, _ := trafficOf(snapshot, "M32006")
	assert.Equal(t, 2, arrivals)
	assert.Equal(t, 0, departures)

	require.Len(t, publisher.messages, 1)
	assert.Equal(t, "traffic.boston.0720", publisher.messages[0].routingKey)
	assert.Equal(t, "application/json", publisher.messages[0].contentType)

	var published Snapshot
	require.NoError(t, json.Unmarshal(publisher.messages[0].message, &published))
	assert.Equal(t, 720, published.TimeFilter)
	assert.Len(t, published.Stations, 3)
}

func TestViewPublishErrorKeepsSnapshot(t *testing.T) {
	view := newReadyView(t, &fakePublisher{err: errors.New("broker down")})

	_, err := view.SetTimeFilter(context.Background(), 30)
	require.NoError(t, err)

	snapshot, err := view.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, 30, snapshot.TimeFilter)
}

func TestViewInvalidTimeFilterKeepsLastSnapshot(t *testing.T) {
	view := newReadyView(t, nil)
	_, err := view.SetTimeFilter(context.Background(), 720)
	require.NoError(t, err)

	_, err = view.SetTimeFilter(context.Background(), 5000)
	assert.ErrorIs(t, err, tripindex.ErrInvalidTimeFilter)

	snapshot, err := view.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, 720, snapshot.TimeFilter)
	assert.Equal(t, 720, view.TimeFilter())
}

func TestViewQueryDoesNotChangeActiveFilter(t *testing.T) {
	view := newReadyView(t, nil)

	snapshot, err := view.Query(0)
	require.NoError(t, err)
	assert.Equal(t, 0, snapshot.TimeFilter)
	assert.Equal(t, "12:00 AM", snapshot.Label)

	arrivals, departures, _ := trafficOf(snapshot, "M32011")
	assert.Equal(t, 1, arrivals)
	assert.Equal(t, 0, departures)
	assert.Equal(t, tripindex.AnyTime, view.TimeFilter())
}

func TestViewSnapshotIsACopy(t *testing.T) {
	view := newReadyView(t, nil)

	snapshot, err := view.Snapshot()
	require.NoError(t, err)
	snapshot.Stations[0].Arrivals = 1000

	again, err := view.Snapshot()
	require.NoError(t, err)
	assert.NotEqual(t, 1000, again.Stations[0].Arrivals)
}

func TestViewReloadKeepsActiveFilter(t *testing.T) {
	view := newReadyView(t, nil)
	_, err := view.SetTimeFilter(context.Background(), 720)
	require.NoError(t, err)

	require.NoError(t, view.SetTrips([]*trip.TripData{trip.NewTripData("A32000", "M32011", at(721), at(722))}))

	snapshot, err := view.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, 720, snapshot.TimeFilter)
	assert.Equal(t, 1, snapshot.MaxTotalTraffic)

	_, departures, _ := trafficOf(snapshot, "A32000")
	assert.Equal(t, 1, departures)
}

func TestViewStationsWithinRadius(t *testing.T) {
	view := newReadyView(t, nil)

	shortNames, err := view.StationsWithinRadius(42.36027, -71.09415, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"M32006", "M32011"}, shortNames)
}

func TestViewInvalidAggregatorConfig(t *testing.T) {
	view := NewView(Config{City: "boston", Aggregator: aggregator.Config{Mode: "sliding"}}, nil)
	require.NoError(t, view.SetStations(testStations()))

	err := view.SetTrips(testTrips())
	assert.ErrorIs(t, err, aggregator.ErrInvalidFilterMode)
	assert.False(t, view.Ready())
}

func TestFormatTimeFilter(t *testing.T) {
	assert.Equal(t, "(any time)", FormatTimeFilter(tripindex.AnyTime))
	assert.Equal(t, "12:00 AM", FormatTimeFilter(0))
	assert.Equal(t, "8:05 AM", FormatTimeFilter(485))
	assert.Equal(t, "11:59 PM", FormatTimeFilter(1439))
}

func TestSnapshotOnly(t *testing.T) {
	view := newReadyView(t, nil)
	snapshot, err := view.Snapshot()
	require.NoError(t, err)

	filtered := snapshot.Only([]string{"A32000"})
	require.Len(t, filtered.Stations, 1)
	assert.Equal(t, "A32000", filtered.Stations[0].GetKey())
	assert.Equal(t, 1, filtered.MaxTotalTraffic)
	assert.Len(t, snapshot.Stations, 3)
}

func TestSnapshotRoutingKeyAnyTime(t *testing.T) {
	view := newReadyView(t, nil)
	snapshot, err := view.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "traffic.boston.any", snapshot.RoutingKey())
}
