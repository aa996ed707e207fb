package loader

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tripsCSV = `ride_id,bike_type,started_at,ended_at,start_station_id,end_station_id,is_member
r1,electric,2024-03-01 00:05:12.123,2024-03-01 00:10:00,A32000,M32011,1
r2,classic,2024-03-01 23:59:00,2024-03-02 00:30:00,M32011,A32000,0
r3,classic,not a date,2024-03-01 00:10:00,A32000,M32011,1
r4,classic,2024-03-01 08:00:00,2024-03-01 08:10:00,,M32011,1
r5,classic,2024-03-01 08:00:00
r6,classic,2024-03-01 08:00:00,2024-03-01 08:20:00,B32006,B32006,1
`

func newTestTripLoader(t *testing.T) *TripLoader {
	tripLoader, err := NewTripLoader(TripLoaderConfig{
		Columns:   DefaultTripColumns(),
		Location:  "America/New_York",
		HasHeader: true,
	}, nil)
	require.NoError(t, err)
	return tripLoader
}

func TestReadTrips(t *testing.T) {
	trips, stats, err := newTestTripLoader(t).ReadTrips(strings.NewReader(tripsCSV))
	require.NoError(t, err)

	assert.Equal(t, LoadStats{Read: 6, Loaded: 3, Skipped: 3}, stats)
	require.Len(t, trips, 3)

	first := trips[0]
	assert.Equal(t, "r1", first.RideID)
	assert.Equal(t, "A32000", first.StartStationID)
	assert.Equal(t, "M32011", first.EndStationID)
	assert.Equal(t, 0, first.StartedAt.Hour())
	assert.Equal(t, 5, first.StartedAt.Minute())
	assert.Equal(t, "America/New_York", first.StartedAt.Location().String())

	assert.Equal(t, 23, trips[1].StartedAt.Hour())
	assert.Equal(t, 30, trips[1].EndedAt.Minute())
	assert.Equal(t, "B32006", trips[2].StartStationID)
}

func TestGetTripDataErrors(t *testing.T) {
	tripLoader := newTestTripLoader(t)

	_, err := tripLoader.getTripData([]string{"r1", "classic", "yesterday", "2024-03-01 00:10:00", "A", "B"})
	assert.ErrorIs(t, err, ErrInvalidTripData)
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = tripLoader.getTripData([]string{"r1", "classic", "2024-03-01 00:10:00"})
	assert.ErrorIs(t, err, ErrInvalidTripData)
	assert.ErrorIs(t, err, ErrMissingColumn)

	_, err = tripLoader.getTripData([]string{"r1", "classic", "2024-03-01 00:10:00", "2024-03-01 00:20:00", "A", " "})
	assert.ErrorIs(t, err, ErrInvalidTripData)
	assert.ErrorIs(t, err, ErrMissingStationID)
}

func TestReadTripsWithoutRideID(t *testing.T) {
	columns := TripColumns{RideID: noColumn, StartedAt: 0, EndedAt: 1, StartStationID: 2, EndStationID: 3}
	tripLoader, err := NewTripLoader(TripLoaderConfig{Columns: columns, Delimiter: ";", Location: "UTC"}, nil)
	require.NoError(t, err)

	trips, stats, err := tripLoader.ReadTrips(strings.NewReader("2024-03-01 10:00:00;2024-03-01 10:15:00;A;B\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Loaded)
	require.Len(t, trips, 1)
	assert.Empty(t, trips[0].RideID)
	assert.Equal(t, time.Date(2024, time.March, 1, 10, 15, 0, 0, time.UTC), trips[0].EndedAt)
}

func TestNewTripLoaderInvalidLocation(t *testing.T) {
	_, err := NewTripLoader(TripLoaderConfig{Location: "Mars/Olympus_Mons"}, nil)
	assert.Error(t, err)
}

func TestLoadTripsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trips.csv")
	require.NoError(t, os.WriteFile(path, []byte(tripsCSV), 0o600))

	trips, stats, err := newTestTripLoader(t).LoadTrips(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, trips, 3)
	assert.Equal(t, 3, stats.Skipped)
}

func TestLoadTripsMissingFile(t *testing.T) {
	_, _, err := newTestTripLoader(t).LoadTrips(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, ErrUnreachableSource)
}
