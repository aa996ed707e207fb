package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"bikeflow/domain/entities/trip"
	"bikeflow/metrics"
)

const (
	tripLoaderStr     = "trip-loader"
	defaultTimeLayout = "2006-01-02 15:04:05"
	noColumn          = -1
)

// TripColumns contains the index of each field to read from a trips row
type TripColumns struct {
	RideID         int `yaml:"ride_id"`
	StartedAt      int `yaml:"started_at" validate:"gte=0"`
	EndedAt        int `yaml:"ended_at" validate:"gte=0"`
	StartStationID int `yaml:"start_station_id" validate:"gte=0"`
	EndStationID   int `yaml:"end_station_id" validate:"gte=0"`
}

// DefaultTripColumns columns of the Bluebikes traffic files:
// ride_id,bike_type,started_at,ended_at,start_station_id,end_station_id,is_member
func DefaultTripColumns() TripColumns {
	return TripColumns{
		RideID:         0,
		StartedAt:      2,
		EndedAt:        3,
		StartStationID: 4,
		EndStationID:   5,
	}
}

type TripLoaderConfig struct {
	Columns    TripColumns `yaml:"columns"`
	TimeLayout string      `yaml:"time_layout"`
	Location   string      `yaml:"location"`
	Delimiter  string      `yaml:"delimiter" validate:"omitempty,len=1"`
	HasHeader  bool        `yaml:"has_header"`
}

// LoadStats summarizes a load
// + Read: amount of rows read, header excluded
// + Loaded: amount of valid trips
// + Skipped: amount of rows discarded due to invalid data
type LoadStats struct {
	Read    int
	Loaded  int
	Skipped int
}

type TripLoader struct {
	config   TripLoaderConfig
	location *time.Location
	client   *http.Client
}

func NewTripLoader(config TripLoaderConfig, client *http.Client) (*TripLoader, error) {
	if config.TimeLayout == "" {
		config.TimeLayout = defaultTimeLayout
	}
	if config.Delimiter == "" {
		config.Delimiter = ","
	}
	if client == nil {
		client = http.DefaultClient
	}

	location := time.Local
	if config.Location != "" {
		var err error
		location, err = time.LoadLocation(config.Location)
		if err != nil {
			return nil, fmt.Errorf("error loading location %s: %w", config.Location, err)
		}
	}

	return &TripLoader{
		config:   config,
		location: location,
		client:   client,
	}, nil
}

// LoadTrips reads every trip from source, which can be a file path or an http(s) URL
func (tl *TripLoader) LoadTrips(ctx context.Context, source string) ([]*trip.TripData, LoadStats, error) {
	reader, err := openSource(ctx, tl.client, source)
	if err != nil {
		return nil, LoadStats{}, err
	}
	defer reader.Close()

	trips, stats, err := tl.ReadTrips(reader)
	if err != nil {
		return nil, stats, err
	}

	log.Infof("[component: %s][source: %s][status: OK] %d trips loaded, %d rows skipped", tripLoaderStr, source, stats.Loaded, stats.Skipped)
	return trips, stats, nil
}

// ReadTrips parses a CSV of trips. Rows with invalid data are skipped; any other error stops the read
func (tl *TripLoader) ReadTrips(reader io.Reader) ([]*trip.TripData, LoadStats, error) {
	csvReader := csv.NewReader(reader)
	csvReader.Comma = rune(tl.config.Delimiter[0])
	csvReader.FieldsPerRecord = -1
	csvReader.ReuseRecord = true
	csvReader.LazyQuotes = true

	var stats LoadStats
	var trips []*trip.TripData
	headerPending := tl.config.HasHeader

	for {
		record, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				return nil, stats, fmt.Errorf("error reading trips: %w", err)
			}
			headerPending = false
			stats.Read++
			stats.Skipped++
			log.Debugf("[component: %s] skipping malformed row: %s", tripLoaderStr, err)
			continue
		}

		if headerPending {
			headerPending = false
			continue
		}

		stats.Read++
		tripData, err := tl.getTripData(record)
		if err != nil {
			if errors.Is(err, ErrInvalidTripData) {
				stats.Skipped++
				log.Debugf("[component: %s] skipping row %v: %s", tripLoaderStr, record, err)
				continue
			}
			return nil, stats, err
		}
		trips = append(trips, tripData)
	}

	stats.Loaded = len(trips)
	metrics.TripsSkipped.Add(float64(stats.Skipped))
	return trips, stats, nil
}

// getTripData builds a TripData from a CSV record. Any invalid field returns an error that wraps ErrInvalidTripData
func (tl *TripLoader) getTripData(record []string) (*trip.TripData, error) {
	columns := tl.config.Columns

	startedAtStr, err := getColumn(record, columns.StartedAt)
	if err != nil {
		return nil, err
	}
	startedAt, err := time.ParseInLocation(tl.config.TimeLayout, startedAtStr, tl.location)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: started_at %q", ErrInvalidTripData, ErrInvalidDate, startedAtStr)
	}

	endedAtStr, err := getColumn(record, columns.EndedAt)
	if err != nil {
		return nil, err
	}
	endedAt, err := time.ParseInLocation(tl.config.TimeLayout, endedAtStr, tl.location)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: ended_at %q", ErrInvalidTripData, ErrInvalidDate, endedAtStr)
	}

	startStationID, err := getColumn(record, columns.StartStationID)
	if err != nil {
		return nil, err
	}
	endStationID, err := getColumn(record, columns.EndStationID)
	if err != nil {
		return nil, err
	}
	if startStationID == "" || endStationID == "" {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTripData, ErrMissingStationID)
	}

	tripData := trip.NewTripData(startStationID, endStationID, startedAt, endedAt)
	if columns.RideID != noColumn {
		tripData.RideID, _ = getColumn(record, columns.RideID)
	}

	return tripData, nil
}

func getColumn(record []string, idx int) (string, error) {
	if idx < 0 || idx >= len(record) {
		return "", fmt.Errorf("%w: %w: index %d, row has %d columns", ErrInvalidTripData, ErrMissingColumn, idx, len(record))
	}
	return strings.TrimSpace(record[idx]), nil
}
