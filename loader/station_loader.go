package loader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	log "github.com/sirupsen/logrus"

	"bikeflow/domain/entities/station"
)

const stationLoaderStr = "station-loader"

// coordinate accepts both JSON numbers and numeric strings, feeds are not consistent about it
type coordinate float64

func (c *coordinate) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*c = 0
		return nil
	}

	value, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("%w: invalid coordinate %s", ErrInvalidStationData, data)
	}
	*c = coordinate(value)
	return nil
}

type stationRecord struct {
	ShortName string     `json:"short_name"`
	Name      string     `json:"name"`
	Latitude  coordinate `json:"lat"`
	Longitude coordinate `json:"lon"`
}

// stationFeed follows the GBFS station_information layout
type stationFeed struct {
	Data struct {
		Stations []stationRecord `json:"stations"`
	} `json:"data"`
}

type StationLoader struct {
	client *http.Client
}

func NewStationLoader(client *http.Client) *StationLoader {
	if client == nil {
		client = http.DefaultClient
	}
	return &StationLoader{client: client}
}

// LoadStations reads the stations from source, which can be a file path or an http(s) URL
func (sl *StationLoader) LoadStations(ctx context.Context, source string) ([]*station.StationData, error) {
	reader, err := openSource(ctx, sl.client, source)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	stations, err := ReadStations(reader)
	if err != nil {
		return nil, err
	}

	log.Infof("[component: %s][source: %s][status: OK] %d stations loaded", stationLoaderStr, source, len(stations))
	return stations, nil
}

// ReadStations decodes a station feed. Stations without short name or valid coordinates are skipped,
// and only the first station of each short name is kept
func ReadStations(reader io.Reader) ([]*station.StationData, error) {
	var feed stationFeed
	if err := json.NewDecoder(reader).Decode(&feed); err != nil {
		return nil, fmt.Errorf("%w: error decoding stations: %w", ErrInvalidStationData, err)
	}

	seen := make(map[string]bool)
	stations := make([]*station.StationData, 0, len(feed.Data.Stations))
	for _, record := range feed.Data.Stations {
		stationData := station.NewStationData(record.ShortName, record.Name, float64(record.Latitude), float64(record.Longitude))

		// sanity check: there are stations that does not have short name, latitude or longitude set, we skip them
		if stationData.ShortName == "" || !stationData.HasValidCoordinates() {
			log.Debugf("[component: %s] skipping station %+v", stationLoaderStr, record)
			continue
		}

		if seen[stationData.ShortName] {
			log.Debugf("[component: %s] duplicated station %s", stationLoaderStr, stationData.ShortName)
			continue
		}
		seen[stationData.ShortName] = true
		stations = append(stations, stationData)
	}

	return stations, nil
}
