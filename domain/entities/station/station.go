package station

import "github.com/umahmood/haversine"

// StationData struct that contains the station metadata. ShortName is the public identifier
// that trips reference in their start and end station fields.
type StationData struct {
	ShortName string  `json:"short_name"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

func NewStationData(shortName string, name string, latitude float64, longitude float64) *StationData {
	return &StationData{
		ShortName: shortName,
		Name:      name,
		Latitude:  latitude,
		Longitude: longitude,
	}
}

// GetPrimaryKey returns the key used to join trips against stations
func (sd *StationData) GetPrimaryKey() string {
	return sd.ShortName
}

// GetCoordinates returns latitude and longitude, in that order
func (sd *StationData) GetCoordinates() (float64, float64) {
	return sd.Latitude, sd.Longitude
}

// HasValidCoordinates returns true if latitude is in [-90, 90], longitude in [-180, 180]
// and the station is not placed in (0, 0), which the feeds use as "unknown"
func (sd *StationData) HasValidCoordinates() bool {
	if sd.Latitude == 0 && sd.Longitude == 0 {
		return false
	}
	return -90 <= sd.Latitude && sd.Latitude <= 90 && -180 <= sd.Longitude && sd.Longitude <= 180
}

// DistanceTo returns the distance in kilometers between the station and the given point
func (sd *StationData) DistanceTo(latitude float64, longitude float64) float64 {
	origin := haversine.Coord{Lat: sd.Latitude, Lon: sd.Longitude}
	target := haversine.Coord{Lat: latitude, Lon: longitude}
	_, km := haversine.Distance(origin, target)
	return km
}
