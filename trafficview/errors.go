package trafficview

import "errors"

var (
	ErrNotReady = errors.New("stations and trips are not loaded yet")
)
