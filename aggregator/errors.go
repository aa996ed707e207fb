package aggregator

import "errors"

var (
	ErrInvalidFilterMode = errors.New("invalid filter mode")
	ErrMissingTripIndex  = errors.New("trip index is required")
)
