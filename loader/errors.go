package loader

import "errors"

var (
	ErrInvalidTripData    = errors.New("invalid trip data")
	ErrInvalidStationData = errors.New("invalid station data")
	ErrInvalidDate        = errors.New("invalid date")
	ErrMissingColumn      = errors.New("missing column")
	ErrMissingStationID   = errors.New("missing station ID")
	ErrUnreachableSource  = errors.New("unreachable source")
)
