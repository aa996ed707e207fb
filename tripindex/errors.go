package tripindex

import "errors"

var ErrInvalidTimeFilter = errors.New("invalid time filter")
