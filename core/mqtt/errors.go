package mqtt

import "errors"

// ErrEmptyRunID is returned when a schedule has no run identifier to build
// its topic from.
var ErrEmptyRunID = errors.New("schedule message without run id")
