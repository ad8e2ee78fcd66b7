package universe

import "errors"

var (
	ErrInvalidDimensions  = errors.New("universe: width and height must be at least 1")
	ErrOutOfRange         = errors.New("universe: coordinates out of range")
	ErrMalformedPattern   = errors.New("universe: malformed pattern")
	ErrRaggedPattern      = errors.New("universe: pattern rows differ in length")
	ErrUnknownTemplate    = errors.New("universe: unknown template")
	ErrInvalidProbability = errors.New("universe: probability must be within [0, 1]")
	ErrEntropy            = errors.New("universe: entropy source failed")
)
