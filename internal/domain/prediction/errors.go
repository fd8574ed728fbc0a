package prediction

import "errors"

var (
	// ErrUnknownTerrain indicates a terrain with no defined multiplier.
	ErrUnknownTerrain = errors.New("no terrain multiplier defined for terrain")
	// ErrInvalidInput indicates invalid what-if input.
	ErrInvalidInput = errors.New("invalid what-if input")
)
