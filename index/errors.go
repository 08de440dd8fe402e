package index

import "errors"

var (
	// ErrLengthMismatch is returned by Build when ids and vectors differ in length.
	ErrLengthMismatch = errors.New("index: ids and vectors length mismatch")
	// ErrDimensionMismatch is returned when a vector does not match the index dimension.
	ErrDimensionMismatch = errors.New("index: dimension mismatch")
)
