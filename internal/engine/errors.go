package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfRange is returned when a cell index falls outside 0..63.
	ErrOutOfRange = errors.New("cell index out of range")

	// ErrInvalidMove lets callers promote a false IsValidMove verdict to an error.
	ErrInvalidMove = errors.New("invalid move")

	ErrUnknownColor = errors.New("unknown color")
)

func outOfRange(index int) error {
	return fmt.Errorf("%w: %d", ErrOutOfRange, index)
}
