package post

import "errors"

var (
	// ErrOutOfOrder is returned when an operation needs a block or a text run
	// that has not been appended yet.
	ErrOutOfOrder = errors.New("post: operation out of order")

	// ErrInvalidAttribute is returned when a value is outside the accepted set,
	// such as an unknown audience or block type.
	ErrInvalidAttribute = errors.New("post: invalid attribute")
)
