package common

import "errors"

var (
	// repository errors
	ErrNotFound = errors.New("not found")

	// input validation
	ErrInvalidInput = errors.New("invalid input")
)
