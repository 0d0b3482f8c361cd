package models

import "errors"

var (
	// ErrNotFound is returned when a targeted idea or article does not exist
	ErrNotFound = errors.New("not found")

	// ErrValidation is returned for blank keywords, unknown statuses and other bad input
	ErrValidation = errors.New("validation failed")

	// ErrPersistence is returned when the underlying read or write fails
	ErrPersistence = errors.New("persistence failure")
)

// ValidationError represents a single validation error
type ValidationError struct {
	Line    int         `json:"line,omitempty"`
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}
