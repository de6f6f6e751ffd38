package services

import (
	"errors"
	"fmt"
)

// Service error taxonomy. Handlers map these to HTTP statuses with errors.Is;
// not-found is always resolved before any authorization decision.
var (
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrValidation = errors.New("validation failed")
	ErrRetrieval  = errors.New("retrieval failed")
)

func validationErr(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func retrievalErr(err error) error {
	return fmt.Errorf("%w: %v", ErrRetrieval, err)
}
