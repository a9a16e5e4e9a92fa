package search

import (
	"errors"
	"fmt"
)

const (
	CodeInvalidContext = "invalidContext"
	CodeRunInFlight    = "runInFlight"
	CodeEmptyGroup     = "emptyGroup"
)

// SearchError is returned for runs that cannot start.
type SearchError struct {
	Code    string
	Message string
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newSearchError(code, msg string) error {
	return &SearchError{Code: code, Message: msg}
}

// ErrRunInFlight is returned when a run for the same order is already going.
var ErrRunInFlight = &SearchError{Code: CodeRunInFlight, Message: "a search run for this order is already in flight"}

// IsRunInFlight reports whether err means a duplicate run was refused.
func IsRunInFlight(err error) bool {
	var se *SearchError
	return errors.As(err, &se) && se.Code == CodeRunInFlight
}
