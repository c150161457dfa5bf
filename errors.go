package timetable

import (
	"fmt"
)

// DataIntegrityError signals malformed or inconsistent input tables:
// dangling references, duplicate identifiers, out of order stop times.
// The load is aborted; no partially constructed Timetable is returned.
type DataIntegrityError struct {
	Detail string
}

func (e *DataIntegrityError) Error() string {
	return "data integrity: " + e.Detail
}

func integrityErrorf(format string, a ...interface{}) error {
	return &DataIntegrityError{Detail: fmt.Sprintf(format, a...)}
}

// InvalidQueryError signals an unrecognized day-type label or a
// malformed date.
type InvalidQueryError struct {
	Detail string
}

func (e *InvalidQueryError) Error() string {
	return "invalid query: " + e.Detail
}

// UnknownRouteError signals a request for a route id absent from the
// loaded dataset. Distinct from a route with no service, which yields
// an empty result.
type UnknownRouteError struct {
	RouteID string
}

func (e *UnknownRouteError) Error() string {
	return fmt.Sprintf("unknown route: '%s'", e.RouteID)
}
