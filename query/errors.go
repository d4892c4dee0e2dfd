package query

import "errors"

// Common errors returned by the query builder.
var (
	// ErrNoField is returned when an operator is applied before any field
	// has been selected with Field.
	ErrNoField = errors.New("no field selected: call Field before adding filters")

	// ErrEmptyQuery is returned by Parse when no field was ever selected.
	// A query whose fields all ended up without filters is not an error.
	ErrEmptyQuery = errors.New("query has no fields")
)
