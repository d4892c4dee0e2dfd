// Package query builds Dentalink filter queries.
//
// The Dentalink API filters collections through a single "q" URL parameter
// holding a JSON object that maps field names to filter operators. This
// package provides a fluent Builder that accumulates those filters and a
// Query type that serializes them in the exact shape the API expects.
//
// # Usage
//
//	q, err := query.New("fecha").
//		Gte(startDate).
//		Lte(endDate).
//		Field("id_sucursal").
//		Eq(branchID).
//		Parse()
//
// Nil values are skipped, so optional filters can be chained without
// conditionals; a field whose filters were all skipped is dropped when the
// query is serialized.
//
// # Serialization
//
// A field holding one filter serializes as an object, several filters as an
// ordered array:
//
//	{"foo":{"eq":"3"},"bar":[{"gt":"1"},{"lt":"3"}]}
//
// Field order follows the order of first selection, and filter order within
// a field follows call order; both are meaningful to the API.
package query
