// Package engine runs RetrieveMultiple queries against a record source.
//
// A query flows through four stages, always in this order:
//
//  1. Normalize turns any accepted descriptor shape into a canonical
//     query.Expression (plus an aggregation plan for aggregate XML queries).
//  2. The executor scans the root entity, joins every link, applies the
//     top-level filter and sorts the surviving rows.
//  3. Aggregate queries collapse the rows into grouped rows.
//  4. The post-processor applies distinct, top count, total count and
//     paging, builds the paging cookie and fills formatted values.
//
// Nothing downstream of Normalize branches on the input shape.
//
// The engine is single-owner and synchronous: one Pipeline reads one
// source, and callers must not mutate the source while a query runs.
package engine
