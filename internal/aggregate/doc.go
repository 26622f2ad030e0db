// Package aggregate collapses result rows into grouped rows carrying
// aggregate values.
//
// Groups are formed by the tuple of group-by values (fingerprinted with
// ir.GroupKey) and emitted in first-appearance order. Null values are
// excluded from every function except count, which counts rows.
// Sums and averages are exact apd decimals.
package aggregate
