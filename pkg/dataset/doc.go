// Package dataset holds the in-memory table used for FRED category records.
//
// A Table is a list of column names plus rows of string cells. Every value
// is kept as text so category ids round-trip through CSV and Parquet
// unchanged whether FRED sends them as numbers or strings.
package dataset
