// Package storage reads and writes category tables as flat files.
//
// A Store owns one directory and one Codec. CSV is the default format:
// a header row, then one line per record, no index column. Parquet is
// available for larger crawls.
//
// Saves are atomic (temporary file plus rename). Load returns (nil, nil)
// for a missing file so callers can tell "not cached yet" from a failure.
package storage
