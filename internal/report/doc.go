// Package report derives weekly report submission status from raw sheet rows.
//
// Every query performs a fresh read through a sheet.Reader and folds the rows
// into a Snapshot:
//
//  1. every roster member starts as not submitted;
//  2. each row is parsed (ParseRow); fetch failures, empty rows, unparseable
//     timestamps and names outside the roster yield a *RowError and the row
//     contributes nothing;
//  3. a parsed row younger than Window (6 days + 12 hours, strict) overwrites
//     its member's Record. Later rows win regardless of their timestamps, and
//     future-dated rows are accepted.
//
// Only a failure to read the source as a whole escapes the engine, wrapped in
// ErrSourceUnavailable. An unknown member in Lookup is a result, not an error.
//
// Formatter renders query results as the sentences shown to users (zh-TW and en).
package report
