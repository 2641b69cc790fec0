// Package sheet reads raw rows from the weekly report spreadsheet.
//
// A Reader returns one Row per requested index. It performs no interpretation
// of cell contents; that belongs to package report.
//
// Implementations:
//   - Client: Google Sheets v4 (client.go). Access to the spreadsheet and
//     worksheet is checked before any row is fetched; that check failing is the
//     whole-read failure. In per-row mode a failed row fetch is reported in
//     Row.Err, in batch mode the single BatchGet either succeeds or fails whole.
//   - Memory: an in-memory table (memory.go) for tests and offline runs.
//   - Swap: holds the current Reader so a rotated credentials file can be
//     picked up without restarting (swap.go, watch.go).
package sheet
