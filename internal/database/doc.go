// Package database stores the proof-of-play history in SQLite.
//
// Every item the presenter finishes, completed or not, becomes one row in
// the plays table, tagged with the session id of the running process. The
// history is write-mostly: the presenter appends, and the status server and
// the metrics collector read recent rows and totals.
//
// The database is optional. When no database directory is configured the
// slideshow runs without recording anything.
package database
