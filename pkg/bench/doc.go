// Package bench drives traffic through shaped interfaces to measure the
// effect of each policy. A suite applies every requested policy in turn,
// lets the scheduler settle, drives a download for a fixed window, clears
// shaping, and records the observed goodput. Results persist in SQLite
// and export as CSV.
package bench
