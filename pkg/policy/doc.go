// Package policy defines the traffic-shaping policy descriptors and the
// catalog that maps policy names to descriptors.
//
// A catalog is loaded once from a YAML file before the server starts
// serving. Loading validates every entry against its kind's required
// attributes and fails fast on the first malformed entry, so a running
// process never holds a partially-loaded catalog. The optional Watcher
// reloads the catalog file on change and keeps the previous catalog when a
// rewrite is malformed.
package policy
