// Shaperd is a declarative traffic-shaping controller for Linux.
//
// It compiles named shaping policies (cake, netem, htb hierarchies) into
// ordered tc operations, applies them to network interfaces, and tracks
// which policy is active where. An HTTP API exposes apply/clear/status,
// and an optional bench harness measures the goodput each policy allows.
//
// Usage:
//
//	# Start the controller with default configuration
//	shaperd run
//
//	# Start with a custom configuration file
//	shaperd run --config /etc/shaperd/config.yaml
//
//	# Validate a policy catalog
//	shaperd lint --file policies.yaml
//
//	# Run a one-off measurement suite and export CSV
//	shaperd bench --target http://example.com/payload.bin --out results.csv
//
//	# Show version information
//	shaperd version
package main

func main() {
	Execute()
}
