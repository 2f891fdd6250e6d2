// Package shaping translates policy descriptors into ordered packet-
// scheduler operations and applies them to network interfaces.
//
// The pipeline has three stages with distinct failure modes:
//
//   - Compile is a pure function from descriptor to operation list; it can
//     only fail on an unsupported policy kind, and it fails before any
//     kernel state is touched.
//   - Executor.Apply clears the interface root and runs the compiled
//     operations in order, stopping at the first failure. There is no
//     rollback: a mid-sequence failure leaves the interface holding the
//     prefix that succeeded.
//   - The per-interface active record is replaced wholesale only after a
//     fully successful apply or an explicit clear.
//
// Controller wires the three stages to a policy catalog and serializes
// mutations per interface.
package shaping
