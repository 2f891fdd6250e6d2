// Package tc drives the kernel packet scheduler through the tc(8) command.
//
// The Runner interface is the narrow control surface the shaping executor
// depends on: delete the root qdisc, add a qdisc, add a class, and dump
// qdisc state. ExecRunner shells out to tc; FakeRunner records calls for
// tests.
package tc
