// Package testmode lets a host run the whole provisioning flow without a live
// wallet platform.
//
// Config is the test-mode switchboard. It is injected into the gateway, the
// orchestrator and the SDK facade instead of living in a process-wide global,
// so parallel tests each get their own. Every field is an atomic and may be
// flipped while a session is running; the next gateway or orchestrator entry
// point observes the new value.
//
// Simulator mirrors each gateway and orchestrator entry point. A mirrored call
// waits the configured delay and then succeeds or fails according to Config.
// Failures are reported through the same Reporter the real code uses, with
// the configured error code and message, so the web layer cannot tell a
// simulated failure from a real one. The simulator never calls a platform API.
//
// FakeClient is an in-memory TokenizationClient. Unlike the simulator it
// exercises the real gateway and orchestrator code paths; the simulation
// server and the package tests use it to stand in for a device.
package testmode
