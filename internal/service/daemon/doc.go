// Package daemon assembles and runs the alarm engine.
//
// Run wires the settings, the badger-backed alarm store, the sound engine,
// the D-Bus effect sinks, the session controller, the scheduler, and the
// JSON-RPC control socket, then drives the foreground polling ticker and the
// cron-based background evaluation until shutdown.
package daemon
