// Package rpc is the daemon's control plane.
//
// The Server exposes alarm, session, and scheduler operations as JSON-RPC 2.0
// methods over a unix socket, one jrpc2 server per accepted connection, and
// pushes alarm.fired notifications to every connected client. The Client
// wraps the same surface for the CLI.
package rpc
