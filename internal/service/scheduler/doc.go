// Package scheduler owns the alarm collection and the polling that fires it.
//
// The Service loads alarms at startup, persists the whole collection after
// every mutation, and evaluates triggers from two contexts: a high-resolution
// foreground ticker with a tight fire window and a coarse background schedule
// with a wide one. Fires funnel through the session controller's
// check-and-set gate, so overlapping evaluations open at most one ringing
// session.
package scheduler
