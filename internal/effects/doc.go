// Package effects orchestrates the side effects of a ringing alarm.
//
// The Orchestrator starts wake-lock acquisition, sound, vibration, and the
// desktop notification for a firing alarm and unwinds all of them on stop.
// Effect failures are isolated and logged; the alarm rings with whatever
// effects the host grants. Sinks are small interfaces with D-Bus
// implementations for notifications (org.freedesktop.Notifications) and the
// wake lock (logind inhibitors).
package effects
