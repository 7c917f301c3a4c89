// Package alarm contains the core domain types of the scheduling engine.
//
// It defines the Alarm schedule record, its validation invariants, and
// NextTrigger, the pure recurrence resolver that maps an alarm plus "now"
// to the next absolute trigger instant.
package alarm
