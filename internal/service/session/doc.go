// Package session owns the ringing-session state machine.
//
// The Controller holds the single optional ringing session, gates its
// creation behind a check-and-set operation so concurrent evaluation
// contexts cannot both open one, and closes it through snooze or dismiss,
// unwinding effects on the way out. Alarm records stay owned by the
// scheduler; the controller only tracks which alarm is ringing.
package session
