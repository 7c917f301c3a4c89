// Package alarms implements persistence for the alarm collection.
//
// The BadgerRepository stores one JSON record per alarm in a Badger database
// and exposes the Repository interface the scheduler depends on. Persistence
// failures are non-fatal to the scheduler, which continues with its in-memory
// collection.
package alarms
