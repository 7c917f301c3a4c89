package alarms

import (
	"context"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
)

// Repository defines persistence operations for the alarm collection.
//
// The whole collection is written after every mutation, so concurrent
// writers resolve conflicts by last-write-wins at the record level.
type Repository interface {
	LoadAll(ctx context.Context) ([]*domain.Alarm, error)
	SaveAll(ctx context.Context, collection []*domain.Alarm) error
}
