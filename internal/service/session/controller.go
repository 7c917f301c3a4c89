package session

import (
	"context"
	"sync"
	"time"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
)

// Effects is the slice of the effect orchestrator the controller drives.
type Effects interface {
	Start(ctx context.Context, a *domain.Alarm)
	Stop(ctx context.Context)
}

// Ringing records the single alarm currently alerting the user.
type Ringing struct {
	// AlarmID identifies the firing alarm.
	AlarmID string
	// Label is the firing alarm's display label.
	Label string
	// StartedAt is when the session opened.
	StartedAt time.Time
}

// Controller is the snooze/dismiss state machine and the single source of
// truth for "is an alarm currently ringing". At most one ringing session
// exists at any instant; opening one is a check-and-set operation.
//
// The controller never holds live alarm records. Callers hand TryOpen a
// snapshot, and closing operations report the alarm ID so the collection
// owner applies any record mutation under its own lock.
type Controller struct {
	effects Effects

	mu      sync.Mutex
	current *Ringing
}

// NewController creates a controller with no open session.
func NewController(effects Effects) *Controller {
	return &Controller{effects: effects}
}

// TryOpen atomically opens a ringing session for the alarm unless one is
// already open. When it wins, the effect chain is started; when it loses,
// the fire is dropped and the caller treats the alarm as already handled.
func (c *Controller) TryOpen(ctx context.Context, a *domain.Alarm, now time.Time) bool {
	c.mu.Lock()

	if c.current != nil {
		open := *c.current
		c.mu.Unlock()

		logger.InfoKV(ctx, "Dropping fire, session already open",
			"alarm_id", a.ID, "ringing_alarm_id", open.AlarmID)

		return false
	}

	c.current = &Ringing{
		AlarmID:   a.ID,
		Label:     a.Label,
		StartedAt: now,
	}
	c.mu.Unlock()

	logger.InfoKV(ctx, "Ringing session opened", "alarm_id", a.ID, "label", a.Label)

	c.effects.Start(ctx, a)

	return true
}

// Snooze closes the session and unwinds every effect. Returns the ID of the
// alarm that was ringing, or false when no session is open (a harmless
// no-op). Setting the snooze instant on the record is the caller's job.
func (c *Controller) Snooze(ctx context.Context) (string, bool) {
	id, ok := c.close()
	if !ok {
		return "", false
	}

	c.effects.Stop(ctx)

	logger.InfoKV(ctx, "Ringing session closed for snooze", "alarm_id", id)

	return id, true
}

// Dismiss closes the session and unwinds every effect. Returns the ID of the
// alarm that was ringing, or false when nothing is ringing; calling it again
// after the session closed is a no-op.
func (c *Controller) Dismiss(ctx context.Context) (string, bool) {
	id, ok := c.close()
	if !ok {
		return "", false
	}

	c.effects.Stop(ctx)

	logger.InfoKV(ctx, "Ringing session closed for dismiss", "alarm_id", id)

	return id, true
}

// close clears the open session and reports which alarm it belonged to.
func (c *Controller) close() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return "", false
	}

	id := c.current.AlarmID
	c.current = nil

	return id, true
}

// Current returns a copy of the open ringing session, or nil.
func (c *Controller) Current() *Ringing {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return nil
	}

	copied := *c.current

	return &copied
}
