package effects

import (
	"context"
	"fmt"
	"sync"
	"time"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
)

// defaultVibrationPattern alternates pulse and pause while ringing.
//
//nolint:gochecknoglobals // Fixed pattern shared by every ringing session.
var defaultVibrationPattern = []time.Duration{
	500 * time.Millisecond,
	300 * time.Millisecond,
}

// Orchestrator sequences the side effects of a ringing alarm and reverses
// them on stop. Individual effect failures are isolated: one effect failing
// never prevents the others.
type Orchestrator struct {
	sound        SoundStarter
	notification NotificationSink
	vibration    VibrationSink
	wakeLock     WakeLockSink

	mu sync.Mutex
	// generation invalidates late wake-lock arrivals from earlier starts.
	generation uint64
	active     bool
	playback   SoundPlayback
	notifyID   uint32
	notified   bool
	vibrating  bool
	lock       Lock
}

// NewOrchestrator wires the provided sinks. Any sink may be nil, in which
// case that effect is skipped entirely.
func NewOrchestrator(sound SoundStarter, notification NotificationSink, vibration VibrationSink, wakeLock WakeLockSink) *Orchestrator {
	return &Orchestrator{
		sound:        sound,
		notification: notification,
		vibration:    vibration,
		wakeLock:     wakeLock,
	}
}

// Start activates every effect for the firing alarm. The wake lock is
// requested first so a lock failure can never delay sound or notification;
// it resolves in the background and is discarded if the session already
// stopped by the time it arrives.
func (o *Orchestrator) Start(ctx context.Context, a *domain.Alarm) {
	o.mu.Lock()
	if o.active {
		o.mu.Unlock()
		return
	}

	o.active = true
	o.generation++
	generation := o.generation
	o.mu.Unlock()

	if o.wakeLock != nil {
		go o.acquireWakeLock(ctx, generation)
	}

	o.startSound(ctx, a)
	o.startVibration(ctx, a)
	o.showNotification(ctx, a)
}

// Stop reverses every effect Start may have begun, even after a partial
// start. It is idempotent: stopping an idle orchestrator is a no-op.
func (o *Orchestrator) Stop(ctx context.Context) {
	o.mu.Lock()

	if !o.active {
		o.mu.Unlock()
		return
	}

	o.active = false
	playback := o.playback
	o.playback = nil
	notifyID, notified := o.notifyID, o.notified
	o.notified = false
	vibrating := o.vibrating
	o.vibrating = false
	lock := o.lock
	o.lock = nil

	o.mu.Unlock()

	if playback != nil {
		playback.Stop()
	}

	if vibrating && o.vibration != nil {
		if err := o.vibration.Stop(ctx); err != nil {
			logger.Warnf(ctx, "Failed to stop vibration: %v", err)
		}
	}

	if notified && o.notification != nil {
		if err := o.notification.Close(ctx, notifyID); err != nil {
			logger.Warnf(ctx, "Failed to close notification: %v", err)
		}
	}

	if lock != nil {
		if err := lock.Release(); err != nil {
			logger.Warnf(ctx, "Failed to release wake lock: %v", err)
		}
	}
}

// acquireWakeLock requests the inhibitor and stores it, or releases it right
// away when the session stopped while the request was pending.
func (o *Orchestrator) acquireWakeLock(ctx context.Context, generation uint64) {
	lock, err := o.wakeLock.Acquire(ctx)
	if err != nil {
		logger.Warnf(ctx, "Wake lock unavailable, ringing without it: %v", err)
		return
	}

	if lock == nil {
		return
	}

	o.mu.Lock()
	stale := !o.active || o.generation != generation
	if !stale {
		o.lock = lock
	}
	o.mu.Unlock()

	if stale {
		if err := lock.Release(); err != nil {
			logger.Warnf(ctx, "Failed to release late wake lock: %v", err)
		}
	}
}

func (o *Orchestrator) startSound(ctx context.Context, a *domain.Alarm) {
	if o.sound == nil {
		return
	}

	playback, err := o.sound.Play(ctx, a.Sound, a.CustomSound, a.GradualVolume)
	if err != nil {
		logger.Errorf(ctx, "Failed to start alarm sound: %v", err)
		return
	}

	o.mu.Lock()
	if o.active {
		o.playback = playback
		playback = nil
	}
	o.mu.Unlock()

	// Stopped while Play was in flight.
	if playback != nil {
		playback.Stop()
	}
}

func (o *Orchestrator) startVibration(ctx context.Context, a *domain.Alarm) {
	if !a.Vibration || o.vibration == nil {
		return
	}

	if err := o.vibration.Start(ctx, defaultVibrationPattern); err != nil {
		logger.Warnf(ctx, "Vibration unavailable: %v", err)
		return
	}

	o.mu.Lock()
	o.vibrating = o.active
	o.mu.Unlock()
}

func (o *Orchestrator) showNotification(ctx context.Context, a *domain.Alarm) {
	if o.notification == nil {
		return
	}

	handle, err := o.notification.Show(ctx, a.Label, ringingBody(a), a.ID)
	if err != nil {
		logger.Warnf(ctx, "Notification unavailable: %v", err)
		return
	}

	o.mu.Lock()
	if o.active {
		o.notifyID = handle
		o.notified = true
		o.mu.Unlock()

		return
	}
	o.mu.Unlock()

	// Stopped while Show was in flight.
	if err := o.notification.Close(ctx, handle); err != nil {
		logger.Warnf(ctx, "Failed to close late notification: %v", err)
	}
}

// ringingBody renders the notification body for a firing alarm.
func ringingBody(a *domain.Alarm) string {
	return fmt.Sprintf("Alarm set for %02d:%02d is ringing", a.Hour, a.Minute)
}
