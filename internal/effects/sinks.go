package effects

import (
	"context"
	"time"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
)

// Action names carried on ringing notifications and reported back when the
// user picks one.
const (
	ActionSnooze  = "snooze"
	ActionDismiss = "dismiss"
)

// NotificationSink posts and withdraws the ringing notification. The sink must
// tolerate the host declining notification permission: a refused Show reports
// an error the orchestrator logs and moves past.
type NotificationSink interface {
	Show(ctx context.Context, title, body, tag string) (uint32, error)
	Close(ctx context.Context, handle uint32) error
}

// VibrationSink drives a repeating vibration pattern. Implementations on
// hosts without a vibrator are no-ops.
type VibrationSink interface {
	Start(ctx context.Context, pattern []time.Duration) error
	Stop(ctx context.Context) error
}

// Lock is a held wake lock.
type Lock interface {
	Release() error
}

// WakeLockSink acquires a screen/sleep inhibitor. Acquisition is best-effort:
// the alarm must ring with or without it.
type WakeLockSink interface {
	Acquire(ctx context.Context) (Lock, error)
}

// SoundStarter begins looped alarm playback and hands back its stop control.
type SoundStarter interface {
	Play(ctx context.Context, kind domain.SoundKind, customPayload []byte, gradualVolume bool) (SoundPlayback, error)
}

// SoundPlayback silences a running playback.
type SoundPlayback interface {
	Stop()
}
