package effects

import (
	"context"
	"time"

	"github.com/oshokin/alarm-clock/internal/logger"
)

// NoopVibrator satisfies VibrationSink on hosts without a vibration motor.
// Desktop sessions fall in this bucket; the effect is silently skipped.
type NoopVibrator struct{}

// Start logs the request and succeeds without doing anything.
func (NoopVibrator) Start(ctx context.Context, pattern []time.Duration) error {
	logger.DebugKV(ctx, "Vibration not supported on this host", "pattern", pattern)

	return nil
}

// Stop is a no-op.
func (NoopVibrator) Stop(_ context.Context) error {
	return nil
}
