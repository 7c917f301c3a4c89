package effects

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
)

var errSinkUnavailable = errors.New("sink unavailable")

// fakePlayback records stop calls.
type fakePlayback struct {
	mu      sync.Mutex
	stopped int
}

func (p *fakePlayback) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopped++
}

func (p *fakePlayback) stopCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.stopped
}

// fakeSound hands out a single playback, optionally failing.
type fakeSound struct {
	playback *fakePlayback
	err      error
	started  int
}

func (s *fakeSound) Play(context.Context, domain.SoundKind, []byte, bool) (SoundPlayback, error) {
	if s.err != nil {
		return nil, s.err
	}

	s.started++

	return s.playback, nil
}

// fakeNotifier counts shows and closes, optionally failing Show.
type fakeNotifier struct {
	err    error
	shown  int
	closed []uint32
}

func (n *fakeNotifier) Show(context.Context, string, string, string) (uint32, error) {
	if n.err != nil {
		return 0, n.err
	}

	n.shown++

	return uint32(40 + n.shown), nil
}

func (n *fakeNotifier) Close(_ context.Context, handle uint32) error {
	n.closed = append(n.closed, handle)

	return nil
}

// fakeVibrator tracks start/stop pairs.
type fakeVibrator struct {
	running bool
	stops   int
}

func (v *fakeVibrator) Start(context.Context, []time.Duration) error {
	v.running = true

	return nil
}

func (v *fakeVibrator) Stop(context.Context) error {
	v.running = false
	v.stops++

	return nil
}

// fakeLock counts releases.
type fakeLock struct {
	mu       sync.Mutex
	released int
}

func (l *fakeLock) Release() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.released++

	return nil
}

func (l *fakeLock) releaseCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.released
}

// fakeWakeLock resolves when allowed to, simulating a slow acquisition.
type fakeWakeLock struct {
	lock    *fakeLock
	err     error
	gate    chan struct{}
	granted chan struct{}
}

func (w *fakeWakeLock) Acquire(context.Context) (Lock, error) {
	if w.gate != nil {
		<-w.gate
	}

	if w.granted != nil {
		defer close(w.granted)
	}

	if w.err != nil {
		return nil, w.err
	}

	return w.lock, nil
}

func ringingAlarm() *domain.Alarm {
	return &domain.Alarm{
		ID:            "a-1",
		Hour:          7,
		Label:         "Wake up",
		Repeat:        domain.RepeatDaily,
		Sound:         domain.SoundDefault,
		SnoozeMinutes: 5,
		Vibration:     true,
	}
}

// TestStartStop_UnwindsEverything verifies the full start/stop round trip.
func TestStartStop_UnwindsEverything(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	playback := &fakePlayback{}
	soundSink := &fakeSound{playback: playback}
	notifier := &fakeNotifier{}
	vibrator := &fakeVibrator{}
	granted := make(chan struct{})
	wakeLock := &fakeWakeLock{lock: &fakeLock{}, granted: granted}

	o := NewOrchestrator(soundSink, notifier, vibrator, wakeLock)
	o.Start(ctx, ringingAlarm())
	<-granted

	require.Equal(t, 1, soundSink.started)
	require.Equal(t, 1, notifier.shown)
	require.True(t, vibrator.running)

	o.Stop(ctx)

	require.Equal(t, 1, playback.stopCount())
	require.False(t, vibrator.running)
	require.Len(t, notifier.closed, 1)
	require.Eventually(t, func() bool {
		return wakeLock.lock.releaseCount() == 1
	}, time.Second, 10*time.Millisecond)
}

// TestStart_FailuresAreIsolated ensures one failing effect never blocks the rest.
func TestStart_FailuresAreIsolated(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	playback := &fakePlayback{}
	soundSink := &fakeSound{playback: playback}
	notifier := &fakeNotifier{err: errSinkUnavailable}
	vibrator := &fakeVibrator{}
	wakeLock := &fakeWakeLock{err: errSinkUnavailable}

	o := NewOrchestrator(soundSink, notifier, vibrator, wakeLock)
	o.Start(ctx, ringingAlarm())

	require.Equal(t, 1, soundSink.started)
	require.True(t, vibrator.running)

	o.Stop(ctx)
	require.Equal(t, 1, playback.stopCount())
	require.Empty(t, notifier.closed)
}

// TestStop_Idempotent checks a double stop has the same observable effect as one.
func TestStop_Idempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	playback := &fakePlayback{}
	soundSink := &fakeSound{playback: playback}
	notifier := &fakeNotifier{}
	vibrator := &fakeVibrator{}

	o := NewOrchestrator(soundSink, notifier, vibrator, nil)
	o.Start(ctx, ringingAlarm())
	o.Stop(ctx)
	o.Stop(ctx)

	require.Equal(t, 1, playback.stopCount())
	require.Equal(t, 1, vibrator.stops)
	require.Len(t, notifier.closed, 1)
}

// TestStop_BeforeStart is a no-op.
func TestStop_BeforeStart(t *testing.T) {
	t.Parallel()

	o := NewOrchestrator(nil, nil, nil, nil)
	o.Stop(context.Background())
}

// TestStop_ReleasesLateWakeLock covers stopping while the wake-lock request
// is still pending: the lock must be released when it finally resolves.
func TestStop_ReleasesLateWakeLock(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	gate := make(chan struct{})
	granted := make(chan struct{})
	lock := &fakeLock{}
	wakeLock := &fakeWakeLock{lock: lock, gate: gate, granted: granted}

	o := NewOrchestrator(nil, nil, nil, wakeLock)
	o.Start(ctx, ringingAlarm())
	o.Stop(ctx)

	// Let the pending acquisition resolve only after the stop.
	close(gate)
	<-granted

	require.Eventually(t, func() bool {
		return lock.releaseCount() == 1
	}, time.Second, 10*time.Millisecond)
}

// TestRestart_UsesFreshEffects verifies a second session starts cleanly.
func TestRestart_UsesFreshEffects(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	playback := &fakePlayback{}
	soundSink := &fakeSound{playback: playback}
	notifier := &fakeNotifier{}

	o := NewOrchestrator(soundSink, notifier, nil, nil)
	o.Start(ctx, ringingAlarm())
	o.Stop(ctx)
	o.Start(ctx, ringingAlarm())
	o.Stop(ctx)

	require.Equal(t, 2, soundSink.started)
	require.Equal(t, 2, playback.stopCount())
	require.Len(t, notifier.closed, 2)
}
