package sound

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
)

const (
	// sampleRate and channelCount describe the engine's fixed output format.
	sampleRate   = 44100
	channelCount = 1

	// rampStartLevel is the initial gain of a gradual-volume playback.
	rampStartLevel = 0.1
	// rampDuration is how long a gradual-volume ramp takes to reach full level.
	rampDuration = 30 * time.Second

	// pollInterval is how often the play loop checks for completion or stop.
	pollInterval = 10 * time.Millisecond
)

// Global audio context. The audio device can be opened once per process.
//
//nolint:gochecknoglobals // oto allows a single context per process.
var (
	audioCtx     *oto.Context
	audioCtxOnce sync.Once
	audioCtxErr  error
)

// initAudioContext opens the shared audio device the first time it is needed.
func initAudioContext(ctx context.Context) (*oto.Context, error) {
	audioCtxOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channelCount,
			Format:       oto.FormatSignedInt16LE,
		}

		c, ready, err := oto.NewContext(op)
		if err != nil {
			audioCtxErr = err
			return
		}

		// Wait for the hardware audio device to become ready.
		<-ready

		audioCtx = c
		logger.Debug(ctx, "Audio context initialized")
	})

	return audioCtx, audioCtxErr
}

// Engine turns alarm sound settings into looped playback.
type Engine struct{}

// NewEngine creates a sound engine. The audio device is opened lazily on the
// first Play call so construction never blocks on hardware.
func NewEngine() *Engine {
	return &Engine{}
}

// Playback controls one looped alarm sound until stopped.
type Playback struct {
	stopChan chan struct{}
	player   *oto.Player
	stopped  bool
	mu       sync.Mutex
}

// Play resolves the alarm's sound to a PCM pattern once and loops it until the
// returned playback is stopped. With gradualVolume the output gain ramps
// linearly from rampStartLevel to full level over rampDuration, independent of
// loop cycling. The call never blocks on playback.
func (e *Engine) Play(
	ctx context.Context,
	kind domain.SoundKind,
	customPayload []byte,
	gradualVolume bool,
) (*Playback, error) {
	pcm := resolvePattern(ctx, kind, customPayload)

	audio, err := initAudioContext(ctx)
	if err != nil {
		return nil, err
	}

	p := &Playback{
		stopChan: make(chan struct{}),
	}

	go p.playLoop(ctx, audio, pcm, gradualVolume)

	return p, nil
}

// playLoop replays the pattern until stopped, recreating the device player
// each cycle so finite patterns loop seamlessly.
func (p *Playback) playLoop(ctx context.Context, audio *oto.Context, pcm []byte, gradualVolume bool) {
	startedAt := time.Now()

	for {
		p.mu.Lock()
		if p.stopped {
			p.mu.Unlock()
			return
		}

		var src io.Reader = bytes.NewReader(pcm)
		if gradualVolume {
			src = &gainReader{src: src, startedAt: startedAt}
		}

		player := audio.NewPlayer(src)
		p.player = player
		p.mu.Unlock()

		player.Play()

		for player.IsPlaying() {
			select {
			case <-p.stopChan:
				player.Pause()
				_ = player.Close()

				return
			case <-time.After(pollInterval):
			}
		}

		if err := player.Close(); err != nil {
			logger.Warnf(ctx, "Failed to close audio player: %v", err)
		}

		select {
		case <-p.stopChan:
			return
		default:
		}
	}
}

// Stop silences the playback immediately. Any gain ramp in progress dies with
// it. Stop is idempotent and safe from any goroutine.
func (p *Playback) Stop() {
	if p == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return
	}

	p.stopped = true
	close(p.stopChan)

	if p.player != nil {
		p.player.Pause()
	}
}

// gainReader scales 16-bit little-endian samples by the ramp gain at read time.
type gainReader struct {
	src       io.Reader
	startedAt time.Time

	// carry holds the low byte of a sample a previous read split in half,
	// so scaling always sees whole samples and stays aligned.
	carry    byte
	hasCarry bool
}

// Read applies the current ramp gain to every sample it passes through. A
// read that would split a sample holds the dangling byte back until the next
// call instead of emitting it unscaled.
func (g *gainReader) Read(buf []byte) (int, error) {
	offset := 0
	if g.hasCarry && len(buf) > 0 {
		buf[0] = g.carry
		g.hasCarry = false
		offset = 1
	}

	n, err := g.src.Read(buf[offset:])
	n += offset

	if n%2 == 1 {
		n--
		g.carry = buf[n]
		g.hasCarry = true
	}

	gain := gainAt(time.Since(g.startedAt))
	if gain < 1 {
		scaleSamples(buf[:n], gain)
	}

	return n, err
}

// gainAt maps elapsed playback time to output gain: rampStartLevel at zero,
// rising linearly to 1.0 at rampDuration and staying there.
func gainAt(elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return rampStartLevel
	}

	if elapsed >= rampDuration {
		return 1
	}

	progress := float64(elapsed) / float64(rampDuration)

	return rampStartLevel + (1-rampStartLevel)*progress
}

// scaleSamples multiplies every int16 sample in the buffer by the gain.
func scaleSamples(buf []byte, gain float64) {
	for i := 0; i+1 < len(buf); i += 2 {
		sample := int16(uint16(buf[i]) | uint16(buf[i+1])<<8)
		scaled := int16(float64(sample) * gain)
		buf[i] = byte(uint16(scaled))
		buf[i+1] = byte(uint16(scaled) >> 8)
	}
}

// resolvePattern maps the sound selection to a PCM pattern exactly once per
// playback. A custom payload that fails to decode falls back to the default
// generated kind.
func resolvePattern(ctx context.Context, kind domain.SoundKind, customPayload []byte) []byte {
	if kind != domain.SoundCustom {
		return Synthesize(kind)
	}

	pcm, err := decodeWAV(customPayload)
	if err != nil {
		logger.Warnf(ctx, "Custom sound unusable, falling back to default: %v", err)

		return Synthesize(domain.SoundDefault)
	}

	return pcm
}
