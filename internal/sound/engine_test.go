package sound

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
)

// TestGainAt_RampEndpoints pins the configured start level at t=0 and full
// level at and beyond the ramp duration.
func TestGainAt_RampEndpoints(t *testing.T) {
	t.Parallel()

	require.InDelta(t, rampStartLevel, gainAt(0), 1e-9)
	require.InDelta(t, 1.0, gainAt(rampDuration), 1e-9)
	require.InDelta(t, 1.0, gainAt(rampDuration+time.Minute), 1e-9)
}

// TestGainAt_Monotonic ensures the ramp only rises.
func TestGainAt_Monotonic(t *testing.T) {
	t.Parallel()

	prev := gainAt(0)
	for elapsed := time.Second; elapsed <= rampDuration; elapsed += time.Second {
		cur := gainAt(elapsed)
		require.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
}

// TestScaleSamples verifies int16 samples shrink proportionally to the gain.
func TestScaleSamples(t *testing.T) {
	t.Parallel()

	buf := make([]byte, 4)
	binary.LittleEndian.PutUint16(buf[0:2], uint16(int16(10000)))
	binary.LittleEndian.PutUint16(buf[2:4], uint16(int16(-10000)))

	scaleSamples(buf, 0.5)

	require.Equal(t, int16(5000), int16(binary.LittleEndian.Uint16(buf[0:2])))
	require.Equal(t, int16(-5000), int16(binary.LittleEndian.Uint16(buf[2:4])))
}

// TestGainReader_OddReadsStayAligned drains the reader through a destination
// buffer that splits samples and expects every sample scaled, none passed
// through raw, and no byte lost. A start instant in the future pins the gain
// at the ramp's start level so the expected values are exact.
func TestGainReader_OddReadsStayAligned(t *testing.T) {
	t.Parallel()

	pcm := make([]byte, 0, 18)
	for i := 0; i < 9; i++ {
		pcm = binary.LittleEndian.AppendUint16(pcm, uint16(int16(10000)))
	}

	g := &gainReader{src: bytes.NewReader(pcm), startedAt: time.Now().Add(time.Hour)}

	var out []byte

	buf := make([]byte, 3)

	for {
		n, err := g.Read(buf)
		out = append(out, buf[:n]...)

		if errors.Is(err, io.EOF) {
			break
		}

		require.NoError(t, err)
	}

	require.Len(t, out, len(pcm))

	want := int16(float64(10000) * rampStartLevel)
	for i := 0; i+1 < len(out); i += 2 {
		require.Equal(t, want, int16(binary.LittleEndian.Uint16(out[i:i+2])))
	}
}

// TestSynthesize_ProducesFinitePatterns checks every generated kind yields a
// non-empty, sample-aligned pattern.
func TestSynthesize_ProducesFinitePatterns(t *testing.T) {
	t.Parallel()

	kinds := []domain.SoundKind{
		domain.SoundDefault,
		domain.SoundGentle,
		domain.SoundRadar,
		domain.SoundBell,
	}

	for _, kind := range kinds {
		pcm := Synthesize(kind)
		require.NotEmpty(t, pcm, "kind %s", kind)
		require.Zero(t, len(pcm)%2, "kind %s not sample-aligned", kind)
	}
}

// TestSynthesize_UnknownKindFallsBack maps unknown kinds to the default pattern.
func TestSynthesize_UnknownKindFallsBack(t *testing.T) {
	t.Parallel()

	require.Equal(t, Synthesize(domain.SoundDefault), Synthesize(domain.SoundKind("nope")))
}

// buildWAV assembles a minimal RIFF/WAVE payload around the provided PCM data.
func buildWAV(t *testing.T, channels, bitDepth int, data []byte) []byte {
	t.Helper()

	var buf []byte
	buf = append(buf, "RIFF"...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(36+len(data)))
	buf = append(buf, "WAVE"...)

	buf = append(buf, "fmt "...)
	buf = binary.LittleEndian.AppendUint32(buf, 16)
	buf = binary.LittleEndian.AppendUint16(buf, 1) // PCM
	buf = binary.LittleEndian.AppendUint16(buf, uint16(channels))
	buf = binary.LittleEndian.AppendUint32(buf, sampleRate)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(sampleRate*channels*bitDepth/8))
	buf = binary.LittleEndian.AppendUint16(buf, uint16(channels*bitDepth/8))
	buf = binary.LittleEndian.AppendUint16(buf, uint16(bitDepth))

	buf = append(buf, "data"...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(data)))
	buf = append(buf, data...)

	return buf
}

// TestDecodeWAV_Mono extracts mono 16-bit PCM untouched.
func TestDecodeWAV_Mono(t *testing.T) {
	t.Parallel()

	data := []byte{0x10, 0x27, 0xF0, 0xD8} // 10000, -10000
	pcm, err := decodeWAV(buildWAV(t, 1, 16, data))
	require.NoError(t, err)
	require.Equal(t, data, pcm)
}

// TestDecodeWAV_StereoDownmix averages channel pairs into mono samples.
func TestDecodeWAV_StereoDownmix(t *testing.T) {
	t.Parallel()

	var data []byte
	data = binary.LittleEndian.AppendUint16(data, uint16(int16(2000)))  // L
	data = binary.LittleEndian.AppendUint16(data, uint16(int16(4000)))  // R
	data = binary.LittleEndian.AppendUint16(data, uint16(int16(-1000))) // L
	data = binary.LittleEndian.AppendUint16(data, uint16(int16(-3000))) // R

	pcm, err := decodeWAV(buildWAV(t, 2, 16, data))
	require.NoError(t, err)
	require.Len(t, pcm, 4)
	require.Equal(t, int16(3000), int16(binary.LittleEndian.Uint16(pcm[0:2])))
	require.Equal(t, int16(-2000), int16(binary.LittleEndian.Uint16(pcm[2:4])))
}

// TestDecodeWAV_Rejections covers garbage, missing data, and unsupported depth.
func TestDecodeWAV_Rejections(t *testing.T) {
	t.Parallel()

	_, err := decodeWAV([]byte("definitely not audio"))
	require.ErrorIs(t, err, errNotWAV)

	_, err = decodeWAV(buildWAV(t, 1, 8, []byte{1, 2}))
	require.ErrorIs(t, err, errUnsupportedFormat)
}

// TestResolvePattern_CustomFallback falls back to the default generated kind
// when the custom payload cannot be decoded.
func TestResolvePattern_CustomFallback(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	got := resolvePattern(ctx, domain.SoundCustom, []byte("broken payload"))
	require.Equal(t, Synthesize(domain.SoundDefault), got)

	data := []byte{0x01, 0x02}
	decoded := resolvePattern(ctx, domain.SoundCustom, buildWAV(t, 1, 16, data))
	require.Equal(t, data, decoded)
}

// TestPlaybackStop_Idempotent ensures stopping an unstarted playback twice is safe.
func TestPlaybackStop_Idempotent(t *testing.T) {
	t.Parallel()

	p := &Playback{stopChan: make(chan struct{})}
	p.Stop()
	p.Stop()

	var nilPlayback *Playback
	nilPlayback.Stop()
}
