package sound

import (
	"math"
	"time"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
)

// maxAmplitude keeps synthesized peaks below int16 clipping.
const maxAmplitude = 0.6

// Synthesize produces one finite cycle of the generated pattern for the kind.
// The engine loops the cycle until stopped. Unknown kinds (including
// SoundCustom, which is resolved before synthesis) get the default pattern.
func Synthesize(kind domain.SoundKind) []byte {
	switch kind {
	case domain.SoundGentle:
		return gentlePattern()
	case domain.SoundRadar:
		return radarPattern()
	case domain.SoundBell:
		return bellPattern()
	default:
		return defaultPattern()
	}
}

// defaultPattern is three brisk 880 Hz beeps and a breath of silence.
func defaultPattern() []byte {
	var b patternBuilder

	for i := 0; i < 3; i++ {
		b.tone(880, 200*time.Millisecond, flatEnvelope)
		b.silence(150 * time.Millisecond)
	}

	b.silence(600 * time.Millisecond)

	return b.bytes()
}

// gentlePattern is a soft C5 swell designed to wake without startling.
func gentlePattern() []byte {
	var b patternBuilder

	b.tone(523.25, 1500*time.Millisecond, swellEnvelope)
	b.silence(700 * time.Millisecond)

	return b.bytes()
}

// radarPattern is four short high pips, sonar style.
func radarPattern() []byte {
	var b patternBuilder

	for i := 0; i < 4; i++ {
		b.tone(1200, 100*time.Millisecond, flatEnvelope)
		b.silence(100 * time.Millisecond)
	}

	b.silence(800 * time.Millisecond)

	return b.bytes()
}

// bellPattern is a decaying strike with a fifth overtone.
func bellPattern() []byte {
	var b patternBuilder

	b.chord([]float64{660, 990}, 1800*time.Millisecond, decayEnvelope)
	b.silence(200 * time.Millisecond)

	return b.bytes()
}

// patternBuilder accumulates 16-bit little-endian mono PCM.
type patternBuilder struct {
	data []byte
}

func (b *patternBuilder) tone(freq float64, d time.Duration, env func(progress float64) float64) {
	b.chord([]float64{freq}, d, env)
}

func (b *patternBuilder) chord(freqs []float64, d time.Duration, env func(progress float64) float64) {
	samples := int(float64(sampleRate) * d.Seconds())

	for i := 0; i < samples; i++ {
		t := float64(i) / sampleRate

		var v float64
		for _, f := range freqs {
			v += math.Sin(2 * math.Pi * f * t)
		}
		v /= float64(len(freqs))

		progress := float64(i) / float64(samples)
		v *= maxAmplitude * env(progress)

		sample := int16(v * math.MaxInt16)
		b.data = append(b.data, byte(uint16(sample)), byte(uint16(sample)>>8))
	}
}

func (b *patternBuilder) silence(d time.Duration) {
	samples := int(float64(sampleRate) * d.Seconds())
	b.data = append(b.data, make([]byte, samples*2)...)
}

func (b *patternBuilder) bytes() []byte {
	return b.data
}

// flatEnvelope holds full level with short edge fades to avoid clicks.
func flatEnvelope(progress float64) float64 {
	const edge = 0.05

	switch {
	case progress < edge:
		return progress / edge
	case progress > 1-edge:
		return (1 - progress) / edge
	default:
		return 1
	}
}

// swellEnvelope rises slowly and releases slowly.
func swellEnvelope(progress float64) float64 {
	return math.Sin(math.Pi * progress)
}

// decayEnvelope starts at full level and dies away exponentially.
func decayEnvelope(progress float64) float64 {
	return math.Exp(-4 * progress)
}
