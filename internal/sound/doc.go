// Package sound generates and replays alarm audio.
//
// Generated kinds are finite PCM patterns synthesized once per playback and
// looped until stopped. Custom payloads are decoded once (WAV) and looped the
// same way, falling back to the default pattern when undecodable. A
// gradual-volume playback ramps gain linearly from a low start level to full
// level over a fixed duration, independent of loop cycling.
package sound
