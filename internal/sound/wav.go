package sound

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

var (
	// errNotWAV is returned when the payload lacks a RIFF/WAVE header.
	errNotWAV = errors.New("payload is not a WAV file")
	// errNoData is returned when the payload has no data chunk.
	errNoData = errors.New("WAV payload has no data chunk")
	// errUnsupportedFormat is returned for sample formats the engine cannot play.
	errUnsupportedFormat = errors.New("unsupported WAV sample format")
)

// decodeWAV extracts 16-bit PCM from a WAV payload and converts it to the
// engine's mono output format. Decoding happens once per playback; the
// returned buffer is then looped as-is.
func decodeWAV(payload []byte) ([]byte, error) {
	r := bytes.NewReader(payload)

	header := make([]byte, 12)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, errNotWAV
	}

	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return nil, errNotWAV
	}

	var (
		channels int
		bitDepth int
		data     []byte
	)

	for {
		chunkHeader := make([]byte, 8)
		if _, err := io.ReadFull(r, chunkHeader); err != nil {
			break
		}

		chunkID := string(chunkHeader[0:4])
		chunkSize := binary.LittleEndian.Uint32(chunkHeader[4:8])

		switch chunkID {
		case "fmt ":
			chunk := make([]byte, chunkSize)
			if _, err := io.ReadFull(r, chunk); err != nil {
				return nil, fmt.Errorf("short fmt chunk: %w", err)
			}

			if len(chunk) < 16 {
				return nil, errUnsupportedFormat
			}

			channels = int(binary.LittleEndian.Uint16(chunk[2:4]))
			bitDepth = int(binary.LittleEndian.Uint16(chunk[14:16]))
		case "data":
			data = make([]byte, chunkSize)
			if _, err := io.ReadFull(r, data); err != nil {
				return nil, fmt.Errorf("short data chunk: %w", err)
			}
		default:
			if _, err := r.Seek(int64(chunkSize), io.SeekCurrent); err != nil {
				return nil, fmt.Errorf("skip %s chunk: %w", chunkID, err)
			}
		}

		if data != nil && bitDepth != 0 {
			break
		}
	}

	if data == nil {
		return nil, errNoData
	}

	if bitDepth != 16 || channels < 1 || channels > 2 {
		return nil, fmt.Errorf("%w: %d-bit, %d channel(s)", errUnsupportedFormat, bitDepth, channels)
	}

	if channels == 2 {
		return downmixStereo(data), nil
	}

	return data, nil
}

// downmixStereo averages left and right 16-bit samples into mono.
func downmixStereo(data []byte) []byte {
	mono := make([]byte, 0, len(data)/2)

	for i := 0; i+3 < len(data); i += 4 {
		left := int16(binary.LittleEndian.Uint16(data[i : i+2]))
		right := int16(binary.LittleEndian.Uint16(data[i+2 : i+4]))
		mixed := int16((int32(left) + int32(right)) / 2)

		mono = binary.LittleEndian.AppendUint16(mono, uint16(mixed))
	}

	return mono
}
