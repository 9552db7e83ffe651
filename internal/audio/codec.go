package audio

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
)

const (
	InputSampleRate  = 16000
	OutputSampleRate = 24000

	// CaptureFrames is the number of mono samples per microphone chunk.
	CaptureFrames = 4096

	PCMMimeType = "audio/pcm;rate=16000"
)

type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return "decode " + e.Op
	}
	return fmt.Sprintf("decode %s: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Buffer holds de-interleaved float samples, one slice per channel.
type Buffer struct {
	SampleRate int
	Data       [][]float32
}

func (b *Buffer) NumberOfChannels() int {
	if b == nil {
		return 0
	}
	return len(b.Data)
}

// Length is the number of frames per channel.
func (b *Buffer) Length() int {
	if b == nil || len(b.Data) == 0 {
		return 0
	}
	return len(b.Data[0])
}

// Duration in seconds.
func (b *Buffer) Duration() float64 {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return float64(b.Length()) / float64(b.SampleRate)
}

// EncodeBytesToText maps each byte to one character and base64-encodes the
// result, which for raw bytes is plain standard base64.
func EncodeBytesToText(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

func DecodeTextToBytes(text string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, &DecodeError{Op: "base64", Err: err}
	}
	return b, nil
}

// DecodePCMToAudioBuffer reads little-endian signed 16-bit PCM, interleaved by
// channel. A trailing partial frame is dropped.
func DecodePCMToAudioBuffer(b []byte, sampleRate, channels int) (*Buffer, error) {
	if channels <= 0 {
		return nil, &DecodeError{Op: "pcm", Err: fmt.Errorf("invalid channel count %d", channels)}
	}
	if sampleRate <= 0 {
		return nil, &DecodeError{Op: "pcm", Err: fmt.Errorf("invalid sample rate %d", sampleRate)}
	}

	frames := len(b) / 2 / channels
	buf := &Buffer{SampleRate: sampleRate, Data: make([][]float32, channels)}
	for c := range buf.Data {
		buf.Data[c] = make([]float32, frames)
	}

	for i := 0; i < frames; i++ {
		for c := 0; c < channels; c++ {
			off := (i*channels + c) * 2
			s := int16(binary.LittleEndian.Uint16(b[off:]))
			buf.Data[c][i] = float32(s) / 32768.0
		}
	}
	return buf, nil
}

// EncodeFloatToPCM converts samples to little-endian 16-bit PCM. Out of range
// input is clipped instead of wrapping.
func EncodeFloatToPCM(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		v := float64(s) * 32768
		switch {
		case math.IsNaN(v):
			v = 0
		case v > math.MaxInt16:
			v = math.MaxInt16
		case v < math.MinInt16:
			v = math.MinInt16
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(v)))
	}
	return out
}

// FloatsFromLE decodes little-endian float32 samples. Trailing bytes that do
// not form a full sample are ignored.
func FloatsFromLE(b []byte) []float32 {
	n := len(b) / 4
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out
}

// FloatsToLE is the inverse of FloatsFromLE.
func FloatsToLE(samples []float32) []byte {
	out := make([]byte, len(samples)*4)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(s))
	}
	return out
}
