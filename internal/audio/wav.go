// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// DefaultBitDepth is used when writing WAV files.
const DefaultBitDepth = 16

// ErrInvalidWAV is returned when a stream is not a PCM WAV file.
var ErrInvalidWAV = errors.New("audio: invalid wav file")

// DecodeWAV reads a PCM WAV stream and downmixes it to a mono Buffer with
// samples scaled into [-1, 1].
func DecodeWAV(r io.ReadSeeker) (Buffer, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return Buffer{}, ErrInvalidWAV
	}

	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return Buffer{}, fmt.Errorf("%w: %v", ErrInvalidWAV, err)
	}
	if pcm == nil || pcm.Format == nil {
		return Buffer{}, ErrInvalidWAV
	}

	bitDepth := int(dec.BitDepth)
	if bitDepth == 0 {
		bitDepth = pcm.SourceBitDepth
	}
	interleaved := intToFloat(pcm.Data, bitDepth)

	mono, err := Downmix(interleaved, pcm.Format.NumChannels)
	if err != nil {
		return Buffer{}, err
	}

	return Buffer{Samples: mono, SampleRate: pcm.Format.SampleRate}, nil
}

// EncodeWAV writes b as a mono PCM WAV stream at the given bit depth.
// Samples are clipped to [-1, 1] before quantisation.
func EncodeWAV(w io.WriteSeeker, b Buffer, bitDepth int) error {
	if b.SampleRate <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSampleRate, b.SampleRate)
	}
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return fmt.Errorf("audio: unsupported bit depth %d", bitDepth)
	}

	enc := wav.NewEncoder(w, b.SampleRate, bitDepth, 1, 1)
	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: 1,
			SampleRate:  b.SampleRate,
		},
		Data:           floatToInt(b.Samples, bitDepth),
		SourceBitDepth: bitDepth,
	}

	if err := enc.Write(buf); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// LoadFile decodes the WAV file at path.
func LoadFile(path string) (Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return Buffer{}, err
	}
	defer f.Close()

	b, err := DecodeWAV(f)
	if err != nil {
		return Buffer{}, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// SaveFile writes b to path as a mono WAV file.
func SaveFile(path string, b Buffer, bitDepth int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := EncodeWAV(f, b, bitDepth); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

func fullScale(bitDepth int) float64 {
	return float64(int64(1) << (bitDepth - 1))
}

func intToFloat(data []int, bitDepth int) []float64 {
	out := make([]float64, len(data))
	if bitDepth == 8 {
		// 8-bit WAV is unsigned.
		for i, v := range data {
			out[i] = float64(v-128) / 128
		}
		return out
	}

	scale := fullScale(bitDepth)
	for i, v := range data {
		out[i] = float64(v) / scale
	}
	return out
}

func floatToInt(samples []float64, bitDepth int) []int {
	out := make([]int, len(samples))
	scale := fullScale(bitDepth)
	maxVal := scale - 1
	for i, s := range samples {
		s = math.Max(-1, math.Min(1, s))
		v := math.Round(s * scale)
		if v > maxVal {
			v = maxVal
		}
		if bitDepth == 8 {
			v += 128
		}
		out[i] = int(v)
	}
	return out
}
