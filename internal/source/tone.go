// SPDX-License-Identifier: MIT
package source

import (
	"fmt"
	"io"
	"math"
	"os"
	"time"

	applog "spectrum/internal/log"
	"spectrum/pkg/signal"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Tone describes a mono test sine.
type Tone struct {
	Frequency  float64 // Hz
	Amplitude  float64 // 0-1 of full scale
	Duration   time.Duration
	SampleRate int
	BitDepth   int // 8, 16, 24 or 32
}

// Frames returns the number of sample frames the tone spans.
func (t Tone) Frames() int {
	return int(t.Duration.Seconds() * float64(t.SampleRate))
}

func (t Tone) validate() error {
	switch {
	case t.SampleRate <= 0:
		return fmt.Errorf("sample rate must be positive, got %d", t.SampleRate)
	case t.Frequency < 0 || t.Frequency > float64(t.SampleRate)/2:
		return fmt.Errorf("frequency %g Hz is outside [0, %d]", t.Frequency, t.SampleRate/2)
	case t.Amplitude < 0 || t.Amplitude > 1:
		return fmt.Errorf("amplitude must be in [0, 1], got %g", t.Amplitude)
	case t.Duration <= 0:
		return fmt.Errorf("duration must be positive, got %s", t.Duration)
	}
	switch t.BitDepth {
	case 8, 16, 24, 32:
		return nil
	default:
		return fmt.Errorf("unsupported bit depth %d", t.BitDepth)
	}
}

// WriteTone encodes t as a mono PCM WAV stream to w.
func WriteTone(w io.WriteSeeker, t Tone) error {
	if err := t.validate(); err != nil {
		return err
	}

	samples := signal.Sine(t.Frames(), float64(t.SampleRate), t.Frequency, t.Amplitude)
	full := float64(int64(1)<<(t.BitDepth-1)) - 1
	var offset int
	if t.BitDepth == 8 {
		offset = 128
	}

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: t.SampleRate},
		Data:           make([]int, len(samples)),
		SourceBitDepth: t.BitDepth,
	}
	for i, s := range samples {
		buf.Data[i] = int(math.Round(s*full)) + offset
	}

	encoder := wav.NewEncoder(w, t.SampleRate, t.BitDepth, 1, 1)
	if err := encoder.Write(buf); err != nil {
		return fmt.Errorf("failed to write samples: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("failed to finalise WAV header: %w", err)
	}
	return nil
}

// WriteToneFile writes t to a new file at path.
func WriteToneFile(path string, t Tone) error {
	if err := t.validate(); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := WriteTone(file, t); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}

	applog.Infof("Source: Wrote %s (%g Hz, %s, %d Hz, %d-bit)", path, t.Frequency, t.Duration, t.SampleRate, t.BitDepth)
	return nil
}
