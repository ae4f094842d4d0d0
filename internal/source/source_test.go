// SPDX-License-Identifier: MIT
package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"spectrum/internal/fft"
	"spectrum/pkg/signal"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTone(t *testing.T, tone Tone) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tone.wav")
	require.NoError(t, WriteToneFile(path, tone))
	return path
}

func TestToneRoundTrip(t *testing.T) {
	for _, depth := range []int{8, 16, 24, 32} {
		t.Run(fmt.Sprintf("%d-bit", depth), func(t *testing.T) {
			tone := Tone{Frequency: 1000, Amplitude: 0.5, Duration: 250 * time.Millisecond, SampleRate: 8000, BitDepth: depth}
			path := writeTone(t, tone)

			src, err := OpenWAV(path, 500)
			require.NoError(t, err)
			defer src.Close()

			assert.Equal(t, 8000.0, src.SampleRate())
			assert.Equal(t, 1, src.Channels())
			assert.Equal(t, depth, src.BitDepth())

			want := signal.Sine(tone.Frames(), 8000, 1000, 0.5)
			tolerance := 2.0 / float64(int64(1)<<(depth-1))

			var got []float64
			for {
				block, err := src.Next()
				if errors.Is(err, io.EOF) {
					break
				}
				require.NoError(t, err)
				got = append(got, block...)
			}

			require.Len(t, got, len(want))
			assert.Equal(t, len(want), src.Position())
			for i := range want {
				assert.InDelta(t, want[i], got[i], tolerance, "sample %d", i)
			}
		})
	}
}

func TestAnalyzeFindsTone(t *testing.T) {
	const windowSize = 1000
	path := writeTone(t, Tone{Frequency: 1000, Amplitude: 0.8, Duration: 520 * time.Millisecond, SampleRate: 8000, BitDepth: 16})

	src, err := OpenWAV(path, windowSize)
	require.NoError(t, err)
	defer src.Close()

	a, err := fft.NewAnalyzer(windowSize, 0)
	require.NoError(t, err)

	var blocks int
	err = src.Analyze(a, func(index int, frame *fft.Frame) error {
		assert.Equal(t, blocks, index)
		blocks++
		peak := signal.PeakBin(frame.Data(), 1, frame.Size()-1)
		assert.InDelta(t, 1000.0, a.BinFrequency(peak, src.SampleRate()), 8.0, "block %d", index)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 5, blocks, "4160 frames make four full blocks and one short one")
}

func TestAnalyzeStopsOnCallbackError(t *testing.T) {
	path := writeTone(t, Tone{Frequency: 440, Amplitude: 0.5, Duration: time.Second, SampleRate: 8000, BitDepth: 16})
	src, err := OpenWAV(path, 256)
	require.NoError(t, err)
	defer src.Close()

	a, err := fft.NewAnalyzer(256, 0)
	require.NoError(t, err)

	stop := errors.New("stop")
	calls := 0
	err = src.Analyze(a, func(int, *fft.Frame) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestStereoUsesFirstChannel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stereo.wav")
	f, err := os.Create(path)
	require.NoError(t, err)

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 2, SampleRate: 8000},
		Data:           []int{1000, -5, 2000, -5, -3000, -5, 4000, -5},
		SourceBitDepth: 16,
	}
	enc := wav.NewEncoder(f, 8000, 16, 2, 1)
	require.NoError(t, enc.Write(buf))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())

	src, err := OpenWAV(path, 16)
	require.NoError(t, err)
	defer src.Close()

	block, err := src.Next()
	require.NoError(t, err)
	want := []float64{1000.0 / 32768, 2000.0 / 32768, -3000.0 / 32768, 4000.0 / 32768}
	assert.InDeltaSlice(t, want, []float64(block), 1e-12)

	_, err = src.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestNewWAVSourceRejectsInvalidInput(t *testing.T) {
	_, err := NewWAVSource(bytes.NewReader([]byte("definitely not a wav file")), 64)
	assert.ErrorIs(t, err, ErrInvalidWAV)

	_, err = NewWAVSource(bytes.NewReader(nil), 0)
	assert.Error(t, err)

	_, err = OpenWAV(filepath.Join(t.TempDir(), "missing.wav"), 64)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestToneValidation(t *testing.T) {
	valid := Tone{Frequency: 440, Amplitude: 0.5, Duration: time.Second, SampleRate: 8000, BitDepth: 16}
	require.NoError(t, valid.validate())
	assert.Equal(t, 8000, valid.Frames())

	tests := []struct {
		name   string
		modify func(*Tone)
	}{
		{"Zero sample rate", func(t *Tone) { t.SampleRate = 0 }},
		{"Above Nyquist", func(t *Tone) { t.Frequency = 5000 }},
		{"Negative frequency", func(t *Tone) { t.Frequency = -1 }},
		{"Amplitude above one", func(t *Tone) { t.Amplitude = 1.5 }},
		{"Zero duration", func(t *Tone) { t.Duration = 0 }},
		{"Odd bit depth", func(t *Tone) { t.BitDepth = 12 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tone := valid
			tt.modify(&tone)
			path := filepath.Join(t.TempDir(), "unused.wav")
			assert.Error(t, WriteToneFile(path, tone))
			assert.NoFileExists(t, path)
		})
	}
}
