// SPDX-License-Identifier: MIT
//
// Package source reads and writes the PCM WAV files used for offline
// analysis. Decoding and encoding are delegated to go-audio/wav.
package source

import (
	"errors"
	"fmt"
	"io"
	"os"

	"spectrum/internal/fft"
	applog "spectrum/internal/log"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ErrInvalidWAV is returned for input that is not a readable PCM WAV file.
var ErrInvalidWAV = errors.New("not a valid PCM WAV file")

// WAVSource splits the first channel of a WAV stream into blocks of at most
// blockSize samples normalised to [-1, 1).
type WAVSource struct {
	closer  io.Closer
	decoder *wav.Decoder

	sampleRate float64
	channels   int
	bitDepth   int
	scale      float64
	offset     float64 // 8-bit PCM is unsigned

	pcm   *audio.IntBuffer
	block fft.Samples
	read  int // frames delivered so far
}

// OpenWAV opens the file at path. The returned source owns the file and
// closes it in Close.
func OpenWAV(path string, blockSize int) (*WAVSource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open WAV file: %w", err)
	}

	s, err := NewWAVSource(file, blockSize)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.closer = file
	return s, nil
}

// NewWAVSource reads the header from r and prepares to deliver blocks of
// blockSize frames.
func NewWAVSource(r io.ReadSeeker, blockSize int) (*WAVSource, error) {
	if blockSize <= 0 {
		return nil, fmt.Errorf("block size must be positive, got %d", blockSize)
	}

	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, ErrInvalidWAV
	}
	if err := decoder.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWAV, err)
	}
	if decoder.WavAudioFormat != 1 {
		return nil, fmt.Errorf("%w: unsupported audio format %d", ErrInvalidWAV, decoder.WavAudioFormat)
	}

	channels := int(decoder.NumChans)
	bitDepth := int(decoder.BitDepth)

	s := &WAVSource{
		decoder:    decoder,
		sampleRate: float64(decoder.SampleRate),
		channels:   channels,
		bitDepth:   bitDepth,
		scale:      1 / float64(int64(1)<<(bitDepth-1)),
		pcm: &audio.IntBuffer{
			Format: decoder.Format(),
			Data:   make([]int, blockSize*channels),
		},
		block: make(fft.Samples, 0, blockSize),
	}
	if bitDepth == 8 {
		s.offset = 128
	}

	applog.Debugf("Source: %d Hz, %d channel(s), %d-bit, block of %d frames",
		decoder.SampleRate, channels, bitDepth, blockSize)
	return s, nil
}

// SampleRate returns the sample rate of the stream in Hz.
func (s *WAVSource) SampleRate() float64 { return s.sampleRate }

// Channels returns the number of interleaved channels in the stream.
func (s *WAVSource) Channels() int { return s.channels }

// BitDepth returns the PCM sample width in bits.
func (s *WAVSource) BitDepth() int { return s.bitDepth }

// Position returns the number of frames delivered so far.
func (s *WAVSource) Position() int { return s.read }

// Next returns the next block. The final block may be shorter than the block
// size. After the last block Next returns io.EOF. The returned slice is
// reused by the following call.
func (s *WAVSource) Next() (fft.Samples, error) {
	n, err := s.decoder.PCMBuffer(s.pcm)
	if err != nil {
		return nil, fmt.Errorf("failed to decode PCM data: %w", err)
	}

	frames := n / s.channels
	if frames == 0 {
		return nil, io.EOF
	}

	s.block = s.block[:frames]
	for i := range frames {
		s.block[i] = (float64(s.pcm.Data[i*s.channels]) - s.offset) * s.scale
	}
	s.read += frames
	return s.block, nil
}

// Analyze feeds every block through a and calls fn with the block index and
// the resulting frame. The frame is only valid during the call.
func (s *WAVSource) Analyze(a *fft.Analyzer, fn func(index int, frame *fft.Frame) error) error {
	for index := 0; ; index++ {
		block, err := s.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		frame, err := a.Compute(block)
		if err != nil {
			return fmt.Errorf("block %d: %w", index, err)
		}
		if err := fn(index, frame); err != nil {
			return err
		}
	}
}

// Close releases the underlying file, if the source owns one.
func (s *WAVSource) Close() error {
	if s.closer == nil {
		return nil
	}
	err := s.closer.Close()
	s.closer = nil
	return err
}
