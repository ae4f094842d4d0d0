// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	applog "spectrum/internal/log"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ErrAlreadyRecording is returned by StartRecording while a recording runs.
var ErrAlreadyRecording = errors.New("already recording")

// RecordingFilename returns a timestamped file name for a new recording.
func RecordingFilename(now time.Time) string {
	return "recording_" + now.Format("20060102_150405") + ".wav"
}

// StartRecording writes captured input to filename as PCM WAV at the
// configured bit depth. It is safe to call while the input stream runs.
func (e *Engine) StartRecording(filename string) error {
	e.recMu.Lock()
	defer e.recMu.Unlock()

	if atomic.LoadInt32(&e.isRecording) == 1 {
		return ErrAlreadyRecording
	}

	bitDepth := e.config.Recording.BitDepth
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return fmt.Errorf("unsupported recording bit depth %d", bitDepth)
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create recording: %w", err)
	}
	e.outputFile = file

	channels := e.config.Audio.Channels
	sampleRate := int(e.config.Audio.SampleRate)
	e.wavEncoder = wav.NewEncoder(file, sampleRate, bitDepth, channels, 1)

	e.sampleBuf = &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: channels,
			SampleRate:  sampleRate,
		},
		Data:           make([]int, e.framesPerBuffer*channels),
		SourceBitDepth: bitDepth,
	}
	e.recordShift = uint(32 - bitDepth)

	atomic.StoreInt32(&e.isRecording, 1)
	applog.Infof("Engine: Recording to %s (%d-bit)", filename, bitDepth)

	return nil
}

// fillSampleBuf converts int32 input to the recording bit depth.
func (e *Engine) fillSampleBuf(in []int32) {
	e.sampleBuf.Data = e.sampleBuf.Data[:len(in)]
	offset := 0
	if e.recordShift == 24 {
		offset = 128 // 8-bit PCM is unsigned
	}
	for i, sample := range in {
		e.sampleBuf.Data[i] = int(sample>>e.recordShift) + offset
	}
}

// Recording reports whether input is being written to a file.
func (e *Engine) Recording() bool {
	return atomic.LoadInt32(&e.isRecording) == 1
}

// StopRecording finalises the WAV file. It waits for an in-flight callback
// write to finish, so it is safe to call while the input stream runs.
func (e *Engine) StopRecording() error {
	e.recMu.Lock()
	defer e.recMu.Unlock()

	if atomic.LoadInt32(&e.isRecording) == 0 {
		return nil
	}

	atomic.StoreInt32(&e.isRecording, 0)

	if e.wavEncoder != nil {
		if err := e.wavEncoder.Close(); err != nil {
			return err
		}
		e.wavEncoder = nil
	}

	if e.outputFile != nil {
		name := e.outputFile.Name()
		if err := e.outputFile.Close(); err != nil {
			return err
		}
		e.outputFile = nil
		applog.Infof("Engine: Recording saved to %s", name)
	}

	return nil
}

// Close stops the input stream and then any active recording.
func (e *Engine) Close() error {
	if err := e.StopInputStream(); err != nil {
		return err
	}

	return e.StopRecording()
}
