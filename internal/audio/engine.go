// SPDX-License-Identifier: MIT
/*
Package audio captures live input with PortAudio and runs it through the
spectrum analyzer.

Each callback buffer holds exactly one analysis window. The engine:
  - gates silent buffers with a branchless peak detector
  - extracts the first channel and normalises it to [-1, 1)
  - computes the frame and publishes the configured spectrum view
  - runs registered frame processors
  - optionally records the raw input to WAV

Thread Safety:
  - the callback uses pre-allocated buffers only
  - the published spectrum is guarded by an RWMutex so readers (publishers,
    the terminal view) never observe a half-written frame
  - recording state is switched atomically; the encoder itself is only
    touched under recMu, so stopping a recording cannot race the callback
*/
package audio

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"spectrum/internal/config"
	"spectrum/internal/fft"
	applog "spectrum/internal/log"
	"spectrum/internal/transport"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/gordonklaus/portaudio"
)

// ErrNoFrame is returned by SpectrumInto before the first frame is computed.
var ErrNoFrame = transport.ErrNoSpectrum

// FrameProcessor consumes frames inside the capture callback. The frame is
// owned by the analyzer and must not be retained.
type FrameProcessor interface {
	Process(frame *fft.Frame)
}

// FrameProcessorFunc adapts a function to FrameProcessor.
type FrameProcessorFunc func(frame *fft.Frame)

func (f FrameProcessorFunc) Process(frame *fft.Frame) { f(frame) }

type Engine struct {
	config *config.Config

	// Audio input handling.
	framesPerBuffer int
	inputBuffer     []int32
	inputDevice     *portaudio.DeviceInfo
	inputLatency    time.Duration
	inputStream     *portaudio.Stream

	// Spectrum analysis.
	analyzer   *fft.Analyzer
	kind       fft.SpectrumType
	monoInput  []int32
	block      fft.Samples
	processors []FrameProcessor

	// Latest published spectrum, guarded by mu.
	mu         sync.RWMutex
	published  []float64
	generation uint64

	processed atomic.Uint64
	gated     atomic.Uint64

	// Noise gate for signal conditioning.
	gateEnabled   bool
	gateThreshold int32 // Absolute amplitude threshold (0-2147483647)

	// Recording state and buffers. recMu guards the encoder, file and
	// sample buffer.
	recMu       sync.Mutex
	isRecording int32 // Atomic flag for thread-safe state
	outputFile  *os.File
	wavEncoder  *wav.Encoder
	sampleBuf   *audio.IntBuffer // Reusable buffer for format conversion
	recordShift uint             // 32 - recording bit depth
}

// NewEngine resolves the configured input device and builds an engine whose
// callback buffer equals the analyzer window. PortAudio must be initialised.
func NewEngine(cfg *config.Config) (*Engine, error) {
	inputDevice, err := InputDevice(cfg.Audio.InputDevice)
	if err != nil {
		return nil, err
	}
	return newEngine(cfg, inputDevice)
}

// newEngine builds an engine without touching PortAudio; inputDevice may be
// nil when no stream will be opened.
func newEngine(cfg *config.Config, inputDevice *portaudio.DeviceInfo) (*Engine, error) {
	analyzer, err := cfg.Analyzer.NewAnalyzer()
	if err != nil {
		return nil, fmt.Errorf("failed to create analyzer: %w", err)
	}
	kind, err := cfg.Analyzer.SpectrumType()
	if err != nil {
		return nil, err
	}

	framesPerBuffer := analyzer.WindowSize()
	bins := analyzer.Frame().Size()

	engine := &Engine{
		config:          cfg,
		framesPerBuffer: framesPerBuffer,
		inputBuffer:     make([]int32, framesPerBuffer*cfg.Audio.Channels),
		inputDevice:     inputDevice,
		analyzer:        analyzer,
		kind:            kind,
		monoInput:       make([]int32, framesPerBuffer),
		block:           make(fft.Samples, 0, framesPerBuffer),
		published:       make([]float64, bins),
		gateEnabled:     true,
	}
	engine.SetGateThreshold(cfg.Audio.GateThreshold)

	if inputDevice != nil {
		if cfg.Audio.LowLatency {
			engine.inputLatency = inputDevice.DefaultLowInputLatency
		} else {
			engine.inputLatency = inputDevice.DefaultHighInputLatency
		}
		applog.Infof("Engine: Using input device '%s' (latency %s)", inputDevice.Name, engine.inputLatency)
	}

	applog.Infof("Engine: Window %d, transform %d, %d bins, %s window, %s spectrum",
		analyzer.WindowSize(), analyzer.TransformSize(), bins, analyzer.WindowType(), kind)
	return engine, nil
}

// AddProcessor registers p to run on every computed frame. It must be called
// before the input stream starts.
func (e *Engine) AddProcessor(p FrameProcessor) {
	e.processors = append(e.processors, p)
}

// Analyzer returns the engine's analyzer.
func (e *Engine) Analyzer() *fft.Analyzer {
	return e.analyzer
}

// SpectrumType returns the published spectrum view.
func (e *Engine) SpectrumType() fft.SpectrumType {
	return e.kind
}

// Bins returns the number of published values.
func (e *Engine) Bins() int {
	return len(e.published)
}

// SpectrumInto copies the latest published spectrum into dst.
func (e *Engine) SpectrumInto(dst []float64) error {
	if len(dst) < len(e.published) {
		return fmt.Errorf("destination holds %d values, need %d", len(dst), len(e.published))
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.generation == 0 {
		return ErrNoFrame
	}
	copy(dst, e.published)
	return nil
}

// Generation returns the generation of the published spectrum; 0 means none.
func (e *Engine) Generation() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.generation
}

// Stats returns how many buffers were analysed and how many were gated.
func (e *Engine) Stats() (processed, gated uint64) {
	return e.processed.Load(), e.gated.Load()
}

func (e *Engine) StartInputStream() error {
	if e.inputDevice == nil {
		return errors.New("no input device configured")
	}

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: e.config.Audio.Channels,
			Device:   e.inputDevice,
			Latency:  e.inputLatency,
		},
		Output: portaudio.StreamDeviceParameters{
			Channels: 0,
			Device:   nil,
		},
		FramesPerBuffer: e.framesPerBuffer,
		SampleRate:      e.config.Audio.SampleRate,
	}

	stream, err := portaudio.OpenStream(params, e.processInputStream)
	if err != nil {
		return fmt.Errorf("failed to open input stream: %w", err)
	}
	e.inputStream = stream

	if err := e.inputStream.Start(); err != nil {
		e.inputStream.Close()
		e.inputStream = nil
		return fmt.Errorf("failed to start input stream: %w", err)
	}

	applog.Infof("Engine: Input stream started (%g Hz, %d channel(s))", e.config.Audio.SampleRate, e.config.Audio.Channels)
	return nil
}

func (e *Engine) StopInputStream() error {
	if e.inputStream != nil {
		if err := e.inputStream.Stop(); err != nil {
			return err
		}

		if err := e.inputStream.Close(); err != nil {
			return err
		}

		e.inputStream = nil
		applog.Infof("Engine: Input stream stopped")
	}

	return nil
}

// processInputStream is the PortAudio callback.
// Performance Critical:
// - Runs in a dedicated OS thread (LockOSThread)
// - Uses pre-allocated buffers only
func (e *Engine) processInputStream(in []int32) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	n := copy(e.inputBuffer, in)
	e.processBuffer(e.inputBuffer[:n])

	if atomic.LoadInt32(&e.isRecording) == 1 {
		e.recordBuffer(e.inputBuffer[:n])
	}
}

// recordBuffer writes one buffer to the active recording, if any.
func (e *Engine) recordBuffer(buffer []int32) {
	e.recMu.Lock()
	defer e.recMu.Unlock()

	if e.wavEncoder == nil {
		return
	}
	e.fillSampleBuf(buffer)
	if err := e.wavEncoder.Write(e.sampleBuf); err != nil {
		applog.Errorf("Engine: Error writing to WAV file: %v", err)
	}
}

// processBuffer gates, analyses and publishes one interleaved buffer.
// Performance Critical (Hot Path):
// - No allocations
// - Branchless noise gate implementation
func (e *Engine) processBuffer(buffer []int32) {
	if e.gateEnabled && peakAmplitude(buffer) <= e.gateThreshold {
		e.gated.Add(1)
		return
	}

	channels := e.config.Audio.Channels
	mono := buffer
	if channels > 1 {
		frames := min(len(buffer)/channels, len(e.monoInput))
		for i := range frames {
			e.monoInput[i] = buffer[i*channels]
		}
		mono = e.monoInput[:frames]
	}

	e.block = e.block.FromInt32(mono)
	frame, err := e.analyzer.Compute(e.block)
	if err != nil {
		applog.Errorf("Engine: Analysis failed: %v", err)
		return
	}

	e.mu.Lock()
	err = frame.Values(e.kind, e.published)
	if err == nil {
		e.generation = frame.Generation()
	}
	e.mu.Unlock()
	if err != nil {
		applog.Errorf("Engine: Publishing spectrum failed: %v", err)
		return
	}
	e.processed.Add(1)

	for _, p := range e.processors {
		p.Process(frame)
	}
}

var _ transport.SpectrumSource = (*Engine)(nil)
