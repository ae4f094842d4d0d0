// SPDX-License-Identifier: MIT
package audio

import (
	"bytes"
	"errors"
	"math"
	"os"
	"strings"
	"testing"

	"spectrum/internal/fft"
	applog "spectrum/internal/log"
	"spectrum/pkg/signal"
)

func TestNewEngineSizes(t *testing.T) {
	engine := newTestEngine()

	if engine.framesPerBuffer != testFrameSize {
		t.Errorf("framesPerBuffer = %d, want %d", engine.framesPerBuffer, testFrameSize)
	}
	if len(engine.inputBuffer) != testFrameSize*2 {
		t.Errorf("inputBuffer length = %d, want %d", len(engine.inputBuffer), testFrameSize*2)
	}
	if got, want := engine.Bins(), testFrameSize/2+1; got != want {
		t.Errorf("Bins() = %d, want %d", got, want)
	}
	if engine.SpectrumType() != fft.EnergySpectrum {
		t.Errorf("SpectrumType() = %s, want energy", engine.SpectrumType())
	}
	if !engine.gateEnabled {
		t.Error("Gate should be enabled by default")
	}
}

func TestNewEngineRejectsInvalidAnalyzer(t *testing.T) {
	cfg := newTestConfig(1)
	cfg.Analyzer.WindowSize = 1
	if _, err := newEngine(cfg, nil); !errors.Is(err, fft.ErrInvalidWindowSize) {
		t.Errorf("Expected ErrInvalidWindowSize, got %v", err)
	}
}

func TestSpectrumIntoBeforeFirstFrame(t *testing.T) {
	engine := newTestEngine()

	dst := make([]float64, engine.Bins())
	if err := engine.SpectrumInto(dst); !errors.Is(err, ErrNoFrame) {
		t.Errorf("Expected ErrNoFrame, got %v", err)
	}
	if err := engine.SpectrumInto(dst[:1]); err == nil {
		t.Error("Expected error for short destination")
	}
}

func TestProcessBufferPublishesFirstChannel(t *testing.T) {
	engine := newTestEngine()
	engine.processBuffer(interleave(loudBuffer, 2))

	if engine.Generation() != 1 {
		t.Fatalf("Generation() = %d, want 1", engine.Generation())
	}

	got := make([]float64, engine.Bins())
	if err := engine.SpectrumInto(got); err != nil {
		t.Fatalf("SpectrumInto: %v", err)
	}

	reference, err := fft.NewAnalyzer(testFrameSize, 0)
	if err != nil {
		t.Fatal(err)
	}
	frame, err := reference.Compute(fft.Samples(nil).FromInt32(loudBuffer))
	if err != nil {
		t.Fatal(err)
	}

	for i, want := range frame.Data() {
		if math.Abs(got[i]-want) > 1e-9*(1+want) {
			t.Fatalf("bin %d: got %g, want %g", i, got[i], want)
		}
	}
	if peak := signal.PeakBin(got, 1, len(got)-1); peak != 8 {
		t.Errorf("Peak bin = %d, want 8", peak)
	}
}

func TestProcessBufferLogsPublishFailure(t *testing.T) {
	var logs bytes.Buffer
	applog.SetOutput(&logs)
	t.Cleanup(func() { applog.SetOutput(os.Stderr) })

	engine := newTestEngine()
	engine.published = make([]float64, 3)
	ran := false
	engine.AddProcessor(FrameProcessorFunc(func(*fft.Frame) { ran = true }))

	engine.processBuffer(interleave(loudBuffer, 2))

	if engine.Generation() != 0 {
		t.Errorf("Generation() = %d, want 0 after a failed publish", engine.Generation())
	}
	if processed, _ := engine.Stats(); processed != 0 {
		t.Errorf("processed = %d, want 0", processed)
	}
	if ran {
		t.Error("Processors should not run when publishing fails")
	}
	if !strings.Contains(logs.String(), "Engine: Publishing spectrum failed") {
		t.Errorf("Expected publish failure in log, got %q", logs.String())
	}
}

func TestProcessBufferSkipsGatedInput(t *testing.T) {
	engine := newTestEngine()
	engine.SetGateThreshold(0.5)

	engine.processBuffer(interleave(quietBuffer, 2))

	if engine.Generation() != 0 {
		t.Error("Gated buffer should not publish a frame")
	}
	if processed, gated := engine.Stats(); processed != 0 || gated != 1 {
		t.Errorf("Stats() = %d, %d, want 0, 1", processed, gated)
	}
}

func TestProcessBufferRunsProcessors(t *testing.T) {
	engine := newTestEngine()

	var calls int
	var size int
	engine.AddProcessor(FrameProcessorFunc(func(frame *fft.Frame) {
		calls++
		size = frame.Size()
	}))

	engine.processBuffer(interleave(testBuffer, 2))
	engine.processBuffer(interleave(loudBuffer, 2))

	if calls != 2 {
		t.Errorf("Processor called %d times, want 2", calls)
	}
	if size != engine.Bins() {
		t.Errorf("Processor saw %d bins, want %d", size, engine.Bins())
	}
}

func TestStartInputStreamWithoutDevice(t *testing.T) {
	engine := newTestEngine()
	if err := engine.StartInputStream(); err == nil {
		t.Error("Expected error without an input device")
	}
	if err := engine.StopInputStream(); err != nil {
		t.Errorf("StopInputStream without stream: %v", err)
	}
}

func TestProcessBufferZeroAllocs(t *testing.T) {
	engine := newTestEngine()
	buffer := interleave(loudBuffer, 2)

	engine.processBuffer(buffer)
	allocs := testing.AllocsPerRun(100, func() {
		engine.processBuffer(buffer)
	})

	if allocs > 0 {
		t.Errorf("Expected zero allocations in processBuffer, got %.1f", allocs)
	}
}

func BenchmarkProcessBuffer(b *testing.B) {
	engine := newTestEngine()
	buffer := interleave(loudBuffer, 2)

	b.ReportAllocs()

	for b.Loop() {
		engine.processBuffer(buffer)
	}
}
