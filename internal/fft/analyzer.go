// SPDX-License-Identifier: MIT
package fft

import (
	"errors"
	"fmt"
	"math"

	applog "spectrum/internal/log"
)

var (
	ErrInvalidWindowSize = errors.New("window size must be greater than 1")
	ErrInvalidZeroPad    = errors.New("zero-pad factor must be a finite value >= 0")
	ErrBlockTooLarge     = errors.New("block is larger than the analysis window")
	ErrShortBlockData    = errors.New("block data is shorter than its size")
)

// workspace holds the buffers allocated once at construction. in and out
// are bound to the plan and must never be reallocated.
type workspace struct {
	window []float64    // window coefficients, len == windowSize
	in     []complex128 // zero-padded, windowed input, len == transformSize
	out    []complex128 // transform output, len == transformSize
}

// Analyzer turns blocks of at most windowSize samples into one-sided energy
// spectra of transformSize/2 + 1 bins.
//
// An Analyzer is not safe for concurrent use. Use one instance per worker or
// serialise calls to Compute.
type Analyzer struct {
	windowSize    int
	zeroPadFactor float64
	transformSize int
	windowType    WindowFunc

	workspace workspace
	plan      Plan
	frame     *Frame
}

// Option customises an Analyzer at construction.
type Option func(*analyzerOptions)

type analyzerOptions struct {
	window  WindowFunc
	planner Planner
}

// WithWindow selects the window family. The default is Hamming.
func WithWindow(w WindowFunc) Option {
	return func(o *analyzerOptions) { o.window = w }
}

// WithPlanner selects the transform backend. The default is GonumPlanner.
func WithPlanner(p Planner) Option {
	return func(o *analyzerOptions) {
		if p != nil {
			o.planner = p
		}
	}
}

// TransformSize returns floor(windowSize * (1 + zeroPadFactor)).
func TransformSize(windowSize int, zeroPadFactor float64) int {
	return int(math.Floor(float64(windowSize) * (1.0 + zeroPadFactor)))
}

// ZeroPadFactorFor returns a zero-pad factor for which TransformSize yields
// exactly transformSize. The half-sample offset keeps the floor stable
// against rounding in the multiplication.
func ZeroPadFactorFor(windowSize, transformSize int) float64 {
	if windowSize <= 0 || transformSize <= windowSize {
		return 0
	}
	return (float64(transformSize)+0.5)/float64(windowSize) - 1.0
}

// NewAnalyzer validates the parameters, synthesises the window, allocates
// the transform buffers and binds the transform plan to them.
func NewAnalyzer(windowSize int, zeroPadFactor float64, opts ...Option) (*Analyzer, error) {
	if windowSize <= 1 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidWindowSize, windowSize)
	}
	if zeroPadFactor < 0 || math.IsNaN(zeroPadFactor) || math.IsInf(zeroPadFactor, 0) {
		return nil, fmt.Errorf("%w, got %v", ErrInvalidZeroPad, zeroPadFactor)
	}

	options := analyzerOptions{window: Hamming, planner: GonumPlanner}
	for _, opt := range opts {
		opt(&options)
	}

	transformSize := TransformSize(windowSize, zeroPadFactor)
	if transformSize < windowSize {
		return nil, fmt.Errorf("%w: transform size %d overflows for window %d", ErrInvalidZeroPad, transformSize, windowSize)
	}

	coeffs, err := newWindow(windowSize, options.window)
	if err != nil {
		return nil, err
	}

	a := &Analyzer{
		windowSize:    windowSize,
		zeroPadFactor: zeroPadFactor,
		transformSize: transformSize,
		windowType:    options.window,
		workspace: workspace{
			window: coeffs,
			in:     make([]complex128, transformSize),
			out:    make([]complex128, transformSize),
		},
		frame: NewFrame(transformSize/2 + 1),
	}

	a.plan, err = options.planner(transformSize, a.workspace.in, a.workspace.out)
	if err != nil {
		return nil, fmt.Errorf("failed to create transform plan: %w", err)
	}
	if a.plan.Len() != transformSize {
		return nil, fmt.Errorf("transform plan length %d does not match transform size %d", a.plan.Len(), transformSize)
	}

	applog.Debugf("Analyzer: Initialized (Window: %d %v, ZeroPad: %.3f, Transform: %d, Bins: %d)",
		windowSize, options.window, zeroPadFactor, transformSize, a.frame.Size())

	return a, nil
}

// Compute windows and zero-pads block, transforms it and extracts the
// one-sided energy spectrum into the analyzer's frame, which is returned.
// The frame is reused by every call; copy it out before the next call if
// the values must survive.
//
// A block longer than the window, or one whose data is shorter than its
// size, is rejected before any state changes.
func (a *Analyzer) Compute(block Block) (*Frame, error) {
	n := block.Size()
	if n > a.windowSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrBlockTooLarge, n, a.windowSize)
	}
	data := block.Data()
	if len(data) < n {
		return nil, fmt.Errorf("%w: %d < %d", ErrShortBlockData, len(data), n)
	}

	in := a.workspace.in
	clear(in)

	samples := data[:n]
	for i, s := range samples {
		in[i] = complex(s*a.workspace.window[i], 0)
	}

	a.plan.Execute()
	a.extract()

	return a.frame, nil
}

// extract reads the one-sided spectrum out of the transform output. DC and,
// for an even transform, Nyquist are real for real input, so only their real
// parts are used.
func (a *Analyzer) extract() {
	out := a.workspace.out
	energy := a.frame.data
	half := a.transformSize / 2

	dc := real(out[0])
	energy[0] = dc * dc

	last := half
	if a.transformSize%2 == 0 {
		ny := real(out[half])
		energy[half] = ny * ny
		last = half - 1
	}

	for k := 1; k <= last; k++ {
		re, im := real(out[k]), imag(out[k])
		energy[k] = re*re + im*im
	}

	a.frame.generation++
}

// Frame returns the analyzer's frame. Before the first Compute it holds zeros.
func (a *Analyzer) Frame() *Frame {
	return a.frame
}

// Computed reports whether Compute has populated the frame at least once.
func (a *Analyzer) Computed() bool {
	return a.frame.generation > 0
}

// WindowSize returns the maximum block length accepted by Compute.
func (a *Analyzer) WindowSize() int {
	return a.windowSize
}

// ZeroPadFactor returns the configured zero-pad factor.
func (a *Analyzer) ZeroPadFactor() float64 {
	return a.zeroPadFactor
}

// TransformSize returns the zero-padded transform length.
func (a *Analyzer) TransformSize() int {
	return a.transformSize
}

// WindowType returns the window family in use.
func (a *Analyzer) WindowType() WindowFunc {
	return a.windowType
}

// Window returns a copy of the window coefficients.
func (a *Analyzer) Window() []float64 {
	w := make([]float64, len(a.workspace.window))
	copy(w, a.workspace.window)
	return w
}

// BinFrequency returns the centre frequency in Hz of bin i for the given
// sample rate. Out-of-range bins return 0.
func (a *Analyzer) BinFrequency(i int, sampleRate float64) float64 {
	if i < 0 || i >= a.frame.Size() {
		return 0.0
	}
	return float64(i) * sampleRate / float64(a.transformSize)
}
