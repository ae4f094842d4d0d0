// SPDX-License-Identifier: MIT
package config

import (
	"spectrum/internal/fft"
	"spectrum/pkg/bitint"
)

// WindowFunc returns the configured window family.
func (a AnalyzerConfig) WindowFunc() (fft.WindowFunc, error) {
	return fft.ParseWindowFunc(a.Window)
}

// SpectrumType returns the configured published view.
func (a AnalyzerConfig) SpectrumType() (fft.SpectrumType, error) {
	return fft.ParseSpectrumType(a.Spectrum)
}

// Planner returns the configured transform backend.
func (a AnalyzerConfig) Planner() (fft.Planner, error) {
	return fft.PlannerByName(a.Backend)
}

// EffectiveZeroPadFactor returns the zero-pad factor handed to the
// analyzer. With PadToPowerOfTwo set, the factor is raised so the transform
// length is the next power of two at or above the padded size.
func (a AnalyzerConfig) EffectiveZeroPadFactor() float64 {
	if !a.PadToPowerOfTwo || a.WindowSize <= 0 {
		return a.ZeroPadFactor
	}
	size := fft.TransformSize(a.WindowSize, a.ZeroPadFactor)
	if bitint.IsPowerOfTwo(size) {
		return a.ZeroPadFactor
	}
	return fft.ZeroPadFactorFor(a.WindowSize, bitint.NextPowerOfTwo(size))
}

// TransformSize returns the transform length the analyzer will use.
func (a AnalyzerConfig) TransformSize() int {
	return fft.TransformSize(a.WindowSize, a.EffectiveZeroPadFactor())
}

// NewAnalyzer builds an analyzer from the section.
func (a AnalyzerConfig) NewAnalyzer() (*fft.Analyzer, error) {
	window, err := a.WindowFunc()
	if err != nil {
		return nil, err
	}
	planner, err := a.Planner()
	if err != nil {
		return nil, err
	}
	return fft.NewAnalyzer(a.WindowSize, a.EffectiveZeroPadFactor(),
		fft.WithWindow(window), fft.WithPlanner(planner))
}
