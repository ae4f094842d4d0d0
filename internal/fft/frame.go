// SPDX-License-Identifier: MIT
package fft

import (
	"fmt"
	"math"
	"strings"
)

// SpectrumType selects which view of a frame is read out by Values.
type SpectrumType int

const (
	PowerSpectrum SpectrumType = iota
	MagnitudeSpectrum
	EnergySpectrum
)

// String returns the lower-case name of the spectrum type.
func (s SpectrumType) String() string {
	switch s {
	case PowerSpectrum:
		return "power"
	case MagnitudeSpectrum:
		return "magnitude"
	case EnergySpectrum:
		return "energy"
	default:
		return "unknown"
	}
}

// ParseSpectrumType converts a name (case-insensitive) to a SpectrumType.
// Returns MagnitudeSpectrum and an error if the name is unknown.
func ParseSpectrumType(name string) (SpectrumType, error) {
	switch strings.ToLower(name) {
	case "power":
		return PowerSpectrum, nil
	case "magnitude", "mag":
		return MagnitudeSpectrum, nil
	case "energy":
		return EnergySpectrum, nil
	default:
		return MagnitudeSpectrum, fmt.Errorf("unknown spectrum type: '%s'", name)
	}
}

// Frame holds the one-sided energy spectrum of a single analysed block. Every
// stored value is the squared magnitude of its bin and is never negative.
//
// A Frame returned by Analyzer.Compute is owned by the analyzer and is
// overwritten on the next call. Callers that need stable data across calls
// must copy it out with Snapshot or CopyTo first.
type Frame struct {
	data       []float64
	generation uint64
}

// NewFrame returns a zeroed frame with n bins.
func NewFrame(n int) *Frame {
	f := &Frame{}
	f.Resize(n)
	return f
}

// Resize discards the current contents and reallocates n zeroed bins.
// A non-positive n leaves the frame empty.
func (f *Frame) Resize(n int) {
	if n < 0 {
		n = 0
	}
	f.data = make([]float64, n)
	f.generation = 0
}

// Size returns the number of bins.
func (f *Frame) Size() int {
	return len(f.data)
}

// Energy returns the stored energy of bin i.
func (f *Frame) Energy(i int) float64 {
	f.check(i)
	return f.data[i]
}

// Magnitude returns the square root of the energy of bin i.
func (f *Frame) Magnitude(i int) float64 {
	f.check(i)
	return math.Sqrt(f.data[i])
}

// Power returns the energy of bin i divided by the number of bins in the
// frame. Note the normalisation is by bin count, not by transform length.
func (f *Frame) Power(i int) float64 {
	f.check(i)
	return f.data[i] / float64(len(f.data))
}

// Data exposes the underlying storage so the analyzer can write energies in
// place. It is not meant for general consumers.
func (f *Frame) Data() []float64 {
	return f.data
}

// Generation counts how many times the frame has been populated since its
// last Resize. Zero means it has never been computed.
func (f *Frame) Generation() uint64 {
	return f.generation
}

// Snapshot returns an independent deep copy of the frame.
func (f *Frame) Snapshot() *Frame {
	data := make([]float64, len(f.data))
	copy(data, f.data)
	return &Frame{data: data, generation: f.generation}
}

// CopyTo copies the raw energies into dst without allocating. dst must have
// exactly Size() elements.
func (f *Frame) CopyTo(dst []float64) error {
	if len(dst) != len(f.data) {
		return fmt.Errorf("destination slice length %d does not match frame size %d", len(dst), len(f.data))
	}
	copy(dst, f.data)
	return nil
}

// Values fills dst with the requested view of every bin. dst must have
// exactly Size() elements.
func (f *Frame) Values(kind SpectrumType, dst []float64) error {
	if len(dst) != len(f.data) {
		return fmt.Errorf("destination slice length %d does not match frame size %d", len(dst), len(f.data))
	}
	switch kind {
	case EnergySpectrum:
		copy(dst, f.data)
	case MagnitudeSpectrum:
		for i, e := range f.data {
			dst[i] = math.Sqrt(e)
		}
	case PowerSpectrum:
		n := float64(len(f.data))
		for i, e := range f.data {
			dst[i] = e / n
		}
	default:
		return fmt.Errorf("unknown spectrum type %d", kind)
	}
	return nil
}

func (f *Frame) check(i int) {
	if i < 0 || i >= len(f.data) {
		panic(fmt.Sprintf("fft: bin index %d out of range [0, %d)", i, len(f.data)))
	}
}
