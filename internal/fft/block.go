// SPDX-License-Identifier: MIT
package fft

// Block is a read-only block of real audio samples handed to the analyzer.
// Data must hold at least Size samples. The analyzer never retains or
// mutates it.
type Block interface {
	Size() int
	Data() []float64
}

// Samples is the plain slice implementation of Block.
type Samples []float64

// Compile-time check for interface implementation.
var _ Block = Samples(nil)

func (s Samples) Size() int       { return len(s) }
func (s Samples) Data() []float64 { return s }

// int32 PCM full scale, maps samples into [-1.0, 1.0).
const int32Norm = 1.0 / float64(0x80000000)

// FromInt32 converts int32 PCM into normalised samples, reusing s when it
// has enough capacity.
func (s Samples) FromInt32(src []int32) Samples {
	if cap(s) < len(src) {
		s = make(Samples, len(src))
	}
	s = s[:len(src)]
	for i, v := range src {
		s[i] = float64(v) * int32Norm
	}
	return s
}

// FromFloat32 converts float32 samples, reusing s when it has enough
// capacity.
func (s Samples) FromFloat32(src []float32) Samples {
	if cap(s) < len(src) {
		s = make(Samples, len(src))
	}
	s = s[:len(src)]
	for i, v := range src {
		s[i] = float64(v)
	}
	return s
}
