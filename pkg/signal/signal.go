// SPDX-License-Identifier: MIT
//
// Package signal generates deterministic test signals and locates spectral
// peaks. It is used by the tone generator and by tests across the module.
package signal

import "math"

// Sine returns size samples of a sine at frequency Hz with the given
// amplitude.
func Sine(size int, sampleRate, frequency, amplitude float64) []float64 {
	buffer := make([]float64, size)
	for i := range buffer {
		t := float64(i) / sampleRate
		buffer[i] = amplitude * math.Sin(2*math.Pi*frequency*t)
	}
	return buffer
}

// BinSine returns size samples of a sine completing exactly cycles periods
// over length samples, so it lands on bin cycles of a length-point transform.
func BinSine(size int, cycles float64, length int) []float64 {
	buffer := make([]float64, size)
	for i := range buffer {
		buffer[i] = math.Sin(2 * math.Pi * cycles * float64(i) / float64(length))
	}
	return buffer
}

// Complex returns a 440Hz fundamental with its second and third harmonics,
// peaking at about 0.9 full scale.
func Complex(size int, sampleRate float64) []float64 {
	buffer := make([]float64, size)
	for i := range buffer {
		t := float64(i) / sampleRate
		buffer[i] = 0.9 * (math.Sin(2*math.Pi*440*t)*0.5 +
			math.Sin(2*math.Pi*880*t)*0.3 +
			math.Sin(2*math.Pi*1320*t)*0.2)
	}
	return buffer
}

// Constant returns size samples of value c.
func Constant(size int, c float64) []float64 {
	buffer := make([]float64, size)
	for i := range buffer {
		buffer[i] = c
	}
	return buffer
}

// PeakBin returns the index of the largest value in values[startBin:endBin+1].
// The range is clamped to the slice; an empty slice returns 0 and an empty
// range returns startBin, limited to the last index.
func PeakBin(values []float64, startBin, endBin int) int {
	if len(values) == 0 {
		return 0
	}
	if startBin < 0 {
		startBin = 0
	}
	if endBin >= len(values) {
		endBin = len(values) - 1
	}
	if startBin > endBin {
		return min(startBin, len(values)-1)
	}

	peakBin := startBin
	peakValue := values[startBin]
	for bin := startBin + 1; bin <= endBin; bin++ {
		if values[bin] > peakValue {
			peakValue = values[bin]
			peakBin = bin
		}
	}
	return peakBin
}
