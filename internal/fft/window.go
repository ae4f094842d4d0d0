// SPDX-License-Identifier: MIT
package fft

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/dsp/window"
)

// WindowFunc selects the weighting curve applied to a block before the
// transform.
type WindowFunc int

const (
	Hamming WindowFunc = iota
	Hann
	Blackman
	BlackmanNuttall
	BartlettHann
	Nuttall
	Rectangular
)

var windowNames = map[WindowFunc]string{
	Hamming:         "hamming",
	Hann:            "hann",
	Blackman:        "blackman",
	BlackmanNuttall: "blackmannuttall",
	BartlettHann:    "bartletthann",
	Nuttall:         "nuttall",
	Rectangular:     "rectangular",
}

func (w WindowFunc) String() string {
	if name, ok := windowNames[w]; ok {
		return name
	}
	return fmt.Sprintf("WindowFunc(%d)", int(w))
}

// ParseWindowFunc converts a name (case-insensitive) to a WindowFunc.
// Unknown names return Hamming and an error.
func ParseWindowFunc(name string) (WindowFunc, error) {
	switch strings.ToLower(name) {
	case "hamming":
		return Hamming, nil
	case "hann", "hanning":
		return Hann, nil
	case "blackman":
		return Blackman, nil
	case "blackmannuttall":
		return BlackmanNuttall, nil
	case "bartletthann":
		return BartlettHann, nil
	case "nuttall":
		return Nuttall, nil
	case "rectangular", "rect", "none":
		return Rectangular, nil
	default:
		return Hamming, fmt.Errorf("unknown window function name: '%s'", name)
	}
}

// newWindow synthesises size coefficients of the requested family. The
// symmetric form is used throughout, so the Hamming coefficient n is
// 0.54 - 0.46*cos(2*pi*n/(size-1)).
func newWindow(size int, kind WindowFunc) ([]float64, error) {
	coeffs := make([]float64, size)
	for i := range coeffs {
		coeffs[i] = 1.0
	}
	switch kind {
	case Hamming:
		window.Hamming(coeffs)
	case Hann:
		window.Hann(coeffs)
	case Blackman:
		window.Blackman(coeffs)
	case BlackmanNuttall:
		window.BlackmanNuttall(coeffs)
	case BartlettHann:
		window.BartlettHann(coeffs)
	case Nuttall:
		window.Nuttall(coeffs)
	case Rectangular:
		window.Rectangular(coeffs)
	default:
		return nil, fmt.Errorf("unsupported window function %v", kind)
	}
	return coeffs, nil
}
