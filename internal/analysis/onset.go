// SPDX-License-Identifier: MIT
package analysis

import (
	"math"

	"spectrum/internal/fft"
	applog "spectrum/internal/log"
	"spectrum/internal/transport"
)

// OnsetDetector flags sudden rises in spectral content using the positive
// spectral flux between consecutive frames.
type OnsetDetector struct {
	threshold    float64 // minimum flux for an onset
	minFluxRatio float64 // minimum rise over the previous flux
	previous     []float64
	lastFlux     float64
	primed       bool
	transport    transport.Transport
}

// NewOnsetDetector creates a detector for frames of bins bins.
func NewOnsetDetector(bins int, threshold, minFluxRatio float64, tr transport.Transport) *OnsetDetector {
	applog.Debugf("Analysis: Initializing OnsetDetector (Threshold: %.3f, MinRatio: %.2f)", threshold, minFluxRatio)
	return &OnsetDetector{
		threshold:    threshold,
		minFluxRatio: minFluxRatio,
		previous:     make([]float64, bins),
		transport:    tr,
	}
}

// Process compares frame against the previous one and reports whether an
// onset occurred. The first frame only primes the detector.
func (d *OnsetDetector) Process(frame *fft.Frame) bool {
	data := frame.Data()
	if len(data) != len(d.previous) {
		d.previous = make([]float64, len(data))
		d.primed = false
	}

	var flux float64
	for i, e := range data {
		m := math.Sqrt(e)
		if diff := m - d.previous[i]; diff > 0 {
			flux += diff
		}
		d.previous[i] = m
	}

	if !d.primed {
		d.primed = true
		d.lastFlux = flux
		return false
	}

	onset := flux > d.threshold && (d.lastFlux == 0 || flux/d.lastFlux > d.minFluxRatio)
	d.lastFlux = flux

	if onset && d.transport != nil {
		event := map[string]any{"type": "event", "name": "onset", "flux": flux}
		if err := d.transport.Send(event); err != nil {
			applog.Errorf("OnsetDetector: Error sending onset event: %v", err)
		}
	}
	return onset
}

// Flux returns the spectral flux of the last processed frame.
func (d *OnsetDetector) Flux() float64 {
	return d.lastFlux
}
