// SPDX-License-Identifier: MIT
package analysis

import (
	"errors"
	"fmt"
	"math"

	"spectrum/internal/fft"
	applog "spectrum/internal/log"
	"spectrum/internal/transport"
)

// FrequencyBand defines the name and frequency range of an energy band.
type FrequencyBand struct {
	Name   string
	LowHz  float64 // inclusive
	HighHz float64 // exclusive

	Energy  float64 // summed bin energy for the current frame
	numBins int
}

// Mean returns the average energy per bin of the band, or 0 for an empty band.
func (b *FrequencyBand) Mean() float64 {
	if b.numBins == 0 {
		return 0
	}
	return b.Energy / float64(b.numBins)
}

// Level returns the mean energy in decibels. Silent bands report -Inf.
func (b *FrequencyBand) Level() float64 {
	m := b.Mean()
	if m <= 0 {
		return math.Inf(-1)
	}
	return 10 * math.Log10(m)
}

// Bins returns how many bins fell into the band in the last frame.
func (b *FrequencyBand) Bins() int {
	return b.numBins
}

// DefaultBands returns the six bands used for a music-style summary, the
// top band ending at Nyquist.
func DefaultBands(sampleRate float64) []*FrequencyBand {
	return []*FrequencyBand{
		{Name: "sub", LowHz: 20, HighHz: 60},
		{Name: "bass", LowHz: 60, HighHz: 250},
		{Name: "lowMid", LowHz: 250, HighHz: 500},
		{Name: "mid", LowHz: 500, HighHz: 2000},
		{Name: "highMid", LowHz: 2000, HighHz: 4000},
		{Name: "treble", LowHz: 4000, HighHz: sampleRate/2 + 1},
	}
}

// BandEnergyProcessor sums frame energies into frequency bands.
type BandEnergyProcessor struct {
	bands         []*FrequencyBand
	sampleRate    float64
	transformSize int
	transport     transport.Transport
}

// NewBandEnergyProcessor creates a processor for frames of a transform of
// transformSize points sampled at sampleRate. A nil bands slice uses
// DefaultBands. transport may be nil.
func NewBandEnergyProcessor(sampleRate float64, transformSize int, bands []*FrequencyBand, tr transport.Transport) (*BandEnergyProcessor, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %f", sampleRate)
	}
	if transformSize <= 0 {
		return nil, fmt.Errorf("transform size must be positive, got %d", transformSize)
	}
	if bands == nil {
		bands = DefaultBands(sampleRate)
	}
	for _, b := range bands {
		if b.HighHz <= b.LowHz {
			return nil, errors.New("band " + b.Name + " has an empty frequency range")
		}
	}

	applog.Debugf("Analysis: Initializing BandEnergyProcessor with %d bands.", len(bands))

	return &BandEnergyProcessor{
		bands:         bands,
		sampleRate:    sampleRate,
		transformSize: transformSize,
		transport:     tr,
	}, nil
}

// Process assigns every bin of frame to the first band containing its centre
// frequency and accumulates the bin energies. Results are read through
// Bands and, when a transport is set, sent as a "band_energy" message.
func (p *BandEnergyProcessor) Process(frame *fft.Frame) {
	for _, band := range p.bands {
		band.Energy = 0
		band.numBins = 0
	}

	resolution := p.sampleRate / float64(p.transformSize)
	for i, e := range frame.Data() {
		freq := float64(i) * resolution
		for _, band := range p.bands {
			if freq >= band.LowHz && freq < band.HighHz {
				band.Energy += e
				band.numBins++
				break
			}
		}
	}

	if p.transport == nil {
		return
	}

	// Transports may encode asynchronously, so every message gets its own map.
	payload := make(map[string]any, len(p.bands)+1)
	payload["type"] = "band_energy"
	for _, band := range p.bands {
		payload[band.Name] = band.Mean()
	}
	if err := p.transport.Send(payload); err != nil {
		applog.Errorf("BandEnergyProcessor: Error sending band energy data: %v", err)
	}
}

// Bands returns the bands with the energies of the last processed frame.
func (p *BandEnergyProcessor) Bands() []*FrequencyBand {
	return p.bands
}
