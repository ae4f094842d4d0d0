// SPDX-License-Identifier: MIT
package transport

import (
	"errors"
	"sync"
	"time"

	applog "spectrum/internal/log"
)

// SpectrumMessage is the JSON message sent for every published spectrum.
type SpectrumMessage struct {
	Type     string    `json:"type"`
	Sequence uint64    `json:"seq"`
	Spectrum string    `json:"spectrum"`
	Values   []float64 `json:"values"`
}

// Publisher periodically copies the spectrum from a source and sends it as a
// SpectrumMessage through a Transport.
type Publisher struct {
	transport Transport
	source    SpectrumSource
	spectrum  string
	interval  time.Duration

	mu      sync.Mutex
	done    chan struct{}
	wg      sync.WaitGroup
	running bool

	sequence uint64
}

// NewPublisher creates a publisher labelling its messages with spectrum.
func NewPublisher(tr Transport, source SpectrumSource, spectrum string, interval time.Duration) (*Publisher, error) {
	if tr == nil {
		return nil, errors.New("Publisher: transport cannot be nil")
	}
	if source == nil {
		return nil, errors.New("Publisher: spectrum source cannot be nil")
	}
	if interval <= 0 {
		return nil, errors.New("Publisher: interval must be positive")
	}
	return &Publisher{
		transport: tr,
		source:    source,
		spectrum:  spectrum,
		interval:  interval,
	}, nil
}

// Start launches the publishing goroutine. Calling Start while running is a
// no-op.
func (p *Publisher) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}
	p.running = true
	p.done = make(chan struct{})

	done := p.done
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				p.publish()
			case <-done:
				return
			}
		}
	}()
	applog.Infof("Publisher: Sending %s spectrum every %s", p.spectrum, p.interval)
}

// publish sends one message. Each message owns its values because
// transports may encode asynchronously.
func (p *Publisher) publish() {
	values := make([]float64, p.source.Bins())
	if err := p.source.SpectrumInto(values); err != nil {
		applog.Debugf("Publisher: Skipping tick: %v", err)
		return
	}

	p.sequence++
	msg := &SpectrumMessage{
		Type:     "spectrum",
		Sequence: p.sequence,
		Spectrum: p.spectrum,
		Values:   values,
	}
	if err := p.transport.Send(msg); err != nil {
		applog.Warnf("Publisher: Error sending spectrum: %v", err)
	}
}

// Stop halts publishing and waits for the goroutine to exit.
func (p *Publisher) Stop() error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = false
	close(p.done)
	p.mu.Unlock()

	p.wg.Wait()
	return nil
}

// Close stops the publisher. The transport is left open.
func (p *Publisher) Close() error {
	return p.Stop()
}
