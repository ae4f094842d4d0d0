// SPDX-License-Identifier: MIT
package udp

import (
	"errors"
	"sync"
	"time"

	"spectrum/internal/fft"
	applog "spectrum/internal/log"
	"spectrum/internal/transport"
)

// UDPPublisher periodically fetches the latest spectrum from a source,
// packs it (see AppendPacket) and sends it over UDP. It runs in a separate
// goroutine managed by Start and Stop.
type UDPPublisher struct {
	sender   *UDPSender
	source   transport.SpectrumSource
	kind     fft.SpectrumType
	interval time.Duration

	ticker   *time.Ticker
	doneChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	mu       sync.Mutex

	sequenceNum uint32

	values []float64
	packet []byte
}

// NewUDPPublisher creates a publisher sending the source's spectrum, labelled
// as kind, every interval. An interval <= 0 defaults to 16ms (~60Hz).
func NewUDPPublisher(interval time.Duration, sender *UDPSender, source transport.SpectrumSource, kind fft.SpectrumType) (*UDPPublisher, error) {
	if sender == nil {
		return nil, errors.New("UDPPublisher: UDP sender cannot be nil")
	}
	if source == nil {
		return nil, errors.New("UDPPublisher: spectrum source cannot be nil")
	}

	if interval <= 0 {
		interval = 16 * time.Millisecond
		applog.Warnf("UDPPublisher: Invalid interval provided, defaulting to %s", interval)
	}

	bins := source.Bins()
	if bins > MaxValues {
		return nil, errors.New("UDPPublisher: spectrum has too many bins for a packet")
	}
	applog.Infof("UDPPublisher: Initializing (Interval: %s, Bins: %d, Spectrum: %s)", interval, bins, kind)

	return &UDPPublisher{
		sender:   sender,
		source:   source,
		kind:     kind,
		interval: interval,
		values:   make([]float64, bins),
		packet:   make([]byte, 0, HeaderSize+4*bins),
	}, nil
}

// Start launches the publishing goroutine. Calling Start while running is a
// no-op.
func (p *UDPPublisher) Start() {
	p.mu.Lock()
	if p.ticker != nil {
		p.mu.Unlock()
		applog.Warnf("UDPPublisher: Start called but already running.")
		return
	}

	p.ticker = time.NewTicker(p.interval)
	p.doneChan = make(chan struct{})
	p.stopOnce = sync.Once{}

	ticker := p.ticker
	doneChan := p.doneChan
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		applog.Infof("UDPPublisher: Publisher goroutine started (Interval: %s)", p.interval)
		for {
			select {
			case <-ticker.C:
				p.buildAndSendPacket()
			case <-doneChan:
				applog.Debugf("UDPPublisher: Publisher goroutine received stop signal.")
				return
			}
		}
	}()
}

// Stop signals the publishing goroutine to exit and waits for it. Calling
// Stop when not running is a no-op.
func (p *UDPPublisher) Stop() error {
	p.mu.Lock()
	if p.ticker == nil {
		p.mu.Unlock()
		return nil
	}

	p.stopOnce.Do(func() {
		close(p.doneChan)
		p.ticker.Stop()
		p.ticker = nil
	})
	p.mu.Unlock()

	p.wg.Wait()
	applog.Infof("UDPPublisher: Publisher goroutine finished.")
	return nil
}

// buildAndSendPacket fetches the current spectrum and sends one packet.
// Packet buffers are reused between calls.
func (p *UDPPublisher) buildAndSendPacket() {
	if err := p.source.SpectrumInto(p.values); err != nil {
		if errors.Is(err, transport.ErrNoSpectrum) {
			applog.Debugf("UDPPublisher: Skipping tick: %v", err)
		} else {
			applog.Errorf("UDPPublisher: Error getting spectrum: %v", err)
		}
		return
	}

	p.sequenceNum++
	packet, err := AppendPacket(p.packet[:0], p.sequenceNum, time.Now().UnixNano(), p.kind, p.values)
	if err != nil {
		applog.Errorf("UDPPublisher: Error packing spectrum: %v", err)
		return
	}
	p.packet = packet

	if err := p.sender.Send(packet); err == nil {
		applog.Debugf("UDPPublisher: Sent packet %d (%d bytes)", p.sequenceNum, len(packet))
	}
}

// Close stops the publisher.
func (p *UDPPublisher) Close() error {
	return p.Stop()
}

var _ interface{ Close() error } = (*UDPPublisher)(nil)
