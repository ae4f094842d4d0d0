// SPDX-License-Identifier: MIT
//
// Package transport publishes analysis results to consumers outside the
// process.
package transport

import "errors"

// ErrNoSpectrum is returned by a SpectrumSource that has nothing to publish
// yet. Publishers skip the tick quietly.
var ErrNoSpectrum = errors.New("no spectrum has been computed yet")

// Transport defines a generic interface for sending processed data or events.
// Implementations must be safe for concurrent use.
type Transport interface {
	Send(data any) error
	Close() error
}

// SpectrumSource supplies the most recently published spectrum. It lets
// publishers poll the capture engine without depending on it.
type SpectrumSource interface {
	// Bins returns the number of values SpectrumInto writes.
	Bins() int
	// SpectrumInto copies the current spectrum into dst, which must hold
	// at least Bins values.
	SpectrumInto(dst []float64) error
}

// Multi fans every message out to a set of transports.
type Multi []Transport

// Send forwards data to every transport and joins their errors.
func (m Multi) Send(data any) error {
	var errs []error
	for _, t := range m {
		if err := t.Send(data); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every transport and joins their errors.
func (m Multi) Close() error {
	var errs []error
	for _, t := range m {
		if err := t.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ Transport = Multi(nil)
