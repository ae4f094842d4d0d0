// SPDX-License-Identifier: MIT
package fft

import (
	"fmt"
	"strings"

	godsp "github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/dsp/fourier"
)

// Plan is a forward complex-to-complex transform of fixed length bound to
// an input and an output buffer at creation. Execute reads the input buffer
// and overwrites the output buffer; the buffers are never rebound.
type Plan interface {
	Len() int
	Execute()
}

// Planner creates a Plan of length n bound to in and out. Both buffers must
// have exactly n elements.
type Planner func(n int, in, out []complex128) (Plan, error)

func checkPlanBuffers(n int, in, out []complex128) error {
	if n < 1 {
		return fmt.Errorf("transform length must be positive, got %d", n)
	}
	if len(in) != n || len(out) != n {
		return fmt.Errorf("transform buffers must have length %d, got in=%d out=%d", n, len(in), len(out))
	}
	return nil
}

// gonumPlan runs gonum's mixed-radix FFTPACK transform. Its work space is
// allocated once, so Execute does not allocate.
type gonumPlan struct {
	fft     *fourier.CmplxFFT
	in, out []complex128
}

// GonumPlanner binds a gonum CmplxFFT to the buffers. This is the default.
func GonumPlanner(n int, in, out []complex128) (Plan, error) {
	if err := checkPlanBuffers(n, in, out); err != nil {
		return nil, err
	}
	return &gonumPlan{fft: fourier.NewCmplxFFT(n), in: in, out: out}, nil
}

func (p *gonumPlan) Len() int { return p.fft.Len() }

func (p *gonumPlan) Execute() {
	p.fft.Coefficients(p.out, p.in)
}

// goDSPPlan runs go-dsp's radix-2 / Bluestein transform. go-dsp returns a
// fresh slice per call, which is copied into the bound output buffer.
type goDSPPlan struct {
	in, out []complex128
}

// GoDSPPlanner binds github.com/mjibson/go-dsp/fft to the buffers.
func GoDSPPlanner(n int, in, out []complex128) (Plan, error) {
	if err := checkPlanBuffers(n, in, out); err != nil {
		return nil, err
	}
	return &goDSPPlan{in: in, out: out}, nil
}

func (p *goDSPPlan) Len() int { return len(p.in) }

func (p *goDSPPlan) Execute() {
	copy(p.out, godsp.FFT(p.in))
}

// PlannerByName returns the planner registered under name ("gonum" or
// "godsp", case-insensitive).
func PlannerByName(name string) (Planner, error) {
	switch strings.ToLower(name) {
	case "", "gonum":
		return GonumPlanner, nil
	case "godsp", "go-dsp":
		return GoDSPPlanner, nil
	default:
		return nil, fmt.Errorf("unknown fft backend: '%s'", name)
	}
}
