// SPDX-License-Identifier: MIT
package fft

import (
	"math"
	"math/cmplx"
	"testing"
)

func TestPlannersRejectMismatchedBuffers(t *testing.T) {
	for name, planner := range map[string]Planner{"gonum": GonumPlanner, "godsp": GoDSPPlanner} {
		t.Run(name, func(t *testing.T) {
			if _, err := planner(0, nil, nil); err == nil {
				t.Error("expected error for zero length")
			}
			if _, err := planner(8, make([]complex128, 8), make([]complex128, 4)); err == nil {
				t.Error("expected error for short output buffer")
			}
		})
	}
}

func TestPlanExecuteUsesBoundBuffers(t *testing.T) {
	for name, planner := range map[string]Planner{"gonum": GonumPlanner, "godsp": GoDSPPlanner} {
		t.Run(name, func(t *testing.T) {
			in := make([]complex128, 6)
			out := make([]complex128, 6)
			plan, err := planner(6, in, out)
			if err != nil {
				t.Fatalf("planner error: %v", err)
			}
			if plan.Len() != 6 {
				t.Fatalf("Len() = %d, want 6", plan.Len())
			}

			// A unit impulse transforms to all ones.
			in[0] = 1
			plan.Execute()
			for k, v := range out {
				if cmplx.Abs(v-1) > 1e-12 {
					t.Errorf("impulse bin %d = %v, want 1", k, v)
				}
			}

			// Rewriting the same buffer is picked up by the next Execute.
			in[0] = 0
			in[1] = 1
			plan.Execute()
			for k, v := range out {
				want := cmplx.Exp(complex(0, -2*math.Pi*float64(k)/6))
				if cmplx.Abs(v-want) > 1e-12 {
					t.Errorf("shifted impulse bin %d = %v, want %v", k, v, want)
				}
			}
		})
	}
}

func TestPlannerByName(t *testing.T) {
	for _, name := range []string{"", "gonum", "GoDSP", "go-dsp"} {
		if _, err := PlannerByName(name); err != nil {
			t.Errorf("PlannerByName(%q) error: %v", name, err)
		}
	}
	if _, err := PlannerByName("fftw"); err == nil {
		t.Error("expected error for unknown backend")
	}
}
