// SPDX-License-Identifier: MIT
package fft

import (
	"math"
	"testing"
)

func TestSamplesFromInt32(t *testing.T) {
	src := []int32{0, math.MaxInt32, math.MinInt32, 1 << 30}
	got := Samples(nil).FromInt32(src)

	want := []float64{0, float64(math.MaxInt32) / (1 << 31), -1, 0.5}
	if got.Size() != len(want) {
		t.Fatalf("Size() = %d, want %d", got.Size(), len(want))
	}
	for i := range want {
		if got.Data()[i] != want[i] {
			t.Errorf("sample %d = %v, want %v", i, got.Data()[i], want[i])
		}
	}
}

func TestSamplesReuseCapacity(t *testing.T) {
	buf := make(Samples, 0, 256)
	src := make([]float32, 128)

	allocs := testing.AllocsPerRun(100, func() {
		buf = buf.FromFloat32(src)
	})
	if allocs > 0 {
		t.Errorf("Expected zero allocations when capacity suffices, got %.1f", allocs)
	}
	if buf.Size() != 128 {
		t.Errorf("Size() = %d, want 128", buf.Size())
	}
}
