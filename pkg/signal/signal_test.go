// SPDX-License-Identifier: MIT
package signal

import (
	"math"
	"testing"
)

const (
	testSize       = 1024
	testSampleRate = 44100
	testFrequency  = 440.0 // A4 note
)

func TestSine(t *testing.T) {
	s := Sine(testSize, testSampleRate, testFrequency, 0.5)
	if len(s) != testSize {
		t.Fatalf("len = %d, want %d", len(s), testSize)
	}
	if s[0] != 0 {
		t.Errorf("first sample = %v, want 0", s[0])
	}

	var peak float64
	for _, v := range s {
		peak = math.Max(peak, math.Abs(v))
	}
	if peak > 0.5 || peak < 0.49 {
		t.Errorf("peak = %v, want just under 0.5", peak)
	}
}

func TestBinSinePeriodic(t *testing.T) {
	s := BinSine(16, 2, 8)
	for i := range 8 {
		if math.Abs(s[i]-s[i+8]) > 1e-12 {
			t.Errorf("sample %d = %v, sample %d = %v, want equal", i, s[i], i+8, s[i+8])
		}
	}
}

func TestComplexWithinFullScale(t *testing.T) {
	for i, v := range Complex(testSize, testSampleRate) {
		if math.Abs(v) > 0.9 {
			t.Fatalf("sample %d = %v exceeds 0.9", i, v)
		}
	}
}

func TestConstant(t *testing.T) {
	for _, v := range Constant(10, -0.25) {
		if v != -0.25 {
			t.Fatalf("value = %v, want -0.25", v)
		}
	}
}

func TestPeakBin(t *testing.T) {
	hill := make([]float64, testSize)
	for i := range hill {
		hill[i] = math.Exp(-0.01 * math.Pow(float64(i-testSize/4), 2))
	}

	tests := []struct {
		name     string
		values   []float64
		start    int
		end      int
		expected int
	}{
		{"Full range", hill, 0, testSize - 1, testSize / 4},
		{"Clamped range", hill, -5, testSize * 2, testSize / 4},
		{"Upper half", hill, testSize / 2, testSize - 1, testSize / 2},
		{"Empty", nil, 0, 10, 0},
		{"Inverted range", hill, 10, 5, 10},
		{"Start at end of slice", hill, testSize, testSize - 1, testSize - 1},
		{"Start past end of slice", hill, testSize + 125, testSize * 2, testSize - 1},
		{"Ties keep first", []float64{1, 3, 3, 2}, 0, 3, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PeakBin(tt.values, tt.start, tt.end); got != tt.expected {
				t.Errorf("PeakBin() = %d, want %d", got, tt.expected)
			}
		})
	}
}
