// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"
	"math"

	"spectrum/internal/config"
)

const (
	testSampleRate = 44100
	testFrameSize  = 256
	lowThreshold   = int32(math.MaxInt32 / 10000)
	highThreshold  = int32(math.MaxInt32 / 2)
)

var (
	testBuffer  = makeBuffer(testFrameSize, 0.25)
	quietBuffer = makeBuffer(testFrameSize, 0.001)
	loudBuffer  = makeBuffer(testFrameSize, 0.9)
)

// makeBuffer returns an alternating-sign sine at the given fraction of full
// scale, landing on bin 8 of a testFrameSize transform.
func makeBuffer(n int, amplitude float64) []int32 {
	buf := make([]int32, n)
	for i := range buf {
		v := amplitude * math.Sin(2*math.Pi*8*float64(i)/float64(n))
		buf[i] = int32(v * math.MaxInt32)
	}
	return buf
}

// interleave duplicates mono into channels, putting noise on every channel
// but the first.
func interleave(mono []int32, channels int) []int32 {
	out := make([]int32, len(mono)*channels)
	for i, s := range mono {
		out[i*channels] = s
		for c := 1; c < channels; c++ {
			out[i*channels+c] = int32((i*7919 + c*104729) % 1000000 * 1000)
		}
	}
	return out
}

func newTestConfig(channels int) *config.Config {
	cfg := config.NewConfig()
	cfg.Audio.SampleRate = testSampleRate
	cfg.Audio.Channels = channels
	cfg.Analyzer.WindowSize = testFrameSize
	cfg.Analyzer.Spectrum = "energy"
	return cfg
}

func newTestEngine() *Engine {
	engine, err := newEngine(newTestConfig(2), nil)
	if err != nil {
		panic(err)
	}
	return engine
}

func formatFloat(v float64) string {
	return fmt.Sprintf("%.3f", v)
}

func absFloat(x float64) float64 {
	return math.Abs(x)
}

// absInt32 returns the absolute value of x.
func absInt32(x int32) int32 {
	mask := x >> 31
	return (x ^ mask) - mask
}
