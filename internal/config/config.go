// SPDX-License-Identifier: MIT
package config

import "time"

// Defaults and limits for the analyzer, capture and transport settings.
const (
	DefaultLogLevel        = "info"
	DefaultWindowSize      = 1024      // Samples per analysed block
	DefaultZeroPadFactor   = 0.0       // No padding
	DefaultWindow          = "hamming" // Window family
	DefaultSpectrum        = "magnitude"
	DefaultBackend         = "gonum"
	DefaultDeviceID        = MinDeviceID // System default input
	DefaultChannels        = 1
	DefaultSampleRate      = 44100 // CD-quality audio
	DefaultLowLatency      = false
	DefaultGateThreshold   = 0.001 // ~-60 dBFS
	DefaultWebSocketAddr   = ":8080"
	DefaultUDPTarget       = "127.0.0.1:9090"
	DefaultUDPSendInterval = 33 * time.Millisecond // ~30Hz
	DefaultConfigFile      = "spectrum.yaml"

	MinDeviceID    = -1     // -1 represents system default device
	MinSampleRate  = 8000   // Minimum usable sample rate (Hz)
	MaxSampleRate  = 192000 // Maximum supported sample rate (Hz)
	MaxWindowSize  = 1 << 16
	MaxZeroPadding = 15.0 // transform at most 16x the window
	MaxUDPBins     = 65535
)

// Config holds all runtime configuration, loaded from YAML and then
// overridden by environment variables and command line flags.
type Config struct {
	LogLevel  string          `yaml:"log_level"` // debug, info, warn, error
	Analyzer  AnalyzerConfig  `yaml:"analyzer"`
	Audio     AudioConfig     `yaml:"audio"`
	Recording RecordingConfig `yaml:"recording"`
	Transport TransportConfig `yaml:"transport"`
}

// AnalyzerConfig holds the spectrum analyzer parameters.
type AnalyzerConfig struct {
	WindowSize      int     `yaml:"window_size"`         // Block length in samples (> 1).
	ZeroPadFactor   float64 `yaml:"zero_pad_factor"`     // Extra padding as a fraction of the window (>= 0).
	PadToPowerOfTwo bool    `yaml:"pad_to_power_of_two"` // Round the transform up to the next power of two.
	Window          string  `yaml:"window"`              // Window family (hamming, hann, blackman, ...).
	Spectrum        string  `yaml:"spectrum"`            // Published view: magnitude, power or energy.
	Backend         string  `yaml:"backend"`             // Transform backend: gonum or godsp.
}

// AudioConfig holds live capture settings.
type AudioConfig struct {
	InputDevice   int     `yaml:"input_device"`   // PortAudio device index (-1 for default).
	SampleRate    float64 `yaml:"sample_rate"`    // Sample rate in Hz.
	Channels      int     `yaml:"channels"`       // Captured channels; analysis uses the first.
	LowLatency    bool    `yaml:"low_latency"`    // Request the device's low input latency.
	GateThreshold float64 `yaml:"gate_threshold"` // Blocks with peak below this (0-1) are skipped.
}

// RecordingConfig holds settings for recording captured input to WAV.
type RecordingConfig struct {
	Enabled    bool   `yaml:"enabled"`
	OutputFile string `yaml:"output_file"` // Empty generates a timestamped name.
	BitDepth   int    `yaml:"bit_depth"`
}

// TransportConfig holds settings for publishing frames.
type TransportConfig struct {
	WebSocketEnabled bool          `yaml:"websocket_enabled"`
	WebSocketAddr    string        `yaml:"websocket_addr"`     // Listen address, e.g. ":8080".
	UDPEnabled       bool          `yaml:"udp_enabled"`        // Enable sending frames over UDP.
	UDPTargetAddress string        `yaml:"udp_target_address"` // e.g. "127.0.0.1:9090".
	UDPSendInterval  time.Duration `yaml:"udp_send_interval"`  // Interval between published spectra (UDP and WebSocket).
}

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		LogLevel: DefaultLogLevel,
		Analyzer: AnalyzerConfig{
			WindowSize:    DefaultWindowSize,
			ZeroPadFactor: DefaultZeroPadFactor,
			Window:        DefaultWindow,
			Spectrum:      DefaultSpectrum,
			Backend:       DefaultBackend,
		},
		Audio: AudioConfig{
			InputDevice:   DefaultDeviceID,
			SampleRate:    DefaultSampleRate,
			Channels:      DefaultChannels,
			LowLatency:    DefaultLowLatency,
			GateThreshold: DefaultGateThreshold,
		},
		Recording: RecordingConfig{
			BitDepth: 16,
		},
		Transport: TransportConfig{
			WebSocketAddr:    DefaultWebSocketAddr,
			UDPTargetAddress: DefaultUDPTarget,
			UDPSendInterval:  DefaultUDPSendInterval,
		},
	}
}
