// SPDX-License-Identifier: MIT
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	tmp := t.TempDir()
	path := filepath.Join(tmp, "spectrum.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if cfg.Analyzer.WindowSize != DefaultWindowSize {
		t.Errorf("window_size = %d, want default %d", cfg.Analyzer.WindowSize, DefaultWindowSize)
	}
	if cfg.Analyzer.Window != DefaultWindow {
		t.Errorf("window = %q, want default %q", cfg.Analyzer.Window, DefaultWindow)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	t.Parallel()
	cfg, err := LoadConfig("nonexistent.yaml")
	if err == nil {
		t.Errorf("expected error for missing file, got nil")
	}
	if cfg != nil {
		t.Errorf("expected nil config on error, got %+v", cfg)
	}
}

func TestLoadConfig_UnmarshalError(t *testing.T) {
	t.Parallel()
	path := writeTempConfig(t, ":\n:bad")
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "failed to parse config file") {
		t.Error("expected unmarshal error, got nil or wrong error")
	}
}

func TestLoadConfig_File(t *testing.T) {
	t.Parallel()
	path := writeTempConfig(t, `
log_level: debug
analyzer:
  window_size: 512
  zero_pad_factor: 0.5
  window: hann
  spectrum: power
  backend: godsp
audio:
  sample_rate: 48000
transport:
  udp_enabled: true
  udp_send_interval: 10ms
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.Analyzer.WindowSize != 512 || cfg.Analyzer.ZeroPadFactor != 0.5 {
		t.Errorf("analyzer = %+v", cfg.Analyzer)
	}
	if cfg.Audio.SampleRate != 48000 {
		t.Errorf("sample_rate = %g, want 48000", cfg.Audio.SampleRate)
	}
	if cfg.Audio.Channels != DefaultChannels {
		t.Errorf("channels = %d, want default %d", cfg.Audio.Channels, DefaultChannels)
	}
	if cfg.Transport.UDPSendInterval != 10*time.Millisecond {
		t.Errorf("udp_send_interval = %s, want 10ms", cfg.Transport.UDPSendInterval)
	}
	if cfg.Analyzer.TransformSize() != 768 {
		t.Errorf("TransformSize() = %d, want 768", cfg.Analyzer.TransformSize())
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("ENV_ANALYZER_WINDOW_SIZE", "256")
	t.Setenv("ENV_ANALYZER_ZERO_PAD_FACTOR", "1")
	t.Setenv("ENV_UDP_ENABLED", "true")
	t.Setenv("ENV_UDP_SEND_INTERVAL", "5ms")

	path := writeTempConfig(t, "analyzer:\n  window_size: 512\n")
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.Analyzer.WindowSize != 256 {
		t.Errorf("window_size = %d, want env value 256", cfg.Analyzer.WindowSize)
	}
	if cfg.Analyzer.ZeroPadFactor != 1 {
		t.Errorf("zero_pad_factor = %g, want env value 1", cfg.Analyzer.ZeroPadFactor)
	}
	if !cfg.Transport.UDPEnabled || cfg.Transport.UDPSendInterval != 5*time.Millisecond {
		t.Errorf("transport = %+v", cfg.Transport)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"Defaults", func(*Config) {}, ""},
		{"Window size one", func(c *Config) { c.Analyzer.WindowSize = 1 }, "analyzer.window_size"},
		{"Negative zero pad", func(c *Config) { c.Analyzer.ZeroPadFactor = -1 }, "analyzer.zero_pad_factor"},
		{"Unknown window", func(c *Config) { c.Analyzer.Window = "kaiser" }, "analyzer.window"},
		{"Unknown spectrum", func(c *Config) { c.Analyzer.Spectrum = "loudness" }, "analyzer.spectrum"},
		{"Unknown backend", func(c *Config) { c.Analyzer.Backend = "fftw" }, "analyzer.backend"},
		{"Low sample rate", func(c *Config) { c.Audio.SampleRate = 100 }, "audio.sample_rate"},
		{"Gate above one", func(c *Config) { c.Audio.GateThreshold = 2 }, "audio.gate_threshold"},
		{"Bad bit depth", func(c *Config) { c.Recording.BitDepth = 12 }, "recording.bit_depth"},
		{"Bad log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"UDP without port", func(c *Config) {
			c.Transport.UDPEnabled = true
			c.Transport.UDPTargetAddress = "localhost"
		}, "udp_target_address"},
		{"UDP too many bins", func(c *Config) {
			c.Transport.UDPEnabled = true
			c.Analyzer.WindowSize = MaxWindowSize
			c.Analyzer.ZeroPadFactor = 2
		}, "at most"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestEffectiveZeroPadFactor(t *testing.T) {
	tests := []struct {
		windowSize int
		zeroPad    float64
		pow2       bool
		want       int
	}{
		{1000, 0, false, 1000},
		{1000, 0, true, 1024},
		{1024, 0, true, 1024},
		{441, 0.5, true, 1024},
		{300, 1, true, 1024},
		{3, 0, true, 4},
	}

	for _, tt := range tests {
		a := AnalyzerConfig{WindowSize: tt.windowSize, ZeroPadFactor: tt.zeroPad, PadToPowerOfTwo: tt.pow2}
		if got := a.TransformSize(); got != tt.want {
			t.Errorf("TransformSize(%d, %g, pow2=%v) = %d, want %d", tt.windowSize, tt.zeroPad, tt.pow2, got, tt.want)
		}
	}
}

func TestAnalyzerConfigNewAnalyzer(t *testing.T) {
	a := NewConfig().Analyzer
	a.WindowSize = 300
	a.PadToPowerOfTwo = true
	a.Window = "blackman"

	analyzer, err := a.NewAnalyzer()
	if err != nil {
		t.Fatalf("NewAnalyzer error: %v", err)
	}
	if analyzer.TransformSize() != 512 {
		t.Errorf("TransformSize() = %d, want 512", analyzer.TransformSize())
	}
	if analyzer.WindowType().String() != "blackman" {
		t.Errorf("WindowType() = %v, want blackman", analyzer.WindowType())
	}
}
