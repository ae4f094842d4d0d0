// SPDX-License-Identifier: MIT
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	applog "spectrum/internal/log"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from the YAML file at path. If path is
// empty, it looks for DefaultConfigFile in the working directory and falls
// back to built-in defaults when none is found. Environment overrides are
// applied after loading and the result is validated.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			path = DefaultConfigFile
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		applog.Debugf("Config: Loaded %s", path)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks every section and returns all problems joined together.
func (c *Config) Validate() error {
	var errs []error

	if _, ok := applog.ParseLevel(c.LogLevel); !ok {
		errs = append(errs, fmt.Errorf("log_level '%s' is not recognised", c.LogLevel))
	}

	a := c.Analyzer
	if a.WindowSize <= 1 || a.WindowSize > MaxWindowSize {
		errs = append(errs, fmt.Errorf("analyzer.window_size must be in (1, %d], got %d", MaxWindowSize, a.WindowSize))
	}
	if a.ZeroPadFactor < 0 || a.ZeroPadFactor > MaxZeroPadding {
		errs = append(errs, fmt.Errorf("analyzer.zero_pad_factor must be in [0, %g], got %g", MaxZeroPadding, a.ZeroPadFactor))
	}
	if _, err := a.WindowFunc(); err != nil {
		errs = append(errs, fmt.Errorf("analyzer.window: %w", err))
	}
	if _, err := a.SpectrumType(); err != nil {
		errs = append(errs, fmt.Errorf("analyzer.spectrum: %w", err))
	}
	if _, err := a.Planner(); err != nil {
		errs = append(errs, fmt.Errorf("analyzer.backend: %w", err))
	}

	if c.Audio.SampleRate < MinSampleRate || c.Audio.SampleRate > MaxSampleRate {
		errs = append(errs, fmt.Errorf("audio.sample_rate must be in [%d, %d], got %g", MinSampleRate, MaxSampleRate, c.Audio.SampleRate))
	}
	if c.Audio.Channels < 1 {
		errs = append(errs, fmt.Errorf("audio.channels must be positive, got %d", c.Audio.Channels))
	}
	if c.Audio.InputDevice < MinDeviceID {
		errs = append(errs, fmt.Errorf("audio.input_device must be >= %d, got %d", MinDeviceID, c.Audio.InputDevice))
	}
	if c.Audio.GateThreshold < 0 || c.Audio.GateThreshold > 1 {
		errs = append(errs, fmt.Errorf("audio.gate_threshold must be in [0, 1], got %g", c.Audio.GateThreshold))
	}

	switch c.Recording.BitDepth {
	case 8, 16, 24, 32:
	default:
		errs = append(errs, fmt.Errorf("recording.bit_depth must be 8, 16, 24 or 32, got %d", c.Recording.BitDepth))
	}

	t := c.Transport
	if t.WebSocketEnabled && t.WebSocketAddr == "" {
		errs = append(errs, errors.New("transport.websocket_addr must be set when websocket is enabled"))
	}
	if t.UDPEnabled {
		if !strings.Contains(t.UDPTargetAddress, ":") {
			errs = append(errs, fmt.Errorf("transport.udp_target_address '%s' appears invalid (missing port?)", t.UDPTargetAddress))
		}
		if t.UDPSendInterval <= 0 {
			errs = append(errs, errors.New("transport.udp_send_interval must be positive when UDP is enabled"))
		}
		if bins := c.Analyzer.TransformSize()/2 + 1; bins > MaxUDPBins {
			errs = append(errs, fmt.Errorf("UDP packets carry at most %d bins, transform yields %d", MaxUDPBins, bins))
		}
	}

	return errors.Join(errs...)
}

// applyEnvOverrides applies ENV_* variables on top of file values.
// Unparseable values are logged and ignored.
func (c *Config) applyEnvOverrides() {
	if val, ok := os.LookupEnv("ENV_LOG_LEVEL"); ok {
		c.LogLevel = val
		applog.Infof("Config: Overriding log_level from env: %s", val)
	}

	// ENV_ANALYZER_{...}
	if val, ok := os.LookupEnv("ENV_ANALYZER_WINDOW_SIZE"); ok {
		if n, err := strconv.Atoi(val); err == nil {
			c.Analyzer.WindowSize = n
			applog.Infof("Config: Overriding analyzer.window_size from env: %d", n)
		} else {
			applog.Warnf("Config: Ignoring ENV_ANALYZER_WINDOW_SIZE=%q: %v", val, err)
		}
	}
	if val, ok := os.LookupEnv("ENV_ANALYZER_ZERO_PAD_FACTOR"); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			c.Analyzer.ZeroPadFactor = f
			applog.Infof("Config: Overriding analyzer.zero_pad_factor from env: %g", f)
		} else {
			applog.Warnf("Config: Ignoring ENV_ANALYZER_ZERO_PAD_FACTOR=%q: %v", val, err)
		}
	}
	if val, ok := os.LookupEnv("ENV_ANALYZER_WINDOW"); ok {
		c.Analyzer.Window = val
		applog.Infof("Config: Overriding analyzer.window from env: %s", val)
	}

	// ENV_WS_{...}
	if val, ok := os.LookupEnv("ENV_WS_ENABLED"); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			c.Transport.WebSocketEnabled = b
			applog.Infof("Config: Overriding transport.websocket_enabled from env: %v", b)
		}
	}
	if val, ok := os.LookupEnv("ENV_WS_ADDR"); ok {
		c.Transport.WebSocketAddr = val
		applog.Infof("Config: Overriding transport.websocket_addr from env: %s", val)
	}

	// ENV_UDP_{...}
	if val, ok := os.LookupEnv("ENV_UDP_ENABLED"); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			c.Transport.UDPEnabled = b
			applog.Infof("Config: Overriding transport.udp_enabled from env: %v", b)
		}
	}
	if val, ok := os.LookupEnv("ENV_UDP_TARGET_ADDRESS"); ok {
		c.Transport.UDPTargetAddress = val
		applog.Infof("Config: Overriding transport.udp_target_address from env: %s", val)
	}
	if val, ok := os.LookupEnv("ENV_UDP_SEND_INTERVAL"); ok {
		if dur, err := time.ParseDuration(val); err == nil {
			c.Transport.UDPSendInterval = dur
			applog.Infof("Config: Overriding transport.udp_send_interval from env: %s", dur)
		}
	}
}
