// SPDX-License-Identifier: MIT
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"spectrum/internal/analysis"
	"spectrum/internal/audio"
	"spectrum/internal/config"
	"spectrum/internal/fft"
	applog "spectrum/internal/log"
	"spectrum/internal/transport"
	"spectrum/internal/transport/udp"
	"spectrum/internal/tui"

	"github.com/spf13/cobra"
)

type liveOptions struct {
	device     int
	channels   int
	sampleRate float64
	lowLatency bool
	gate       float64

	record bool
	output string

	websocket   bool
	wsAddr      string
	udp         bool
	udpTarget   string
	udpInterval time.Duration

	tui  bool
	pick bool
}

func newLiveCmd(cfg *config.Config) *cobra.Command {
	opts := &liveOptions{}

	cmd := &cobra.Command{
		Use:   "live",
		Short: "Analyse live input from an audio device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return runLive(cmd.Context(), cmd.OutOrStdout(), cfg, opts)
		},
	}

	// Audio device configuration
	f := cmd.Flags()
	f.IntVarP(&opts.device, "device", "d", config.DefaultDeviceID,
		"Input device ID. Use the 'list' command to see available devices.")
	f.IntVarP(&opts.channels, "channels", "c", config.DefaultChannels,
		"Number of channels to capture; analysis uses the first")
	f.Float64VarP(&opts.sampleRate, "sample-rate", "s", config.DefaultSampleRate,
		"Sample rate, measured in Hertz (Hz)")
	f.BoolVarP(&opts.lowLatency, "low-latency", "l", config.DefaultLowLatency,
		"Use the device's low input latency")
	f.Float64Var(&opts.gate, "gate", config.DefaultGateThreshold,
		"Noise gate threshold (0-1); quieter blocks are not analysed")

	// Recording configuration
	f.BoolVarP(&opts.record, "record", "r", false, "Record the captured input to WAV")
	f.StringVarP(&opts.output, "output", "o", "", "Recording file name (default recording_YYYYMMDD_HHMMSS.wav)")

	// Transport configuration
	f.BoolVar(&opts.websocket, "ws", false, "Publish spectra and events over WebSocket")
	f.StringVar(&opts.wsAddr, "ws-addr", config.DefaultWebSocketAddr, "WebSocket listen address")
	f.BoolVar(&opts.udp, "udp", false, "Publish spectra as binary UDP packets")
	f.StringVar(&opts.udpTarget, "udp-target", config.DefaultUDPTarget, "UDP target host:port")
	f.DurationVar(&opts.udpInterval, "udp-interval", config.DefaultUDPSendInterval, "Interval between published spectra")

	// Display
	f.BoolVar(&opts.tui, "tui", false, "Show the live spectrum in the terminal")
	f.BoolVar(&opts.pick, "pick", false, "Choose the input device interactively")

	return cmd
}

func (o *liveOptions) apply(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("device") {
		cfg.Audio.InputDevice = o.device
	}
	if f.Changed("channels") {
		cfg.Audio.Channels = o.channels
	}
	if f.Changed("sample-rate") {
		cfg.Audio.SampleRate = o.sampleRate
	}
	if f.Changed("low-latency") {
		cfg.Audio.LowLatency = o.lowLatency
	}
	if f.Changed("gate") {
		cfg.Audio.GateThreshold = o.gate
	}
	if f.Changed("record") {
		cfg.Recording.Enabled = o.record
	}
	if f.Changed("output") {
		cfg.Recording.OutputFile = o.output
	}
	if f.Changed("ws") {
		cfg.Transport.WebSocketEnabled = o.websocket
	}
	if f.Changed("ws-addr") {
		cfg.Transport.WebSocketAddr = o.wsAddr
	}
	if f.Changed("udp") {
		cfg.Transport.UDPEnabled = o.udp
	}
	if f.Changed("udp-target") {
		cfg.Transport.UDPTargetAddress = o.udpTarget
	}
	if f.Changed("udp-interval") {
		cfg.Transport.UDPSendInterval = o.udpInterval
	}
}

// runLive is split into three phases:
//
// 1. Startup (cold path): PortAudio, device, engine, transports.
// 2. Capture (hot path): the PortAudio callback analyses every buffer while
// this goroutine waits for a signal or the terminal view to exit.
// 3. Shutdown (cold path): stop the stream, then recording and publishers.
func runLive(ctx context.Context, out io.Writer, cfg *config.Config, opts *liveOptions) error {
	// ==================== STARTUP PHASE (Cold Path) ====================

	if err := audio.Initialize(); err != nil {
		return err
	}
	defer audio.Terminate()

	if opts.pick {
		id, err := tui.PickDevice()
		if err != nil {
			return err
		}
		if id < 0 {
			return nil
		}
		cfg.Audio.InputDevice = id
	}

	engine, err := audio.NewEngine(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := engine.Close(); err != nil {
			applog.Errorf("Live: Error closing audio engine: %v", err)
		}
	}()

	closers, err := startTransports(cfg, engine)
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].Close(); err != nil {
				applog.Warnf("Live: Error during shutdown: %v", err)
			}
		}
	}()
	if err != nil {
		return err
	}

	// ==================== CAPTURE PHASE (Hot Path) ====================

	if err := engine.StartInputStream(); err != nil {
		return err
	}

	if cfg.Recording.Enabled {
		filename := cfg.Recording.OutputFile
		if filename == "" {
			filename = audio.RecordingFilename(time.Now())
		}
		if err := engine.StartRecording(filename); err != nil {
			return err
		}
	}

	if opts.tui {
		binHz := engine.Analyzer().BinFrequency(1, cfg.Audio.SampleRate)
		model := tui.NewSpectrumModel(engine, engine.SpectrumType(), binHz, 50*time.Millisecond)
		if err := tui.RunSpectrum(model); err != nil {
			return err
		}
	} else {
		if ctx == nil {
			ctx = context.Background()
		}
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Fprintln(out, "Capturing. Press Ctrl+C to stop.")
		<-ctx.Done()
	}

	// ==================== SHUTDOWN PHASE (Cold Path) ====================

	if err := engine.StopInputStream(); err != nil {
		applog.Errorf("Live: Error stopping input stream: %v", err)
	}

	processed, gated := engine.Stats()
	fmt.Fprintf(out, "\nAnalysed %d blocks, gated %d.\n", processed, gated)

	if engine.Recording() {
		if err := engine.StopRecording(); err != nil {
			applog.Errorf("Live: Error stopping recording: %v", err)
		}
	}
	return nil
}

// startTransports wires the configured transports and analysis processors to
// the engine. The returned closers must be closed in reverse order even when
// an error is returned.
func startTransports(cfg *config.Config, engine *audio.Engine) ([]io.Closer, error) {
	var closers []io.Closer
	var events transport.Multi

	if applog.Enabled(applog.LevelDebug) {
		events = append(events, transport.NewLoggingTransport())
	}

	if cfg.Transport.WebSocketEnabled {
		ws := transport.NewWebSocketTransport(cfg.Transport.WebSocketAddr)
		ws.Start()
		closers = append(closers, ws)
		events = append(events, ws)

		pub, err := transport.NewPublisher(ws, engine, engine.SpectrumType().String(), cfg.Transport.UDPSendInterval)
		if err != nil {
			return closers, err
		}
		pub.Start()
		closers = append(closers, pub)
	}

	if cfg.Transport.UDPEnabled {
		sender, err := udp.NewUDPSender(cfg.Transport.UDPTargetAddress)
		if err != nil {
			return closers, err
		}
		closers = append(closers, sender)

		pub, err := udp.NewUDPPublisher(cfg.Transport.UDPSendInterval, sender, engine, engine.SpectrumType())
		if err != nil {
			return closers, err
		}
		pub.Start()
		closers = append(closers, pub)
	}

	if len(events) > 0 {
		analyzer := engine.Analyzer()
		bands, err := analysis.NewBandEnergyProcessor(cfg.Audio.SampleRate, analyzer.TransformSize(), nil, events)
		if err != nil {
			return closers, err
		}
		engine.AddProcessor(bands)

		onsets := analysis.NewOnsetDetector(analyzer.Frame().Size(), 1.0, 1.5, events)
		engine.AddProcessor(audio.FrameProcessorFunc(func(frame *fft.Frame) {
			onsets.Process(frame)
		}))
	}

	return closers, nil
}
