// SPDX-License-Identifier: MIT
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"spectrum/internal/analysis"
	"spectrum/internal/config"
	"spectrum/internal/fft"
	"spectrum/internal/source"
	"spectrum/internal/transport"
	"spectrum/pkg/signal"

	"github.com/spf13/cobra"
)

type fileOptions struct {
	bands     bool
	jsonLines bool
	minHz     float64
	onset     float64
}

func newFileCmd(cfg *config.Config) *cobra.Command {
	opts := &fileOptions{}

	cmd := &cobra.Command{
		Use:   "file <path.wav>",
		Short: "Analyse a WAV file block by block",
		Long: "Splits the first channel of a PCM WAV file into consecutive blocks of\n" +
			"--window-size samples and prints the peak frequency of every frame.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFile(cmd.OutOrStdout(), cfg, args[0], opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.bands, "bands", "b", false, "Print band energies in dB for each frame")
	cmd.Flags().BoolVar(&opts.jsonLines, "json", false, "Print each frame as a JSON spectrum message")
	cmd.Flags().Float64Var(&opts.minHz, "min-freq", 20, "Ignore bins below this frequency when locating the peak")
	cmd.Flags().Float64Var(&opts.onset, "onset-threshold", 0, "Report onsets whose spectral flux exceeds this value (0 disables)")

	return cmd
}

func runFile(out io.Writer, cfg *config.Config, path string, opts *fileOptions) error {
	analyzer, err := cfg.Analyzer.NewAnalyzer()
	if err != nil {
		return err
	}
	kind, err := cfg.Analyzer.SpectrumType()
	if err != nil {
		return err
	}

	src, err := source.OpenWAV(path, analyzer.WindowSize())
	if err != nil {
		return err
	}
	defer src.Close()

	sampleRate := src.SampleRate()
	if opts.minHz < 0 || opts.minHz >= sampleRate/2 {
		return fmt.Errorf("--min-freq must be in [0, %g) for a %.0f Hz file, got %g", sampleRate/2, sampleRate, opts.minHz)
	}
	bands, err := analysis.NewBandEnergyProcessor(sampleRate, analyzer.TransformSize(), nil, nil)
	if err != nil {
		return err
	}
	var onsets *analysis.OnsetDetector
	if opts.onset > 0 {
		onsets = analysis.NewOnsetDetector(analyzer.Frame().Size(), opts.onset, 1.5, nil)
	}

	if !opts.jsonLines {
		fmt.Fprintf(out, "%s: %.0f Hz, %d channel(s), %d-bit\n", path, sampleRate, src.Channels(), src.BitDepth())
		fmt.Fprintf(out, "window %d (%s), transform %d, %.2f Hz per bin\n\n",
			analyzer.WindowSize(), analyzer.WindowType(), analyzer.TransformSize(), analyzer.BinFrequency(1, sampleRate))
	}

	values := make([]float64, analyzer.Frame().Size())
	startBin := int(opts.minHz*float64(analyzer.TransformSize())/sampleRate + 0.5)
	encoder := json.NewEncoder(out)
	var start int // first frame of the current block

	err = src.Analyze(analyzer, func(index int, frame *fft.Frame) error {
		at := float64(start) / sampleRate
		start = src.Position()

		if err := frame.Values(kind, values); err != nil {
			return err
		}

		if opts.jsonLines {
			return encoder.Encode(&transport.SpectrumMessage{
				Type:     "spectrum",
				Sequence: uint64(index + 1),
				Spectrum: kind.String(),
				Values:   values,
			})
		}

		peak := signal.PeakBin(frame.Data(), startBin, frame.Size()-1)
		line := fmt.Sprintf("%5d  %8.3fs  peak %9.2f Hz  %s %.4g",
			index, at, analyzer.BinFrequency(peak, sampleRate), kind, values[peak])

		if onsets != nil && onsets.Process(frame) {
			line += "  onset"
		}
		if opts.bands {
			bands.Process(frame)
			var sb strings.Builder
			for _, b := range bands.Bands() {
				fmt.Fprintf(&sb, "  %s %.1f", b.Name, b.Level())
			}
			line += sb.String()
		}

		_, err := fmt.Fprintln(out, line)
		return err
	})
	if err != nil {
		return fmt.Errorf("analysis of %s failed: %w", path, err)
	}
	return nil
}
