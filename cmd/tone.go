// SPDX-License-Identifier: MIT
package cmd

import (
	"time"

	"spectrum/internal/source"

	"github.com/spf13/cobra"
)

func newToneCmd() *cobra.Command {
	var output string
	tone := source.Tone{
		Frequency:  440,
		Amplitude:  0.5,
		Duration:   2 * time.Second,
		SampleRate: 44100,
		BitDepth:   16,
	}

	cmd := &cobra.Command{
		Use:   "tone",
		Short: "Write a sine test tone to a WAV file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return source.WriteToneFile(output, tone)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "tone.wav", "Output file name")
	cmd.Flags().Float64VarP(&tone.Frequency, "frequency", "f", tone.Frequency, "Tone frequency in Hz")
	cmd.Flags().Float64VarP(&tone.Amplitude, "amplitude", "a", tone.Amplitude, "Amplitude as a fraction of full scale")
	cmd.Flags().DurationVarP(&tone.Duration, "duration", "t", tone.Duration, "Tone length")
	cmd.Flags().IntVarP(&tone.SampleRate, "sample-rate", "s", tone.SampleRate, "Sample rate in Hz")
	cmd.Flags().IntVar(&tone.BitDepth, "bit-depth", tone.BitDepth, "PCM bit depth: 8, 16, 24 or 32")

	return cmd
}
