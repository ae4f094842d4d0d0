// SPDX-License-Identifier: MIT
package cmd

import (
	"fmt"
	"os"

	"spectrum/internal/config"
	applog "spectrum/internal/log"
	"spectrum/pkg/build"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// options holds flag values. A flag only overrides the loaded configuration
// when it was set on the command line.
type options struct {
	configFile string
	logLevel   string

	windowSize      int
	zeroPadFactor   float64
	padToPowerOfTwo bool
	window          string
	spectrum        string
	backend         string
}

// Execute runs the command line interface with os.Args.
func Execute() error {
	root := newRootCmd()
	root.SetArgs(os.Args[1:])
	return root.Execute()
}

func newRootCmd() *cobra.Command {
	buildInfo := build.GetBuildInfo()
	opts := &options{}
	var cfg *config.Config

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         buildInfo.Description,
		Version:       buildInfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.LoadConfig(opts.configFile)
			if err != nil {
				return err
			}
			opts.apply(cmd.Flags(), loaded)
			if err := loaded.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			level, _ := applog.ParseLevel(loaded.LogLevel)
			applog.SetLevel(level)

			*cfg = *loaded
			return nil
		},
	}
	cfg = config.NewConfig()

	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "",
		"Path to a YAML configuration file (default ./"+config.DefaultConfigFile+" if present)")
	flags.StringVar(&opts.logLevel, "log-level", config.DefaultLogLevel,
		"Log level: debug, info, warn or error")

	// Analyzer configuration
	flags.IntVarP(&opts.windowSize, "window-size", "w", config.DefaultWindowSize,
		"Samples per analysed block")
	flags.Float64VarP(&opts.zeroPadFactor, "zero-pad", "z", config.DefaultZeroPadFactor,
		"Zero padding as a fraction of the window size")
	flags.BoolVar(&opts.padToPowerOfTwo, "pow2", false,
		"Round the transform size up to the next power of two")
	flags.StringVar(&opts.window, "window", config.DefaultWindow,
		"Window function: hamming, hann, blackman, blackmannuttall, bartletthann, nuttall or rectangular")
	flags.StringVar(&opts.spectrum, "spectrum", config.DefaultSpectrum,
		"Published spectrum: magnitude, power or energy")
	flags.StringVar(&opts.backend, "backend", config.DefaultBackend,
		"Transform backend: gonum or godsp")

	rootCmd.AddCommand(
		newFileCmd(cfg),
		newLiveCmd(cfg),
		newToneCmd(),
		newListCmd(),
	)

	return rootCmd
}

// apply copies every flag the user set into cfg.
func (o *options) apply(flags *pflag.FlagSet, cfg *config.Config) {
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if flags.Changed("window-size") {
		cfg.Analyzer.WindowSize = o.windowSize
	}
	if flags.Changed("zero-pad") {
		cfg.Analyzer.ZeroPadFactor = o.zeroPadFactor
	}
	if flags.Changed("pow2") {
		cfg.Analyzer.PadToPowerOfTwo = o.padToPowerOfTwo
	}
	if flags.Changed("window") {
		cfg.Analyzer.Window = o.window
	}
	if flags.Changed("spectrum") {
		cfg.Analyzer.Spectrum = o.spectrum
	}
	if flags.Changed("backend") {
		cfg.Analyzer.Backend = o.backend
	}
}
