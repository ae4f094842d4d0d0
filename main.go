// SPDX-License-Identifier: MIT
package main

import (
	"os"
	"runtime"

	"spectrum/cmd"
	applog "spectrum/internal/log"
	"spectrum/pkg/build"
)

func main() {
	// Initialize build information including version, commit hash, and build time
	if err := build.Initialize(); err != nil {
		applog.Fatal(err)
	}

	// Limit OS threads for real-time audio processing:
	// - One thread dedicated to the audio callback (time-critical)
	// - One thread for publishing, the terminal view and I/O
	runtime.GOMAXPROCS(2)

	if err := cmd.Execute(); err != nil {
		applog.Errorf("%v", err)
		os.Exit(1)
	}
}
