// SPDX-License-Identifier: MIT
//
// Package build exposes the name, version, commit and build time embedded in
// the binary. Values come from -ldflags when set, for example:
//
//	go build -ldflags "-X spectrum/pkg/build.buildVersion=0.2.0 -X spectrum/pkg/build.buildTime=2026-10-17T12:00:00Z"
//
// and otherwise from the module build information recorded by the Go
// toolchain.
package build

import (
	"fmt"
	"runtime/debug"
	"time"
)

const unknown = "unknown"

// Info describes the running binary.
type Info struct {
	Name        string
	Description string
	Time        string
	Commit      string
	Version     string
}

// Populated by -ldflags during compilation.
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
	buildInfo    = &Info{
		Name:        "spectrum",
		Description: "Windowed, zero-padded spectrum analysis of audio blocks",
		Time:        unknown,
		Commit:      unknown,
		Version:     unknown,
	}
)

// readBuildInfo is swapped in tests.
var readBuildInfo = debug.ReadBuildInfo

// Initialize resolves the build information. It must be called early in
// program startup. An ldflags build time that is not RFC3339 is an error.
func Initialize() error {
	if buildTime != "" {
		if _, err := time.Parse(time.RFC3339, buildTime); err != nil {
			return fmt.Errorf("build time %q is not RFC3339: %w", buildTime, err)
		}
	}

	if bi, ok := readBuildInfo(); ok {
		if v := bi.Main.Version; v != "" && v != "(devel)" {
			buildInfo.Version = v
		}
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				buildInfo.Commit = s.Value
			case "vcs.time":
				buildInfo.Time = s.Value
			}
		}
	}

	if buildName != "" {
		buildInfo.Name = buildName
	}
	if buildTime != "" {
		buildInfo.Time = buildTime
	}
	if buildCommit != "" {
		buildInfo.Commit = buildCommit
	}
	if buildVersion != "" {
		buildInfo.Version = buildVersion
	}

	return nil
}

// GetBuildInfo returns the resolved build information.
func GetBuildInfo() *Info {
	return buildInfo
}

// String formats the information for a --version banner.
func (i *Info) String() string {
	return fmt.Sprintf("%s %s (commit %s, built %s)", i.Name, i.Version, i.Commit, i.Time)
}
