// SPDX-License-Identifier: MIT
package build

import (
	"runtime/debug"
	"strings"
	"testing"
)

func resetBuild(t *testing.T) {
	t.Helper()
	origName, origTime, origCommit, origVersion := buildName, buildTime, buildCommit, buildVersion
	origInfo := *buildInfo
	origRead := readBuildInfo
	t.Cleanup(func() {
		buildName, buildTime, buildCommit, buildVersion = origName, origTime, origCommit, origVersion
		*buildInfo = origInfo
		readBuildInfo = origRead
	})
	readBuildInfo = func() (*debug.BuildInfo, bool) { return nil, false }
}

func TestInitialize_LdFlags(t *testing.T) {
	resetBuild(t)
	buildName = "spectrum-test"
	buildTime = "2026-10-17T12:00:00Z"
	buildCommit = "abc1234"
	buildVersion = "0.2.0"

	if err := Initialize(); err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}

	info := GetBuildInfo()
	if info.Name != "spectrum-test" || info.Version != "0.2.0" || info.Commit != "abc1234" || info.Time != "2026-10-17T12:00:00Z" {
		t.Errorf("GetBuildInfo() = %+v", info)
	}
	if !strings.Contains(info.String(), "spectrum-test 0.2.0") {
		t.Errorf("String() = %q", info.String())
	}
}

func TestInitialize_BadTime(t *testing.T) {
	resetBuild(t)
	buildTime = "yesterday"

	if err := Initialize(); err == nil {
		t.Error("expected error for non-RFC3339 build time")
	}
}

func TestInitialize_ModuleFallback(t *testing.T) {
	resetBuild(t)
	readBuildInfo = func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{
			Main: debug.Module{Version: "v1.4.0"},
			Settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "deadbeef"},
				{Key: "vcs.time", Value: "2026-01-01T00:00:00Z"},
			},
		}, true
	}

	if err := Initialize(); err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}

	info := GetBuildInfo()
	if info.Version != "v1.4.0" || info.Commit != "deadbeef" || info.Time != "2026-01-01T00:00:00Z" {
		t.Errorf("GetBuildInfo() = %+v", info)
	}
	if info.Name != "spectrum" {
		t.Errorf("Name = %q, want default spectrum", info.Name)
	}
}

func TestInitialize_Defaults(t *testing.T) {
	resetBuild(t)

	if err := Initialize(); err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}
	if GetBuildInfo().Version != unknown {
		t.Errorf("Version = %q, want %q", GetBuildInfo().Version, unknown)
	}
}
