package buildinfo

import (
	"runtime"
	"runtime/debug"
	"sync"
)

// Build-time variables (set via ldflags).
var (
	// Version is the semantic version.
	Version = "dev"

	// Commit is the git commit hash.
	Commit = "unknown"

	// BuildTime is the build timestamp.
	BuildTime = "unknown"

	// GoVersion is the Go version used to build.
	GoVersion = "unknown"
)

// Info contains build information.
type Info struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildTime string `json:"build_time" yaml:"build_time"`
	GoVersion string `json:"go_version" yaml:"go_version"`
}

var (
	resolveOnce sync.Once
	resolved    Info
)

// Get returns the build information.
func Get() Info {
	resolveOnce.Do(func() {
		resolved = resolve(Info{
			Version:   Version,
			Commit:    Commit,
			BuildTime: BuildTime,
			GoVersion: GoVersion,
		}, debug.ReadBuildInfo)
	})
	return resolved
}

// String returns a formatted version string.
func String() string {
	info := Get()
	return info.Version + " (" + info.Commit + ") built at " + info.BuildTime
}

// ShortCommit returns the first 7 characters of the commit hash.
func ShortCommit() string {
	c := Get().Commit
	if len(c) > 7 {
		return c[:7]
	}
	return c
}

// resolve fills unset fields from embedded build information.
func resolve(info Info, read func() (*debug.BuildInfo, bool)) Info {
	if info.GoVersion == "unknown" {
		info.GoVersion = runtime.Version()
	}

	bi, ok := read()
	if !ok || bi == nil {
		return info
	}
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "unknown" {
				info.Commit = s.Value
			}
		case "vcs.time":
			if info.BuildTime == "unknown" {
				info.BuildTime = s.Value
			}
		}
	}
	return info
}
