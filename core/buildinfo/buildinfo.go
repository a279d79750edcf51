// Package buildinfo reports the version of the running binary.
package buildinfo

import "runtime/debug"

// Set via -ldflags, e.g.
//
//	-X 'github.com/m3rciful/fitbot/core/buildinfo.Version=v1.2.3'
//	-X 'github.com/m3rciful/fitbot/core/buildinfo.Commit=abcdef0'
//	-X 'github.com/m3rciful/fitbot/core/buildinfo.Date=2025-08-30T12:00:00Z'
//
// Commit and Date fall back to the VCS stamp the go tool embeds.
var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

func init() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		fill(nil)
		return
	}
	fill(info.Settings)
}

func fill(settings []debug.BuildSetting) {
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			if Commit == "" && len(s.Value) >= 7 {
				Commit = s.Value[:7]
			}
		case "vcs.time":
			if Date == "" {
				Date = s.Value
			}
		}
	}
	if Commit == "" {
		Commit = "local"
	}
}
