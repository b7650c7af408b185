// Package buildinfo exposes the running binary's version metadata, the
// way fdo-server's cmd package surfaces version details for its CLI and
// logs.
package buildinfo

import "runtime/debug"

// Info is the version metadata printed by the selftest CLI's --version
// flag.
type Info struct {
	Version   string
	Commit    string
	GoVersion string
}

// Read populates Info from the Go module build metadata embedded at
// build time. Fields are "unknown" when running under `go run` without
// module info (e.g. in some test harnesses).
func Read() Info {
	info := Info{Version: "unknown", Commit: "unknown", GoVersion: "unknown"}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	info.GoVersion = bi.GoVersion
	if bi.Main.Version != "" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		if s.Key == "vcs.revision" {
			info.Commit = s.Value
		}
	}
	return info
}
