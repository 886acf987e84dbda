// Package misc holds build and identity information for the program.
package misc

import (
	"path/filepath"
	"runtime/debug"
	"strings"
)

const appName = "atmerge"

// Overwritten at link time by build tasks.
var (
	version = ""
	gitHash = ""
)

// GetAppName returns program name used for logs, reports and defaults.
func GetAppName() string {
	return appName
}

// GetVersion returns program version, falling back to module information
// embedded by the toolchain.
func GetVersion() string {
	if len(version) > 0 {
		return version
	}
	if bi, ok := debug.ReadBuildInfo(); ok && len(bi.Main.Version) > 0 && bi.Main.Version != "(devel)" {
		return strings.TrimPrefix(bi.Main.Version, "v")
	}
	return "dev"
}

// GetGitHash returns short VCS revision the program was built from.
func GetGitHash() string {
	if len(gitHash) > 0 {
		return gitHash
	}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	var rev string
	var dirty bool
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if len(rev) == 0 {
		return "unknown"
	}
	if len(rev) > 7 {
		rev = rev[:7]
	}
	if dirty {
		rev += "+"
	}
	return rev
}

// GetDefaultName returns file name with program name as a stem.
func GetDefaultName(suffix string) string {
	return filepath.Base(appName + suffix)
}
