// Package version carries the build identity of the quill binary.
package version

import "github.com/fatih/color"

var (
	majorTint = color.New(color.FgYellow, color.Bold)
	minorTint = color.New(color.FgGreen, color.Bold)
	patchTint = color.New(color.FgBlue, color.Bold)
)

// Build metadata, stamped through -ldflags at release time. The defaults mark
// a development build.
var (
	// Version is the semantic version, each segment tinted so the banner
	// stands out on a terminal.
	Version = majorTint.Sprint("0") + "." + minorTint.Sprint("1") + "." + patchTint.Sprint("0") + "-dev"

	// GitCommit and GitMessage identify the exact commit, when stamped.
	GitCommit  = ""
	GitMessage = ""

	// BuildDate is the ISO-8601 build timestamp, when stamped.
	BuildDate = ""
)
