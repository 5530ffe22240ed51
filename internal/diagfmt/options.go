package diagfmt

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto shows paths as recorded in the results.
	PathModeAuto PathMode = iota
	// PathModeBasename strips directories from paths.
	PathModeBasename
)

// PrettyOpts configures pretty-printing of check results.
type PrettyOpts struct {
	Color     bool
	PathMode  PathMode
	Width     int // maximum rendered line width, 0 = unlimited
	ShowNotes bool
	Quiet     bool // suppress per-file ok lines
}

// JSONOpts configures JSON output of check results.
type JSONOpts struct {
	PathMode     PathMode
	IncludeNotes bool
}

// ShortOpts configures one-line-per-diagnostic output of check results.
type ShortOpts struct {
	PathMode     PathMode
	IncludeNotes bool
}
