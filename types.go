package bough

import "time"

// Mode selects how far the closure builder follows the call relation.
type Mode int

const (
	// ModeFull includes every unit transitively reachable from the entry
	// function; each is rendered as its complete file text.
	ModeFull Mode = iota
	// ModeDirect includes only the entry function's body plus the bodies
	// of the project functions it calls directly.
	ModeDirect
)

// String returns the mode's CLI spelling.
func (m Mode) String() string {
	switch m {
	case ModeDirect:
		return "direct"
	default:
		return "full"
	}
}

// ParseMode converts a CLI spelling back to a Mode.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "full":
		return ModeFull, true
	case "direct":
		return ModeDirect, true
	}
	return ModeFull, false
}

// Bundle is the assembled result of one run: the selected units and, in
// direct mode, the selected function bodies within them.
type Bundle struct {
	Marker      string
	Mode        Mode
	Root        string
	EntryName   string
	EntryUnit   string
	GeneratedAt time.Time
	Files       []BundleFile
}

// BundleFile is one included unit. FullText carries the whole file in full
// mode; Bodies carries the selected function texts, deduplicated and sorted,
// in direct mode.
type BundleFile struct {
	Path     string
	Language string
	FullText string
	Bodies   []string
}
