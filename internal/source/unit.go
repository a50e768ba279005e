package source

import (
	"path/filepath"
	"strings"
)

// Unit is one source file's full text plus its identifying path. The text is
// loaded once by the Collector and treated as immutable afterwards.
type Unit struct {
	// Path identifies the unit: the file path relative to the collection
	// root, always forward-slashed.
	Path string
	// AbsPath is the on-disk location the text was read from.
	AbsPath string
	// Text is the complete file content.
	Text string
}

// Ext returns the unit's lowercased file extension, including the dot.
func (u *Unit) Ext() string {
	return strings.ToLower(filepath.Ext(u.Path))
}

// Name returns the unit's base file name.
func (u *Unit) Name() string {
	return filepath.Base(u.Path)
}
