package bough

import "errors"

// Fatal pipeline conditions. Each stops the run at the stage that detects it;
// no partial report is ever produced. Callers match with errors.Is.
var (
	// ErrNoSources means the source tree yielded zero matching units.
	ErrNoSources = errors.New("no matching source files found")

	// ErrEntryNotFound means no unit carries the target marker, or one
	// does but no parsable signature follows it.
	ErrEntryNotFound = errors.New("entry marker not found")

	// ErrEntryBodyNotFound means the entry resolved but its body could not
	// be balance-extracted. Fatal in direct mode; full mode degrades to a
	// closure containing only the entry's unit.
	ErrEntryBodyNotFound = errors.New("entry function body not found")
)
