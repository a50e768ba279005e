// Package analyzer locates function definitions, extracts their textual
// bodies, and spots call-shaped identifiers inside them. It is deliberately
// not a compiler front-end: the default tier works on lexical shape alone and
// accepts false positives and negatives in exchange for speed and language
// independence. A precise tree-sitter tier sits behind the same interface for
// grammars it understands.
package analyzer

import (
	"context"

	"github.com/jward/bough/internal/source"
)

// Analyzer is the analysis tier the closure builder drives. Implementations
// are best-effort: a name that cannot be found yields an empty result, never
// an error. Errors are reserved for machinery failures such as a parse that
// cannot run at all.
type Analyzer interface {
	// Name identifies the tier (used to fingerprint cached indexes).
	Name() string

	// Definitions returns the function names defined in the unit, in order
	// of appearance. Later duplicates of a name already seen by the caller
	// are its concern; Definitions reports every occurrence.
	Definitions(ctx context.Context, u *source.Unit) ([]string, error)

	// Body returns the full definition text of the named function,
	// signature start through the matching close delimiter, or "" if the
	// definition cannot be located or its delimiters never balance.
	Body(ctx context.Context, u *source.Unit, name string) (string, error)

	// Calls returns the distinct identifiers in body that look like call
	// sites, in first-seen order. The unit supplies language context; the
	// heuristic tier ignores it.
	Calls(ctx context.Context, u *source.Unit, body string) ([]string, error)
}

// Entry is a resolved entry point: the function named by a target marker and
// the unit that defines it.
type Entry struct {
	Name string
	Unit string
}
