// Package bough extracts the branch of a codebase that a single command
// actually touches. Given a source tree and a target marker (a command name
// registered via an annotation such as [CommandMethod("EMBEDIMAGES")]), it
// finds the annotated entry function, follows the functions it calls within
// the project, and assembles a minimal ordered bundle of the relevant code
// ready to paste elsewhere.
//
// # Pipeline
//
// A bundle run is a single linear pass:
//
//  1. Collect: load every matching source file under the root into memory.
//  2. Index: scan each file for definition signatures, building a
//     name → owning-file map (first definition wins on collision).
//  3. Resolve: find the unit carrying the target marker and capture the
//     name of the signature that follows it.
//  4. Close: walk the call relation from the entry, transitively in full
//     mode or one level in direct mode, keeping only names the index knows.
//  5. Render: emit a manifest plus per-file fenced sections.
//
// # Analysis tiers
//
// The default tier is heuristic: regex signature matching, brace-balance
// body extraction, and a lexical call scan. It is not a parser: it has no
// notion of scope, overloads, or literals containing braces, and it accepts
// false positives and negatives as the price of being fast and nearly
// language-agnostic. A precise tier built on tree-sitter grammars can be
// swapped in behind the same interface for Go, C#, Python, JavaScript,
// TypeScript, and Java.
//
// # Usage
//
//	e, err := bough.New("path/to/project")
//	if err != nil { ... }
//	defer e.Close()
//
//	b, err := e.Bundle(context.Background(), "EMBEDIMAGES", bough.ModeFull)
//	if err != nil { ... }
//	fmt.Print(b.Render(bough.RenderOptions{}))
package bough
