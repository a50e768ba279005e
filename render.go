package bough

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// RenderOptions tunes report rendering.
type RenderOptions struct {
	// OrderHint lists unit names to place first, in the given order.
	// Entries match a unit's relative path or its base name. Units not
	// listed follow, alphabetically by path (case-insensitive).
	OrderHint []string
}

const timestampLayout = "2006-01-02T15:04:05"

// Render serializes the bundle into the report text: a manifest header
// followed by one delimited, fenced section per included unit. Full mode
// emits whole file texts; direct mode emits the selected function bodies
// separated by blank lines. Output is deterministic for a fixed bundle and
// order hint.
func (b *Bundle) Render(opts RenderOptions) string {
	files := orderFiles(b.Files, opts.OrderHint)

	var sb strings.Builder
	switch b.Mode {
	case ModeDirect:
		fmt.Fprintf(&sb, "# Report for command %q and its direct dependencies\n", b.Marker)
	default:
		fmt.Fprintf(&sb, "# Bundled project files for command: %s and its dependencies\n", b.Marker)
	}
	fmt.Fprintf(&sb, "# Generated: %s\n", b.GeneratedAt.Format(timestampLayout))
	fmt.Fprintf(&sb, "# Directory: %s\n", b.Root)
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "## File list (%d file(s) included):\n", len(files))
	for _, f := range files {
		fmt.Fprintf(&sb, "- %s\n", f.Path)
	}
	sb.WriteString("\n")

	switch b.Mode {
	case ModeDirect:
		sb.WriteString("## This report contains the entry function and the project functions it directly calls.\n\n")
	default:
		sb.WriteString("# INSTRUCTION:\n")
		sb.WriteString("# Return full drop-in replacements only for the files you modify.\n\n")
	}

	for _, f := range files {
		if b.Mode == ModeDirect {
			fmt.Fprintf(&sb, "===== BEGIN FUNCTIONS FROM: %s =====\n", f.Path)
		} else {
			fmt.Fprintf(&sb, "===== BEGIN %s =====\n", f.Path)
		}
		fmt.Fprintf(&sb, "```%s\n", f.Language)
		if b.Mode == ModeDirect {
			sb.WriteString(strings.Join(f.Bodies, "\n\n"))
			sb.WriteString("\n")
		} else {
			sb.WriteString(strings.TrimRight(f.FullText, " \t\r\n"))
			sb.WriteString("\n")
		}
		sb.WriteString("```\n")
		fmt.Fprintf(&sb, "===== END %s =====\n\n", f.Path)
	}

	return sb.String()
}

// orderFiles applies the priority ordering: hinted names first in hint order,
// then the rest alphabetically by path, case-insensitive. The sort is stable,
// so a fixed hint and file set always yield identical ordering.
func orderFiles(files []BundleFile, hint []string) []BundleFile {
	rank := make(map[string]int, len(hint))
	for i, name := range hint {
		rank[name] = i
	}
	hintRank := func(f BundleFile) int {
		if r, ok := rank[f.Path]; ok {
			return r
		}
		if r, ok := rank[filepath.Base(f.Path)]; ok {
			return r
		}
		return len(hint) + 1
	}

	ordered := make([]BundleFile, len(files))
	copy(ordered, files)
	sort.SliceStable(ordered, func(i, j int) bool {
		ri, rj := hintRank(ordered[i]), hintRank(ordered[j])
		if ri != rj {
			return ri < rj
		}
		return strings.ToLower(ordered[i].Path) < strings.ToLower(ordered[j].Path)
	})
	return ordered
}
