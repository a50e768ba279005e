package bough

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBundle(mode Mode) *Bundle {
	b := &Bundle{
		Marker:      "BUNDLE",
		Mode:        mode,
		Root:        "/work/proj",
		EntryName:   "Foo",
		EntryUnit:   "A.cs",
		GeneratedAt: time.Date(2026, 8, 26, 9, 30, 0, 0, time.UTC),
	}
	switch mode {
	case ModeDirect:
		b.Files = []BundleFile{
			{Path: "A.cs", Language: "csharp", Bodies: []string{"public void Baz()\n{\n}", "public void Foo()\n{\n    Bar();\n}"}},
			{Path: "sub/B.cs", Language: "csharp", Bodies: []string{"public void Bar()\n{\n}"}},
		}
	default:
		b.Files = []BundleFile{
			{Path: "A.cs", Language: "csharp", FullText: "public void Foo()\n{\n}\n\n\n"},
			{Path: "sub/B.cs", Language: "csharp", FullText: "public void Bar()\n{\n}\n"},
		}
	}
	return b
}

func TestRender_FullMode(t *testing.T) {
	out := testBundle(ModeFull).Render(RenderOptions{})

	assert.True(t, strings.HasPrefix(out, "# Bundled project files for command: BUNDLE and its dependencies\n"))
	assert.Contains(t, out, "# Generated: 2026-08-26T09:30:00\n")
	assert.Contains(t, out, "# Directory: /work/proj\n")
	assert.Contains(t, out, "## File list (2 file(s) included):\n- A.cs\n- sub/B.cs\n")
	assert.Contains(t, out, "# INSTRUCTION:\n# Return full drop-in replacements only for the files you modify.\n")

	assert.Contains(t, out, "===== BEGIN A.cs =====\n```csharp\npublic void Foo()\n{\n}\n```\n===== END A.cs =====\n")
	assert.Contains(t, out, "===== BEGIN sub/B.cs =====\n")
	assert.NotContains(t, out, "FUNCTIONS FROM")
}

func TestRender_FullMode_TrimsTrailingWhitespace(t *testing.T) {
	out := testBundle(ModeFull).Render(RenderOptions{})
	assert.Contains(t, out, "public void Foo()\n{\n}\n```", "trailing blank lines collapse before the closing fence")
}

func TestRender_DirectMode(t *testing.T) {
	out := testBundle(ModeDirect).Render(RenderOptions{})

	assert.True(t, strings.HasPrefix(out, "# Report for command \"BUNDLE\" and its direct dependencies\n"))
	assert.Contains(t, out, "## This report contains the entry function and the project functions it directly calls.\n")
	assert.Contains(t, out, "===== BEGIN FUNCTIONS FROM: A.cs =====\n")
	assert.Contains(t, out, "public void Baz()\n{\n}\n\npublic void Foo()\n{\n    Bar();\n}\n```", "bodies from one unit are blank-line separated inside a single fence")
	assert.Contains(t, out, "===== END sub/B.cs =====\n")
	assert.NotContains(t, out, "# INSTRUCTION:")
}

func TestRender_Deterministic(t *testing.T) {
	b := testBundle(ModeFull)
	assert.Equal(t, b.Render(RenderOptions{}), b.Render(RenderOptions{}))
}

func TestOrderFiles_HintFirstThenAlpha(t *testing.T) {
	files := []BundleFile{
		{Path: "z/last.cs"},
		{Path: "Main.cs"},
		{Path: "a/first.cs"},
		{Path: "util/Helpers.cs"},
	}
	ordered := orderFiles(files, []string{"Helpers.cs", "Main.cs"})

	got := make([]string, len(ordered))
	for i, f := range ordered {
		got[i] = f.Path
	}
	assert.Equal(t, []string{"util/Helpers.cs", "Main.cs", "a/first.cs", "z/last.cs"}, got)
}

func TestOrderFiles_HintMatchesFullPath(t *testing.T) {
	files := []BundleFile{
		{Path: "a.cs"},
		{Path: "sub/b.cs"},
	}
	ordered := orderFiles(files, []string{"sub/b.cs"})
	require.Len(t, ordered, 2)
	assert.Equal(t, "sub/b.cs", ordered[0].Path)
}

func TestOrderFiles_NoHintIsCaseInsensitiveAlpha(t *testing.T) {
	files := []BundleFile{
		{Path: "Zeta.cs"},
		{Path: "alpha.cs"},
		{Path: "Beta.cs"},
	}
	ordered := orderFiles(files, nil)

	got := make([]string, len(ordered))
	for i, f := range ordered {
		got[i] = f.Path
	}
	assert.Equal(t, []string{"alpha.cs", "Beta.cs", "Zeta.cs"}, got)
}
