package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func paths(units []*Unit) []string {
	out := make([]string, len(units))
	for i, u := range units {
		out[i] = u.Path
	}
	return out
}

func TestCollect_FiltersByExtension(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.cs":       "class A {}",
		"notes.txt":  "not source",
		"sub/b.cs":   "class B {}",
		"sub/c.json": "{}",
	})

	units, err := Collect(root, []string{".cs"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.cs", "sub/b.cs"}, paths(units))
}

func TestCollect_CaseInsensitiveExtensions(t *testing.T) {
	root := writeTree(t, map[string]string{"A.CS": "class A {}"})

	units, err := Collect(root, []string{".cs"})
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, "A.CS", units[0].Path)
}

func TestCollect_SortedByRelativePath(t *testing.T) {
	root := writeTree(t, map[string]string{
		"z.cs":     "",
		"a.cs":     "",
		"mid/m.cs": "",
	})

	units, err := Collect(root, []string{".cs"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.cs", "mid/m.cs", "z.cs"}, paths(units))
}

func TestCollect_SkipsHiddenAndBuildDirs(t *testing.T) {
	root := writeTree(t, map[string]string{
		"keep.cs":               "class K {}",
		".git/blob.cs":          "not source",
		".cache/x.cs":           "not source",
		"node_modules/dep.cs":   "not source",
		"obj/generated.cs":      "not source",
		"bin/out.cs":            "not source",
		"vendor/third.cs":       "not source",
		"__pycache__/cached.cs": "not source",
	})

	units, err := Collect(root, []string{".cs"})
	require.NoError(t, err)
	assert.Equal(t, []string{"keep.cs"}, paths(units))
}

func TestCollect_SkipsHiddenFiles(t *testing.T) {
	root := writeTree(t, map[string]string{
		"keep.cs":    "class K {}",
		".hidden.cs": "not listed",
	})

	units, err := Collect(root, []string{".cs"})
	require.NoError(t, err)
	assert.Equal(t, []string{"keep.cs"}, paths(units))
}

func TestCollect_LoadsContent(t *testing.T) {
	root := writeTree(t, map[string]string{"a.cs": "public void Foo() { }"})

	units, err := Collect(root, []string{".cs"})
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, "public void Foo() { }", units[0].Text)
	assert.Equal(t, filepath.Join(root, "a.cs"), units[0].AbsPath)
}

func TestCollect_EmptyTree(t *testing.T) {
	units, err := Collect(t.TempDir(), []string{".cs"})
	require.NoError(t, err)
	assert.Empty(t, units)
}

func TestUnit_ExtAndName(t *testing.T) {
	u := &Unit{Path: "sub/Program.CS"}
	assert.Equal(t, ".cs", u.Ext())
	assert.Equal(t, "Program.CS", u.Name())
}
