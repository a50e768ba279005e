package analyzer

import (
	"context"
	"strings"
	"testing"

	"github.com/jward/bough/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unit(path, text string) *source.Unit {
	return &source.Unit{Path: path, Text: text}
}

const csSample = `using System;

namespace Demo
{
    public class Commands
    {
        [CommandMethod("RUN_ALL")]
        public void Foo()
        {
            Bar();
            Baz(1, 2);
        }

        private static int Bar()
        {
            return Qux();
        }

        internal async Task Baz(int a, int b)
        {
            await Bar();
        }
    }
}
`

func TestHeuristic_Definitions(t *testing.T) {
	h := NewHeuristic()
	names, err := h.Definitions(context.Background(), unit("a.cs", csSample))
	require.NoError(t, err)
	assert.Equal(t, []string{"Foo", "Bar", "Baz"}, names)
}

func TestHeuristic_Definitions_GoAndScriptKeywords(t *testing.T) {
	text := "func Alpha() {\n}\n\nfn Beta() {\n}\n\nfunction Gamma() {\n}\n"
	h := NewHeuristic()
	names, err := h.Definitions(context.Background(), unit("a.src", text))
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "Beta", "Gamma"}, names)
}

func TestHeuristic_Definitions_SkipsMultiLineSignature(t *testing.T) {
	// The anchored pattern keeps name and parameter list on one line;
	// signatures wrapped across lines are invisible to this tier.
	text := "public void Wrapped(\n    int a)\n{\n}\n"
	h := NewHeuristic()
	names, err := h.Definitions(context.Background(), unit("a.cs", text))
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestHeuristic_Body_SpansNestedBraces(t *testing.T) {
	h := NewHeuristic()
	body, err := h.Body(context.Background(), unit("a.cs", csSample), "Foo")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(body, "public void Foo()"), "body should begin at the signature start, got %q", body)
	assert.True(t, strings.HasSuffix(body, "}"))
	assert.Contains(t, body, "Bar();")
	assert.Contains(t, body, "Baz(1, 2);")
	assert.NotContains(t, body, "return Qux()")
}

func TestHeuristic_Body_NestedBlocks(t *testing.T) {
	text := "public void Outer() {\n    if (x) {\n        while (y) {\n            Inner();\n        }\n    }\n}\nstatic void After() {\n}\n"
	h := NewHeuristic()
	body, err := h.Body(context.Background(), unit("a.cs", text), "Outer")
	require.NoError(t, err)
	assert.Contains(t, body, "Inner();")
	assert.True(t, strings.HasSuffix(body, "}"))
	assert.NotContains(t, body, "After")
}

func TestHeuristic_Body_AllmanBraces(t *testing.T) {
	text := "public void Foo()\n{\n    Bar();\n}\n"
	h := NewHeuristic()
	body, err := h.Body(context.Background(), unit("a.cs", text), "Foo")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(body, "public void Foo()"))
	assert.Contains(t, body, "Bar();")
}

func TestHeuristic_Body_UnbalancedReturnsEmpty(t *testing.T) {
	text := "public void Broken() {\n    if (x) {\n        Bar();\n"
	h := NewHeuristic()
	body, err := h.Body(context.Background(), unit("a.cs", text), "Broken")
	require.NoError(t, err)
	assert.Empty(t, body, "truncated input must yield no span, not a partial one")
}

func TestHeuristic_Body_UnknownNameReturnsEmpty(t *testing.T) {
	h := NewHeuristic()
	body, err := h.Body(context.Background(), unit("a.cs", csSample), "Missing")
	require.NoError(t, err)
	assert.Empty(t, body)
}

func TestHeuristic_Body_GoFunc(t *testing.T) {
	text := "package p\n\nfunc Handle() {\n\tEmit()\n}\n"
	h := NewHeuristic()
	body, err := h.Body(context.Background(), unit("a.go", text), "Handle")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(body, "func Handle()"))
	assert.Contains(t, body, "Emit()")
}

func TestHeuristic_Calls_DistinctFirstSeenOrder(t *testing.T) {
	body := "public void Foo() {\n    Bar();\n    Baz(Qux());\n    Bar();\n    lower();\n}"
	h := NewHeuristic()
	calls, err := h.Calls(context.Background(), nil, body)
	require.NoError(t, err)
	assert.Equal(t, []string{"Foo", "Bar", "Baz", "Qux"}, calls)
}

func TestHeuristic_Calls_WhitespaceBeforeParen(t *testing.T) {
	calls := scanCalls("Alpha ()\nBeta\t(1)\nGamma.x")
	assert.Equal(t, []string{"Alpha", "Beta"}, calls)
}

func TestHeuristic_Calls_LowercaseIgnored(t *testing.T) {
	calls := scanCalls("foo();\nbar(Baz);")
	assert.Empty(t, calls, "Baz is not followed by a parenthesis and lowercase names never match")
}
