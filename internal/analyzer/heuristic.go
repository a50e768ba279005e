package analyzer

import (
	"context"
	"regexp"

	"github.com/jward/bough/internal/source"
)

// sigKeywords are the access/modifier keywords that open a definition
// signature. The extra function keywords let brace-delimited non-C# trees
// index under this tier.
const sigKeywords = `public|private|internal|protected|static|async|override|sealed|partial|func|fn|function`

var (
	// definitionRe matches a single-line definition signature anchored at
	// line start: modifier keyword, return-type-ish run, name, parameter
	// list, opening brace. Signatures split across lines are not matched.
	definitionRe = regexp.MustCompile(`(?m)^\s*(?:` + sigKeywords + `)\s+.*?([A-Za-z_]\w*)\s*\(.*?\)\s*\{`)

	// callRe matches a capitalized identifier followed, after whitespace
	// only, by an opening parenthesis. A pure lexical pass: type casts and
	// constructors shaped like calls match too.
	callRe = regexp.MustCompile(`\b([A-Z][A-Za-z0-9_]*)\s*\(`)
)

// Heuristic is the default analysis tier: regex signature matching plus
// delimiter-balance body extraction. It has no notion of scope, comments, or
// string literals; a brace inside a literal skews the balance count and the
// extraction then returns empty rather than a partial span.
type Heuristic struct{}

// NewHeuristic returns the heuristic analysis tier.
func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

// Name implements Analyzer.
func (*Heuristic) Name() string { return "heuristic" }

// Definitions implements Analyzer using the anchored signature pattern.
func (*Heuristic) Definitions(_ context.Context, u *source.Unit) ([]string, error) {
	var names []string
	for _, m := range definitionRe.FindAllStringSubmatch(u.Text, -1) {
		names = append(names, m[1])
	}
	return names, nil
}

// Body implements Analyzer. The signature is searched non-anchored this
// time, allowing any run of inline modifiers before the return-type token,
// so the span begins exactly at the signature start. From the character
// after the signature's opening brace a depth counter starting at 1 is
// walked forward; the span from signature start through the brace that
// returns the depth to 0 is the body. If the text ends before the depth
// balances, the result is empty rather than a partial span.
func (*Heuristic) Body(_ context.Context, u *source.Unit, name string) (string, error) {
	return balancedBody(u.Text, name), nil
}

func balancedBody(text, name string) string {
	sig := regexp.MustCompile(`(?:(?:` + sigKeywords + `)\s+)*[\w.<>\[\]]+\s+` + regexp.QuoteMeta(name) + `\s*\((?s:.*?)\)\s*\{`)
	loc := sig.FindStringIndex(text)
	if loc == nil {
		return ""
	}

	depth := 1
	for i := loc[1]; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
		}
		if depth == 0 {
			return text[loc[0] : i+1]
		}
	}
	return ""
}

// Calls implements Analyzer: every distinct capitalized identifier
// immediately followed by an opening parenthesis, in first-seen order.
func (*Heuristic) Calls(_ context.Context, _ *source.Unit, body string) ([]string, error) {
	return scanCalls(body), nil
}

func scanCalls(body string) []string {
	seen := make(map[string]bool)
	var calls []string
	for _, m := range callRe.FindAllStringSubmatch(body, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			calls = append(calls, m[1])
		}
	}
	return calls
}
