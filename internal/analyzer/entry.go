package analyzer

import (
	"regexp"

	"github.com/jward/bough/internal/source"
)

// followingSigRe captures the trailing identifier of the first
// signature-shaped token run after a marker: optional modifier keyword,
// return-type-like token, name, opening parenthesis.
var followingSigRe = regexp.MustCompile(`\s*(?:` + sigKeywords + `)?\s+[\w.<>\[\]]+\s+([A-Za-z_]\w*)\s*\(`)

// DefaultAttribute is the annotation name the entry resolver looks for when
// the caller does not override it.
const DefaultAttribute = "CommandMethod"

// FindEntry locates the definition annotated with the target marker and
// returns the name of the function signature that immediately follows the
// annotation. Units are searched in order; the first match wins.
//
// Two marker forms resolve:
//
//	[<attribute>("<marker>")]      bracket-attribute grammars
//	<attribute-lowercased>:command <marker>    comment directive, any grammar
//
// The quoted argument comparison is a case-insensitive exact match. Returns
// ok=false if no unit carries the marker or no parsable signature follows it.
func FindEntry(units []*source.Unit, attribute, marker string) (Entry, bool) {
	if attribute == "" {
		attribute = DefaultAttribute
	}
	attrRe := regexp.MustCompile(`(?i)\[` + regexp.QuoteMeta(attribute) + `\s*\(\s*"` + regexp.QuoteMeta(marker) + `"[^\]]*\]`)
	directiveRe := regexp.MustCompile(`(?im)bough:command[ \t]+` + regexp.QuoteMeta(marker) + `[ \t]*$`)

	for _, u := range units {
		for _, re := range []*regexp.Regexp{attrRe, directiveRe} {
			loc := re.FindStringIndex(u.Text)
			if loc == nil {
				continue
			}
			if m := followingSigRe.FindStringSubmatch(u.Text[loc[1]:]); m != nil {
				return Entry{Name: m[1], Unit: u.Path}, true
			}
		}
	}
	return Entry{}, false
}
