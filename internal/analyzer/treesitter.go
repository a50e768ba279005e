package analyzer

import (
	"context"
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/bough/internal/source"
)

// definitionNodeTypes lists, per language, the node types that define a named
// function or method. Each carries its name in the "name" field.
var definitionNodeTypes = map[string]map[string]bool{
	"go": {
		"function_declaration": true,
		"method_declaration":   true,
	},
	"csharp": {
		"method_declaration":       true,
		"constructor_declaration":  true,
		"local_function_statement": true,
	},
	"python": {
		"function_definition": true,
	},
	"javascript": {
		"function_declaration":           true,
		"generator_function_declaration": true,
		"method_definition":              true,
	},
	"typescript": {
		"function_declaration":           true,
		"generator_function_declaration": true,
		"method_definition":              true,
	},
	"java": {
		"method_declaration":      true,
		"constructor_declaration": true,
	},
}

// callNodeTypes lists, per language, the node types that represent a call.
var callNodeTypes = map[string]string{
	"go":         "call_expression",
	"csharp":     "invocation_expression",
	"python":     "call",
	"javascript": "call_expression",
	"typescript": "call_expression",
	"java":       "method_invocation",
}

// TreeSitter is the precise analysis tier: real grammars behind the same
// interface as the heuristic tier, so the closure builder is unaffected by
// which one runs. Units whose language has no bundled grammar fall back to
// the heuristic tier.
type TreeSitter struct {
	fallback *Heuristic

	// Parsers are not safe for concurrent use; one guarded parser per
	// language is plenty at this tool's scale.
	mu      sync.Mutex
	parsers map[string]*sitter.Parser
}

// NewTreeSitter returns the precise analysis tier.
func NewTreeSitter() *TreeSitter {
	return &TreeSitter{
		fallback: NewHeuristic(),
		parsers:  make(map[string]*sitter.Parser),
	}
}

// Name implements Analyzer.
func (*TreeSitter) Name() string { return "tree-sitter" }

// parse parses content with the grammar for lang. Returns (nil, nil) when no
// grammar is bundled for the language.
func (t *TreeSitter) parse(ctx context.Context, lang string, content []byte) (*sitter.Tree, error) {
	grammar, ok := GrammarForLanguage(lang)
	if !ok {
		return nil, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	parser, ok := t.parsers[lang]
	if !ok {
		parser = sitter.NewParser()
		parser.SetLanguage(grammar)
		t.parsers[lang] = parser
	}

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", lang, err)
	}
	return tree, nil
}

// unitLanguage resolves a unit's language, or "" when unmapped.
func unitLanguage(u *source.Unit) string {
	lang, _ := LanguageForExt(u.Ext())
	return lang
}

// Definitions implements Analyzer by walking the syntax tree for definition
// nodes and capturing their name fields.
func (t *TreeSitter) Definitions(ctx context.Context, u *source.Unit) ([]string, error) {
	lang := unitLanguage(u)
	content := []byte(u.Text)
	tree, err := t.parse(ctx, lang, content)
	if err != nil {
		return nil, err
	}
	if tree == nil {
		return t.fallback.Definitions(ctx, u)
	}
	defer tree.Close()

	defTypes := definitionNodeTypes[lang]
	var names []string
	walk(tree.RootNode(), func(n *sitter.Node) {
		if !defTypes[n.Type()] {
			return
		}
		if nameNode := n.ChildByFieldName("name"); nameNode != nil {
			names = append(names, nameNode.Content(content))
		}
	})
	return names, nil
}

// Body implements Analyzer: the exact byte span of the first definition node
// carrying the given name.
func (t *TreeSitter) Body(ctx context.Context, u *source.Unit, name string) (string, error) {
	lang := unitLanguage(u)
	content := []byte(u.Text)
	tree, err := t.parse(ctx, lang, content)
	if err != nil {
		return "", err
	}
	if tree == nil {
		return t.fallback.Body(ctx, u, name)
	}
	defer tree.Close()

	defTypes := definitionNodeTypes[lang]
	var body string
	walk(tree.RootNode(), func(n *sitter.Node) {
		if body != "" || !defTypes[n.Type()] {
			return
		}
		nameNode := n.ChildByFieldName("name")
		if nameNode != nil && nameNode.Content(content) == name {
			body = string(content[n.StartByte():n.EndByte()])
		}
	})
	return body, nil
}

// Calls implements Analyzer by parsing the body snippet with the unit's
// grammar and collecting callee names from call nodes. Tree-sitter is
// error-tolerant, so a bare method body still yields call nodes even though
// it is not a complete compilation unit.
func (t *TreeSitter) Calls(ctx context.Context, u *source.Unit, body string) ([]string, error) {
	lang := unitLanguage(u)
	content := []byte(body)
	tree, err := t.parse(ctx, lang, content)
	if err != nil {
		return nil, err
	}
	if tree == nil {
		return t.fallback.Calls(ctx, u, body)
	}
	defer tree.Close()

	callType := callNodeTypes[lang]
	seen := make(map[string]bool)
	var calls []string
	walk(tree.RootNode(), func(n *sitter.Node) {
		if n.Type() != callType {
			return
		}
		name := calleeName(lang, n, content)
		if name != "" && !seen[name] {
			seen[name] = true
			calls = append(calls, name)
		}
	})
	return calls, nil
}

// calleeName digs the called function's identifier out of a call node.
// Member accesses resolve to their final segment, matching the index's
// bare-name keys.
func calleeName(lang string, n *sitter.Node, content []byte) string {
	// Java's method_invocation puts the name directly on the call node.
	if lang == "java" {
		if nameNode := n.ChildByFieldName("name"); nameNode != nil {
			return nameNode.Content(content)
		}
		return ""
	}

	fn := n.ChildByFieldName("function")
	if fn == nil {
		return ""
	}
	switch fn.Type() {
	case "identifier", "type_identifier":
		return fn.Content(content)
	}
	// Member/selector expressions: try the grammar-specific name fields.
	for _, field := range []string{"name", "field", "property", "attribute"} {
		if nameNode := fn.ChildByFieldName(field); nameNode != nil {
			return nameNode.Content(content)
		}
	}
	return ""
}

// walk visits every node in the tree in document order.
func walk(n *sitter.Node, visit func(*sitter.Node)) {
	visit(n)
	for i := 0; i < int(n.ChildCount()); i++ {
		walk(n.Child(i), visit)
	}
}
