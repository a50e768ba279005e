package analyzer

import (
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	ts "github.com/smacker/go-tree-sitter/typescript/typescript"
)

// extToLanguage maps file extensions to canonical language names, which also
// serve as code-fence tags in rendered bundles.
var extToLanguage = map[string]string{
	".cs":   "csharp",
	".go":   "go",
	".ts":   "typescript",
	".tsx":  "typescript",
	".js":   "javascript",
	".jsx":  "javascript",
	".py":   "python",
	".java": "java",
}

// DefaultExtensions is the extension allow-list used when the caller supplies
// none. The original tool targeted C# trees; the rest cover the grammars the
// precise tier understands.
var DefaultExtensions = []string{".cs", ".go", ".ts", ".tsx", ".js", ".jsx", ".py", ".java"}

// langToGrammar maps language names to tree-sitter grammars, lazily
// initialized since grammar construction touches cgo.
var (
	langToGrammar map[string]*sitter.Language
	grammarsOnce  sync.Once
)

func initGrammars() {
	grammarsOnce.Do(func() {
		langToGrammar = map[string]*sitter.Language{
			"csharp":     csharp.GetLanguage(),
			"go":         golang.GetLanguage(),
			"typescript": ts.GetLanguage(),
			"javascript": javascript.GetLanguage(),
			"python":     python.GetLanguage(),
			"java":       java.GetLanguage(),
		}
	})
}

// LanguageForExt returns the canonical language name for a file extension
// (leading dot, lowercase). Returns ("", false) if the extension is unmapped.
func LanguageForExt(ext string) (string, bool) {
	lang, ok := extToLanguage[ext]
	return lang, ok
}

// GrammarForLanguage returns the tree-sitter grammar for a canonical language
// name. Returns (nil, false) if no grammar is bundled for it.
func GrammarForLanguage(lang string) (*sitter.Language, bool) {
	initGrammars()
	l, ok := langToGrammar[lang]
	return l, ok
}
