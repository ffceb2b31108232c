package treesitter

import (
	"path/filepath"
	"sort"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// Grammar is a loaded tree-sitter language. Grammars are immutable and may be
// shared by any number of concurrent parses.
type Grammar struct {
	name string
	lang *sitter.Language
}

// Name returns the grammar name (e.g. "typescript", "tsx").
func (g *Grammar) Name() string { return g.name }

// Registry maps file extensions to grammars. It is filled once by NewRegistry
// and never written afterwards, so it can be passed to every file task.
type Registry struct {
	byExt    map[string]*Grammar
	fallback *Grammar
}

// NewRegistry loads the TypeScript family grammars.
//
// Plain TypeScript and JavaScript files use the TypeScript grammar, which
// accepts decorators and generics. Files that may contain JSX use the TSX
// grammar, since `<T>expr` casts and JSX elements cannot share one grammar.
func NewRegistry() *Registry {
	ts := &Grammar{name: "typescript", lang: sitter.NewLanguage(typescript.LanguageTypescript())}
	tsx := &Grammar{name: "tsx", lang: sitter.NewLanguage(typescript.LanguageTSX())}

	r := &Registry{
		byExt:    make(map[string]*Grammar),
		fallback: ts,
	}
	for _, ext := range []string{".ts", ".mts", ".cts", ".js", ".mjs", ".cjs"} {
		r.byExt[ext] = ts
	}
	for _, ext := range []string{".tsx", ".jsx"} {
		r.byExt[ext] = tsx
	}
	return r
}

// ForPath picks the grammar for a file by extension. Unknown extensions get
// the TypeScript grammar.
func (r *Registry) ForPath(path string) *Grammar {
	if g, ok := r.byExt[strings.ToLower(filepath.Ext(path))]; ok {
		return g
	}
	return r.fallback
}

// Extensions returns every registered extension, sorted.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
