// Package scan walks TypeScript syntax trees and extracts the facts the rule
// engine consumes: module imports and function-like constructs.
package scan

import (
	"github.com/efebarandurmaz/archlint/pkg/treesitter"
)

// Import is one static module reference, located at the start of the
// declaration (or require call) that introduced it.
type Import struct {
	Path   string `json:"path"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

// Imports returns every static import in source order:
//
//	import { a } from "x"      import "x"      import a = require("x")
//	export * from "x"          const a = require("x")
//
// Only literal string specifiers count. import("x") expressions, template
// strings, and computed require arguments are skipped.
func Imports(root treesitter.Node) []Import {
	var out []Import
	walkImports(root, &out)
	return out
}

func walkImports(n treesitter.Node, out *[]Import) {
	switch n.Kind() {
	case "import_statement":
		src := n.ChildByFieldName("source")
		if src.IsNull() {
			src = requireClauseSource(n)
		}
		if path, ok := stringLiteral(src); ok {
			*out = append(*out, Import{Path: path, Line: n.StartLine(), Column: n.StartColumn()})
		}
		return
	case "export_statement":
		if path, ok := stringLiteral(n.ChildByFieldName("source")); ok {
			*out = append(*out, Import{Path: path, Line: n.StartLine(), Column: n.StartColumn()})
		}
	case "call_expression":
		if path, ok := requireCall(n); ok {
			*out = append(*out, Import{Path: path, Line: n.StartLine(), Column: n.StartColumn()})
		}
	}

	for i := 0; i < n.NamedChildCount(); i++ {
		walkImports(n.NamedChild(i), out)
	}
}

// requireClauseSource finds the string in `import a = require("x")`.
func requireClauseSource(stmt treesitter.Node) treesitter.Node {
	for i := 0; i < stmt.NamedChildCount(); i++ {
		c := stmt.NamedChild(i)
		if c.Kind() != "import_require_clause" {
			continue
		}
		if src := c.ChildByFieldName("source"); !src.IsNull() {
			return src
		}
		for j := 0; j < c.NamedChildCount(); j++ {
			if s := c.NamedChild(j); s.Kind() == "string" {
				return s
			}
		}
	}
	return treesitter.Node{}
}

func requireCall(call treesitter.Node) (string, bool) {
	fn := call.ChildByFieldName("function")
	if fn.Kind() != "identifier" || fn.Text() != "require" {
		return "", false
	}
	args := call.ChildByFieldName("arguments")
	if args.NamedChildCount() != 1 {
		return "", false
	}
	return stringLiteral(args.NamedChild(0))
}

// stringLiteral returns the contents of a quoted string node without the
// quotes. Escape sequences are kept as written.
func stringLiteral(n treesitter.Node) (string, bool) {
	if n.Kind() != "string" {
		return "", false
	}
	text := n.Text()
	if len(text) < 2 {
		return "", false
	}
	return text[1 : len(text)-1], true
}
