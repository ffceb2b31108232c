package treesitter

import (
	"fmt"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// ParseError reports the first syntax error tree-sitter recovered from.
// Line and Column are 1-based.
type ParseError struct {
	Line        int
	Column      int
	Description string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("syntax error at %d:%d: %s", e.Line, e.Column, e.Description)
}

// Tree is a parsed source file. Close it when done.
type Tree struct {
	tree   *sitter.Tree
	source []byte
}

// Parse parses source with the given grammar.
//
// Tree-sitter always produces a tree, inserting ERROR and MISSING nodes where
// the input does not fit the grammar. Any such node makes Parse fail with a
// *ParseError located at the first one in source order.
func Parse(g *Grammar, source []byte) (*Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(g.lang); err != nil {
		return nil, fmt.Errorf("set language %s: %w", g.name, err)
	}

	// The parser keeps a reference to the buffer while the tree is alive.
	buf := make([]byte, len(source))
	copy(buf, source)

	tree := parser.Parse(buf, nil)
	if tree == nil {
		return nil, fmt.Errorf("parse %s: parser returned no tree", g.name)
	}

	t := &Tree{tree: tree, source: buf}
	root := t.Root()
	if root.n.HasError() {
		perr := firstError(root)
		t.Close()
		return nil, perr
	}
	return t, nil
}

// Root returns the root node of the tree.
func (t *Tree) Root() Node {
	return Node{n: t.tree.RootNode(), src: t.source}
}

// Source returns the parsed bytes.
func (t *Tree) Source() []byte { return t.source }

// Close releases the underlying tree.
func (t *Tree) Close() {
	if t.tree != nil {
		t.tree.Close()
		t.tree = nil
	}
}

func firstError(root Node) *ParseError {
	var found *ParseError
	var visit func(n Node) bool
	visit = func(n Node) bool {
		if n.IsMissing() {
			found = &ParseError{
				Line:        n.StartLine(),
				Column:      n.StartColumn(),
				Description: fmt.Sprintf("missing %s", n.Kind()),
			}
			return true
		}
		if n.IsError() {
			found = &ParseError{
				Line:        n.StartLine(),
				Column:      n.StartColumn(),
				Description: fmt.Sprintf("unexpected %s", snippet(n.Text())),
			}
			return true
		}
		if !n.n.HasError() {
			return false
		}
		for i := 0; i < n.ChildCount(); i++ {
			if visit(n.Child(i)) {
				return true
			}
		}
		return false
	}
	visit(root)

	if found == nil {
		found = &ParseError{Line: root.StartLine(), Column: root.StartColumn(), Description: "invalid syntax"}
	}
	return found
}

func snippet(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	const max = 40
	if len(s) > max {
		s = s[:max] + "..."
	}
	if s == "" {
		return "input"
	}
	return fmt.Sprintf("%q", s)
}
