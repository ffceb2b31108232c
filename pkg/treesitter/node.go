package treesitter

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Node wraps a tree-sitter node together with the source it was parsed from.
// The zero Node is null; all accessors are safe to call on it.
type Node struct {
	n   *sitter.Node
	src []byte
}

func (n Node) wrap(c *sitter.Node) Node {
	return Node{n: c, src: n.src}
}

// IsNull returns true if the node does not exist.
func (n Node) IsNull() bool { return n.n == nil }

// Kind returns the grammar node type, e.g. "import_statement".
func (n Node) Kind() string {
	if n.n == nil {
		return ""
	}
	return n.n.Kind()
}

// Text returns the node's source text.
func (n Node) Text() string {
	if n.n == nil {
		return ""
	}
	return n.n.Utf8Text(n.src)
}

// IsError reports whether the node is an ERROR node.
func (n Node) IsError() bool { return n.n != nil && n.n.IsError() }

// IsMissing reports whether the parser inserted the node to recover.
func (n Node) IsMissing() bool { return n.n != nil && n.n.IsMissing() }

// ChildCount returns the number of children, named and anonymous.
func (n Node) ChildCount() int {
	if n.n == nil {
		return 0
	}
	return int(n.n.ChildCount())
}

// Child returns the i-th child.
func (n Node) Child(i int) Node {
	if n.n == nil {
		return Node{}
	}
	return n.wrap(n.n.Child(uint(i)))
}

// NamedChildCount returns the number of named children.
func (n Node) NamedChildCount() int {
	if n.n == nil {
		return 0
	}
	return int(n.n.NamedChildCount())
}

// NamedChild returns the i-th named child.
func (n Node) NamedChild(i int) Node {
	if n.n == nil {
		return Node{}
	}
	return n.wrap(n.n.NamedChild(uint(i)))
}

// ChildByFieldName returns a child by its grammar field name. The result is
// null if the field is absent.
func (n Node) ChildByFieldName(name string) Node {
	if n.n == nil {
		return Node{}
	}
	return n.wrap(n.n.ChildByFieldName(name))
}

// Parent returns the parent node, or a null node at the root.
func (n Node) Parent() Node {
	if n.n == nil {
		return Node{}
	}
	return n.wrap(n.n.Parent())
}

// StartLine returns the 1-based line the node starts on.
func (n Node) StartLine() int {
	if n.n == nil {
		return 0
	}
	return int(n.n.StartPosition().Row) + 1
}

// StartColumn returns the 1-based byte column the node starts at.
func (n Node) StartColumn() int {
	if n.n == nil {
		return 0
	}
	return int(n.n.StartPosition().Column) + 1
}

// EndLine returns the 1-based line the node ends on.
func (n Node) EndLine() int {
	if n.n == nil {
		return 0
	}
	return int(n.n.EndPosition().Row) + 1
}
