package treesitter

import (
	"errors"
	"testing"
)

func TestRegistry_ForPath(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		path string
		want string
	}{
		{"src/app.ts", "typescript"},
		{"src/APP.TS", "typescript"},
		{"src/view.tsx", "tsx"},
		{"legacy/widget.jsx", "tsx"},
		{"scripts/build.mjs", "typescript"},
		{"README.md", "typescript"},
	}
	for _, tt := range tests {
		if got := r.ForPath(tt.path).Name(); got != tt.want {
			t.Errorf("ForPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}

	exts := r.Extensions()
	if len(exts) == 0 || exts[0] != ".cjs" {
		t.Errorf("expected sorted extensions starting with .cjs, got %v", exts)
	}
}

func TestParse_DecoratorsAndGenerics(t *testing.T) {
	src := []byte(`import { Controller, Get } from '@nestjs/common';

@Controller('users')
export class UsersController<T extends object> {
  constructor(private readonly svc: UsersService<T>) {}

  @Get()
  findAll(): Promise<T[]> {
    return this.svc.all<T>();
  }
}
`)
	tree, err := Parse(NewRegistry().ForPath("users.controller.ts"), src)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	defer tree.Close()

	root := tree.Root()
	if root.Kind() != "program" {
		t.Errorf("expected program root, got %q", root.Kind())
	}
	if root.NamedChildCount() < 2 {
		t.Errorf("expected import and class at top level, got %d children", root.NamedChildCount())
	}
	first := root.NamedChild(0)
	if first.Kind() != "import_statement" {
		t.Errorf("expected import_statement first, got %q", first.Kind())
	}
	if first.StartLine() != 1 || first.StartColumn() != 1 {
		t.Errorf("expected import at 1:1, got %d:%d", first.StartLine(), first.StartColumn())
	}
	if src := first.ChildByFieldName("source"); src.Text() != "'@nestjs/common'" {
		t.Errorf("unexpected source text %q", src.Text())
	}
}

func TestParse_TSX(t *testing.T) {
	src := []byte(`export const App = () => <div className="app">hello</div>;
`)
	r := NewRegistry()
	tree, err := Parse(r.ForPath("App.tsx"), src)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	tree.Close()
}

func TestParse_SyntaxError(t *testing.T) {
	src := []byte(`export class Broken {
  method( {
    return 1
}
`)
	tree, err := Parse(NewRegistry().ForPath("broken.ts"), src)
	if err == nil {
		tree.Close()
		t.Fatal("expected parse error")
	}

	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %T: %v", err, err)
	}
	if perr.Line < 1 || perr.Column < 1 {
		t.Errorf("expected 1-based location, got %d:%d", perr.Line, perr.Column)
	}
	if perr.Description == "" {
		t.Error("expected a description")
	}
}

func TestNode_NullIsSafe(t *testing.T) {
	var n Node
	if !n.IsNull() {
		t.Error("zero node should be null")
	}
	if n.Kind() != "" || n.Text() != "" {
		t.Error("null node should have empty kind and text")
	}
	if n.ChildCount() != 0 || n.NamedChildCount() != 0 {
		t.Error("null node should have no children")
	}
	if !n.Child(0).IsNull() || !n.ChildByFieldName("name").IsNull() || !n.Parent().IsNull() {
		t.Error("null node navigation should return null nodes")
	}
	if n.StartLine() != 0 || n.EndLine() != 0 || n.StartColumn() != 0 {
		t.Error("null node should report zero positions")
	}
}

func TestParseError_Message(t *testing.T) {
	err := &ParseError{Line: 3, Column: 7, Description: "missing }"}
	if got := err.Error(); got != "syntax error at 3:7: missing }" {
		t.Errorf("unexpected message %q", got)
	}
}
