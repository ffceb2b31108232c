package scan

import (
	"github.com/efebarandurmaz/archlint/pkg/treesitter"
)

// FunctionKind classifies function-like constructs.
type FunctionKind string

const (
	KindFunction    FunctionKind = "function"
	KindMethod      FunctionKind = "method"
	KindConstructor FunctionKind = "constructor"
	KindArrow       FunctionKind = "arrow function"
)

// Anonymous is the name given to constructs with no binding.
const Anonymous = "<anonymous>"

// Function is one function-like construct and the lines it occupies.
type Function struct {
	Name    string       `json:"name"`
	Kind    FunctionKind `json:"kind"`
	Line    int          `json:"line"`
	Column  int          `json:"column"`
	EndLine int          `json:"end_line"`
}

// Span is the number of lines the construct covers, inclusive.
func (f Function) Span() int {
	return f.EndLine - f.Line + 1
}

// Functions returns every function declaration, function expression, arrow
// function and method in source order. Nested constructs are reported in
// addition to their enclosing function.
func Functions(root treesitter.Node) []Function {
	var out []Function
	walkFunctions(root, &out)
	return out
}

func walkFunctions(n treesitter.Node, out *[]Function) {
	if kind, ok := functionKind(n); ok {
		start := startAfterDecorators(n)
		name := functionName(n)
		if kind == KindMethod && name == "constructor" {
			kind = KindConstructor
		}
		*out = append(*out, Function{
			Name:    name,
			Kind:    kind,
			Line:    start.StartLine(),
			Column:  start.StartColumn(),
			EndLine: n.EndLine(),
		})
	}

	for i := 0; i < n.NamedChildCount(); i++ {
		walkFunctions(n.NamedChild(i), out)
	}
}

func functionKind(n treesitter.Node) (FunctionKind, bool) {
	switch n.Kind() {
	case "function_declaration", "generator_function_declaration",
		"function_expression", "function", "generator_function":
		return KindFunction, true
	case "method_definition":
		return KindMethod, true
	case "arrow_function":
		return KindArrow, true
	}
	return "", false
}

// startAfterDecorators skips decorators attached to the construct so that
// `@Get()` lines do not count towards a method's length.
func startAfterDecorators(n treesitter.Node) treesitter.Node {
	for i := 0; i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c.Kind() != "decorator" {
			return c
		}
	}
	return n
}

func functionName(n treesitter.Node) string {
	if name := n.ChildByFieldName("name"); !name.IsNull() {
		return name.Text()
	}
	return bindingName(n)
}

// bindingName names an anonymous function after whatever it is assigned to.
func bindingName(n treesitter.Node) string {
	parent := n.Parent()
	var target treesitter.Node
	switch parent.Kind() {
	case "variable_declarator", "public_field_definition":
		target = parent.ChildByFieldName("name")
	case "pair":
		target = parent.ChildByFieldName("key")
	case "assignment_expression":
		target = parent.ChildByFieldName("left")
	}
	if target.IsNull() {
		return Anonymous
	}
	return target.Text()
}
