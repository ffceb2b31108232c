package rules

// ViolationKind identifies which family of rule produced a violation.
type ViolationKind string

const (
	KindForbiddenImport ViolationKind = "forbidden_import"
	KindFunctionTooLong ViolationKind = "function_too_long"
)

// Rule identifiers reported on violations that are not tied to a
// forbidden_imports entry.
const (
	RuleBaselineControllerRepository = "baseline:controller-repository"
	RuleMaxLinesPerFunction          = "max_lines_per_function"
)

// Violation is one rule breach at a location in a file.
type Violation struct {
	Kind     ViolationKind `json:"kind" yaml:"kind"`
	FilePath string        `json:"file" yaml:"file"`
	Line     int           `json:"line" yaml:"line"`
	Column   int           `json:"column" yaml:"column"`
	Message  string        `json:"message" yaml:"message"`
	Reason   string        `json:"reason,omitempty" yaml:"reason,omitempty"`
	Rule     string        `json:"rule" yaml:"rule"`
}
