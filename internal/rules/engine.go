package rules

import (
	"fmt"
	"strings"

	"github.com/efebarandurmaz/archlint/internal/scan"
)

const (
	baselineFrom   = "controller"
	baselineTo     = ".repository"
	baselineReason = "controllers must go through a service layer"
)

// EvaluateFile applies the forbidden-import rules and the baseline
// controller/repository rule to the imports of one file. Violations follow
// import order; for a single import, configured rules fire in declaration
// order and the baseline rule last.
func EvaluateFile(filePath string, imports []scan.Import, cfg *Config) []Violation {
	lowerPath := strings.ToLower(filePath)

	type active struct {
		idx  int
		rule ForbiddenRule
	}
	var matching []active
	for i, r := range cfg.rules {
		if strings.Contains(lowerPath, r.From) {
			matching = append(matching, active{idx: i, rule: r})
		}
	}
	baseline := strings.Contains(lowerPath, baselineFrom)

	if len(matching) == 0 && !baseline {
		return nil
	}

	var out []Violation
	for _, imp := range imports {
		lowerMod := strings.ToLower(imp.Path)
		for _, m := range matching {
			if !strings.Contains(lowerMod, m.rule.To) {
				continue
			}
			out = append(out, Violation{
				Kind:     KindForbiddenImport,
				FilePath: filePath,
				Line:     imp.Line,
				Column:   imp.Column,
				Message:  forbiddenMessage(imp.Path, m.rule),
				Reason:   m.rule.Reason,
				Rule:     fmt.Sprintf("%s[%d]", KeyForbiddenImports, m.idx),
			})
		}
		if baseline && strings.Contains(lowerMod, baselineTo) {
			out = append(out, Violation{
				Kind:     KindForbiddenImport,
				FilePath: filePath,
				Line:     imp.Line,
				Column:   imp.Column,
				Message:  fmt.Sprintf("controller imports repository %q directly", imp.Path),
				Reason:   baselineReason,
				Rule:     RuleBaselineControllerRepository,
			})
		}
	}
	return out
}

func forbiddenMessage(module string, r ForbiddenRule) string {
	if r.Reason != "" {
		return fmt.Sprintf("import %q is forbidden here: %s", module, r.Reason)
	}
	return fmt.Sprintf("forbidden import %q: files matching %q must not import modules matching %q", module, r.From, r.To)
}

// EvaluateFunctions reports every function whose span exceeds the configured
// limit. A function of exactly the limit passes.
func EvaluateFunctions(filePath string, fns []scan.Function, cfg *Config) []Violation {
	var out []Violation
	for _, fn := range fns {
		span := fn.Span()
		if span <= cfg.maxLines {
			continue
		}
		out = append(out, Violation{
			Kind:     KindFunctionTooLong,
			FilePath: filePath,
			Line:     fn.Line,
			Column:   fn.Column,
			Message:  fmt.Sprintf("%s %q spans %d lines (max %d)", fn.Kind, fn.Name, span, cfg.maxLines),
			Rule:     RuleMaxLinesPerFunction,
		})
	}
	return out
}
