package temporal

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"go.temporal.io/sdk/testsuite"
)

const rulesDoc = `{
  "max_lines_per_function": 50,
  "pattern": "none",
  "forbidden_imports": [{"from": "/domain/", "to": "/infra/"}]
}`

// writeProject creates n domain files that each import infra, plus the rule
// document, and returns the root and rules path.
func writeProject(t *testing.T, n int) (string, string) {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "domain")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	for i := range n {
		src := fmt.Sprintf("import { Db } from '../infra/db';\nexport const v%d = 1;\n", i)
		if err := os.WriteFile(filepath.Join(dir, fmt.Sprintf("f%d.ts", i)), []byte(src), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	rulesPath := filepath.Join(root, "architect.json")
	if err := os.WriteFile(rulesPath, []byte(rulesDoc), 0o644); err != nil {
		t.Fatal(err)
	}
	return root, rulesPath
}

func TestChunk(t *testing.T) {
	files := []string{"a", "b", "c", "d", "e"}
	tests := []struct {
		size int
		want []int
	}{
		{2, []int{2, 2, 1}},
		{5, []int{5}},
		{10, []int{5}},
		{0, []int{5}},
	}
	for _, tt := range tests {
		got := Chunk(files, tt.size)
		if len(got) != len(tt.want) {
			t.Fatalf("size %d: got %d chunks, want %d", tt.size, len(got), len(tt.want))
		}
		for i, c := range got {
			if len(c) != tt.want[i] {
				t.Errorf("size %d chunk %d: got %d files, want %d", tt.size, i, len(c), tt.want[i])
			}
		}
	}
	if got := Chunk(nil, 3); len(got) != 0 {
		t.Errorf("expected no chunks for empty input, got %v", got)
	}
}

func TestLintWorkflow(t *testing.T) {
	root, rulesPath := writeProject(t, 5)

	var s testsuite.WorkflowTestSuite
	env := s.NewTestWorkflowEnvironment()
	env.RegisterActivity(&Activities{})

	env.ExecuteWorkflow(LintWorkflow, LintInput{Root: root, RulesPath: rulesPath, ChunkSize: 2, Workers: 2})

	if !env.IsWorkflowCompleted() {
		t.Fatal("workflow did not complete")
	}
	if err := env.GetWorkflowError(); err != nil {
		t.Fatalf("workflow failed: %v", err)
	}
	var out LintOutput
	if err := env.GetWorkflowResult(&out); err != nil {
		t.Fatal(err)
	}

	if out.Chunks != 3 {
		t.Errorf("expected 3 chunks, got %d", out.Chunks)
	}
	if s := out.Report.Summary; s.Files != 5 || s.Analyzed != 5 || s.Violations != 5 {
		t.Errorf("unexpected summary: %+v", s)
	}
	for i, res := range out.Report.Results {
		want := filepath.Join(root, "domain", fmt.Sprintf("f%d.ts", i))
		if res.FilePath != want {
			t.Errorf("result %d: got %s, want %s (merge must keep input order)", i, res.FilePath, want)
		}
	}
}

func TestLintWorkflow_InvalidRules(t *testing.T) {
	root, _ := writeProject(t, 1)
	bad := filepath.Join(root, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"pattern": "mvc"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	var s testsuite.WorkflowTestSuite
	env := s.NewTestWorkflowEnvironment()
	env.RegisterActivity(&Activities{})

	env.ExecuteWorkflow(LintWorkflow, LintInput{Root: root, RulesPath: bad})

	if !env.IsWorkflowCompleted() {
		t.Fatal("workflow did not complete")
	}
	if err := env.GetWorkflowError(); err == nil {
		t.Error("expected workflow error for rules without max_lines_per_function")
	}
}
