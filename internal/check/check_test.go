package check

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/efebarandurmaz/archlint/internal/config"
	"github.com/efebarandurmaz/archlint/internal/discovery"
	"github.com/efebarandurmaz/archlint/internal/lint"
)

const rulesDoc = `{
  "max_lines_per_function": 20,
  "forbidden_imports": [{"from": "/domain/", "to": "/infra/", "reason": "domain stays pure"}]
}`

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestRun_Violations(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"architect.json":       rulesDoc,
		"src/domain/user.ts":   "import { Db } from '../infra/db';\nexport const u = 1;\n",
		"src/infra/db.ts":      "export class Db {}\n",
		"node_modules/x/y.ts":  "import { Db } from '../infra/db';\n",
		"src/domain/README.md": "not typescript",
	})

	res, err := Run(context.Background(), Request{Root: root})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if s := res.Report.Summary; s.Files != 2 || s.Violations != 1 {
		t.Errorf("unexpected summary: %+v", s)
	}
	if res.ExitCode() != 1 {
		t.Errorf("expected exit code 1, got %d", res.ExitCode())
	}
	if res.Cycles != nil {
		t.Errorf("cycles should be nil when detection is off, got %v", res.Cycles)
	}
	if res.Graph.Stats.FileCount != 2 {
		t.Errorf("expected 2 file nodes, got %d", res.Graph.Stats.FileCount)
	}
}

func TestRun_Clean(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"architect.json":  rulesDoc,
		"src/app/main.ts": "import { x } from './x';\nexport const y = x;\n",
		"src/app/x.ts":    "export const x = 1;\n",
	})

	res, err := Run(context.Background(), Request{Root: root, Cycles: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.ExitCode() != 0 {
		t.Errorf("expected exit code 0, got %d: %v", res.ExitCode(), res.Gates.Failures())
	}
	if res.Cycles == nil || len(res.Cycles) != 0 {
		t.Errorf("expected empty non-nil cycles, got %v", res.Cycles)
	}
}

func TestRun_CyclesGate(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"architect.json": rulesDoc,
		"a.ts":           "import { b } from './b';\nexport const a = 1;\n",
		"b.ts":           "import { a } from './a';\nexport const b = 2;\n",
	})

	without, err := Run(context.Background(), Request{Root: root})
	if err != nil {
		t.Fatal(err)
	}
	if without.ExitCode() != 0 {
		t.Errorf("cycles must not fail the run unless enabled")
	}

	with, err := Run(context.Background(), Request{Root: root, Cycles: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(with.Cycles) != 1 || with.ExitCode() != 1 {
		t.Errorf("expected one cycle failing the run, got %v (exit %d)", with.Cycles, with.ExitCode())
	}
}

func TestEvaluate_AbsoluteReportRelativeRoot(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"architect.json": rulesDoc,
		"src/a.ts":       "import { b } from '/src/b';\nexport const a = 1;\n",
		"src/b.ts":       "import { a } from './a';\nexport const b = 2;\n",
	})
	t.Chdir(root)
	ctx := context.Background()
	req := Request{Root: ".", Cycles: true}

	local, err := Run(ctx, req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// A distributed run analyzes the files found from the absolute root.
	abs, err := filepath.Abs(".")
	if err != nil {
		t.Fatal(err)
	}
	finder, err := discovery.New(nil, discovery.Options{})
	if err != nil {
		t.Fatal(err)
	}
	files, err := finder.Find(abs)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := config.LoadRules(RulesPathFor(".", ""))
	if err != nil {
		t.Fatal(err)
	}
	report := lint.NewCoordinator(cfg, lint.Options{Workers: 2}).Run(ctx, files)
	remote := Evaluate(ctx, cfg, report, req)

	relCycles := func(cycles [][]string) [][]string {
		var out [][]string
		for _, c := range cycles {
			var rel []string
			for _, p := range c {
				if filepath.IsAbs(p) {
					p, _ = filepath.Rel(abs, p)
				}
				rel = append(rel, filepath.ToSlash(filepath.Clean(p)))
			}
			out = append(out, rel)
		}
		return out
	}
	want := [][]string{{"src/a.ts", "src/b.ts"}}
	if got := relCycles(local.Cycles); !slices.EqualFunc(got, want, slices.Equal) {
		t.Errorf("local cycles: got %v, want %v", got, want)
	}
	if got := relCycles(remote.Cycles); !slices.EqualFunc(got, want, slices.Equal) {
		t.Errorf("distributed cycles: got %v, want %v", got, want)
	}
	if local.ExitCode() != remote.ExitCode() {
		t.Errorf("exit codes differ: local %d, distributed %d", local.ExitCode(), remote.ExitCode())
	}
	for _, n := range remote.Graph.Nodes {
		if n.Kind == "file" && filepath.IsAbs(n.Name) {
			t.Errorf("node name should be root-relative, got %s", n.Name)
		}
	}
}

func TestRun_Strict(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"architect.json": rulesDoc,
		"bad.ts":         "export function broken( {\n",
	})

	lenient, err := Run(context.Background(), Request{Root: root})
	if err != nil {
		t.Fatal(err)
	}
	if lenient.Report.Summary.Skipped != 1 || lenient.ExitCode() != 0 {
		t.Errorf("expected skipped file to warn only, got %+v exit %d", lenient.Report.Summary, lenient.ExitCode())
	}

	strict, err := Run(context.Background(), Request{Root: root, Strict: true})
	if err != nil {
		t.Fatal(err)
	}
	if strict.ExitCode() != 1 {
		t.Errorf("expected strict run to fail on skipped file")
	}
}

func TestRun_RulesErrors(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.ts": "export const a = 1;\n"})

	if _, err := Run(context.Background(), Request{Root: root}); err == nil {
		t.Error("expected error when architect.json is missing")
	}

	writeFiles(t, root, map[string]string{"rules.json": `{"max_lines_per_function": 0}`})
	if _, err := Run(context.Background(), Request{Root: root, RulesPath: filepath.Join(root, "rules.json")}); err == nil {
		t.Error("expected error for invalid rules")
	}
}

func TestRulesPathFor(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"src/a.ts": "export const a = 1;\n"})

	tests := []struct {
		name string
		root string
		file string
		want string
	}{
		{"dir root", root, "", filepath.Join(root, "architect.json")},
		{"file root", filepath.Join(root, "src", "a.ts"), "", filepath.Join(root, "src", "architect.json")},
		{"relative name", root, "rules.yaml", filepath.Join(root, "rules.yaml")},
		{"absolute name", root, "/etc/archlint/rules.json", "/etc/archlint/rules.json"},
	}
	for _, tt := range tests {
		if got := RulesPathFor(tt.root, tt.file); got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.name, got, tt.want)
		}
	}
}
