package discovery

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/spf13/afero"
)

func memTree(t *testing.T, files ...string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for _, f := range files {
		if err := afero.WriteFile(fs, f, []byte("export {};\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return fs
}

func TestFind_SkipsBuiltinDirsAndExtensions(t *testing.T) {
	fs := memTree(t,
		"/proj/src/app.ts",
		"/proj/src/view.TSX",
		"/proj/src/util.js",
		"/proj/src/readme.md",
		"/proj/node_modules/lib/index.ts",
		"/proj/dist/app.ts",
		"/proj/coverage/x.ts",
		"/proj/packages/build/out.ts",
	)
	f, err := New(fs, Options{})
	if err != nil {
		t.Fatal(err)
	}
	got, err := f.Find("/proj")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	want := []string{"/proj/src/app.ts", "/proj/src/view.TSX"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestFind_ExcludePatterns(t *testing.T) {
	fs := memTree(t,
		"/proj/src/a.ts",
		"/proj/src/a.spec.ts",
		"/proj/generated/api.ts",
		"/proj/src/deep/b.spec.ts",
	)
	f, err := New(fs, Options{Exclude: []string{"generated", "**/*.spec.ts"}})
	if err != nil {
		t.Fatal(err)
	}
	got, err := f.Find("/proj")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"/proj/src/a.ts"}) {
		t.Errorf("unexpected files %v", got)
	}
}

func TestFind_CustomExtensions(t *testing.T) {
	fs := memTree(t, "/proj/a.ts", "/proj/b.mjs", "/proj/c.jsx")
	f, err := New(fs, Options{Extensions: []string{"mjs", ".JSX"}})
	if err != nil {
		t.Fatal(err)
	}
	got, err := f.Find("/proj")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []string{"/proj/b.mjs", "/proj/c.jsx"}) {
		t.Errorf("unexpected files %v", got)
	}
}

func TestFind_SingleFileRoot(t *testing.T) {
	fs := memTree(t, "/proj/one.ts")
	f, _ := New(fs, Options{})
	got, err := f.Find("/proj/one.ts")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "/proj/one.ts" {
		t.Errorf("unexpected files %v", got)
	}
}

func TestFind_MissingRoot(t *testing.T) {
	f, _ := New(afero.NewMemMapFs(), Options{})
	if _, err := f.Find("/nope"); err == nil {
		t.Error("expected error for missing root")
	}
}

func TestExcluded(t *testing.T) {
	f, err := New(afero.NewMemMapFs(), Options{Exclude: []string{"tmp"}})
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		rel  string
		want bool
	}{
		{filepath.Join("src", "a.ts"), false},
		{filepath.Join("node_modules", "x", "a.ts"), true},
		{filepath.Join("tmp", "scratch.ts"), true},
		{filepath.Join("src", ".git", "HEAD"), true},
	}
	for _, tt := range tests {
		if got := f.Excluded(tt.rel); got != tt.want {
			t.Errorf("Excluded(%q) = %v, want %v", tt.rel, got, tt.want)
		}
	}
}
