package watch

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/efebarandurmaz/archlint/internal/discovery"
)

type recorder struct {
	mu    sync.Mutex
	calls [][]string
	fired chan struct{}
}

func newRecorder() *recorder {
	return &recorder{fired: make(chan struct{}, 10)}
}

func (r *recorder) onChange(_ context.Context, changed []string) error {
	r.mu.Lock()
	r.calls = append(r.calls, changed)
	r.mu.Unlock()
	r.fired <- struct{}{}
	return nil
}

func (r *recorder) snapshot() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.calls)
}

func startWatcher(t *testing.T, root string, triggers []string, rec *recorder) {
	t.Helper()
	finder, err := discovery.New(nil, discovery.Options{})
	if err != nil {
		t.Fatal(err)
	}
	w, err := New(Config{
		Root:     root,
		Finder:   finder,
		Triggers: triggers,
		Debounce: 100 * time.Millisecond,
		OnChange: rec.onChange,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-errCh; err != nil {
			t.Errorf("Run: %v", err)
		}
	})
}

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func waitFired(t *testing.T, rec *recorder) {
	t.Helper()
	select {
	case <-rec.fired:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback")
	}
}

func TestWatcher_DebounceAndFilter(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"src", "node_modules"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	rec := newRecorder()
	startWatcher(t, root, nil, rec)

	write(t, filepath.Join(root, "node_modules", "dep.ts"), "export {}\n")
	write(t, filepath.Join(root, "src", "notes.md"), "# notes\n")
	for _, name := range []string{"a.ts", "b.tsx"} {
		write(t, filepath.Join(root, "src", name), "export const x = 1;\n")
		time.Sleep(10 * time.Millisecond)
	}

	waitFired(t, rec)
	time.Sleep(300 * time.Millisecond)

	calls := rec.snapshot()
	if len(calls) != 1 {
		t.Fatalf("expected 1 debounced callback, got %d: %v", len(calls), calls)
	}
	want := []string{filepath.Join("src", "a.ts"), filepath.Join("src", "b.tsx")}
	if !slices.Equal(calls[0], want) {
		t.Errorf("got %v, want %v", calls[0], want)
	}
}

func TestWatcher_Trigger(t *testing.T) {
	root := t.TempDir()
	rulesPath := filepath.Join(root, "architect.json")
	write(t, rulesPath, `{"max_lines_per_function": 10}`)

	rec := newRecorder()
	startWatcher(t, root, []string{rulesPath}, rec)

	write(t, rulesPath, `{"max_lines_per_function": 20}`)
	waitFired(t, rec)

	calls := rec.snapshot()
	if len(calls) == 0 || !slices.Contains(calls[0], "architect.json") {
		t.Errorf("expected rule document change to fire, got %v", calls)
	}
}

func TestNew_RequiresFinder(t *testing.T) {
	if _, err := New(Config{Root: t.TempDir()}); err == nil {
		t.Error("expected error without a finder")
	}
}
