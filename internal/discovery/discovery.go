// Package discovery finds the source files a lint run should analyze.
package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/moby/patternmatcher"
	"github.com/spf13/afero"
)

// DefaultExtensions are the file extensions analyzed when none are configured.
var DefaultExtensions = []string{".ts", ".tsx"}

// SkippedDirs are never descended into.
var SkippedDirs = []string{"node_modules", "dist", ".git", "target", "build", "coverage"}

// Options configures a Finder.
type Options struct {
	// Extensions to include, with leading dot. Matching is case-insensitive.
	Extensions []string
	// Exclude holds .dockerignore-style patterns relative to the root, for
	// example "generated" or "**/*.spec.ts".
	Exclude []string
}

// Finder walks a directory tree on an afero filesystem.
type Finder struct {
	fs       afero.Fs
	exts     map[string]bool
	excludes *patternmatcher.PatternMatcher
}

// New creates a Finder. A nil fs uses the OS filesystem.
func New(fs afero.Fs, opts Options) (*Finder, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	set := make(map[string]bool, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		set[e] = true
	}

	pm, err := patternmatcher.New(opts.Exclude)
	if err != nil {
		return nil, fmt.Errorf("invalid exclude pattern: %w", err)
	}
	return &Finder{fs: fs, exts: set, excludes: pm}, nil
}

// Matches reports whether path has one of the configured extensions.
func (f *Finder) Matches(path string) bool {
	return f.exts[strings.ToLower(filepath.Ext(path))]
}

// Find returns the candidate files under root in lexical order. If root is a
// file it is returned as the only candidate.
func (f *Finder) Find(root string) ([]string, error) {
	info, err := f.fs.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	var files []string
	err = afero.Walk(f.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil || rel == "." {
			return nil
		}

		if info.IsDir() {
			if slices.Contains(SkippedDirs, info.Name()) {
				return filepath.SkipDir
			}
			if excluded, _ := f.excludes.MatchesOrParentMatches(rel); excluded {
				return filepath.SkipDir
			}
			return nil
		}

		if !f.Matches(path) {
			return nil
		}
		if excluded, _ := f.excludes.MatchesOrParentMatches(rel); excluded {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return files, nil
}

// Excluded reports whether a path relative to the root is skipped, either by
// a built-in directory name or a configured pattern.
func (f *Finder) Excluded(rel string) bool {
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if slices.Contains(SkippedDirs, part) {
			return true
		}
	}
	excluded, _ := f.excludes.MatchesOrParentMatches(rel)
	return excluded
}
