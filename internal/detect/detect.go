// Package detect guesses a project's framework from its package.json and
// suggests a starter rule configuration for it.
package detect

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/efebarandurmaz/archlint/internal/rules"
)

// Framework is a recognized project framework.
type Framework string

const (
	FrameworkNestJS  Framework = "NestJS"
	FrameworkAngular Framework = "Angular"
	FrameworkReact   Framework = "React"
	FrameworkExpress Framework = "Express"
	FrameworkUnknown Framework = "Unknown"
)

// PackageJSON is the subset of package.json that detection reads.
type PackageJSON struct {
	Name            string            `json:"name"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// markers are checked in order; NestJS ships Express so it must win.
var markers = []struct {
	framework Framework
	packages  []string
}{
	{FrameworkNestJS, []string{"@nestjs/core", "@nestjs/common"}},
	{FrameworkAngular, []string{"@angular/core"}},
	{FrameworkReact, []string{"react", "next"}},
	{FrameworkExpress, []string{"express"}},
}

// Framework classifies a parsed package.json.
func (p PackageJSON) Framework() Framework {
	for _, m := range markers {
		for _, name := range m.packages {
			if _, ok := p.Dependencies[name]; ok {
				return m.framework
			}
			if _, ok := p.DevDependencies[name]; ok {
				return m.framework
			}
		}
	}
	return FrameworkUnknown
}

// Suggestion is the starter configuration for a framework.
type Suggestion struct {
	Framework           Framework
	MaxLinesPerFunction int
	Pattern             rules.Pattern
}

// Suggest returns the line limit and pattern a new project of framework f
// starts with.
func Suggest(f Framework) Suggestion {
	s := Suggestion{Framework: f, MaxLinesPerFunction: 50, Pattern: rules.PatternNone}
	switch f {
	case FrameworkNestJS, FrameworkAngular:
		s.MaxLinesPerFunction = 40
		s.Pattern = rules.PatternMVC
	case FrameworkReact:
		s.MaxLinesPerFunction = 60
	case FrameworkExpress:
		s.MaxLinesPerFunction = 50
	}
	return s
}

// Config builds the starter rule configuration for the suggestion. The
// forbidden import list starts empty; the baseline controller/repository
// rule still applies.
func (s Suggestion) Config() (*rules.Config, error) {
	return rules.New(s.MaxLinesPerFunction, s.Pattern)
}

// Parse decodes package.json bytes.
func Parse(data []byte) (PackageJSON, error) {
	var p PackageJSON
	if err := json.Unmarshal(data, &p); err != nil {
		return PackageJSON{}, fmt.Errorf("parse package.json: %w", err)
	}
	return p, nil
}

// Project reads root/package.json from fsys and classifies it. A missing
// package.json yields FrameworkUnknown without error.
func Project(fsys afero.Fs, root string) (Framework, error) {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	data, err := afero.ReadFile(fsys, filepath.Join(root, "package.json"))
	if errors.Is(err, fs.ErrNotExist) {
		return FrameworkUnknown, nil
	}
	if err != nil {
		return FrameworkUnknown, fmt.Errorf("read package.json: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return FrameworkUnknown, err
	}
	return p.Framework(), nil
}
