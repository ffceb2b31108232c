// Package depgraph builds a file-level import graph from a lint report and
// finds import cycles in it.
package depgraph

import (
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/efebarandurmaz/archlint/internal/lint"
)

// probeExtensions are tried, in order, when a relative specifier omits the
// extension or names the compiled .js output of a TypeScript file.
var probeExtensions = []string{".ts", ".tsx", ".d.ts", ".js", ".jsx", ".mts", ".cts", ".mjs", ".cjs"}

// Build creates the import graph for the files of report. Relative
// specifiers ("./x", "../x") and root-absolute ones ("/x") are resolved
// against the analyzed file set; bare specifiers become package nodes.
// Skipped files appear as nodes without outgoing edges.
func Build(report *lint.Report, root string) *Graph {
	g := &Graph{Root: root}

	// files maps a normalized slash path to the node ID used for it.
	files := make(map[string]string, len(report.Results))
	for _, res := range report.Results {
		key := normalize(res.FilePath)
		if _, dup := files[key]; dup {
			continue
		}
		files[key] = res.FilePath
		rel := relative(root, res.FilePath)
		g.Nodes = append(g.Nodes, Node{
			ID:   res.FilePath,
			Name: rel,
			Kind: NodeFile,
			Dir:  path.Dir(rel),
		})
	}

	packages := make(map[string]bool)
	for _, res := range report.Results {
		for _, imp := range res.Imports {
			spec := imp.Path
			edge := Edge{From: res.FilePath, Specifier: spec, Line: imp.Line}

			switch {
			case isRelative(spec):
				base := path.Dir(normalize(res.FilePath))
				if strings.HasPrefix(spec, "/") {
					base = normalize(root)
				}
				target := path.Join(base, strings.TrimPrefix(spec, "/"))
				if id, ok := resolve(files, target); ok {
					edge.To, edge.Kind = id, EdgeImports
				} else {
					edge.To, edge.Kind = target, EdgeUnresolved
				}
			default:
				name := packageName(spec)
				id := "pkg:" + name
				if !packages[name] {
					packages[name] = true
					g.Nodes = append(g.Nodes, Node{ID: id, Name: name, Kind: NodePackage})
				}
				edge.To, edge.Kind = id, EdgeDependsOn
			}
			g.Edges = append(g.Edges, edge)
		}
	}

	g.computeStats()
	return g
}

func isRelative(spec string) bool {
	return strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../") ||
		strings.HasPrefix(spec, "/") || spec == "." || spec == ".."
}

// resolve probes target as written, with each known extension, with a .js
// style extension swapped for a TypeScript one, and as a directory index.
func resolve(files map[string]string, target string) (string, bool) {
	if id, ok := files[target]; ok {
		return id, true
	}
	stem := target
	if ext := path.Ext(target); slices.Contains([]string{".js", ".jsx", ".mjs", ".cjs"}, ext) {
		stem = strings.TrimSuffix(target, ext)
	}
	for _, ext := range probeExtensions {
		if id, ok := files[stem+ext]; ok {
			return id, true
		}
	}
	for _, ext := range probeExtensions {
		if id, ok := files[path.Join(target, "index"+ext)]; ok {
			return id, true
		}
	}
	return "", false
}

// packageName trims a bare specifier to its package: "@scope/pkg/sub" becomes
// "@scope/pkg" and "lodash/fp" becomes "lodash".
func packageName(spec string) string {
	parts := strings.Split(spec, "/")
	if strings.HasPrefix(spec, "@") && len(parts) > 1 {
		return parts[0] + "/" + parts[1]
	}
	return parts[0]
}

func normalize(p string) string {
	return path.Clean(filepath.ToSlash(p))
}

func relative(root, p string) string {
	if root == "" {
		return normalize(p)
	}
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return normalize(p)
	}
	return normalize(rel)
}

// computeStats computes graph metrics
func (g *Graph) computeStats() {
	g.Stats.TotalNodes = len(g.Nodes)
	g.Stats.TotalEdges = len(g.Edges)

	for _, n := range g.Nodes {
		switch n.Kind {
		case NodeFile:
			g.Stats.FileCount++
		case NodePackage:
			g.Stats.PackageCount++
		}
	}

	fanOut := make(map[string]int)
	fanIn := make(map[string]int)
	for _, e := range g.Edges {
		if e.Kind == EdgeUnresolved {
			g.Stats.UnresolvedCount++
			continue
		}
		fanOut[e.From]++
		fanIn[e.To]++
	}

	for _, count := range fanOut {
		g.Stats.MaxFanOut = max(g.Stats.MaxFanOut, count)
	}
	// Ties go to the lexically smallest ID.
	for _, n := range g.Nodes {
		count := fanIn[n.ID]
		if count > g.Stats.MaxFanIn || (count == g.Stats.MaxFanIn && count > 0 && n.ID < g.Stats.HotspotNode) {
			g.Stats.MaxFanIn = count
			g.Stats.HotspotNode = n.ID
		}
	}

	g.Stats.ConnectedComponents = g.countComponents()
	g.Stats.Cycles = g.DetectCycles()
}

// countComponents counts connected components via union-find
func (g *Graph) countComponents() int {
	parent := make(map[string]string)
	var find func(string) string
	find = func(x string) string {
		if parent[x] == "" {
			parent[x] = x
		}
		if parent[x] != x {
			parent[x] = find(parent[x])
		}
		return parent[x]
	}
	union := func(a, b string) {
		fa, fb := find(a), find(b)
		if fa != fb {
			parent[fa] = fb
		}
	}

	for _, n := range g.Nodes {
		find(n.ID)
	}
	for _, e := range g.Edges {
		if e.Kind != EdgeUnresolved {
			union(e.From, e.To)
		}
	}

	roots := make(map[string]bool)
	for _, n := range g.Nodes {
		roots[find(n.ID)] = true
	}
	return len(roots)
}

// DetectCycles finds import cycles between analyzed files using DFS. Roots
// and neighbours are visited in sorted order so the result is
// deterministic; each cycle starts at its smallest member and is reported
// once.
func (g *Graph) DetectCycles() [][]string {
	adj := make(map[string][]string)
	nodes := make(map[string]bool)
	for _, e := range g.Edges {
		if e.Kind != EdgeImports {
			continue
		}
		if !slices.Contains(adj[e.From], e.To) {
			adj[e.From] = append(adj[e.From], e.To)
		}
		nodes[e.From] = true
		nodes[e.To] = true
	}
	for _, next := range adj {
		slices.Sort(next)
	}

	var cycles [][]string
	seen := make(map[string]bool)
	visited := make(map[string]int) // 0=unvisited, 1=in-progress, 2=done
	var stack []string

	var dfs func(node string)
	dfs = func(node string) {
		visited[node] = 1
		stack = append(stack, node)
		for _, next := range adj[node] {
			switch visited[next] {
			case 0:
				dfs(next)
			case 1:
				start := slices.Index(stack, next)
				cycle := canonical(stack[start:])
				key := strings.Join(cycle, "\x00")
				if !seen[key] {
					seen[key] = true
					cycles = append(cycles, cycle)
				}
			}
		}
		stack = stack[:len(stack)-1]
		visited[node] = 2
	}

	sorted := make([]string, 0, len(nodes))
	for n := range nodes {
		sorted = append(sorted, n)
	}
	slices.Sort(sorted)
	for _, n := range sorted {
		if visited[n] == 0 {
			dfs(n)
		}
	}
	return cycles
}

// canonical rotates a cycle to start at its smallest member.
func canonical(cycle []string) []string {
	minIdx := 0
	for i, n := range cycle {
		if n < cycle[minIdx] {
			minIdx = i
		}
	}
	out := make([]string, 0, len(cycle))
	out = append(out, cycle[minIdx:]...)
	out = append(out, cycle[:minIdx]...)
	return out
}

// Importers returns the files that import id, sorted.
func (g *Graph) Importers(id string) []string {
	var out []string
	for _, e := range g.Edges {
		if e.To == id && e.Kind != EdgeUnresolved && !slices.Contains(out, e.From) {
			out = append(out, e.From)
		}
	}
	slices.Sort(out)
	return out
}
