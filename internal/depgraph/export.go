package depgraph

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// ExportDOT generates a Graphviz DOT representation of the graph. Files are
// clustered by directory; edges that close an import cycle are drawn red.
func ExportDOT(g *Graph) string {
	var b strings.Builder
	b.WriteString("digraph imports {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [fontname=\"Helvetica\"];\n")
	b.WriteString("  edge [fontname=\"Helvetica\" fontsize=10];\n\n")

	dirs, groups := groupByDir(g)
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		b.WriteString(fmt.Sprintf("  subgraph cluster_%s {\n", sanitizeID(dir)))
		b.WriteString(fmt.Sprintf("    label=%q;\n", dir))
		b.WriteString("    style=dashed;\n")
		b.WriteString("    color=\"#58a6ff\";\n")
		for _, n := range groups[dir] {
			writeDOTNode(&b, "    ", n)
		}
		b.WriteString("  }\n\n")
	}
	for _, n := range groups[""] {
		writeDOTNode(&b, "  ", n)
	}

	cyclic := cycleEdges(g)
	for _, e := range g.Edges {
		color := edgeColor(e.Kind)
		if cyclic[[2]string{e.From, e.To}] {
			color = "#f85149"
		}
		b.WriteString(fmt.Sprintf("  %q -> %q [style=%s color=\"%s\" label=%q];\n",
			e.From, e.To, edgeStyle(e.Kind), color, fmt.Sprintf("L%d", e.Line)))
	}

	b.WriteString("}\n")
	return b.String()
}

func writeDOTNode(b *strings.Builder, indent string, n Node) {
	b.WriteString(fmt.Sprintf("%s%q [label=%q shape=%s style=filled fillcolor=\"%s\"];\n",
		indent, n.ID, n.Name, nodeShape(n.Kind), nodeColor(n.Kind)))
}

// ExportMermaid generates a Mermaid diagram of the graph.
func ExportMermaid(g *Graph) string {
	var b strings.Builder
	b.WriteString("graph LR\n")

	dirs, groups := groupByDir(g)
	for _, dir := range dirs {
		indent := "  "
		if dir != "" {
			b.WriteString(fmt.Sprintf("  subgraph %s[%q]\n", sanitizeID("dir_"+dir), dir))
			indent = "    "
		}
		for _, n := range groups[dir] {
			b.WriteString(fmt.Sprintf("%s%s%s\n", indent, sanitizeID(n.ID), mermaidNodeShape(n)))
		}
		if dir != "" {
			b.WriteString("  end\n")
		}
	}

	for _, e := range g.Edges {
		b.WriteString(fmt.Sprintf("  %s %s %s\n",
			sanitizeID(e.From), mermaidArrow(e.Kind), sanitizeID(e.To)))
	}

	return b.String()
}

// ExportJSON serializes the graph to JSON.
func ExportJSON(g *Graph) ([]byte, error) {
	return json.MarshalIndent(g, "", "  ")
}

// FormatStats returns a human-readable summary of graph statistics.
func FormatStats(g *Graph) string {
	var b strings.Builder
	b.WriteString("Import Graph Statistics\n")
	b.WriteString("=======================\n\n")
	b.WriteString(fmt.Sprintf("Nodes:       %d total\n", g.Stats.TotalNodes))
	b.WriteString(fmt.Sprintf("  Files:     %d\n", g.Stats.FileCount))
	b.WriteString(fmt.Sprintf("  Packages:  %d\n", g.Stats.PackageCount))
	b.WriteString(fmt.Sprintf("Edges:       %d total\n", g.Stats.TotalEdges))
	b.WriteString(fmt.Sprintf("  Unresolved: %d\n", g.Stats.UnresolvedCount))
	b.WriteString(fmt.Sprintf("Max Fan-Out: %d\n", g.Stats.MaxFanOut))
	b.WriteString(fmt.Sprintf("Max Fan-In:  %d (%s)\n", g.Stats.MaxFanIn, g.Stats.HotspotNode))
	b.WriteString(fmt.Sprintf("Components:  %d\n", g.Stats.ConnectedComponents))

	if len(g.Stats.Cycles) > 0 {
		b.WriteString(fmt.Sprintf("\nImport Cycles: %d\n", len(g.Stats.Cycles)))
		for i, cycle := range g.Stats.Cycles {
			closed := append(slices.Clone(cycle), cycle[0])
			b.WriteString(fmt.Sprintf("  %d: %s\n", i+1, strings.Join(closed, " -> ")))
		}
	}

	return b.String()
}

// groupByDir returns the sorted directory keys and the nodes under each.
// Package nodes are grouped under "".
func groupByDir(g *Graph) ([]string, map[string][]Node) {
	groups := make(map[string][]Node)
	for _, n := range g.Nodes {
		dir := n.Dir
		if n.Kind == NodePackage || dir == "." {
			dir = ""
		}
		groups[dir] = append(groups[dir], n)
	}
	dirs := make([]string, 0, len(groups))
	for dir := range groups {
		dirs = append(dirs, dir)
	}
	slices.Sort(dirs)
	return dirs, groups
}

// cycleEdges marks every From->To pair that lies on a detected cycle.
func cycleEdges(g *Graph) map[[2]string]bool {
	out := make(map[[2]string]bool)
	for _, cycle := range g.Stats.Cycles {
		for i, from := range cycle {
			out[[2]string{from, cycle[(i+1)%len(cycle)]}] = true
		}
	}
	return out
}

func sanitizeID(s string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			return r
		}
		return '_'
	}, s)
}

func nodeShape(kind NodeKind) string {
	switch kind {
	case NodePackage:
		return "box3d"
	default:
		return "box"
	}
}

func nodeColor(kind NodeKind) string {
	switch kind {
	case NodeFile:
		return "#238636"
	case NodePackage:
		return "#1f6feb"
	default:
		return "#30363d"
	}
}

func edgeStyle(kind EdgeKind) string {
	switch kind {
	case EdgeDependsOn:
		return "dotted"
	case EdgeUnresolved:
		return "dashed"
	default:
		return "solid"
	}
}

func edgeColor(kind EdgeKind) string {
	switch kind {
	case EdgeImports:
		return "#3fb950"
	case EdgeDependsOn:
		return "#8b949e"
	case EdgeUnresolved:
		return "#d29922"
	default:
		return "#c9d1d9"
	}
}

func mermaidNodeShape(n Node) string {
	switch n.Kind {
	case NodePackage:
		return fmt.Sprintf("[[%q]]", n.Name)
	default:
		return fmt.Sprintf("[%q]", n.Name)
	}
}

func mermaidArrow(kind EdgeKind) string {
	switch kind {
	case EdgeDependsOn:
		return "-.->"
	case EdgeUnresolved:
		return "--x"
	default:
		return "-->"
	}
}
