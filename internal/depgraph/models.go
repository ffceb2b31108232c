package depgraph

// Node represents a node in the dependency graph
type Node struct {
	ID   string   `json:"id"`   // analyzed path, or "pkg:<name>" for packages
	Name string   `json:"name"` // path relative to the project root, or package name
	Kind NodeKind `json:"kind"`
	Dir  string   `json:"dir,omitempty"` // directory relative to the root
}

// NodeKind classifies graph nodes
type NodeKind string

const (
	NodeFile    NodeKind = "file"
	NodePackage NodeKind = "package"
)

// Edge represents one import from a file
type Edge struct {
	From      string   `json:"from"`
	To        string   `json:"to"`
	Kind      EdgeKind `json:"kind"`
	Specifier string   `json:"specifier"` // module path as written
	Line      int      `json:"line"`
}

// EdgeKind classifies relationships
type EdgeKind string

const (
	EdgeImports    EdgeKind = "imports"    // file imports an analyzed file
	EdgeDependsOn  EdgeKind = "depends_on" // file imports an external package
	EdgeUnresolved EdgeKind = "unresolved" // relative import with no matching file
)

// Graph is the full dependency graph
type Graph struct {
	Root  string     `json:"root"`
	Nodes []Node     `json:"nodes"`
	Edges []Edge     `json:"edges"`
	Stats GraphStats `json:"stats"`
}

// GraphStats holds computed metrics about the graph
type GraphStats struct {
	TotalNodes          int        `json:"total_nodes"`
	TotalEdges          int        `json:"total_edges"`
	FileCount           int        `json:"file_count"`
	PackageCount        int        `json:"package_count"`
	UnresolvedCount     int        `json:"unresolved_count"`
	MaxFanOut           int        `json:"max_fan_out"`  // most imports from one file
	MaxFanIn            int        `json:"max_fan_in"`   // most importers of one node
	HotspotNode         string     `json:"hotspot_node"` // node with the most importers
	ConnectedComponents int        `json:"connected_components"`
	Cycles              [][]string `json:"cycles,omitempty"`
}
