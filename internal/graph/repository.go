// Package graph persists import graphs to an external graph store.
package graph

import (
	"context"

	"github.com/efebarandurmaz/archlint/internal/depgraph"
)

// Repository provides graph storage for import graphs. Graphs are keyed by
// their project root so several projects can share one store.
type Repository interface {
	// StoreGraph replaces the stored graph for g.Root.
	StoreGraph(ctx context.Context, g *depgraph.Graph) error
	// LoadGraph retrieves the nodes and edges stored for root.
	LoadGraph(ctx context.Context, root string) (*depgraph.Graph, error)
	// QueryImporters returns the files of root that import the node id.
	QueryImporters(ctx context.Context, root, id string) ([]string, error)
	// Close releases resources.
	Close(ctx context.Context) error
}
