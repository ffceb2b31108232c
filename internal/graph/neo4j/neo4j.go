package neo4j

import (
	"context"
	"fmt"
	"slices"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/efebarandurmaz/archlint/internal/depgraph"
	"github.com/efebarandurmaz/archlint/internal/graph"
)

// Repository implements graph.Repository using Neo4j. Files are stored as
// :File nodes, external packages as :Package nodes, and every import as an
// :IMPORTS relationship carrying the specifier and line.
type Neo4jRepository struct {
	driver neo4j.DriverWithContext
}

// NewNeo4j creates a Neo4j-backed repository.
func NewNeo4j(ctx context.Context, uri, username, password string) (*Neo4jRepository, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("neo4j connectivity: %w", err)
	}
	return &Neo4jRepository{driver: driver}, nil
}

func (r *Neo4jRepository) StoreGraph(ctx context.Context, g *depgraph.Graph) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	var files, packages []map[string]any
	for _, n := range g.Nodes {
		row := map[string]any{"id": n.ID, "name": n.Name, "dir": n.Dir}
		if n.Kind == depgraph.NodePackage {
			packages = append(packages, row)
		} else {
			files = append(files, row)
		}
	}
	edges := make([]map[string]any, 0, len(g.Edges))
	for _, e := range g.Edges {
		// Unresolved targets have no node to attach to.
		if e.Kind == depgraph.EdgeUnresolved {
			continue
		}
		edges = append(edges, map[string]any{
			"from": e.From, "to": e.To, "kind": string(e.Kind),
			"specifier": e.Specifier, "line": e.Line,
		})
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if _, err := tx.Run(ctx,
			"MATCH (n {root: $root}) WHERE n:File OR n:Package DETACH DELETE n",
			map[string]any{"root": g.Root}); err != nil {
			return nil, err
		}
		if _, err := tx.Run(ctx,
			"UNWIND $files AS n MERGE (f:File {root: $root, id: n.id}) SET f.name = n.name, f.dir = n.dir",
			map[string]any{"root": g.Root, "files": files}); err != nil {
			return nil, err
		}
		if _, err := tx.Run(ctx,
			"UNWIND $packages AS n MERGE (p:Package {root: $root, id: n.id}) SET p.name = n.name",
			map[string]any{"root": g.Root, "packages": packages}); err != nil {
			return nil, err
		}
		_, err := tx.Run(ctx,
			"UNWIND $edges AS e "+
				"MATCH (a:File {root: $root, id: e.from}) "+
				"MATCH (b {root: $root, id: e.to}) "+
				"CREATE (a)-[:IMPORTS {kind: e.kind, specifier: e.specifier, line: e.line}]->(b)",
			map[string]any{"root": g.Root, "edges": edges})
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("store graph %s: %w", g.Root, err)
	}
	return nil
}

func (r *Neo4jRepository) LoadGraph(ctx context.Context, root string) (*depgraph.Graph, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		g := &depgraph.Graph{Root: root}

		records, err := tx.Run(ctx,
			"MATCH (n {root: $root}) WHERE n:File OR n:Package "+
				"RETURN n.id AS id, n.name AS name, n:Package AS pkg, coalesce(n.dir, '') AS dir ORDER BY id",
			map[string]any{"root": root})
		if err != nil {
			return nil, err
		}
		for records.Next(ctx) {
			rec := records.Record()
			id, _ := rec.Get("id")
			name, _ := rec.Get("name")
			pkg, _ := rec.Get("pkg")
			dir, _ := rec.Get("dir")
			n := depgraph.Node{ID: id.(string), Name: name.(string), Kind: depgraph.NodeFile, Dir: dir.(string)}
			if pkg.(bool) {
				n.Kind = depgraph.NodePackage
			}
			g.Nodes = append(g.Nodes, n)
		}
		if err := records.Err(); err != nil {
			return nil, err
		}

		records, err = tx.Run(ctx,
			"MATCH (a:File {root: $root})-[i:IMPORTS]->(b) "+
				"RETURN a.id AS from, b.id AS to, i.kind AS kind, i.specifier AS specifier, i.line AS line "+
				"ORDER BY from, line",
			map[string]any{"root": root})
		if err != nil {
			return nil, err
		}
		for records.Next(ctx) {
			rec := records.Record()
			from, _ := rec.Get("from")
			to, _ := rec.Get("to")
			kind, _ := rec.Get("kind")
			spec, _ := rec.Get("specifier")
			line, _ := rec.Get("line")
			g.Edges = append(g.Edges, depgraph.Edge{
				From:      from.(string),
				To:        to.(string),
				Kind:      depgraph.EdgeKind(kind.(string)),
				Specifier: spec.(string),
				Line:      int(line.(int64)),
			})
		}
		return g, records.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("load graph %s: %w", root, err)
	}
	return result.(*depgraph.Graph), nil
}

func (r *Neo4jRepository) QueryImporters(ctx context.Context, root, id string) ([]string, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		records, err := tx.Run(ctx,
			"MATCH (a:File {root: $root})-[:IMPORTS]->({root: $root, id: $id}) RETURN DISTINCT a.id AS id",
			map[string]any{"root": root, "id": id})
		if err != nil {
			return nil, err
		}
		var ids []string
		for records.Next(ctx) {
			v, _ := records.Record().Get("id")
			ids = append(ids, v.(string))
		}
		return ids, records.Err()
	})
	if err != nil {
		return nil, err
	}
	ids := result.([]string)
	slices.Sort(ids)
	return ids, nil
}

func (r *Neo4jRepository) Close(ctx context.Context) error {
	return r.driver.Close(ctx)
}

var _ graph.Repository = (*Neo4jRepository)(nil)
