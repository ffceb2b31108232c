package neo4j

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/efebarandurmaz/archlint/internal/depgraph"
	"github.com/efebarandurmaz/archlint/internal/lint"
	"github.com/efebarandurmaz/archlint/internal/scan"
)

// dockerAvailable reports whether testcontainers can reach a container
// engine. Provider detection panics on some hosts.
func dockerAvailable() (available bool) {
	defer func() {
		if r := recover(); r != nil {
			available = false
		}
	}()

	provider, err := testcontainers.ProviderDocker.GetProvider()
	if err != nil {
		return false
	}
	defer provider.Close()
	return true
}

func startNeo4j(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "neo4j:5",
			ExposedPorts: []string{"7687/tcp"},
			Env:          map[string]string{"NEO4J_AUTH": "neo4j/archlint-test"},
			WaitingFor:   wait.ForLog("Started.").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("skipping: neo4j container did not start: %v", err)
	}
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	endpoint, err := c.PortEndpoint(ctx, "7687/tcp", "bolt")
	if err != nil {
		t.Fatalf("endpoint: %v", err)
	}
	return endpoint
}

func TestNeo4jRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	if !dockerAvailable() {
		t.Skip("skipping integration test: container engine not available")
	}

	uri := startNeo4j(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	repo, err := NewNeo4j(ctx, uri, "neo4j", "archlint-test")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer repo.Close(ctx)

	report := lint.NewReport([]lint.AnalysisResult{
		{FilePath: "/p/a.ts", Imports: []scan.Import{{Path: "./b", Line: 1, Column: 1}, {Path: "express", Line: 2, Column: 1}}},
		{FilePath: "/p/b.ts", Imports: []scan.Import{{Path: "./a", Line: 1, Column: 1}, {Path: "./gone", Line: 2, Column: 1}}},
	}, 0)
	g := depgraph.Build(report, "/p")

	if err := repo.StoreGraph(ctx, g); err != nil {
		t.Fatalf("StoreGraph: %v", err)
	}
	// Storing twice replaces rather than duplicates.
	if err := repo.StoreGraph(ctx, g); err != nil {
		t.Fatalf("StoreGraph again: %v", err)
	}

	loaded, err := repo.LoadGraph(ctx, "/p")
	if err != nil {
		t.Fatalf("LoadGraph: %v", err)
	}
	if len(loaded.Nodes) != 3 {
		t.Errorf("expected 3 nodes, got %+v", loaded.Nodes)
	}
	if len(loaded.Edges) != 3 {
		t.Errorf("expected 3 stored edges (unresolved dropped), got %+v", loaded.Edges)
	}
	if cycles := loaded.DetectCycles(); len(cycles) != 1 {
		t.Errorf("expected the a<->b cycle to survive a round trip, got %v", cycles)
	}

	importers, err := repo.QueryImporters(ctx, "/p", "/p/a.ts")
	if err != nil {
		t.Fatalf("QueryImporters: %v", err)
	}
	if !slices.Equal(importers, []string{"/p/b.ts"}) {
		t.Errorf("unexpected importers: %v", importers)
	}
}
