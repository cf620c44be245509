//go:build integration

package integration

import (
	"context"
	"os"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/agenthands/loregraph/internal/config"
	"github.com/agenthands/loregraph/internal/core"
	"github.com/agenthands/loregraph/internal/core/format"
	"github.com/agenthands/loregraph/internal/core/model"
	"github.com/agenthands/loregraph/internal/driver"
	"github.com/agenthands/loregraph/internal/store"
)

// prefixFixture namespaces every id of the fixture so runs do not collide.
func prefixFixture(f *store.Fixture, prefix string) {
	refFields := []string{model.FieldWorldID, model.FieldCampaignID, model.FieldParentLocationID}
	for i := range f.Entities {
		e := &f.Entities[i]
		e.ID = prefix + e.ID
		for _, field := range refFields {
			if v := e.Attr(field); v != "" {
				e.Attributes[field] = prefix + v
			}
		}
	}
	for i := range f.Relationships {
		f.Relationships[i].Source = prefix + f.Relationships[i].Source
		f.Relationships[i].Target = prefix + f.Relationships[i].Target
	}
}

func graphShape(p *format.GraphPayload) ([]string, []string) {
	var nodes, edges []string
	for _, n := range p.Nodes {
		nodes = append(nodes, n.ID)
	}
	for _, e := range p.Edges {
		edges = append(edges, e.Source+"|"+string(e.Type)+"|"+e.Target)
	}
	sort.Strings(nodes)
	sort.Strings(edges)
	return nodes, edges
}

func TestMemgraphMatchesFixture(t *testing.T) {
	// Load environment if present
	_ = godotenv.Load("../../.env")

	uri := os.Getenv("MEMGRAPH_URI")
	if uri == "" {
		t.Skip("Skipping integration test: MEMGRAPH_URI not set")
	}

	ctx := context.Background()
	logger := zap.NewNop()

	d, err := driver.NewMemgraphDriver(ctx, uri, os.Getenv("MEMGRAPH_USER"), os.Getenv("MEMGRAPH_PASSWORD"), logger)
	require.NoError(t, err)
	defer d.Close(ctx)
	require.NoError(t, d.BuildIndices(ctx))

	f, err := store.LoadFixture("../../testdata/campaign.yaml")
	require.NoError(t, err)
	prefix := "it-" + uuid.New().String()[:8] + "-"
	prefixFixture(f, prefix)

	_, err = store.Seed(ctx, d, f)
	require.NoError(t, err)
	defer func() {
		_, _ = d.ExecuteQuery(ctx, `MATCH (n) WHERE n.uuid STARTS WITH $prefix DETACH DELETE n`,
			map[string]interface{}{"prefix": prefix})
	}()

	mem, err := store.NewMemoryStore(*f)
	require.NoError(t, err)

	cfg := config.Default().Graph
	memgraphSvc := core.NewGraphService(store.NewMemgraphStore(d, 5*time.Second), cfg, nil, logger)
	memorySvc := core.NewGraphService(mem, cfg, nil, logger)

	scope := model.Scope{Kind: model.ScopeCharacter, ID: prefix + "ch1"}
	opts := core.GraphOptions{Depth: 3, Layout: format.LayoutForce}

	want, err := memorySvc.BuildGraph(ctx, scope, opts)
	require.NoError(t, err)
	got, err := memgraphSvc.BuildGraph(ctx, scope, opts)
	require.NoError(t, err)

	wantNodes, wantEdges := graphShape(want)
	gotNodes, gotEdges := graphShape(got)
	assert.Equal(t, wantNodes, gotNodes)
	assert.Equal(t, wantEdges, gotEdges)

	tree, err := memgraphSvc.Hierarchy(ctx, model.Scope{Kind: model.ScopeCampaign, ID: prefix + "c1"}, core.HierarchyOptions{Depth: 2})
	require.NoError(t, err)
	assert.Equal(t, 10, tree.Stats.NodeCount)
	assert.Equal(t, 2, tree.Stats.Depth)

	_, err = memgraphSvc.BuildGraph(ctx, model.Scope{Kind: model.ScopeWorld, ID: prefix + "does-not-exist"}, opts)
	assert.Error(t, err)
}
