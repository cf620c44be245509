package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/agenthands/loregraph/internal/core/model"
	"github.com/agenthands/loregraph/internal/metrics"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[graph]\nmax_depth = 4\ndefault_depth = 1\n"), 0o600))
	t.Setenv("GRAPH_FANOUT", "3")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Graph.MaxDepth)
	assert.Equal(t, 3, cfg.Graph.Fanout)
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[graph]\nmax_depth = 1\n"), 0o600))

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestOpenStore_Fixture(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)

	stack, err := OpenStore(context.Background(), cfg, "../../testdata/campaign.yaml", zap.NewNop(), metrics.New())
	require.NoError(t, err)
	defer stack.Close(context.Background())

	assert.Nil(t, stack.Driver)
	e, err := stack.Store.GetByID(context.Background(), model.NodeWorld, "w1")
	require.NoError(t, err)
	assert.Equal(t, "Eldoria", e.Name)
}
