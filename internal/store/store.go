// Package store provides the read-only entity store the graph engine
// traverses, a Memgraph-backed implementation, an in-memory implementation
// for fixtures and tests, and decorators for circuit breaking and metrics.
package store

import (
	"context"

	"github.com/agenthands/loregraph/internal/core/model"
)

// EntityStore is the data source of the graph engine. Implementations return
// errors from internal/errors: NotFound for unknown ids, Upstream for backend
// failures.
type EntityStore interface {
	GetByID(ctx context.Context, t model.NodeType, id string) (*model.Entity, error)
	// GetRelationships returns outgoing and incoming relationships of ref in a
	// stable order.
	GetRelationships(ctx context.Context, ref model.EntityRef) ([]model.Relationship, error)
	// GetChildren returns the containment children of a parent, grouped by
	// child type in schema order.
	GetChildren(ctx context.Context, parentType model.NodeType, parentID string) ([]model.Entity, error)
	ListWorlds(ctx context.Context) ([]model.Entity, error)
}
