package store

import (
	"context"

	"github.com/agenthands/loregraph/internal/core/model"
	apperrors "github.com/agenthands/loregraph/internal/errors"
	"github.com/agenthands/loregraph/internal/metrics"
)

// InstrumentedStore counts store calls by operation and outcome.
type InstrumentedStore struct {
	next    EntityStore
	metrics *metrics.Metrics
}

func NewInstrumentedStore(next EntityStore, m *metrics.Metrics) *InstrumentedStore {
	return &InstrumentedStore{next: next, metrics: m}
}

func (s *InstrumentedStore) observe(op string, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case apperrors.IsNotFound(err):
		outcome = "not_found"
	default:
		outcome = "error"
	}
	s.metrics.ObserveStoreCall(op, outcome)
}

func (s *InstrumentedStore) GetByID(ctx context.Context, t model.NodeType, id string) (*model.Entity, error) {
	e, err := s.next.GetByID(ctx, t, id)
	s.observe("GetByID", err)
	return e, err
}

func (s *InstrumentedStore) GetRelationships(ctx context.Context, ref model.EntityRef) ([]model.Relationship, error) {
	rels, err := s.next.GetRelationships(ctx, ref)
	s.observe("GetRelationships", err)
	return rels, err
}

func (s *InstrumentedStore) GetChildren(ctx context.Context, parentType model.NodeType, parentID string) ([]model.Entity, error) {
	children, err := s.next.GetChildren(ctx, parentType, parentID)
	s.observe("GetChildren", err)
	return children, err
}

func (s *InstrumentedStore) ListWorlds(ctx context.Context) ([]model.Entity, error) {
	worlds, err := s.next.ListWorlds(ctx)
	s.observe("ListWorlds", err)
	return worlds, err
}
