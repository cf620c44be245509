// Package core is the graph query facade: it resolves request scopes into
// roots, runs the graph builder or hierarchy projector and formats the
// result.
package core

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/agenthands/loregraph/internal/config"
	"github.com/agenthands/loregraph/internal/core/format"
	"github.com/agenthands/loregraph/internal/core/hierarchy"
	"github.com/agenthands/loregraph/internal/core/model"
	"github.com/agenthands/loregraph/internal/core/traversal"
	apperrors "github.com/agenthands/loregraph/internal/errors"
	"github.com/agenthands/loregraph/internal/metrics"
	"github.com/agenthands/loregraph/internal/store"
)

type GraphService struct {
	Store     store.EntityStore
	Builder   *traversal.Builder
	Projector *hierarchy.Projector
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
}

func NewGraphService(s store.EntityStore, cfg config.GraphConfig, m *metrics.Metrics, logger *zap.Logger) *GraphService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GraphService{
		Store:     s,
		Builder:   traversal.NewBuilder(s, cfg.Fanout, logger.Named("traversal")),
		Projector: hierarchy.NewProjector(s, cfg.Fanout, logger.Named("hierarchy")),
		Metrics:   m,
		Logger:    logger,
	}
}

// BuildGraph builds the graph around the scope entity, or around every world
// for the global scope.
func (s *GraphService) BuildGraph(ctx context.Context, scope model.Scope, opts GraphOptions) (*format.GraphPayload, error) {
	kind := "graph"
	if scope.IsGlobal() {
		kind = "mind_map"
	}
	return s.buildGraph(ctx, kind, scope, opts)
}

// MindMap builds the global graph; scope parameters do not apply.
func (s *GraphService) MindMap(ctx context.Context, opts GraphOptions) (*format.GraphPayload, error) {
	return s.buildGraph(ctx, "mind_map", model.Scope{Kind: model.ScopeNone}, opts)
}

func (s *GraphService) buildGraph(ctx context.Context, kind string, scope model.Scope, opts GraphOptions) (*format.GraphPayload, error) {
	started := time.Now()

	roots, err := s.roots(ctx, scope)
	if err != nil {
		return nil, err
	}

	g, err := s.Builder.Traverse(ctx, roots, traversal.Options{
		Depth:     opts.Depth,
		NodeTypes: opts.NodeTypes,
		EdgeTypes: opts.EdgeTypes,
	})
	if err != nil {
		return nil, annotateScope(err, scope)
	}

	payload := format.FormatGraph(g, opts.IncludeImages, opts.Layout)
	s.Metrics.ObserveBuild(kind, started, payload.Stats.NodeCount)
	s.Logger.Debug("graph built",
		zap.String("kind", kind),
		zap.String("scope", string(scope.Kind)),
		zap.String("scope_id", scope.ID),
		zap.Int("depth", opts.Depth),
		zap.Int("nodes", payload.Stats.NodeCount),
		zap.Int("edges", payload.Stats.EdgeCount),
		zap.Duration("elapsed", time.Since(started)),
	)
	return &payload, nil
}

func (s *GraphService) roots(ctx context.Context, scope model.Scope) ([]model.EntityRef, error) {
	if ref, ok := scope.Ref(); ok {
		return []model.EntityRef{ref}, nil
	}
	worlds, err := s.Store.ListWorlds(ctx)
	if err != nil {
		return nil, apperrors.AsUpstream("ListWorlds", err)
	}
	roots := make([]model.EntityRef, 0, len(worlds))
	for _, w := range worlds {
		roots = append(roots, w.Ref())
	}
	return roots, nil
}

// Hierarchy builds the containment tree under a world or campaign, or under
// the synthetic all-worlds root for the global scope.
func (s *GraphService) Hierarchy(ctx context.Context, scope model.Scope, opts HierarchyOptions) (*format.TreePayload, error) {
	started := time.Now()

	var root *model.EntityRef
	if ref, ok := scope.Ref(); ok {
		root = &ref
	}

	tree, err := s.Projector.Project(ctx, root, hierarchy.Options{
		Depth:         opts.Depth,
		IncludeImages: opts.IncludeImages,
	})
	if err != nil {
		return nil, annotateScope(err, scope)
	}

	payload := format.FormatTree(tree, opts.IncludeImages, format.LayoutHierarchy)
	s.Metrics.ObserveBuild("hierarchy", started, payload.Stats.NodeCount)
	s.Logger.Debug("hierarchy built",
		zap.String("root", payload.Root.ID),
		zap.Int("depth", opts.Depth),
		zap.Int("nodes", payload.Stats.NodeCount),
		zap.Duration("elapsed", time.Since(started)),
	)
	return &payload, nil
}

// annotateScope names the query parameter of a root that was not found.
func annotateScope(err error, scope model.Scope) error {
	appErr := apperrors.GetAppError(err)
	if appErr == nil || appErr.Type != apperrors.ErrorTypeNotFound || scope.IsGlobal() {
		return err
	}
	if id, _ := appErr.Details["id"].(string); id != scope.ID {
		return err
	}
	param := scope.Param()
	appErr.WithField(param).WithDetails(map[string]interface{}{"param": param})
	return err
}
