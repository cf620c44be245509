// Package traversal builds bounded, de-duplicated entity graphs by
// breadth-first expansion over entity store relationships.
package traversal

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/agenthands/loregraph/internal/core/model"
	apperrors "github.com/agenthands/loregraph/internal/errors"
	"github.com/agenthands/loregraph/internal/store"
)

var tracer = otel.Tracer("github.com/agenthands/loregraph/internal/core/traversal")

const defaultFanout = 8

type Options struct {
	Depth int
	// NodeTypes restricts discovered neighbors. Roots are always kept. Nil
	// allows every type.
	NodeTypes model.NodeTypeSet
	// EdgeTypes restricts followed edges. Nil allows every type.
	EdgeTypes model.EdgeTypeSet
}

// Builder runs one traversal per call and keeps no state between calls.
type Builder struct {
	Store  store.EntityStore
	Fanout int
	Logger *zap.Logger
}

func NewBuilder(s store.EntityStore, fanout int, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{Store: s, Fanout: fanout, Logger: logger}
}

func (b *Builder) fanout() int {
	if b.Fanout < 1 {
		return defaultFanout
	}
	return b.Fanout
}

// run holds the per-request traversal context.
type run struct {
	opts     Options
	visited  map[string]bool
	nodes    []model.Node
	edges    []model.Edge
	edgeSeen map[model.EdgeKey]bool
	dropped  map[string]bool
}

// Traverse expands from roots level by level for opts.Depth levels. Nodes and
// edges are returned in discovery order, so identical store contents give
// identical graphs.
func (b *Builder) Traverse(ctx context.Context, roots []model.EntityRef, opts Options) (*model.Graph, error) {
	if opts.Depth < 0 {
		return nil, apperrors.NewValidationError("depth", fmt.Sprintf("must be >= 0, got %d", opts.Depth))
	}

	ctx, span := tracer.Start(ctx, "traversal.Traverse", trace.WithAttributes(
		attribute.Int("graph.depth", opts.Depth),
		attribute.Int("graph.roots", len(roots)),
	))
	defer span.End()

	g, err := b.traverse(ctx, roots, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("graph.nodes", len(g.Nodes)),
		attribute.Int("graph.edges", len(g.Edges)),
	)
	return g, nil
}

func (b *Builder) traverse(ctx context.Context, roots []model.EntityRef, opts Options) (*model.Graph, error) {
	r := &run{
		opts:     opts,
		visited:  make(map[string]bool),
		edgeSeen: make(map[model.EdgeKey]bool),
		dropped:  make(map[string]bool),
	}

	var unique []model.EntityRef
	for _, ref := range roots {
		if r.visited[ref.ID] {
			continue
		}
		r.visited[ref.ID] = true
		unique = append(unique, ref)
	}

	entities, err := b.lookup(ctx, unique, false)
	if err != nil {
		return nil, err
	}
	frontier := make([]model.EntityRef, 0, len(entities))
	for _, e := range entities {
		r.nodes = append(r.nodes, model.NodeFromEntity(*e, true))
		frontier = append(frontier, e.Ref())
	}

	for level := 0; level < opts.Depth && len(frontier) > 0; level++ {
		rels, err := b.expand(ctx, frontier)
		if err != nil {
			return nil, err
		}

		discovered := r.merge(frontier, rels)

		hydrated, err := b.lookup(ctx, discovered, true)
		if err != nil {
			return nil, err
		}
		next := make([]model.EntityRef, 0, len(hydrated))
		for i, e := range hydrated {
			if e == nil {
				b.Logger.Warn("dropping dangling relationship endpoint",
					zap.String("id", discovered[i].ID),
					zap.String("type", string(discovered[i].Type)),
					zap.Int("level", level+1),
				)
				r.dropped[discovered[i].ID] = true
				continue
			}
			r.nodes = append(r.nodes, model.NodeFromEntity(*e, true))
			next = append(next, e.Ref())
		}
		frontier = next
	}

	return r.graph(), nil
}

// merge folds the relationships of one level into the run in frontier order,
// then store order. It returns the newly discovered neighbors.
func (r *run) merge(frontier []model.EntityRef, rels [][]model.Relationship) []model.EntityRef {
	var discovered []model.EntityRef
	for i, ref := range frontier {
		for _, rel := range rels[i] {
			edge := model.EdgeFromRelationship(rel)
			if !r.opts.EdgeTypes.Allows(edge.Type) {
				continue
			}
			other := rel.Other(ref.ID)
			if r.dropped[other.ID] {
				continue
			}
			if !r.visited[other.ID] {
				if !r.opts.NodeTypes.Allows(other.Type) {
					continue
				}
				r.visited[other.ID] = true
				discovered = append(discovered, other)
			}
			if key := edge.Key(); !r.edgeSeen[key] {
				r.edgeSeen[key] = true
				r.edges = append(r.edges, edge)
			}
		}
	}
	return discovered
}

// graph returns the output with every edge referencing an output node.
func (r *run) graph() *model.Graph {
	present := make(map[string]bool, len(r.nodes))
	for _, n := range r.nodes {
		present[n.ID] = true
	}
	edges := make([]model.Edge, 0, len(r.edges))
	for _, e := range r.edges {
		if present[e.Source] && present[e.Target] {
			edges = append(edges, e)
		}
	}
	return &model.Graph{Nodes: r.nodes, Edges: edges}
}

// expand fetches the relationships of every frontier node. Results are
// buffered per slot so the merge order does not depend on scheduling.
func (b *Builder) expand(ctx context.Context, frontier []model.EntityRef) ([][]model.Relationship, error) {
	out := make([][]model.Relationship, len(frontier))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.fanout())
	for i, ref := range frontier {
		g.Go(func() error {
			rels, err := b.Store.GetRelationships(gctx, ref)
			if err != nil {
				return err
			}
			out[i] = rels
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, storeError(ctx, "GetRelationships", err)
	}
	return out, nil
}

// lookup resolves refs concurrently. With tolerateMissing, refs the store
// does not know come back as nil instead of failing the traversal.
func (b *Builder) lookup(ctx context.Context, refs []model.EntityRef, tolerateMissing bool) ([]*model.Entity, error) {
	out := make([]*model.Entity, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.fanout())
	for i, ref := range refs {
		g.Go(func() error {
			e, err := b.Store.GetByID(gctx, ref.Type, ref.ID)
			if err != nil {
				if tolerateMissing && apperrors.IsNotFound(err) {
					return nil
				}
				return err
			}
			out[i] = e
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, storeError(ctx, "GetByID", err)
	}
	return out, nil
}

// storeError reports cancellation of the caller's context as an upstream
// failure carrying the context error; other errors keep their type.
func storeError(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return apperrors.NewUpstreamError(op, ctxErr)
	}
	return apperrors.AsUpstream(op, err)
}
