// Package hierarchy projects the containment schema into a strict tree.
package hierarchy

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

var tracer = otel.Tracer("github.com/agenthands/loregraph/internal/core/hierarchy")

const (
	// SyntheticRootID identifies the root of a tree spanning every world.
	SyntheticRootID    = "all-worlds"
	SyntheticRootLabel = "All Worlds"

	defaultFanout = 8
)

type Options struct {
	Depth         int
	IncludeImages bool
}

type Projector struct {
	Store  store.EntityStore
	Fanout int
	Logger *zap.Logger
}

func NewProjector(s store.EntityStore, fanout int, logger *zap.Logger) *Projector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Projector{Store: s, Fanout: fanout, Logger: logger}
}

func SyntheticRoot() model.Node {
	return model.Node{
		ID:       SyntheticRootID,
		Type:     model.NodeWorld,
		Label:    SyntheticRootLabel,
		Metadata: map[string]interface{}{"synthetic": true},
	}
}

// Project builds the containment tree under root, or under the synthetic
// root when root is nil. Nodes at opts.Depth are leaves.
func (p *Projector) Project(ctx context.Context, root *model.EntityRef, opts Options) (*model.HierarchyTree, error) {
	if opts.Depth < 0 {
		return nil, apperrors.NewValidationError("depth", fmt.Sprintf("must be >= 0, got %d", opts.Depth))
	}

	rootID := SyntheticRootID
	if root != nil {
		rootID = root.ID
	}
	ctx, span := tracer.Start(ctx, "hierarchy.Project", trace.WithAttributes(
		attribute.String("hierarchy.root", rootID),
		attribute.Int("hierarchy.depth", opts.Depth),
	))
	defer span.End()

	tree, err := p.project(ctx, root, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("hierarchy.nodes", tree.Size()))
	return tree, nil
}

func (p *Projector) project(ctx context.Context, root *model.EntityRef, opts Options) (*model.HierarchyTree, error) {
	tree := &model.HierarchyTree{Children: []*model.HierarchyTree{}}
	synthetic := root == nil
	if synthetic {
		tree.Root = SyntheticRoot()
	} else {
		e, err := p.Store.GetByID(ctx, root.Type, root.ID)
		if err != nil {
			return nil, storeError(ctx, "GetByID", err)
		}
		tree.Root = model.NodeFromEntity(*e, opts.IncludeImages)
	}

	// parentOf records where every entity was placed; the root claims itself.
	parentOf := map[string]string{tree.Root.ID: ""}
	frontier := []*model.HierarchyTree{tree}

	for level := 0; level < opts.Depth && len(frontier) > 0; level++ {
		children, err := p.children(ctx, frontier, synthetic && level == 0)
		if err != nil {
			return nil, err
		}

		var next []*model.HierarchyTree
		for i, parent := range frontier {
			for _, child := range children[i] {
				if first, placed := parentOf[child.ID]; placed {
					p.Logger.Warn("entity has more than one containment parent, keeping the first",
						zap.String("id", child.ID),
						zap.String("type", string(child.Type)),
						zap.String("parent", first),
						zap.String("ignored_parent", parent.Root.ID),
					)
					continue
				}
				parentOf[child.ID] = parent.Root.ID

				sub := &model.HierarchyTree{
					Root:     model.NodeFromEntity(child, opts.IncludeImages),
					Children: []*model.HierarchyTree{},
				}
				parent.Children = append(parent.Children, sub)
				next = append(next, sub)
			}
		}
		frontier = next
	}

	return tree, nil
}

// children fetches the children of every frontier node, buffered per slot.
// listWorlds is set for the level below the synthetic root.
func (p *Projector) children(ctx context.Context, frontier []*model.HierarchyTree, listWorlds bool) ([][]model.Entity, error) {
	out := make([][]model.Entity, len(frontier))
	if listWorlds {
		worlds, err := p.Store.ListWorlds(ctx)
		if err != nil {
			return nil, storeError(ctx, "ListWorlds", err)
		}
		out[0] = worlds
		return out, nil
	}

	fanout := p.Fanout
	if fanout < 1 {
		fanout = defaultFanout
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fanout)
	for i, node := range frontier {
		g.Go(func() error {
			children, err := p.Store.GetChildren(gctx, node.Root.Type, node.Root.ID)
			if err != nil {
				return err
			}
			out[i] = children
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, storeError(ctx, "GetChildren", err)
	}
	return out, nil
}

func storeError(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return apperrors.NewUpstreamError(op, ctxErr)
	}
	return apperrors.AsUpstream(op, err)
}
