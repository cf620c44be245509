package store

import (
	"context"
	"errors"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/agenthands/loregraph/internal/config"
	"github.com/agenthands/loregraph/internal/core/model"
	apperrors "github.com/agenthands/loregraph/internal/errors"
)

// BreakerStore stops calling a failing store. Only upstream failures count
// against the breaker; not-found and validation errors are answers.
type BreakerStore struct {
	next EntityStore
	cb   *gobreaker.CircuitBreaker
}

func NewBreakerStore(next EntityStore, cfg config.BreakerConfig, logger *zap.Logger) *BreakerStore {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "entity-store",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval.Duration,
		Timeout:     cfg.Timeout.Duration,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				apperrors.IsNotFound(err) ||
				apperrors.IsValidation(err) ||
				errors.Is(err, context.Canceled)
		},
	})
	return &BreakerStore{next: next, cb: cb}
}

func (b *BreakerStore) State() gobreaker.State {
	return b.cb.State()
}

func execute[T any](b *BreakerStore, op string, fn func() (T, error)) (T, error) {
	var zero T
	res, err := b.cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return zero, apperrors.NewUpstreamError(op, err)
	}
	if err != nil {
		return zero, err
	}
	return res.(T), nil
}

func (b *BreakerStore) GetByID(ctx context.Context, t model.NodeType, id string) (*model.Entity, error) {
	return execute(b, "GetByID", func() (*model.Entity, error) {
		return b.next.GetByID(ctx, t, id)
	})
}

func (b *BreakerStore) GetRelationships(ctx context.Context, ref model.EntityRef) ([]model.Relationship, error) {
	return execute(b, "GetRelationships", func() ([]model.Relationship, error) {
		return b.next.GetRelationships(ctx, ref)
	})
}

func (b *BreakerStore) GetChildren(ctx context.Context, parentType model.NodeType, parentID string) ([]model.Entity, error) {
	return execute(b, "GetChildren", func() ([]model.Entity, error) {
		return b.next.GetChildren(ctx, parentType, parentID)
	})
}

func (b *BreakerStore) ListWorlds(ctx context.Context) ([]model.Entity, error) {
	return execute(b, "ListWorlds", func() ([]model.Entity, error) {
		return b.next.ListWorlds(ctx)
	})
}
