package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/agenthands/loregraph/internal/config"
	"github.com/agenthands/loregraph/internal/core/model"
	apperrors "github.com/agenthands/loregraph/internal/errors"
)

type flakyStore struct {
	EntityStore
	err   error
	calls int
}

func (f *flakyStore) GetByID(ctx context.Context, t model.NodeType, id string) (*model.Entity, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.EntityStore.GetByID(ctx, t, id)
}

func testBreakerConfig() config.BreakerConfig {
	return config.BreakerConfig{
		MaxRequests:  1,
		Interval:     config.Duration{Duration: time.Minute},
		Timeout:      config.Duration{Duration: time.Minute},
		MinRequests:  3,
		FailureRatio: 0.5,
	}
}

func TestBreakerStore_OpensOnUpstreamFailures(t *testing.T) {
	flaky := &flakyStore{EntityStore: loadCampaign(t), err: apperrors.NewUpstreamError("GetByID", errors.New("timeout"))}
	b := NewBreakerStore(flaky, testBreakerConfig(), zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := b.GetByID(ctx, model.NodeWorld, "w1")
		assert.True(t, apperrors.IsUpstream(err))
	}
	assert.Equal(t, gobreaker.StateOpen, b.State())

	_, err := b.GetByID(ctx, model.NodeWorld, "w1")
	assert.True(t, apperrors.IsUpstream(err))
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 3, flaky.calls, "open breaker does not call the store")
}

func TestBreakerStore_NotFoundDoesNotTrip(t *testing.T) {
	b := NewBreakerStore(loadCampaign(t), testBreakerConfig(), zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := b.GetByID(ctx, model.NodeWorld, "missing")
		assert.True(t, apperrors.IsNotFound(err))
	}
	assert.Equal(t, gobreaker.StateClosed, b.State())

	e, err := b.GetByID(ctx, model.NodeWorld, "w1")
	assert.NoError(t, err)
	assert.Equal(t, "Eldoria", e.Name)

	worlds, err := b.ListWorlds(ctx)
	assert.NoError(t, err)
	assert.Len(t, worlds, 2)
}
