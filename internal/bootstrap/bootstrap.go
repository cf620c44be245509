// Package bootstrap wires configuration, logging and the entity store stack
// shared by the server and graphctl.
package bootstrap

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/agenthands/loregraph/internal/config"
	"github.com/agenthands/loregraph/internal/driver"
	"github.com/agenthands/loregraph/internal/logging"
	"github.com/agenthands/loregraph/internal/metrics"
	"github.com/agenthands/loregraph/internal/store"
)

const DefaultConfigPath = "config/config.toml"

// LoadConfig reads .env, the TOML file at path (CONFIG_PATH or the default
// when empty) and environment overrides.
func LoadConfig(path string) (*config.Config, error) {
	_ = godotenv.Load()

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = DefaultConfigPath
	}
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func Logger(cfg *config.Config) (*zap.Logger, error) {
	return logging.New(cfg.Log)
}

// Stack is an opened entity store and the driver behind it, if any.
type Stack struct {
	Store  store.EntityStore
	Driver driver.GraphDriver
}

func (s *Stack) Close(ctx context.Context) error {
	if s.Driver == nil {
		return nil
	}
	return s.Driver.Close(ctx)
}

// OpenStore serves the fixture at fixturePath from memory when set, and
// Memgraph otherwise. Memgraph reads go through the circuit breaker; both
// are instrumented when m is non-nil.
func OpenStore(ctx context.Context, cfg *config.Config, fixturePath string, logger *zap.Logger, m *metrics.Metrics) (*Stack, error) {
	var (
		s     store.EntityStore
		stack = &Stack{}
	)
	if fixturePath != "" {
		f, err := store.LoadFixture(fixturePath)
		if err != nil {
			return nil, err
		}
		mem, err := store.NewMemoryStore(*f)
		if err != nil {
			return nil, err
		}
		logger.Info("Serving fixture", zap.String("path", fixturePath), zap.Int("entities", len(f.Entities)))
		s = mem
	} else {
		d, err := OpenDriver(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		stack.Driver = d
		s = store.NewBreakerStore(
			store.NewMemgraphStore(d, cfg.Memgraph.QueryTimeout.Duration),
			cfg.Breaker,
			logger.Named("breaker"),
		)
	}

	if m != nil {
		s = store.NewInstrumentedStore(s, m)
	}
	stack.Store = s
	return stack, nil
}

func OpenDriver(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*driver.MemgraphDriver, error) {
	return driver.NewMemgraphDriver(ctx, cfg.Memgraph.URI, cfg.Memgraph.User, cfg.Memgraph.Password, logger.Named("memgraph"))
}
