package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type ServerConfig struct {
	Port    string `toml:"port"`
	DevMode bool   `toml:"dev_mode"`
}

type MemgraphConfig struct {
	URI          string   `toml:"uri"`
	User         string   `toml:"user"`
	Password     string   `toml:"password"`
	QueryTimeout Duration `toml:"query_timeout"`
}

type GraphConfig struct {
	DefaultDepth          int `toml:"default_depth"`
	DefaultHierarchyDepth int `toml:"default_hierarchy_depth"`
	MaxDepth              int `toml:"max_depth"`
	Fanout                int `toml:"fanout"`
}

type BreakerConfig struct {
	MaxRequests  uint32   `toml:"max_requests"`
	Interval     Duration `toml:"interval"`
	Timeout      Duration `toml:"timeout"`
	MinRequests  uint32   `toml:"min_requests"`
	FailureRatio float64  `toml:"failure_ratio"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type AuthConfig struct {
	CallerHeader string `toml:"caller_header"`
}

type Config struct {
	Server   ServerConfig   `toml:"server"`
	Memgraph MemgraphConfig `toml:"memgraph"`
	Graph    GraphConfig    `toml:"graph"`
	Breaker  BreakerConfig  `toml:"breaker"`
	Log      LogConfig      `toml:"log"`
	Auth     AuthConfig     `toml:"auth"`
}

// Duration reads TOML strings such as "5s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080"},
		Memgraph: MemgraphConfig{
			URI:          "bolt://localhost:7687",
			QueryTimeout: Duration{5 * time.Second},
		},
		Graph: GraphConfig{
			DefaultDepth:          2,
			DefaultHierarchyDepth: 3,
			MaxDepth:              8,
			Fanout:                8,
		},
		Breaker: BreakerConfig{
			MaxRequests:  5,
			Interval:     Duration{30 * time.Second},
			Timeout:      Duration{60 * time.Second},
			MinRequests:  5,
			FailureRatio: 0.8,
		},
		Log:  LogConfig{Level: "info", Format: "json"},
		Auth: AuthConfig{CallerHeader: "X-User-ID"},
	}
}

// Load reads the TOML file at path over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault behaves like Load but falls back to the defaults when the
// file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// ApplyEnv overrides file values with environment variables when set.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := getenv("MEMGRAPH_URI"); v != "" {
		c.Memgraph.URI = v
	}
	if v := getenv("MEMGRAPH_USER"); v != "" {
		c.Memgraph.User = v
	}
	if v := getenv("MEMGRAPH_PASSWORD"); v != "" {
		c.Memgraph.Password = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := getenv("DEV_MODE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("DEV_MODE: %w", err)
		}
		c.Server.DevMode = b
	}
	if v := getenv("GRAPH_FANOUT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("GRAPH_FANOUT: %w", err)
		}
		c.Graph.Fanout = n
	}
	return nil
}

func (c *Config) Validate() error {
	g := c.Graph
	if g.MaxDepth < 0 {
		return fmt.Errorf("graph.max_depth must be >= 0, got %d", g.MaxDepth)
	}
	if g.DefaultDepth < 0 || g.DefaultDepth > g.MaxDepth {
		return fmt.Errorf("graph.default_depth must be within [0, %d], got %d", g.MaxDepth, g.DefaultDepth)
	}
	if g.DefaultHierarchyDepth < 0 || g.DefaultHierarchyDepth > g.MaxDepth {
		return fmt.Errorf("graph.default_hierarchy_depth must be within [0, %d], got %d", g.MaxDepth, g.DefaultHierarchyDepth)
	}
	if g.Fanout < 1 {
		return fmt.Errorf("graph.fanout must be >= 1, got %d", g.Fanout)
	}
	if c.Breaker.FailureRatio <= 0 || c.Breaker.FailureRatio > 1 {
		return fmt.Errorf("breaker.failure_ratio must be within (0, 1], got %v", c.Breaker.FailureRatio)
	}
	if c.Server.Port == "" {
		return errors.New("server.port is required")
	}
	return nil
}
