package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/agenthands/loregraph/internal/config"
	"github.com/agenthands/loregraph/internal/core"
	"github.com/agenthands/loregraph/internal/metrics"
)

const serviceName = "loregraph"

type Server struct {
	Graph   *core.GraphService
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

func NewServer(svc *core.GraphService, cfg *config.Config, logger *zap.Logger, m *metrics.Metrics) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.New()
	}
	return &Server{
		Graph:   svc,
		Config:  cfg,
		Logger:  logger,
		Metrics: m,
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		otelgin.Middleware(serviceName),
		s.RequestLogger(),
		s.Metrics.Middleware(),
	)

	r.GET("/healthz", s.Healthz)
	r.GET("/metrics", gin.WrapH(s.Metrics.Handler()))

	graph := r.Group("/graph", s.RequireCaller())
	graph.GET("", s.GetGraph)
	graph.GET("/mind-map", s.GetMindMap)
	graph.GET("/hierarchy", s.GetHierarchy)

	return r
}

func (s *Server) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) limits() core.Limits {
	return core.LimitsFromConfig(s.Config.Graph)
}

func (s *Server) GetGraph(c *gin.Context) {
	var q core.GraphQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		s.respondError(c, err)
		return
	}
	scope, opts, err := core.ParseGraphQuery(q, s.limits())
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.logIgnoredScopes(c, opts.IgnoredScopes)

	payload, err := s.Graph.BuildGraph(c.Request.Context(), scope, opts)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondOK(c, payload)
}

// GetMindMap serves the global graph. Scope parameters are ignored.
func (s *Server) GetMindMap(c *gin.Context) {
	var q core.GraphQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		s.respondError(c, err)
		return
	}
	_, opts, err := core.ParseGraphQuery(q, s.limits())
	if err != nil {
		s.respondError(c, err)
		return
	}

	payload, err := s.Graph.MindMap(c.Request.Context(), opts)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondOK(c, payload)
}

func (s *Server) GetHierarchy(c *gin.Context) {
	var q core.HierarchyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		s.respondError(c, err)
		return
	}
	scope, opts, err := core.ParseHierarchyQuery(q, s.limits())
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.logIgnoredScopes(c, opts.IgnoredScopes)

	payload, err := s.Graph.Hierarchy(c.Request.Context(), scope, opts)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondOK(c, payload)
}

func (s *Server) logIgnoredScopes(c *gin.Context, ignored []string) {
	if len(ignored) == 0 {
		return
	}
	s.Logger.Debug("ignoring lower precedence scope parameters",
		zap.String("request_id", c.GetString(requestIDKey)),
		zap.Strings("params", ignored),
	)
}
