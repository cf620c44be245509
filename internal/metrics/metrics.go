package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors of one process. Tests build their own with a
// fresh registry.
type Metrics struct {
	Registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	BuildSeconds *prometheus.HistogramVec
	GraphNodes   *prometheus.HistogramVec
	StoreCalls   *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "loregraph_http_requests_total",
			Help: "HTTP requests by route and status code",
		}, []string{"route", "status"}),
		BuildSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "loregraph_graph_build_seconds",
			Help:    "Time to build a graph or hierarchy payload",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
		GraphNodes: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "loregraph_graph_nodes",
			Help:    "Nodes returned per payload",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}, []string{"kind"}),
		StoreCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "loregraph_store_calls_total",
			Help: "Entity store calls by operation and outcome",
		}, []string{"op", "outcome"}),
	}
}

// ObserveBuild records one finished build.
func (m *Metrics) ObserveBuild(kind string, started time.Time, nodes int) {
	if m == nil {
		return
	}
	m.BuildSeconds.WithLabelValues(kind).Observe(time.Since(started).Seconds())
	m.GraphNodes.WithLabelValues(kind).Observe(float64(nodes))
}

// ObserveStoreCall records one entity store call.
func (m *Metrics) ObserveStoreCall(op, outcome string) {
	if m == nil {
		return
	}
	m.StoreCalls.WithLabelValues(op, outcome).Inc()
}

// Middleware counts requests by matched route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequests.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
