package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestMiddlewareCountsRoutes(t *testing.T) {
	m := New()
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/graph", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/graph", nil)
		r.ServeHTTP(w, req)
	}
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/nope", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("/graph", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("unmatched", "404")))
}

func TestObserve(t *testing.T) {
	m := New()
	m.ObserveStoreCall("GetByID", "ok")
	m.ObserveStoreCall("GetByID", "ok")
	m.ObserveBuild("graph", time.Now(), 12)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.StoreCalls.WithLabelValues("GetByID", "ok")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.GraphNodes))

	var nilMetrics *Metrics
	assert.NotPanics(t, func() {
		nilMetrics.ObserveStoreCall("GetByID", "ok")
		nilMetrics.ObserveBuild("graph", time.Now(), 1)
	})
}
