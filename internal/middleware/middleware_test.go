package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/annel0/voxel-battle/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T) (*gin.Engine, *PrometheusMiddleware, *prometheus.Registry) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg := prometheus.NewRegistry()
	pm := NewPrometheusMiddleware("test_api", reg)

	r := gin.New()
	r.Use(NewRequestLogger(logging.GetComponentLogger("http-test")).Handler(), pm.Handler())
	r.GET("/ok", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(TraceIDKey))
	})
	r.GET("/fail", func(c *gin.Context) {
		c.Status(http.StatusInternalServerError)
	})
	pm.RegisterMetricsEndpoint(r, reg)
	return r, pm, reg
}

func TestRequestLogger_TraceID(t *testing.T) {
	r, _, _ := newRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))

	require.Equal(t, http.StatusOK, w.Code)
	traceID := w.Header().Get("X-Trace-ID")
	assert.NotEmpty(t, traceID)
	assert.Equal(t, traceID, w.Body.String(), "trace-ID доступен обработчику")
}

func TestPrometheusMiddleware_CountsErrors(t *testing.T) {
	r, pm, _ := newRouter(t)

	for i := 0; i < 3; i++ {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fail", nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))

	assert.Equal(t, 3.0, testutil.ToFloat64(pm.reqErrors.WithLabelValues("GET", "/fail", "500")))
	assert.Equal(t, 0.0, testutil.ToFloat64(pm.reqInflight))
}

func TestPrometheusMiddleware_MetricsEndpoint(t *testing.T) {
	r, _, _ := newRouter(t)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "test_api_http_request_duration_seconds"))
}

func TestPrometheusMiddleware_SkipsScrapes(t *testing.T) {
	r, pm, _ := newRouter(t)

	for i := 0; i < 2; i++ {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))

	assert.Equal(t, 1, testutil.CollectAndCount(pm.reqDuration), "Учтён только /ok")
}
