package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_DrawCounters(t *testing.T) {
	c := NewCollector()

	c.DrawStarted("3rd")
	c.DrawStarted("3rd")
	c.DrawFinalized("3rd")
	c.Rejected("start", "already_drawn")
	c.PersistFailed("pool")
	c.SetSizes(100, 55)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.drawsStarted.WithLabelValues("3rd")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.drawsFinalized.WithLabelValues("3rd")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.rejections.WithLabelValues("start", "already_drawn")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.persistFailures.WithLabelValues("pool")))
	assert.Equal(t, 55.0, testutil.ToFloat64(c.poolSize))
	assert.Equal(t, 100.0, testutil.ToFloat64(c.rosterSize))
}

func TestCollector_GinMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c := NewCollector()

	r := gin.New()
	r.Use(c.GinMiddleware())
	r.GET("/draws/:tier", func(ctx *gin.Context) { ctx.Status(http.StatusTeapot) })
	r.GET("/metrics", gin.WrapH(c.Handler()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/draws/1st", nil))
	require.Equal(t, http.StatusTeapot, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.httpRequests.WithLabelValues("GET", "/draws/:tier", "418")))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, "prizedraw_http_requests_total"))
	assert.True(t, strings.Contains(body, "go_goroutines"))
}
