package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/huntdb95-cloud/PERSONALAUTO/pkg/metrics"
)

func serve(r *gin.Engine, path, remote string) int {
	req := httptest.NewRequest("GET", path, nil)
	if remote != "" {
		req.RemoteAddr = remote
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimitMiddleware_AllowsUnderLimit(t *testing.T) {
	before := testutil.ToFloat64(metrics.RateLimitAllowed.WithLabelValues("memory"))

	r := gin.New()
	r.Use(RateLimitMiddleware(10, 2))
	r.GET("/ok", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	require.Equal(t, http.StatusOK, serve(r, "/ok", ""))
	require.Equal(t, http.StatusOK, serve(r, "/ok", ""))

	require.Equal(t, before+2, testutil.ToFloat64(metrics.RateLimitAllowed.WithLabelValues("memory")))
}

func TestRateLimitMiddleware_BlocksWhenExceeded(t *testing.T) {
	before := testutil.ToFloat64(metrics.RateLimitRejected.WithLabelValues("memory"))

	r := gin.New()
	r.Use(RateLimitMiddleware(0.5, 1))
	r.GET("/limited", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	require.Equal(t, http.StatusOK, serve(r, "/limited", ""))
	require.Equal(t, http.StatusTooManyRequests, serve(r, "/limited", ""))
	require.Equal(t, before+1, testutil.ToFloat64(metrics.RateLimitRejected.WithLabelValues("memory")))
}

func TestRateLimitMiddleware_SeparateBucketsPerIP(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(0.5, 1))
	r.GET("/ip", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	require.Equal(t, http.StatusOK, serve(r, "/ip", "10.0.0.1:1234"))
	require.Equal(t, http.StatusTooManyRequests, serve(r, "/ip", "10.0.0.1:1234"))
	require.Equal(t, http.StatusOK, serve(r, "/ip", "10.0.0.2:1234"))
}

func TestRateLimitMiddleware_CustomKey(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddlewareWithKey(0.5, 1, func(c *gin.Context) string { return c.FullPath() }))
	r.GET("/a", func(c *gin.Context) { c.Status(200) })
	r.GET("/b", func(c *gin.Context) { c.Status(200) })

	require.Equal(t, http.StatusOK, serve(r, "/a", ""))
	require.Equal(t, http.StatusTooManyRequests, serve(r, "/a", ""))
	require.Equal(t, http.StatusOK, serve(r, "/b", ""))
}

func TestRateLimitMiddleware_InstancesDoNotShareBuckets(t *testing.T) {
	r1 := gin.New()
	r1.Use(RateLimitMiddleware(0.5, 1))
	r1.GET("/x", func(c *gin.Context) { c.Status(200) })
	r2 := gin.New()
	r2.Use(RateLimitMiddleware(0.5, 1))
	r2.GET("/x", func(c *gin.Context) { c.Status(200) })

	require.Equal(t, http.StatusOK, serve(r1, "/x", ""))
	require.Equal(t, http.StatusOK, serve(r2, "/x", ""))
}
