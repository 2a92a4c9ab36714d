package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPromApp(t *testing.T) (*fiber.App, *PrometheusMiddleware) {
	t.Helper()
	reg := prometheus.NewRegistry()
	m, err := NewPrometheusMiddleware(reg)
	require.NoError(t, err)

	app := fiber.New()
	app.Use(m.Handler())
	return app, m
}

func TestPrometheusMiddleware(t *testing.T) {
	app, m := newPromApp(t)

	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Delete("/test", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/error", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusBadRequest, "bad request")
	})

	resp, _ := app.Test(httptest.NewRequest("GET", "/test", nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1),
		testutil.ToFloat64(m.requestCount.WithLabelValues("GET", "/test", "200")))

	resp, _ = app.Test(httptest.NewRequest("DELETE", "/test", nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1),
		testutil.ToFloat64(m.requestCount.WithLabelValues("DELETE", "/test", "200")))

	// Handler errors are counted under the status the error carries.
	app.Test(httptest.NewRequest("GET", "/error", nil))
	assert.Equal(t, float64(1),
		testutil.ToFloat64(m.requestCount.WithLabelValues("GET", "/error", "400")))
}

func TestPrometheusMiddleware_ExcludeMetrics(t *testing.T) {
	app, m := newPromApp(t)

	app.Get("/metrics", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	app.Test(httptest.NewRequest("GET", "/metrics", nil))

	assert.Zero(t, testutil.CollectAndCount(m.requestCount))
}

func TestPrometheusMiddleware_PathPattern(t *testing.T) {
	app, m := newPromApp(t)

	app.Get("/documents/:id", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	app.Test(httptest.NewRequest("GET", "/documents/123", nil))

	// Labeled by the route pattern, not the raw path.
	assert.Equal(t, float64(1),
		testutil.ToFloat64(m.requestCount.WithLabelValues("GET", "/documents/:id", "200")))
	assert.NotZero(t, testutil.CollectAndCount(m.requestDuration))
}
