package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MCMTracker/pkg/config"
)

type noRoutes struct{}

func (noRoutes) RegisterRoutes(*echo.Echo) {}

type closer struct {
	closed int
	err    error
}

func (c *closer) Close() error {
	c.closed++
	return c.err
}

func TestShutdownClosesDependencies(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)

	publisher := &closer{err: errors.New("broker gone")}
	store := &closer{}
	app := New(cfg, nil, noRoutes{}, nil, nil, publisher, store)

	require.NoError(t, app.Shutdown(context.Background()))
	assert.Equal(t, 1, publisher.closed)
	assert.Equal(t, 1, store.closed)
}

func TestMetricsPath(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)

	assert.Equal(t, cfg.Metrics.Path, metricsPath(cfg))
	cfg.Metrics.Enabled = false
	assert.Empty(t, metricsPath(cfg))
}

func TestCORSFollowsConfig(t *testing.T) {
	for _, enabled := range []bool{true, false} {
		cfg, err := config.Default()
		require.NoError(t, err)
		cfg.Server.CORS = enabled
		cfg.Metrics.Enabled = false

		app := New(cfg, nil, noRoutes{}, nil, nil, nil, nil)
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set(echo.HeaderOrigin, "https://tracker.example")
		rec := httptest.NewRecorder()
		app.httpServer.Echo().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		if enabled {
			assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
		} else {
			assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
		}
	}
}
