package server_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	echoapi "github.com/pilab-dev/shadow-social/api/echo"
	"github.com/pilab-dev/shadow-social/cache"
	"github.com/pilab-dev/shadow-social/config"
	"github.com/pilab-dev/shadow-social/domain"
	"github.com/pilab-dev/shadow-social/internal/federation"
	"github.com/pilab-dev/shadow-social/internal/metrics"
	"github.com/pilab-dev/shadow-social/internal/server"
	"github.com/pilab-dev/shadow-social/log"
	"github.com/pilab-dev/shadow-social/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type emptyRepo struct{}

func (emptyRepo) Save(context.Context, string, *domain.FacebookOAuthData) error { return nil }

func (emptyRepo) Get(context.Context, string) (*domain.FacebookOAuthData, error) {
	return nil, domain.ErrPropertyNotFound
}

func (emptyRepo) Delete(context.Context, string) error { return domain.ErrPropertyNotFound }

func newRouter(t *testing.T, health server.HealthCheck) (http.Handler, *bytes.Buffer) {
	t.Helper()

	provider, err := federation.NewFacebookProvider(&domain.FacebookAppConfig{AppID: "app", AppSecret: "secret"})
	require.NoError(t, err)

	states := cache.NewMemoryStateStore(time.Minute)
	t.Cleanup(func() { _ = states.Close() })

	api := echoapi.NewFacebookAPI(provider, services.NewPropertyService(emptyRepo{}, nil), states,
		"http://localhost/facebook/oauth/callback")

	reg := prometheus.NewRegistry()
	metrics.InitCustomMetrics(reg)

	var buf bytes.Buffer
	logger := log.NewZerologAdapterWithWriter(&buf, zerolog.DebugLevel)

	return server.NewRouter(logger, api, reg, health), &buf
}

func TestRouter_Healthz(t *testing.T) {
	router, _ := newRouter(t, func(context.Context) error { return nil })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	router, _ = newRouter(t, func(context.Context) error { return errors.New("no mongo") })

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRouter_MetricsAndLogging(t *testing.T) {
	router, buf := newRouter(t, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/facebook/properties/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, buf.String(), `"path":"/facebook/properties/missing"`)
	assert.Contains(t, buf.String(), `"status":404`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "social_property_saves_total")
}

func TestRouter_AuthorizeRedirect(t *testing.T) {
	router, _ := newRouter(t, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/facebook/oauth/authorize?property=p", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "client_id=app")
}

func TestNewHTTPServer(t *testing.T) {
	srv := server.NewHTTPServer(&config.ServerConfig{HTTPPort: "9000", OtelServiceName: "svc"}, http.NotFoundHandler())
	assert.Equal(t, ":9000", srv.Addr)
	assert.NotNil(t, srv.Handler)
}
