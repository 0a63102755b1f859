package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/etorin/event-seat-booking/internal/config"
)

func cacheConfig() config.CacheConfig {
	return config.CacheConfig{
		Enabled:      true,
		Methods:      map[string]bool{"GET": true},
		TTL:          30 * time.Second,
		Prefix:       "cache",
		MaxBodyBytes: 1 << 20,
	}
}

func runCached(t *testing.T, mw echo.MiddlewareFunc, method, path string, handler echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath(path)
	require.NoError(t, mw(handler)(c))
	return rec
}

func okHandler(body string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSONBlob(http.StatusOK, []byte(body))
	}
}

func TestResponseCacheMissStoresBody(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	cfg := cacheConfig()
	mw := NewResponseCache(cfg, rdb)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/venues", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/venues")
	key := cacheKey(cfg.Prefix, c)

	body := `{"venues":[]}`
	mock.ExpectGet(key).RedisNil()
	mock.ExpectSetEx(key, []byte(body), cfg.TTL).SetVal("OK")

	rec := runCached(t, mw, http.MethodGet, "/v1/venues", okHandler(body))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.JSONEq(t, body, rec.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResponseCacheHitServesStoredBody(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	cfg := cacheConfig()
	mw := NewResponseCache(cfg, rdb)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/venues", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/venues")
	key := cacheKey(cfg.Prefix, c)

	cached := `{"venues":["cached"]}`
	mock.ExpectGet(key).SetVal(cached)

	rec := runCached(t, mw, http.MethodGet, "/v1/venues", func(echo.Context) error {
		t.Fatal("handler must not run on a cache hit")
		return nil
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.JSONEq(t, cached, rec.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResponseCacheSkipsNon200(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	cfg := cacheConfig()
	mw := NewResponseCache(cfg, rdb)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/venues/99", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/venues/99")
	mock.ExpectGet(cacheKey(cfg.Prefix, c)).RedisNil()

	rec := runCached(t, mw, http.MethodGet, "/v1/venues/99", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	// No SetEx was expected, so an attempted store would fail here.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResponseCacheIgnoresOtherMethods(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	mw := NewResponseCache(cacheConfig(), rdb)

	rec := runCached(t, mw, http.MethodPost, "/v1/venues", okHandler(`{}`))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResponseCacheDisabledPassesThrough(t *testing.T) {
	cfg := cacheConfig()
	cfg.Enabled = false
	mw := NewResponseCache(cfg, nil)

	rec := runCached(t, mw, http.MethodGet, "/v1/venues", okHandler(`{}`))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
}

func TestCacheKeyVariesByQuery(t *testing.T) {
	e := echo.New()

	ctxFor := func(target string) echo.Context {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		c := e.NewContext(req, httptest.NewRecorder())
		c.SetPath("/v1/events")
		return c
	}

	base := cacheKey("cache", ctxFor("/v1/events"))
	filtered := cacheKey("cache", ctxFor("/v1/events?category=concert"))
	assert.NotEqual(t, base, filtered)
	assert.Equal(t, base, cacheKey("cache", ctxFor("/v1/events")))
}

func TestRateLimiterDisabledPassesThrough(t *testing.T) {
	mw := NewRateLimiter(config.RateLimitConfig{Enabled: false}, nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/bookings", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, mw(okHandler(`{}`))(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}

func TestRateLimiterFailsOpenOnRedisError(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	mock.MatchExpectationsInOrder(false)
	// No script expectations registered: every EVALSHA/EVAL errors out
	// and the limiter must let the request through.
	mw := NewRateLimiter(config.RateLimitConfig{
		Enabled:        true,
		Capacity:       5,
		RefillTokens:   1,
		RefillInterval: time.Second,
		TTL:            time.Minute,
		Prefix:         "ratelimit",
	}, rdb)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/bookings", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/bookings")
	require.NoError(t, mw(okHandler(`{}`))(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAsInt64(t *testing.T) {
	assert.Equal(t, int64(7), asInt64(int64(7)))
	assert.Equal(t, int64(7), asInt64(7))
	assert.Equal(t, int64(7), asInt64(7.9))
	assert.Equal(t, int64(7), asInt64("7"))
	assert.Equal(t, int64(0), asInt64("nope"))
	assert.Equal(t, int64(0), asInt64(nil))
}

