package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-group-booking/internal/config"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func do(e *echo.Echo, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiterBlocksAfterCapacity(t *testing.T) {
	_, rdb := newRedis(t)
	cfg := config.RateLimit{Enabled: true, Capacity: 2, RefillTokens: 1, RefillInterval: time.Minute, TTL: 10 * time.Minute, Prefix: "rl"}
	lim := NewRateLimiter(cfg, rdb)

	e := echo.New()
	e.POST("/bookings", func(c echo.Context) error { return c.NoContent(http.StatusCreated) }, lim.Middleware())

	assert.Equal(t, http.StatusCreated, do(e, http.MethodPost, "/bookings").Code)
	rec := do(e, http.MethodPost, "/bookings")
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = do(e, http.MethodPost, "/bookings")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
}

func TestRateLimiterRefills(t *testing.T) {
	_, rdb := newRedis(t)
	cfg := config.RateLimit{Enabled: true, Capacity: 1, RefillTokens: 1, RefillInterval: time.Second, TTL: time.Minute, Prefix: "rl"}
	lim := NewRateLimiter(cfg, rdb)
	now := time.Unix(1_900_000_000, 0)
	lim.now = func() time.Time { return now }

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	d, err := lim.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	d, err = lim.Allow(ctx, "k")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, time.Second, d.RetryAfter)

	now = now.Add(1500 * time.Millisecond)
	d, err = lim.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestRateLimiterFailsOpen(t *testing.T) {
	mr, rdb := newRedis(t)
	mr.Close()
	lim := NewRateLimiter(config.RateLimit{Enabled: true, Capacity: 1, RefillTokens: 1, RefillInterval: time.Second, TTL: time.Minute, Prefix: "rl"}, rdb)

	e := echo.New()
	e.POST("/bookings", func(c echo.Context) error { return c.NoContent(http.StatusCreated) }, lim.Middleware())
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusCreated, do(e, http.MethodPost, "/bookings").Code)
	}
}

func TestRateLimiterDisabledWithoutRedis(t *testing.T) {
	lim := NewRateLimiter(config.RateLimit{Enabled: true, Capacity: 1}, nil)
	e := echo.New()
	e.POST("/bookings", func(c echo.Context) error { return c.NoContent(http.StatusCreated) }, lim.Middleware())
	assert.Equal(t, http.StatusCreated, do(e, http.MethodPost, "/bookings").Code)
	assert.Equal(t, http.StatusCreated, do(e, http.MethodPost, "/bookings").Code)
}

func newCachedEcho(t *testing.T, rdb *redis.Client) (*echo.Echo, *int) {
	t.Helper()
	cfg := config.Cache{Enabled: true, Methods: "GET", TTL: time.Minute, Prefix: "cache", MaxBodyBytes: 1 << 20}
	rc := NewResponseCache(cfg, rdb)
	calls := 0

	e := echo.New()
	e.Use(rc.Invalidate())
	e.GET("/movies", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, echo.Map{"calls": calls})
	}, rc.Middleware())
	e.GET("/missing", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusNotFound, echo.Map{"error": "nope"})
	}, rc.Middleware())
	e.POST("/movies", func(c echo.Context) error { return c.NoContent(http.StatusCreated) })
	return e, &calls
}

func TestResponseCacheHitAndInvalidate(t *testing.T) {
	_, rdb := newRedis(t)
	e, calls := newCachedEcho(t, rdb)

	first := do(e, http.MethodGet, "/movies")
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	second := do(e, http.MethodGet, "/movies")
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Contains(t, second.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON)
	assert.Equal(t, 1, *calls)

	assert.Equal(t, http.StatusCreated, do(e, http.MethodPost, "/movies").Code)

	third := do(e, http.MethodGet, "/movies")
	assert.Equal(t, "MISS", third.Header().Get("X-Cache"))
	assert.Equal(t, 2, *calls)
}

func TestResponseCacheSkipsErrors(t *testing.T) {
	_, rdb := newRedis(t)
	e, calls := newCachedEcho(t, rdb)

	assert.Equal(t, http.StatusNotFound, do(e, http.MethodGet, "/missing").Code)
	assert.Equal(t, http.StatusNotFound, do(e, http.MethodGet, "/missing").Code)
	assert.Equal(t, 2, *calls)
}

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(200, hdr, []byte(`{"a":1}`))
	require.NoError(t, err)

	status, got, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, 200, status)
	assert.Equal(t, hdr, got)
	assert.Equal(t, `{"a":1}`, string(body))

	_, _, _, ok = decodePayload([]byte{0, 1})
	assert.False(t, ok)
}
