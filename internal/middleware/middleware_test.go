package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/fyyur/internal/config"
	"github.com/iliyamo/fyyur/internal/log"
)

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func routedContext(e *echo.Echo, method, target, route string) echo.Context {
	req := httptest.NewRequest(method, target, nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.7")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath(route)
	return c
}

func TestCacheKeyStrategies(t *testing.T) {
	e := echo.New()
	cfg := config.CacheConfig{Prefix: "fyyur:cache", KeyStrategy: "route_query"}
	one := cacheKeyFrom(cfg, 0, routedContext(e, http.MethodGet, "/shows", "/shows"))
	two := cacheKeyFrom(cfg, 0, routedContext(e, http.MethodGet, "/shows?page=2", "/shows"))
	assert.NotEqual(t, one, two)
	assert.Regexp(t, `^fyyur:cache:page:0:[0-9a-f]{40}$`, one)
	assert.Equal(t, one, cacheKeyFrom(cfg, 0, routedContext(e, http.MethodGet, "/shows", "/shows")))
	assert.NotEqual(t, one, cacheKeyFrom(cfg, 1, routedContext(e, http.MethodGet, "/shows", "/shows")))

	cfg.KeyStrategy = "route"
	assert.Equal(t,
		cacheKeyFrom(cfg, 3, routedContext(e, http.MethodGet, "/venues/1", "/venues/:id")),
		cacheKeyFrom(cfg, 3, routedContext(e, http.MethodGet, "/venues/2", "/venues/:id")))
	assert.Equal(t, "fyyur:cache:gen", genKey(cfg))
}

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{echo.HeaderContentType: {echo.MIMEApplicationJSON}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"areas":[]}`))
	require.NoError(t, err)

	status, gotHdr, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, echo.MIMEApplicationJSON, gotHdr.Get(echo.HeaderContentType))
	assert.Equal(t, `{"areas":[]}`, string(body))

	_, _, _, ok = decodePayload([]byte{0, 0, 0})
	assert.False(t, ok)
	_, _, _, ok = decodePayload([]byte{0, 0, 0, 200, 0, 0, 1, 0})
	assert.False(t, ok)
}

func TestCaptureWriterLimit(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 4}
	_, err := cw.Write([]byte("abc"))
	require.NoError(t, err)
	assert.False(t, cw.truncated())
	_, err = cw.Write([]byte("def"))
	require.NoError(t, err)
	assert.True(t, cw.truncated())
	assert.Equal(t, "abcd", cw.buf.String())
	assert.Equal(t, "abcdef", rec.Body.String())
}

func TestDisabledCacheIsPassThrough(t *testing.T) {
	pc := NewPageCache(config.CacheConfig{Enabled: true}, nil, quietLogger())
	assert.NoError(t, pc.Invalidate(context.Background()))

	e := echo.New()
	c := routedContext(e, http.MethodGet, "/venues", "/venues")
	calls := 0
	h := pc.Middleware()(func(c echo.Context) error {
		calls++
		return c.String(http.StatusOK, "ok")
	})
	require.NoError(t, h(c))
	assert.Equal(t, 1, calls)
	assert.Empty(t, c.Response().Header().Get("X-Cache"))

	var nilCache *PageCache
	assert.NoError(t, nilCache.Invalidate(context.Background()))
}

func TestRateKey(t *testing.T) {
	e := echo.New()
	c := routedContext(e, http.MethodPost, "/venues/search", "/venues/search")
	cfg := config.RateLimitConfig{Prefix: "fyyur:rl"}

	cfg.KeyStrategy = "ip"
	assert.Equal(t, "fyyur:rl:ip:10.0.0.7", buildRateKey(cfg, c))
	cfg.KeyStrategy = "route"
	assert.Equal(t, "fyyur:rl:route:POST /venues/search", buildRateKey(cfg, c))
	cfg.KeyStrategy = ""
	assert.Equal(t, "fyyur:rl:ip:10.0.0.7:route:POST /venues/search", buildRateKey(cfg, c))
}

func TestRetryAfterSeconds(t *testing.T) {
	assert.Equal(t, 0, retryAfterSeconds(0))
	assert.Equal(t, 1, retryAfterSeconds(1))
	assert.Equal(t, 2, retryAfterSeconds(1500))
	assert.Equal(t, 0, retryAfterSeconds(-20))
	assert.Equal(t, int64(7), asInt64("7"))
	assert.Equal(t, int64(3), asInt64(int64(3)))
}

func TestDisabledRateLimitIsPassThrough(t *testing.T) {
	mw := NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil, quietLogger())
	c := routedContext(echo.New(), http.MethodGet, "/", "/")
	require.NoError(t, mw(func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })(c))
	assert.Equal(t, http.StatusNoContent, c.Response().Status)
}

func TestRequestLogger(t *testing.T) {
	logger, hook := test.NewNullLogger()
	e := echo.New()
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		_ = c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
	mw := RequestLogger(logrus.NewEntry(logger))

	c := routedContext(e, http.MethodGet, "/venues", "/venues")
	require.NoError(t, mw(func(c echo.Context) error { return c.String(http.StatusOK, "ok") })(c))
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, http.StatusOK, entry.Data[log.FldStatus])
	assert.Equal(t, "/venues", entry.Data[log.FldPath])

	c = routedContext(e, http.MethodGet, "/shows", "/shows")
	require.NoError(t, mw(func(c echo.Context) error { return assert.AnError })(c))
	entry = hook.LastEntry()
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, http.StatusInternalServerError, entry.Data[log.FldStatus])
}
