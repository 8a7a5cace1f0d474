package main

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/fyyur/internal/database/dbtest"
	"github.com/iliyamo/fyyur/internal/queue"
)

func TestNewServer(t *testing.T) {
	t.Setenv("CACHE_ENABLED", "true")
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	db := dbtest.Open(t)
	clock := clockwork.NewFakeClockAt(time.Date(2026, 5, 1, 20, 0, 0, 0, time.UTC))
	e, err := newServer(db, nil, queue.NopPublisher{}, clock, dbtest.Logger())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
	assert.Equal(t, "nosniff", rec.Header().Get(echo.HeaderXContentTypeOptions))

	form := url.Values{"name": {"The Fillmore"}, "city": {"San Francisco"}, "state": {"CA"}, "genres": {"Rock"}}
	req := httptest.NewRequest(http.MethodPost, "/venues/create", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/venues", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "The Fillmore")
}

func TestNewServerRejectsBadCacheConfig(t *testing.T) {
	t.Setenv("CACHE_ENABLED", "true")
	t.Setenv("CACHE_KEY_STRATEGY", "by_user")
	_, err := newServer(dbtest.Open(t), nil, queue.NopPublisher{}, clockwork.NewRealClock(), dbtest.Logger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CACHE_KEY_STRATEGY")
}

func TestCommandsAreRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["migrate"])
	assert.True(t, names["consume"])
	assert.Equal(t, "logs/activity.log", consumeCmd.Flag("log").DefValue)
}

func TestServeFailsWhenAddressIsTaken(t *testing.T) {
	taken, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer taken.Close()

	err = serve(context.Background(), echo.New(), taken.Addr().String(), dbtest.Logger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen")
}

func TestServeStopsWhenContextIsDone(t *testing.T) {
	free, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := free.Addr().String()
	require.NoError(t, free.Close())

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.GET("/healthz", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, e, addr, dbtest.Logger()) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/healthz")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("server did not stop")
	}
}
