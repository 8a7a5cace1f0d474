package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/fyyur/internal/config"
	"github.com/iliyamo/fyyur/internal/log"
)

// captureWriter captures response body/status while forwarding to the client.
type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
	size   int64
	limit  int64
}

func (cw *captureWriter) WriteHeader(code int) { cw.status = code; cw.ResponseWriter.WriteHeader(code) }

func (cw *captureWriter) Write(b []byte) (int, error) {
	if cw.limit <= 0 {
		cw.buf.Write(b)
	} else if remain := cw.limit - cw.size; remain > 0 {
		if int64(len(b)) <= remain {
			cw.buf.Write(b)
		} else {
			cw.buf.Write(b[:remain])
		}
	}
	cw.size += int64(len(b))
	return cw.ResponseWriter.Write(b)
}

// truncated reports whether the body outgrew the capture limit.
func (cw *captureWriter) truncated() bool { return cw.limit > 0 && cw.size > cw.limit }

// cacheKeyFrom builds a stable cache key honoring prefix/strategy.  The
// generation is part of the key so pages filled before an Invalidate are
// never read again.
func cacheKeyFrom(cfg config.CacheConfig, gen int64, c echo.Context) string {
	r := c.Request()
	route := c.Path()
	query := r.URL.RawQuery

	var parts []string
	switch strings.ToLower(cfg.KeyStrategy) {
	case config.CacheKeyRoute:
		parts = []string{"route", route}
	case config.CacheKeyPath:
		parts = []string{"path", r.URL.Path}
	case config.CacheKeyMethodQuery:
		parts = []string{"method", r.Method, "route", route, "q", query}
	default: // CacheKeyPathQuery
		parts = []string{"path", r.URL.Path, "q", query}
	}
	sum := sha1.Sum([]byte(strings.Join(parts, ":")))
	return fmt.Sprintf("%s:page:%d:%x", cfg.Prefix, gen, sum[:])
}

func genKey(cfg config.CacheConfig) string { return cfg.Prefix + ":gen" }

// encodePayload packs: [4 bytes status][4 bytes headerLen][headerJSON][body]
func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
	hdrJSON, err := json.Marshal(header)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 8+len(hdrJSON)+len(body))
	binary.BigEndian.PutUint32(out[0:4], uint32(status))
	binary.BigEndian.PutUint32(out[4:8], uint32(len(hdrJSON)))
	copy(out[8:8+len(hdrJSON)], hdrJSON)
	copy(out[8+len(hdrJSON):], body)
	return out, nil
}

func decodePayload(bs []byte) (status int, header http.Header, body []byte, ok bool) {
	if len(bs) < 8 {
		return 0, nil, nil, false
	}
	status = int(binary.BigEndian.Uint32(bs[0:4]))
	hlen := int(binary.BigEndian.Uint32(bs[4:8]))
	if hlen < 0 || 8+hlen > len(bs) {
		return 0, nil, nil, false
	}
	header = make(http.Header)
	if hlen > 0 {
		if err := json.Unmarshal(bs[8:8+hlen], &header); err != nil {
			return 0, nil, nil, false
		}
	}
	return status, header, bs[8+hlen:], true
}

// PageCache stores rendered GET pages in Redis.  Every successful command
// bumps the generation through Invalidate, which retires all earlier pages
// at once.  A nil Redis client turns both operations into no-ops.
type PageCache struct {
	cfg    config.CacheConfig
	rdb    *redis.Client
	logger *logrus.Entry
}

// NewPageCache returns a cache using rdb, which may be nil.
func NewPageCache(cfg config.CacheConfig, rdb *redis.Client, logger *logrus.Entry) *PageCache {
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Second
	}
	return &PageCache{cfg: cfg, rdb: rdb, logger: logger.WithField(log.FldComponent, "cache")}
}

func (pc *PageCache) enabled() bool { return pc != nil && pc.cfg.Enabled && pc.rdb != nil }

// Middleware serves cached pages and records successful responses.
// Headers and body are both stored so a hit is byte-identical to the miss.
func (pc *PageCache) Middleware() echo.MiddlewareFunc {
	if !pc.enabled() {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !pc.cfg.Methods[strings.ToUpper(c.Request().Method)] {
				return next(c)
			}

			ctx := c.Request().Context()
			gen, err := pc.generation(ctx)
			if err != nil {
				pc.logger.WithError(err).Debug("Cache generation lookup failed")
				return next(c)
			}
			key := cacheKeyFrom(pc.cfg, gen, c)

			if bs, err := pc.rdb.Get(ctx, key).Bytes(); err == nil {
				if status, hdr, body, ok := decodePayload(bs); ok {
					for k, vals := range hdr {
						if strings.EqualFold(k, echo.HeaderContentLength) {
							continue
						}
						for _, v := range vals {
							c.Response().Header().Add(k, v)
						}
					}
					c.Response().Header().Set("X-Cache", "HIT")
					c.Response().WriteHeader(status)
					_, err := c.Response().Write(body)
					return err
				}
			} else if err != redis.Nil {
				pc.logger.WithError(err).Debug("Cache lookup failed")
			}

			cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: int64(pc.cfg.MaxBodyBytes)}
			c.Response().Writer = cw
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}
			if cw.status != http.StatusOK || cw.truncated() {
				return nil
			}
			hdr := c.Response().Header().Clone()
			hdr.Del("X-Cache")
			hdr.Del(echo.HeaderXRequestID)
			payload, err := encodePayload(cw.status, hdr, cw.buf.Bytes())
			if err != nil {
				return nil
			}
			// a command committed while the page was rendered
			if cur, err := pc.generation(ctx); err != nil || cur != gen {
				return nil
			}
			if err := pc.rdb.SetEx(context.WithoutCancel(ctx), key, payload, pc.cfg.TTL).Err(); err != nil {
				pc.logger.WithError(err).Debug("Cache store failed")
			}
			return nil
		}
	}
}

func (pc *PageCache) generation(ctx context.Context) (int64, error) {
	gen, err := pc.rdb.Get(ctx, genKey(pc.cfg)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return gen, err
}

// Invalidate starts a new page generation and drops the pages stored so
// far.  Pages still being rendered land under the old generation.
func (pc *PageCache) Invalidate(ctx context.Context) error {
	if !pc.enabled() {
		return nil
	}
	if err := pc.rdb.Incr(ctx, genKey(pc.cfg)).Err(); err != nil {
		return err
	}
	iter := pc.rdb.Scan(ctx, 0, pc.cfg.Prefix+":page:*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return pc.rdb.Del(ctx, keys...).Err()
}
