package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/lahray/ticket-payments/internal/config"
)

// cachedResponse is the envelope stored in Redis: the status plus the
// JSON body.  Only JSON responses flow through the dashboard endpoints,
// so content type is fixed rather than stored.
type cachedResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// bodyRecorder buffers the response body while passing it through, so a
// successful response can be stored after the handler returns.
type bodyRecorder struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
	limit  int
}

func (br *bodyRecorder) WriteHeader(code int) {
	br.status = code
	br.ResponseWriter.WriteHeader(code)
}

func (br *bodyRecorder) Write(b []byte) (int, error) {
	switch {
	case br.limit < 0:
		// Already over the cap; stop buffering.
	case br.limit == 0 || br.buf.Len()+len(b) <= br.limit:
		br.buf.Write(b)
	default:
		// Over the cap: the entry would be truncated, so mark the
		// response uncacheable instead.
		br.buf.Reset()
		br.limit = -1
	}
	return br.ResponseWriter.Write(b)
}

func (br *bodyRecorder) cacheable() bool {
	return br.status == http.StatusOK && br.buf.Len() > 0 && br.limit >= 0
}

// dashboardCacheKey builds the cache key from the route and the two query
// parameters the dashboard actually uses.  Normalizing here means
// ?search=ada&status=all and ?status=all&search=ada share an entry, and a
// junk parameter cannot blow up the keyspace.
func dashboardCacheKey(prefix, route string, query url.Values) string {
	parts := []string{route}
	for _, p := range []string{"status", "search"} {
		if v := query.Get(p); v != "" {
			parts = append(parts, p+"="+strings.ToLower(strings.TrimSpace(v)))
		}
	}
	sort.Strings(parts[1:])
	sum := sha1.Sum([]byte(strings.Join(parts, "&")))
	return fmt.Sprintf("%s:view:%x", prefix, sum[:8])
}

// NewRedisCache caches the dashboard's GET responses for a short TTL so a
// burst of refreshes does not hammer the record store.  Payment records
// are append-only, so a stale entry can only be missing the newest rows,
// never wrong; the short TTL bounds that window.  A nil client or a
// disabled config yields a pass-through middleware.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 15 * time.Second
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Method != http.MethodGet {
				return next(c)
			}

			key := dashboardCacheKey(cfg.Prefix, c.Path(), req.URL.Query())
			ctx := req.Context()

			if raw, err := rdb.Get(ctx, key).Bytes(); err == nil {
				var entry cachedResponse
				if json.Unmarshal(raw, &entry) == nil && entry.Status != 0 {
					c.Response().Header().Set("X-Cache", "HIT")
					return c.JSONBlob(entry.Status, entry.Body)
				}
				// Undecodable entry: drop it and fall through to the handler.
				_ = rdb.Del(ctx, key).Err()
			}

			rec := &bodyRecorder{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: cfg.MaxBodyBytes}
			c.Response().Writer = rec
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}

			if rec.cacheable() {
				entry := cachedResponse{Status: rec.status, Body: rec.buf.Bytes()}
				if raw, err := json.Marshal(entry); err == nil {
					// Detached context: the request may be done but the
					// entry is still worth storing.
					_ = rdb.SetEx(context.Background(), key, raw, ttl).Err()
				}
			}
			return nil
		}
	}
}
