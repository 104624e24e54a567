package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/cinema-group-booking/internal/config"
)

// captureWriter captures response body/status while forwarding to the client.
type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
	size   int64
	limit  int64
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	if cw.size+int64(len(b)) <= cw.limit {
		cw.buf.Write(b)
	}
	cw.size += int64(len(b))
	return cw.ResponseWriter.Write(b)
}

func (cw *captureWriter) overflow() bool { return cw.size > cw.limit }

// ResponseCache stores successful read responses in Redis.  Every key
// embeds a generation number; any successful write through Invalidate
// bumps the generation so earlier entries are never served again and
// simply expire.
type ResponseCache struct {
	cfg     config.Cache
	rdb     *redis.Client
	methods map[string]bool
}

// NewResponseCache constructs a ResponseCache.  rdb may be nil, which
// disables caching.
func NewResponseCache(cfg config.Cache, rdb *redis.Client) *ResponseCache {
	return &ResponseCache{cfg: cfg, rdb: rdb, methods: cfg.MethodSet()}
}

func (rc *ResponseCache) enabled() bool { return rc.cfg.Enabled && rc.rdb != nil }

func (rc *ResponseCache) generationKey() string { return rc.cfg.Prefix + ":gen" }

// key builds prefix:generation:sha1(method route path query).
func (rc *ResponseCache) key(ctx context.Context, c echo.Context) (string, error) {
	gen, err := rc.rdb.Get(ctx, rc.generationKey()).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	r := c.Request()
	sum := sha1.Sum([]byte(strings.Join([]string{r.Method, c.Path(), r.URL.Path, r.URL.RawQuery}, "\x00")))
	return fmt.Sprintf("%s:%d:%x", rc.cfg.Prefix, gen, sum[:]), nil
}

// encodePayload packs: [4 bytes status][4 bytes headerLen][headerJSON][body]
func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
	hdrJSON, err := json.Marshal(header)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 8+len(hdrJSON)+len(body))
	binary.BigEndian.PutUint32(out[0:4], uint32(status))
	binary.BigEndian.PutUint32(out[4:8], uint32(len(hdrJSON)))
	copy(out[8:], hdrJSON)
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

// Middleware serves cached 200 responses and stores fresh ones.  Bodies
// larger than MaxBodyBytes are passed through without caching.
func (rc *ResponseCache) Middleware() echo.MiddlewareFunc {
	if !rc.enabled() {
		return passThrough
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !rc.methods[strings.ToUpper(c.Request().Method)] {
				return next(c)
			}
			ctx := c.Request().Context()
			key, err := rc.key(ctx, c)
			if err != nil {
				c.Logger().Warnf("cache: redis error: %v", err)
				return next(c)
			}

			if bs, err := rc.rdb.Get(ctx, key).Bytes(); err == nil {
				if status, hdr, body, ok := decodePayload(bs); ok {
					for k, vals := range hdr {
						if strings.EqualFold(k, "Content-Length") || strings.EqualFold(k, echo.HeaderXRequestID) {
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
			}

			cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: int64(rc.cfg.MaxBodyBytes)}
			c.Response().Writer = cw
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}
			if cw.status != http.StatusOK || cw.overflow() {
				return nil
			}
			hdr := c.Response().Header().Clone()
			hdr.Del("X-Cache")
			payload, err := encodePayload(cw.status, hdr, cw.buf.Bytes())
			if err != nil {
				return nil
			}
			if err := rc.rdb.Set(context.WithoutCancel(ctx), key, payload, rc.cfg.TTL).Err(); err != nil {
				c.Logger().Warnf("cache: store %s: %v", key, err)
			}
			return nil
		}
	}
}

// Invalidate bumps the cache generation after every successful request
// whose method is not cacheable, so reads never outlive a write.
func (rc *ResponseCache) Invalidate() echo.MiddlewareFunc {
	if !rc.enabled() {
		return passThrough
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if rc.methods[strings.ToUpper(c.Request().Method)] {
				return err
			}
			if status := c.Response().Status; err == nil && status >= 200 && status < 300 {
				if ierr := rc.rdb.Incr(context.WithoutCancel(c.Request().Context()), rc.generationKey()).Err(); ierr != nil {
					c.Logger().Warnf("cache: invalidate: %v", ierr)
				}
			}
			return err
		}
	}
}
