package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/akvarun/PassFlow/internal/config"
)

// Revision reports the current engine revision. Any successful mutation
// changes it, which moves every read onto a fresh cache key.
type Revision func() uint64

// recorder tees the response to the client and keeps a copy of the body as
// long as it stays under limit.
type recorder struct {
	http.ResponseWriter
	status   int
	buf      bytes.Buffer
	limit    int
	overflow bool
}

func (r *recorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *recorder) Write(b []byte) (int, error) {
	if !r.overflow {
		if r.limit > 0 && r.buf.Len()+len(b) > r.limit {
			r.overflow = true
			r.buf.Reset()
		} else {
			r.buf.Write(b)
		}
	}
	return r.ResponseWriter.Write(b)
}

func cacheKey(prefix string, rev uint64, c echo.Context) string {
	r := c.Request()
	sum := sha1.Sum([]byte(r.Method + " " + c.Path() + "?" + r.URL.RawQuery + "|" + strings.Join(c.ParamValues(), "/")))
	return fmt.Sprintf("%s:r%d:%x", prefix, rev, sum[:])
}

// encodeEntry packs [4 bytes status][4 bytes header length][header JSON][body].
func encodeEntry(status int, header http.Header, body []byte) ([]byte, error) {
	hdr, err := json.Marshal(header)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 8, 8+len(hdr)+len(body))
	binary.BigEndian.PutUint32(out[0:4], uint32(status))
	binary.BigEndian.PutUint32(out[4:8], uint32(len(hdr)))
	out = append(out, hdr...)
	return append(out, body...), nil
}

func decodeEntry(bs []byte) (status int, header http.Header, body []byte, ok bool) {
	if len(bs) < 8 {
		return 0, nil, nil, false
	}
	status = int(binary.BigEndian.Uint32(bs[0:4]))
	n := int(binary.BigEndian.Uint32(bs[4:8]))
	if n < 0 || 8+n > len(bs) {
		return 0, nil, nil, false
	}
	header = http.Header{}
	if n > 0 {
		if err := json.Unmarshal(bs[8:8+n], &header); err != nil {
			return 0, nil, nil, false
		}
	}
	return status, header, bs[8+n:], true
}

// NewRedisCache serves repeated reads from Redis. Entries are keyed by the
// engine revision, so a mutation never has to invalidate anything; older
// revisions simply expire after cfg.TTL. Only 200 responses are stored.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client, rev Revision) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil || rev == nil {
		return passthrough
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cfg.Methods[strings.ToUpper(c.Request().Method)] { // only cacheable methods
				return next(c)
			}
			ctx := c.Request().Context()
			key := cacheKey(cfg.Prefix, rev(), c) // revision is read before the handler runs
			resp := c.Response()

			// Hit: replay status, headers and body
			if bs, err := rdb.Get(ctx, key).Bytes(); err == nil {
				if status, hdr, body, ok := decodeEntry(bs); ok {
					for k, vals := range hdr {
						if strings.EqualFold(k, echo.HeaderContentLength) { // recomputed below
							continue
						}
						for _, v := range vals {
							resp.Header().Add(k, v)
						}
					}
					resp.Header().Set("X-Cache", "HIT")
					resp.Header().Set(echo.HeaderContentLength, strconv.Itoa(len(body)))
					resp.WriteHeader(status)
					_, err := resp.Write(body)
					return err
				}
			}

			// Miss: record while serving
			rec := &recorder{ResponseWriter: resp.Writer, status: http.StatusOK, limit: cfg.MaxBodyBytes}
			resp.Writer = rec
			resp.Header().Set("X-Cache", "MISS")
			if err := next(c); err != nil {
				return err
			}
			if rec.status != http.StatusOK || rec.overflow { // errors and oversized bodies are not stored
				return nil
			}

			hdr := resp.Header().Clone()
			hdr.Del("X-Cache")               // set per response
			hdr.Del("X-RateLimit-Remaining") // per client, never shared
			payload, err := encodeEntry(rec.status, hdr, rec.buf.Bytes())
			if err != nil {
				return nil
			}
			if err := rdb.SetEx(context.WithoutCancel(ctx), key, payload, ttl).Err(); err != nil { // store even if the client left
				c.Logger().Warnf("cache: store %s: %v", key, err)
			}
			return nil
		}
	}
}
