package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/akvarun/PassFlow/internal/config"
)

func newContext(method, target, route string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.7")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath(route)
	return c
}

func TestRateKey(t *testing.T) {
	c := newContext(http.MethodDelete, "/v1/waitlist/7", "/v1/waitlist/:user")
	tests := []struct {
		strategy string
		want     string
	}{
		{strategy: "ip", want: "rl:ip:10.0.0.7"},
		{strategy: "route", want: "rl:route:DELETE /v1/waitlist/:user"},
		{strategy: "ip_route", want: "rl:ip:10.0.0.7:route:DELETE /v1/waitlist/:user"},
		{strategy: "", want: "rl:ip:10.0.0.7:route:DELETE /v1/waitlist/:user"},
	}
	for _, tt := range tests {
		t.Run(tt.strategy, func(t *testing.T) {
			got := rateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: tt.strategy}, c)
			if got != tt.want {
				t.Errorf("rateKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRetryAfterSeconds(t *testing.T) {
	for ms, want := range map[int64]int{-5: 0, 0: 0, 1: 1, 1000: 1, 1001: 2} {
		if got := retryAfterSeconds(ms); got != want {
			t.Errorf("retryAfterSeconds(%d) = %d, want %d", ms, got, want)
		}
	}
}

func TestCacheKeyFollowsRevision(t *testing.T) {
	c := newContext(http.MethodGet, "/v1/availability", "/v1/availability")
	a := cacheKey("cache", 3, c)
	if b := cacheKey("cache", 3, c); a != b {
		t.Errorf("same revision gave %q and %q", a, b)
	}
	if b := cacheKey("cache", 4, c); a == b {
		t.Errorf("revision change kept key %q", a)
	}
	other := newContext(http.MethodGet, "/v1/reservations", "/v1/reservations")
	if b := cacheKey("cache", 3, other); a == b {
		t.Errorf("different routes share key %q", a)
	}
}

func TestEntryEncoding(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	body := []byte(`{"seats":2,"waitlist":0}`)
	bs, err := encodeEntry(http.StatusOK, hdr, body)
	if err != nil {
		t.Fatal(err)
	}
	status, gotHdr, gotBody, ok := decodeEntry(bs)
	if !ok || status != http.StatusOK || gotHdr.Get("Content-Type") != "application/json" || !bytes.Equal(gotBody, body) {
		t.Errorf("decodeEntry() = %d %v %q %v", status, gotHdr, gotBody, ok)
	}
	if _, _, _, ok := decodeEntry(bs[:6]); ok {
		t.Error("decodeEntry() accepted a truncated entry")
	}
}

func TestRecorderOverflow(t *testing.T) {
	rec := &recorder{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK, limit: 4}
	rec.Write([]byte("abc"))
	if rec.overflow {
		t.Fatal("overflow after 3 of 4 bytes")
	}
	rec.Write([]byte("de"))
	if !rec.overflow || rec.buf.Len() != 0 {
		t.Errorf("overflow = %v, buffered = %d", rec.overflow, rec.buf.Len())
	}
}

func TestDisabledMiddlewaresPassThrough(t *testing.T) {
	called := 0
	next := func(c echo.Context) error { called++; return c.NoContent(http.StatusNoContent) }

	c := newContext(http.MethodGet, "/v1/availability", "/v1/availability")
	if err := NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil)(next)(c); err != nil {
		t.Fatal(err)
	}
	if err := NewRedisCache(config.CacheConfig{Enabled: true}, nil, func() uint64 { return 1 })(next)(c); err != nil {
		t.Fatal(err)
	}
	if called != 2 {
		t.Errorf("next called %d times, want 2", called)
	}
}
