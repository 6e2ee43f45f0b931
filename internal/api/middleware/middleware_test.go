package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/config"
	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/internal/service"
	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/pkg/jwt"
	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/pkg/redis"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestJWT() *jwt.Manager {
	return jwt.NewManager(&config.AuthConfig{JWTSecret: "test-secret-key-for-unit-testing", AccessTokenTTL: time.Hour})
}

func newTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb, err := redis.NewClient(&config.RedisConfig{Enabled: true, Addr: mr.Addr()}, zap.NewNop())
	if err != nil {
		t.Fatalf("redis.NewClient: %v", err)
	}
	t.Cleanup(func() { rdb.Close() })
	return rdb, mr
}

// sessionProbe 返回经过 Session 中间件后的会话身份
func sessionProbe(t *testing.T, mw gin.HandlerFunc, authHeader string) (*service.Identity, int) {
	t.Helper()
	var got *service.Identity

	r := gin.New()
	r.GET("/probe", mw, func(c *gin.Context) {
		if v, ok := c.Get(IdentityKey); ok {
			got = v.(*service.Identity)
		}
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest("GET", "/probe", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return got, w.Code
}

func TestSession_ValidToken(t *testing.T) {
	jwtMgr := newTestJWT()
	token, _ := jwtMgr.GenerateAccessToken("user-1", "bolsista", "bolsista")

	identity, code := sessionProbe(t, Session(jwtMgr, nil, zap.NewNop()), "Bearer "+token)
	if code != http.StatusNoContent {
		t.Fatalf("expected request to pass, got %d", code)
	}
	if identity == nil {
		t.Fatal("expected identity in context")
	}
	if identity.UserID != "user-1" || identity.Role != "bolsista" || identity.TokenID == "" {
		t.Errorf("unexpected identity %+v", identity)
	}
	if time.Until(identity.ExpiresAt) <= 0 {
		t.Error("expected ExpiresAt in the future")
	}
}

func TestSession_NeverAborts(t *testing.T) {
	mw := Session(newTestJWT(), nil, zap.NewNop())

	for _, header := range []string{"", "Basic abc", "Bearer not-a-jwt", "Bearer"} {
		identity, code := sessionProbe(t, mw, header)
		if code != http.StatusNoContent {
			t.Errorf("header %q: expected request to pass, got %d", header, code)
		}
		if identity != nil {
			t.Errorf("header %q: expected no identity", header)
		}
	}
}

func TestSession_BlacklistedToken(t *testing.T) {
	jwtMgr := newTestJWT()
	rdb, _ := newTestRedis(t)

	token, _ := jwtMgr.GenerateAccessToken("user-1", "admin", "admin")
	claims, _ := jwtMgr.ParseToken(token)
	if err := rdb.BlacklistToken(context.Background(), claims.ID, time.Hour); err != nil {
		t.Fatalf("BlacklistToken: %v", err)
	}

	identity, code := sessionProbe(t, Session(jwtMgr, rdb, zap.NewNop()), "Bearer "+token)
	if code != http.StatusNoContent {
		t.Errorf("expected request to pass, got %d", code)
	}
	if identity != nil {
		t.Error("blacklisted token must not produce an identity")
	}
}

func TestSession_RedisDownDegradesOpen(t *testing.T) {
	jwtMgr := newTestJWT()
	rdb, mr := newTestRedis(t)
	mr.Close()

	token, _ := jwtMgr.GenerateAccessToken("user-1", "admin", "admin")
	identity, _ := sessionProbe(t, Session(jwtMgr, rdb, zap.NewNop()), "Bearer "+token)
	if identity == nil {
		t.Error("expected identity when blacklist lookup fails")
	}
}

func TestRateLimit(t *testing.T) {
	rdb, _ := newTestRedis(t)

	r := gin.New()
	r.POST("/login", RateLimit(rdb, 2, time.Minute, zap.NewNop()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("POST", "/login", nil))
		codes = append(codes, w.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("unexpected status sequence %v", codes)
	}
}

func TestRateLimit_NilRedis(t *testing.T) {
	r := gin.New()
	r.POST("/login", RateLimit(nil, 1, time.Minute, zap.NewNop()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("POST", "/login", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 without redis, got %d", w.Code)
		}
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("expected propagated request id, got %q", got)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	if got := w.Header().Get("X-Request-ID"); len(got) != 36 {
		t.Errorf("expected generated uuid, got %q", got)
	}

	for _, bad := range []string{"a b", `x"><script>`, strings.Repeat("a", 65)} {
		req = httptest.NewRequest("GET", "/", nil)
		req.Header.Set("X-Request-ID", bad)
		w = httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if got := w.Header().Get("X-Request-ID"); got == bad || len(got) != 36 {
			t.Errorf("request id %q should be replaced by a uuid, got %q", bad, got)
		}
	}
}

func TestCORS_Preflight(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173/"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest("OPTIONS", "/", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("unexpected allow origin %q", got)
	}
}
