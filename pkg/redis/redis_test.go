package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"go.uber.org/zap"

	"github.com/almeidasudarioarthurcassius-maker/LTIP-site/config"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := NewClient(&config.RedisConfig{Addr: mr.Addr()}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewClient 失败: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestBlacklistToken(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	if err := c.BlacklistToken(ctx, "jti-1", time.Minute); err != nil {
		t.Fatalf("BlacklistToken 失败: %v", err)
	}

	ok, err := c.IsBlacklisted(ctx, "jti-1")
	if err != nil || !ok {
		t.Fatalf("期望 jti-1 在黑名单中，ok=%v err=%v", ok, err)
	}

	mr.FastForward(2 * time.Minute)
	ok, _ = c.IsBlacklisted(ctx, "jti-1")
	if ok {
		t.Error("TTL 过期后不应仍在黑名单中")
	}
}

func TestBlacklistToken_ExpiredIsNoop(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	if err := c.BlacklistToken(ctx, "jti-2", -time.Second); err != nil {
		t.Fatalf("BlacklistToken 失败: %v", err)
	}
	if ok, _ := c.IsBlacklisted(ctx, "jti-2"); ok {
		t.Error("已过期 Token 不应写入黑名单")
	}
}

func TestCheckRateLimit(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := c.CheckRateLimit(ctx, "rl:test", 3, time.Minute)
		if err != nil {
			t.Fatalf("CheckRateLimit 失败: %v", err)
		}
		if !allowed {
			t.Fatalf("第 %d 次请求应被放行", i+1)
		}
	}

	allowed, err := c.CheckRateLimit(ctx, "rl:test", 3, time.Minute)
	if err != nil {
		t.Fatalf("CheckRateLimit 失败: %v", err)
	}
	if allowed {
		t.Error("超出限额的请求应被拒绝")
	}
}

func TestNewClient_Unreachable(t *testing.T) {
	if _, err := NewClient(&config.RedisConfig{Addr: "127.0.0.1:1"}, zap.NewNop()); err == nil {
		t.Error("无法连接时应返回错误")
	}
}
