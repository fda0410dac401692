package ratelimit

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/dropbox/godropbox/time2"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/gateway/gwerrors"
)

// Scope 限流作用域
// 每个作用域有独立的桶和独立的速率参数
type Scope string

const (
	ScopeTenant  Scope = "tenant"
	ScopeLogin   Scope = "login"
	ScopeSignup  Scope = "signup"
	ScopeConsole Scope = "console"
)

// 操作成本：读 1 个令牌，写 2 个
const (
	CostRead  = 1
	CostWrite = 2
)

// Config 各作用域的每分钟持续速率
type Config struct {
	TenantPerMinute  int
	LoginPerMinute   int
	SignupPerMinute  int
	ConsolePerMinute int
}

// DefaultConfig 默认限流参数
func DefaultConfig() Config {
	return Config{
		TenantPerMinute:  120,
		LoginPerMinute:   5,
		SignupPerMinute:  2,
		ConsolePerMinute: 30,
	}
}

// bucket 令牌桶；每个桶有独立互斥锁，避免进程级全局锁
type bucket struct {
	mu         sync.Mutex
	tokens     float64
	capacity   float64
	rate       float64 // 每秒补充令牌数
	lastRefill time.Time
}

// Limiter 基于令牌桶的准入控制
// 惰性补充（无后台定时器）；不持久化，进程重启即重置为满容量
type Limiter struct {
	mu      sync.Mutex
	clock   time2.Clock
	buckets map[string]*bucket
	rates   map[Scope]float64 // tokens/second
}

// New 创建新的限流器
func New(cfg Config, clock time2.Clock) *Limiter {
	return &Limiter{
		clock:   clock,
		buckets: make(map[string]*bucket),
		rates: map[Scope]float64{
			ScopeTenant:  float64(cfg.TenantPerMinute) / 60.0,
			ScopeLogin:   float64(cfg.LoginPerMinute) / 60.0,
			ScopeSignup:  float64(cfg.SignupPerMinute) / 60.0,
			ScopeConsole: float64(cfg.ConsolePerMinute) / 60.0,
		},
	}
}

// Admit 尝试消费 cost 个令牌
// 先按流逝时间补充，再扣减；不足时返回 false 和凑齐令牌所需等待时间，且不扣减
func (l *Limiter) Admit(scope Scope, key string, cost int) (bool, time.Duration) {
	b := l.getBucket(scope, key)

	b.mu.Lock()
	defer b.mu.Unlock()

	now := l.clock.Now()
	elapsed := now.Sub(b.lastRefill).Seconds()
	b.tokens = math.Min(b.capacity, b.tokens+elapsed*b.rate)
	b.lastRefill = now

	needed := float64(cost)
	if b.tokens >= needed {
		b.tokens -= needed
		return true, 0
	}

	missing := needed - b.tokens
	wait := time.Duration(missing / b.rate * float64(time.Second))
	return false, wait
}

// Require 准入检查，超限返回携带 retry-after 的 RateLimitError
func (l *Limiter) Require(scope Scope, key string, cost int) error {
	allowed, wait := l.Admit(scope, key, cost)
	if allowed {
		return nil
	}

	retryAfter := int(wait/time.Second) + 1
	return gwerrors.NewRateLimit(
		fmt.Sprintf("rate limit exceeded for %s. Try again in %d seconds", scope, retryAfter),
		retryAfter,
	)
}

// Reset 清空指定作用域的桶；key 为空则清空该作用域全部（测试用）
func (l *Limiter) Reset(scope Scope, key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if key != "" {
		delete(l.buckets, bucketKey(scope, key))
		return
	}
	for k := range l.buckets {
		if len(k) > len(scope) && k[:len(scope)] == string(scope) {
			delete(l.buckets, k)
		}
	}
}

func (l *Limiter) getBucket(scope Scope, key string) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	k := bucketKey(scope, key)
	if b, ok := l.buckets[k]; ok {
		return b
	}

	rate := l.rates[scope]
	// 突发容量 = 稳态一分钟配额的两倍
	capacity := 2 * rate * 60

	b := &bucket{
		tokens:     capacity, // 新桶从满开始
		capacity:   capacity,
		rate:       rate,
		lastRefill: l.clock.Now(),
	}
	l.buckets[k] = b
	return b
}

func bucketKey(scope Scope, key string) string {
	return string(scope) + ":" + key
}
