package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// window 滑动窗口计数器，按 key（客户端 IP）记录请求时间
type window struct {
	mu     sync.Mutex
	size   time.Duration
	max    int
	events map[string][]time.Time
}

func newWindow(max int, size time.Duration) *window {
	return &window{size: size, max: max, events: make(map[string][]time.Time)}
}

// allow 记录一次请求，超过上限返回 false
func (w *window) allow(key string, now time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	ts := prune(w.events[key], now.Add(-w.size))
	if len(ts) >= w.max {
		w.events[key] = ts
		return false
	}
	w.events[key] = append(ts, now)
	return true
}

// sweep 清理过期数据
func (w *window) sweep(now time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	cutoff := now.Add(-w.size)
	for key, ts := range w.events {
		if ts = prune(ts, cutoff); len(ts) == 0 {
			delete(w.events, key)
		} else {
			w.events[key] = ts
		}
	}
}

func prune(ts []time.Time, cutoff time.Time) []time.Time {
	kept := ts[:0]
	for _, t := range ts {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}

// RateLimit 每 IP 在 period 内最多 max 次请求，超过返回 429
// max<=0 时不限流
func RateLimit(max int, period time.Duration) gin.HandlerFunc {
	if max <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	w := newWindow(max, period)
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for now := range ticker.C {
			w.sweep(now)
		}
	}()

	return func(c *gin.Context) {
		if !w.allow(c.ClientIP(), time.Now()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":    http.StatusTooManyRequests,
				"message": "请求过于频繁，请稍后再试",
			})
			return
		}
		c.Next()
	}
}
