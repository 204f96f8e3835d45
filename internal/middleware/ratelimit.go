package middleware

import (
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"pip-api/internal/logger"
	"pip-api/internal/metrics"
)

// 文档注释：令牌桶限流中间件（每秒）
// 背景：批量分类请求单次可携带大量点，峰值时对入口限速，避免 CPU 与数据库被过载；按环境变量开关与速率配置。
// 约束：简化实现，不做队列排队，仅丢弃并返回 429。
type TokenBucket struct {
	capacity int
	tokens   int
	lastSec  int64
	mu       sync.Mutex
	now      func() time.Time
}

func NewTokenBucket(qps int) *TokenBucket {
	tb := &TokenBucket{capacity: qps, tokens: qps, now: time.Now}
	tb.lastSec = tb.now().Unix()
	return tb
}

func (tb *TokenBucket) allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	nowSec := tb.now().Unix()
	if tb.lastSec != nowSec {
		tb.lastSec = nowSec
		tb.tokens = tb.capacity
	}
	if tb.tokens > 0 {
		tb.tokens--
		return true
	}
	return false
}

// Limit 令牌不足时直接返回 429
func Limit(tb *TokenBucket, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !tb.allow() {
			metrics.InvalidRequestsTotal.WithLabelValues("rate_limited").Inc()
			w.Header().Set("content-type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"rate limited"}` + "\n"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Wrap 读取 RATE_LIMIT_ENABLED / RATE_LIMIT_QPS（默认 200）
func Wrap(next http.Handler) http.Handler {
	if os.Getenv("RATE_LIMIT_ENABLED") != "true" {
		return next
	}
	qps := 200
	if s := os.Getenv("RATE_LIMIT_QPS"); s != "" {
		if n, e := strconv.Atoi(s); e == nil && n > 0 {
			qps = n
		}
	}
	logger.L().Info("rate_limit_enabled", "qps", qps)
	return Limit(NewTokenBucket(qps), next)
}
