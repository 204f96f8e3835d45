package api

import (
	"container/list"
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"pip-api/internal/metrics"
	"pip-api/internal/pip"
	"pip-api/internal/store"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"
)

// 文档注释：进程内已编译索引 LRU（多边形名为键）
// 背景：同一具名多边形会被反复分类，网格与环结构只需构建一次；条目带更新时间，写入或删除时主动失效。
// 约束：容量与 TTL 由调用方给定；Index 只读可并发共享。
type indexLRU struct {
	mu   sync.Mutex
	cap  int
	ttl  time.Duration
	lst  *list.List
	dict map[string]*list.Element
}

type indexEntry struct {
	name    string
	version time.Time
	ix      *pip.Index
	exp     time.Time
}

func newIndexLRU(capacity int, ttl time.Duration) *indexLRU {
	return &indexLRU{cap: capacity, ttl: ttl, lst: list.New(), dict: make(map[string]*list.Element)}
}

// Get 仅当版本一致且未过期时命中
func (c *indexLRU) Get(name string, version time.Time) (*pip.Index, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.dict[name]; ok {
		it := e.Value.(indexEntry)
		if it.version.Equal(version) && time.Now().Before(it.exp) {
			c.lst.MoveToFront(e)
			return it.ix, true
		}
		c.lst.Remove(e)
		delete(c.dict, name)
	}
	return nil, false
}

func (c *indexLRU) Set(name string, version time.Time, ix *pip.Index) {
	c.mu.Lock()
	defer c.mu.Unlock()
	it := indexEntry{name: name, version: version, ix: ix, exp: time.Now().Add(c.ttl)}
	if e, ok := c.dict[name]; ok {
		e.Value = it
		c.lst.MoveToFront(e)
		return
	}
	c.dict[name] = c.lst.PushFront(it)
	for c.lst.Len() > c.cap {
		back := c.lst.Back()
		delete(c.dict, back.Value.(indexEntry).name)
		c.lst.Remove(back)
	}
}

func (c *indexLRU) Delete(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.dict[name]; ok {
		c.lst.Remove(e)
		delete(c.dict, name)
	}
}

func (c *indexLRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lst.Len()
}

const resultKeyPrefix = "pip:result:"

// resultKey 请求体指纹；相同字节的请求结果必然相同
func resultKey(body []byte) string {
	return resultKeyPrefix + strconv.FormatUint(xxhash.Sum64(body), 16)
}

func polygonKey(name string) string { return store.CacheKey(name) }

// 文档注释：Redis 结果缓存读取
// 约束：rc 为 nil 或任何 Redis 错误都视为未命中，不阻断主流程。
func getCachedResult(ctx context.Context, rc *redis.Client, key string) (*classifyResponse, bool) {
	if rc == nil {
		return nil, false
	}
	s, err := rc.Get(ctx, key).Result()
	if err != nil || s == "" {
		metrics.RedisMissesTotal.WithLabelValues("result").Inc()
		return nil, false
	}
	var out classifyResponse
	if json.Unmarshal([]byte(s), &out) != nil {
		metrics.RedisMissesTotal.WithLabelValues("result").Inc()
		return nil, false
	}
	metrics.RedisHitsTotal.WithLabelValues("result").Inc()
	return &out, true
}

func setCachedResult(ctx context.Context, rc *redis.Client, key string, res *classifyResponse, ttl time.Duration) {
	if rc == nil || ttl <= 0 {
		return
	}
	b, _ := json.Marshal(res)
	_ = rc.Set(ctx, key, string(b), ttl).Err()
}

// loadPolygon Redis 读穿透：先查缓存，未命中回源数据库并回填
func loadPolygon(ctx context.Context, rc *redis.Client, st PolygonStore, name string, ttl time.Duration) (*store.Polygon, error) {
	if rc != nil {
		if s, _ := rc.Get(ctx, polygonKey(name)).Result(); s != "" {
			var p store.Polygon
			if json.Unmarshal([]byte(s), &p) == nil {
				metrics.RedisHitsTotal.WithLabelValues("polygon").Inc()
				return &p, nil
			}
		}
		metrics.RedisMissesTotal.WithLabelValues("polygon").Inc()
	}
	p, err := st.LoadPolygon(ctx, name)
	if err != nil {
		return nil, err
	}
	if rc != nil && ttl > 0 {
		b, _ := json.Marshal(p)
		_ = rc.Set(ctx, polygonKey(name), string(b), ttl).Err()
	}
	return p, nil
}

func evictPolygon(ctx context.Context, rc *redis.Client, name string) {
	if rc == nil {
		return
	}
	_ = rc.Del(ctx, polygonKey(name)).Err()
}
