package ingest

import (
	"context"

	"pip-api/internal/logger"
	"pip-api/internal/store"

	"github.com/redis/go-redis/v9"
)

// Deleter Redis 删除能力；*redis.Client 满足该接口
type Deleter interface {
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// evictingSaver 写库成功后删除 Redis 中的多边形定义，读穿透随后回源到新版本
type evictingSaver struct {
	Saver
	rc Deleter
}

// EvictOnSave 包装 Saver；rc 为 nil 时原样返回
// 约束：删除失败只记日志，不影响写库结果；缓存最迟在 TTL 到期后自愈。
func EvictOnSave(st Saver, rc Deleter) Saver {
	if rc == nil {
		return st
	}
	if c, ok := rc.(*redis.Client); ok && c == nil {
		return st
	}
	return &evictingSaver{Saver: st, rc: rc}
}

func (s *evictingSaver) SavePolygon(ctx context.Context, p *store.Polygon) error {
	if err := s.Saver.SavePolygon(ctx, p); err != nil {
		return err
	}
	if err := s.rc.Del(ctx, store.CacheKey(p.Name)).Err(); err != nil {
		logger.L().Warn("ingest_cache_evict_error", "name", p.Name, "err", err)
	}
	return nil
}
