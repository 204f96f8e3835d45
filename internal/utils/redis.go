// 包 utils：Redis / PostgreSQL 连接工具，统一环境变量读取
package utils

import (
	"os"
	"pip-api/internal/logger"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// OpenRedis 使用地址与密码打开 Redis 客户端；地址为空返回 nil
func OpenRedis(addr, pass string) *redis.Client {
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: addr, Password: pass})
}

// OpenRedisFromEnv 读取 REDIS_HOST/REDIS_PORT/REDIS_PASS/REDIS_DB
// 约束：REDIS_ENABLED=false 时返回 nil，缓存整体关闭；REDIS_DB 解析失败回退 0。
func OpenRedisFromEnv() *redis.Client {
	if os.Getenv("REDIS_ENABLED") == "false" {
		return nil
	}
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		host = "127.0.0.1"
	}
	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}
	addr := host + ":" + port
	db := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			db = n
		}
	}
	logger.L().Debug("redis_env", "addr", addr, "db", db)
	return redis.NewClient(&redis.Options{Addr: addr, Password: os.Getenv("REDIS_PASS"), DB: db})
}
