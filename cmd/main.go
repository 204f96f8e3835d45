// 程序入口：仅负责读取配置、初始化依赖并启动服务；API 注册在 internal/api 以便扩展
package main

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"pip-api/internal/api"
	"pip-api/internal/ingest"
	"pip-api/internal/logger"
	"pip-api/internal/metrics"
	"pip-api/internal/middleware"
	"pip-api/internal/migrate"
	"pip-api/internal/store"
	"pip-api/internal/utils"
	"pip-api/internal/version"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	// 日志初始化
	l := logger.Setup()
	l.Debug("log_init_ok", "version", version.Version, "commit", version.Commit)
	if err := run(); err != nil {
		l.Error("server_error", "err", err)
		os.Exit(1)
	}
}

// run 返回时已执行全部 defer（数据库、Redis 连接关闭）
func run() error {
	l := logger.L()
	apiBase := os.Getenv("API_BASE")
	if apiBase == "" {
		apiBase = "/api"
	}
	l.Debug("config_api_base", "base", apiBase)

	rc := utils.OpenRedisFromEnv()
	if rc == nil {
		l.Info("redis_disabled")
	} else {
		defer rc.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rc.Ping(ctx).Err(); err != nil {
			l.Error("redis_ping_error", "err", err)
		} else {
			l.Info("redis_ping_ok")
		}
		cancel()
	}

	// 背景：具名多边形依赖数据库；STORE_ENABLED=false 时仅提供内联分类
	var st api.PolygonStore
	if os.Getenv("STORE_ENABLED") != "false" {
		db, err := utils.OpenPostgresFromEnv()
		if err != nil {
			return errors.Wrap(err, "db open")
		}
		defer db.Close()
		l.Info("db_open_ok")
		if err := db.Ping(); err != nil {
			l.Error("db_ping_error", "err", err)
		} else {
			l.Info("db_ping_ok")
		}
		if err := migrate.EnsureSchema(db); err != nil {
			return errors.Wrap(err, "schema")
		}
		st = store.AttachDB(db)
		// 可选：按周从远程地址刷新一个具名多边形；写库后同步删除 Redis 中的旧定义
		if src, name := os.Getenv("INGEST_SRC_URL"), os.Getenv("INGEST_NAME"); src != "" && name != "" {
			ingest.StartWeekly(context.Background(), ingest.EvictOnSave(st, rc), name, src)
		}
	} else {
		l.Info("store_disabled")
	}

	cfg := api.ConfigFromEnv()
	l.Debug("config_limits", "max_points", cfg.MaxPoints, "result_ttl_s", int(cfg.ResultTTL.Seconds()), "polygon_ttl_s", int(cfg.PolygonTTL.Seconds()))

	mux := http.NewServeMux()
	// 文档注释：构建路由
	apiMux := api.BuildRoutes(st, rc, cfg)
	mux.Handle(apiBase+"/", http.StripPrefix(apiBase, apiMux))
	mux.Handle(apiBase+"/metrics", metrics.Handler())

	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":8080"
	}
	handler := logger.AccessMiddleware(l)(mux)
	handler = middleware.Wrap(handler)
	s := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	// 背景：默认明文监听，由反向代理终止 TLS；TLS_ENABLE=true 时直接提供 HTTPS
	if os.Getenv("TLS_ENABLE") == "true" {
		certPath := os.Getenv("TLS_CERT_PATH")
		keyPath := os.Getenv("TLS_KEY_PATH")
		if certPath == "" {
			certPath = filepath.Join("data", "certs", "server.crt")
		}
		if keyPath == "" {
			keyPath = filepath.Join("data", "certs", "server.key")
		}
		if err := utils.EnsureSelfSignedCert(certPath, keyPath, "pip-api.local"); err != nil {
			return errors.Wrap(err, "tls cert")
		}
		l.Info("listening_tls", "addr", addr, "cert", certPath)
		return s.ListenAndServeTLS(certPath, keyPath)
	}
	l.Info("listening", "addr", addr)
	return s.ListenAndServe()
}
