// 数据导入工具：读取 GeoJSON（文件、目录或远程地址）并写入 PostgreSQL 多边形表
package main

import (
	"context"
	"os"
	"path/filepath"

	"pip-api/internal/ingest"
	"pip-api/internal/logger"
	"pip-api/internal/migrate"
	"pip-api/internal/store"
	"pip-api/internal/utils"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

var errNoSource = errors.New("set IMPORT_GEOJSON, IMPORT_DIR or IMPORT_SRC_URL")

// 环境变量：IMPORT_GEOJSON + IMPORT_NAME（单文件）、IMPORT_DIR（整目录）、IMPORT_SRC_URL + IMPORT_NAME（远程）
func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	l := logger.Setup()
	if err := run(context.Background()); err != nil {
		l.Error("import_error", "err", err)
		if errors.Is(err, errNoSource) {
			os.Exit(2)
		}
		os.Exit(1)
	}
	l.Info("import_done")
}

func run(ctx context.Context) error {
	db, err := utils.OpenPostgresFromEnv()
	if err != nil {
		return errors.Wrap(err, "db open")
	}
	defer db.Close()
	if err := migrate.EnsureSchema(db); err != nil {
		return errors.Wrap(err, "schema")
	}
	// 服务端可能已缓存旧定义：写库后删除对应 Redis 键
	rc := utils.OpenRedisFromEnv()
	if rc != nil {
		defer rc.Close()
	}
	st := ingest.EvictOnSave(store.AttachDB(db), rc)
	name := os.Getenv("IMPORT_NAME")

	switch {
	case os.Getenv("IMPORT_GEOJSON") != "":
		return ingest.ImportFile(ctx, st, name, os.Getenv("IMPORT_GEOJSON"))
	case os.Getenv("IMPORT_DIR") != "":
		n, err := ingest.ImportDir(ctx, st, os.Getenv("IMPORT_DIR"))
		logger.L().Info("import_dir_done", "count", n)
		return err
	case os.Getenv("IMPORT_SRC_URL") != "":
		if name == "" {
			return errors.New("IMPORT_NAME required with IMPORT_SRC_URL")
		}
		return ingest.FetchAndImport(ctx, st, name, os.Getenv("IMPORT_SRC_URL"))
	default:
		return errNoSource
	}
}
