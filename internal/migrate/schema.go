package migrate

import (
	"database/sql"
	"pip-api/internal/logger"
)

// EnsureSchema 首次运行创建多边形表；IF NOT EXISTS 保证幂等
func EnsureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS _pip_polygons (
            name TEXT PRIMARY KEY,
            vertices DOUBLE PRECISION[] NOT NULL,
            ring_splits BIGINT[] NOT NULL,
            vertex_count INT NOT NULL,
            ring_count INT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_pip_polygons_updated ON _pip_polygons(updated_at DESC)`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			logger.L().Error("schema_exec_error", "err", err)
			return err
		}
	}
	logger.L().Debug("schema_ok", "tables", 1)
	return nil
}
