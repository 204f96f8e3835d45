package utils

import (
	"database/sql"
	"os"
	"strconv"

	_ "github.com/lib/pq"
)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// EnvInt 读取整数环境变量，缺省或非法时返回 def
func EnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func BuildPostgresDSNFromEnv() string {
	user := envOr("PG_USER", "postgres")
	dsn := "postgres://" + user
	if pass := os.Getenv("PG_PASSWORD"); pass != "" {
		dsn += ":" + pass
	}
	dsn += "@" + envOr("PG_HOST", "localhost") + ":" + envOr("PG_PORT", "5432") + "/" + envOr("PG_DB", "pipapi")
	dsn += "?sslmode=" + envOr("PG_SSLMODE", "disable")
	return dsn
}

func OpenPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(EnvInt("PG_MAX_OPEN_CONNS", 20))
	db.SetMaxIdleConns(EnvInt("PG_MAX_IDLE_CONNS", 10))
	return db, nil
}

func OpenPostgresFromEnv() (*sql.DB, error) {
	return OpenPostgres(BuildPostgresDSNFromEnv())
}
