// 包 store：PostgreSQL 数据访问层，持久化具名多边形定义（平铺顶点 + 环拆分）
package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"pip-api/internal/logger"

	"github.com/lib/pq"
)

var ErrNotFound = errors.New("polygon not found")

// CacheKey 多边形定义在 Redis 中的键；写入方与读穿透共用
func CacheKey(name string) string { return "pip:polygon:" + name }

// Store 数据库访问入口，持有连接池
type Store struct {
	db *sql.DB
}

func AttachDB(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

// Polygon 具名多边形定义；Splits 语义与分类接口一致
type Polygon struct {
	Name      string    `json:"name"`
	Vertices  []float64 `json:"polygon"`
	Splits    []uint32  `json:"ring_splits"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RingCount 非空环区间个数（含最后一个拆分之后的尾环）
func (p *Polygon) RingCount() int {
	n := len(p.Vertices) / 2
	prev, rings := 0, 0
	for _, s := range p.Splits {
		if int(s) > prev {
			rings++
		}
		prev = int(s)
	}
	if prev < n {
		rings++
	}
	return rings
}

// SavePolygon 按名称插入或覆盖
func (s *Store) SavePolygon(ctx context.Context, p *Polygon) error {
	splits := make([]int64, len(p.Splits))
	for i, v := range p.Splits {
		splits[i] = int64(v)
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO _pip_polygons(name, vertices, ring_splits, vertex_count, ring_count, updated_at)
        VALUES($1, $2, $3, $4, $5, NOW())
        ON CONFLICT (name) DO UPDATE SET vertices=EXCLUDED.vertices, ring_splits=EXCLUDED.ring_splits,
            vertex_count=EXCLUDED.vertex_count, ring_count=EXCLUDED.ring_count, updated_at=NOW()`,
		p.Name, pq.Array(p.Vertices), pq.Array(splits), len(p.Vertices)/2, p.RingCount())
	if err != nil {
		logger.L().Error("db_polygon_save_error", "name", p.Name, "err", err)
		return err
	}
	logger.L().Debug("db_polygon_saved", "name", p.Name, "vertices", len(p.Vertices)/2, "rings", p.RingCount())
	return nil
}

// LoadPolygon 不存在时返回 ErrNotFound
func (s *Store) LoadPolygon(ctx context.Context, name string) (*Polygon, error) {
	row := s.db.QueryRowContext(ctx, `SELECT name, vertices, ring_splits, updated_at FROM _pip_polygons WHERE name=$1`, name)
	var p Polygon
	var splits []int64
	if err := row.Scan(&p.Name, pq.Array(&p.Vertices), pq.Array(&splits), &p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			logger.L().Debug("db_polygon_miss", "name", name)
			return nil, ErrNotFound
		}
		return nil, err
	}
	p.Splits = make([]uint32, len(splits))
	for i, v := range splits {
		p.Splits[i] = uint32(v)
	}
	return &p, nil
}

// DeletePolygon 不存在时返回 ErrNotFound
func (s *Store) DeletePolygon(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM _pip_polygons WHERE name=$1`, name)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// PolygonInfo 列表项，不含几何
type PolygonInfo struct {
	Name        string    `json:"name"`
	VertexCount int       `json:"vertex_count"`
	RingCount   int       `json:"ring_count"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ListPolygons 按更新时间倒序
func (s *Store) ListPolygons(ctx context.Context, limit int) ([]PolygonInfo, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `SELECT name, vertex_count, ring_count, updated_at FROM _pip_polygons ORDER BY updated_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []PolygonInfo
	for rows.Next() {
		var it PolygonInfo
		if err := rows.Scan(&it.Name, &it.VertexCount, &it.RingCount, &it.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}
