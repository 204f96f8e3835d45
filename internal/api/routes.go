// 包 api：分类与具名多边形的 HTTP 路由，主入口只负责挂载
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pip-api/internal/geojson"
	"pip-api/internal/logger"
	"pip-api/internal/metrics"
	"pip-api/internal/pip"
	"pip-api/internal/store"
	"pip-api/internal/utils"

	"github.com/redis/go-redis/v9"
)

// PolygonStore 具名多边形的持久化；*store.Store 满足该接口
type PolygonStore interface {
	SavePolygon(ctx context.Context, p *store.Polygon) error
	LoadPolygon(ctx context.Context, name string) (*store.Polygon, error)
	DeletePolygon(ctx context.Context, name string) error
	ListPolygons(ctx context.Context, limit int) ([]store.PolygonInfo, error)
}

// Config 路由层参数
type Config struct {
	MaxPoints      int
	MaxBodyBytes   int64
	ResultTTL      time.Duration
	PolygonTTL     time.Duration
	IndexCacheSize int
}

// ConfigFromEnv 读取 MAX_POINTS/MAX_BODY_MB/RESULT_CACHE_TTL_S/POLYGON_CACHE_TTL_S/INDEX_CACHE_SIZE
func ConfigFromEnv() Config {
	return Config{
		MaxPoints:      utils.EnvInt("MAX_POINTS", 1_000_000),
		MaxBodyBytes:   int64(utils.EnvInt("MAX_BODY_MB", 64)) << 20,
		ResultTTL:      time.Duration(utils.EnvInt("RESULT_CACHE_TTL_S", 600)) * time.Second,
		PolygonTTL:     time.Duration(utils.EnvInt("POLYGON_CACHE_TTL_S", 3600)) * time.Second,
		IndexCacheSize: utils.EnvInt("INDEX_CACHE_SIZE", 64),
	}
}

type handler struct {
	st  PolygonStore
	rc  *redis.Client
	cfg Config
	idx *indexLRU
}

// 文档注释：构建并返回 API 路由
// 背景：独立 ServeMux 便于在主入口挂载到 API_BASE 前缀；st 为 nil 时具名多边形接口返回 503，rc 为 nil 时关闭 Redis 缓存。
func BuildRoutes(st PolygonStore, rc *redis.Client, cfg Config) *http.ServeMux {
	if cfg.MaxPoints <= 0 {
		cfg.MaxPoints = 1_000_000
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 64 << 20
	}
	if cfg.IndexCacheSize <= 0 {
		cfg.IndexCacheSize = 64
	}
	h := &handler{st: st, rc: rc, cfg: cfg, idx: newIndexLRU(cfg.IndexCacheSize, time.Hour)}
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("POST /classify", h.classify)
	apiMux.HandleFunc("GET /polygons", h.listPolygons)
	apiMux.HandleFunc("PUT /polygons/{name}", h.putPolygon)
	apiMux.HandleFunc("GET /polygons/{name}", h.getPolygon)
	apiMux.HandleFunc("DELETE /polygons/{name}", h.deletePolygon)
	apiMux.HandleFunc("POST /polygons/{name}/classify", h.classifyStored)
	apiMux.HandleFunc("GET /healthz", h.healthz)
	return apiMux
}

func (h *handler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.cfg.MaxBodyBytes))
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			metrics.InvalidRequestsTotal.WithLabelValues("body_too_large").Inc()
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return nil, false
		}
		writeError(w, http.StatusBadRequest, "read body: "+err.Error())
		return nil, false
	}
	return body, true
}

func (h *handler) tooManyPoints(w http.ResponseWriter, points []float64) bool {
	if len(points)/2 <= h.cfg.MaxPoints {
		return false
	}
	metrics.InvalidRequestsTotal.WithLabelValues("too_many_points").Inc()
	writeError(w, http.StatusRequestEntityTooLarge, "too many points, limit "+strconv.Itoa(h.cfg.MaxPoints))
	return true
}

// 文档注释：内联多边形批量分类
// 背景：请求体整体作为缓存指纹，命中 Redis 时直接返回；未命中时编译索引并逐点判定。
// 约束：拆分越界或逆序返回 400；点数超过 MAX_POINTS 返回 413。
func (h *handler) classify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}
	metrics.ClassifyRequestsTotal.WithLabelValues("inline").Inc()
	key := resultKey(body)
	if res, hit := getCachedResult(ctx, h.rc, key); hit {
		res.Cached = true
		writeJSON(w, http.StatusOK, res)
		return
	}
	var req classifyRequest
	if err := json.Unmarshal(body, &req); err != nil {
		metrics.InvalidRequestsTotal.WithLabelValues("decode").Inc()
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}
	if h.tooManyPoints(w, req.Points) {
		return
	}
	ix, err := pip.Compile(req.Polygon, req.RingSplits)
	if err != nil {
		metrics.InvalidRequestsTotal.WithLabelValues("ring_splits").Inc()
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res := run(ix, req.Points, boolOr(req.BoundaryIsInside, true), "inline")
	setCachedResult(ctx, h.rc, key, res, h.cfg.ResultTTL)
	writeJSON(w, http.StatusOK, res)
}

func run(ix *pip.Index, points []float64, boundaryIsInside bool, source string) *classifyResponse {
	begin := time.Now()
	out, st := ix.ClassifyStats(points, boundaryIsInside)
	elapsed := time.Since(begin)
	metrics.ClassifyDurationMs.Observe(float64(elapsed.Milliseconds()))
	metrics.PointsTotal.Add(float64(st.Points))
	metrics.InsidePointsTotal.Add(float64(st.Inside))
	metrics.BoundaryPointsTotal.Add(float64(st.Boundary))
	metrics.RejectedPointsTotal.Add(float64(st.Rejected))
	metrics.ScanCacheHitsTotal.Add(float64(st.CacheHits))
	metrics.ScanCacheMissesTotal.Add(float64(st.CacheMisses))
	logger.L().Debug("classify_done",
		"source", source,
		"points", st.Points,
		"inside", st.Inside,
		"boundary", st.Boundary,
		"rejected", st.Rejected,
		"cache_hits", st.CacheHits,
		"cache_misses", st.CacheMisses,
		"duration_ms", elapsed.Milliseconds(),
	)
	return &classifyResponse{Result: out, Stats: viewOf(st)}
}

func validName(name string) bool {
	return name != "" && len(name) <= 128 && !strings.ContainsAny(name, "/ \t\n")
}

func (h *handler) needStore(w http.ResponseWriter) bool {
	if h.st != nil {
		return true
	}
	writeError(w, http.StatusServiceUnavailable, "polygon store disabled")
	return false
}

func (h *handler) storeError(w http.ResponseWriter, name string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "polygon not found: "+name)
		return
	}
	logger.L().Error("polygon_store_error", "name", name, "err", err)
	writeError(w, http.StatusInternalServerError, "store error")
}

// 文档注释：上传或覆盖具名多边形
// 背景：Content-Type 为 application/geo+json 时按 GeoJSON 解析，否则按平铺数组解析。
// 约束：至少 3 个顶点且至少一个拆分；拆分须单调且不越界。
func (h *handler) putPolygon(w http.ResponseWriter, r *http.Request) {
	if !h.needStore(w) {
		return
	}
	name := r.PathValue("name")
	if !validName(name) {
		writeError(w, http.StatusBadRequest, "invalid polygon name")
		return
	}
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}
	var p store.Polygon
	p.Name = name
	if strings.Contains(r.Header.Get("content-type"), "geo+json") {
		s, err := geojson.Parse(body)
		if err != nil {
			metrics.InvalidRequestsTotal.WithLabelValues("geojson").Inc()
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		p.Vertices, p.Splits = s.Vertices, s.Splits
	} else {
		var b polygonBody
		if err := json.Unmarshal(body, &b); err != nil {
			metrics.InvalidRequestsTotal.WithLabelValues("decode").Inc()
			writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
			return
		}
		p.Vertices, p.Splits = b.Polygon, b.RingSplits
	}
	if len(p.Vertices)/2 < 3 || len(p.Splits) == 0 {
		metrics.InvalidRequestsTotal.WithLabelValues("polygon").Inc()
		writeError(w, http.StatusBadRequest, "polygon needs at least 3 vertices and one ring split")
		return
	}
	if err := pip.ValidateSplits(len(p.Vertices)/2, p.Splits); err != nil {
		metrics.InvalidRequestsTotal.WithLabelValues("ring_splits").Inc()
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.st.SavePolygon(r.Context(), &p); err != nil {
		h.storeError(w, name, err)
		return
	}
	evictPolygon(r.Context(), h.rc, name)
	h.idx.Delete(name)
	metrics.PolygonWritesTotal.WithLabelValues("put").Inc()
	logger.L().Info("polygon_saved", "name", name, "vertices", len(p.Vertices)/2, "rings", p.RingCount())
	writeJSON(w, http.StatusOK, map[string]any{
		"name":         name,
		"vertex_count": len(p.Vertices) / 2,
		"ring_count":   p.RingCount(),
	})
}

// getPolygon ?format=geojson 时输出 GeoJSON Geometry
func (h *handler) getPolygon(w http.ResponseWriter, r *http.Request) {
	if !h.needStore(w) {
		return
	}
	name := r.PathValue("name")
	p, err := loadPolygon(r.Context(), h.rc, h.st, name, h.cfg.PolygonTTL)
	if err != nil {
		h.storeError(w, name, err)
		return
	}
	if r.URL.Query().Get("format") == "geojson" {
		b, err := geojson.Shape{Vertices: p.Vertices, Splits: p.Splits}.Marshal()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("content-type", "application/geo+json")
		w.Header().Set("cache-control", "no-store")
		_, _ = w.Write(b)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handler) listPolygons(w http.ResponseWriter, r *http.Request) {
	if !h.needStore(w) {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	items, err := h.st.ListPolygons(r.Context(), limit)
	if err != nil {
		h.storeError(w, "", err)
		return
	}
	if items == nil {
		items = []store.PolygonInfo{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"polygons": items})
}

func (h *handler) deletePolygon(w http.ResponseWriter, r *http.Request) {
	if !h.needStore(w) {
		return
	}
	name := r.PathValue("name")
	if err := h.st.DeletePolygon(r.Context(), name); err != nil {
		h.storeError(w, name, err)
		return
	}
	evictPolygon(r.Context(), h.rc, name)
	h.idx.Delete(name)
	metrics.PolygonWritesTotal.WithLabelValues("delete").Inc()
	logger.L().Info("polygon_deleted", "name", name)
	w.WriteHeader(http.StatusNoContent)
}

// 文档注释：对已存多边形分类
// 背景：定义经 Redis 读穿透获取，编译结果按 (名称, 更新时间) 缓存在进程内。
func (h *handler) classifyStored(w http.ResponseWriter, r *http.Request) {
	if !h.needStore(w) {
		return
	}
	name := r.PathValue("name")
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}
	metrics.ClassifyRequestsTotal.WithLabelValues("stored").Inc()
	var req storedClassifyRequest
	if err := json.Unmarshal(body, &req); err != nil {
		metrics.InvalidRequestsTotal.WithLabelValues("decode").Inc()
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}
	if h.tooManyPoints(w, req.Points) {
		return
	}
	p, err := loadPolygon(r.Context(), h.rc, h.st, name, h.cfg.PolygonTTL)
	if err != nil {
		h.storeError(w, name, err)
		return
	}
	ix, hit := h.idx.Get(name, p.UpdatedAt)
	if !hit {
		ix, err = pip.Compile(p.Vertices, p.Splits)
		if err != nil {
			logger.L().Error("polygon_compile_error", "name", name, "err", err)
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		h.idx.Set(name, p.UpdatedAt, ix)
	}
	writeJSON(w, http.StatusOK, run(ix, req.Points, boolOr(req.BoundaryIsInside, true), "stored"))
}

func (h *handler) healthz(w http.ResponseWriter, r *http.Request) {
	m := map[string]any{"status": "ok", "store": h.st != nil, "redis": false}
	if h.rc != nil {
		ctx, cancel := context.WithTimeout(r.Context(), time.Second)
		defer cancel()
		m["redis"] = h.rc.Ping(ctx).Err() == nil
	}
	writeJSON(w, http.StatusOK, m)
}
