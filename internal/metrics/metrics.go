package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ClassifyRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pipapi_classify_requests_total",
		Help: "Total number of classify requests by source (inline|stored)",
	}, []string{"source"})
	ClassifyDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pipapi_classify_duration_ms",
		Help:    "Classify duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 5000},
	})
	PointsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pipapi_points_total",
		Help: "Total number of classified points",
	})
	InsidePointsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pipapi_inside_points_total",
		Help: "Total number of points classified inside",
	})
	BoundaryPointsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pipapi_boundary_points_total",
		Help: "Total number of points that hit a ring edge",
	})
	RejectedPointsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pipapi_bbox_rejected_points_total",
		Help: "Total number of points rejected by the polygon bounding box",
	})
	ScanCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pipapi_scan_cache_hits_total",
		Help: "Total scanline cache hits",
	})
	ScanCacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pipapi_scan_cache_misses_total",
		Help: "Total scanline cache misses",
	})
	RedisHitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pipapi_redis_hits_total",
		Help: "Total redis cache hits by kind (result|polygon)",
	}, []string{"kind"})
	RedisMissesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pipapi_redis_misses_total",
		Help: "Total redis cache misses by kind (result|polygon)",
	}, []string{"kind"})
	InvalidRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pipapi_invalid_requests_total",
		Help: "Total rejected requests by reason",
	}, []string{"reason"})
	PolygonWritesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pipapi_polygon_writes_total",
		Help: "Stored polygon writes by op (put|delete)",
	}, []string{"op"})
)

func init() {
	prometheus.MustRegister(ClassifyRequestsTotal)
	prometheus.MustRegister(ClassifyDurationMs)
	prometheus.MustRegister(PointsTotal)
	prometheus.MustRegister(InsidePointsTotal)
	prometheus.MustRegister(BoundaryPointsTotal)
	prometheus.MustRegister(RejectedPointsTotal)
	prometheus.MustRegister(ScanCacheHitsTotal)
	prometheus.MustRegister(ScanCacheMissesTotal)
	prometheus.MustRegister(RedisHitsTotal)
	prometheus.MustRegister(RedisMissesTotal)
	prometheus.MustRegister(InvalidRequestsTotal)
	prometheus.MustRegister(PolygonWritesTotal)
}

// Handler 暴露已注册指标，主入口挂载到 {API_BASE}/metrics
func Handler() http.Handler { return promhttp.Handler() }
