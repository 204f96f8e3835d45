package api

import "pip-api/internal/pip"

// classifyRequest 内联多边形分类请求；boundary_is_inside 缺省为 true
type classifyRequest struct {
	Points           []float64 `json:"points"`
	Polygon          []float64 `json:"polygon"`
	RingSplits       []uint32  `json:"ring_splits"`
	BoundaryIsInside *bool     `json:"boundary_is_inside,omitempty"`
}

// storedClassifyRequest 针对已存多边形的分类请求
type storedClassifyRequest struct {
	Points           []float64 `json:"points"`
	BoundaryIsInside *bool     `json:"boundary_is_inside,omitempty"`
}

// polygonBody PUT 的 JSON 形式
type polygonBody struct {
	Polygon    []float64 `json:"polygon"`
	RingSplits []uint32  `json:"ring_splits"`
}

type statsView struct {
	Points      int `json:"points"`
	Rejected    int `json:"rejected"`
	Boundary    int `json:"boundary"`
	Inside      int `json:"inside"`
	CacheHits   int `json:"cache_hits"`
	CacheMisses int `json:"cache_misses"`
}

type classifyResponse struct {
	Result []uint32  `json:"result"`
	Stats  statsView `json:"stats"`
	Cached bool      `json:"cached,omitempty"`
}

func viewOf(st pip.Stats) statsView {
	return statsView{
		Points:      st.Points,
		Rejected:    st.Rejected,
		Boundary:    st.Boundary,
		Inside:      st.Inside,
		CacheHits:   st.CacheHits,
		CacheMisses: st.CacheMisses,
	}
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
