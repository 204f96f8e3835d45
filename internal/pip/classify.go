package pip

// Stats 一次分类的计数，供日志与指标使用
type Stats struct {
	Points      int
	Rejected    int // 包围盒外直接判外
	Boundary    int // 命中边界
	Inside      int
	CacheHits   int
	CacheMisses int
}

// Index 编译后的多边形与网格，只读；每次分类新建扫描线缓存，可并发复用
type Index struct {
	poly *Polygon
	grid *Grid
}

// Compile 校验拆分并构建多边形与网格
// polygon 或 splits 为空时得到空索引，所有点判外。
func Compile(polygon []float64, splits []uint32) (*Index, error) {
	if len(polygon) < 2 || len(splits) == 0 {
		p := Build(nil, nil)
		return &Index{poly: p, grid: NewGrid(p)}, nil
	}
	if err := ValidateSplits(len(polygon)/2, splits); err != nil {
		return nil, err
	}
	p := Build(polygon, splits)
	return &Index{poly: p, grid: NewGrid(p)}, nil
}

func (ix *Index) Polygon() *Polygon { return ix.poly }
func (ix *Index) Grid() *Grid       { return ix.grid }

// Classify 按输入顺序返回每个点的 0/1 结果
func (ix *Index) Classify(points []float64, boundaryIsInside bool) []uint32 {
	out, _ := ix.ClassifyStats(points, boundaryIsInside)
	return out
}

// ClassifyStats 同 Classify，并返回本次调用的计数
// 逐点：包围盒过滤 → 边界判定 → 扫描线 + 奇偶合成。
func (ix *Index) ClassifyStats(points []float64, boundaryIsInside bool) ([]uint32, Stats) {
	n := len(points) / 2
	out := make([]uint32, n)
	st := Stats{Points: n}
	if n == 0 || len(ix.poly.Rings) == 0 {
		st.Rejected = n
		return out, st
	}
	var onBoundary uint32
	if boundaryIsInside {
		onBoundary = 1
	}
	sc := newScanner(ix.poly)
	for i := 0; i < n; i++ {
		x, y := points[2*i], points[2*i+1]
		if !ix.poly.Bounds.Contains(x, y) {
			st.Rejected++
			continue
		}
		if OnBoundary(ix.poly, ix.grid, x, y) {
			st.Boundary++
			out[i] = onBoundary
			st.Inside += int(onBoundary)
			continue
		}
		if sc.inside(x, y) {
			out[i] = 1
			st.Inside++
		}
	}
	st.CacheHits, st.CacheMisses = sc.cache.hits, sc.cache.misses
	return out, st
}

// Classify 单次调用入口：构建 → 逐点判定 → 丢弃全部中间状态
// points/polygon/splits 任一为空返回等长全 0；拆分越界或逆序返回错误且不触达构建。
func Classify(points, polygon []float64, splits []uint32, boundaryIsInside bool) ([]uint32, error) {
	n := len(points) / 2
	if n == 0 || len(polygon) == 0 || len(splits) == 0 {
		return make([]uint32, n), nil
	}
	ix, err := Compile(polygon, splits)
	if err != nil {
		return nil, err
	}
	return ix.Classify(points, boundaryIsInside), nil
}
