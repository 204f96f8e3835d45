package pip

import (
	"math"
	"sort"
)

// quantizeY 缓存键：y 放大 1e6 后四舍五入
func quantizeY(y float64) int64 {
	return int64(math.Round(y * 1e6))
}

// RingCrossings 水平扫描线 y 与指定环的交点 x（升序）
// 规则：
//   - 水平边不产生单一交点；扫描线与其重合时两个端点都记入；
//   - 经过顶点时，仅当该顶点两侧最近的非水平边严格位于 y 两侧才计一次；
//   - 其余跨越 y 的边线性插值得到一个交点。
func RingCrossings(p *Polygon, ring int, y float64) []float64 {
	r := p.Rings[ring]
	var xs []float64
	for i := r.Start; i < r.end(); i++ {
		e := p.Edges[i]
		if e.horizontal() {
			if math.Abs(y-e.Y1) < Epsilon {
				xs = append(xs, math.Min(e.X1, e.X2), math.Max(e.X1, e.X2))
			}
			continue
		}
		if math.Abs(e.Y1-y) < Epsilon {
			prevY, ok := prevSide(p, r, i)
			if ok && ((prevY < y && e.Y2 > y) || (prevY > y && e.Y2 < y)) {
				xs = append(xs, e.X1)
			}
			continue
		}
		if math.Abs(e.Y2-y) < Epsilon {
			// 终点由下一条边的起点处理
			continue
		}
		if (e.Y1 < y) != (e.Y2 < y) {
			t := (y - e.Y1) / (e.Y2 - e.Y1)
			xs = append(xs, e.X1+t*(e.X2-e.X1))
		}
	}
	sort.Float64s(xs)
	return xs
}

// prevSide 沿环向前回溯，跳过水平边，返回最近一条非水平边远端的 y
func prevSide(p *Polygon, r Ring, i int) (float64, bool) {
	j := i
	for k := 0; k < r.Count-1; k++ {
		if j == r.Start {
			j = r.end() - 1
		} else {
			j--
		}
		if e := p.Edges[j]; !e.horizontal() {
			return e.Y1, true
		}
	}
	return 0, false
}

// countRight 升序交点中严格大于 x 的个数
func countRight(xs []float64, x float64) int {
	i := sort.Search(len(xs), func(i int) bool { return xs[i] > x })
	return len(xs) - i
}

// scanner 一次分类调用的扫描线引擎，持有调用级缓存
type scanner struct {
	p     *Polygon
	cache *scanCache
	state []bool
}

func newScanner(p *Polygon) *scanner {
	return &scanner{p: p, cache: newScanCache(CacheCapacity), state: make([]bool, len(p.Rings))}
}

// crossings 命中缓存直接返回，否则计算并写入
func (s *scanner) crossings(ring int, y float64, yKey int64) []float64 {
	k := scanKey{y: yKey, ring: ring}
	if xs, ok := s.cache.Get(k); ok {
		return xs
	}
	xs := RingCrossings(s.p, ring, y)
	s.cache.Set(k, xs)
	return xs
}

// odd 点在环内（奇偶规则）
func (s *scanner) odd(ring int, x, y float64, yKey int64) bool {
	return countRight(s.crossings(ring, y, yKey), x)%2 == 1
}
