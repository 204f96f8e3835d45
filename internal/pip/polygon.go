// 包 pip：批量点入多边形判定引擎（外环 + 洞，奇偶规则）
// 流水线：构建多边形 → 网格索引 → 边界判定 → 扫描线交点 → 环奇偶合成；每次调用独立构建，不共享可变状态。
package pip

import (
	"math"

	"github.com/pkg/errors"
)

const (
	// Epsilon 通用几何容差：退化边、水平边、顶点命中均以此判定
	Epsilon = 1e-9
	// BoundaryEpsilon 边界判定容差，比 Epsilon 更严
	BoundaryEpsilon = 1e-10
)

var (
	ErrSplitOutOfRange = errors.New("ring split exceeds vertex count")
	ErrSplitOrder      = errors.New("ring splits must be ascending")
)

// Edge 不可变线段，仅由 Polygon.Edges 持有，其它位置通过下标引用
type Edge struct {
	X1, Y1 float64
	X2, Y2 float64
}

func (e Edge) horizontal() bool { return math.Abs(e.Y1-e.Y2) < Epsilon }

// Bounds 轴对齐包围盒
type Bounds struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

func emptyBounds() Bounds {
	return Bounds{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
}

func (b *Bounds) Extend(x, y float64) {
	b.MinX = math.Min(b.MinX, x)
	b.MinY = math.Min(b.MinY, y)
	b.MaxX = math.Max(b.MaxX, x)
	b.MaxY = math.Max(b.MaxY, y)
}

func (b *Bounds) union(o Bounds) {
	b.MinX = math.Min(b.MinX, o.MinX)
	b.MinY = math.Min(b.MinY, o.MinY)
	b.MaxX = math.Max(b.MaxX, o.MaxX)
	b.MaxY = math.Max(b.MaxY, o.MaxY)
}

func (b Bounds) Contains(x, y float64) bool {
	return x >= b.MinX && x <= b.MaxX && y >= b.MinY && y <= b.MaxY
}

func (b Bounds) ContainsBounds(o Bounds) bool {
	return b.MinX <= o.MinX && b.MaxX >= o.MaxX && b.MinY <= o.MinY && b.MaxY >= o.MaxY
}

func (b Bounds) Width() float64  { return b.MaxX - b.MinX }
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// Empty 未扩展过任何点的包围盒
func (b Bounds) Empty() bool { return b.MinX > b.MaxX || b.MinY > b.MaxY }

// Ring 边存储上的半开区间视图 [Start, Start+Count)；Rings[0] 恒为外环
type Ring struct {
	Start  int
	Count  int
	Hole   bool
	Bounds Bounds
}

func (r Ring) end() int { return r.Start + r.Count }

// Polygon 一次调用内构建的只读多边形
type Polygon struct {
	Edges  []Edge
	Rings  []Ring
	Bounds Bounds

	// parents[i]：洞 i 所属外环下标；外环与无归属洞为 -1
	parents []int
}

// Parent 返回洞所属外环，未归属返回 -1
func (p *Polygon) Parent(ring int) int {
	if ring < 0 || ring >= len(p.parents) {
		return -1
	}
	return p.parents[ring]
}

// ValidateSplits 调用方入口的拆分校验；Build 本身不做越界恢复
func ValidateSplits(vertexCount int, splits []uint32) error {
	var prev uint32
	for i, s := range splits {
		if int64(s) > int64(vertexCount) {
			return errors.Wrapf(ErrSplitOutOfRange, "split[%d]=%d, vertices=%d", i, s, vertexCount)
		}
		if s < prev {
			return errors.Wrapf(ErrSplitOrder, "split[%d]=%d < split[%d]=%d", i, s, i-1, prev)
		}
		prev = s
	}
	return nil
}

// Build 由平铺顶点与环拆分构建多边形
// 约束：splits 必须已通过 ValidateSplits；末尾奇数坐标忽略；退化边静默丢弃。
func Build(vertices []float64, splits []uint32) *Polygon {
	n := len(vertices) / 2
	p := &Polygon{Bounds: emptyBounds()}
	prev := 0
	for i, s := range splits {
		p.addRing(vertices, prev, int(s), i > 0)
		prev = int(s)
	}
	if prev < n {
		p.addRing(vertices, prev, n, len(splits) > 0)
	}
	// 外环区间没有产生任何边：放入空外环占位，所有点判外，后续环仍是洞
	if len(p.Rings) > 0 && p.Rings[0].Hole {
		p.Rings = append([]Ring{{Start: 0, Bounds: emptyBounds()}}, p.Rings...)
	}
	p.parents = associateHoles(p)
	return p
}

// addRing 追加顶点区间 [from, to) 构成的环，不足一条边时跳过
// hole 由区间位置决定：第一个拆分区间是外环，其余都是洞。
func (p *Polygon) addRing(v []float64, from, to int, hole bool) {
	if to-from < 2 {
		return
	}
	start := len(p.Edges)
	b := emptyBounds()
	push := func(x1, y1, x2, y2 float64) {
		if math.Abs(x1-x2) < Epsilon && math.Abs(y1-y2) < Epsilon {
			return
		}
		p.Edges = append(p.Edges, Edge{X1: x1, Y1: y1, X2: x2, Y2: y2})
		b.Extend(x1, y1)
		b.Extend(x2, y2)
	}
	for i := from; i < to-1; i++ {
		push(v[2*i], v[2*i+1], v[2*i+2], v[2*i+3])
	}
	// 闭合边：末点回到首点
	push(v[2*(to-1)], v[2*(to-1)+1], v[2*from], v[2*from+1])
	count := len(p.Edges) - start
	if count == 0 {
		return
	}
	p.Rings = append(p.Rings, Ring{Start: start, Count: count, Hole: hole, Bounds: b})
	p.Bounds.union(b)
}
