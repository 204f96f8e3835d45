package pip

import (
	"math"
	"slices"
)

// GridSize 网格边长（GridSize×GridSize 个单元）
const GridSize = 64

// Grid 覆盖整体包围盒的均匀网格，单元内存放穿过该单元的边下标（不持有边）
// 约束：包围盒宽或高为零时网格惰性（inert），调用方需退回线性扫描。
type Grid struct {
	cells  [][]int32
	bounds Bounds
	sx, sy float64
	inert  bool
}

// NewGrid 将所有边栅格化进网格
func NewGrid(p *Polygon) *Grid {
	g := &Grid{bounds: p.Bounds}
	w, h := p.Bounds.Width(), p.Bounds.Height()
	if p.Bounds.Empty() || w < Epsilon || h < Epsilon {
		g.inert = true
		return g
	}
	g.cells = make([][]int32, GridSize*GridSize)
	g.sx = GridSize / w
	g.sy = GridSize / h
	for i, e := range p.Edges {
		idx := int32(i)
		g.traverse(e, func(cx, cy int) {
			c := &g.cells[cx*GridSize+cy]
			// 相邻两步可能落到同一单元
			if n := len(*c); n > 0 && (*c)[n-1] == idx {
				return
			}
			*c = append(*c, idx)
		})
	}
	return g
}

func (g *Grid) Inert() bool { return g.inert }

// scale 源坐标 → 网格坐标（未截断）
func (g *Grid) scale(x, y float64) (float64, float64) {
	return (x - g.bounds.MinX) * g.sx, (y - g.bounds.MinY) * g.sy
}

func clampCell(f float64) int {
	c := int(math.Floor(f))
	if c < 0 {
		return 0
	}
	if c >= GridSize {
		return GridSize - 1
	}
	return c
}

// Cell 点所在单元；落在包围盒外时 ok=false
func (g *Grid) Cell(x, y float64) (int, int, bool) {
	if g.inert || !g.bounds.Contains(x, y) {
		return 0, 0, false
	}
	fx, fy := g.scale(x, y)
	return clampCell(fx), clampCell(fy), true
}

// Candidates 点附近需要检查的边下标
// 点距单元分界不足 cellSlack 时一并返回相邻单元，抵消缩放的舍入误差；合并后去重。
func (g *Grid) Candidates(x, y float64) []int32 {
	cx, cy, ok := g.Cell(x, y)
	if !ok {
		return nil
	}
	fx, fy := g.scale(x, y)
	xs := neighbours(fx, cx)
	ys := neighbours(fy, cy)
	if len(xs) == 1 && len(ys) == 1 {
		return g.cells[cx*GridSize+cy]
	}
	var out []int32
	for _, ix := range xs {
		for _, iy := range ys {
			out = append(out, g.cells[ix*GridSize+iy]...)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

const cellSlack = 1e-6

func neighbours(f float64, c int) []int {
	out := []int{c}
	if c > 0 && f-float64(c) < cellSlack {
		out = append(out, c-1)
	}
	if c < GridSize-1 && float64(c+1)-f < cellSlack {
		out = append(out, c+1)
	}
	return out
}

// traverse 以网格坐标逐格步进线段（Amanatides–Woo 式），恰好穿过格点时两侧单元都登记
func (g *Grid) traverse(e Edge, visit func(cx, cy int)) {
	fx1, fy1 := g.scale(e.X1, e.Y1)
	fx2, fy2 := g.scale(e.X2, e.Y2)
	cx, cy := clampCell(fx1), clampCell(fy1)
	ex, ey := clampCell(fx2), clampCell(fy2)
	visit(cx, cy)
	if cx == ex && cy == ey {
		return
	}
	dx, dy := fx2-fx1, fy2-fy1
	stepX, tMaxX, tDeltaX := axisStep(fx1, dx, cx)
	stepY, tMaxY, tDeltaY := axisStep(fy1, dy, cy)

	steps := iabs(ex-cx) + iabs(ey-cy)
	for i := 0; i < steps && (cx != ex || cy != ey); i++ {
		switch {
		case tMaxX < tMaxY-Epsilon:
			cx += stepX
			tMaxX += tDeltaX
		case tMaxY < tMaxX-Epsilon:
			cy += stepY
			tMaxY += tDeltaY
		default:
			// 穿过格点
			if inGrid(cx+stepX, cy) {
				visit(cx+stepX, cy)
			}
			if inGrid(cx, cy+stepY) {
				visit(cx, cy+stepY)
			}
			cx += stepX
			cy += stepY
			tMaxX += tDeltaX
			tMaxY += tDeltaY
			i++
		}
		if !inGrid(cx, cy) {
			break
		}
		visit(cx, cy)
	}
	if cx != ex || cy != ey {
		visit(ex, ey)
	}
}

// axisStep 单轴步进参数：方向、到达下一条分界的 t、跨一格的 t
func axisStep(f, d float64, c int) (int, float64, float64) {
	switch {
	case d > 0:
		return 1, (float64(c+1) - f) / d, 1 / d
	case d < 0:
		return -1, (f - float64(c)) / -d, -1 / d
	default:
		return 0, math.Inf(1), math.Inf(1)
	}
}

func inGrid(cx, cy int) bool { return cx >= 0 && cy >= 0 && cx < GridSize && cy < GridSize }

func iabs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
