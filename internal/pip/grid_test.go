package pip

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cellHas(g *Grid, cx, cy int, edge int32) bool {
	for _, e := range g.cells[cx*GridSize+cy] {
		if e == edge {
			return true
		}
	}
	return false
}

func TestGridInertOnZeroArea(t *testing.T) {
	p := Build([]float64{0, 0, 4, 0}, []uint32{2})
	g := NewGrid(p)
	assert.True(t, g.Inert())
	assert.Nil(t, g.Candidates(2, 0))
	_, _, ok := g.Cell(2, 0)
	assert.False(t, ok)
}

func TestGridCellClampsMaxEdge(t *testing.T) {
	p := Build(square, []uint32{4})
	g := NewGrid(p)
	cx, cy, ok := g.Cell(3, 3)
	require.True(t, ok)
	assert.Equal(t, GridSize-1, cx)
	assert.Equal(t, GridSize-1, cy)
	_, _, ok = g.Cell(3.5, 1)
	assert.False(t, ok)
}

func TestGridRegistersVerticalEdgeInEveryRow(t *testing.T) {
	p := Build(square, []uint32{4})
	g := NewGrid(p)
	// 边 1：(3,0)-(3,3)，整列最右侧单元
	for cy := 0; cy < GridSize; cy++ {
		assert.True(t, cellHas(g, GridSize-1, cy, 1), "row %d", cy)
	}
}

func TestGridDiagonalCoversEveryTouchedCell(t *testing.T) {
	// 对角线恰好穿过格点，相邻两侧单元都需登记
	p := Build([]float64{0, 0, 64, 0, 64, 64}, []uint32{3})
	g := NewGrid(p)
	for i := 0; i < GridSize; i++ {
		assert.True(t, cellHas(g, i, i, 2), "diag %d", i)
	}
	assert.True(t, cellHas(g, 1, 0, 2))
	assert.True(t, cellHas(g, 0, 1, 2))
}

func TestGridCandidatesOnCellCornerHaveNoDuplicates(t *testing.T) {
	p := Build([]float64{0, 0, 64, 0, 64, 64}, []uint32{3})
	g := NewGrid(p)
	// (32,32) 位于四个单元的公共角点，对角线登记在其中多个单元
	got := g.Candidates(32, 32)
	seen := map[int32]int{}
	for _, c := range got {
		seen[c]++
	}
	assert.Equal(t, 1, seen[2])
	for c, n := range seen {
		assert.Equal(t, 1, n, "edge %d", c)
	}
	assert.True(t, slices.IsSorted(got))
}

// 任意边上的点都必须能在其所在单元的候选中找到该边
func TestGridCandidatesContainEdgeForPointsOnIt(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	poly := make([]float64, 0, 64)
	for i := 0; i < 32; i++ {
		poly = append(poly, r.Float64()*100-50, r.Float64()*100-50)
	}
	p := Build(poly, []uint32{32})
	g := NewGrid(p)
	for ei, e := range p.Edges {
		for k := 0; k <= 50; k++ {
			tt := float64(k) / 50
			x, y := e.X1+tt*(e.X2-e.X1), e.Y1+tt*(e.Y2-e.Y1)
			found := false
			for _, c := range g.Candidates(x, y) {
				if int(c) == ei {
					found = true
					break
				}
			}
			assert.True(t, found, "edge %d t=%v", ei, tt)
		}
	}
}

func TestOnBoundary(t *testing.T) {
	p := Build(squareWithHole, []uint32{4})
	g := NewGrid(p)
	assert.True(t, OnBoundary(p, g, 3, 1.5))
	assert.True(t, OnBoundary(p, g, 1.5, 2))
	assert.True(t, OnBoundary(p, g, 2, 2))
	assert.False(t, OnBoundary(p, g, 1.5, 1.5))
	assert.False(t, OnBoundary(p, g, 3-1e-6, 1.5))
	// 线性扫描与网格结果一致
	assert.True(t, OnBoundary(p, nil, 3, 1.5))
	assert.False(t, OnBoundary(p, nil, 1.5, 1.5))
}
