package pip

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRings(t *testing.T) {
	p := Build(squareWithHole, []uint32{4})
	require.Len(t, p.Rings, 2)
	assert.False(t, p.Rings[0].Hole)
	assert.True(t, p.Rings[1].Hole)
	assert.Equal(t, 4, p.Rings[0].Count)
	assert.Equal(t, 4, p.Rings[1].Count)
	assert.Equal(t, 4, p.Rings[1].Start)
	assert.Len(t, p.Edges, 8)
	assert.Equal(t, Bounds{0, 0, 3, 3}, p.Bounds)
	assert.Equal(t, Bounds{1, 1, 2, 2}, p.Rings[1].Bounds)
	assert.Equal(t, -1, p.Parent(0))
	assert.Equal(t, 0, p.Parent(1))
}

func TestBuildClosingEdge(t *testing.T) {
	// 已闭合输入：闭合边退化被丢弃
	closed := []float64{0, 0, 3, 0, 3, 3, 0, 3, 0, 0}
	p := Build(closed, []uint32{5})
	require.Len(t, p.Rings, 1)
	assert.Equal(t, 4, p.Rings[0].Count)
	last := p.Edges[3]
	assert.Equal(t, Edge{X1: 0, Y1: 3, X2: 0, Y2: 0}, last)

	// 未闭合输入：补一条末点到首点的边
	p = Build(square, []uint32{4})
	assert.Equal(t, Edge{X1: 0, Y1: 3, X2: 0, Y2: 0}, p.Edges[3])
}

func TestBuildDropsDegenerateEdges(t *testing.T) {
	v := []float64{0, 0, 3, 0, 3, 0, 3, 3, 3, 3 + 1e-12, 0, 3}
	p := Build(v, []uint32{6})
	require.Len(t, p.Rings, 1)
	assert.Equal(t, 4, p.Rings[0].Count)
	for _, e := range p.Edges {
		assert.False(t, absf(e.X1-e.X2) < Epsilon && absf(e.Y1-e.Y2) < Epsilon)
	}
}

func TestBuildSkipsEmptyRanges(t *testing.T) {
	// 中间的重复拆分产生空区间，不生成环
	p := Build(squareWithHole, []uint32{4, 4})
	require.Len(t, p.Rings, 2)
	assert.False(t, p.Rings[0].Hole)
	assert.True(t, p.Rings[1].Hole)
}

func TestBuildEmptyOuterRangeKeepsLaterRingsAsHoles(t *testing.T) {
	// 第一个拆分区间为空：外环为空占位，其后的区间仍然是洞
	p := Build(squareWithHole, []uint32{0, 4})
	require.Len(t, p.Rings, 3)
	assert.False(t, p.Rings[0].Hole)
	assert.Equal(t, 0, p.Rings[0].Count)
	assert.True(t, p.Rings[0].Bounds.Empty())
	assert.True(t, p.Rings[1].Hole)
	assert.True(t, p.Rings[2].Hole)
	assert.Equal(t, -1, p.Parent(1))
	assert.Equal(t, -1, p.Parent(2))

	// 外环只有一个顶点，无法成边
	v := append([]float64{50, 50}, square...)
	p = Build(v, []uint32{1})
	require.Len(t, p.Rings, 2)
	assert.Equal(t, 0, p.Rings[0].Count)
	assert.True(t, p.Rings[1].Hole)
}

func TestClassifyEmptyOuterRangeIsOutside(t *testing.T) {
	poly := []float64{
		0, 0, 3, 0, 3, 3, 0, 3,
		0, 0, 9, 0, 9, 9, 0, 9,
	}
	out, err := Classify([]float64{1.5, 1.5, 5, 5}, poly, []uint32{0, 4}, true)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 0}, out)

	v := append([]float64{50, 50}, square...)
	out, err = Classify([]float64{1.5, 1.5}, v, []uint32{1}, true)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0}, out)
}

func TestValidateSplits(t *testing.T) {
	assert.NoError(t, ValidateSplits(8, []uint32{4}))
	assert.NoError(t, ValidateSplits(8, []uint32{4, 8}))
	assert.NoError(t, ValidateSplits(8, nil))
	assert.ErrorIs(t, ValidateSplits(8, []uint32{9}), ErrSplitOutOfRange)
	assert.ErrorIs(t, ValidateSplits(8, []uint32{4, 2}), ErrSplitOrder)
}

func TestHoleAssociationIgnoresOverlappingBBoxOnly(t *testing.T) {
	// L 形外环：洞的包围盒落在外环包围盒内，但洞实际位于缺角处
	v := []float64{
		0, 0, 4, 0, 4, 2, 2, 2, 2, 4, 0, 4,
		3, 3, 3.5, 3, 3.5, 3.5, 3, 3.5,
	}
	p := Build(v, []uint32{6})
	require.Len(t, p.Rings, 2)
	assert.Equal(t, -1, p.Parent(1))

	out, err := Classify([]float64{3.2, 3.2, 1, 1}, v, []uint32{6}, true)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 1}, out)
}

func TestHoleTouchingOuterBoundary(t *testing.T) {
	// 洞的一个顶点落在外环边上，仍归属外环
	v := []float64{
		0, 0, 4, 0, 4, 4, 0, 4,
		2, 0, 3, 1, 1, 1,
	}
	p := Build(v, []uint32{4})
	require.Len(t, p.Rings, 2)
	assert.Equal(t, 0, p.Parent(1))
	out, err := Classify([]float64{2, 0.5, 2, 3}, v, []uint32{4}, false)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 1}, out)
}
