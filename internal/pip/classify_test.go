package pip

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	square = []float64{0, 0, 3, 0, 3, 3, 0, 3}
	// 外环 (0,0)-(3,3)，洞 (1,1)-(2,2)
	squareWithHole = []float64{
		0, 0, 3, 0, 3, 3, 0, 3,
		1, 1, 2, 1, 2, 2, 1, 2,
	}
)

func classifyOne(t *testing.T, x, y float64, poly []float64, splits []uint32, boundaryIsInside bool) uint32 {
	t.Helper()
	out, err := Classify([]float64{x, y}, poly, splits, boundaryIsInside)
	require.NoError(t, err)
	require.Len(t, out, 1)
	return out[0]
}

func TestSquareNoHole(t *testing.T) {
	splits := []uint32{4}
	assert.Equal(t, uint32(1), classifyOne(t, 1.5, 1.5, square, splits, true))
	assert.Equal(t, uint32(0), classifyOne(t, 4, 1.5, square, splits, true))
	assert.Equal(t, uint32(0), classifyOne(t, -1, 1.5, square, splits, true))
}

func TestSquareWithHole(t *testing.T) {
	splits := []uint32{4}
	cases := []struct {
		name string
		x, y float64
		want uint32
	}{
		{"in hole", 1.5, 1.5, 0},
		{"lower left", 0.5, 0.5, 1},
		{"lower right", 2.5, 0.5, 1},
		{"upper band", 1.5, 2.5, 1},
		{"left of hole", 0.5, 1.5, 1},
		{"outside right", 4, 1.5, 0},
		{"outside left", -1, 1.5, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, classifyOne(t, c.x, c.y, squareWithHole, splits, true))
		})
	}
}

func TestBoundaryFlag(t *testing.T) {
	splits := []uint32{4}
	assert.Equal(t, uint32(1), classifyOne(t, 3.0, 1.5, squareWithHole, splits, true))
	assert.Equal(t, uint32(0), classifyOne(t, 3.0, 1.5, squareWithHole, splits, false))
	// 洞的边界同样是边界
	assert.Equal(t, uint32(1), classifyOne(t, 1.5, 1.0, squareWithHole, splits, true))
	assert.Equal(t, uint32(0), classifyOne(t, 1.5, 1.0, squareWithHole, splits, false))
	// 顶点
	assert.Equal(t, uint32(1), classifyOne(t, 0, 0, squareWithHole, splits, true))
	assert.Equal(t, uint32(0), classifyOne(t, 0, 0, squareWithHole, splits, false))
}

func TestClassifyDegenerateInputs(t *testing.T) {
	out, err := Classify(nil, square, []uint32{4}, true)
	require.NoError(t, err)
	assert.Empty(t, out)

	out, err = Classify([]float64{1, 1, 2, 2}, nil, []uint32{4}, true)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 0}, out)

	out, err = Classify([]float64{1, 1, 2, 2}, square, nil, true)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 0}, out)

	// 末尾多余坐标忽略
	out, err = Classify([]float64{1, 1, 7}, square, []uint32{4}, true)
	require.NoError(t, err)
	assert.Equal(t, []uint32{1}, out)
}

func TestClassifyRejectsBadSplits(t *testing.T) {
	_, err := Classify([]float64{1, 1}, square, []uint32{5}, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSplitOutOfRange)

	_, err = Classify([]float64{1, 1}, squareWithHole, []uint32{6, 4}, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSplitOrder)
}

func TestClassifyIdempotent(t *testing.T) {
	pts := make([]float64, 0, 2*41*41)
	for i := 0; i <= 40; i++ {
		for j := 0; j <= 40; j++ {
			pts = append(pts, -0.5+float64(i)*0.1, -0.5+float64(j)*0.1)
		}
	}
	a, err := Classify(pts, squareWithHole, []uint32{4}, true)
	require.NoError(t, err)
	b, err := Classify(pts, squareWithHole, []uint32{4}, true)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestIndexReuseMatchesClassify(t *testing.T) {
	ix, err := Compile(squareWithHole, []uint32{4})
	require.NoError(t, err)
	pts := []float64{1.5, 1.5, 0.5, 0.5, 2.5, 0.5, 3, 1.5, 4, 1.5}
	want, err := Classify(pts, squareWithHole, []uint32{4}, true)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		assert.Equal(t, want, ix.Classify(pts, true))
	}
}

func TestClassifyStats(t *testing.T) {
	ix, err := Compile(squareWithHole, []uint32{4})
	require.NoError(t, err)
	pts := []float64{
		1.5, 1.5, // hole
		0.5, 0.5, // inside
		2.5, 0.5, // inside, same scanline
		3, 1.5, // boundary
		4, 1.5, // rejected
	}
	out, st := ix.ClassifyStats(pts, true)
	assert.Equal(t, []uint32{0, 1, 1, 1, 0}, out)
	assert.Equal(t, 5, st.Points)
	assert.Equal(t, 1, st.Rejected)
	assert.Equal(t, 1, st.Boundary)
	assert.Equal(t, 3, st.Inside)
	assert.Positive(t, st.CacheHits)
	assert.Positive(t, st.CacheMisses)
}

func TestTrailingRingIsHole(t *testing.T) {
	// 两个洞：第二个由最后一个拆分之后的顶点组成
	poly := []float64{
		0, 0, 10, 0, 10, 10, 0, 10,
		1, 1, 3, 1, 3, 3, 1, 3,
		6, 6, 8, 6, 8, 8, 6, 8,
	}
	splits := []uint32{4, 8}
	pts := []float64{2, 2, 7, 7, 5, 5, 9, 1}
	out, err := Classify(pts, poly, splits, true)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 0, 1, 1}, out)
}

func TestConcaveAndVertexRays(t *testing.T) {
	// 顶部带 V 形缺口的凹多边形，y=2 的扫描线擦过缺口底点 (4,2)
	poly := []float64{0, 0, 6, 0, 6, 4, 4, 2, 2, 4, 0, 4}
	splits := []uint32{6}
	cases := []struct {
		x, y float64
		want uint32
	}{
		{1, 2, 1},
		{5, 2, 1},
		{3, 3.5, 0},
		{2, 3.5, 1},
		{4, 3.5, 0},
		{1, 3.9, 1},
		{7, 2, 0},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, classifyOne(t, c.x, c.y, poly, splits, false), "point (%v,%v)", c.x, c.y)
	}
}

func TestRayThroughSideVertices(t *testing.T) {
	// 菱形：y=0 的扫描线穿过左右两个顶点，两侧边分居 y 上下，各计一次
	poly := []float64{0, -2, 2, 0, 0, 2, -2, 0}
	splits := []uint32{4}
	assert.Equal(t, uint32(1), classifyOne(t, 0, 0, poly, splits, false))
	assert.Equal(t, uint32(1), classifyOne(t, 1.5, 0, poly, splits, false))
	assert.Equal(t, uint32(1), classifyOne(t, 0, 1.999, poly, splits, false))
	assert.Equal(t, uint32(0), classifyOne(t, 1.5, 1.5, poly, splits, false))
}

func TestHorizontalPlateau(t *testing.T) {
	// 阶梯：y=1 处有一段水平边 (2,1)-(4,1)，扫描线与之重合
	poly := []float64{0, 0, 2, 0, 2, 1, 4, 1, 4, 3, 0, 3}
	splits := []uint32{6}
	assert.Equal(t, uint32(1), classifyOne(t, 1, 1, poly, splits, false))
	assert.Equal(t, uint32(0), classifyOne(t, 5, 1, poly, splits, false))
	assert.Equal(t, uint32(1), classifyOne(t, 3, 2, poly, splits, false))
	assert.Equal(t, uint32(0), classifyOne(t, 3, 0.5, poly, splits, false))
}

func TestZeroAreaPolygon(t *testing.T) {
	// 退化为线段：网格惰性，仅边界命中
	poly := []float64{0, 0, 4, 0}
	splits := []uint32{2}
	assert.Equal(t, uint32(1), classifyOne(t, 2, 0, poly, splits, true))
	assert.Equal(t, uint32(0), classifyOne(t, 2, 0, poly, splits, false))
	assert.Equal(t, uint32(0), classifyOne(t, 2, 1, poly, splits, true))
}

// sampleAccuracy 在 [-10,10]² 的点阵上逐行分类并与解析规则比对
func sampleAccuracy(t *testing.T, poly []float64, splits []uint32, step float64, want func(x, y float64) bool) float64 {
	t.Helper()
	ix, err := Compile(poly, splits)
	require.NoError(t, err)
	perAxis := int(20/step) + 1
	row := make([]float64, 0, 2*perAxis)
	correct, total := 0, 0
	for j := 0; j < perAxis; j++ {
		y := -10 + float64(j)*step
		row = row[:0]
		for i := 0; i < perAxis; i++ {
			row = append(row, -10+float64(i)*step, y)
		}
		out := ix.Classify(row, true)
		for i, v := range out {
			x := row[2*i]
			if (v == 1) == want(x, y) {
				correct++
			}
			total++
		}
	}
	return float64(correct) / float64(total)
}

func TestSquareWithHoleGridAccuracy(t *testing.T) {
	if testing.Short() {
		t.Skip("dense grid")
	}
	acc := sampleAccuracy(t, squareWithHole, []uint32{4}, 0.005, func(x, y float64) bool {
		if x < 0 || x > 3 || y < 0 || y > 3 {
			return false
		}
		return !(x > 1 && x < 2 && y > 1 && y < 2)
	})
	assert.Greater(t, acc, 0.999)
}

func circle(cx, cy, r float64, segments int) []float64 {
	out := make([]float64, 0, 2*segments)
	for i := 0; i < segments; i++ {
		a := 2 * math.Pi * float64(i) / float64(segments)
		out = append(out, cx+r*math.Cos(a), cy+r*math.Sin(a))
	}
	return out
}

func circleWithHoles() ([]float64, []uint32) {
	const segments = 128
	var poly []float64
	poly = append(poly, circle(0, 0, 5, segments)...)
	poly = append(poly, circle(-2, 0, 1, segments)...)
	poly = append(poly, circle(2, 0, 1, segments)...)
	return poly, []uint32{segments, 2 * segments}
}

func TestCircleWithHolesGridAccuracy(t *testing.T) {
	if testing.Short() {
		t.Skip("dense grid")
	}
	poly, splits := circleWithHoles()
	acc := sampleAccuracy(t, poly, splits, 0.01, func(x, y float64) bool {
		return math.Hypot(x, y) <= 5 && math.Hypot(x+2, y) >= 1 && math.Hypot(x-2, y) >= 1
	})
	assert.Greater(t, acc, 0.99)
}
