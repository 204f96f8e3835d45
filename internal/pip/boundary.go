package pip

// OnBoundary 判定点是否恰在任一环边上
// 仅检查点所在网格单元登记的边；网格惰性时线性扫描全部边。
func OnBoundary(p *Polygon, g *Grid, x, y float64) bool {
	if g == nil || g.Inert() {
		for i := range p.Edges {
			if onEdge(p.Edges[i], x, y) {
				return true
			}
		}
		return false
	}
	for _, i := range g.Candidates(x, y) {
		if onEdge(p.Edges[i], x, y) {
			return true
		}
	}
	return false
}

// onEdge 投影到边所在直线，t∈[0,1] 且垂距平方 < BoundaryEpsilon² 视为命中
func onEdge(e Edge, x, y float64) bool {
	minX, maxX := e.X1, e.X2
	if minX > maxX {
		minX, maxX = maxX, minX
	}
	minY, maxY := e.Y1, e.Y2
	if minY > maxY {
		minY, maxY = maxY, minY
	}
	if x < minX-Epsilon || x > maxX+Epsilon || y < minY-Epsilon || y > maxY+Epsilon {
		return false
	}
	dx, dy := e.X2-e.X1, e.Y2-e.Y1
	lenSq := dx*dx + dy*dy
	if lenSq < Epsilon*Epsilon {
		return absf(x-e.X1) < Epsilon && absf(y-e.Y1) < Epsilon
	}
	t := ((x-e.X1)*dx + (y-e.Y1)*dy) / lenSq
	if t < 0 || t > 1 {
		return false
	}
	px, py := e.X1+t*dx, e.Y1+t*dy
	distSq := (x-px)*(x-px) + (y-py)*(y-py)
	return distSq < BoundaryEpsilon*BoundaryEpsilon
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
