package pip

// inside 环奇偶合成：任一外环命中，且未落入其所属的洞
func (s *scanner) inside(x, y float64) bool {
	p := s.p
	yKey := quantizeY(y)
	for i, r := range p.Rings {
		s.state[i] = false
		if r.Hole || !r.Bounds.Contains(x, y) {
			continue
		}
		s.state[i] = s.odd(i, x, y, yKey)
	}
	for i, r := range p.Rings {
		if !r.Hole {
			continue
		}
		parent := p.parents[i]
		if parent < 0 || !s.state[parent] || !r.Bounds.Contains(x, y) {
			continue
		}
		if s.odd(i, x, y, yKey) {
			s.state[parent] = false
		}
	}
	for i, r := range p.Rings {
		if !r.Hole && s.state[i] {
			return true
		}
	}
	return false
}

// associateHoles 构建期一次性确定每个洞所属外环
// 取洞上第一个不在外环边界上的顶点，按外环真实奇偶规则判定；顶点全在边界上时退回包围盒包含。
func associateHoles(p *Polygon) []int {
	parents := make([]int, len(p.Rings))
	for i := range parents {
		parents[i] = -1
	}
	for h, hr := range p.Rings {
		if !hr.Hole {
			continue
		}
		for o, or := range p.Rings {
			if or.Hole {
				continue
			}
			if holeWithin(p, hr, o) {
				parents[h] = o
				break
			}
		}
	}
	return parents
}

func holeWithin(p *Polygon, hole Ring, outer int) bool {
	or := p.Rings[outer]
	if !or.Bounds.ContainsBounds(hole.Bounds) {
		return false
	}
	for i := hole.Start; i < hole.end(); i++ {
		x, y := p.Edges[i].X1, p.Edges[i].Y1
		if onRing(p, or, x, y) {
			continue
		}
		return countRight(RingCrossings(p, outer, y), x)%2 == 1
	}
	return true
}

func onRing(p *Polygon, r Ring, x, y float64) bool {
	for i := r.Start; i < r.end(); i++ {
		if onEdge(p.Edges[i], x, y) {
			return true
		}
	}
	return false
}
