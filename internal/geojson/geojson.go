// 包 geojson：GeoJSON 多边形与平铺顶点数组之间的转换
// 约束：仅接受单个外环的 Polygon；MultiPolygon 只允许包含一个多边形
package geojson

import (
	"encoding/json"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"
)

var (
	ErrUnsupportedGeometry = errors.New("geojson: unsupported geometry")
	ErrMultiPolygon        = errors.New("geojson: multiple outer rings")
	ErrEmpty               = errors.New("geojson: empty polygon")
)

// Shape 平铺顶点 [x0,y0,x1,y1,...] 与环拆分下标，第 0 个环为外环
type Shape struct {
	Vertices []float64
	Splits   []uint32
}

// 文档注释：解析 Geometry / Feature / FeatureCollection
// 背景：上传接口与导入工具都需要接收标准 GeoJSON；按 type 字段分派到 orb 的解码器。
// 约束：FeatureCollection 只能含一个要素；闭合重复点会被去掉。
func Parse(data []byte) (Shape, error) {
	g, err := decode(data)
	if err != nil {
		return Shape{}, err
	}
	switch v := g.(type) {
	case orb.Polygon:
		return shapeOf(v)
	case orb.MultiPolygon:
		if len(v) != 1 {
			return Shape{}, ErrMultiPolygon
		}
		return shapeOf(v[0])
	default:
		return Shape{}, errors.Wrapf(ErrUnsupportedGeometry, "type %s", g.GeoJSONType())
	}
}

func decode(data []byte) (orb.Geometry, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, errors.Wrap(err, "geojson: decode")
	}
	switch probe.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, errors.Wrap(err, "geojson: feature collection")
		}
		if len(fc.Features) != 1 {
			return nil, errors.Wrapf(ErrMultiPolygon, "%d features", len(fc.Features))
		}
		if fc.Features[0].Geometry == nil {
			return nil, ErrEmpty
		}
		return fc.Features[0].Geometry, nil
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, errors.Wrap(err, "geojson: feature")
		}
		if f.Geometry == nil {
			return nil, ErrEmpty
		}
		return f.Geometry, nil
	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, errors.Wrap(err, "geojson: geometry")
		}
		if g.Coordinates == nil {
			return nil, errors.Wrapf(ErrUnsupportedGeometry, "type %s", probe.Type)
		}
		return g.Geometry(), nil
	}
}

func shapeOf(p orb.Polygon) (Shape, error) {
	s := FromOrb(p)
	if len(s.Vertices) == 0 {
		return Shape{}, ErrEmpty
	}
	return s, nil
}

// FromOrb 展平 orb.Polygon；每个环结束处记一个拆分
func FromOrb(p orb.Polygon) Shape {
	var s Shape
	for _, r := range p {
		pts := []orb.Point(r)
		if len(pts) > 1 && pts[0] == pts[len(pts)-1] {
			pts = pts[:len(pts)-1]
		}
		if len(pts) == 0 {
			continue
		}
		for _, pt := range pts {
			s.Vertices = append(s.Vertices, pt[0], pt[1])
		}
		s.Splits = append(s.Splits, uint32(len(s.Vertices)/2))
	}
	return s
}

// Orb 还原为闭合环的 orb.Polygon；尾部未被拆分覆盖的顶点成为最后一个环
func (s Shape) Orb() orb.Polygon {
	n := len(s.Vertices) / 2
	bounds := append(append([]uint32{}, s.Splits...), uint32(n))
	var out orb.Polygon
	prev := 0
	for _, b := range bounds {
		end := int(b)
		if end > n {
			end = n
		}
		if end <= prev {
			continue
		}
		r := make(orb.Ring, 0, end-prev+1)
		for i := prev; i < end; i++ {
			r = append(r, orb.Point{s.Vertices[2*i], s.Vertices[2*i+1]})
		}
		r = append(r, r[0])
		out = append(out, r)
		prev = end
	}
	return out
}

// Marshal 输出 GeoJSON Geometry
func (s Shape) Marshal() ([]byte, error) {
	return geojson.NewGeometry(s.Orb()).MarshalJSON()
}
