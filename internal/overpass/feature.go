package overpass

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// StreetFeature một way OSM có tên, chưa chuẩn hóa. Geometry là
// orb.LineString hoặc orb.MultiLineString; nil khi way thiếu node.
type StreetFeature struct {
	ID       int64
	RawName  string
	Highway  string
	Geometry orb.Geometry
}

// Length chiều dài haversine (mét)
func (f StreetFeature) Length() float64 {
	if f.Geometry == nil {
		return 0
	}
	return geo.LengthHaversine(f.Geometry)
}

// RepresentativePoint điểm giữa theo chiều dài của đường; với đường nhiều
// đoạn thì lấy điểm giữa của đoạn dài nhất (đoạn đầu tiên nếu bằng nhau).
func RepresentativePoint(g orb.Geometry) (orb.Point, bool) {
	switch geom := g.(type) {
	case orb.Point:
		return geom, true
	case orb.LineString:
		return midpoint(geom)
	case orb.MultiLineString:
		var longest orb.LineString
		best := -1.0
		for _, part := range geom {
			if len(part) == 0 {
				continue
			}
			l := geo.LengthHaversine(part)
			if l > best {
				best = l
				longest = part
			}
		}
		return midpoint(longest)
	}
	return orb.Point{}, false
}

func midpoint(ls orb.LineString) (orb.Point, bool) {
	switch len(ls) {
	case 0:
		return orb.Point{}, false
	case 1:
		return ls[0], true
	}

	total := geo.LengthHaversine(ls)
	if total == 0 {
		return ls[0], true
	}

	half := total / 2
	acc := 0.0
	for i := 1; i < len(ls); i++ {
		a, b := ls[i-1], ls[i]
		seg := geo.DistanceHaversine(a, b)
		if seg > 0 && acc+seg >= half {
			t := (half - acc) / seg
			return orb.Point{a[0] + (b[0]-a[0])*t, a[1] + (b[1]-a[1])*t}, true
		}
		acc += seg
	}
	return ls[len(ls)-1], true
}
