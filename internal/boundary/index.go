package boundary

import (
	"math"
	"sort"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
)

// Index tập polygon hành chính đã load.
// Chỉ đọc sau khi build, dùng chung giữa các request không cần lock.
type Index struct {
	opts        Options
	byLevel     map[Level][]*Polygon
	subUnits    map[string][]*Polygon // kecamatan (upper) → SLS
	subDistrict map[string]*Polygon   // kecamatan (upper) → polygon kecamatan
	violations  []TreeViolation
}

// polygons phải đã sắp theo Key
func newIndex(polygons []*Polygon, opts Options) *Index {
	idx := &Index{
		opts:        opts,
		byLevel:     make(map[Level][]*Polygon, len(Levels)),
		subUnits:    make(map[string][]*Polygon),
		subDistrict: make(map[string]*Polygon),
	}

	for _, p := range polygons {
		idx.byLevel[p.Level] = append(idx.byLevel[p.Level], p)
		switch p.Level {
		case LevelSubDistrict:
			idx.subDistrict[foldName(p.Name)] = p
		case LevelSubUnit:
			k := foldName(p.Chain.SubDistrict)
			idx.subUnits[k] = append(idx.subUnits[k], p)
		}
	}

	idx.violations = findViolations(idx.byLevel, opts.UniqueLevels)
	return idx
}

// foldName khóa so khớp tên kecamatan không phân biệt hoa thường
func foldName(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}

func findViolations(byLevel map[Level][]*Polygon, unique []Level) []TreeViolation {
	var out []TreeViolation
	for _, level := range unique {
		parents := make(map[string][]string)
		var names []string
		for _, p := range byLevel[level] {
			if _, seen := parents[p.Name]; !seen {
				names = append(names, p.Name)
			}
			parents[p.Name] = append(parents[p.Name], p.ParentKey)
		}
		sort.Strings(names)
		for _, name := range names {
			if len(parents[name]) > 1 {
				ps := append([]string(nil), parents[name]...)
				sort.Strings(ps)
				out = append(out, TreeViolation{Level: level, Name: name, Parents: ps})
			}
		}
	}
	return out
}

func centroidOf(mp orb.MultiPolygon) orb.Point {
	c, area := planar.CentroidArea(mp)
	if area == 0 || math.IsNaN(c[0]) || math.IsNaN(c[1]) {
		return mp.Bound().Center()
	}
	return c
}

// ListUnits tên phân biệt ở một cấp, đã sắp xếp
func (idx *Index) ListUnits(level Level) []string {
	seen := make(map[string]struct{})
	names := make([]string, 0, len(idx.byLevel[level]))
	for _, p := range idx.byLevel[level] {
		if _, ok := seen[p.Name]; ok {
			continue
		}
		seen[p.Name] = struct{}{}
		names = append(names, p.Name)
	}
	sort.Strings(names)
	return names
}

// Units các đơn vị ở level thuộc kecamatan subDistrict (rỗng = tất cả), theo thứ tự khóa
func (idx *Index) Units(level Level, subDistrict string) []Unit {
	filter := foldName(subDistrict)
	out := make([]Unit, 0)
	for _, p := range idx.byLevel[level] {
		if filter != "" && foldName(p.Chain.SubDistrict) != filter {
			continue
		}
		out = append(out, Unit{Level: p.Level, Name: p.Name, Key: p.Key, Chain: p.Chain})
	}
	return out
}

// SubDistrict tên chuẩn của kecamatan khớp name (không phân biệt hoa thường)
func (idx *Index) SubDistrict(name string) (string, bool) {
	p, ok := idx.subDistrict[foldName(name)]
	if !ok {
		return "", false
	}
	return p.Name, true
}

// Bound bounding box của kecamatan
func (idx *Index) Bound(subDistrict string) (orb.Bound, bool) {
	p, ok := idx.subDistrict[foldName(subDistrict)]
	if !ok {
		return orb.Bound{}, false
	}
	return p.Bound, true
}

// Violations các vi phạm cây hành chính phát hiện lúc load
func (idx *Index) Violations() []TreeViolation {
	return append([]TreeViolation(nil), idx.violations...)
}

// FallbackRadiusMeters bán kính fallback đang dùng
func (idx *Index) FallbackRadiusMeters() float64 {
	return idx.opts.FallbackRadiusMeters
}

// Resolve tìm chuỗi hành chính chứa điểm, giới hạn trong kecamatan subDistrict
// (rỗng = mọi kecamatan). Trượt hết polygon thì lấy SLS có centroid gần nhất
// trong bán kính fallback.
func (idx *Index) Resolve(pt orb.Point, subDistrict string) (Resolution, error) {
	candidates := idx.candidates(subDistrict)

	for _, p := range candidates {
		if !p.Bound.Contains(pt) {
			continue
		}
		if planar.MultiPolygonContains(p.Geometry, pt) {
			return Resolution{Chain: p.Chain}, nil
		}
	}

	var nearest *Polygon
	best := math.Inf(1)
	for _, p := range candidates {
		d := geo.DistanceHaversine(pt, p.Centroid)
		if d < best {
			best = d
			nearest = p
		}
	}

	if nearest == nil {
		return Resolution{}, &UnresolvedPointError{
			Point:         pt,
			SubDistrict:   subDistrict,
			NearestMeters: -1,
			RadiusMeters:  idx.opts.FallbackRadiusMeters,
		}
	}
	if best > idx.opts.FallbackRadiusMeters {
		return Resolution{}, &UnresolvedPointError{
			Point:         pt,
			SubDistrict:   subDistrict,
			NearestMeters: best,
			RadiusMeters:  idx.opts.FallbackRadiusMeters,
		}
	}

	return Resolution{Chain: nearest.Chain, Fallback: true, DistanceMeters: best}, nil
}

func (idx *Index) candidates(subDistrict string) []*Polygon {
	if strings.TrimSpace(subDistrict) == "" {
		return idx.byLevel[LevelSubUnit]
	}
	return idx.subUnits[foldName(subDistrict)]
}
