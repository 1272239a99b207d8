package boundary

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"
)

// Load đọc file GeoJSON FeatureCollection, mỗi feature là một polygon SLS
// mang nhãn đủ bốn cấp. Lỗi trả về luôn là *LoadError.
func Load(path string, opts Options, logger *zap.Logger) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Source: path, Feature: -1, Reason: "không đọc được file", Err: err}
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, &LoadError{Source: path, Feature: -1, Reason: "GeoJSON không hợp lệ", Err: err}
	}

	return FromFeatureCollection(fc, path, opts, logger)
}

// unitBuilder gom polygon của một đơn vị trong lúc build
type unitBuilder struct {
	level     Level
	name      string
	key       string
	parentKey string
	chain     Chain
	geometry  orb.MultiPolygon
}

// FromFeatureCollection build Index từ FeatureCollection đã parse.
// Đơn vị cấp ngoài được ghép từ polygon của các SLS con.
func FromFeatureCollection(fc *geojson.FeatureCollection, source string, opts Options, logger *zap.Logger) (*Index, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts = opts.withDefaults()

	if fc == nil || len(fc.Features) == 0 {
		return nil, &LoadError{Source: source, Feature: -1, Reason: "FeatureCollection rỗng"}
	}

	builders := make(map[string]*unitBuilder)
	merged := 0

	for i, f := range fc.Features {
		chain, err := chainFromProperties(f.Properties, opts.PropertyKeys)
		if err != nil {
			return nil, &LoadError{Source: source, Feature: i, Reason: err.Error()}
		}

		mp, err := toMultiPolygon(f.Geometry)
		if err != nil {
			return nil, &LoadError{Source: source, Feature: i, Reason: err.Error()}
		}

		for _, level := range Levels {
			key := chain.KeyAt(level)
			b, ok := builders[key]
			if !ok {
				b = &unitBuilder{
					level: level,
					name:  chain.Name(level),
					key:   key,
					chain: chain.Truncate(level),
				}
				if level > LevelSubDistrict {
					b.parentKey = chain.KeyAt(level - 1)
				}
				builders[key] = b
			} else if level == LevelSubUnit {
				merged++
			}
			b.geometry = append(b.geometry, mp...)
		}
	}

	if merged > 0 {
		logger.Info("Gộp các feature trùng chuỗi hành chính",
			zap.String("source", source),
			zap.Int("merged", merged))
	}

	keys := make([]string, 0, len(builders))
	for key := range builders {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	polygons := make([]*Polygon, 0, len(keys))
	for _, key := range keys {
		b := builders[key]
		polygons = append(polygons, finalizeUnit(b))
	}

	idx := newIndex(polygons, opts)

	if len(idx.violations) > 0 {
		for _, v := range idx.violations {
			logger.Warn("Vi phạm cây hành chính: tên xuất hiện dưới nhiều đơn vị cha",
				zap.String("level", v.Level.String()),
				zap.String("name", v.Name),
				zap.Strings("parents", v.Parents))
		}
		if opts.StrictTree {
			v := idx.violations[0]
			return nil, &LoadError{
				Source:  source,
				Feature: -1,
				Reason: fmt.Sprintf("%d vi phạm cây hành chính, ví dụ %s %q dưới %s",
					len(idx.violations), v.Level, v.Name, strings.Join(v.Parents, ", ")),
			}
		}
	}

	logger.Info("Đã load ranh giới hành chính",
		zap.String("source", source),
		zap.Int("features", len(fc.Features)),
		zap.Int("sub_districts", len(idx.byLevel[LevelSubDistrict])),
		zap.Int("sub_units", len(idx.byLevel[LevelSubUnit])),
		zap.Int("violations", len(idx.violations)))

	return idx, nil
}

func finalizeUnit(b *unitBuilder) *Polygon {
	return &Polygon{
		Level:     b.level,
		Name:      b.name,
		Key:       b.key,
		ParentKey: b.parentKey,
		Chain:     b.chain,
		Geometry:  b.geometry,
		Bound:     b.geometry.Bound(),
		Centroid:  centroidOf(b.geometry),
	}
}

func chainFromProperties(props geojson.Properties, keys PropertyKeys) (Chain, error) {
	var chain Chain
	values := make(map[Level]string, len(Levels))
	for _, level := range Levels {
		propKey := keys.forLevel(level)
		v, ok := labelValue(props[propKey])
		if !ok {
			return chain, fmt.Errorf("thiếu nhãn %s (thuộc tính %q)", level, propKey)
		}
		values[level] = v
	}
	chain.SubDistrict = values[LevelSubDistrict]
	chain.UrbanVillage = values[LevelUrbanVillage]
	chain.Neighborhood = values[LevelNeighborhood]
	chain.SubUnit = values[LevelSubUnit]
	return chain, nil
}

// labelValue đọc nhãn dạng chuỗi hoặc số (BSON có thể trả int32/int64)
func labelValue(v interface{}) (string, bool) {
	var s string
	switch x := v.(type) {
	case string:
		s = x
	case float64:
		s = strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		s = strconv.Itoa(x)
	case int32:
		s = strconv.FormatInt(int64(x), 10)
	case int64:
		s = strconv.FormatInt(x, 10)
	default:
		return "", false
	}
	s = strings.Join(strings.Fields(s), " ")
	return s, s != ""
}

func toMultiPolygon(g orb.Geometry) (orb.MultiPolygon, error) {
	var mp orb.MultiPolygon
	switch geom := g.(type) {
	case orb.Polygon:
		if len(geom) == 0 {
			return nil, fmt.Errorf("polygon rỗng")
		}
		mp = orb.MultiPolygon{geom}
	case orb.MultiPolygon:
		if len(geom) == 0 {
			return nil, fmt.Errorf("multipolygon rỗng")
		}
		mp = geom
	case nil:
		return nil, fmt.Errorf("thiếu geometry")
	default:
		return nil, fmt.Errorf("geometry %s không phải polygon", g.GeoJSONType())
	}

	for i, poly := range mp {
		if len(poly) == 0 {
			return nil, fmt.Errorf("polygon %d rỗng", i)
		}
		for j, ring := range poly {
			if err := checkRing(ring); err != nil {
				return nil, fmt.Errorf("polygon %d ring %d: %w", i, j, err)
			}
		}
	}
	return mp, nil
}

// checkRing ring hợp lệ cần ít nhất 4 điểm và điểm đầu trùng điểm cuối
func checkRing(r orb.Ring) error {
	if len(r) < 4 {
		return fmt.Errorf("cần ít nhất 4 điểm, có %d", len(r))
	}
	if !r.Closed() {
		return fmt.Errorf("ring không khép kín")
	}
	return nil
}
