package boundary

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"
)

// Level cấp hành chính, từ ngoài vào trong
type Level int

const (
	LevelSubDistrict  Level = iota // kecamatan
	LevelUrbanVillage              // kelurahan / desa
	LevelNeighborhood              // lingkungan
	LevelSubUnit                   // SLS (RT)
)

// Levels tất cả các cấp theo thứ tự ngoài → trong
var Levels = []Level{LevelSubDistrict, LevelUrbanVillage, LevelNeighborhood, LevelSubUnit}

var levelNames = map[Level]string{
	LevelSubDistrict:  "kecamatan",
	LevelUrbanVillage: "kelurahan",
	LevelNeighborhood: "lingkungan",
	LevelSubUnit:      "sls",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// ParseLevel đọc tên cấp (kecamatan, kelurahan, lingkungan, sls)
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, l := range Levels {
		if levelNames[l] == s {
			return l, nil
		}
	}
	switch s {
	case "sub_district", "subdistrict":
		return LevelSubDistrict, nil
	case "urban_village", "desa":
		return LevelUrbanVillage, nil
	case "neighborhood":
		return LevelNeighborhood, nil
	case "sub_unit", "subunit", "rt":
		return LevelSubUnit, nil
	}
	return 0, fmt.Errorf("cấp hành chính không hợp lệ: %q", s)
}

// keySeparator phân cách tên các cấp trong khóa đơn vị
const keySeparator = " > "

// Chain chuỗi bốn cấp hành chính của một đơn vị SLS
type Chain struct {
	SubDistrict  string `json:"kecamatan"`
	UrbanVillage string `json:"kelurahan"`
	Neighborhood string `json:"lingkungan"`
	SubUnit      string `json:"sls"`
}

// Name tên đơn vị ở cấp level
func (c Chain) Name(level Level) string {
	switch level {
	case LevelSubDistrict:
		return c.SubDistrict
	case LevelUrbanVillage:
		return c.UrbanVillage
	case LevelNeighborhood:
		return c.Neighborhood
	case LevelSubUnit:
		return c.SubUnit
	}
	return ""
}

// KeyAt khóa của đơn vị ở cấp level (đường dẫn từ kecamatan tới cấp đó)
func (c Chain) KeyAt(level Level) string {
	parts := make([]string, 0, len(Levels))
	for _, l := range Levels {
		if l > level {
			break
		}
		parts = append(parts, c.Name(l))
	}
	return strings.Join(parts, keySeparator)
}

// Key khóa của đơn vị trong cùng (SLS)
func (c Chain) Key() string {
	return c.KeyAt(LevelSubUnit)
}

// Truncate giữ lại các cấp tới level, xóa các cấp bên trong
func (c Chain) Truncate(level Level) Chain {
	out := Chain{}
	if level >= LevelSubDistrict {
		out.SubDistrict = c.SubDistrict
	}
	if level >= LevelUrbanVillage {
		out.UrbanVillage = c.UrbanVillage
	}
	if level >= LevelNeighborhood {
		out.Neighborhood = c.Neighborhood
	}
	if level >= LevelSubUnit {
		out.SubUnit = c.SubUnit
	}
	return out
}

// Less so sánh hai chain theo thứ tự kecamatan, kelurahan, lingkungan, SLS
func (c Chain) Less(o Chain) bool {
	for _, l := range Levels {
		a, b := c.Name(l), o.Name(l)
		if a != b {
			return a < b
		}
	}
	return false
}

// Polygon một đơn vị hành chính đã load. Bất biến sau khi Index được build.
type Polygon struct {
	Level     Level
	Name      string
	Key       string
	ParentKey string
	Chain     Chain
	Geometry  orb.MultiPolygon
	Bound     orb.Bound
	Centroid  orb.Point
}

// Unit thông tin rút gọn của một đơn vị, trả ra cho caller
type Unit struct {
	Level Level  `json:"-"`
	Name  string `json:"name"`
	Key   string `json:"key"`
	Chain Chain  `json:"chain"`
}

// Resolution kết quả resolve một điểm
type Resolution struct {
	Chain          Chain   `json:"chain"`
	Fallback       bool    `json:"fallback"`
	DistanceMeters float64 `json:"distance_m"`
}

// TreeViolation một tên ở cấp yêu cầu duy nhất nhưng xuất hiện dưới nhiều đơn vị cha
type TreeViolation struct {
	Level   Level    `json:"-"`
	Name    string   `json:"name"`
	Parents []string `json:"parents"`
}

// PropertyKeys tên thuộc tính GeoJSON chứa nhãn từng cấp
type PropertyKeys struct {
	SubDistrict  string `mapstructure:"sub_district"`
	UrbanVillage string `mapstructure:"urban_village"`
	Neighborhood string `mapstructure:"neighborhood"`
	SubUnit      string `mapstructure:"sub_unit"`
}

func (p PropertyKeys) forLevel(level Level) string {
	switch level {
	case LevelSubDistrict:
		return p.SubDistrict
	case LevelUrbanVillage:
		return p.UrbanVillage
	case LevelNeighborhood:
		return p.Neighborhood
	case LevelSubUnit:
		return p.SubUnit
	}
	return ""
}

// Options cấu hình load và resolve
type Options struct {
	PropertyKeys         PropertyKeys
	FallbackRadiusMeters float64
	StrictTree           bool
	UniqueLevels         []Level
}

// DefaultFallbackRadiusMeters bán kính tìm centroid gần nhất khi điểm nằm ngoài mọi polygon
const DefaultFallbackRadiusMeters = 100

// DefaultOptions cấu hình theo schema SLS của BPS (nmkec, nmdesa, nmlingkungan, nmsls)
func DefaultOptions() Options {
	return Options{
		PropertyKeys: PropertyKeys{
			SubDistrict:  "nmkec",
			UrbanVillage: "nmdesa",
			Neighborhood: "nmlingkungan",
			SubUnit:      "nmsls",
		},
		FallbackRadiusMeters: DefaultFallbackRadiusMeters,
		UniqueLevels:         []Level{LevelSubDistrict, LevelUrbanVillage},
	}
}

// withDefaults điền giá trị mặc định cho các trường bỏ trống
func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.PropertyKeys.SubDistrict == "" {
		o.PropertyKeys.SubDistrict = def.PropertyKeys.SubDistrict
	}
	if o.PropertyKeys.UrbanVillage == "" {
		o.PropertyKeys.UrbanVillage = def.PropertyKeys.UrbanVillage
	}
	if o.PropertyKeys.Neighborhood == "" {
		o.PropertyKeys.Neighborhood = def.PropertyKeys.Neighborhood
	}
	if o.PropertyKeys.SubUnit == "" {
		o.PropertyKeys.SubUnit = def.PropertyKeys.SubUnit
	}
	if o.FallbackRadiusMeters < 0 {
		o.FallbackRadiusMeters = 0
	}
	if o.UniqueLevels == nil {
		o.UniqueLevels = def.UniqueLevels
	}
	return o
}
