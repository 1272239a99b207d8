package overpass

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/paulmach/orb"
)

// DefaultHighwayClasses các giá trị tag highway được coi là jalan/gang
var DefaultHighwayClasses = []string{
	"primary", "secondary", "tertiary", "residential", "unclassified",
	"living_street", "service", "pedestrian", "track", "footway", "path",
}

// BuildQuery tạo Overpass QL lấy các way có tên và highway thuộc classes trong bound.
// Node được lấy kèm (out skel) để dựng lại hình học của way.
func BuildQuery(b orb.Bound, classes []string, timeout time.Duration) string {
	if len(classes) == 0 {
		classes = DefaultHighwayClasses
	}
	quoted := make([]string, 0, len(classes))
	for _, c := range classes {
		c = strings.TrimSpace(c)
		if c != "" {
			quoted = append(quoted, regexp.QuoteMeta(c))
		}
	}

	seconds := int(math.Ceil(timeout.Seconds()))
	if seconds < 1 {
		seconds = 1
	}

	// bbox Overpass: south, west, north, east
	return fmt.Sprintf(
		`[out:json][timeout:%d];way["highway"~"^(%s)$"]["name"](%.7f,%.7f,%.7f,%.7f);out body;>;out skel qt;`,
		seconds,
		strings.Join(quoted, "|"),
		b.Min.Lat(), b.Min.Lon(), b.Max.Lat(), b.Max.Lon(),
	)
}
