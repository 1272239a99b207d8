package mapper

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"github.com/street-mapper/app/models"
	"github.com/street-mapper/internal/boundary"
	"github.com/street-mapper/internal/metrics"
	"github.com/street-mapper/internal/normalizer"
	"github.com/street-mapper/internal/overpass"
)

// StreetFetcher nguồn way jalan/gang (overpass.Client)
type StreetFetcher interface {
	Fetch(ctx context.Context, subDistrict string) ([]overpass.StreetFeature, error)
}

// BoundaryResolver resolve điểm về chuỗi hành chính (boundary.Index)
type BoundaryResolver interface {
	Resolve(pt orb.Point, subDistrict string) (boundary.Resolution, error)
}

// DuplicatePolicy cách chọn tọa độ khi nhiều feature trùng (tên, SLS)
type DuplicatePolicy string

const (
	PolicyFirst   DuplicatePolicy = "first"
	PolicyLast    DuplicatePolicy = "last"
	PolicyLongest DuplicatePolicy = "longest"
)

// ParseDuplicatePolicy đọc policy từ config; rỗng = first
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch DuplicatePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyFirst:
		return PolicyFirst, nil
	case PolicyLast:
		return PolicyLast, nil
	case PolicyLongest:
		return PolicyLongest, nil
	}
	return "", fmt.Errorf("duplicate policy không hợp lệ: %q", s)
}

// SkipReason lý do bỏ qua một feature
type SkipReason string

const (
	SkipUnresolved SkipReason = "unresolved"
	SkipEmptyName  SkipReason = "empty_name"
	SkipNoGeometry SkipReason = "no_geometry"
)

// SkippedFeature feature không tạo được record
type SkippedFeature struct {
	ID      int64      `json:"id"`
	RawName string     `json:"raw_name"`
	Reason  SkipReason `json:"reason"`
	Detail  string     `json:"detail,omitempty"`
}

// Result kết quả mapping một kecamatan. Resolved + Skipped == Fetched.
type Result struct {
	SubDistrict     string                `json:"sub_district"`
	Records         []models.StreetRecord `json:"records"`
	Fetched         int                   `json:"fetched"`
	Resolved        int                   `json:"resolved"`
	Skipped         int                   `json:"skipped"`
	Duplicates      int                   `json:"duplicates"`
	Fallbacks       int                   `json:"fallbacks"`
	SkippedFeatures []SkippedFeature      `json:"skipped_features"`
}

// Empty không có record nào
func (r *Result) Empty() bool {
	return len(r.Records) == 0
}

// Mapper gán jalan/gang vào SLS
type Mapper struct {
	fetcher  StreetFetcher
	resolver BoundaryResolver
	policy   DuplicatePolicy
	logger   *zap.Logger
}

// NewMapper tạo Mapper
func NewMapper(fetcher StreetFetcher, resolver BoundaryResolver, policy DuplicatePolicy, logger *zap.Logger) *Mapper {
	if policy == "" {
		policy = PolicyFirst
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mapper{
		fetcher:  fetcher,
		resolver: resolver,
		policy:   policy,
		logger:   logger,
	}
}

// MapStreetsToAdmin fetch rồi xử lý toàn bộ jalan/gang của kecamatan.
// Lỗi fetch trả về nguyên vẹn, không có Result dở dang.
func (m *Mapper) MapStreetsToAdmin(ctx context.Context, subDistrict string) (*Result, error) {
	start := time.Now()

	features, err := m.fetcher.Fetch(ctx, subDistrict)
	if err != nil {
		return nil, err
	}

	result := m.Process(subDistrict, features)
	metrics.MapDurationMs.Observe(float64(time.Since(start).Milliseconds()))

	m.logger.Info("Mapping jalan/gang hoàn tất",
		zap.String("sub_district", subDistrict),
		zap.Int("fetched", result.Fetched),
		zap.Int("records", len(result.Records)),
		zap.Int("skipped", result.Skipped),
		zap.Int("duplicates", result.Duplicates),
		zap.Int("fallbacks", result.Fallbacks),
		zap.Duration("duration", time.Since(start)))

	return result, nil
}

// group một (tên, SLS) đang được gom
type group struct {
	record models.StreetRecord
	chain  boundary.Chain
	length float64
}

// Process phần thuần của pipeline: resolve, chuẩn hóa, gộp trùng, sắp xếp.
// Cùng input luôn cho cùng output.
func (m *Mapper) Process(subDistrict string, features []overpass.StreetFeature) *Result {
	result := &Result{
		SubDistrict:     subDistrict,
		Records:         []models.StreetRecord{},
		Fetched:         len(features),
		SkippedFeatures: []SkippedFeature{},
	}

	groups := make(map[string]*group)
	order := make([]string, 0, len(features))

	for _, f := range features {
		name := normalizer.Normalize(f.RawName)
		if name == "" {
			m.skip(result, f, SkipEmptyName, "")
			continue
		}

		pt, ok := overpass.RepresentativePoint(f.Geometry)
		if !ok {
			m.skip(result, f, SkipNoGeometry, "")
			continue
		}

		res, err := m.resolver.Resolve(pt, subDistrict)
		if err != nil {
			if !errors.Is(err, boundary.ErrUnresolvedPoint) {
				m.logger.Warn("Resolve lỗi không mong đợi", zap.Int64("way_id", f.ID), zap.Error(err))
			}
			m.skip(result, f, SkipUnresolved, err.Error())
			continue
		}

		result.Resolved++
		if res.Fallback {
			result.Fallbacks++
			metrics.FallbackResolutionsTotal.Inc()
		}

		rec := models.StreetRecord{
			Name:         name,
			SubDistrict:  res.Chain.SubDistrict,
			UrbanVillage: res.Chain.UrbanVillage,
			Neighborhood: res.Chain.Neighborhood,
			SubUnit:      res.Chain.SubUnit,
			Latitude:     pt.Lat(),
			Longitude:    pt.Lon(),
		}
		length := f.Length()

		key := res.Chain.Key() + "\x00" + name
		g, exists := groups[key]
		if !exists {
			groups[key] = &group{record: rec, chain: res.Chain, length: length}
			order = append(order, key)
			continue
		}

		result.Duplicates++
		switch m.policy {
		case PolicyLast:
			g.record = rec
			g.length = length
		case PolicyLongest:
			if length > g.length {
				g.record = rec
				g.length = length
			}
		}
	}

	all := make([]*group, 0, len(order))
	for _, key := range order {
		all = append(all, groups[key])
	}
	sort.SliceStable(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.chain != b.chain {
			return a.chain.Less(b.chain)
		}
		if a.record.Name != b.record.Name {
			return a.record.Name < b.record.Name
		}
		if a.record.Latitude != b.record.Latitude {
			return a.record.Latitude < b.record.Latitude
		}
		return a.record.Longitude < b.record.Longitude
	})

	for _, g := range all {
		result.Records = append(result.Records, g.record)
	}
	return result
}

func (m *Mapper) skip(result *Result, f overpass.StreetFeature, reason SkipReason, detail string) {
	result.Skipped++
	result.SkippedFeatures = append(result.SkippedFeatures, SkippedFeature{
		ID:      f.ID,
		RawName: f.RawName,
		Reason:  reason,
		Detail:  detail,
	})
	metrics.FeaturesSkippedTotal.WithLabelValues(string(reason)).Inc()
	m.logger.Debug("Bỏ qua feature",
		zap.Int64("way_id", f.ID),
		zap.String("raw_name", f.RawName),
		zap.String("reason", string(reason)))
}
