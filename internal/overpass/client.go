package overpass

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/osm"
	"go.uber.org/zap"

	"github.com/street-mapper/internal/metrics"
)

// DefaultEndpoint Overpass API công khai
const DefaultEndpoint = "https://overpass-api.de/api/interpreter"

// Config cấu hình Overpass client
type Config struct {
	Endpoint       string
	Timeout        time.Duration
	HighwayClasses []string
	PaddingMeters  float64
	UserAgent      string
}

// BoundsProvider cung cấp bounding box của kecamatan (boundary.Index)
type BoundsProvider interface {
	Bound(subDistrict string) (orb.Bound, bool)
}

// ResponseCache cache payload thô của Overpass theo query
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, payload []byte) error
}

// Client lấy các way jalan/gang của một kecamatan từ Overpass
type Client struct {
	cfg        Config
	httpClient *http.Client
	bounds     BoundsProvider
	cache      ResponseCache
	logger     *zap.Logger
}

// NewClient tạo Overpass client; cache có thể nil
func NewClient(cfg Config, bounds BoundsProvider, cache ResponseCache, logger *zap.Logger) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if len(cfg.HighwayClasses) == 0 {
		cfg.HighwayClasses = DefaultHighwayClasses
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "street-mapper/1.0"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		bounds:     bounds,
		cache:      cache,
		logger:     logger,
	}
}

// Fetch lấy toàn bộ way có tên trong phạm vi kecamatan (bbox nới thêm
// PaddingMeters). Không có phần tử nào là kết quả rỗng hợp lệ, không phải lỗi.
func (c *Client) Fetch(ctx context.Context, subDistrict string) ([]StreetFeature, error) {
	b, ok := c.bounds.Bound(subDistrict)
	if !ok {
		return nil, &FetchError{Kind: KindUnknownArea, SubDistrict: subDistrict}
	}
	if c.cfg.PaddingMeters > 0 {
		b = geo.BoundPad(b, c.cfg.PaddingMeters)
	}

	query := BuildQuery(b, c.cfg.HighwayClasses, c.cfg.Timeout)
	key := cacheKey(query)

	if c.cache != nil {
		payload, found, err := c.cache.Get(ctx, key)
		if err != nil {
			c.logger.Warn("Lỗi đọc provider cache", zap.Error(err))
		} else if found {
			metrics.ProviderCacheHitsTotal.Inc()
			features, err := decode(payload)
			if err == nil {
				c.logger.Debug("Provider cache hit",
					zap.String("sub_district", subDistrict),
					zap.Int("features", len(features)))
				return features, nil
			}
			c.logger.Warn("Payload trong cache hỏng, fetch lại", zap.Error(err))
		} else {
			metrics.ProviderCacheMissesTotal.Inc()
		}
	}

	payload, err := c.post(ctx, query)
	if err != nil {
		var fe *FetchError
		if errors.As(err, &fe) {
			fe.SubDistrict = subDistrict
			metrics.OverpassFailTotal.WithLabelValues(string(fe.Kind)).Inc()
		}
		c.logger.Error("Overpass request thất bại",
			zap.String("sub_district", subDistrict),
			zap.Error(err))
		return nil, err
	}

	features, err := decode(payload)
	if err != nil {
		var fe *FetchError
		if errors.As(err, &fe) {
			fe.SubDistrict = subDistrict
			metrics.OverpassFailTotal.WithLabelValues(string(fe.Kind)).Inc()
		}
		c.logger.Error("Overpass response không hợp lệ",
			zap.String("sub_district", subDistrict),
			zap.Error(err))
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, payload); err != nil {
			c.logger.Warn("Lỗi ghi provider cache", zap.Error(err))
		}
	}

	metrics.FeaturesFetchedTotal.Add(float64(len(features)))
	c.logger.Info("Đã fetch jalan/gang từ Overpass",
		zap.String("sub_district", subDistrict),
		zap.Int("features", len(features)))

	return features, nil
}

func (c *Client) post(ctx context.Context, query string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	form := url.Values{}
	form.Set("data", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &FetchError{Kind: KindNetwork, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	t0 := time.Now()
	metrics.OverpassRequestsTotal.Inc()
	c.logger.Debug("Overpass request", zap.String("query", query))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Kind: classifyTransport(err), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Kind: classifyTransport(err), Err: err}
	}

	dur := time.Since(t0)
	metrics.OverpassDurationMs.Observe(float64(dur.Milliseconds()))
	c.logger.Debug("Overpass response",
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
		zap.Duration("duration", dur))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{
			Kind:       KindStatus,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s", snippet(body)),
		}
	}

	return body, nil
}

func classifyTransport(err error) FetchKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return KindTimeout
	}
	return KindNetwork
}

// overpassEnvelope các trường meta của response Overpass
type overpassEnvelope struct {
	Remark string `json:"remark"`
}

// decode parse JSON Overpass và dựng hình học way từ các node đi kèm
func decode(payload []byte) ([]StreetFeature, error) {
	var env overpassEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, &FetchError{Kind: KindDecode, Err: err}
	}
	if strings.Contains(strings.ToLower(env.Remark), "error") {
		return nil, &FetchError{Kind: KindRemote, Err: errors.New(env.Remark)}
	}

	var data osm.OSM
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, &FetchError{Kind: KindDecode, Err: err}
	}

	nodes := make(map[osm.NodeID]orb.Point, len(data.Nodes))
	for _, n := range data.Nodes {
		nodes[n.ID] = orb.Point{n.Lon, n.Lat}
	}

	features := make([]StreetFeature, 0, len(data.Ways))
	for _, w := range data.Ways {
		ls := make(orb.LineString, 0, len(w.Nodes))
		for _, wn := range w.Nodes {
			if pt, ok := nodes[wn.ID]; ok {
				ls = append(ls, pt)
			} else if wn.Lat != 0 || wn.Lon != 0 {
				ls = append(ls, orb.Point{wn.Lon, wn.Lat})
			}
		}

		f := StreetFeature{
			ID:      int64(w.ID),
			RawName: w.Tags.Find("name"),
			Highway: w.Tags.Find("highway"),
		}
		if len(ls) >= 2 {
			f.Geometry = ls
		}
		features = append(features, f)
	}

	return features, nil
}

func cacheKey(query string) string {
	sum := sha256.Sum256([]byte(query))
	return "overpass:" + hex.EncodeToString(sum[:])
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	if s == "" {
		s = "empty body"
	}
	return s
}
