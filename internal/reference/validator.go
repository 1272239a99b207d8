package reference

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/street-mapper/app/models"
	"github.com/street-mapper/internal/matcher"
	"github.com/street-mapper/internal/metrics"
	"github.com/street-mapper/internal/normalizer"
)

// DefaultNameColumns header được coi là cột tên jalan/gang (so sánh lowercase)
var DefaultNameColumns = []string{
	"nama jalan dan gang", "nama jalan", "nama gang", "jalan", "nama", "name", "street",
}

// Config cấu hình validator
type Config struct {
	Timeout     time.Duration
	NameColumns []string
}

// Row một dòng tên trong sheet tham chiếu
type Row struct {
	RawName    string `json:"raw_name"`
	Normalized string `json:"normalized"`
}

// RecordMatch kết quả so khớp của một StreetRecord
type RecordMatch struct {
	Record     models.StreetRecord `json:"record"`
	Kind       matcher.Kind        `json:"kind"`
	Candidate  string              `json:"candidate,omitempty"`
	Similarity float64             `json:"similarity,omitempty"`
	Distance   int                 `json:"distance,omitempty"`
}

// Report báo cáo đối chiếu
type Report struct {
	ReferenceURL       string        `json:"reference_url"`
	ExportURL          string        `json:"export_url"`
	ReferenceRows      int           `json:"reference_rows"`
	ReferenceEmpty     bool          `json:"reference_empty"`
	Message            string        `json:"message"`
	Exact              int           `json:"exact"`
	Near               int           `json:"near"`
	None               int           `json:"none"`
	Records            []RecordMatch `json:"records"`
	UnmatchedReference []Row         `json:"unmatched_reference"`
}

// Validator đối chiếu kết quả mapping với sheet tham chiếu public
type Validator struct {
	cfg        Config
	httpClient *http.Client
	matcher    *matcher.Matcher
	logger     *zap.Logger
}

// NewValidator tạo Validator
func NewValidator(cfg Config, m *matcher.Matcher, logger *zap.Logger) *Validator {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if len(cfg.NameColumns) == 0 {
		cfg.NameColumns = DefaultNameColumns
	}
	if m == nil {
		m = matcher.NewMatcher(matcher.DefaultConfig())
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Validator{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		matcher:    m,
		logger:     logger,
	}
}

// Fetch tải sheet dạng CSV và chuẩn hóa cột tên.
// Sheet truy cập được nhưng không có dòng dữ liệu trả về slice rỗng, không lỗi.
func (v *Validator) Fetch(ctx context.Context, rawURL string) ([]Row, error) {
	exportURL, err := ExportURL(rawURL)
	if err != nil {
		v.fail(err)
		return nil, err
	}

	rows, err := v.fetchExport(ctx, exportURL)
	if err != nil {
		v.fail(err)
		return nil, err
	}
	return rows, nil
}

func (v *Validator) fail(err error) {
	var rfe *ReferenceFetchError
	if errors.As(err, &rfe) {
		metrics.ReferenceFailTotal.WithLabelValues(string(rfe.Kind)).Inc()
	}
	v.logger.Warn("Không lấy được sheet tham chiếu", zap.Error(err))
}

func (v *Validator) fetchExport(ctx context.Context, exportURL string) ([]Row, error) {
	ctx, cancel := context.WithTimeout(ctx, v.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, exportURL, nil)
	if err != nil {
		return nil, &ReferenceFetchError{Kind: KindInvalidURL, URL: exportURL, Err: err}
	}
	req.Header.Set("Accept", "text/csv")

	metrics.ReferenceRequestsTotal.Inc()
	t0 := time.Now()

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, &ReferenceFetchError{Kind: KindUnreachable, URL: exportURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ReferenceFetchError{Kind: KindUnreachable, URL: exportURL, Err: err}
	}

	v.logger.Debug("Reference sheet response",
		zap.String("url", exportURL),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
		zap.Duration("duration", time.Since(t0)))

	switch {
	case resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden,
		resp.StatusCode == http.StatusNotFound:
		return nil, &ReferenceFetchError{Kind: KindNotPublic, URL: exportURL, StatusCode: resp.StatusCode}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &ReferenceFetchError{Kind: KindUnreachable, URL: exportURL, StatusCode: resp.StatusCode}
	}

	// sheet private bị redirect về trang đăng nhập HTML
	if looksLikeHTML(resp.Header.Get("Content-Type"), body) {
		return nil, &ReferenceFetchError{
			Kind: KindNotPublic,
			URL:  exportURL,
			Err:  errors.New("nhận được trang HTML thay vì CSV"),
		}
	}

	return v.parseRows(exportURL, body)
}

func looksLikeHTML(contentType string, body []byte) bool {
	if strings.Contains(strings.ToLower(contentType), "text/html") {
		return true
	}
	head := bytes.ToLower(bytes.TrimSpace(body))
	if len(head) > 64 {
		head = head[:64]
	}
	return bytes.HasPrefix(head, []byte("<!doctype html")) || bytes.HasPrefix(head, []byte("<html"))
}

func (v *Validator) parseRows(exportURL string, body []byte) ([]Row, error) {
	body = bytes.TrimPrefix(body, []byte("\xef\xbb\xbf"))
	if len(bytes.TrimSpace(body)) == 0 {
		return []Row{}, nil
	}

	r := csv.NewReader(bytes.NewReader(body))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, &ReferenceFetchError{Kind: KindMalformed, URL: exportURL, Err: err}
	}
	if len(records) == 0 {
		return []Row{}, nil
	}
	if err := checkHeader(records[0]); err != nil {
		return nil, &ReferenceFetchError{Kind: KindMalformed, URL: exportURL, Err: err}
	}

	col := v.nameColumn(records[0])
	rows := make([]Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		if col >= len(rec) {
			continue
		}
		raw := strings.TrimSpace(rec[col])
		normalized := normalizer.Normalize(raw)
		if normalized == "" {
			continue
		}
		rows = append(rows, Row{RawName: raw, Normalized: normalized})
	}
	return rows, nil
}

// checkHeader header phải là text: UTF-8 hợp lệ, không có ký tự điều khiển,
// và ít nhất một cột có chữ
func checkHeader(header []string) error {
	printable := false
	for _, h := range header {
		if !utf8.ValidString(h) {
			return errors.New("header không phải UTF-8")
		}
		for _, r := range h {
			if unicode.IsControl(r) && r != '\t' && r != '\n' && r != '\r' {
				return fmt.Errorf("header chứa ký tự điều khiển %U", r)
			}
			if !unicode.IsSpace(r) {
				printable = true
			}
		}
	}
	if !printable {
		return errors.New("header không có cột nào")
	}
	return nil
}

// nameColumn cột khớp header ưu tiên đầu tiên; không có thì cột 0
func (v *Validator) nameColumn(header []string) int {
	normalized := make([]string, len(header))
	for i, h := range header {
		h = strings.ReplaceAll(strings.ToLower(h), "_", " ")
		normalized[i] = strings.Join(strings.Fields(h), " ")
	}
	for _, candidate := range v.cfg.NameColumns {
		candidate = strings.ToLower(strings.TrimSpace(candidate))
		for i, h := range normalized {
			if h == candidate {
				return i
			}
		}
	}
	return 0
}

// Validate đối chiếu records với sheet tham chiếu tại rawURL
func (v *Validator) Validate(ctx context.Context, records []models.StreetRecord, rawURL string) (*Report, error) {
	exportURL, err := ExportURL(rawURL)
	if err != nil {
		v.fail(err)
		return nil, err
	}

	rows, err := v.fetchExport(ctx, exportURL)
	if err != nil {
		v.fail(err)
		return nil, err
	}

	report := v.Compare(records, rows)
	report.ReferenceURL = rawURL
	report.ExportURL = exportURL

	v.logger.Info("Đối chiếu sheet tham chiếu hoàn tất",
		zap.String("export_url", exportURL),
		zap.Int("reference_rows", report.ReferenceRows),
		zap.Int("records", len(records)),
		zap.Int("exact", report.Exact),
		zap.Int("near", report.Near),
		zap.Int("none", report.None),
		zap.Int("unmatched_reference", len(report.UnmatchedReference)))

	return report, nil
}

// Compare phần thuần của Validate: phân loại từng record và tìm các tên
// tham chiếu không khớp record nào.
func (v *Validator) Compare(records []models.StreetRecord, rows []Row) *Report {
	report := &Report{
		ReferenceRows:      len(rows),
		ReferenceEmpty:     len(rows) == 0,
		Records:            make([]RecordMatch, 0, len(records)),
		UnmatchedReference: []Row{},
	}

	// tên tham chiếu phân biệt, giữ raw của lần xuất hiện đầu
	firstRaw := make(map[string]string, len(rows))
	refs := make([]string, 0, len(rows))
	for _, row := range rows {
		if _, ok := firstRaw[row.Normalized]; ok {
			continue
		}
		firstRaw[row.Normalized] = row.RawName
		refs = append(refs, row.Normalized)
	}
	sort.Strings(refs)

	names := make([]string, 0, len(records))
	seenNames := make(map[string]struct{}, len(records))

	for _, rec := range records {
		name := normalizer.Normalize(rec.Name)
		if _, ok := seenNames[name]; !ok && name != "" {
			seenNames[name] = struct{}{}
			names = append(names, name)
		}

		c := v.matcher.BestMatch(name, refs)
		m := RecordMatch{Record: rec, Kind: c.Kind}
		if c.Kind != matcher.KindNone {
			m.Candidate = c.Name
			m.Similarity = c.Similarity
			m.Distance = c.Distance
		}
		report.Records = append(report.Records, m)

		switch c.Kind {
		case matcher.KindExact:
			report.Exact++
		case matcher.KindNear:
			report.Near++
		default:
			report.None++
		}
		metrics.MatchResultsTotal.WithLabelValues(string(c.Kind)).Inc()
	}

	for _, ref := range refs {
		if v.matcher.BestMatch(ref, names).Kind == matcher.KindNone {
			report.UnmatchedReference = append(report.UnmatchedReference, Row{RawName: firstRaw[ref], Normalized: ref})
		}
	}

	if report.ReferenceEmpty {
		report.Message = "Sheet tham chiếu truy cập được nhưng không có dữ liệu"
	} else {
		report.Message = fmt.Sprintf("Đã nạp %d dòng tham chiếu: %d khớp, %d gần đúng, %d không khớp",
			report.ReferenceRows, report.Exact, report.Near, report.None)
	}
	return report
}
