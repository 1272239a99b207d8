package reference

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

var (
	rePublished   = regexp.MustCompile(`^/spreadsheets/d/e/([A-Za-z0-9_-]+)`)
	reSpreadsheet = regexp.MustCompile(`^/spreadsheets/d/([A-Za-z0-9_-]+)`)
)

// DefaultGID sheet con mặc định khi link không chỉ định gid
const DefaultGID = "0"

// ExportURL suy ra endpoint CSV từ link Google Sheets.
// gid lấy từ query hoặc fragment (#gid=...), mặc định "0".
// Link đã trỏ tới CSV thì giữ nguyên.
func ExportURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return "", &ReferenceFetchError{Kind: KindInvalidURL, URL: raw, Err: err}
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", &ReferenceFetchError{Kind: KindInvalidURL, URL: raw, Err: errors.New("cần link http(s)")}
	}

	gid := sheetGID(u)
	base := u.Scheme + "://" + u.Host

	if m := rePublished.FindStringSubmatch(u.Path); m != nil {
		q := url.Values{}
		q.Set("output", "csv")
		q.Set("gid", gid)
		return base + "/spreadsheets/d/e/" + m[1] + "/pub?" + q.Encode(), nil
	}
	if m := reSpreadsheet.FindStringSubmatch(u.Path); m != nil {
		q := url.Values{}
		q.Set("format", "csv")
		q.Set("gid", gid)
		return base + "/spreadsheets/d/" + m[1] + "/export?" + q.Encode(), nil
	}

	query := u.Query()
	if strings.HasSuffix(strings.ToLower(u.Path), ".csv") ||
		query.Get("format") == "csv" || query.Get("output") == "csv" {
		return raw, nil
	}

	return "", &ReferenceFetchError{Kind: KindInvalidURL, URL: raw, Err: errors.New("không nhận ra link Google Sheets")}
}

func sheetGID(u *url.URL) string {
	if gid := strings.TrimSpace(u.Query().Get("gid")); gid != "" {
		return gid
	}
	if u.Fragment != "" {
		if fq, err := url.ParseQuery(u.Fragment); err == nil {
			if gid := strings.TrimSpace(fq.Get("gid")); gid != "" {
				return gid
			}
		}
	}
	return DefaultGID
}
