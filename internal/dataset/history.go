package dataset

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/arc-research/housing-dashboard/internal/model"
)

// LoadHistory reads a wide monthly history table (one row per ZIP, one
// column per month) from a .csv or .xlsx file.
func LoadHistory(ctx context.Context, path string) ([]model.Series, error) {
	var rows [][]string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "history: open %s", path)
		}
		defer func() { _ = f.Close() }()
		if rows, err = readCSV(ctx, f); err != nil {
			return nil, eris.Wrapf(err, "history: read %s", path)
		}
	case ".xlsx":
		var err error
		if rows, err = readXLSX(path, ""); err != nil {
			return nil, err
		}
	default:
		return nil, eris.Wrapf(model.ErrConfiguration, "history: unsupported file type %s", path)
	}
	return ParseHistory(rows)
}

// ParseHistory converts a header row plus data rows into one Series per
// region. Columns whose header is a date (2006-01-02, 2006-01 or
// 1/2/2006) are observations; other non-reserved columns are ignored.
func ParseHistory(rows [][]string) ([]model.Series, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	header := rows[0]

	dates := make(map[int]string)
	l, ok := detectLayout(header, func(i int) bool {
		d, ok := parseDateHeader(header[i])
		if ok {
			dates[i] = d
		}
		return ok
	})
	if !ok {
		return nil, eris.Wrap(model.ErrDataIntegrity, "history: no region id column")
	}

	seen := make(map[string]bool)
	out := make([]model.Series, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if l.region >= len(row) || strings.TrimSpace(row[l.region]) == "" {
			continue
		}
		s := model.Series{
			RegionID: NormalizeRegionID(row[l.region]),
			Points:   make([]model.Point, 0, len(l.metrics)),
		}
		if seen[s.RegionID] {
			return nil, eris.Wrapf(model.ErrDataIntegrity, "history: duplicate region id %s", s.RegionID)
		}
		seen[s.RegionID] = true
		if l.county >= 0 && l.county < len(row) {
			s.CountyName = NormalizeCounty(row[l.county])
		}
		for _, i := range l.metrics {
			var v *float64
			if i < len(row) {
				v = parseMetric(row[i])
			}
			s.Points = append(s.Points, model.Point{Date: dates[i], Value: v})
		}
		out = append(out, s)
	}
	return out, nil
}

var dateLayouts = []string{"2006-01-02", "2006-01", "1/2/2006", "01/02/2006"}

// parseDateHeader normalizes a month column header to YYYY-MM-DD.
func parseDateHeader(h string) (string, bool) {
	h = strings.TrimSpace(h)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, h); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}
