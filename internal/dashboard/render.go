// Package dashboard runs one render pass: it resolves a selection, classifies
// the selected metric column, assembles the map layers and extracts the KPI
// panel from the same filtered records.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/arc-research/housing-dashboard/internal/cache"
	"github.com/arc-research/housing-dashboard/internal/choropleth"
	"github.com/arc-research/housing-dashboard/internal/model"
	"github.com/arc-research/housing-dashboard/internal/selection"
	"github.com/arc-research/housing-dashboard/internal/summary"
)

// NoDataMessage is shown in place of the map and KPIs when a selection
// matches no valued region.
const NoDataMessage = "no data for this selection"

// Source provides the read-only snapshots. *dataset.Registry satisfies it.
type Source interface {
	Dataset(name string) (*model.Dataset, error)
	Boundaries() []model.Boundary
	History() []model.Series
}

// KPI is one formatted summary statistic.
type KPI struct {
	summary.Stat
	Formatted string `json:"formatted"`
}

// KPIs is the summary panel.
type KPIs struct {
	Max    KPI `json:"max"`
	Median KPI `json:"median"`
	Min    KPI `json:"min"`
	Count  int `json:"count"`
}

// View is everything the front end needs to draw one page.
type View struct {
	Selection selection.Keys        `json:"selection"`
	Title     string                `json:"title"`
	Subtitle  string                `json:"subtitle"`
	Column    string                `json:"column"`
	MapStyle  string                `json:"map_style"`
	Viewport  selection.Viewport    `json:"viewport"`
	Tooltip   string                `json:"tooltip"`
	Layers    *choropleth.MapLayers `json:"layers"`
	KPIs      *KPIs                 `json:"kpis,omitempty"`
	NoData    bool                  `json:"no_data"`
	Message   string                `json:"message,omitempty"`
}

// Renderer runs render passes against one snapshot.
type Renderer struct {
	src   Source
	theme *Theme
	cache cache.Cache
	log   *zap.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithTheme overrides the built-in colour ramps.
func WithTheme(t *Theme) Option {
	return func(r *Renderer) { r.theme = t }
}

// WithCache stores encoded views in c.
func WithCache(c cache.Cache) Option {
	return func(r *Renderer) { r.cache = c }
}

// NewRenderer creates a Renderer over src.
func NewRenderer(src Source, opts ...Option) *Renderer {
	r := &Renderer{
		src: src,
		log: zap.L().With(zap.String("component", "dashboard.renderer")),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Cache returns the configured cache, or nil.
func (r *Renderer) Cache() cache.Cache { return r.cache }

// Render runs one render pass. An empty selection is not an error: the view
// comes back with NoData set.
func (r *Renderer) Render(ctx context.Context, sel selection.Context) (*View, error) {
	log := r.log.With(
		zap.String("render_id", uuid.NewString()),
		zap.String("selection", sel.CacheKey()),
	)

	res, err := sel.Resolve()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "dashboard: render cancelled")
	}

	ds, err := r.src.Dataset(res.Dataset)
	if err != nil {
		return nil, err
	}
	if !ds.HasColumn(res.Column) {
		return nil, eris.Wrapf(model.ErrConfiguration, "dashboard: dataset %s has no column %s", ds.Name, res.Column)
	}
	if res.ElevationColumn != "" && !ds.HasColumn(res.ElevationColumn) {
		return nil, eris.Wrapf(model.ErrConfiguration, "dashboard: dataset %s has no column %s", ds.Name, res.ElevationColumn)
	}

	records := make([]model.RegionRecord, 0, len(ds.Records))
	for _, rec := range ds.Records {
		if res.Filter(rec) {
			records = append(records, rec)
		}
	}
	values := make([]*float64, len(records))
	for i, rec := range records {
		values[i] = rec.Value(res.Column)
	}

	rs := r.theme.Ramp(sel.View)
	ramp, err := choropleth.RampFromHex(rs.Start, rs.End, rs.Steps)
	if err != nil {
		return nil, err
	}
	classes, err := choropleth.Classify(values, ramp)
	if err != nil {
		return nil, err
	}

	formatter := res.Format.Formatter()
	opts := choropleth.LayerOptions{
		Format:        formatter,
		BoundaryColor: res.BoundaryColor,
	}
	if res.ElevationColumn != "" {
		opts.Elevation = make([]*float64, len(records))
		for i, rec := range records {
			opts.Elevation[i] = rec.Value(res.ElevationColumn)
		}
		opts.ElevationScale = res.ElevationScale
	}
	layers, err := choropleth.Assemble(records, classes, r.src.Boundaries(), opts)
	if err != nil {
		log.Error("dataset integrity error", zap.Error(err))
		return nil, err
	}

	v := &View{
		Selection: sel.Keys(),
		Title:     res.Title,
		Subtitle:  res.Subtitle,
		Column:    res.Column,
		MapStyle:  res.MapStyle,
		Viewport:  res.Viewport,
		Tooltip:   res.Tooltip,
		Layers:    layers,
	}

	s, err := summary.Summarize(summary.FromRecords(records, res.Column))
	switch {
	case errors.Is(err, model.ErrEmptyDataset):
		v.NoData = true
		v.Message = NoDataMessage
		log.Info("empty selection", zap.Int("records", len(records)))
		return v, nil
	case err != nil:
		log.Error("dataset integrity error", zap.Error(err))
		return nil, err
	}

	v.KPIs = &KPIs{
		Max:    KPI{Stat: s.Max, Formatted: formatter(s.Max.Value)},
		Median: KPI{Stat: s.Median, Formatted: formatter(s.Median.Value)},
		Min:    KPI{Stat: s.Min, Formatted: formatter(s.Min.Value)},
		Count:  s.Count,
	}
	log.Debug("rendered",
		zap.Int("records", len(records)),
		zap.Int("features", len(layers.Choropleth.Data.Features)),
		zap.Int("bins", len(ramp)),
	)
	return v, nil
}

// RenderJSON renders sel and encodes the view, serving repeat selections
// from the cache when one is configured. Cache failures are logged and the
// pass falls through to a fresh render.
func (r *Renderer) RenderJSON(ctx context.Context, sel selection.Context) ([]byte, error) {
	key := sel.CacheKey()
	if r.cache != nil {
		data, ok, err := r.cache.Get(ctx, key)
		if err != nil {
			r.log.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		} else if ok {
			return data, nil
		}
	}

	v, err := r.Render(ctx, sel)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, eris.Wrap(err, "dashboard: encode view")
	}

	if r.cache != nil {
		if err := r.cache.Put(ctx, key, data); err != nil {
			r.log.Warn("cache put failed", zap.String("key", key), zap.Error(err))
		}
	}
	return data, nil
}

// History returns the monthly series of the regions in county, optionally
// narrowed to one ZIP code.
func (r *Renderer) History(county selection.County, zip string) []model.Series {
	filter := county.Filter()
	out := make([]model.Series, 0)
	for _, s := range r.src.History() {
		if zip != "" && s.RegionID != zip {
			continue
		}
		if !filter(model.RegionRecord{RegionID: s.RegionID, CountyName: s.CountyName}) {
			continue
		}
		out = append(out, s)
	}
	return out
}
