package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/arc-research/housing-dashboard/internal/cache"
	"github.com/arc-research/housing-dashboard/internal/choropleth"
	"github.com/arc-research/housing-dashboard/internal/model"
	"github.com/arc-research/housing-dashboard/internal/selection"
)

type fakeSource struct {
	datasets   map[string]*model.Dataset
	boundaries []model.Boundary
	history    []model.Series
}

func (f *fakeSource) Dataset(name string) (*model.Dataset, error) {
	ds, ok := f.datasets[name]
	if !ok {
		return nil, eris.Wrapf(model.ErrConfiguration, "no dataset %s", name)
	}
	return ds, nil
}

func (f *fakeSource) Boundaries() []model.Boundary { return f.boundaries }
func (f *fakeSource) History() []model.Series      { return f.history }

func square(x float64) geom.T {
	return geom.NewPolygonFlat(geom.XY, []float64{x, 0, x + 1, 0, x + 1, 1, x, 1, x, 0}, []int{10})
}

func rec(id, county string, x float64, metrics map[string]*float64) model.RegionRecord {
	return model.RegionRecord{RegionID: id, CountyName: county, Geometry: square(x), Metrics: metrics}
}

func newSource() *fakeSource {
	return &fakeSource{
		datasets: map[string]*model.Dataset{
			"home_values": {
				Name:    "home_values",
				Columns: []string{"all_BR", "1_BR"},
				Records: []model.RegionRecord{
					rec("30002", "DeKalb County", 0, map[string]*float64{"all_BR": model.Float(200000), "1_BR": nil}),
					rec("30303", "Fulton County", 1, map[string]*float64{"all_BR": model.Float(300000), "1_BR": nil}),
					rec("30305", "Fulton County", 2, map[string]*float64{"all_BR": model.Float(100000), "1_BR": nil}),
					rec("30306", "Fulton County", 3, map[string]*float64{"all_BR": nil, "1_BR": nil}),
				},
			},
			"forecasts": {
				Name:    "forecasts",
				Columns: []string{"12month_forecast", "home_value_index"},
				Records: []model.RegionRecord{
					rec("30002", "DeKalb County", 0, map[string]*float64{"12month_forecast": model.Float(1.5), "home_value_index": model.Float(250000)}),
					rec("30303", "Fulton County", 1, map[string]*float64{"12month_forecast": model.Float(-0.5), "home_value_index": nil}),
				},
			},
		},
		boundaries: []model.Boundary{
			{Name: "DeKalb County", Geometry: square(0)},
			{Name: "Fulton County", Geometry: square(1)},
		},
		history: []model.Series{
			{RegionID: "30002", CountyName: "DeKalb County"},
			{RegionID: "30303", CountyName: "Fulton County"},
			{RegionID: "30305", CountyName: "Fulton County"},
		},
	}
}

func mustParse(t *testing.T, k selection.Keys) selection.Context {
	t.Helper()
	ctx, err := selection.Parse(k)
	require.NoError(t, err)
	return ctx
}

func TestRender_HomeValueAllCounties(t *testing.T) {
	r := NewRenderer(newSource())

	v, err := r.Render(context.Background(), selection.Default(selection.HomeValue))
	require.NoError(t, err)

	assert.Equal(t, "Metro Atlanta Home Values", v.Title)
	assert.Equal(t, "all_BR", v.Column)
	assert.Equal(t, "dark", v.MapStyle)
	assert.Equal(t, selection.DefaultViewport, v.Viewport)
	assert.False(t, v.NoData)

	// The null 30306 value yields no feature.
	assert.Len(t, v.Layers.Choropleth.Data.Features, 3)
	assert.Len(t, v.Layers.Legend, 5)
	assert.Equal(t, [4]uint8{255, 255, 255, 255}, v.Layers.Boundaries.LineColor)

	require.NotNil(t, v.KPIs)
	assert.Equal(t, "30303", v.KPIs.Max.RegionID)
	assert.Equal(t, "$300,000", v.KPIs.Max.Formatted)
	assert.Equal(t, "30002", v.KPIs.Median.RegionID)
	assert.Equal(t, "$200,000", v.KPIs.Median.Formatted)
	assert.Equal(t, "30305", v.KPIs.Min.RegionID)
	assert.Equal(t, 3, v.KPIs.Count)
}

func TestRender_CountyFilter(t *testing.T) {
	r := NewRenderer(newSource())

	v, err := r.Render(context.Background(), mustParse(t, selection.Keys{County: "fulton", Basemap: "light"}))
	require.NoError(t, err)

	assert.Equal(t, "All Single-Family Homes, Fulton County", v.Subtitle)
	assert.Equal(t, [4]uint8{0, 0, 0, 255}, v.Layers.Boundaries.LineColor)
	for _, f := range v.Layers.Choropleth.Data.Features {
		assert.Equal(t, "Fulton County", f.Properties[choropleth.PropCountyName])
	}
	assert.Equal(t, "30303", v.KPIs.Max.RegionID)
	assert.Equal(t, "30305", v.KPIs.Min.RegionID)
	// Median of 100000 and 300000 is 200000; the tie goes to the lower id.
	assert.Equal(t, 200000.0, v.KPIs.Median.Value)
	assert.Equal(t, "30303", v.KPIs.Median.RegionID)
}

func TestRender_EmptySelection(t *testing.T) {
	r := NewRenderer(newSource())

	v, err := r.Render(context.Background(), mustParse(t, selection.Keys{County: "cobb"}))
	require.NoError(t, err)
	assert.True(t, v.NoData)
	assert.Equal(t, NoDataMessage, v.Message)
	assert.Nil(t, v.KPIs)
	assert.Empty(t, v.Layers.Choropleth.Data.Features)
}

func TestRender_AllNullColumn(t *testing.T) {
	r := NewRenderer(newSource())

	v, err := r.Render(context.Background(), mustParse(t, selection.Keys{Category: "1br"}))
	require.NoError(t, err)
	assert.True(t, v.NoData)
	assert.Empty(t, v.Layers.Legend)
}

func TestRender_MissingColumn(t *testing.T) {
	r := NewRenderer(newSource())

	_, err := r.Render(context.Background(), mustParse(t, selection.Keys{Category: "5br"}))
	assert.True(t, errors.Is(err, model.ErrConfiguration))
}

func TestRender_MissingDataset(t *testing.T) {
	r := NewRenderer(newSource())

	_, err := r.Render(context.Background(), selection.Default(selection.RentIndex))
	assert.True(t, errors.Is(err, model.ErrConfiguration))
}

func TestRender_ForecastExtruded(t *testing.T) {
	r := NewRenderer(newSource())

	v, err := r.Render(context.Background(), mustParse(t, selection.Keys{View: "forecast", Extruded: true}))
	require.NoError(t, err)

	assert.Equal(t, 45.0, v.Viewport.Pitch)
	assert.True(t, v.Layers.Choropleth.Extruded)
	assert.Len(t, v.Layers.Legend, 6)

	byID := map[string]map[string]interface{}{}
	for _, f := range v.Layers.Choropleth.Data.Features {
		byID[f.ID] = f.Properties
	}
	assert.InDelta(t, 25000.0, byID["30002"][choropleth.PropElevation], 1e-9)
	assert.Equal(t, 0.0, byID["30303"][choropleth.PropElevation])
	assert.Equal(t, "1.5%", byID["30002"][choropleth.PropValueFormatted])
	assert.Equal(t, "-0.5%", v.KPIs.Min.Formatted)
}

func TestRender_ExtrudedNeedsElevationColumn(t *testing.T) {
	src := newSource()
	src.datasets["forecasts"].Columns = []string{"12month_forecast"}
	r := NewRenderer(src)

	_, err := r.Render(context.Background(), mustParse(t, selection.Keys{View: "forecast", Extruded: true}))
	assert.True(t, errors.Is(err, model.ErrConfiguration))
}

func TestRender_Theme(t *testing.T) {
	theme, err := ParseTheme([]byte("ramps:\n  home-value:\n    start: \"#000000\"\n    end: \"#ffffff\"\n    steps: 3\n"))
	require.NoError(t, err)
	r := NewRenderer(newSource(), WithTheme(theme))

	v, err := r.Render(context.Background(), selection.Default(selection.HomeValue))
	require.NoError(t, err)
	require.Len(t, v.Layers.Legend, 3)
	assert.Equal(t, choropleth.Color{}, v.Layers.Legend[0].Color)
	assert.Equal(t, choropleth.Color{R: 255, G: 255, B: 255}, v.Layers.Legend[2].Color)
}

func TestRender_Cancelled(t *testing.T) {
	r := NewRenderer(newSource())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Render(ctx, selection.Default(selection.HomeValue))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRenderJSON_Cache(t *testing.T) {
	c := cache.NewMemory(10, time.Hour)
	r := NewRenderer(newSource(), WithCache(c))
	sel := selection.Default(selection.HomeValue)

	first, err := r.RenderJSON(context.Background(), sel)
	require.NoError(t, err)
	second, err := r.RenderJSON(context.Background(), sel)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	stats, err := c.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, 1, stats.Entries)

	var v map[string]interface{}
	require.NoError(t, json.Unmarshal(first, &v))
	assert.Equal(t, "Metro Atlanta Home Values", v["title"])
	assert.Equal(t, false, v["no_data"])
}

func TestRenderJSON_Deterministic(t *testing.T) {
	r := NewRenderer(newSource())
	sel := selection.Default(selection.HomeValue)

	a, err := r.RenderJSON(context.Background(), sel)
	require.NoError(t, err)
	b, err := r.RenderJSON(context.Background(), sel)
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
}

func TestHistory(t *testing.T) {
	r := NewRenderer(newSource())

	assert.Len(t, r.History(selection.AllCounties, ""), 3)
	assert.Len(t, r.History(selection.Fulton, ""), 2)
	got := r.History(selection.Fulton, "30305")
	require.Len(t, got, 1)
	assert.Equal(t, "30305", got[0].RegionID)
	assert.Empty(t, r.History(selection.DeKalb, "30305"))
}
