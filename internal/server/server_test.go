package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/arc-research/housing-dashboard/internal/cache"
	"github.com/arc-research/housing-dashboard/internal/dashboard"
	"github.com/arc-research/housing-dashboard/internal/dataset"
	"github.com/arc-research/housing-dashboard/internal/model"
)

func square(x float64) geom.T {
	return geom.NewPolygonFlat(geom.XY, []float64{x, 0, x + 1, 0, x + 1, 1, x, 1, x, 0}, []int{10})
}

func testRegistry(t *testing.T) *dataset.Registry {
	t.Helper()
	hv := &model.Dataset{
		Name:    "home_values",
		Columns: []string{"all_BR"},
		Records: []model.RegionRecord{
			{RegionID: "30303", CountyName: "Fulton County", Geometry: square(1), Metrics: map[string]*float64{"all_BR": model.Float(300000)}},
			{RegionID: "30002", CountyName: "DeKalb County", Geometry: square(0), Metrics: map[string]*float64{"all_BR": model.Float(200000)}},
		},
	}
	history := []model.Series{
		{RegionID: "30002", CountyName: "DeKalb County", Points: []model.Point{{Date: "2024-01-31", Value: model.Float(1)}}},
		{RegionID: "30303", CountyName: "Fulton County"},
	}
	r, err := dataset.NewRegistry([]*model.Dataset{hv}, nil, history)
	require.NoError(t, err)
	return r
}

func newTestServer(t *testing.T, opts Options, ropts ...dashboard.Option) *Server {
	t.Helper()
	return New(dashboard.NewRenderer(testRegistry(t), ropts...), opts)
}

func get(t *testing.T, s *Server, target string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var body map[string]interface{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	}
	return rec, body
}

func TestHealth(t *testing.T) {
	rec, body := get(t, newTestServer(t, Options{}), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestOptions(t *testing.T) {
	rec, body := get(t, newTestServer(t, Options{}), "/api/options")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["views"], 3)
	assert.Len(t, body["counties"], 12)
}

func TestView_HomeValue(t *testing.T) {
	rec, body := get(t, newTestServer(t, Options{}), "/api/views/home-value?basemap=light")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "Metro Atlanta Home Values", body["title"])
	assert.Equal(t, "light", body["map_style"])
	assert.Equal(t, false, body["no_data"])

	kpis := body["kpis"].(map[string]interface{})
	assert.Equal(t, "$300,000", kpis["max"].(map[string]interface{})["formatted"])
}

func TestView_EmptySelection(t *testing.T) {
	rec, body := get(t, newTestServer(t, Options{}), "/api/views/home-value?county=cobb")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["no_data"])
	assert.Equal(t, dashboard.NoDataMessage, body["message"])
}

func TestView_SelectionUnavailable(t *testing.T) {
	s := newTestServer(t, Options{})
	targets := []string{
		"/api/views/vacancy",
		"/api/views/home-value?county=atlantis",
		"/api/views/home-value?basemap=satellite",
		"/api/views/home-value?extruded=maybe",
		"/api/views/home-value?extruded=true",
		"/api/views/forecast",
	}
	for _, target := range targets {
		t.Run(target, func(t *testing.T) {
			rec, body := get(t, s, target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "selection unavailable", body["error"])
			assert.NotContains(t, body, "detail")
			assert.NotContains(t, rec.Body.String(), "selection:")
		})
	}
}

type brokenSource struct{}

func (brokenSource) Dataset(string) (*model.Dataset, error) {
	return nil, eris.Wrap(model.ErrDataIntegrity, "duplicate region id 30002")
}
func (brokenSource) Boundaries() []model.Boundary { return nil }
func (brokenSource) History() []model.Series      { return nil }

func TestView_IntegrityError(t *testing.T) {
	s := New(dashboard.NewRenderer(brokenSource{}), Options{})
	rec, body := get(t, s, "/api/views/home-value")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "dataset integrity error", body["error"])
	assert.Nil(t, body["detail"])
}

func TestHistory(t *testing.T) {
	s := newTestServer(t, Options{})

	rec, body := get(t, s, "/api/history")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "all", body["county"])
	assert.Len(t, body["series"], 2)

	_, body = get(t, s, "/api/history?county=dekalb")
	require.Len(t, body["series"], 1)

	_, body = get(t, s, "/api/history?county=fulton&zip=30002")
	assert.Empty(t, body["series"])

	rec, _ = get(t, s, "/api/history?zip=3000X")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = get(t, s, "/api/history?county=atlantis")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCacheStats(t *testing.T) {
	rec, body := get(t, newTestServer(t, Options{}), "/api/cache/stats")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, cache.DriverNone, body["driver"])

	s := newTestServer(t, Options{}, dashboard.WithCache(cache.NewMemory(10, time.Hour)))
	get(t, s, "/api/views/home-value")
	get(t, s, "/api/views/home-value")
	_, body = get(t, s, "/api/cache/stats")
	assert.Equal(t, cache.DriverMemory, body["driver"])
	assert.Equal(t, float64(1), body["hits"])
	assert.Equal(t, float64(1), body["entries"])
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, Options{RateLimit: 0.001, RateBurst: 1})

	rec, _ := get(t, s, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, body := get(t, s, "/health")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "rate limit exceeded", body["error"])
}

func TestCORS(t *testing.T) {
	s := newTestServer(t, Options{CORSOrigins: []string{"https://dashboard.example.org"}})

	req := httptest.NewRequest(http.MethodGet, "/api/options", nil)
	req.Header.Set("Origin", "https://dashboard.example.org")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "https://dashboard.example.org", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/options", nil)
	req.Header.Set("Origin", "https://elsewhere.example.org")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
