package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arc-research/housing-dashboard/internal/config"
	"github.com/arc-research/housing-dashboard/internal/dataset"
	"github.com/arc-research/housing-dashboard/internal/selection"
)

const homeValues = `{"type":"FeatureCollection","features":[
 {"type":"Feature","geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1],[0,0]]]},
  "properties":{"RegionName":"30002","CountyName":"Dekalb County","all_BR":200000,"home_value_index":200000,"12month_forecast":1.2}},
 {"type":"Feature","geometry":{"type":"Polygon","coordinates":[[[1,0],[2,0],[2,1],[1,1],[1,0]]]},
  "properties":{"RegionName":"30303","CountyName":"Fulton County","all_BR":300000,"home_value_index":310000,"12month_forecast":-0.4}}
]}`

const rent = `{"type":"FeatureCollection","features":[
 {"type":"Feature","geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1],[0,0]]]},
  "properties":{"RegionName":"30002","CountyName":"DeKalb County","zori":1850}}
]}`

// testConfig writes a small geojson snapshot and returns a config reading it.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
		return p
	}
	hv := write("home_values.geojson", homeValues)

	c := &config.Config{}
	c.Server.Port = 8080
	c.Cache.Driver = "memory"
	c.Cache.MaxEntries = 16
	c.Data.Datasets = []dataset.Source{
		{Name: "home_values", Driver: dataset.DriverGeoJSON, Path: hv},
		{Name: "forecasts", Driver: dataset.DriverGeoJSON, Path: hv},
		{Name: "rent_index", Driver: dataset.DriverGeoJSON, Path: write("rent.geojson", rent)},
	}
	c.Data.History = write("history.csv", "RegionName,CountyName,2024-01-31,2024-02-29\n30002,DeKalb County,199000,200000\n")
	return c
}

func TestInitDashboard(t *testing.T) {
	env, err := initDashboard(context.Background(), testConfig(t), "serve", true)
	require.NoError(t, err)
	defer env.Close()

	assert.Equal(t, []string{"forecasts", "home_values", "rent_index"}, env.Registry.Names())
	assert.NotNil(t, env.Cache)
	assert.Nil(t, env.Pool)
	assert.Len(t, env.Registry.History(), 1)
}

func TestInitDashboard_InvalidConfig(t *testing.T) {
	c := testConfig(t)
	c.Data.Datasets = nil
	_, err := initDashboard(context.Background(), c, "render", false)
	assert.Error(t, err)
}

func TestInitDashboard_BadTheme(t *testing.T) {
	c := testConfig(t)
	c.Theme.Path = filepath.Join(t.TempDir(), "missing.yaml")
	_, err := initDashboard(context.Background(), c, "render", false)
	assert.Error(t, err)
}

func TestRenderTo(t *testing.T) {
	env, err := initDashboard(context.Background(), testConfig(t), "render", false)
	require.NoError(t, err)
	defer env.Close()

	var buf bytes.Buffer
	require.NoError(t, renderTo(context.Background(), &buf, env.Renderer, selection.Keys{View: "forecast", Extruded: true}))

	var v map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &v))
	assert.Equal(t, "Metro Atlanta Home Value Forecasts", v["title"])
	assert.Equal(t, 45.0, v["viewport"].(map[string]interface{})["pitch"])

	err = renderTo(context.Background(), &buf, env.Renderer, selection.Keys{View: "rent-index", Extruded: true})
	assert.Error(t, err)
}

func TestValidateAll(t *testing.T) {
	env, err := initDashboard(context.Background(), testConfig(t), "validate", false)
	require.NoError(t, err)
	defer env.Close()

	var buf bytes.Buffer
	require.NoError(t, validateAll(context.Background(), &buf, env.Registry, env.Renderer))
	out := buf.String()
	assert.Contains(t, out, "home_values")
	assert.Contains(t, out, "home-value   ok   2 regions, median $250,000")
	assert.Contains(t, out, "rent-index   ok   1 regions, median $1,850")
}
