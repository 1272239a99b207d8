package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/street-mapper/internal/boundary"
	"github.com/street-mapper/internal/overpass"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.yaml"), []byte(content), 0o644))
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, BoundarySourceFile, cfg.Boundary.Source)
	assert.Equal(t, "nmsls", cfg.Boundary.PropertyKeys.SubUnit)
	assert.InDelta(t, 100.0, cfg.Boundary.FallbackRadiusM, 1e-9)
	assert.Equal(t, 60*time.Second, cfg.Overpass.Timeout)
	assert.Equal(t, overpass.DefaultHighwayClasses, cfg.Overpass.HighwayClasses)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, "first", cfg.Mapper.DuplicatePolicy)
	assert.InDelta(t, 0.2, cfg.Matcher.NearRatio, 1e-9)

	opts, err := cfg.Boundary.Options()
	require.NoError(t, err)
	assert.Equal(t, []boundary.Level{boundary.LevelSubDistrict, boundary.LevelUrbanVillage}, opts.UniqueLevels)
	assert.InDelta(t, 100.0, cfg.ClientConfig().PaddingMeters, 1e-9)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := writeConfig(t, `
app:
  env: production
boundary:
  path: /data/mataram.geojson
  fallback_radius_m: 50
  property_keys:
    sub_district: KECAMATAN
overpass:
  timeout: 45s
cache:
  enabled: true
  ttl: 30m
mapper:
  duplicate_policy: longest
`)
	t.Setenv("OVERPASS_TIMEOUT", "5s")
	t.Setenv("REDIS_URL", "redis://localhost:6379/1")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "/data/mataram.geojson", cfg.Boundary.Path)
	assert.Equal(t, "KECAMATAN", cfg.Boundary.PropertyKeys.SubDistrict)
	assert.Equal(t, "nmdesa", cfg.Boundary.PropertyKeys.UrbanVillage)
	assert.InDelta(t, 50.0, cfg.Boundary.FallbackRadiusM, 1e-9)
	assert.Equal(t, 5*time.Second, cfg.Overpass.Timeout)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 30*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "redis://localhost:6379/1", cfg.Redis.URL)
	assert.Equal(t, "longest", cfg.Mapper.DuplicatePolicy)
}

func TestLoad_Invalid(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{"Nguồn lạ", "boundary:\n  source: s3\n"},
		{"Policy lạ", "mapper:\n  duplicate_policy: random\n"},
		{"Cấp lạ", "boundary:\n  unique_levels: [provinsi]\n"},
		{"Bán kính âm", "boundary:\n  fallback_radius_m: -1\n"},
		{"YAML hỏng", "boundary: [\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.content))
			assert.Error(t, err)
		})
	}
}
