package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/easyclip/pkg/clip"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, clip.DefaultOptions(), cfg.ClipOptions())
	assert.Equal(t, 40.0, cfg.Gesture.MinPointerSeparation)
	assert.Equal(t, 720, cfg.Decode.MaxWidth)
	assert.Equal(t, 1280, cfg.Decode.MaxHeight)
	assert.Equal(t, "clip_", cfg.Output.Prefix)
	assert.Equal(t, 90, cfg.Output.Quality)
	assert.Equal(t, "approx-bilinear", cfg.CropConfig().Interpolation)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"aspect":        func(c *Config) { c.Clip.AspectRatio = 0 },
		"scale order":   func(c *Config) { c.Clip.MinScale = 5 },
		"settle":        func(c *Config) { c.Clip.SettleDurationMS = -1 },
		"separation":    func(c *Config) { c.Gesture.MinPointerSeparation = -1 },
		"decode":        func(c *Config) { c.Decode.MaxWidth = 0 },
		"interpolation": func(c *Config) { c.Cropper.Interpolation = "lanczos" },
		"quality":       func(c *Config) { c.Output.Quality = 101 },
		"format":        func(c *Config) { c.Output.Format = "gif" },
		"dir":           func(c *Config) { c.Output.Dir = "" },
		"view":          func(c *Config) { c.View.Height = 0 },
		"margin":        func(c *Config) { c.View.Margin = c.View.Width / 2 },
		"crop height":   func(c *Config) { c.Clip.AspectRatio = 0.4 },
	}

	for name, mutate := range cases {
		cfg := Default()
		mutate(cfg)
		assert.Error(t, cfg.Validate(), name)
	}
}

func TestValidateAccepts(t *testing.T) {
	cases := map[string]func(*Config){
		"upper case format": func(c *Config) { c.Output.Format = "JPG" },
		"mixed case webp":   func(c *Config) { c.Output.Format = "WebP" },
		// 960px wide at 1:2 is exactly the 1920px view height.
		"crop fills view height": func(c *Config) { c.Clip.AspectRatio = 0.5 },
	}

	for name, mutate := range cases {
		cfg := Default()
		mutate(cfg)
		assert.NoError(t, cfg.Validate(), name)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg := Default()
	cfg.Clip.SnapImmediately = true
	cfg.Output.Format = "webp"
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
	assert.True(t, loaded.ClipOptions().SnapImmediately)
}

func TestLoadKeepsDefaultsForMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"clip":{"max_scale":5},"output":{"quality":70}}`), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 5.0, cfg.Clip.MaxScale)
	assert.Equal(t, 70, cfg.Output.Quality)
	assert.Equal(t, 0.25, cfg.Clip.MinScale)
	assert.Equal(t, "clip_", cfg.Output.Prefix)
	assert.NoError(t, cfg.Validate())
}

func TestLoadErrors(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "failed to read config file")

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0644))
	_, err = LoadFromFile(bad)
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestGetConfigPath(t *testing.T) {
	assert.True(t, strings.HasSuffix(GetConfigPath(), filepath.Join("easyclip", "config.json")))
}
