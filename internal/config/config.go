package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/menta2k/easyclip/pkg/clip"
	"github.com/menta2k/easyclip/pkg/cropper"
	"github.com/menta2k/easyclip/pkg/gesture"
)

// Config holds the application configuration
type Config struct {
	Clip    ClipConfig    `json:"clip"`
	Gesture GestureConfig `json:"gesture"`
	Decode  DecodeConfig  `json:"decode"`
	Cropper CropperConfig `json:"cropper"`
	Output  OutputConfig  `json:"output"`
	View    ViewConfig    `json:"view"`
}

// ClipConfig holds the transform controller tuning
type ClipConfig struct {
	AspectRatio      float64 `json:"aspect_ratio"`
	MinScale         float64 `json:"min_scale"`
	MaxScale         float64 `json:"max_scale"`
	ScaleDamping     float64 `json:"scale_damping"`
	TranslateDamping float64 `json:"translate_damping"`
	SettleDurationMS int     `json:"settle_duration_ms"`
	SnapImmediately  bool    `json:"snap_immediately"`
}

// GestureConfig holds configuration for touch interpretation
type GestureConfig struct {
	MinPointerSeparation float64 `json:"min_pointer_separation"`
}

// DecodeConfig bounds the size photos are decoded at
type DecodeConfig struct {
	MaxWidth  int `json:"max_width"`
	MaxHeight int `json:"max_height"`
}

// CropperConfig holds configuration for clip extraction
type CropperConfig struct {
	Interpolation  string `json:"interpolation"`
	FullResolution bool   `json:"full_resolution"`
}

// OutputConfig holds configuration for output generation
type OutputConfig struct {
	Dir     string `json:"dir"`
	Prefix  string `json:"prefix"`
	Format  string `json:"format"`
	Quality int    `json:"quality"`
}

// ViewConfig describes the headless view the CLI lays the widget out in
type ViewConfig struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	// Margin is the horizontal inset of the crop window from each view edge.
	Margin int `json:"margin"`
}

// Default returns a configuration with default values
func Default() *Config {
	opts := clip.DefaultOptions()
	return &Config{
		Clip: ClipConfig{
			AspectRatio:      opts.AspectRatio,
			MinScale:         opts.MinScale,
			MaxScale:         opts.MaxScale,
			ScaleDamping:     opts.ScaleDamping,
			TranslateDamping: opts.TranslateDamping,
			SettleDurationMS: int(opts.SettleDuration / time.Millisecond),
		},
		Gesture: GestureConfig{
			MinPointerSeparation: gesture.DefaultMinSeparation,
		},
		Decode: DecodeConfig{
			MaxWidth:  720,
			MaxHeight: 1280,
		},
		Cropper: CropperConfig{
			Interpolation: "approx-bilinear",
		},
		Output: OutputConfig{
			Dir:     filepath.Join(os.TempDir(), "easyclip"),
			Prefix:  "clip_",
			Format:  "jpg",
			Quality: 90,
		},
		View: ViewConfig{
			Width:  1080,
			Height: 1920,
			Margin: 60,
		},
	}
}

// LoadFromFile loads configuration from a JSON file. Fields missing from
// the file keep their default values.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.ClipOptions().Validate(); err != nil {
		return fmt.Errorf("clip: %w", err)
	}

	if c.Gesture.MinPointerSeparation < 0 {
		return fmt.Errorf("gesture.min_pointer_separation must not be negative")
	}

	if c.Decode.MaxWidth < 1 || c.Decode.MaxHeight < 1 {
		return fmt.Errorf("decode.max_width and decode.max_height must be positive")
	}

	if !slices.Contains(cropper.Interpolations(), c.Cropper.Interpolation) {
		return fmt.Errorf("cropper.interpolation must be one of %v", cropper.Interpolations())
	}

	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		return fmt.Errorf("output.quality must be between 1 and 100")
	}

	if !slices.Contains([]string{"jpg", "jpeg", "png", "webp"}, strings.ToLower(c.Output.Format)) {
		return fmt.Errorf("output.format must be jpg, png or webp")
	}

	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir cannot be empty")
	}

	if c.View.Width < 1 || c.View.Height < 1 {
		return fmt.Errorf("view.width and view.height must be positive")
	}

	if c.View.Margin < 0 || 2*c.View.Margin >= c.View.Width {
		return fmt.Errorf("view.margin must leave a non-empty crop window")
	}

	if cropHeight := float64(c.View.Width-2*c.View.Margin) / c.Clip.AspectRatio; cropHeight > float64(c.View.Height) {
		return fmt.Errorf("crop window height %.0f exceeds view.height %d; raise clip.aspect_ratio or view.margin", cropHeight, c.View.Height)
	}

	return nil
}

// ClipOptions converts the clip section into controller options
func (c *Config) ClipOptions() clip.Options {
	return clip.Options{
		AspectRatio:      c.Clip.AspectRatio,
		MinScale:         c.Clip.MinScale,
		MaxScale:         c.Clip.MaxScale,
		ScaleDamping:     c.Clip.ScaleDamping,
		TranslateDamping: c.Clip.TranslateDamping,
		SettleDuration:   time.Duration(c.Clip.SettleDurationMS) * time.Millisecond,
		SnapImmediately:  c.Clip.SnapImmediately,
	}
}

// CropConfig converts the cropper section into cropper configuration
func (c *Config) CropConfig() cropper.CropConfig {
	return cropper.CropConfig{
		Interpolation:  c.Cropper.Interpolation,
		FullResolution: c.Cropper.FullResolution,
	}
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "easyclip", "config.json")
}
