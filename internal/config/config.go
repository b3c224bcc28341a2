/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package config loads the user configuration from a YAML file in the user
// config directory and applies SKB_* environment overrides on top.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"sketchboard/internal/engine"
	applog "sketchboard/internal/log"
	"sketchboard/internal/undo"
	"sketchboard/internal/vector"
	"sketchboard/internal/viewport"
)

// CurrentVersion is written to config_version on Save.
const CurrentVersion = 1

// EnvConfigPath overrides the location of the config file.
const EnvConfigPath = "SKB_CONFIG"

type PointConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type CanvasConfig struct {
	MinZoom       float64     `yaml:"min_zoom"`
	MaxZoom       float64     `yaml:"max_zoom"`
	InitialZoom   float64     `yaml:"initial_zoom"`
	ZoomStep      float64     `yaml:"zoom_step"`
	Background    string      `yaml:"background"`
	HandlePadding float64     `yaml:"handle_padding"`
	CopyAnchor    PointConfig `yaml:"copy_anchor"`
	EraserScale   float64     `yaml:"eraser_scale"`
	MaxRedo       int         `yaml:"max_redo"`
}

type ToolsConfig struct {
	StrokeColor string  `yaml:"stroke_color"`
	FillColor   string  `yaml:"fill_color"`
	StrokeWidth float64 `yaml:"stroke_width"`
}

type ExportConfig struct {
	Dir        string  `yaml:"dir"`
	Format     string  `yaml:"format"`
	Margin     float64 `yaml:"margin"`
	IncludeLog bool    `yaml:"include_log"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

// AppConfig is the user-editable configuration. Environment variables are
// read-only overrides and are never written back by Save.
type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	Canvas        CanvasConfig  `yaml:"canvas"`
	Tools         ToolsConfig   `yaml:"tools"`
	Export        ExportConfig  `yaml:"export"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: CurrentVersion,
		Canvas: CanvasConfig{
			MinZoom:       0.5,
			MaxZoom:       5,
			InitialZoom:   1,
			ZoomStep:      0.1,
			Background:    "#ffffff",
			HandlePadding: 10,
			CopyAnchor:    PointConfig{X: 100, Y: 100},
			EraserScale:   5,
		},
		Tools:   ToolsConfig{StrokeColor: "#000000", FillColor: "transparent", StrokeWidth: 2},
		Export:  ExportConfig{Format: "png", Margin: 16},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// overrides mirrors the settings that can be forced from the environment.
// Unset variables leave the pointer nil.
type overrides struct {
	MinZoom     *float64 `envconfig:"MIN_ZOOM"`
	MaxZoom     *float64 `envconfig:"MAX_ZOOM"`
	ZoomStep    *float64 `envconfig:"ZOOM_STEP"`
	Background  *string  `envconfig:"BACKGROUND"`
	StrokeColor *string  `envconfig:"STROKE_COLOR"`
	FillColor   *string  `envconfig:"FILL_COLOR"`
	StrokeWidth *float64 `envconfig:"STROKE_WIDTH"`
	ExportDir   *string  `envconfig:"EXPORT_DIR"`
	ExportFmt   *string  `envconfig:"EXPORT_FORMAT"`
	LogLevel    *string  `envconfig:"LOG_LEVEL"`
	LogFormat   *string  `envconfig:"LOG_FORMAT"`
	LogSource   *bool    `envconfig:"LOG_SOURCE"`
	LogFile     *string  `envconfig:"LOG_FILE"`
}

// envKeys maps yaml keys to the environment variable overriding them.
var envKeys = map[string]string{
	"canvas.min_zoom":    "SKB_MIN_ZOOM",
	"canvas.max_zoom":    "SKB_MAX_ZOOM",
	"canvas.zoom_step":   "SKB_ZOOM_STEP",
	"canvas.background":  "SKB_BACKGROUND",
	"tools.stroke_color": "SKB_STROKE_COLOR",
	"tools.fill_color":   "SKB_FILL_COLOR",
	"tools.stroke_width": "SKB_STROKE_WIDTH",
	"export.dir":         "SKB_EXPORT_DIR",
	"export.format":      "SKB_EXPORT_FORMAT",
	"logging.level":      "SKB_LOG_LEVEL",
	"logging.format":     "SKB_LOG_FORMAT",
	"logging.source":     "SKB_LOG_SOURCE",
	"logging.file":       "SKB_LOG_FILE",
}

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	base, err := os.UserConfigDir()
	if err != nil || base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "sketchboard", "config.yaml"), nil
}

// Load reads the user config file if present, merges it over the defaults
// and applies environment overrides. A malformed file is reported but the
// defaults plus overrides are still returned.
func Load() (AppConfig, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	var fileErr error
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			fileErr = fmt.Errorf("parse %s: %w", path, err)
		} else {
			mergeInto(&cfg, &fileCfg)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		fileErr = fmt.Errorf("read %s: %w", path, err)
	}
	if err := applyEnvOverrides(&cfg); err != nil {
		return cfg, err
	}
	if fileErr != nil {
		return cfg, fileErr
	}
	return cfg, cfg.Validate()
}

// Save writes cfg as YAML to ConfigPath.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	cfg.ConfigVersion = CurrentVersion
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Validate checks ranges and colors.
func (c AppConfig) Validate() error {
	if c.Canvas.MinZoom <= 0 || c.Canvas.MaxZoom < c.Canvas.MinZoom {
		return fmt.Errorf("config: invalid zoom range [%v, %v]", c.Canvas.MinZoom, c.Canvas.MaxZoom)
	}
	if c.Canvas.InitialZoom < c.Canvas.MinZoom || c.Canvas.InitialZoom > c.Canvas.MaxZoom {
		return fmt.Errorf("config: initial zoom %v outside [%v, %v]", c.Canvas.InitialZoom, c.Canvas.MinZoom, c.Canvas.MaxZoom)
	}
	if c.Canvas.ZoomStep <= 0 {
		return fmt.Errorf("config: zoom step must be positive, got %v", c.Canvas.ZoomStep)
	}
	if c.Tools.StrokeWidth <= 0 {
		return fmt.Errorf("config: stroke width must be positive, got %v", c.Tools.StrokeWidth)
	}
	for key, s := range map[string]string{
		"canvas.background":  c.Canvas.Background,
		"tools.stroke_color": c.Tools.StrokeColor,
		"tools.fill_color":   c.Tools.FillColor,
	} {
		if _, err := vector.ParseColor(s); err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
	}
	return nil
}

// EngineConfig maps the configuration onto the engine settings.
func (c AppConfig) EngineConfig() engine.Config {
	ec := engine.DefaultConfig()
	ec.Viewport = viewport.Config{
		MinZoom: c.Canvas.MinZoom,
		MaxZoom: c.Canvas.MaxZoom,
		Step:    c.Canvas.ZoomStep,
		Initial: c.Canvas.InitialZoom,
	}
	ec.Background = c.Canvas.Background
	ec.HandlePadding = c.Canvas.HandlePadding
	ec.CopyAnchor = vector.Pt{X: c.Canvas.CopyAnchor.X, Y: c.Canvas.CopyAnchor.Y}
	ec.EraserScale = c.Canvas.EraserScale
	ec.Undo = undo.Config{MaxRedo: c.Canvas.MaxRedo}
	ec.StrokeColor = c.Tools.StrokeColor
	ec.FillColor = c.Tools.FillColor
	ec.StrokeWidth = c.Tools.StrokeWidth
	ec.ImageFormat = c.Export.Format
	return ec
}

// LogOptions maps the logging section onto logger options.
func (c AppConfig) LogOptions() applog.Options {
	return applog.Options{
		Level:     c.Logging.Level,
		Format:    c.Logging.Format,
		AddSource: c.Logging.Source,
		File:      c.Logging.File,
	}
}

// EnvOverrideFor returns the environment variable overriding key, if it is set.
func EnvOverrideFor(key string) (string, bool) {
	name, ok := envKeys[key]
	if !ok || os.Getenv(name) == "" {
		return "", false
	}
	return name, true
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	setF := func(d *float64, s float64) {
		if s != 0 {
			*d = s
		}
	}
	setS := func(d *string, s string) {
		if s = strings.TrimSpace(s); s != "" {
			*d = s
		}
	}
	setF(&dst.Canvas.MinZoom, src.Canvas.MinZoom)
	setF(&dst.Canvas.MaxZoom, src.Canvas.MaxZoom)
	setF(&dst.Canvas.InitialZoom, src.Canvas.InitialZoom)
	setF(&dst.Canvas.ZoomStep, src.Canvas.ZoomStep)
	setS(&dst.Canvas.Background, src.Canvas.Background)
	setF(&dst.Canvas.HandlePadding, src.Canvas.HandlePadding)
	if src.Canvas.CopyAnchor != (PointConfig{}) {
		dst.Canvas.CopyAnchor = src.Canvas.CopyAnchor
	}
	setF(&dst.Canvas.EraserScale, src.Canvas.EraserScale)
	if src.Canvas.MaxRedo > 0 {
		dst.Canvas.MaxRedo = src.Canvas.MaxRedo
	}

	setS(&dst.Tools.StrokeColor, src.Tools.StrokeColor)
	setS(&dst.Tools.FillColor, src.Tools.FillColor)
	setF(&dst.Tools.StrokeWidth, src.Tools.StrokeWidth)

	setS(&dst.Export.Dir, src.Export.Dir)
	setS(&dst.Export.Format, strings.ToLower(src.Export.Format))
	setF(&dst.Export.Margin, src.Export.Margin)
	dst.Export.IncludeLog = src.Export.IncludeLog

	setS(&dst.Logging.Level, strings.ToLower(src.Logging.Level))
	setS(&dst.Logging.Format, strings.ToLower(src.Logging.Format))
	dst.Logging.Source = src.Logging.Source
	setS(&dst.Logging.File, src.Logging.File)
}

func applyEnvOverrides(cfg *AppConfig) error {
	var ov overrides
	if err := envconfig.Process(applog.EnvPrefix, &ov); err != nil {
		return fmt.Errorf("config: env overrides: %w", err)
	}
	if ov.MinZoom != nil {
		cfg.Canvas.MinZoom = *ov.MinZoom
	}
	if ov.MaxZoom != nil {
		cfg.Canvas.MaxZoom = *ov.MaxZoom
	}
	if ov.ZoomStep != nil {
		cfg.Canvas.ZoomStep = *ov.ZoomStep
	}
	if ov.Background != nil {
		cfg.Canvas.Background = *ov.Background
	}
	if ov.StrokeColor != nil {
		cfg.Tools.StrokeColor = *ov.StrokeColor
	}
	if ov.FillColor != nil {
		cfg.Tools.FillColor = *ov.FillColor
	}
	if ov.StrokeWidth != nil {
		cfg.Tools.StrokeWidth = *ov.StrokeWidth
	}
	if ov.ExportDir != nil {
		cfg.Export.Dir = *ov.ExportDir
	}
	if ov.ExportFmt != nil {
		cfg.Export.Format = strings.ToLower(*ov.ExportFmt)
	}
	if ov.LogLevel != nil {
		cfg.Logging.Level = strings.ToLower(*ov.LogLevel)
	}
	if ov.LogFormat != nil {
		cfg.Logging.Format = strings.ToLower(*ov.LogFormat)
	}
	if ov.LogSource != nil {
		cfg.Logging.Source = *ov.LogSource
	}
	if ov.LogFile != nil {
		cfg.Logging.File = *ov.LogFile
	}
	return nil
}
