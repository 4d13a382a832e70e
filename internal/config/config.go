package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port            int    `envconfig:"PORT" default:"8080"`
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	JWTSecret       string `envconfig:"JWT_SECRET"`
	AssetDir        string `envconfig:"ASSET_DIR" default:"./data/assets"`
	FfmpegPath      string `envconfig:"FFMPEG_PATH" default:"ffmpeg"`
	AllowedOrigins  string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
	LogLevel        string `envconfig:"LOG_LEVEL" default:"info"`
	RenderWidth     int    `envconfig:"RENDER_WIDTH" default:"640"`
	RenderHeight    int    `envconfig:"RENDER_HEIGHT" default:"480"`
	MaxRenderWidth  int    `envconfig:"MAX_RENDER_WIDTH" default:"4096"`
	MaxRenderHeight int    `envconfig:"MAX_RENDER_HEIGHT" default:"4096"`
	MaxExportFrames int    `envconfig:"MAX_EXPORT_FRAMES" default:"600"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.RenderWidth <= 0 || cfg.RenderHeight <= 0 {
		return nil, fmt.Errorf("render size must be positive, got %dx%d", cfg.RenderWidth, cfg.RenderHeight)
	}
	if cfg.MaxRenderWidth < cfg.RenderWidth || cfg.MaxRenderHeight < cfg.RenderHeight {
		return nil, fmt.Errorf("max render size %dx%d is below the render size %dx%d",
			cfg.MaxRenderWidth, cfg.MaxRenderHeight, cfg.RenderWidth, cfg.RenderHeight)
	}
	if cfg.MaxExportFrames <= 0 {
		return nil, fmt.Errorf("MAX_EXPORT_FRAMES must be positive, got %d", cfg.MaxExportFrames)
	}
	return &cfg, nil
}

// Origins splits AllowedOrigins into a list, dropping blanks.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Level parses LogLevel, falling back to info.
func (c *Config) Level() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
