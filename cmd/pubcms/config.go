package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/eringen/pubcms"
)

// fileConfig mirrors pubcms.SiteConfig with the keys accepted in pubcms.yaml
// and as PUBCMS_* environment variables.
type fileConfig struct {
	Name              string   `mapstructure:"name"`
	URL               string   `mapstructure:"url"`
	Description       string   `mapstructure:"description"`
	Addr              string   `mapstructure:"addr"`
	DatabasePath      string   `mapstructure:"database_path"`
	StaticDir         string   `mapstructure:"static_dir"`
	SessionSecret     string   `mapstructure:"session_secret"`
	CookieSecure      bool     `mapstructure:"cookie_secure"`
	BootstrapUser     string   `mapstructure:"bootstrap_user"`
	BootstrapPassword string   `mapstructure:"bootstrap_password"`
	Categories        []string `mapstructure:"categories"`
	MaxUploadSize     int64    `mapstructure:"max_upload_size"`
	MaxImageWidth     int      `mapstructure:"max_image_width"`
	LogFormat         string   `mapstructure:"log_format"`
	LogLevel          string   `mapstructure:"log_level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("name", "Blog")
	v.SetDefault("url", "http://localhost:5000")
	v.SetDefault("description", "")
	v.SetDefault("addr", ":5000")
	v.SetDefault("database_path", "data/data.db")
	v.SetDefault("static_dir", "static")
	v.SetDefault("session_secret", "")
	v.SetDefault("cookie_secure", false)
	v.SetDefault("bootstrap_user", "admin")
	v.SetDefault("bootstrap_password", "")
	v.SetDefault("categories", pubcms.DefaultCategories)
	v.SetDefault("max_upload_size", 10<<20)
	v.SetDefault("max_image_width", 1600)
	v.SetDefault("log_format", "text")
	v.SetDefault("log_level", "info")
}

// loadConfig reads cfgFile (or ./pubcms.yaml when present) and overlays
// PUBCMS_* environment variables.
func loadConfig(v *viper.Viper, cfgFile string) (fileConfig, error) {
	setDefaults(v)
	v.SetEnvPrefix("PUBCMS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("pubcms")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fileConfig{}, fmt.Errorf("read config: %w", err)
		}
	}

	var fc fileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return fileConfig{}, fmt.Errorf("decode config: %w", err)
	}
	fc.Categories = splitList(fc.Categories)
	return fc, nil
}

// splitList accepts both YAML lists and a comma-separated env value.
func splitList(vals []string) []string {
	var out []string
	for _, v := range vals {
		out = append(out, strings.Split(v, ",")...)
	}
	return pubcms.FilterEmpty(out)
}

func (fc fileConfig) site() pubcms.SiteConfig {
	return pubcms.SiteConfig{
		Name:              fc.Name,
		URL:               fc.URL,
		Description:       fc.Description,
		Addr:              fc.Addr,
		DatabasePath:      fc.DatabasePath,
		StaticDir:         fc.StaticDir,
		SessionSecret:     fc.SessionSecret,
		CookieSecure:      fc.CookieSecure,
		BootstrapUser:     fc.BootstrapUser,
		BootstrapPassword: fc.BootstrapPassword,
		DefaultCategories: fc.Categories,
		MaxUploadSize:     fc.MaxUploadSize,
		MaxImageWidth:     fc.MaxImageWidth,
	}
}

func (fc fileConfig) logger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(fc.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(fc.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
