// Package config provides application configuration management using Viper.
// Configuration is loaded from a .env file, YAML files and environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Project  ProjectConfig  `mapstructure:"project"`
	Provider ProviderConfig `mapstructure:"provider"`
	Download DownloadConfig `mapstructure:"download"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Database DatabaseConfig `mapstructure:"database"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Sentry   SentryConfig   `mapstructure:"sentry"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Cache    CacheConfig    `mapstructure:"cache"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name    string `mapstructure:"name"`
	Env     string `mapstructure:"env"` // development, production
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	Debug   bool   `mapstructure:"debug"`
	EnvFile string `mapstructure:"env_file"`
}

// ProjectConfig describes the curation project on disk.
type ProjectConfig struct {
	Name             string `mapstructure:"name"`
	AssetsDir        string `mapstructure:"assets_dir"`
	CatalogFileName  string `mapstructure:"catalog_file_name"`
	MinImagesPerTerm int    `mapstructure:"min_images_per_term"`
	PageSize         int    `mapstructure:"page_size"`
	DefaultProvider  string `mapstructure:"default_provider"`
}

// Dir returns assets/<project>.
func (p ProjectConfig) Dir() string {
	return filepath.Join(p.AssetsDir, p.Name)
}

// SearchFilePath returns the operator's term list file.
func (p ProjectConfig) SearchFilePath() string {
	return filepath.Join(p.Dir(), "search.txt")
}

// CatalogPath returns the JSON catalog file.
func (p ProjectConfig) CatalogPath() string {
	return filepath.Join(p.Dir(), "json_files", p.CatalogFileName+".json")
}

// ImageDir returns the root folder for downloaded images.
func (p ProjectConfig) ImageDir() string {
	return filepath.Join(p.Dir(), "image_files")
}

// LogDir returns the per-project log folder.
func (p ProjectConfig) LogDir() string {
	return filepath.Join(p.Dir(), "log_files")
}

// ZipDir returns the folder for exported archives.
func (p ProjectConfig) ZipDir() string {
	return filepath.Join(p.AssetsDir, "zip_files")
}

// Folders lists every directory the project needs.
func (p ProjectConfig) Folders() []string {
	return []string{
		p.AssetsDir,
		p.ZipDir(),
		p.Dir(),
		p.ImageDir(),
		filepath.Dir(p.CatalogPath()),
		filepath.Join(p.Dir(), "video_files"),
		p.LogDir(),
	}
}

// ProviderConfig holds stock-photo provider settings.
type ProviderConfig struct {
	Pexels   ProviderEndpoint `mapstructure:"pexels"`
	Pixabay  ProviderEndpoint `mapstructure:"pixabay"`
	Unsplash ProviderEndpoint `mapstructure:"unsplash"`
	Flickr   ProviderEndpoint `mapstructure:"flickr"`
}

// ProviderEndpoint holds a single provider's configuration.
type ProviderEndpoint struct {
	Enabled bool          `mapstructure:"enabled"`
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
	Retry   RetryConfig   `mapstructure:"retry"`
	CB      CBConfig      `mapstructure:"circuit_breaker"`
}

// RetryConfig holds retry settings.
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	WaitTime    time.Duration `mapstructure:"wait_time"`
	MaxWaitTime time.Duration `mapstructure:"max_wait_time"`
}

// CBConfig holds circuit breaker settings.
type CBConfig struct {
	MaxRequests  uint32        `mapstructure:"max_requests"`
	Interval     time.Duration `mapstructure:"interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
	FailureRatio float64       `mapstructure:"failure_ratio"`
}

// DownloadConfig holds image download settings.
type DownloadConfig struct {
	OnAccept       bool           `mapstructure:"on_accept"`
	MaxImageKB     int            `mapstructure:"max_image_kb"`
	Timeout        time.Duration  `mapstructure:"timeout"`
	ThumbnailWidth uint           `mapstructure:"thumbnail_width"`
	Schedule       ScheduleConfig `mapstructure:"schedule"`
}

// ScheduleConfig holds background catalog download settings.
// A zero interval disables the scheduler.
type ScheduleConfig struct {
	Interval  time.Duration `mapstructure:"interval"`
	Timeout   time.Duration `mapstructure:"timeout"`
	OnStartup bool          `mapstructure:"on_startup"`
}

// CatalogConfig selects the catalog backend.
type CatalogConfig struct {
	Backend string `mapstructure:"backend"` // json, postgres
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Name         string        `mapstructure:"name"`
	User         string        `mapstructure:"user"`
	Password     string        `mapstructure:"password"`
	SSLMode      string        `mapstructure:"ssl_mode"`
	MaxOpenConns int           `mapstructure:"max_open_conns"`
	MaxIdleConns int           `mapstructure:"max_idle_conns"`
	MaxLifetime  time.Duration `mapstructure:"max_lifetime"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
	Output string `mapstructure:"output"` // stdout, stderr, file path
	File   bool   `mapstructure:"file"`   // also write to the project log folder
}

// SentryConfig holds Sentry error tracking settings.
type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

// RedisConfig holds Redis connection settings for caching and locking.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// CacheConfig holds provider search caching settings.
type CacheConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	SearchTTL time.Duration `mapstructure:"search_ttl"`
	KeyPrefix string        `mapstructure:"key_prefix"`
}

// Load reads configuration from file and environment variables.
// Priority: env vars > .env file > config file > defaults
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Config file settings
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Config file not found, continue with defaults + env vars
	}

	// .env values never override variables already set in the environment
	if err := godotenv.Load(v.GetString("app.env_file")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading env file: %w", err)
	}

	// Environment variable settings
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindLegacyEnv(v)

	// Unmarshal config
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// bindLegacyEnv maps the un-prefixed variable names operators already keep in .env.
func bindLegacyEnv(v *viper.Viper) {
	legacy := map[string]string{
		"project.name":                "PROJECT_NAME",
		"project.catalog_file_name":   "JSON_MAP_FILE_NAME",
		"project.min_images_per_term": "MIN_IMAGE_FOR_TERM",
		"download.max_image_kb":       "MAX_IMAGE_KB",
		"download.on_accept":          "IS_DOWNLOAD",
		"provider.pexels.api_key":     "PEXELS_API_KEY",
		"provider.pixabay.api_key":    "PIXABAY_API_KEY",
		"provider.unsplash.api_key":   "UNSPLASH_API_KEY",
		"provider.unsplash.base_url":  "UNSPLASH_API_URL",
		"app.port":                    "APP_PORT",
		"app.host":                    "APP_HOST",
	}
	for key, env := range legacy {
		_ = v.BindEnv(key, "APP_"+strings.ToUpper(strings.NewReplacer(".", "_").Replace(key)), env)
	}
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "photo-curator-service")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "127.0.0.1")
	v.SetDefault("app.port", 5000)
	v.SetDefault("app.debug", true)
	v.SetDefault("app.env_file", ".env")

	// Project defaults
	v.SetDefault("project.name", "unknown")
	v.SetDefault("project.assets_dir", "assets")
	v.SetDefault("project.catalog_file_name", "images")
	v.SetDefault("project.min_images_per_term", 10)
	v.SetDefault("project.page_size", 30)
	v.SetDefault("project.default_provider", "pexels")

	// Provider defaults
	setProviderDefaults(v, "pexels", "https://api.pexels.com")
	setProviderDefaults(v, "pixabay", "https://pixabay.com")
	setProviderDefaults(v, "unsplash", "https://api.unsplash.com")
	setProviderDefaults(v, "flickr", "https://www.flickr.com")
	v.SetDefault("provider.flickr.timeout", "15s")

	// Download defaults
	v.SetDefault("download.on_accept", false)
	v.SetDefault("download.max_image_kb", 256)
	v.SetDefault("download.timeout", "30s")
	v.SetDefault("download.thumbnail_width", 0)
	v.SetDefault("download.schedule.interval", "0s")
	v.SetDefault("download.schedule.timeout", "10m")
	v.SetDefault("download.schedule.on_startup", false)

	// Catalog defaults
	v.SetDefault("catalog.backend", "json")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "photo_curator")
	v.SetDefault("database.user", "app")
	v.SetDefault("database.password", "secret")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 5)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.max_lifetime", "5m")

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output", "stdout")
	v.SetDefault("logger.file", true)

	// Sentry defaults
	v.SetDefault("sentry.enabled", false)
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "development")
	v.SetDefault("sentry.sample_rate", 1.0)

	// Redis defaults
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// Cache defaults
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.search_ttl", "24h")
	v.SetDefault("cache.key_prefix", "photo-curator")
}

func setProviderDefaults(v *viper.Viper, name, baseURL string) {
	prefix := "provider." + name
	v.SetDefault(prefix+".enabled", true)
	v.SetDefault(prefix+".base_url", baseURL)
	v.SetDefault(prefix+".api_key", "")
	v.SetDefault(prefix+".timeout", "10s")
	v.SetDefault(prefix+".retry.max_attempts", 2)
	v.SetDefault(prefix+".retry.wait_time", "500ms")
	v.SetDefault(prefix+".retry.max_wait_time", "3s")
	v.SetDefault(prefix+".circuit_breaker.max_requests", 3)
	v.SetDefault(prefix+".circuit_breaker.interval", "60s")
	v.SetDefault(prefix+".circuit_breaker.timeout", "30s")
	v.SetDefault(prefix+".circuit_breaker.failure_ratio", 0.5)
}
