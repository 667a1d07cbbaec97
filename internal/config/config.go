package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Backend BackendConfig `mapstructure:"backend"`
	Theme   ThemeConfig   `mapstructure:"theme"`
	Admin   AdminConfig   `mapstructure:"admin"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Log     LogConfig     `mapstructure:"log"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	Host         string `mapstructure:"host"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
}

// Addr returns the listen address of the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// BackendConfig holds REST backend configuration
type BackendConfig struct {
	// BaseURL, when set, bypasses environment detection.
	BaseURL              string `mapstructure:"base_url"`
	LocalURL             string `mapstructure:"local_url"`
	RemoteURL            string `mapstructure:"remote_url"`
	LivePreviewPorts     []int  `mapstructure:"live_preview_ports"`
	Timeout              int    `mapstructure:"timeout"`
	MaxRequestsPerSecond int    `mapstructure:"max_requests_per_second"`
}

// ThemeConfig describes where the page templates live and how pages are patched.
type ThemeConfig struct {
	Dir              string `mapstructure:"dir"`
	IndexTemplate    string `mapstructure:"index_template"`
	ProductTemplate  string `mapstructure:"product_template"`
	CategoryTemplate string `mapstructure:"category_template"`
	AssetsDir        string `mapstructure:"assets_dir"`
	SiteName         string `mapstructure:"site_name"`
	StagingHost      string `mapstructure:"staging_host"`
	ExploreLimit     int    `mapstructure:"explore_limit"`
	// SettleDelay is in milliseconds.
	SettleDelay int `mapstructure:"settle_delay"`
}

// AdminConfig holds the admin form constraints
type AdminConfig struct {
	CategoryTemplate    string   `mapstructure:"category_template"`
	SubcategoryTemplate string   `mapstructure:"subcategory_template"`
	MaxFiles            int      `mapstructure:"max_files"`
	AllowedExtensions   []string `mapstructure:"allowed_extensions"`
	AllowedMediaTypes   []string `mapstructure:"allowed_media_types"`
	MaxUploadMB         int      `mapstructure:"max_upload_mb"`
}

// RedisConfig holds Redis connection details for the flash store
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	Database int    `mapstructure:"database"`
	FlashTTL int    `mapstructure:"flash_ttl"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load loads configuration from YAML file with environment variable overrides.
// A missing config file or .env is not an error: defaults and environment are
// enough to run. A malformed .env is.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.read_timeout", 15)
	v.SetDefault("server.write_timeout", 30)

	v.SetDefault("backend.base_url", "")
	v.SetDefault("backend.local_url", "http://localhost:5000/api")
	v.SetDefault("backend.remote_url", "https://furniture-backend-1-nvv3.onrender.com/api")
	v.SetDefault("backend.live_preview_ports", []int{5500, 5501})
	v.SetDefault("backend.timeout", 30)
	v.SetDefault("backend.max_requests_per_second", 50)

	v.SetDefault("theme.dir", "./theme")
	v.SetDefault("theme.index_template", "index.html")
	v.SetDefault("theme.product_template", "product.html")
	v.SetDefault("theme.category_template", "index_decor.html")
	v.SetDefault("theme.assets_dir", "./theme/assets")
	v.SetDefault("theme.site_name", "Furnistør")
	v.SetDefault("theme.staging_host", "sites.kaliumtheme.com")
	v.SetDefault("theme.explore_limit", 12)
	v.SetDefault("theme.settle_delay", 0)

	v.SetDefault("admin.category_template", "admin/category.html")
	v.SetDefault("admin.subcategory_template", "admin/subcategory.html")
	v.SetDefault("admin.max_files", 1)
	v.SetDefault("admin.allowed_extensions", []string{"avif", "webp"})
	v.SetDefault("admin.allowed_media_types", []string{"image/avif", "image/webp"})
	v.SetDefault("admin.max_upload_mb", 10)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.database", 0)
	v.SetDefault("redis.flash_ttl", 300)

	v.SetDefault("log.level", "info")
}

// SettleDelayDuration returns the pause taken before page sections start.
func (t ThemeConfig) SettleDelayDuration() time.Duration {
	return time.Duration(t.SettleDelay) * time.Millisecond
}
