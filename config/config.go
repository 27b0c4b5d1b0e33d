package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/hardtopnet/image-desc-search/gallery"
)

const (
	appDirName     = "image-desc-search"
	configFileName = "config.json"
	dbFileName     = "image-desc-search.sqlite3"
	cacheDirName   = "cache"
)

// Config holds the persisted settings shared by the CLI and the GUI.
// The indexer-facing values (host, model, patterns) ride along so one
// config file serves every mode.
type Config struct {
	Host   string `mapstructure:"host"`
	Port   int    `mapstructure:"port"`
	Model  string `mapstructure:"model"`
	Prompt string `mapstructure:"prompt"`

	Recursive          bool     `mapstructure:"recursive"`
	FilterPatterns     []string `mapstructure:"filter_patterns"`
	ExcludeDirPatterns []string `mapstructure:"exclude_dir_patterns"`
	Overwrite          string   `mapstructure:"overwrite"`
	MinResolution      int      `mapstructure:"min_resolution"`
	OutputType         string   `mapstructure:"output_type"`

	Gallery GalleryConfig `mapstructure:"gallery"`
}

// GalleryConfig exposes the grid tuning knobs. Zero values mean "use the
// built-in default", so an absent section costs nothing.
type GalleryConfig struct {
	CacheCapacity  int `mapstructure:"cache_capacity"`
	ThumbWidth     int `mapstructure:"thumb_width"`
	PrefetchRows   int `mapstructure:"prefetch_rows"`
	PrefetchBudget int `mapstructure:"prefetch_budget"`
}

// GalleryOptions maps the tuning section onto grid options. Unset knobs
// fall back to the gallery defaults.
func (c *Config) GalleryOptions() gallery.Options {
	return gallery.Options{
		CacheCapacity:  c.Gallery.CacheCapacity,
		ThumbWidth:     c.Gallery.ThumbWidth,
		PrefetchRows:   c.Gallery.PrefetchRows,
		PrefetchBudget: c.Gallery.PrefetchBudget,
	}
}

func DefaultConfig() *Config {
	return &Config{
		Host:               "localhost",
		Port:               11434,
		Model:              "llava:latest",
		Prompt:             "Describe this image. First the overall features, then focus on the people if any, then describe the background. Finally, describe the overall mood, feeling, atmosphere, and colors. Be concise but descriptive.",
		Recursive:          false,
		FilterPatterns:     []string{"*.png", "*.jpg", "*.jpeg", "*.webp"},
		ExcludeDirPatterns: []string{"thumbnails", "temp", "tmp"},
		Overwrite:          "older",
		MinResolution:      1,
		OutputType:         "text",
	}
}

// AppDir returns the per-user application directory:
// %APPDATA%\image-desc-search on Windows, ~/.image-desc-search elsewhere.
func AppDir() (string, error) {
	if appdata := os.Getenv("APPDATA"); appdata != "" {
		return filepath.Join(appdata, appDirName), nil
	}
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("failed to find home directory: %w", err)
	}
	return filepath.Join(home, "."+appDirName), nil
}

// DBPath returns the location of the metadata database.
func DBPath() (string, error) {
	dir, err := AppDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, dbFileName), nil
}

// CacheDir returns the root of the on-disk thumbnail cache.
func CacheDir() (string, error) {
	dir, err := AppDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, cacheDirName), nil
}

// LoadConfig reads the config file, if any, over the defaults. An explicit
// path wins over the app-dir lookup; a missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		viper.SetConfigFile(path)
	} else {
		dir, err := AppDir()
		if err != nil {
			return nil, err
		}
		viper.AddConfigPath(dir)
		viper.SetConfigName("config")
		viper.SetConfigType("json")
	}

	if err := viper.ReadInConfig(); err == nil {
		if err := viper.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfig writes the full configuration to the app-dir config file.
func SaveConfig(cfg *Config) error {
	dir, err := AppDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	viper.Set("host", cfg.Host)
	viper.Set("port", cfg.Port)
	viper.Set("model", cfg.Model)
	viper.Set("prompt", cfg.Prompt)
	viper.Set("recursive", cfg.Recursive)
	viper.Set("filter_patterns", cfg.FilterPatterns)
	viper.Set("exclude_dir_patterns", cfg.ExcludeDirPatterns)
	viper.Set("overwrite", cfg.Overwrite)
	viper.Set("min_resolution", cfg.MinResolution)
	viper.Set("output_type", cfg.OutputType)
	viper.Set("gallery.cache_capacity", cfg.Gallery.CacheCapacity)
	viper.Set("gallery.thumb_width", cfg.Gallery.ThumbWidth)
	viper.Set("gallery.prefetch_rows", cfg.Gallery.PrefetchRows)
	viper.Set("gallery.prefetch_budget", cfg.Gallery.PrefetchBudget)

	return viper.WriteConfigAs(filepath.Join(dir, configFileName))
}

func ValidateConfig(cfg *Config) error {
	switch cfg.OutputType {
	case "text", "json":
	default:
		return fmt.Errorf("invalid output type: %s", cfg.OutputType)
	}

	switch cfg.Overwrite {
	case "always", "older", "never":
	default:
		return fmt.Errorf("invalid overwrite mode: %s", cfg.Overwrite)
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("invalid port: %d", cfg.Port)
	}
	if cfg.MinResolution < 1 {
		return fmt.Errorf("invalid min resolution: %d", cfg.MinResolution)
	}
	return nil
}
