// Package config assembles service settings from defaults, an optional
// YAML file and POSTERKIT_* environment variables. Flags are applied by
// main on top of the result.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rook-computer/posterkit/internal/assets"
	"github.com/rook-computer/posterkit/internal/composition"
	"github.com/rook-computer/posterkit/internal/editor"
	"github.com/rook-computer/posterkit/internal/export"
	"github.com/rook-computer/posterkit/internal/render"
	"gopkg.in/yaml.v3"
)

const (
	EnvListenAddr     = "POSTERKIT_LISTEN"
	EnvDevMode        = "POSTERKIT_DEV"
	EnvStaticDir      = "POSTERKIT_STATIC_DIR"
	EnvMaxUploadBytes = "POSTERKIT_MAX_UPLOAD_BYTES"
	EnvFetchTimeout   = "POSTERKIT_FETCH_TIMEOUT"
	EnvSessionTTL     = "POSTERKIT_SESSION_TTL"
	EnvJPEGQuality    = "POSTERKIT_JPEG_QUALITY"
	EnvDefaultPreset  = "POSTERKIT_DEFAULT_PRESET"
	EnvShareEndpoint  = "POSTERKIT_SHARE_ENDPOINT"
	EnvPageURL        = "POSTERKIT_PAGE_URL"
	EnvPreview        = "POSTERKIT_PREVIEW"
	EnvPreviewDevice  = "POSTERKIT_PREVIEW_DEVICE"
)

// Config is the full service configuration.
//
// The intended listen defaults differ per binary:
// - service:   :8080
// - simulator: none, it does not serve
type Config struct {
	Listen         string        `yaml:"listen"`
	Dev            bool          `yaml:"dev"`
	StaticDir      string        `yaml:"static_dir"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes"`
	MaxImagePixels int64         `yaml:"max_image_pixels"`
	FetchTimeout   time.Duration `yaml:"fetch_timeout"`
	SessionTTL     time.Duration `yaml:"session_ttl"`
	ReapInterval   time.Duration `yaml:"reap_interval"`
	JPEGQuality    float64       `yaml:"jpeg_quality"`
	DefaultPreset  string        `yaml:"default_preset"`

	// AllowPrivateFetch lets client-supplied image URLs reach loopback and
	// private networks. Catalog URLs are always fetched.
	AllowPrivateFetch bool `yaml:"allow_private_fetch"`

	Share    Share          `yaml:"share"`
	Logos    []editor.Asset `yaml:"logos"`
	Stickers []editor.Asset `yaml:"stickers"`
	Preview  Preview        `yaml:"preview"`
}

type Share struct {
	// Endpoint is a host share service that accepts the image as multipart
	// form data. Empty disables native sharing.
	Endpoint string `yaml:"endpoint"`
	PageURL  string `yaml:"page_url"`
	Title    string `yaml:"title"`
	Text     string `yaml:"text"`
}

// Preview mirrors the most recently used session on a framebuffer.
type Preview struct {
	Enabled bool   `yaml:"enabled"`
	Device  string `yaml:"device"`
	FPS     int    `yaml:"fps"`
}

func Default() Config {
	return Config{
		Listen:         ":8080",
		MaxUploadBytes: assets.DefaultMaxBytes,
		MaxImagePixels: assets.DefaultMaxPixels,
		FetchTimeout:   assets.DefaultFetchTimeout,
		SessionTTL:     2 * time.Hour,
		ReapInterval:   time.Minute,
		JPEGQuality:    export.DefaultJPEGQuality,
		DefaultPreset:  "square",
		Share: Share{
			Title: "My poster",
		},
		Preview: Preview{
			Device: render.DefaultFramebufferDevice,
			FPS:    30,
		},
	}
}

// Load reads path (optional) over the defaults, then applies the process
// environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.ReadFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg *Config) ReadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from the environment. lookup is usually
// os.LookupEnv.
func (cfg *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str(EnvListenAddr, &cfg.Listen)
	str(EnvStaticDir, &cfg.StaticDir)
	str(EnvDefaultPreset, &cfg.DefaultPreset)
	str(EnvShareEndpoint, &cfg.Share.Endpoint)
	str(EnvPageURL, &cfg.Share.PageURL)
	str(EnvPreviewDevice, &cfg.Preview.Device)

	var errs []error
	if err := envBool(lookup, EnvDevMode, &cfg.Dev); err != nil {
		errs = append(errs, err)
	}
	if err := envBool(lookup, EnvPreview, &cfg.Preview.Enabled); err != nil {
		errs = append(errs, err)
	}
	if raw, ok := lookup(EnvMaxUploadBytes); ok && raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s must be an integer (got %q): %w", EnvMaxUploadBytes, raw, err))
		} else {
			cfg.MaxUploadBytes = n
		}
	}
	if err := envDuration(lookup, EnvFetchTimeout, &cfg.FetchTimeout); err != nil {
		errs = append(errs, err)
	}
	if err := envDuration(lookup, EnvSessionTTL, &cfg.SessionTTL); err != nil {
		errs = append(errs, err)
	}
	if raw, ok := lookup(EnvJPEGQuality); ok && raw != "" {
		q, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s must be a number (got %q): %w", EnvJPEGQuality, raw, err))
		} else {
			cfg.JPEGQuality = q
		}
	}
	return errors.Join(errs...)
}

func envBool(lookup func(string) (string, bool), key string, dst *bool) error {
	raw, ok := lookup(key)
	if !ok || raw == "" {
		return nil
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return fmt.Errorf("%s must be a boolean (got %q): %w", key, raw, err)
	}
	*dst = parsed
	return nil
}

func envDuration(lookup func(string) (string, bool), key string, dst *time.Duration) error {
	raw, ok := lookup(key)
	if !ok || raw == "" {
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("%s must be a duration (got %q): %w", key, raw, err)
	}
	*dst = parsed
	return nil
}

func (cfg Config) Validate() error {
	var errs []error
	if cfg.Listen == "" {
		errs = append(errs, errors.New("listen address is empty"))
	}
	if cfg.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("max_upload_bytes must be positive (got %d)", cfg.MaxUploadBytes))
	}
	if cfg.MaxImagePixels <= 0 {
		errs = append(errs, fmt.Errorf("max_image_pixels must be positive (got %d)", cfg.MaxImagePixels))
	}
	if cfg.JPEGQuality <= 0 || cfg.JPEGQuality > 1 {
		errs = append(errs, fmt.Errorf("jpeg_quality must be in (0, 1] (got %v)", cfg.JPEGQuality))
	}
	if cfg.SessionTTL < 0 {
		errs = append(errs, fmt.Errorf("session_ttl must not be negative (got %s)", cfg.SessionTTL))
	}
	if _, err := composition.PresetByName(cfg.DefaultPreset); err != nil {
		errs = append(errs, fmt.Errorf("default_preset: %w", err))
	}
	if cfg.Preview.Enabled && cfg.Preview.Device == "" {
		errs = append(errs, errors.New("preview enabled without a device"))
	}
	for _, list := range []struct {
		name  string
		items []editor.Asset
	}{{"logos", cfg.Logos}, {"stickers", cfg.Stickers}} {
		seen := map[string]bool{}
		for _, a := range list.items {
			if a.ID == "" || a.URL == "" {
				errs = append(errs, fmt.Errorf("%s: entries need an id and a url", list.name))
				continue
			}
			if seen[a.ID] {
				errs = append(errs, fmt.Errorf("%s: duplicate id %q", list.name, a.ID))
			}
			seen[a.ID] = true
		}
	}
	return errors.Join(errs...)
}

// Pickers builds the logo editor's picker panels from the catalogs.
func (cfg Config) Pickers() []editor.AssetPicker {
	var out []editor.AssetPicker
	if len(cfg.Logos) > 0 {
		out = append(out, editor.NewCatalogPicker("logos", cfg.Logos))
	}
	if len(cfg.Stickers) > 0 {
		out = append(out, editor.NewCatalogPicker("stickers", cfg.Stickers))
	}
	return out
}

// Loader returns an image loader honoring the upload and fetch limits.
func (cfg Config) Loader() *assets.Loader {
	l := assets.NewLoader()
	l.MaxBytes = cfg.MaxUploadBytes
	l.MaxPixels = cfg.MaxImagePixels
	l.AllowPrivate = cfg.AllowPrivateFetch
	if cfg.FetchTimeout > 0 {
		l.Timeout = cfg.FetchTimeout
	}
	return l
}

// ShareOptions is the editor's default share payload.
func (cfg Config) ShareOptions() export.ShareOptions {
	return export.ShareOptions{PageURL: cfg.Share.PageURL, Title: cfg.Share.Title, Text: cfg.Share.Text}
}

// Sharer returns the native sharer, or nil when none is configured.
func (cfg Config) Sharer() export.NativeSharer {
	if cfg.Share.Endpoint == "" {
		return nil
	}
	return export.NewHTTPSharer(cfg.Share.Endpoint)
}
