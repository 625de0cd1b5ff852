// Package config loads process configuration from an optional YAML file and
// the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	EnvConfigFile = "STEGO_CONFIG"

	DefaultPort             = "8080"
	DefaultMaxUploadMB      = 32
	DefaultMaxMessageLength = 10000
	DefaultRateLimit        = 20
	DefaultEmbedRateLimit   = 5
	DefaultPSNRThreshold    = 40.0
	DefaultMaxImagePixels   = 1 << 25
)

// Config is the service configuration
type Config struct {
	Port           string   `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	TempDir        string   `yaml:"temp_dir"`

	MaxUploadBytes   int64 `yaml:"max_upload_bytes"`
	MaxMessageLength int   `yaml:"max_message_length"`
	// checked against the image header before pixels are decoded
	MaxImagePixels int `yaml:"max_image_pixels"`

	// LegacySalt makes embed emit the fixed-salt "iv:ciphertext" encoding
	LegacySalt bool `yaml:"legacy_salt"`

	// requests per minute per client address
	RateLimitPerMinute      int `yaml:"rate_limit_per_minute"`
	EmbedRateLimitPerMinute int `yaml:"embed_rate_limit_per_minute"`

	PSNRThreshold float64 `yaml:"psnr_threshold"`
}

func Default() *Config {
	return &Config{
		Port:                    DefaultPort,
		AllowedOrigins:          []string{"http://localhost:3000"},
		TempDir:                 os.TempDir(),
		MaxUploadBytes:          DefaultMaxUploadMB << 20,
		MaxMessageLength:        DefaultMaxMessageLength,
		MaxImagePixels:          DefaultMaxImagePixels,
		RateLimitPerMinute:      DefaultRateLimit,
		EmbedRateLimitPerMinute: DefaultEmbedRateLimit,
		PSNRThreshold:           DefaultPSNRThreshold,
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// STEGO_CONFIG if set, then environment overrides.
func Load() (*Config, error) {
	conf := Default()

	if filename := os.Getenv(EnvConfigFile); filename != "" {
		if err := conf.LoadFile(filename); err != nil {
			return nil, err
		}
	}

	if err := conf.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

// LoadFile overlays the YAML file onto conf. Keys absent from the file keep
// their current values.
func (c *Config) LoadFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}
	return nil
}

func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0600)
}

// ApplyEnv overrides fields from environment variables using lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("PORT"); ok && v != "" {
		c.Port = v
	}
	if v, ok := lookup("STEGO_ALLOWED_ORIGINS"); ok && v != "" {
		c.AllowedOrigins = splitList(v)
	}
	if v, ok := lookup("STEGO_TEMP_DIR"); ok && v != "" {
		c.TempDir = v
	}
	if v, ok := lookup("STEGO_LEGACY_SALT"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid STEGO_LEGACY_SALT: %w", err)
		}
		c.LegacySalt = b
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"STEGO_MAX_MESSAGE_LENGTH", &c.MaxMessageLength},
		{"STEGO_MAX_IMAGE_PIXELS", &c.MaxImagePixels},
		{"STEGO_RATE_LIMIT", &c.RateLimitPerMinute},
		{"STEGO_EMBED_RATE_LIMIT", &c.EmbedRateLimitPerMinute},
	}
	for _, e := range ints {
		if v, ok := lookup(e.name); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", e.name, err)
			}
			*e.dst = n
		}
	}

	if v, ok := lookup("STEGO_MAX_UPLOAD_MB"); ok && v != "" {
		mb, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid STEGO_MAX_UPLOAD_MB: %w", err)
		}
		c.MaxUploadBytes = mb << 20
	}
	if v, ok := lookup("STEGO_PSNR_THRESHOLD"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid STEGO_PSNR_THRESHOLD: %w", err)
		}
		c.PSNRThreshold = f
	}
	return nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("port cannot be empty"))
	}
	if len(c.AllowedOrigins) == 0 {
		errs = append(errs, errors.New("at least one allowed origin is required"))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("max upload size must be positive"))
	}
	if c.MaxMessageLength <= 0 {
		errs = append(errs, errors.New("max message length must be positive"))
	}
	if c.MaxImagePixels <= 0 {
		errs = append(errs, errors.New("max image pixels must be positive"))
	}
	if c.RateLimitPerMinute <= 0 || c.EmbedRateLimitPerMinute <= 0 {
		errs = append(errs, errors.New("rate limits must be positive"))
	}
	if c.PSNRThreshold < 0 {
		errs = append(errs, errors.New("psnr threshold cannot be negative"))
	}
	return errors.Join(errs...)
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
