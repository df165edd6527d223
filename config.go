package docaccess

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/brunobiangulo/docaccess/contrast"
)

// Config holds all configuration for the analysis engine and its server.
type Config struct {
	// ContrastThreshold is the minimum readable contrast ratio (WCAG AA body
	// text uses 4.5).
	ContrastThreshold float64 `json:"contrast_threshold" yaml:"contrast_threshold"`

	// ImageWorkers bounds how many embedded images are decoded at once.
	ImageWorkers int `json:"image_workers" yaml:"image_workers"`

	// MaxImagePixels skips images larger than this many pixels. 0 disables
	// the limit.
	MaxImagePixels int `json:"max_image_pixels" yaml:"max_image_pixels"`

	Server ServerConfig `json:"server" yaml:"server"`
}

// ServerConfig configures the HTTP transport in cmd/server.
type ServerConfig struct {
	Addr            string        `json:"addr" yaml:"addr"`
	MaxUploadBytes  int64         `json:"max_upload_bytes" yaml:"max_upload_bytes"`
	AnalysisTimeout time.Duration `json:"analysis_timeout" yaml:"analysis_timeout"`
	CORSOrigins     []string      `json:"cors_origins" yaml:"cors_origins"`
	APIKey          string        `json:"api_key" yaml:"api_key"` // empty disables auth
}

// DefaultConfig returns a Config with the defaults of the upload service.
func DefaultConfig() Config {
	return Config{
		ContrastThreshold: contrast.DefaultThreshold,
		ImageWorkers:      4,
		MaxImagePixels:    40_000_000,
		Server: ServerConfig{
			Addr:            ":3000",
			MaxUploadBytes:  5 << 20,
			AnalysisTimeout: 30 * time.Second,
			CORSOrigins:     []string{"*"},
		},
	}
}

// LoadConfig reads a YAML file over DefaultConfig. Keys missing from the
// file keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from DOCACCESS_* environment variables.
// Unparseable numeric values are ignored.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("DOCACCESS_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("DOCACCESS_API_KEY"); v != "" {
		c.Server.APIKey = v
	}
	if v := os.Getenv("DOCACCESS_CORS_ORIGINS"); v != "" {
		c.Server.CORSOrigins = splitList(v)
	}
	if v := os.Getenv("DOCACCESS_MAX_UPLOAD_MB"); v != "" {
		if mb, err := strconv.Atoi(v); err == nil && mb > 0 {
			c.Server.MaxUploadBytes = int64(mb) << 20
		}
	}
	if v := os.Getenv("DOCACCESS_ANALYSIS_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Server.AnalysisTimeout = d
		}
	}
	if v := os.Getenv("DOCACCESS_IMAGE_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.ImageWorkers = n
		}
	}
	if v := os.Getenv("DOCACCESS_CONTRAST_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.ContrastThreshold = f
		}
	}
}

// Validate checks the engine settings. Server settings are checked by the
// server itself.
func (c Config) Validate() error {
	if c.ContrastThreshold < 1 {
		return fmt.Errorf("%w: contrast_threshold must be >= 1, got %v", ErrInvalidConfig, c.ContrastThreshold)
	}
	if c.ImageWorkers < 1 {
		return fmt.Errorf("%w: image_workers must be >= 1, got %d", ErrInvalidConfig, c.ImageWorkers)
	}
	if c.MaxImagePixels < 0 {
		return fmt.Errorf("%w: max_image_pixels must not be negative", ErrInvalidConfig)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
