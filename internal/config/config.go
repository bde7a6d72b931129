package config

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/adrg/xdg"
	"github.com/ironsheep/pixelscale/internal/imaging"
	"github.com/ironsheep/pixelscale/internal/logger"
	"github.com/sirupsen/logrus"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "pixelscale"

	// DefaultWorkers scans frames one after another. Animations with many
	// large frames benefit from a higher value.
	DefaultWorkers = 1

	// DefaultResampler is the nearest-neighbour backend used to downscale.
	DefaultResampler = imaging.ResamplerImaging

	// DefaultLogLevel only reports warnings and errors, so the CLI output
	// stays limited to its progress lines.
	DefaultLogLevel = "warn"

	// DefaultLogFormat is human readable.
	DefaultLogFormat = logger.FormatText

	// DefaultHTTPAddr is where `pixelscale serve` listens.
	DefaultHTTPAddr = "127.0.0.1:8080"

	// DefaultMaxUploadBytes limits uploads to the HTTP API.
	DefaultMaxUploadBytes = 32 << 20

	// DefaultMaxPixels limits the decoded size of images posted to the
	// HTTP API, summed over all frames.
	DefaultMaxPixels = 64 << 20
)

// Config holds all configuration options for pixelscale.
type Config struct {
	// IgnoreBorder skips the first and last run of every row and column,
	// for artwork with a frame or padding that is not a multiple of the
	// pixel size.
	IgnoreBorder bool `yaml:"ignore_border"`

	// FirstFrameOnly analyses only the first frame of an animation.
	FirstFrameOnly bool `yaml:"first_frame_only"`

	// UseGCD reduces the candidate run lengths to their greatest common
	// divisor instead of requiring the smallest to divide the rest.
	UseGCD bool `yaml:"use_gcd"`

	// Workers is the number of animation frames scanned concurrently.
	Workers int `yaml:"workers"`

	// Resampler names the downscaling backend: imaging, bild or sample.
	Resampler string `yaml:"resampler"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// HTTPAddr is the listen address of the HTTP API.
	HTTPAddr string `yaml:"http_addr"`

	// MaxUploadBytes caps the size of images posted to the HTTP API.
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// MaxPixels caps width x height x frames of images posted to the HTTP
	// API, checked before the pixels are decoded.
	MaxPixels int64 `yaml:"max_pixels"`
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Workers:        DefaultWorkers,
		Resampler:      DefaultResampler,
		LogLevel:       DefaultLogLevel,
		LogFormat:      DefaultLogFormat,
		HTTPAddr:       DefaultHTTPAddr,
		MaxUploadBytes: DefaultMaxUploadBytes,
		MaxPixels:      DefaultMaxPixels,
	}
}

// XDGConfigDir returns the XDG config directory for pixelscale.
// On Linux: ~/.config/pixelscale
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid and returns the first
// problem found.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return ErrInvalidWorkers
	}

	if !slices.Contains(imaging.Resamplers(), c.Resampler) {
		return ErrInvalidResampler
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return ErrInvalidLogLevel
	}

	switch strings.ToLower(c.LogFormat) {
	case logger.FormatText, logger.FormatJSON:
	default:
		return ErrInvalidLogFormat
	}

	if c.MaxUploadBytes <= 0 {
		return ErrInvalidMaxUploadBytes
	}

	if c.MaxPixels <= 0 {
		return ErrInvalidMaxPixels
	}

	return nil
}
