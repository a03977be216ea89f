// Package config holds the viewer configuration and its YAML file format.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all pointview configuration.
type Config struct {
	Stream   StreamConfig   `yaml:"stream"`
	Window   WindowConfig   `yaml:"window"`
	Headless HeadlessConfig `yaml:"headless"`
	Export   ExportConfig   `yaml:"export"`
	Labels   LabelsConfig   `yaml:"labels"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// StreamConfig configures the point stream connection.
type StreamConfig struct {
	URL          string `yaml:"url"`
	Event        string `yaml:"event"`
	ReconnectMin string `yaml:"reconnect_min"`
	ReconnectMax string `yaml:"reconnect_max"`
	Handshake    string `yaml:"handshake_timeout"`
	// StaleAfter is how long a connected stream may go without a batch before the
	// HUD flags it.
	StaleAfter string `yaml:"stale_after"`
	// MailboxSlots bounds the batches queued between the network and the renderer.
	MailboxSlots int `yaml:"mailbox_slots"`
}

// WindowConfig configures the desktop window.
type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Scale  int    `yaml:"scale"`
	TPS    int    `yaml:"tps"`
}

// HeadlessConfig configures the no-window runner.
type HeadlessConfig struct {
	Enabled      bool   `yaml:"enabled"`
	Hz           int    `yaml:"hz"`
	Ticks        uint64 `yaml:"ticks"` // 0 runs until interrupted
	ExportOnExit bool   `yaml:"export_on_exit"`
}

// ExportConfig configures where exports are written.
type ExportConfig struct {
	Dir string `yaml:"dir"`
}

// LabelsConfig configures the axis label font.
type LabelsConfig struct {
	// Font is an http(s) URL or file path of a TrueType/OpenType font. Empty uses
	// the built-in face.
	Font        string  `yaml:"font"`
	Size        float64 `yaml:"size"`
	LoadTimeout string  `yaml:"load_timeout"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console, json
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Stream: StreamConfig{
			URL:          "ws://127.0.0.1:5000/socket.io/?EIO=4&transport=websocket",
			Event:        "mediapipe_data",
			ReconnectMin: "500ms",
			ReconnectMax: "30s",
			Handshake:    "10s",
			StaleAfter:   "2s",
			MailboxSlots: 64,
		},
		Window: WindowConfig{
			Title:  "pointview",
			Width:  960,
			Height: 600,
			Scale:  1,
			TPS:    60,
		},
		Headless: HeadlessConfig{
			Hz: 30,
		},
		Export: ExportConfig{
			Dir: ".",
		},
		Labels: LabelsConfig{
			Size:        24,
			LoadTimeout: "10s",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the defaults.
// Environment overrides apply in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

const (
	EnvStreamURL = "POINTVIEW_STREAM_URL"
	EnvExportDir = "POINTVIEW_EXPORT_DIR"
	EnvLogLevel  = "POINTVIEW_LOG_LEVEL"
	EnvFont      = "POINTVIEW_FONT"
)

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(EnvStreamURL); v != "" {
		c.Stream.URL = v
	}
	if v := os.Getenv(EnvExportDir); v != "" {
		c.Export.Dir = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvFont); v != "" {
		c.Labels.Font = v
	}
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// GetReconnectMin returns the first reconnect wait.
func (c *Config) GetReconnectMin() time.Duration {
	return parseDuration(c.Stream.ReconnectMin, 500*time.Millisecond)
}

// GetReconnectMax returns the reconnect wait cap.
func (c *Config) GetReconnectMax() time.Duration {
	return parseDuration(c.Stream.ReconnectMax, 30*time.Second)
}

func (c *Config) GetHandshakeTimeout() time.Duration {
	return parseDuration(c.Stream.Handshake, 10*time.Second)
}

func (c *Config) GetStaleAfter() time.Duration {
	return parseDuration(c.Stream.StaleAfter, 2*time.Second)
}

func (c *Config) GetFontTimeout() time.Duration {
	return parseDuration(c.Labels.LoadTimeout, 10*time.Second)
}

var (
	ValidLogLevels  = []string{"debug", "info", "warn", "error"}
	ValidLogFormats = []string{"console", "json"}
)

// Validate checks the configuration for values the viewer cannot run with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Stream.URL)
	if err != nil {
		return fmt.Errorf("invalid stream url: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("invalid stream url scheme %q (want ws or wss)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("stream url %q has no host", c.Stream.URL)
	}
	if c.Stream.Event == "" {
		return fmt.Errorf("stream event name is empty")
	}
	for name, v := range map[string]string{
		"stream.reconnect_min":     c.Stream.ReconnectMin,
		"stream.reconnect_max":     c.Stream.ReconnectMax,
		"stream.handshake_timeout": c.Stream.Handshake,
		"stream.stale_after":       c.Stream.StaleAfter,
		"labels.load_timeout":      c.Labels.LoadTimeout,
	} {
		if v == "" {
			continue
		}
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}
	if c.GetReconnectMax() < c.GetReconnectMin() {
		return fmt.Errorf("stream.reconnect_max (%s) is below stream.reconnect_min (%s)", c.GetReconnectMax(), c.GetReconnectMin())
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("invalid window size %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Headless.Hz < 0 {
		return fmt.Errorf("invalid headless hz: %d", c.Headless.Hz)
	}
	if c.Labels.Size < 0 {
		return fmt.Errorf("invalid label size: %v", c.Labels.Size)
	}
	if !contains(ValidLogLevels, strings.ToLower(c.Logging.Level)) {
		return fmt.Errorf("invalid log level: %s (valid: %v)", c.Logging.Level, ValidLogLevels)
	}
	if c.Logging.Format != "" && !contains(ValidLogFormats, c.Logging.Format) {
		return fmt.Errorf("invalid log format: %s (valid: %v)", c.Logging.Format, ValidLogFormats)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
