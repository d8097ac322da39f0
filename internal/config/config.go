// Package config holds the service configuration: a YAML file, HCPDF_*
// environment overrides, and validation.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-hcpdf/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrInvalidConfig   = errors.New("invalid config")
	ErrInvalidEnv      = errors.New("invalid environment variable")
)

// Limits.
const (
	MaxPort          = 65535
	MaxPages         = 64
	MaxBodyLimit     = 64 << 20
	MaxViewportSide  = 16384
	DefaultBodyLimit = 1 << 20 // 1 MiB
)

// Config holds all configuration for the render service.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Browser BrowserConfig `yaml:"browser"`
	Render  RenderConfig  `yaml:"render"`
	PDF     PDFConfig     `yaml:"pdf"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig defines the HTTP listener.
type ServerConfig struct {
	Address      string `yaml:"address"`
	Port         int    `yaml:"port"`
	BearerSecret string `yaml:"bearerSecret"` // empty disables auth
	BodyLimit    int64  `yaml:"bodyLimit"`    // bytes
}

// BrowserConfig defines the Chrome process and its pages.
type BrowserConfig struct {
	Bin                string   `yaml:"bin"`
	NoSandbox          bool     `yaml:"noSandbox"`
	Args               []string `yaml:"args"`
	Pages              int      `yaml:"pages"` // 0 = auto from GOMAXPROCS
	UserAgent          string   `yaml:"userAgent"`
	AcceptLanguage     string   `yaml:"acceptLanguage"`
	EmulateScreenMedia bool     `yaml:"emulateScreenMedia"`
	Viewport           string   `yaml:"viewport"` // "WIDTHxHEIGHT", empty = browser default
	PageTimeoutMs      int      `yaml:"pageTimeoutMs"`
}

// RenderConfig defines the render pipeline.
type RenderConfig struct {
	PresetFile       string `yaml:"presetFile"` // empty = built-in table
	DefaultPreset    string `yaml:"defaultPreset"`
	CookieForwarding bool   `yaml:"cookieForwarding"`
	ReadyWait        bool   `yaml:"readyWait"`
	ReadyTimeoutMs   int    `yaml:"readyTimeoutMs"`
	SettleDelayMs    int    `yaml:"settleDelayMs"`
	AcquireTimeoutMs int    `yaml:"acquireTimeoutMs"` // 0 = wait for the request context
}

// PDFConfig defines the DEFAULT entry of the built-in preset table.
type PDFConfig struct {
	Format          string `yaml:"format"`
	Landscape       bool   `yaml:"landscape"`
	Margin          string `yaml:"margin"`
	PrintBackground bool   `yaml:"printBackground"`
}

// LogConfig defines log output.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// Default returns the stock configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Address:   "0.0.0.0",
			Port:      8080,
			BodyLimit: DefaultBodyLimit,
		},
		Browser: BrowserConfig{
			PageTimeoutMs: 30000,
		},
		Render: RenderConfig{
			DefaultPreset:    "DEFAULT",
			CookieForwarding: true,
			ReadyWait:        true,
			ReadyTimeoutMs:   30000,
			SettleDelayMs:    500,
			AcquireTimeoutMs: 60000,
		},
		PDF: PDFConfig{
			Format:          "A4",
			Margin:          "18px",
			PrintBackground: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Addr returns the listen address in host:port form.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Address, strconv.Itoa(c.Server.Port))
}

// PageTimeout returns the navigation and content-loading bound.
func (b BrowserConfig) PageTimeout() time.Duration {
	return time.Duration(b.PageTimeoutMs) * time.Millisecond
}

// ViewportSize parses Viewport. ok is false when no viewport is set.
func (b BrowserConfig) ViewportSize() (width, height int, ok bool, err error) {
	if strings.TrimSpace(b.Viewport) == "" {
		return 0, 0, false, nil
	}
	w, h, found := strings.Cut(strings.ToLower(strings.TrimSpace(b.Viewport)), "x")
	if !found {
		return 0, 0, false, fmt.Errorf("viewport %q: want WIDTHxHEIGHT", b.Viewport)
	}
	width, err = strconv.Atoi(strings.TrimSpace(w))
	if err != nil {
		return 0, 0, false, fmt.Errorf("viewport %q: invalid width", b.Viewport)
	}
	height, err = strconv.Atoi(strings.TrimSpace(h))
	if err != nil {
		return 0, 0, false, fmt.Errorf("viewport %q: invalid height", b.Viewport)
	}
	if width < 1 || width > MaxViewportSide || height < 1 || height > MaxViewportSide {
		return 0, 0, false, fmt.Errorf("viewport %q: sides must be between 1 and %d", b.Viewport, MaxViewportSide)
	}
	return width, height, true, nil
}

func (r RenderConfig) ReadyTimeout() time.Duration {
	return time.Duration(r.ReadyTimeoutMs) * time.Millisecond
}

func (r RenderConfig) SettleDelay() time.Duration {
	return time.Duration(r.SettleDelayMs) * time.Millisecond
}

func (r RenderConfig) AcquireTimeout() time.Duration {
	return time.Duration(r.AcquireTimeoutMs) * time.Millisecond
}

// Validate checks ranges and enumerations. Call it after every override
// (file, environment, flags) has been applied.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > MaxPort {
		return fmt.Errorf("%w: server.port: must be between 1 and %d, got %d", ErrInvalidConfig, MaxPort, c.Server.Port)
	}
	if c.Server.BodyLimit < 1 || c.Server.BodyLimit > MaxBodyLimit {
		return fmt.Errorf("%w: server.bodyLimit: must be between 1 and %d, got %d", ErrInvalidConfig, MaxBodyLimit, c.Server.BodyLimit)
	}

	if c.Browser.Pages < 0 || c.Browser.Pages > MaxPages {
		return fmt.Errorf("%w: browser.pages: must be between 0 and %d, got %d", ErrInvalidConfig, MaxPages, c.Browser.Pages)
	}
	if c.Browser.PageTimeoutMs < 1 {
		return fmt.Errorf("%w: browser.pageTimeoutMs: must be positive, got %d", ErrInvalidConfig, c.Browser.PageTimeoutMs)
	}
	if _, _, _, err := c.Browser.ViewportSize(); err != nil {
		return fmt.Errorf("%w: browser.%v", ErrInvalidConfig, err)
	}

	if strings.TrimSpace(c.Render.DefaultPreset) == "" {
		return fmt.Errorf("%w: render.defaultPreset: required", ErrInvalidConfig)
	}
	if c.Render.ReadyTimeoutMs < 1 {
		return fmt.Errorf("%w: render.readyTimeoutMs: must be positive, got %d", ErrInvalidConfig, c.Render.ReadyTimeoutMs)
	}
	if c.Render.SettleDelayMs < 0 {
		return fmt.Errorf("%w: render.settleDelayMs: must not be negative, got %d", ErrInvalidConfig, c.Render.SettleDelayMs)
	}
	if c.Render.AcquireTimeoutMs < 0 {
		return fmt.Errorf("%w: render.acquireTimeoutMs: must not be negative, got %d", ErrInvalidConfig, c.Render.AcquireTimeoutMs)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: log.level: invalid value %q (must be debug, info, warn, or error)", ErrInvalidConfig, c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("%w: log.format: invalid value %q (must be json or text)", ErrInvalidConfig, c.Log.Format)
	}

	return nil
}

// LoadFile loads configuration from a file path or config name on top of
// Default. If nameOrPath contains a path separator, it's treated as a file
// path. Otherwise, it's searched in standard locations.
// The result is not validated; see Validate.
func LoadFile(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !isFilePath(nameOrPath) {
		var err error
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	cfg := Default()
	if err := yamlutil.ReadFileStrict(configPath, cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	return cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// resolveConfigPath searches for a config file by name.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-hcpdf/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-hcpdf", name+ext)
			if fileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
