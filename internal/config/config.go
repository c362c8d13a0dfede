package config

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Preview tunes the surface panel.
type Preview struct {
	// OffsetPx separates the panel's bottom edge from the icon's top.
	OffsetPx int `yaml:"offset_px"`
	// MaxWidthFraction caps the panel width as a fraction of screen width.
	MaxWidthFraction float64 `yaml:"max_width_fraction"`
	// ThumbnailWidth is the natural card width in pixels.
	ThumbnailWidth int `yaml:"thumbnail_width"`
	// Background is the panel fill as "#rrggbb".
	Background string `yaml:"background"`
}

// Match tunes the two-source window reconciliation.
type Match struct {
	// MinWindowSize drops helper windows smaller than this in either
	// dimension (exactly this size is kept).
	MinWindowSize int `yaml:"min_window_size"`
	// PositionTolerance is the maximum |delta| in both axes for the
	// position score.
	PositionTolerance int `yaml:"position_tolerance"`
	// SizeTolerance is the maximum size delta for the size score.
	SizeTolerance int `yaml:"size_tolerance"`
}

// SettleMS holds the per-action delays before re-enumeration, in
// milliseconds. Minimize and close settle fast; activation, maximize and
// terminate give the window manager longer.
type SettleMS struct {
	Minimize  int `yaml:"minimize"`
	Close     int `yaml:"close"`
	Activate  int `yaml:"activate"`
	Maximize  int `yaml:"maximize"`
	Terminate int `yaml:"terminate"`
}

// Config holds the application configuration.
type Config struct {
	LogLevel      string            `yaml:"log_level"`
	Display       string            `yaml:"display,omitempty"`
	XAuthority    string            `yaml:"xauthority,omitempty"`
	TrayRefreshMS int               `yaml:"tray_refresh_ms"`
	HoverPollMS   int               `yaml:"hover_poll_ms"`
	GracePollMS   int               `yaml:"grace_poll_ms"`
	Preview       Preview           `yaml:"preview"`
	Match         Match             `yaml:"match"`
	CacheCapacity int               `yaml:"cache_capacity"`
	SettleMS      SettleMS          `yaml:"settle_ms"`
	ClickToHide   *bool             `yaml:"click_to_hide"`
	Aliases       map[string]string `yaml:"aliases,omitempty"`

	HideHotkey          string `yaml:"hide_hotkey,omitempty"`
	ClickToHideHotkey   string `yaml:"click_to_hide_hotkey,omitempty"`
	PickerBackend       string `yaml:"picker_backend"`
	PickerFuzzyMatching bool   `yaml:"picker_fuzzy_matching"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:      "info",
		TrayRefreshMS: 2000,
		HoverPollMS:   100,
		GracePollMS:   100,
		Preview: Preview{
			OffsetPx:         16,
			MaxWidthFraction: 0.6,
			ThumbnailWidth:   240,
			Background:       "#2e3440",
		},
		Match: Match{
			MinWindowSize:     50,
			PositionTolerance: 10,
			SizeTolerance:     10,
		},
		CacheCapacity: 32,
		SettleMS: SettleMS{
			Minimize:  250,
			Close:     250,
			Activate:  500,
			Maximize:  500,
			Terminate: 750,
		},
		Aliases:       map[string]string{},
		PickerBackend: "auto",
	}
}

// ClickToHideEnabled returns the effective click-to-hide flag, defaulting
// to true when the key is absent.
func (c *Config) ClickToHideEnabled() bool {
	if c == nil || c.ClickToHide == nil {
		return true
	}
	return *c.ClickToHide
}

// SetClickToHide records an explicit flag value for persistence.
func (c *Config) SetClickToHide(enabled bool) {
	c.ClickToHide = &enabled
}

// TrayRefreshInterval returns the registry poll period.
func (c *Config) TrayRefreshInterval() time.Duration {
	return time.Duration(c.TrayRefreshMS) * time.Millisecond
}

// HoverPollInterval returns the pointer poll period.
func (c *Config) HoverPollInterval() time.Duration {
	return time.Duration(c.HoverPollMS) * time.Millisecond
}

// GracePollInterval returns the leave-grace poll period.
func (c *Config) GracePollInterval() time.Duration {
	return time.Duration(c.GracePollMS) * time.Millisecond
}

// BackgroundRGBA parses the preview background. Validate guarantees the
// value parses, so an error here means validation was skipped.
func (p Preview) BackgroundRGBA() (color.RGBA, error) {
	return parseHexColor(p.Background)
}

func parseHexColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)
	if len(s) != 7 || s[0] != '#' {
		return color.RGBA{}, fmt.Errorf("color %q must be #rrggbb", s)
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{}, fmt.Errorf("color %q must be #rrggbb", s)
	}
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	if c.TrayRefreshMS < 200 {
		return &ValidationError{Path: "tray_refresh_ms", Err: fmt.Errorf("tray_refresh_ms must be >= 200")}
	}
	if c.HoverPollMS < 10 || c.HoverPollMS > 1000 {
		return &ValidationError{Path: "hover_poll_ms", Err: fmt.Errorf("hover_poll_ms must be between 10 and 1000")}
	}
	if c.GracePollMS < 10 || c.GracePollMS > 1000 {
		return &ValidationError{Path: "grace_poll_ms", Err: fmt.Errorf("grace_poll_ms must be between 10 and 1000")}
	}
	if c.Preview.OffsetPx < 0 {
		return &ValidationError{Path: "preview.offset_px", Err: fmt.Errorf("offset_px must be >= 0")}
	}
	if c.Preview.MaxWidthFraction <= 0 || c.Preview.MaxWidthFraction > 1 {
		return &ValidationError{Path: "preview.max_width_fraction", Err: fmt.Errorf("max_width_fraction must be in (0, 1]")}
	}
	if c.Preview.ThumbnailWidth < 64 {
		return &ValidationError{Path: "preview.thumbnail_width", Err: fmt.Errorf("thumbnail_width must be >= 64")}
	}
	if _, err := parseHexColor(c.Preview.Background); err != nil {
		return &ValidationError{Path: "preview.background", Err: err}
	}
	if c.Match.MinWindowSize < 1 {
		return &ValidationError{Path: "match.min_window_size", Err: fmt.Errorf("min_window_size must be >= 1")}
	}
	if c.Match.PositionTolerance < 0 {
		return &ValidationError{Path: "match.position_tolerance", Err: fmt.Errorf("position_tolerance must be >= 0")}
	}
	if c.Match.SizeTolerance < 0 {
		return &ValidationError{Path: "match.size_tolerance", Err: fmt.Errorf("size_tolerance must be >= 0")}
	}
	if c.CacheCapacity < 2 {
		return &ValidationError{Path: "cache_capacity", Err: fmt.Errorf("cache_capacity must be >= 2")}
	}
	if err := validateSettle(c.SettleMS); err != nil {
		return err
	}
	for label, proc := range c.Aliases {
		if strings.TrimSpace(label) == "" {
			return &ValidationError{Path: "aliases", Err: fmt.Errorf("aliases contains an empty label")}
		}
		if strings.TrimSpace(proc) == "" {
			return &ValidationError{Path: "aliases." + label, Err: fmt.Errorf("alias target must not be empty")}
		}
	}
	switch c.PickerBackend {
	case "auto", "rofi", "fuzzel", "wofi", "dmenu", "builtin":
	default:
		return &ValidationError{Path: "picker_backend", Err: fmt.Errorf("picker_backend must be one of: auto, rofi, fuzzel, wofi, dmenu, builtin")}
	}
	return nil
}

func validateSettle(s SettleMS) error {
	checks := []struct {
		path  string
		value int
	}{
		{"settle_ms.minimize", s.Minimize},
		{"settle_ms.close", s.Close},
		{"settle_ms.activate", s.Activate},
		{"settle_ms.maximize", s.Maximize},
		{"settle_ms.terminate", s.Terminate},
	}
	for _, check := range checks {
		if check.value < 0 || check.value > 10000 {
			return &ValidationError{Path: check.path, Err: fmt.Errorf("settle delay must be between 0 and 10000 ms")}
		}
	}
	return nil
}

// Save writes the configuration to the standard location.
//
// Note: this marshals the effective config and will not preserve comments
// or include structure from the original YAML.
func (c *Config) Save() error {
	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the configuration to an explicit path.
func (c *Config) SaveTo(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
