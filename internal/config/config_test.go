package config

import (
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if !cfg.ClickToHideEnabled() {
		t.Fatalf("expected click_to_hide to default to true")
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()

	res, err := LoadFromPath(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.TrayRefreshMS != 2000 {
		t.Fatalf("expected tray_refresh_ms 2000, got %d", res.Config.TrayRefreshMS)
	}
	if len(res.Files) != 0 {
		t.Fatalf("expected no loaded files, got %v", res.Files)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("# empty\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Preview.ThumbnailWidth != 240 {
		t.Fatalf("expected thumbnail_width 240, got %d", res.Config.Preview.ThumbnailWidth)
	}
}

func TestLoadFromPath_OverridesAndExplainSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := strings.Join([]string{
		"preview:",
		"  thumbnail_width: 320",
		"click_to_hide: false",
		"aliases:",
		"  Mail: thunderbird",
		"",
	}, "\n")
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Preview.ThumbnailWidth != 320 {
		t.Fatalf("expected thumbnail_width 320, got %d", res.Config.Preview.ThumbnailWidth)
	}
	if res.Config.ClickToHideEnabled() {
		t.Fatalf("expected click_to_hide false")
	}
	if res.Config.Aliases["Mail"] != "thunderbird" {
		t.Fatalf("expected alias Mail -> thunderbird, got %q", res.Config.Aliases["Mail"])
	}
	// Untouched keys keep their defaults.
	if res.Config.Preview.OffsetPx != 16 {
		t.Fatalf("expected offset_px 16, got %d", res.Config.Preview.OffsetPx)
	}

	val, src, err := Explain(res, "preview.thumbnail_width")
	if err != nil {
		t.Fatalf("explain thumbnail_width: %v", err)
	}
	if val != 320 {
		t.Fatalf("expected explain value 320, got %#v", val)
	}
	if src.Kind != SourceFile {
		t.Fatalf("expected source kind file, got %#v", src)
	}

	_, src, err = Explain(res, "cache_capacity")
	if err != nil {
		t.Fatalf("explain cache_capacity: %v", err)
	}
	if src.Kind != SourceDefault {
		t.Fatalf("expected default source for unset key, got %#v", src)
	}
}

func TestLoadFromPath_PickerFuzzyMatching(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := "picker_backend: fuzzel\npicker_fuzzy_matching: true\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.PickerBackend != "fuzzel" {
		t.Fatalf("expected picker_backend fuzzel, got %q", res.Config.PickerBackend)
	}
	if !res.Config.PickerFuzzyMatching {
		t.Fatalf("expected picker_fuzzy_matching true")
	}
}

func TestLoadFromPath_StrictUnknownKeyErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("unknown_key: 1\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "unknown_key") && !strings.Contains(err.Error(), "field") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Fatalf("expected error to include file path, got %v", err)
	}
}

func TestLoadFromPath_IncludeDirectoryOrderAndMainOverrides(t *testing.T) {
	dir := t.TempDir()

	// config.d loaded first, in sorted order.
	configD := filepath.Join(dir, "config.d")
	if err := os.MkdirAll(configD, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(configD, "10-base.yaml"), []byte("cache_capacity: 8\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(configD, "20-override.yaml"), []byte("cache_capacity: 16\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	// Main file overrides includes.
	path := filepath.Join(dir, "config.yaml")
	main := strings.Join([]string{
		"include:",
		"  - config.d",
		"cache_capacity: 24",
		"",
	}, "\n")
	if err := os.WriteFile(path, []byte(main), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.CacheCapacity != 24 {
		t.Fatalf("expected cache_capacity 24, got %d", res.Config.CacheCapacity)
	}
	if len(res.Files) != 3 {
		t.Fatalf("expected 3 loaded files, got %v", res.Files)
	}
}

func TestLoadFromPath_IncludeMissingPathHasContext(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := "include:\n  - missing.yaml\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "include") || !strings.Contains(err.Error(), "missing.yaml") {
		t.Fatalf("expected include error, got %v", err)
	}
	if !strings.Contains(err.Error(), path+":") {
		t.Fatalf("expected error to include file:line:col prefix, got %v", err)
	}
}

func TestLoadFromPath_IncludeCycleDetection(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.yaml")
	b := filepath.Join(dir, "b.yaml")
	if err := os.WriteFile(a, []byte("include: b.yaml\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(b, []byte("include: a.yaml\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := LoadFromPath(a)
	if err == nil {
		t.Fatalf("expected cycle error")
	}
	if !strings.Contains(err.Error(), "include cycle") {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestLoadFromPath_ValidationErrorHasSourceContext(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("hover_poll_ms: 5\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !strings.Contains(err.Error(), "hover_poll_ms") {
		t.Fatalf("expected path in error, got %v", err)
	}
	if !strings.Contains(err.Error(), path+":") {
		t.Fatalf("expected error to include file:line:col prefix, got %v", err)
	}
}

func TestValidate_RejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }, "log_level"},
		{"tray refresh too fast", func(c *Config) { c.TrayRefreshMS = 50 }, "tray_refresh_ms"},
		{"hover poll too slow", func(c *Config) { c.HoverPollMS = 2000 }, "hover_poll_ms"},
		{"grace poll too fast", func(c *Config) { c.GracePollMS = 1 }, "grace_poll_ms"},
		{"negative offset", func(c *Config) { c.Preview.OffsetPx = -1 }, "preview.offset_px"},
		{"fraction too big", func(c *Config) { c.Preview.MaxWidthFraction = 1.5 }, "preview.max_width_fraction"},
		{"thumbnail too small", func(c *Config) { c.Preview.ThumbnailWidth = 10 }, "preview.thumbnail_width"},
		{"bad background", func(c *Config) { c.Preview.Background = "red" }, "preview.background"},
		{"zero min window", func(c *Config) { c.Match.MinWindowSize = 0 }, "match.min_window_size"},
		{"negative tolerance", func(c *Config) { c.Match.PositionTolerance = -1 }, "match.position_tolerance"},
		{"tiny cache", func(c *Config) { c.CacheCapacity = 1 }, "cache_capacity"},
		{"settle too long", func(c *Config) { c.SettleMS.Terminate = 60000 }, "settle_ms.terminate"},
		{"empty alias label", func(c *Config) { c.Aliases = map[string]string{" ": "x"} }, "aliases"},
		{"empty alias target", func(c *Config) { c.Aliases = map[string]string{"Mail": ""} }, "aliases.Mail"},
		{"bad picker backend", func(c *Config) { c.PickerBackend = "fzf" }, "picker_backend"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected validation error")
			}
			verr, ok := err.(*ValidationError)
			if !ok {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if verr.Path != tc.path {
				t.Fatalf("expected path %q, got %q", tc.path, verr.Path)
			}
		})
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Preview.ThumbnailWidth = 300
	cfg.SetClickToHide(false)
	cfg.Aliases["Mail"] = "thunderbird"

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Preview.ThumbnailWidth != 300 {
		t.Fatalf("expected thumbnail_width 300, got %d", res.Config.Preview.ThumbnailWidth)
	}
	if res.Config.ClickToHideEnabled() {
		t.Fatalf("expected click_to_hide false after round trip")
	}
	if res.Config.Aliases["Mail"] != "thunderbird" {
		t.Fatalf("expected alias to survive round trip")
	}
}

func TestSaveTo_RejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.TrayRefreshMS = 1

	if err := cfg.SaveTo(filepath.Join(dir, "config.yaml")); err == nil {
		t.Fatalf("expected save to reject invalid config")
	}
}

func TestBackgroundRGBA(t *testing.T) {
	got, err := Preview{Background: "#2e3440"}.BackgroundRGBA()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := color.RGBA{R: 0x2e, G: 0x34, B: 0x40, A: 0xff}
	if got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}

	if _, err := (Preview{Background: "2e3440"}).BackgroundRGBA(); err == nil {
		t.Fatalf("expected error for missing # prefix")
	}
}

func TestClickToHide_ToggleSurvivesMarshal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := DefaultConfig()
	cfg.SetClickToHide(true)
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.ClickToHide == nil {
		t.Fatalf("expected explicit click_to_hide value after save")
	}
	if !res.Config.ClickToHideEnabled() {
		t.Fatalf("expected click_to_hide true")
	}
}
