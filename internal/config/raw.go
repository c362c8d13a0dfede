package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		// Not present.
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawPreview struct {
	OffsetPx         *int     `yaml:"offset_px"`
	MaxWidthFraction *float64 `yaml:"max_width_fraction"`
	ThumbnailWidth   *int     `yaml:"thumbnail_width"`
	Background       *string  `yaml:"background"`
}

type RawMatch struct {
	MinWindowSize     *int `yaml:"min_window_size"`
	PositionTolerance *int `yaml:"position_tolerance"`
	SizeTolerance     *int `yaml:"size_tolerance"`
}

type RawSettle struct {
	Minimize  *int `yaml:"minimize"`
	Close     *int `yaml:"close"`
	Activate  *int `yaml:"activate"`
	Maximize  *int `yaml:"maximize"`
	Terminate *int `yaml:"terminate"`
}

type RawConfig struct {
	Include             IncludeList       `yaml:"include"`
	LogLevel            *string           `yaml:"log_level"`
	Display             *string           `yaml:"display"`
	XAuthority          *string           `yaml:"xauthority"`
	TrayRefreshMS       *int              `yaml:"tray_refresh_ms"`
	HoverPollMS         *int              `yaml:"hover_poll_ms"`
	GracePollMS         *int              `yaml:"grace_poll_ms"`
	Preview             *RawPreview       `yaml:"preview"`
	Match               *RawMatch         `yaml:"match"`
	CacheCapacity       *int              `yaml:"cache_capacity"`
	SettleMS            *RawSettle        `yaml:"settle_ms"`
	ClickToHide         *bool             `yaml:"click_to_hide"`
	Aliases             map[string]string `yaml:"aliases"`
	HideHotkey          *string           `yaml:"hide_hotkey"`
	ClickToHideHotkey   *string           `yaml:"click_to_hide_hotkey"`
	PickerBackend       *string           `yaml:"picker_backend"`
	PickerFuzzyMatching *bool             `yaml:"picker_fuzzy_matching"`
}

func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c

	if overlay.LogLevel != nil {
		out.LogLevel = overlay.LogLevel
	}
	if overlay.Display != nil {
		out.Display = overlay.Display
	}
	if overlay.XAuthority != nil {
		out.XAuthority = overlay.XAuthority
	}
	if overlay.TrayRefreshMS != nil {
		out.TrayRefreshMS = overlay.TrayRefreshMS
	}
	if overlay.HoverPollMS != nil {
		out.HoverPollMS = overlay.HoverPollMS
	}
	if overlay.GracePollMS != nil {
		out.GracePollMS = overlay.GracePollMS
	}
	if overlay.Preview != nil {
		if out.Preview == nil {
			out.Preview = &RawPreview{}
		}
		merged := mergeRawPreview(*out.Preview, *overlay.Preview)
		out.Preview = &merged
	}
	if overlay.Match != nil {
		if out.Match == nil {
			out.Match = &RawMatch{}
		}
		merged := mergeRawMatch(*out.Match, *overlay.Match)
		out.Match = &merged
	}
	if overlay.CacheCapacity != nil {
		out.CacheCapacity = overlay.CacheCapacity
	}
	if overlay.SettleMS != nil {
		if out.SettleMS == nil {
			out.SettleMS = &RawSettle{}
		}
		merged := mergeRawSettle(*out.SettleMS, *overlay.SettleMS)
		out.SettleMS = &merged
	}
	if overlay.ClickToHide != nil {
		out.ClickToHide = overlay.ClickToHide
	}
	if overlay.Aliases != nil {
		if out.Aliases == nil {
			out.Aliases = make(map[string]string, len(overlay.Aliases))
		}
		for label, proc := range overlay.Aliases {
			out.Aliases[label] = proc
		}
	}
	if overlay.HideHotkey != nil {
		out.HideHotkey = overlay.HideHotkey
	}
	if overlay.ClickToHideHotkey != nil {
		out.ClickToHideHotkey = overlay.ClickToHideHotkey
	}
	if overlay.PickerBackend != nil {
		out.PickerBackend = overlay.PickerBackend
	}
	if overlay.PickerFuzzyMatching != nil {
		out.PickerFuzzyMatching = overlay.PickerFuzzyMatching
	}

	return out
}

func mergeRawPreview(base RawPreview, overlay RawPreview) RawPreview {
	out := base
	if overlay.OffsetPx != nil {
		out.OffsetPx = overlay.OffsetPx
	}
	if overlay.MaxWidthFraction != nil {
		out.MaxWidthFraction = overlay.MaxWidthFraction
	}
	if overlay.ThumbnailWidth != nil {
		out.ThumbnailWidth = overlay.ThumbnailWidth
	}
	if overlay.Background != nil {
		out.Background = overlay.Background
	}
	return out
}

func mergeRawMatch(base RawMatch, overlay RawMatch) RawMatch {
	out := base
	if overlay.MinWindowSize != nil {
		out.MinWindowSize = overlay.MinWindowSize
	}
	if overlay.PositionTolerance != nil {
		out.PositionTolerance = overlay.PositionTolerance
	}
	if overlay.SizeTolerance != nil {
		out.SizeTolerance = overlay.SizeTolerance
	}
	return out
}

func mergeRawSettle(base RawSettle, overlay RawSettle) RawSettle {
	out := base
	if overlay.Minimize != nil {
		out.Minimize = overlay.Minimize
	}
	if overlay.Close != nil {
		out.Close = overlay.Close
	}
	if overlay.Activate != nil {
		out.Activate = overlay.Activate
	}
	if overlay.Maximize != nil {
		out.Maximize = overlay.Maximize
	}
	if overlay.Terminate != nil {
		out.Terminate = overlay.Terminate
	}
	return out
}
