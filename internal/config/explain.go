package config

import (
	"fmt"
	"strings"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths include:
//
//	log_level
//	tray_refresh_ms
//	hover_poll_ms
//	grace_poll_ms
//	preview.offset_px
//	preview.max_width_fraction
//	preview.thumbnail_width
//	preview.background
//	match.min_window_size
//	match.position_tolerance
//	match.size_tolerance
//	cache_capacity
//	settle_ms.activate
//	click_to_hide
//	aliases.<label>
//	hide_hotkey
//	click_to_hide_hotkey
//	picker_backend
//	picker_fuzzy_matching
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}

	// Exact-path file source wins.
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}

	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	parts := strings.Split(path, ".")
	switch parts[0] {
	case "log_level":
		if len(parts) != 1 {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		return cfg.LogLevel, nil
	case "display":
		if len(parts) != 1 {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		return cfg.Display, nil
	case "xauthority":
		if len(parts) != 1 {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		return cfg.XAuthority, nil
	case "tray_refresh_ms":
		if len(parts) != 1 {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		return cfg.TrayRefreshMS, nil
	case "hover_poll_ms":
		if len(parts) != 1 {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		return cfg.HoverPollMS, nil
	case "grace_poll_ms":
		if len(parts) != 1 {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		return cfg.GracePollMS, nil
	case "preview":
		if len(parts) == 1 {
			return cfg.Preview, nil
		}
		if len(parts) != 2 {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		switch parts[1] {
		case "offset_px":
			return cfg.Preview.OffsetPx, nil
		case "max_width_fraction":
			return cfg.Preview.MaxWidthFraction, nil
		case "thumbnail_width":
			return cfg.Preview.ThumbnailWidth, nil
		case "background":
			return cfg.Preview.Background, nil
		default:
			return nil, fmt.Errorf("unknown path: %s", path)
		}
	case "match":
		if len(parts) == 1 {
			return cfg.Match, nil
		}
		if len(parts) != 2 {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		switch parts[1] {
		case "min_window_size":
			return cfg.Match.MinWindowSize, nil
		case "position_tolerance":
			return cfg.Match.PositionTolerance, nil
		case "size_tolerance":
			return cfg.Match.SizeTolerance, nil
		default:
			return nil, fmt.Errorf("unknown path: %s", path)
		}
	case "cache_capacity":
		if len(parts) != 1 {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		return cfg.CacheCapacity, nil
	case "settle_ms":
		if len(parts) == 1 {
			return cfg.SettleMS, nil
		}
		if len(parts) != 2 {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		switch parts[1] {
		case "minimize":
			return cfg.SettleMS.Minimize, nil
		case "close":
			return cfg.SettleMS.Close, nil
		case "activate":
			return cfg.SettleMS.Activate, nil
		case "maximize":
			return cfg.SettleMS.Maximize, nil
		case "terminate":
			return cfg.SettleMS.Terminate, nil
		default:
			return nil, fmt.Errorf("unknown path: %s", path)
		}
	case "click_to_hide":
		if len(parts) != 1 {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		return cfg.ClickToHideEnabled(), nil
	case "aliases":
		if len(parts) == 1 {
			return cfg.Aliases, nil
		}
		if len(parts) != 2 {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		label := parts[1]
		proc, ok := cfg.Aliases[label]
		if !ok {
			return nil, fmt.Errorf("unknown aliases entry %q", label)
		}
		return proc, nil
	case "hide_hotkey":
		if len(parts) != 1 {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		return cfg.HideHotkey, nil
	case "click_to_hide_hotkey":
		if len(parts) != 1 {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		return cfg.ClickToHideHotkey, nil
	case "picker_backend":
		if len(parts) != 1 {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		return cfg.PickerBackend, nil
	case "picker_fuzzy_matching":
		if len(parts) != 1 {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		return cfg.PickerFuzzyMatching, nil
	default:
		return nil, fmt.Errorf("unknown path: %s", path)
	}
}
