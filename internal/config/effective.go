package config

import "fmt"

// ValidationError reports a bad config value with its YAML path and, when
// known, the file location it came from.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

// BuildEffectiveConfig overlays the merged raw values onto the defaults.
// Only keys the user actually set replace default values.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if raw.LogLevel != nil {
		cfg.LogLevel = *raw.LogLevel
	}
	if raw.Display != nil {
		cfg.Display = *raw.Display
	}
	if raw.XAuthority != nil {
		cfg.XAuthority = *raw.XAuthority
	}
	if raw.TrayRefreshMS != nil {
		cfg.TrayRefreshMS = *raw.TrayRefreshMS
	}
	if raw.HoverPollMS != nil {
		cfg.HoverPollMS = *raw.HoverPollMS
	}
	if raw.GracePollMS != nil {
		cfg.GracePollMS = *raw.GracePollMS
	}

	if raw.Preview != nil {
		if raw.Preview.OffsetPx != nil {
			cfg.Preview.OffsetPx = *raw.Preview.OffsetPx
		}
		if raw.Preview.MaxWidthFraction != nil {
			cfg.Preview.MaxWidthFraction = *raw.Preview.MaxWidthFraction
		}
		if raw.Preview.ThumbnailWidth != nil {
			cfg.Preview.ThumbnailWidth = *raw.Preview.ThumbnailWidth
		}
		if raw.Preview.Background != nil {
			cfg.Preview.Background = *raw.Preview.Background
		}
	}

	if raw.Match != nil {
		if raw.Match.MinWindowSize != nil {
			cfg.Match.MinWindowSize = *raw.Match.MinWindowSize
		}
		if raw.Match.PositionTolerance != nil {
			cfg.Match.PositionTolerance = *raw.Match.PositionTolerance
		}
		if raw.Match.SizeTolerance != nil {
			cfg.Match.SizeTolerance = *raw.Match.SizeTolerance
		}
	}

	if raw.CacheCapacity != nil {
		cfg.CacheCapacity = *raw.CacheCapacity
	}

	if raw.SettleMS != nil {
		if raw.SettleMS.Minimize != nil {
			cfg.SettleMS.Minimize = *raw.SettleMS.Minimize
		}
		if raw.SettleMS.Close != nil {
			cfg.SettleMS.Close = *raw.SettleMS.Close
		}
		if raw.SettleMS.Activate != nil {
			cfg.SettleMS.Activate = *raw.SettleMS.Activate
		}
		if raw.SettleMS.Maximize != nil {
			cfg.SettleMS.Maximize = *raw.SettleMS.Maximize
		}
		if raw.SettleMS.Terminate != nil {
			cfg.SettleMS.Terminate = *raw.SettleMS.Terminate
		}
	}

	if raw.ClickToHide != nil {
		cfg.ClickToHide = raw.ClickToHide
	}

	if raw.Aliases != nil {
		if cfg.Aliases == nil {
			cfg.Aliases = make(map[string]string, len(raw.Aliases))
		}
		for label, proc := range raw.Aliases {
			cfg.Aliases[label] = proc
		}
	}

	if raw.HideHotkey != nil {
		cfg.HideHotkey = *raw.HideHotkey
	}
	if raw.ClickToHideHotkey != nil {
		cfg.ClickToHideHotkey = *raw.ClickToHideHotkey
	}
	if raw.PickerBackend != nil {
		cfg.PickerBackend = *raw.PickerBackend
	}
	if raw.PickerFuzzyMatching != nil {
		cfg.PickerFuzzyMatching = *raw.PickerFuzzyMatching
	}

	return cfg, nil
}
