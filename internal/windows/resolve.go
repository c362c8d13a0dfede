package windows

import (
	"strings"
	"sync"

	"github.com/1broseidon/dockpeek/internal/platform"
)

// builtinAliases covers apps whose binary name shares nothing with the
// label the taskbar shows. User config entries override these.
var builtinAliases = map[string]string{
	"mail":               "thunderbird",
	"files":              "nautilus",
	"org.gnome.nautilus": "nautilus",
	"text editor":        "gedit",
	"image viewer":       "eog",
	"videos":             "totem",
	"web":                "epiphany",
	"help":               "yelp",
}

// Resolver maps icon strip labels to running processes.
type Resolver struct {
	mu      sync.RWMutex
	aliases map[string]string
}

// NewResolver builds a resolver merging the builtin alias table with user
// overrides. Alias keys are matched case-insensitively.
func NewResolver(overrides map[string]string) *Resolver {
	return &Resolver{aliases: mergeAliases(overrides)}
}

// UpdateAliases replaces the user overrides, keeping the builtin table
// underneath. Used when config is reloaded.
func (r *Resolver) UpdateAliases(overrides map[string]string) {
	merged := mergeAliases(overrides)
	r.mu.Lock()
	r.aliases = merged
	r.mu.Unlock()
}

func mergeAliases(overrides map[string]string) map[string]string {
	aliases := make(map[string]string, len(builtinAliases)+len(overrides))
	for label, proc := range builtinAliases {
		aliases[strings.ToLower(label)] = proc
	}
	for label, proc := range overrides {
		aliases[strings.ToLower(label)] = proc
	}
	return aliases
}

func (r *Resolver) alias(lower string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	target, ok := r.aliases[lower]
	return target, ok
}

// ResolveProcess finds the process a label refers to. The ladder runs
// exact match, case-insensitive match, substring in either direction
// (process comm names are truncated to 15 bytes, so the label often
// contains the name rather than the reverse), then the alias table.
// Unresolvable labels report ok=false; the caller shows nothing.
func (r *Resolver) ResolveProcess(label string, procs []platform.Process) (platform.Process, bool) {
	label = strings.TrimSpace(label)
	if label == "" {
		return platform.Process{}, false
	}

	for _, p := range procs {
		if p.Name == label {
			return p, true
		}
	}

	lower := strings.ToLower(label)
	for _, p := range procs {
		if strings.ToLower(p.Name) == lower {
			return p, true
		}
	}

	for _, p := range procs {
		name := strings.ToLower(p.Name)
		if name == "" {
			continue
		}
		if strings.Contains(name, lower) || strings.Contains(lower, name) {
			return p, true
		}
	}

	if target, ok := r.alias(lower); ok {
		targetLower := strings.ToLower(target)
		for _, p := range procs {
			if strings.ToLower(p.Name) == targetLower {
				return p, true
			}
		}
	}

	return platform.Process{}, false
}
