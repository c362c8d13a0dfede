package windows

import (
	"testing"

	"github.com/1broseidon/dockpeek/internal/platform"
)

func TestResolveProcessLadder(t *testing.T) {
	procs := []platform.Process{
		{PID: 101, Name: "firefox"},
		{PID: 102, Name: "gnome-terminal-"},
		{PID: 103, Name: "thunderbird"},
		{PID: 104, Name: "chrome"},
		{PID: 105, Name: "Code"},
	}

	r := NewResolver(nil)

	tests := []struct {
		name    string
		label   string
		wantPID int
		wantOK  bool
	}{
		{"exact", "firefox", 101, true},
		{"case insensitive", "Firefox", 101, true},
		{"label inside process name", "terminal", 102, true},
		{"process name inside label", "Google-chrome", 104, true},
		{"alias table", "Mail", 103, true},
		{"unresolvable", "Calculator", 0, false},
		{"empty label", "", 0, false},
		{"whitespace label", "   ", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := r.ResolveProcess(tt.label, procs)
			if ok != tt.wantOK {
				t.Fatalf("ResolveProcess(%q) ok = %v, want %v", tt.label, ok, tt.wantOK)
			}
			if ok && p.PID != tt.wantPID {
				t.Errorf("ResolveProcess(%q) pid = %d, want %d", tt.label, p.PID, tt.wantPID)
			}
		})
	}
}

func TestResolveProcessPrefersExactOverSubstring(t *testing.T) {
	procs := []platform.Process{
		{PID: 201, Name: "codex-helper"},
		{PID: 202, Name: "Code"},
	}

	r := NewResolver(nil)
	p, ok := r.ResolveProcess("Code", procs)
	if !ok || p.PID != 202 {
		t.Fatalf("ResolveProcess(Code) = %+v, %v; want the exact match pid 202", p, ok)
	}
}

func TestResolveProcessUserAliasOverridesBuiltin(t *testing.T) {
	procs := []platform.Process{
		{PID: 301, Name: "evolution"},
		{PID: 302, Name: "thunderbird"},
	}

	r := NewResolver(map[string]string{"Mail": "evolution"})
	p, ok := r.ResolveProcess("Mail", procs)
	if !ok || p.PID != 301 {
		t.Fatalf("ResolveProcess(Mail) = %+v, %v; want the overridden alias pid 301", p, ok)
	}
}
