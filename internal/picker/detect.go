package picker

import (
	"fmt"
	"os"
	"os/exec"

	"golang.org/x/term"
)

// DetectBackend returns the first available picker backend found in PATH, in
// priority order: rofi, fuzzel, wofi, dmenu. When no launcher is installed
// and the process is attached to an interactive terminal, the builtin
// terminal picker is chosen instead.
func DetectBackend() (string, error) {
	if _, err := exec.LookPath("rofi"); err == nil {
		return "rofi", nil
	}
	if _, err := exec.LookPath("fuzzel"); err == nil {
		return "fuzzel", nil
	}
	if _, err := exec.LookPath("wofi"); err == nil {
		return "wofi", nil
	}
	if _, err := exec.LookPath("dmenu"); err == nil {
		return "dmenu", nil
	}
	if term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd())) {
		return "builtin", nil
	}
	return "", fmt.Errorf("no picker backend found in PATH (looked for: rofi, fuzzel, wofi, dmenu) and stdin is not a terminal")
}
