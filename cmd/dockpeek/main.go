package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/1broseidon/dockpeek/internal/ipc"
	"github.com/1broseidon/dockpeek/internal/tui"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "icons":
		os.Exit(runIcons(os.Args[2:]))
	case "windows":
		os.Exit(runWindows(os.Args[2:]))
	case "show":
		os.Exit(runShow(os.Args[2:]))
	case "hide":
		os.Exit(runHide(os.Args[2:]))
	case "clickhide":
		os.Exit(runClickHide(os.Args[2:]))
	case "action":
		os.Exit(runAction(os.Args[2:]))
	case "pick":
		os.Exit(runPick(os.Args[2:]))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "tui":
		os.Exit(runTUI(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "version":
		fmt.Printf("dockpeek %s\n", version)
		os.Exit(0)
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: dockpeek <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the dockpeek daemon (foreground)")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "  reload              Reload the daemon's configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  icons               List tracked taskbar icons")
	fmt.Fprintln(w, "  windows <label>     List preview windows for a taskbar app")
	fmt.Fprintln(w, "  show <label>        Open the preview for a taskbar app")
	fmt.Fprintln(w, "  hide                Dismiss the preview")
	fmt.Fprintln(w, "  clickhide on|off|status")
	fmt.Fprintln(w, "                      Control click-to-hide dismissal")
	fmt.Fprintln(w, "  action <label> <action> [title]")
	fmt.Fprintln(w, "                      Run a window control on a previewed window")
	fmt.Fprintln(w, "  pick                Browse apps and windows via a launcher menu")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config path         Print the config file path")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config init         Write a default config file")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  tui                 Open the interactive dashboard")
	fmt.Fprintln(w, "  mcp                 Start MCP server (stdio transport)")
	fmt.Fprintln(w, "  version             Print version")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'dockpeek <command> --help' for command-specific options.")
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: dockpeek status")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show daemon status via IPC.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("daemon_running: %v\n", status.DaemonRunning)
	fmt.Printf("phase:          %s\n", status.Phase)
	if status.Target != "" {
		fmt.Printf("target:         %s\n", status.Target)
	}
	fmt.Printf("visible:        %v\n", status.Visible)
	fmt.Printf("icon_count:     %d\n", status.IconCount)
	fmt.Printf("window_count:   %d\n", status.WindowCount)
	fmt.Printf("click_to_hide:  %v\n", status.ClickToHide)
	fmt.Printf("cached_images:  %d\n", status.CachedImages)
	fmt.Printf("uptime_seconds: %d\n", status.UptimeSeconds)
	return 0
}

func runIcons(args []string) int {
	fs := flag.NewFlagSet("icons", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: dockpeek icons")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List the taskbar icons the daemon is tracking, with their")
		fmt.Fprintln(os.Stderr, "screen geometry. Labels here are valid for 'windows', 'show'")
		fmt.Fprintln(os.Stderr, "and 'action'.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "icons takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	data, err := client.ListIcons()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("icon_count: %d\n", len(data.Icons))
	for _, icon := range data.Icons {
		fmt.Printf("- %s (%dx%d at %d,%d)\n", icon.Label, icon.Width, icon.Height, icon.X, icon.Y)
	}
	return 0
}

func runWindows(args []string) int {
	fs := flag.NewFlagSet("windows", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: dockpeek windows <label>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List the windows the daemon would show in the preview for a")
		fmt.Fprintln(os.Stderr, "taskbar app. The bracketed id addresses a window in 'action --id'.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "windows requires <label>")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	data, err := client.ListWindows(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("label:        %s\n", data.Label)
	fmt.Printf("window_count: %d\n", len(data.Windows))
	for _, win := range data.Windows {
		title := win.Title
		if title == "" {
			title = "(untitled)"
		}
		detail := fmt.Sprintf("%dx%d", win.Width, win.Height)
		if win.Minimized {
			detail += ", minimized"
		}
		fmt.Printf("- [%d] %s (%s)\n", win.ID, title, detail)
	}
	return 0
}

func runShow(args []string) int {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: dockpeek show <label>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Open the hover preview for a taskbar app, as if the pointer")
		fmt.Fprintln(os.Stderr, "had settled on its icon.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "show requires <label>")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	if err := client.ShowPreview(fs.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runHide(args []string) int {
	fs := flag.NewFlagSet("hide", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: dockpeek hide")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Dismiss the preview immediately, whatever opened it.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "hide takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	if err := client.HidePreview(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runClickHide(args []string) int {
	fs := flag.NewFlagSet("clickhide", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: dockpeek clickhide on|off|status")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Control whether a click outside the preview dismisses it.")
		fmt.Fprintln(os.Stderr, "The setting is persisted to the config file.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "clickhide requires on, off or status")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	switch fs.Arg(0) {
	case "on":
		if err := client.SetClickToHide(true); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	case "off":
		if err := client.SetClickToHide(false); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	case "status":
		status, err := client.GetStatus()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Printf("click_to_hide: %v\n", status.ClickToHide)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "clickhide: unknown mode %q (expected on, off or status)\n", fs.Arg(0))
		return 2
	}
}

func runAction(args []string) int {
	fs := flag.NewFlagSet("action", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	windowID := fs.Int("id", 0, "Window id from 'dockpeek windows' (default: the first window)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: dockpeek action [--id N] <label> <action> [title]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Run a window control on one of an app's windows, the same")
		fmt.Fprintln(os.Stderr, "controls the preview cards offer. Actions: activate, close,")
		fmt.Fprintln(os.Stderr, "maximize, minimize, terminate.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "With a trailing title the daemon picks the first window whose")
		fmt.Fprintln(os.Stderr, "title contains it (case-insensitive); otherwise --id selects.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "action requires <label> and <action>")
		fs.Usage()
		return 2
	}

	label, action := fs.Arg(0), fs.Arg(1)
	client := ipc.NewClient()
	if fs.NArg() >= 3 {
		if err := client.WindowActionByTitle(action, label, fs.Arg(2)); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}
	if err := client.WindowAction(action, label, *windowID); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runReload(args []string) int {
	fs := flag.NewFlagSet("reload", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: dockpeek reload")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Ask the running daemon to re-read its config file. Equivalent")
		fmt.Fprintln(os.Stderr, "to sending it SIGHUP.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "reload takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	if err := client.Reload(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println("config reloaded")
	return 0
}

func runTUI(args []string) int {
	fs := flag.NewFlagSet("tui", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("config", "", "Config file path (default: ~/.config/dockpeek/config.yaml)")

	if len(args) > 0 && (args[0] == "help" || args[0] == "-h" || args[0] == "--help") {
		fmt.Fprintln(os.Stderr, "Usage: dockpeek tui [--config PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Interactive dashboard for watching the daemon and editing settings.")
		fmt.Fprintln(os.Stderr, "Works as an offline config editor when the daemon is not running.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Keybindings:")
		fmt.Fprintln(os.Stderr, "  j/k, ↑/↓   Navigate taskbar icons")
		fmt.Fprintln(os.Stderr, "  Enter      Show the preview for the selected app (daemon)")
		fmt.Fprintln(os.Stderr, "  h          Hide the preview (daemon)")
		fmt.Fprintln(os.Stderr, "  c          Toggle click-to-hide (daemon)")
		fmt.Fprintln(os.Stderr, "  e          Edit settings (Esc closes the form)")
		fmt.Fprintln(os.Stderr, "  Ctrl+S     Review and save pending changes")
		fmt.Fprintln(os.Stderr, "  r          Reload daemon config (when running)")
		fmt.Fprintln(os.Stderr, "  q, Ctrl+C  Quit")
		return 0
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}

	t := tui.New(*path)
	if err := t.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	return 0
}
