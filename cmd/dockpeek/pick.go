package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/1broseidon/dockpeek/internal/config"
	"github.com/1broseidon/dockpeek/internal/ipc"
	"github.com/1broseidon/dockpeek/internal/picker"
)

func runPick(args []string) int {
	fs := flag.NewFlagSet("pick", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	backendName := fs.String("backend", "", "Picker backend: auto, rofi, fuzzel, wofi, dmenu, builtin (default: from config)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: dockpeek pick [--backend NAME]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Browse taskbar apps and their windows in a launcher menu and run")
		fmt.Fprintln(os.Stderr, "a preview or window control on the selection. Requires a running")
		fmt.Fprintln(os.Stderr, "daemon. Cancelling the menu exits without an error.")
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
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "pick takes no arguments")
		fs.Usage()
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	name := *backendName
	if name == "" {
		name = cfg.PickerBackend
	}
	backend, err := picker.NewBackend(name)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if setter, ok := backend.(interface{ SetFuzzyMatching(bool) }); ok {
		setter.SetFuzzyMatching(cfg.PickerFuzzyMatching)
	}

	flow := picker.NewFlow(backend, ipc.NewClient())
	if err := flow.Run(); err != nil {
		if errors.Is(err, picker.ErrCancelled) {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
