// cmd/kaleido/main.go
//
// This is the entry point for the Kaleido terminal client.
//
// Flow:
// 1. Resolve and initialize the user's .kaleido directory
// 2. Load configuration, the stored bearer token, and the session logbook
// 3. Launch the TUI against the configured backend

package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"kaleido/internal/auth"
	"kaleido/internal/client"
	"kaleido/internal/config"
	"kaleido/internal/logbook"
	"kaleido/internal/tui"
)

func main() {
	dir, err := config.DefaultDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error locating config directory: %v\n", err)
		os.Exit(1)
	}
	if override := os.Getenv("KALEIDO_DIR"); override != "" {
		dir = override
	}

	if err := config.Init(dir); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing %s: %v\n", dir, err)
		os.Exit(1)
	}

	cfg, err := config.Load(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	lb, err := logbook.New(cfg.LogPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
		os.Exit(1)
	}
	defer lb.Close()

	tokens := auth.NewStore(cfg.TokenPath())
	if err := tokens.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading token file: %v\n", err)
		os.Exit(1)
	}

	api := client.New(cfg.BaseURL(), tokens)
	lb.Info("Kaleido starting against %s", cfg.BaseURL())

	// tea.NewProgram creates a new bubbletea application
	// tui.NewApp returns our main application model
	p := tea.NewProgram(
		tui.NewApp(cfg, api, tokens, lb),
		tea.WithAltScreen(), // Use alternate screen buffer (like vim does)
	)

	// Run blocks until the user quits
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
