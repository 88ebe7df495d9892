package main

import (
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"promptdeck/config"
	"promptdeck/db"
	"promptdeck/engine"
	"promptdeck/logging"
	"promptdeck/ui"
)

const version = "1.0.0"

func main() {
	cfg := config.Load(config.DefaultPath())

	// Check for command line arguments
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v":
			fmt.Printf("promptdeck v%s\n", version)
			return
		case "--help", "-h":
			printHelp()
			return
		case "export":
			handleExport(cfg)
			return
		case "import":
			handleImport(cfg)
			return
		}
	}

	store, logger := openStore(cfg)
	defer store.Close()
	defer logger.Sync() //nolint:errcheck

	// Create and run the Bubble Tea UI
	m := ui.NewModel(store, cfg, logger)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running program: %v", err)
	}
}

// openStore prepares the data directory, logger and database, and
// seeds the default library on a truly first run (all three
// collections empty).
func openStore(cfg config.Config) (*db.Store, *zap.Logger) {
	if err := cfg.EnsureDataDir(); err != nil {
		log.Fatalf("Failed to prepare data directory: %v", err)
	}

	logger := logging.New(cfg.LogFile, cfg.Debug)

	store, err := db.Open(cfg.DBPath(), logger)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	if _, err := store.SeedIfEmpty(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	return store, logger
}

// handleExport writes a library snapshot to the given directory
// (default: current directory).
func handleExport(cfg config.Config) {
	dir := "."
	if len(os.Args) > 2 {
		dir = os.Args[2]
	}

	store, logger := openStore(cfg)
	defer store.Close()
	defer logger.Sync() //nolint:errcheck

	path, err := engine.ExportLibrary(store, dir)
	if err != nil {
		log.Fatalf("Export failed: %v", err)
	}
	fmt.Printf("Exported library to %s\n", path)
}

// handleImport merges an export file into the library.
func handleImport(cfg config.Config) {
	if len(os.Args) < 3 {
		fmt.Println("Usage: promptdeck import <file>")
		os.Exit(1)
	}

	store, logger := openStore(cfg)
	defer store.Close()
	defer logger.Sync() //nolint:errcheck

	result, err := engine.ImportLibrary(store, os.Args[2])
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}
	fmt.Printf("Imported %d prompts (%d already present)\n", result.Added, result.Skipped)
}

func printHelp() {
	fmt.Printf(`promptdeck v%s - Prompt Library Manager

USAGE:
    promptdeck [command]

COMMANDS:
    (none)            Start the interactive TUI
    export [dir]      Export the library to a JSON snapshot (default: current directory)
    import <file>     Merge a previously exported snapshot into the library
    --version, -v     Print the version
    --help, -h        Show this help

KEYS (inside the TUI):
    a add    e edit    d delete    f favorite    y copy to clipboard
    / search    c cycle category    t tag filter    m any/all    s sort
    E export    I import    q quit

FILES:
    ~/.promptdeck/config.yaml    configuration
    ~/.promptdeck/promptdeck.db  prompt library
`, version)
}
