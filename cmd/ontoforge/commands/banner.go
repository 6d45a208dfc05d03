package commands

import (
	"fmt"

	"github.com/pterm/pterm"

	"github.com/ontoforge/ontoforge/config"
	"github.com/ontoforge/ontoforge/internal/version"
)

// printStartupBanner prints the user-friendly startup message
func printStartupBanner(cfg *config.Config, dbPath string) {
	info := version.Get()

	pterm.DefaultBox.
		WithTitle("ontoforge").
		WithTitleTopCenter().
		Println(fmt.Sprintf("Version:  %s (commit %s)\nBuilt:    %s\nPort:     %d\nStore:    %s\nDatabase: %s",
			info.Version, info.Short(), info.BuildTime,
			cfg.Server.Port, cfg.Store.QueryURL, dbPath))

	pterm.Info.Println("Press Ctrl+C to stop")
}
