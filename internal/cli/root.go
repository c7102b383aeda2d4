package cli

import (
	"log/slog"
	"time"

	"github.com/alexanderramin/landminer/internal/logger"
	"github.com/alexanderramin/landminer/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// App holds the services and runtime knobs used by CLI commands and the TUI.
type App struct {
	Mining service.MiningService
	Logger *slog.Logger

	// Now is the clock used for countdowns and elapsed times.
	Now func() time.Time

	// PollInterval is how often the mining screen reloads on its own.
	PollInterval time.Duration

	// Metrics, when MetricsAddr is set, is served on /metrics while the
	// TUI runs.
	Metrics     prometheus.Gatherer
	MetricsAddr string

	// IsInteractive reports whether stdin is a terminal. The bare root
	// command opens the TUI only when it is.
	IsInteractive func() bool
}

func (a *App) log() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return logger.Discard()
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// NewRootCmd creates the top-level "landminer" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "landminer",
		Short:         "Terminal client for land mining sessions",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.IsInteractive != nil && app.IsInteractive() {
				return runTUI(cmd.Context(), app)
			}
			return cmd.Help()
		},
	}

	root.AddCommand(
		newTUICmd(app),
		newSessionsCmd(app),
		newStartCmd(app),
		newSummaryCmd(app),
		newCountdownCmd(app),
		newRatesCmd(app),
		newLandsCmd(app),
		newToolsCmd(app),
		newHistoryCmd(app),
		newStatusCmd(app),
	)

	return root
}
