package cli

import (
	"context"
	"time"

	"github.com/alexanderramin/landminer/internal/metrics"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const metricsShutdownTimeout = 2 * time.Second

func newTUICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive mining screen",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmdContext(cmd), app)
		},
	}
}

// runTUI runs the bubbletea program and, when configured, the metrics
// server next to it. Either one stopping stops the other.
func runTUI(ctx context.Context, app *App) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	if app.MetricsAddr != "" && app.Metrics != nil {
		srv := metrics.NewServer(app.MetricsAddr, app.Metrics, app.log())
		g.Go(srv.Start)
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, done := context.WithTimeout(context.Background(), metricsShutdownTimeout)
			defer done()
			return srv.Stop(shutdownCtx)
		})
	}

	g.Go(func() error {
		defer cancel()
		p := tea.NewProgram(newAppModel(app), tea.WithAltScreen(), tea.WithContext(gctx))
		_, err := p.Run()
		return err
	})

	return g.Wait()
}
