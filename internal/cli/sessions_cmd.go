package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/alexanderramin/landminer/internal/api"
	"github.com/alexanderramin/landminer/internal/cli/formatter"
	"github.com/alexanderramin/landminer/internal/domain"
	"github.com/spf13/cobra"
)

func newSessionsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sessions",
		Aliases: []string{"session"},
		Short:   "Inspect and stop mining sessions",
	}

	cmd.AddCommand(
		newSessionsListCmd(app),
		newSessionsStopCmd(app),
		newSessionsStopAllCmd(app),
		newSessionsCollectCmd(app),
		newSessionsHistoryCmd(app),
	)

	return cmd
}

func newSessionsListCmd(app *App) *cobra.Command {
	var compact bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active mining sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			dash, err := app.Mining.LoadDashboard(cmdContext(cmd))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printWarnings(out, dash.Warnings)
			if dash.DisplayStale {
				fmt.Fprintln(out, formatter.Notice("Sessions from snapshot taken "+dash.StaleAt.Local().Format("2006-01-02 15:04")))
			}

			if len(dash.Display) == 0 {
				fmt.Fprintln(out, formatter.Dim("No active mining sessions."))
				return nil
			}
			now := app.now()
			for _, s := range dash.Display {
				fmt.Fprintln(out, renderSessionCard(s, false, compact, now))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&compact, "compact", false, "Use the narrow card layout")
	return cmd
}

func newSessionsStopCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stop <session>",
		Short: "Stop one mining session and collect its output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmdContext(cmd)
			s, err := findSession(ctx, app, args[0])
			if err != nil {
				return err
			}
			out, err := app.Mining.StopSession(ctx, s)
			if err != nil {
				return fmt.Errorf("%s: %w", api.UserMessage(err, stopFailedMsg), err)
			}
			w := cmd.OutOrStdout()
			if out.Kind() == domain.OutcomeEmpty {
				fmt.Fprintln(w, formatter.Notice("Stop accepted; the server returned no settlement data."))
				return nil
			}
			collected := out.Data.CollectedOr(s.PendingOutput)
			fmt.Fprintln(w, formatter.Toast(fmt.Sprintf("Stopped session %s, collected %s", s.Key, formatter.FormatNumber(collected)), false))
			return nil
		},
	}
}

func newSessionsStopAllCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "stop-all",
		Short: "Stop every active mining session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to stop every session without --yes")
			}
			out, err := app.Mining.StopAll(cmdContext(cmd))
			if err != nil {
				return fmt.Errorf("%s: %w", api.UserMessage(err, stopAllFailedMsg), err)
			}
			w := cmd.OutOrStdout()
			if out.Kind() == domain.OutcomeEmpty {
				fmt.Fprintln(w, formatter.Notice("Stop-all accepted; the server returned no details."))
				return nil
			}
			text := fmt.Sprintf("Stopped %d sessions", out.Data.StoppedCount)
			if out.Data.TotalCollected.Valid {
				text += ", collected " + formatter.FormatNumber(out.Data.TotalCollected.Decimal)
			}
			fmt.Fprintln(w, formatter.Toast(text, false))
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm stopping all sessions")
	return cmd
}

func newSessionsCollectCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "collect <session>",
		Short: "Collect pending output without stopping the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmdContext(cmd)
			s, err := findSession(ctx, app, args[0])
			if err != nil {
				return err
			}
			out, err := app.Mining.CollectOutput(ctx, s)
			if err != nil {
				return fmt.Errorf("%s: %w", api.UserMessage(err, collectFailedMsg), err)
			}
			w := cmd.OutOrStdout()
			if out.Kind() == domain.OutcomeEmpty || !out.Data.Collected.Valid {
				fmt.Fprintln(w, formatter.Notice("Collect accepted; the server returned no amount."))
				return nil
			}
			fmt.Fprintln(w, formatter.Toast("Collected "+formatter.FormatNumber(out.Data.Collected.Decimal), false))
			return nil
		},
	}
}

func newSessionsHistoryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "history <session>",
		Short: "Show journaled actions for a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := domain.ParseSessionKey(args[0])
			if err != nil {
				return err
			}
			entries, err := app.Mining.SessionHistory(cmdContext(cmd), key)
			if err != nil {
				return err
			}
			printActions(cmd.OutOrStdout(), entries)
			return nil
		},
	}
}

// findSession resolves a session key against the live dashboard.
func findSession(ctx context.Context, app *App, arg string) (domain.MiningSession, error) {
	key, err := domain.ParseSessionKey(arg)
	if err != nil {
		return domain.MiningSession{}, err
	}
	dash, err := app.Mining.LoadDashboard(ctx)
	if err != nil {
		return domain.MiningSession{}, err
	}
	s, ok := dash.FindSession(key)
	if !ok {
		return domain.MiningSession{}, fmt.Errorf("session %s is not active", key)
	}
	return s, nil
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func printWarnings(w io.Writer, warnings []string) {
	for _, warn := range warnings {
		fmt.Fprintln(w, formatter.Dim("! "+warn))
	}
}

func printActions(w io.Writer, entries []*domain.ActionEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, formatter.Dim("No journaled actions."))
		return
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		amount := "--"
		if e.Amount.Valid {
			amount = formatter.FormatNumber(e.Amount.Decimal)
		}
		session := "--"
		if e.SessionKey > 0 {
			session = e.SessionKey.String()
		}
		rows = append(rows, []string{
			e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			string(e.Kind),
			session,
			string(e.Result),
			amount,
			e.Message,
		})
	}
	fmt.Fprint(w, formatter.RenderTable([]string{"TIME", "ACTION", "SESSION", "RESULT", "AMOUNT", "MESSAGE"}, rows))
}
