package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/landminer/internal/cli/formatter"
	"github.com/alexanderramin/landminer/internal/domain"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newSummaryCmd(app *App) *cobra.Command {
	var compact bool

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show the mining summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			dash, err := app.Mining.LoadDashboard(cmdContext(cmd))
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			printWarnings(w, dash.Warnings)
			if dash.Summary == nil {
				fmt.Fprintln(w, formatter.Dim("No summary available."))
				return nil
			}
			if dash.Stale {
				fmt.Fprintln(w, formatter.Notice("Showing snapshot from "+dash.StaleAt.Local().Format("2006-01-02 15:04")))
			}
			fmt.Fprintln(w, renderSummaryCard(dash.Summary, compact))
			return nil
		},
	}

	cmd.Flags().BoolVar(&compact, "compact", false, "Use the compact layout")
	return cmd
}

func newCountdownCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "countdown",
		Short: "Show the time until the next hourly settlement",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := domain.NextSettlement(app.now())
			fmt.Fprintf(cmd.OutOrStdout(), "Next settlement at %s (%d min)\n", c.Time, c.Minutes)
			return nil
		},
	}
}

func newRatesCmd(app *App) *cobra.Command {
	var hours int

	cmd := &cobra.Command{
		Use:   "rates",
		Short: "Show the YLD hourly rate history",
		RunE: func(cmd *cobra.Command, args []string) error {
			points, err := app.Mining.RateHistory(cmdContext(cmd), hours)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(points) == 0 {
				fmt.Fprintln(w, formatter.Dim("No rate history."))
				return nil
			}
			rows := make([][]string, 0, len(points))
			for _, p := range points {
				rows = append(rows, []string{p.Hour, formatter.FormatNumber(p.Rate), fmt.Sprintf("%d", p.ActiveUsers), formatter.FormatNumber(p.TotalOutput)})
			}
			fmt.Fprint(w, formatter.RenderTable([]string{"HOUR", "RATE", "USERS", "OUTPUT"}, rows))
			return nil
		},
	}

	cmd.Flags().IntVar(&hours, "hours", rateHistoryHours, "Hours of history to show")
	return cmd
}

func newLandsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "lands",
		Short: "List your lands",
		RunE: func(cmd *cobra.Command, args []string) error {
			lands, err := app.Mining.ListLands(cmdContext(cmd))
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(lands) == 0 {
				fmt.Fprintln(w, formatter.Dim("No lands."))
				return nil
			}
			rows := make([][]string, 0, len(lands))
			for _, l := range lands {
				rows = append(rows, []string{fmt.Sprintf("%d", l.ID), l.LandID, l.TypeDisplay(), l.RegionName})
			}
			fmt.Fprint(w, formatter.RenderTable([]string{"ID", "CODE", "TYPE", "REGION"}, rows))
			return nil
		},
	}
}

func newToolsCmd(app *App) *cobra.Command {
	var eligible bool

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List your tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			tools, err := app.Mining.ListTools(cmdContext(cmd))
			if err != nil {
				return err
			}
			if eligible {
				tools = domain.EligibleTools(tools)
			}
			w := cmd.OutOrStdout()
			if len(tools) == 0 {
				fmt.Fprintln(w, formatter.Dim("No tools."))
				return nil
			}
			rows := make([][]string, 0, len(tools))
			for _, t := range tools {
				ready := formatter.Dim("no")
				if t.Eligible() {
					ready = formatter.StyleGreen.Render("yes")
				}
				rows = append(rows, []string{
					fmt.Sprintf("%d", t.ID),
					t.ToolID,
					t.ToolTypeDisplay,
					t.Status,
					fmt.Sprintf("%d/%d", t.CurrentDurability, t.MaxDurability),
					ready,
				})
			}
			fmt.Fprint(w, formatter.RenderTable([]string{"ID", "CODE", "TYPE", "STATUS", "DURABILITY", "READY"}, rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&eligible, "eligible", false, "Only show tools that can start mining")
	return cmd
}

func newHistoryCmd(app *App) *cobra.Command {
	var (
		limit int
		kind  actionKindFlag
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently journaled mining actions",
		RunE: func(cmd *cobra.Command, args []string) error {
			fetch := limit
			if kind != "" {
				fetch = limit * historyFilterFactor
			}
			entries, err := app.Mining.RecentActions(cmdContext(cmd), fetch)
			if err != nil {
				return err
			}
			printActions(cmd.OutOrStdout(), kind.filter(entries, limit))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Number of entries to show")
	cmd.Flags().Var(&kind, "kind", "Only show one action kind (start, stop, stop_all, collect)")
	return cmd
}

// historyFilterFactor widens the fetch when --kind drops rows client-side.
const historyFilterFactor = 5

// actionKindFlag is a pflag.Value restricted to journal action kinds.
type actionKindFlag domain.ActionKind

var _ pflag.Value = (*actionKindFlag)(nil)

func (f *actionKindFlag) String() string { return string(*f) }
func (f *actionKindFlag) Type() string   { return "kind" }

func (f *actionKindFlag) Set(v string) error {
	k := domain.ActionKind(strings.ReplaceAll(strings.ToLower(v), "-", "_"))
	if !domain.ValidActionKinds[k] {
		return fmt.Errorf("unknown action kind %q", v)
	}
	*f = actionKindFlag(k)
	return nil
}

func (f actionKindFlag) filter(entries []*domain.ActionEntry, limit int) []*domain.ActionEntry {
	if f == "" {
		return entries
	}
	out := make([]*domain.ActionEntry, 0, len(entries))
	for _, e := range entries {
		if e.Kind == domain.ActionKind(f) {
			out = append(out, e)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
