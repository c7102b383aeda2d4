package cli

import (
	"fmt"
	"strconv"

	"github.com/alexanderramin/landminer/internal/api"
	"github.com/alexanderramin/landminer/internal/cli/formatter"
	"github.com/alexanderramin/landminer/internal/domain"
	"github.com/spf13/cobra"
)

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check the API connection and the local journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmdContext(cmd)
			reachable := app.Mining.Reachable(ctx)

			recent, err := app.Mining.RecentActions(ctx, 1)
			if err != nil {
				return err
			}
			last := "无"
			if len(recent) > 0 {
				e := recent[0]
				last = fmt.Sprintf("%s %s (%s)", e.CreatedAt.Local().Format("01-02 15:04"), actionKindLabel(e.Kind), actionResultLabel(e.Result))
			}

			conn := formatter.StyleGreen.Render("可用")
			if !reachable {
				conn = formatter.StyleRed.Render("不可用")
			}
			c := domain.NextSettlement(app.now())

			fmt.Fprintln(cmd.OutOrStdout(), formatter.RenderKeyValues([][2]string{
				{"API", conn},
				{"下次结算", c.Time + " (" + strconv.Itoa(c.Minutes) + " 分钟)"},
				{"最近操作", last},
			}))
			if !reachable {
				return errAPIUnavailable
			}
			return nil
		},
	}
}

var errAPIUnavailable = fmt.Errorf("status: %w", api.ErrUnavailable)
