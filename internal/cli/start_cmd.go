package cli

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/landminer/internal/api"
	"github.com/alexanderramin/landminer/internal/cli/formatter"
	"github.com/alexanderramin/landminer/internal/domain"
	"github.com/spf13/cobra"
)

func newStartCmd(app *App) *cobra.Command {
	var landID int64
	var toolIDs []int64

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a mining session on a land with a set of tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			est := domain.EstimateConsumption(len(toolIDs))
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, formatter.Dim(fmt.Sprintf("Estimated cost: food %d/h, durability %d/h", est.Food, est.Durability)))

			out, err := app.Mining.StartMining(cmdContext(cmd), api.StartRequest{LandID: landID, ToolIDs: toolIDs})
			if err != nil {
				var apiErr *api.Error
				if errors.As(err, &apiErr) {
					return fmt.Errorf("%s: %w", api.UserMessage(err, startFailedMsg), err)
				}
				return err
			}
			if out.Kind() == domain.OutcomeEmpty {
				fmt.Fprintln(w, formatter.Notice("Start accepted; the server returned no session details."))
				return nil
			}
			fmt.Fprintln(w, formatter.Toast(fmt.Sprintf("Mining started: session %s (algorithm %s)",
				out.Data.SessionID, out.Data.AlgorithmVersion), false))
			return nil
		},
	}

	cmd.Flags().Int64Var(&landID, "land", 0, "Land ID to mine on")
	cmd.Flags().Int64SliceVar(&toolIDs, "tool", nil, "Tool ID to use (repeatable)")
	_ = cmd.MarkFlagRequired("land")
	_ = cmd.MarkFlagRequired("tool")

	return cmd
}
