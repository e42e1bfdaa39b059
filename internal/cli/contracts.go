package cli

import (
	"time"

	"github.com/spf13/cobra"

	"option-pricer/internal/logging"
	"option-pricer/internal/models"
	"option-pricer/internal/store"
)

// addContractCommands adds contract journal commands.
func addContractCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newContractsCmd(app))
}

// recordContract hands a priced contract to the journal.
func recordContract(cmd *cobra.Command, app *App, c *models.Contract) error {
	s, err := app.contracts()
	if err != nil {
		return err
	}
	if err := s.SaveContract(cmd.Context(), c); err != nil {
		return err
	}
	logging.LogContract(logging.FromContext(cmd.Context()), c)
	return nil
}

func newContractsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contracts",
		Short: "List recorded contracts",
		Long:  "List contracts recorded by buy and write --confirm, newest first.",
		Example: `  optpricer contracts
  optpricer contracts --symbol AAPL --side write
  optpricer contracts --since 24h --limit 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			filter := store.ContractFilter{}
			filter.Symbol, _ = cmd.Flags().GetString("symbol")
			filter.Limit, _ = cmd.Flags().GetInt("limit")
			if side, _ := cmd.Flags().GetString("side"); side != "" {
				filter.Side = models.ContractSide(normalizeSide(side))
			}
			if since, _ := cmd.Flags().GetDuration("since"); since > 0 {
				filter.Since = time.Now().Add(-since)
			}

			s, err := app.contracts()
			if err != nil {
				output.Error("Contract journal unavailable: %v", err)
				return err
			}

			if prune, _ := cmd.Flags().GetBool("prune"); prune {
				n, err := s.DeleteExpired(cmd.Context(), time.Now())
				if err != nil {
					output.Error("Failed to prune expired contracts: %v", err)
					return err
				}
				if !output.IsJSON() && n > 0 {
					output.Dim("Pruned %d expired contracts", n)
				}
			}

			contracts, err := s.GetContracts(cmd.Context(), filter)
			if err != nil {
				output.Error("Failed to list contracts: %v", err)
				return err
			}

			if output.IsJSON() {
				if contracts == nil {
					contracts = []models.Contract{}
				}
				return output.JSON(contracts)
			}

			if len(contracts) == 0 {
				output.Info("No contracts recorded")
				return nil
			}

			table := NewTable(output, "Created", "Side", "Symbol", "Type", "Strike", "Qty", "Premium", "Delta", "Expires", "ID")
			for _, c := range contracts {
				table.AddRow(
					FormatDateTime(c.CreatedAt),
					string(c.Side),
					c.Symbol,
					string(c.Type),
					FormatPrice(c.Strike),
					FormatInt(c.Quantity),
					FormatPrice(c.Premium),
					output.Signed(c.Greeks.Delta, 4),
					FormatDate(c.ExpiresAt()),
					TruncateString(c.ID, 8),
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().String("symbol", "", "Filter by symbol")
	cmd.Flags().String("side", "", "Filter by side: buy or write")
	cmd.Flags().Duration("since", 0, "Only contracts recorded within this window, e.g. 24h")
	cmd.Flags().Int("limit", 20, "Maximum contracts to show (0 = all)")
	cmd.Flags().Bool("prune", false, "Delete expired contracts before listing")

	return cmd
}

func normalizeSide(s string) string {
	switch s {
	case "buy", "BUY", "b":
		return string(models.ContractSideBuy)
	case "write", "WRITE", "w", "sell":
		return string(models.ContractSideWrite)
	}
	return s
}
