package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"option-pricer/internal/logging"
	"option-pricer/internal/market"
	"option-pricer/internal/models"
	"option-pricer/internal/quote"
	"option-pricer/internal/stream"
)

// addOptionsCommands adds the pricing commands.
func addOptionsCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newChainCmd(app))
	rootCmd.AddCommand(newBuyCmd(app))
	rootCmd.AddCommand(newWriteCmd(app))
	rootCmd.AddCommand(newGreeksCmd(app))
	rootCmd.AddCommand(newIVCmd(app))
}

func newChainCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chain <symbol>",
		Short: "Display option chain",
		Long: `Display the option chain for a symbol.

Eleven strikes are laid out around the spot price. Each row shows call and
put premiums with delta, theta and moneyness. With --watch the spot follows
a simulated random walk and the chain is recomputed on every refresh.`,
		Example: `  optpricer chain AAPL --spot 180
  optpricer chain BTC --spot 62000 --expiry 30d
  optpricer chain SPY --spot 512.40 --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			symbol := models.NormalizeSymbol(args[0])

			spot, _ := cmd.Flags().GetFloat64("spot")
			expiry, err := expiryFlag(cmd, app)
			if err != nil {
				return err
			}

			if watch, _ := cmd.Flags().GetBool("watch"); watch {
				return watchChain(cmd, app, output, symbol, spot, expiry)
			}

			chain, err := app.Quoter.Chain(symbol, spot, expiry)
			if err != nil {
				output.Error("Failed to generate option chain: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(chain)
			}
			displayOptionChain(output, chain)
			return nil
		},
	}

	cmd.Flags().Float64("spot", 0, "Spot price of the underlying")
	cmd.Flags().String("expiry", "", "Days to expiry: 1d, 3d, 7d, 14d or 30d (default from config)")
	cmd.Flags().Bool("watch", false, "Recompute the chain on every refresh until interrupted")
	cmd.Flags().Int("count", 0, "Stop watching after this many refreshes (0 = until interrupted)")
	cmd.Flags().Duration("step", time.Hour, "Simulated market time per refresh when watching (0 = hold spot fixed)")
	cmd.Flags().Uint64("seed", 0, "Random walk seed when watching (0 = time based)")
	cmd.MarkFlagRequired("spot")

	return cmd
}

// watchChain streams recomputed chains from a simulated spot feed, or from
// a fixed spot when --step is zero.
func watchChain(cmd *cobra.Command, app *App, output *Output, symbol string, spot float64, expiry models.Expiry) error {
	// Reject bad input before starting the loop.
	if _, err := app.Quoter.Chain(symbol, spot, expiry); err != nil {
		output.Error("Failed to generate option chain: %v", err)
		return err
	}

	count, _ := cmd.Flags().GetInt("count")
	step, _ := cmd.Flags().GetDuration("step")
	seed, _ := cmd.Flags().GetUint64("seed")
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	var source market.SpotSource
	if step > 0 {
		source = market.NewSimulatedSource(market.SimulatedConfig{
			Volatility: app.Quoter.Volatility(symbol),
			Step:       step,
			Seed:       seed,
		}, map[string]float64{symbol: spot})
	} else {
		source = market.NewStaticSource(map[string]float64{symbol: spot})
	}

	refresher := stream.NewRefresher(stream.RefresherConfig{
		Interval:         app.Config.Stream.RefreshInterval,
		SubscriberBuffer: app.Config.Stream.SubscriberBuffer,
	}, market.WithRetry(source, market.DefaultRetryConfig()), app.Quoter, app.Logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	updates := refresher.Subscribe(symbol, expiry)
	refresher.Start(ctx)
	defer refresher.Stop()
	defer logWatchSummary(cmd, refresher, symbol)
	defer refresher.Unsubscribe(updates)

	for n := 0; count == 0 || n < count; n++ {
		select {
		case <-ctx.Done():
			return nil
		case chain, ok := <-updates:
			if !ok {
				return nil
			}
			if output.IsJSON() {
				if err := output.JSON(chain); err != nil {
					return err
				}
				continue
			}
			displayOptionChain(output, chain)
			output.Dim("Updated %s  (Ctrl+C to stop)", FormatDateTime(chain.GeneratedAt))
			output.Println()
		}
	}
	return nil
}

func logWatchSummary(cmd *cobra.Command, refresher *stream.Refresher, symbol string) {
	m := refresher.GetMetrics()
	logger := logging.WithSymbol(logging.FromContext(cmd.Context()), symbol)
	logger.Info().
		Uint64("refreshes", m.Refreshes).
		Uint64("failures", m.Failures).
		Uint64("published", m.Published).
		Uint64("dropped", m.Dropped).
		Msg("Watch finished")
}

func displayOptionChain(output *Output, chain *models.OptionChain) {
	output.Bold("Option Chain - %s", chain.Symbol)
	output.Printf("  Spot: %s  Expiry: %s  Vol: %s  Rate: %s\n\n",
		FormatPrice(chain.SpotPrice),
		FormatExpiry(chain.Expiry, chain.GeneratedAt),
		FormatIV(chain.Sigma),
		FormatIV(chain.Rate))

	table := NewTable(output, "", "Call Θ", "Call Δ", "Call", "Strike", "Put", "Put Δ", "Put Θ", "")
	for _, e := range chain.Entries {
		strike := FormatStrike(e.Strike, chain.StrikeInterval)
		if e.CallMoneyness == models.ATM {
			strike = output.BoldText(strike)
		}
		table.AddRow(
			output.Moneyness(e.CallMoneyness),
			fmt.Sprintf("%.4f", e.CallGreeks.Theta),
			fmt.Sprintf("%.4f", e.CallGreeks.Delta),
			FormatPrice(e.CallGreeks.Price),
			strike,
			FormatPrice(e.PutGreeks.Price),
			fmt.Sprintf("%.4f", e.PutGreeks.Delta),
			fmt.Sprintf("%.4f", e.PutGreeks.Theta),
			output.Moneyness(e.PutMoneyness),
		)
	}
	table.Render()
}

func newBuyCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "buy <symbol>",
		Short: "Buy an option from the chain",
		Long: `Price one leg off a freshly generated chain and record the contract.

The strike must be one of the eleven strikes on the chain around --spot.`,
		Example: `  optpricer buy AAPL --type call --strike 185 --spot 180 --expiry 7d
  optpricer buy ETH --type put --strike 3000 --spot 3120 --expiry 14d --qty 2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			req, err := buyRequest(cmd, app, args[0])
			if err != nil {
				return err
			}

			contract, err := app.Quoter.Buy(req)
			if err != nil {
				output.Error("Failed to price contract: %v", err)
				return err
			}
			if err := recordContract(cmd, app, contract); err != nil {
				output.Error("Failed to record contract: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(contract)
			}
			displayContract(output, "Contract Bought", contract)
			return nil
		},
	}

	cmd.Flags().String("type", "call", "Option type: call or put")
	cmd.Flags().Float64("strike", 0, "Strike price (must be on the chain)")
	cmd.Flags().Float64("spot", 0, "Spot price of the underlying")
	cmd.Flags().String("expiry", "", "Days to expiry: 1d, 3d, 7d, 14d or 30d (default from config)")
	cmd.Flags().Int("qty", 1, "Number of contracts")
	cmd.MarkFlagRequired("strike")
	cmd.MarkFlagRequired("spot")

	return cmd
}

func buyRequest(cmd *cobra.Command, app *App, symbol string) (quote.BuyRequest, error) {
	typ, err := typeFlag(cmd)
	if err != nil {
		return quote.BuyRequest{}, err
	}
	expiry, err := expiryFlag(cmd, app)
	if err != nil {
		return quote.BuyRequest{}, err
	}
	strike, _ := cmd.Flags().GetFloat64("strike")
	spot, _ := cmd.Flags().GetFloat64("spot")
	qty, _ := cmd.Flags().GetInt("qty")

	return quote.BuyRequest{
		Symbol:   symbol,
		Type:     typ,
		Strike:   strike,
		Spot:     spot,
		Expiry:   expiry,
		Quantity: qty,
	}, nil
}

func newWriteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "write <symbol>",
		Short: "Quote a covered option written against owned shares",
		Long: `Quote the premium collected by writing an option against shares you own.

Covered writes are priced with the equity volatility regardless of symbol.
Pass --confirm to record the written contract.`,
		Example: `  optpricer write AAPL --shares 100 --spot 180 --strike 190 --days 14
  optpricer write MSFT --shares 200 --spot 410 --strike 400 --days 30 --type put --confirm`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			typ, err := typeFlag(cmd)
			if err != nil {
				return err
			}
			shares, _ := cmd.Flags().GetInt("shares")
			spot, _ := cmd.Flags().GetFloat64("spot")
			strike, _ := cmd.Flags().GetFloat64("strike")
			days, _ := cmd.Flags().GetInt("days")
			confirm, _ := cmd.Flags().GetBool("confirm")

			q, err := app.Quoter.CoveredWrite(quote.CoveredWriteRequest{
				Symbol: args[0],
				Type:   typ,
				Spot:   spot,
				Strike: strike,
				Days:   days,
				Shares: shares,
			})
			if err != nil {
				output.Error("Failed to quote covered write: %v", err)
				return err
			}

			if confirm {
				if err := recordContract(cmd, app, q.Contract); err != nil {
					output.Error("Failed to record contract: %v", err)
					return err
				}
			}

			if output.IsJSON() {
				return output.JSON(q)
			}

			c := q.Contract
			output.Bold("Covered %s - %s", legLabel(c.Type), c.Symbol)
			output.Printf("  Shares:            %d\n", c.Quantity)
			output.Printf("  Spot / Strike:     %s / %s\n", FormatPrice(c.Spot), FormatPrice(c.Strike))
			output.Printf("  Days to expiry:    %d\n", c.DaysToExpiry)
			output.Printf("  Volatility:        %s\n", FormatIV(c.Sigma))
			output.Println()
			output.Printf("  Premium per share: %s\n", FormatDecimal(q.PremiumPerShare, 4))
			output.Printf("  Total premium:     %s\n", output.Green(FormatDecimal(q.TotalPremium, 2)))
			output.Printf("  %s\n", FormatGreeks(q.Greeks))
			output.Println()
			if confirm {
				output.Success("✓ Contract %s recorded", c.ID)
			} else {
				output.Dim("Quote only. Pass --confirm to record the contract.")
			}
			return nil
		},
	}

	cmd.Flags().String("type", "call", "Option type: call or put")
	cmd.Flags().Int("shares", 100, "Number of shares covered")
	cmd.Flags().Float64("spot", 0, "Spot price of the shares")
	cmd.Flags().Float64("strike", 0, "Strike price")
	cmd.Flags().Int("days", 0, "Days to expiry")
	cmd.Flags().Bool("confirm", false, "Record the written contract")
	cmd.MarkFlagRequired("spot")
	cmd.MarkFlagRequired("strike")
	cmd.MarkFlagRequired("days")

	return cmd
}

func newGreeksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "greeks [symbol]",
		Short: "Calculate option price and Greeks",
		Long: `Calculate the Black-Scholes price, delta, gamma, theta and vega for one option.

Theta is the value lost per calendar day. Vega is the value gained per one
point rise in volatility. Without --vol the symbol's volatility regime applies.`,
		Example: `  optpricer greeks --spot 100 --strike 100 --days 7 --vol 0.35
  optpricer greeks BTC --spot 62000 --strike 65000 --days 30 --type put`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			req, err := legRequest(cmd, args)
			if err != nil {
				return err
			}
			req.Sigma, _ = cmd.Flags().GetFloat64("vol")
			if req.Sigma == 0 {
				req.Sigma = app.Quoter.Volatility(req.Symbol)
			}

			g, err := app.Quoter.Greeks(req)
			if err != nil {
				output.Error("Failed to calculate Greeks: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(g)
			}

			output.Bold("Option Greeks")
			output.Printf("  %s %s %s  %dd  vol %s\n\n", displaySymbol(req.Symbol), req.Type,
				FormatPrice(req.Strike), req.Days, FormatIV(req.Sigma))
			output.Printf("  Price:      %s\n", output.BoldText(FormatPrice(g.Price)))
			output.Printf("  Delta (Δ):  %s\n", output.Signed(g.Delta, 4))
			output.Printf("  Gamma (Γ):  %.4f\n", g.Gamma)
			output.Printf("  Theta (Θ):  %s\n", output.Signed(g.Theta, 4))
			output.Printf("  Vega (ν):   %.4f\n", g.Vega)
			return nil
		},
	}

	addLegFlags(cmd)
	cmd.Flags().Float64("vol", 0, "Volatility as a decimal, e.g. 0.35 (default from symbol regime)")

	return cmd
}

func newIVCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "iv [symbol]",
		Short: "Solve implied volatility from a market premium",
		Long: `Recover the volatility that reproduces a market premium.

The search is best effort: when it does not converge the last estimate is
shown with a warning. Use --strict to fail instead.`,
		Example: `  optpricer iv --spot 100 --strike 100 --days 30 --price 4.20
  optpricer iv TSLA --spot 240 --strike 250 --days 14 --price 6.10 --type call --strict`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			req, err := legRequest(cmd, args)
			if err != nil {
				return err
			}
			price, _ := cmd.Flags().GetFloat64("price")
			strict, _ := cmd.Flags().GetBool("strict")

			res, err := app.Quoter.ImpliedVol(req, price)
			if err != nil {
				output.Error("Failed to solve implied volatility: %v", err)
				return err
			}

			if output.IsJSON() {
				if err := output.JSON(res); err != nil {
					return err
				}
			} else {
				output.Bold("Implied Volatility")
				output.Printf("  %s %s %s  %dd  premium %s\n\n", displaySymbol(req.Symbol), req.Type,
					FormatPrice(req.Strike), req.Days, FormatPrice(price))
				output.Printf("  IV:         %s\n", output.BoldText(FormatIV(res.Sigma)))
				output.Printf("  Iterations: %d\n", res.Iterations)
				if !res.Converged {
					output.Warning("⚠ Search did not converge; the value is a best-effort estimate")
				}
			}

			if strict && !res.Converged {
				return fmt.Errorf("implied volatility did not converge after %d iterations", res.Iterations)
			}
			return nil
		},
	}

	addLegFlags(cmd)
	cmd.Flags().Float64("price", 0, "Observed market premium")
	cmd.Flags().Bool("strict", false, "Exit with an error when the search does not converge")
	cmd.MarkFlagRequired("price")

	return cmd
}

func addLegFlags(cmd *cobra.Command) {
	cmd.Flags().String("type", "call", "Option type: call or put")
	cmd.Flags().Float64("spot", 0, "Spot price of the underlying")
	cmd.Flags().Float64("strike", 0, "Strike price")
	cmd.Flags().Int("days", 0, "Days to expiry")
	cmd.MarkFlagRequired("spot")
	cmd.MarkFlagRequired("strike")
	cmd.MarkFlagRequired("days")
}

func legRequest(cmd *cobra.Command, args []string) (quote.LegRequest, error) {
	typ, err := typeFlag(cmd)
	if err != nil {
		return quote.LegRequest{}, err
	}
	req := quote.LegRequest{Type: typ}
	if len(args) > 0 {
		req.Symbol = models.NormalizeSymbol(args[0])
	}
	req.Spot, _ = cmd.Flags().GetFloat64("spot")
	req.Strike, _ = cmd.Flags().GetFloat64("strike")
	req.Days, _ = cmd.Flags().GetInt("days")
	return req, nil
}

func typeFlag(cmd *cobra.Command) (models.OptionType, error) {
	raw, _ := cmd.Flags().GetString("type")
	return models.ParseOptionType(raw)
}

func expiryFlag(cmd *cobra.Command, app *App) (models.Expiry, error) {
	raw, _ := cmd.Flags().GetString("expiry")
	if raw == "" {
		raw = fmt.Sprintf("%d", app.Config.Pricing.DefaultExpiryDays)
	}
	return models.ParseExpiry(raw)
}

func legLabel(t models.OptionType) string {
	if t.IsCall() {
		return "Call"
	}
	return "Put"
}

func displaySymbol(symbol string) string {
	if symbol == "" {
		return "Option"
	}
	return symbol
}

func displayContract(output *Output, title string, c *models.Contract) {
	output.Box(title, []string{
		fmt.Sprintf("ID:        %s", c.ID),
		fmt.Sprintf("Contract:  %s %s %s x%d", c.Symbol, c.Type, FormatPrice(c.Strike), c.Quantity),
		fmt.Sprintf("Spot:      %s", FormatPrice(c.Spot)),
		fmt.Sprintf("Premium:   %s", FormatPrice(c.Premium)),
		fmt.Sprintf("Expires:   %s", FormatDate(c.ExpiresAt())),
		FormatGreeks(c.Greeks),
	})
}
