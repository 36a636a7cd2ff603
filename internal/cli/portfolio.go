package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"paper-trader/pkg/utils"
)

func addPortfolioCommands(rootCmd *cobra.Command, app *App) {
	portfolioCmd := &cobra.Command{
		Use:   "portfolio",
		Short: "Show portfolio valuation",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cmd)
			if app.Engine == nil {
				return fmt.Errorf("valuation engine not available")
			}

			portfolio, err := app.Engine.GetPortfolio(cmd.Context(), app.accountID(cmd))
			if err != nil {
				return err
			}
			summary := app.Engine.Summarize(portfolio)

			if out.IsJSON() {
				return out.JSON(map[string]interface{}{
					"portfolio": portfolio,
					"summary":   summary,
				})
			}

			out.Printf("%-22s %8s %12s %12s %14s %14s\n", "SYMBOL", "QTY", "AVG", "PRICE", "VALUE", "P&L")
			for _, p := range portfolio.Positions {
				out.Printf("%-22s %8s %12s %12s %14s %14s\n",
					p.Symbol,
					utils.FormatQuantity(p.Quantity),
					p.AvgPrice.StringFixed(2),
					p.CurrentPrice.StringFixed(2),
					utils.FormatUSD(p.MarketValue),
					utils.FormatPnL(p.UnrealizedPnL))
			}
			out.Println()
			out.Printf("Cash:        %s\n", utils.FormatUSD(portfolio.CashBalance))
			out.Printf("Invested:    %s\n", utils.FormatUSD(summary.InvestedValue))
			out.Printf("Total value: %s\n", utils.FormatUSD(portfolio.TotalValue))
			out.Printf("Total P&L:   %s (%s)\n", utils.FormatPnL(portfolio.TotalPnL), utils.FormatPercent(summary.TotalPnLPercent))
			return nil
		},
	}
	portfolioCmd.Flags().String("account", "", "account ID")

	greeksCmd := &cobra.Command{
		Use:   "greeks",
		Short: "Show portfolio Greeks exposure",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cmd)
			if app.Engine == nil {
				return fmt.Errorf("valuation engine not available")
			}

			symbol, _ := cmd.Flags().GetString("symbol")
			if symbol != "" {
				greeks, err := app.Engine.GetPositionGreeks(cmd.Context(), app.accountID(cmd), symbol)
				if err != nil {
					return err
				}
				if out.IsJSON() {
					return out.JSON(greeks)
				}
				out.Printf("%s (qty %d, underlying %s)\n", greeks.Symbol, greeks.Quantity, greeks.Underlying)
				out.Printf("  Delta: %10.4f  scaled %12.2f  ($%.2f)\n", greeks.Contract.Delta, greeks.Scaled.Delta, greeks.DeltaDollars)
				out.Printf("  Gamma: %10.4f  scaled %12.2f\n", greeks.Contract.Gamma, greeks.Scaled.Gamma)
				out.Printf("  Theta: %10.4f  scaled %12.2f\n", greeks.Contract.Theta, greeks.Scaled.Theta)
				out.Printf("  Vega:  %10.4f  scaled %12.2f\n", greeks.Contract.Vega, greeks.Scaled.Vega)
				out.Printf("  Rho:   %10.4f  scaled %12.2f\n", greeks.Contract.Rho, greeks.Scaled.Rho)
				return nil
			}

			greeks, err := app.Engine.GetPortfolioGreeks(cmd.Context(), app.accountID(cmd))
			if err != nil {
				return err
			}
			if out.IsJSON() {
				return out.JSON(greeks)
			}
			out.Printf("Option positions: %d (%d with greeks data)\n", greeks.OptionPositions, greeks.PositionsWithData)
			out.Printf("  Delta: %12.2f  (normalized %8.4f, $%.2f)\n", greeks.Delta, greeks.DeltaNormalized, greeks.DeltaDollars)
			out.Printf("  Gamma: %12.2f  (normalized %8.4f)\n", greeks.Gamma, greeks.GammaNormalized)
			out.Printf("  Theta: %12.2f  (normalized %8.4f)\n", greeks.Theta, greeks.ThetaNormalized)
			out.Printf("  Vega:  %12.2f  (normalized %8.4f)\n", greeks.Vega, greeks.VegaNormalized)
			out.Printf("  Rho:   %12.2f  (normalized %8.4f)\n", greeks.Rho, greeks.RhoNormalized)
			return nil
		},
	}
	greeksCmd.Flags().String("account", "", "account ID")
	greeksCmd.Flags().String("symbol", "", "single option symbol")

	expireCmd := &cobra.Command{
		Use:   "expire",
		Short: "Simulate expiration-day outcomes (dry run)",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cmd)
			if app.Engine == nil {
				return fmt.Errorf("valuation engine not available")
			}

			var processingDate time.Time
			if dateStr, _ := cmd.Flags().GetString("date"); dateStr != "" {
				parsed, err := time.Parse("2006-01-02", dateStr)
				if err != nil {
					return fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", dateStr, err)
				}
				processingDate = parsed
			}

			report, err := app.Engine.SimulateExpiration(cmd.Context(), app.accountID(cmd), processingDate)
			if err != nil {
				return err
			}

			if out.IsJSON() {
				return out.JSON(report)
			}

			out.Printf("Expiration scan for %s (dry run)\n", report.ProcessingDate.Format("2006-01-02"))
			out.Printf("Expiring: %d  Non-expiring: %d\n\n", report.ExpiringPositions, report.NonExpiring)
			for _, opt := range report.ExpiringOptions {
				switch opt.Action {
				case "manual_review_required":
					out.Warn("%-22s %s: %s", opt.Symbol, opt.Action, opt.Error)
				default:
					out.Printf("%-22s %-20s intrinsic %s  impact %s\n",
						opt.Symbol, string(opt.Action), opt.IntrinsicValue.StringFixed(2), utils.FormatPnL(opt.PositionImpact))
				}
			}
			for _, opt := range report.NonExpiringDetails {
				out.Printf("%-22s expires %s (%d days)\n", opt.Symbol, opt.Expiry.Format("2006-01-02"), opt.DaysToExpiry)
			}
			out.Printf("\nTotal projected impact: %s\n", utils.FormatPnL(report.TotalImpact))
			return nil
		},
	}
	expireCmd.Flags().String("account", "", "account ID")
	expireCmd.Flags().String("date", "", "processing date (YYYY-MM-DD, default today)")

	rootCmd.AddCommand(portfolioCmd, greeksCmd, expireCmd)
}
