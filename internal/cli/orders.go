package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"paper-trader/internal/models"
	"paper-trader/internal/store"
	"paper-trader/pkg/utils"
)

func addOrderCommands(rootCmd *cobra.Command, app *App) {
	orderCmd := &cobra.Command{
		Use:   "order",
		Short: "Create and inspect paper orders",
	}

	buyCmd := &cobra.Command{
		Use:   "place SYMBOL TYPE QTY [PRICE]",
		Short: "Place a single-leg paper order (filled immediately)",
		Args:  cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cmd)
			if app.Orders == nil {
				return fmt.Errorf("order service not available")
			}

			qty, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid quantity %q: %w", args[2], err)
			}

			var price decimal.NullDecimal
			if len(args) == 4 {
				parsed, err := decimal.NewFromString(args[3])
				if err != nil {
					return fmt.Errorf("invalid price %q: %w", args[3], err)
				}
				price = decimal.NullDecimal{Decimal: parsed, Valid: true}
			}

			order, err := app.Orders.CreateOrder(cmd.Context(), app.accountID(cmd),
				args[0], models.OrderType(strings.ToUpper(args[1])), qty, price)
			if err != nil {
				return err
			}

			if out.IsJSON() {
				return out.JSON(order)
			}
			out.Success("Order %s: %s %d %s @ %s [%s]",
				order.ID, order.Type, order.Quantity, order.Symbol, order.Price.StringFixed(2), order.Status)
			return nil
		},
	}
	buyCmd.Flags().String("account", "", "account ID")

	multilegCmd := &cobra.Command{
		Use:   "multileg LEG...",
		Short: "Place a multi-leg order as one synthetic filled order",
		Long: `Each leg is SYMBOL:TYPE:QTY[:PRICE], e.g.

  paper-trader order multileg AAPL240119C00195000:BTO:1:5.25 AAPL240119C00200000:STO:1:3.10`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cmd)
			if app.Orders == nil {
				return fmt.Errorf("order service not available")
			}

			legs := make([]models.OrderLeg, 0, len(args))
			for _, arg := range args {
				leg, err := parseLeg(arg)
				if err != nil {
					return err
				}
				legs = append(legs, leg)
			}

			order, err := app.Orders.CreateMultiLegOrder(cmd.Context(), app.accountID(cmd), legs)
			if err != nil {
				return err
			}

			if out.IsJSON() {
				return out.JSON(order)
			}
			out.Success("Order %s: %s qty=%d price=%s [%s]",
				order.ID, order.Symbol, order.Quantity, order.Price.StringFixed(2), order.Status)
			return nil
		},
	}
	multilegCmd.Flags().String("account", "", "account ID")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cmd)
			if app.Store == nil {
				return fmt.Errorf("store not available")
			}

			limit, _ := cmd.Flags().GetInt("limit")
			ordersList, err := app.Store.GetOrders(cmd.Context(), store.OrderFilter{
				AccountID: app.accountID(cmd),
				Limit:     limit,
			})
			if err != nil {
				return err
			}

			if out.IsJSON() {
				return out.JSON(ordersList)
			}
			for _, o := range ordersList {
				out.Printf("%s  %-22s %-4s %6d %12s %-9s %s\n",
					o.CreatedAt.Format("2006-01-02 15:04"), o.Symbol, o.Type, o.Quantity,
					utils.FormatUSD(o.Price), o.Status, o.ID)
			}
			return nil
		},
	}
	listCmd.Flags().String("account", "", "account ID")
	listCmd.Flags().Int("limit", 50, "maximum orders to show")

	orderCmd.AddCommand(buyCmd, multilegCmd, listCmd)
	rootCmd.AddCommand(orderCmd)
}

// parseLeg parses SYMBOL:TYPE:QTY[:PRICE] into an order leg.
func parseLeg(s string) (models.OrderLeg, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 3 || len(parts) > 4 {
		return models.OrderLeg{}, fmt.Errorf("invalid leg %q (want SYMBOL:TYPE:QTY[:PRICE])", s)
	}

	qty, err := strconv.Atoi(parts[2])
	if err != nil {
		return models.OrderLeg{}, fmt.Errorf("invalid leg quantity %q: %w", parts[2], err)
	}

	leg := models.OrderLeg{
		Symbol:   parts[0],
		Type:     models.OrderType(strings.ToUpper(parts[1])),
		Quantity: qty,
	}
	if len(parts) == 4 {
		price, err := decimal.NewFromString(parts[3])
		if err != nil {
			return models.OrderLeg{}, fmt.Errorf("invalid leg price %q: %w", parts[3], err)
		}
		leg.Price = decimal.NullDecimal{Decimal: price, Valid: true}
	}
	return leg, nil
}
