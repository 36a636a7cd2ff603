package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"paper-trader/internal/models"
	"paper-trader/pkg/utils"
)

func addAccountCommands(rootCmd *cobra.Command, app *App) {
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Manage paper-trading accounts",
	}

	createCmd := &cobra.Command{
		Use:   "create OWNER",
		Short: "Create a paper-trading account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cmd)
			if app.Store == nil {
				return fmt.Errorf("store not available")
			}

			cash, _ := cmd.Flags().GetString("cash")
			balance := decimal.NewFromFloat(app.Config.Trading.StartingCash)
			if cash != "" {
				parsed, err := decimal.NewFromString(cash)
				if err != nil {
					return fmt.Errorf("invalid cash amount %q: %w", cash, err)
				}
				balance = parsed
			}

			account := &models.Account{
				ID:          uuid.NewString(),
				Owner:       args[0],
				CashBalance: balance,
			}
			if err := app.Store.CreateAccount(cmd.Context(), account); err != nil {
				return err
			}

			if out.IsJSON() {
				return out.JSON(account)
			}
			out.Success("Account %s created for %s with %s", account.ID, account.Owner, utils.FormatUSD(balance))
			return nil
		},
	}
	createCmd.Flags().String("cash", "", "starting cash balance (default from config)")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show account details",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cmd)
			if app.Store == nil {
				return fmt.Errorf("store not available")
			}

			account, err := app.Store.GetAccount(cmd.Context(), app.accountID(cmd))
			if err != nil {
				return err
			}

			if out.IsJSON() {
				return out.JSON(account)
			}
			out.Printf("Account:  %s\n", account.ID)
			out.Printf("Owner:    %s\n", account.Owner)
			out.Printf("Cash:     %s\n", utils.FormatUSD(account.CashBalance))
			return nil
		},
	}
	showCmd.Flags().String("account", "", "account ID")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cmd)
			if app.Store == nil {
				return fmt.Errorf("store not available")
			}

			accounts, err := app.Store.ListAccounts(cmd.Context())
			if err != nil {
				return err
			}

			if out.IsJSON() {
				return out.JSON(accounts)
			}
			for _, a := range accounts {
				out.Printf("%s  %-20s %s\n", a.ID, a.Owner, utils.FormatUSD(a.CashBalance))
			}
			return nil
		},
	}

	accountCmd.AddCommand(createCmd, showCmd, listCmd)
	rootCmd.AddCommand(accountCmd)
}
