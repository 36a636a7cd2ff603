package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"paper-trader/internal/models"
	"paper-trader/pkg/utils"
)

func addMarketCommands(rootCmd *cobra.Command, app *App) {
	quoteCmd := &cobra.Command{
		Use:   "quote SYMBOL",
		Short: "Show the latest reference quote for a symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cmd)
			if app.Quotes == nil || app.Store == nil {
				return fmt.Errorf("store not available")
			}

			symbol := args[0]
			instrument, err := app.Store.GetInstrument(cmd.Context(), symbol)
			if err == nil && instrument.Class() == models.ClassOption {
				quote, err := app.Quotes.GetOptionQuote(cmd.Context(), symbol)
				if err != nil {
					return err
				}
				if out.IsJSON() {
					return out.JSON(quote)
				}
				printQuote(out, &quote.Quote)
				if quote.UnderlyingPrice.Valid {
					out.Printf("Underlying: %s @ %s\n", quote.UnderlyingSymbol, quote.UnderlyingPrice.Decimal.StringFixed(2))
				}
				if quote.Greeks != nil {
					out.Printf("IV %.4f  delta %.4f  gamma %.4f  theta %.4f  vega %.4f  rho %.4f\n",
						quote.IV, quote.Greeks.Delta, quote.Greeks.Gamma, quote.Greeks.Theta, quote.Greeks.Vega, quote.Greeks.Rho)
				}
				return nil
			}

			quote, err := app.Quotes.GetQuote(cmd.Context(), symbol)
			if err != nil {
				return err
			}
			if out.IsJSON() {
				return out.JSON(quote)
			}
			printQuote(out, quote)
			return nil
		},
	}

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Run data-quality checks over the reference quotes",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cmd)
			if app.Store == nil {
				return fmt.Errorf("store not available")
			}

			violations, err := app.Store.ValidateQuotes(cmd.Context())
			if err != nil {
				return err
			}

			if out.IsJSON() {
				return out.JSON(violations)
			}
			if len(violations) == 0 {
				out.Success("All reference quotes pass bid <= price <= ask")
				return nil
			}
			for _, v := range violations {
				out.Warn("%-22s %s", v.Symbol, v.Reason)
			}
			return fmt.Errorf("%d quote(s) failed validation", len(violations))
		},
	}

	seedCmd := &cobra.Command{
		Use:   "seed FILE",
		Short: "Load test data (accounts, instruments, quotes, positions) from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cmd)
			if app.Store == nil {
				return fmt.Errorf("store not available")
			}
			counts, err := app.seedFromFile(cmd, args[0])
			if err != nil {
				return err
			}
			out.Success("Seeded %d accounts, %d instruments, %d quotes, %d positions",
				counts.accounts, counts.instruments, counts.quotes, counts.positions)
			return nil
		},
	}

	rootCmd.AddCommand(quoteCmd, validateCmd, seedCmd)
}

func printQuote(out *Output, q *models.Quote) {
	price, bid, ask := "-", "-", "-"
	if q.Price.Valid {
		price = utils.FormatUSD(q.Price.Decimal)
	}
	if q.Bid.Valid {
		bid = utils.FormatUSD(q.Bid.Decimal)
	}
	if q.Ask.Valid {
		ask = utils.FormatUSD(q.Ask.Decimal)
	}
	out.Printf("%s  price %s  bid %s  ask %s  (%s)\n", q.Symbol, price, bid, ask, q.QuoteDate.Format(time.RFC3339))
}

// seedFile is the on-disk shape of a test-data file.
type seedFile struct {
	Accounts []struct {
		ID          string `json:"id"`
		Owner       string `json:"owner"`
		CashBalance string `json:"cash_balance"`
	} `json:"accounts"`
	Instruments []struct {
		Symbol string `json:"symbol"`
		Class  string `json:"class"`
		Name   string `json:"name"`
	} `json:"instruments"`
	Quotes []struct {
		Symbol          string         `json:"symbol"`
		Price           *string        `json:"price"`
		Bid             *string        `json:"bid"`
		Ask             *string        `json:"ask"`
		QuoteDate       time.Time      `json:"quote_date"`
		UnderlyingPrice *string        `json:"underlying_price"`
		IV              float64        `json:"iv"`
		Greeks          *models.Greeks `json:"greeks"`
	} `json:"quotes"`
	Positions []struct {
		AccountID string `json:"account_id"`
		Symbol    string `json:"symbol"`
		Quantity  int    `json:"quantity"`
		AvgPrice  string `json:"avg_price"`
	} `json:"positions"`
}

type seedCounts struct {
	accounts    int
	instruments int
	quotes      int
	positions   int
}

// seedFromFile loads a JSON test-data file into the store. Option contracts
// are recognized by their OCC symbols; strike, expiry, and type come from
// the symbol itself.
func (a *App) seedFromFile(cmd *cobra.Command, path string) (*seedCounts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}

	var seed seedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parsing seed file: %w", err)
	}

	ctx := cmd.Context()
	counts := &seedCounts{}

	for _, acc := range seed.Accounts {
		balance, err := decimal.NewFromString(acc.CashBalance)
		if err != nil {
			return nil, fmt.Errorf("account %s: invalid cash balance: %w", acc.ID, err)
		}
		if err := a.Store.CreateAccount(ctx, &models.Account{ID: acc.ID, Owner: acc.Owner, CashBalance: balance}); err != nil {
			return nil, err
		}
		counts.accounts++
	}

	for _, inst := range seed.Instruments {
		instrument, err := buildInstrument(inst.Symbol, inst.Class, inst.Name)
		if err != nil {
			return nil, err
		}
		if err := a.Store.SaveInstrument(ctx, instrument); err != nil {
			return nil, err
		}
		counts.instruments++
	}

	for _, q := range seed.Quotes {
		price, err := parseNullDecimal(q.Price)
		if err != nil {
			return nil, fmt.Errorf("quote %s: invalid price: %w", q.Symbol, err)
		}
		bid, err := parseNullDecimal(q.Bid)
		if err != nil {
			return nil, fmt.Errorf("quote %s: invalid bid: %w", q.Symbol, err)
		}
		ask, err := parseNullDecimal(q.Ask)
		if err != nil {
			return nil, fmt.Errorf("quote %s: invalid ask: %w", q.Symbol, err)
		}
		base := models.Quote{Symbol: q.Symbol, Price: price, Bid: bid, Ask: ask, QuoteDate: q.QuoteDate}

		if occ, occErr := utils.ParseOCCSymbol(q.Symbol); occErr == nil {
			underlying, err := parseNullDecimal(q.UnderlyingPrice)
			if err != nil {
				return nil, fmt.Errorf("quote %s: invalid underlying price: %w", q.Symbol, err)
			}
			optionQuote := &models.OptionQuote{
				Quote:            base,
				UnderlyingSymbol: occ.Underlying,
				UnderlyingPrice:  underlying,
				IV:               q.IV,
				Greeks:           q.Greeks,
			}
			if err := a.Store.SaveOptionQuote(ctx, optionQuote); err != nil {
				return nil, err
			}
		} else {
			if err := a.Store.SaveQuote(ctx, &base); err != nil {
				return nil, err
			}
		}
		counts.quotes++
	}

	for _, pos := range seed.Positions {
		avg, err := decimal.NewFromString(pos.AvgPrice)
		if err != nil {
			return nil, fmt.Errorf("position %s: invalid avg price: %w", pos.Symbol, err)
		}
		if err := a.Store.UpsertPosition(ctx, &models.Position{
			AccountID: pos.AccountID,
			Symbol:    pos.Symbol,
			Quantity:  pos.Quantity,
			AvgPrice:  avg,
		}); err != nil {
			return nil, err
		}
		counts.positions++
	}

	return counts, nil
}

func buildInstrument(symbol, class, name string) (models.Instrument, error) {
	switch models.InstrumentClass(class) {
	case models.ClassEquity:
		return models.Equity{Symbol: symbol, Name: name}, nil
	case models.ClassOption:
		occ, err := utils.ParseOCCSymbol(symbol)
		if err != nil {
			return nil, fmt.Errorf("instrument %s: %w", symbol, err)
		}
		optionType := models.OptionPut
		if occ.IsCall {
			optionType = models.OptionCall
		}
		return models.Option{
			Symbol:     symbol,
			Underlying: occ.Underlying,
			Type:       optionType,
			Strike:     occ.Strike,
			Expiry:     occ.Expiry,
		}, nil
	default:
		return nil, fmt.Errorf("instrument %s: unknown class %q", symbol, class)
	}
}

func parseNullDecimal(s *string) (decimal.NullDecimal, error) {
	if s == nil || *s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}, nil
}
