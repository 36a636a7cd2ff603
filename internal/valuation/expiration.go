package valuation

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"paper-trader/internal/models"
)

// SimulateExpiration classifies every option position of an account against
// the processing date and reports projected exercise/assignment impact.
// The scan is a dry run: it never mutates positions, orders, or cash.
//
// A zero processingDate means today.
func (e *Engine) SimulateExpiration(ctx context.Context, accountID string, processingDate time.Time) (*models.ExpirationReport, error) {
	if processingDate.IsZero() {
		processingDate = time.Now()
	}

	positions, err := e.store.GetPositions(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("fetching positions: %w", err)
	}

	report := &models.ExpirationReport{
		AccountID:      accountID,
		ProcessingDate: processingDate,
		DryRun:         true,
	}

	for _, pos := range positions {
		if pos.Quantity == 0 {
			continue
		}
		option, ok := e.resolveInstrument(ctx, pos.Symbol).(models.Option)
		if !ok {
			continue
		}

		if !option.ExpiresOn(processingDate) {
			report.NonExpiring++
			report.NonExpiringDetails = append(report.NonExpiringDetails, models.NonExpiringOption{
				Symbol:       option.Symbol,
				Expiry:       option.Expiry,
				DaysToExpiry: option.DaysToExpiry(processingDate),
			})
			continue
		}

		report.ExpiringPositions++
		entry := e.classifyExpiring(ctx, pos, option)
		report.ExpiringOptions = append(report.ExpiringOptions, entry)
		report.TotalImpact = report.TotalImpact.Add(entry.PositionImpact)
	}

	e.logger.Info().
		Str("account_id", accountID).
		Time("processing_date", processingDate).
		Int("expiring", report.ExpiringPositions).
		Int("non_expiring", report.NonExpiring).
		Str("total_impact", report.TotalImpact.String()).
		Msg("Expiration scan complete")

	return report, nil
}

// classifyExpiring determines the expiration-day outcome of one contract.
// Quote failures mark the entry for manual review instead of aborting the
// scan: one bad option must not block reporting on the rest.
func (e *Engine) classifyExpiring(ctx context.Context, pos models.Position, option models.Option) models.ExpiringOption {
	entry := models.ExpiringOption{
		Symbol:     option.Symbol,
		Underlying: option.Underlying,
		Type:       option.Type,
		Strike:     option.Strike,
		Quantity:   pos.Quantity,
	}

	quote, err := e.quotes.GetOptionQuote(ctx, option.Symbol)
	if err != nil {
		entry.Action = models.ActionManualReviewRequired
		entry.Error = err.Error()
		return entry
	}
	if !quote.UnderlyingPrice.Valid {
		entry.Action = models.ActionManualReviewRequired
		entry.Error = "underlying price unavailable"
		return entry
	}

	entry.UnderlyingPrice = quote.UnderlyingPrice
	entry.IntrinsicValue = option.IntrinsicValue(quote.UnderlyingPrice.Decimal)

	if entry.IntrinsicValue.IsPositive() {
		entry.Action = models.ActionExerciseOrAssign
		entry.PositionImpact = entry.IntrinsicValue.
			Mul(decimal.NewFromInt(int64(pos.Quantity))).
			Mul(decimal.NewFromInt(models.OptionMultiplier))
	} else {
		entry.Action = models.ActionExpireWorthless
	}

	return entry
}
