package service

import (
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mleiva/portfolio-tracker-backend/internal/apperrors"
	"github.com/mleiva/portfolio-tracker-backend/internal/model"
	"github.com/mleiva/portfolio-tracker-backend/internal/repository"
)

// QuantityService reconstructs per-asset quantities from the initial
// holdings and the trade ledger. Quantities are never stored: the ledger
// is the single source of truth and every caller recomputes from it.
type QuantityService struct {
	holdingRepo *repository.HoldingRepository
	tradeRepo   *repository.TradeRepository
	priceRepo   *repository.PriceRepository
}

// NewQuantityService creates a new QuantityService with the provided repository dependencies.
func NewQuantityService(
	holdingRepo *repository.HoldingRepository,
	tradeRepo *repository.TradeRepository,
	priceRepo *repository.PriceRepository,
) *QuantityService {
	return &QuantityService{
		holdingRepo: holdingRepo,
		tradeRepo:   tradeRepo,
		priceRepo:   priceRepo,
	}
}

// WithTx returns a new QuantityService whose repositories are scoped to
// the provided transaction, so a reconstruction can share the snapshot of
// a caller's write transaction.
func (s *QuantityService) WithTx(tx *sql.Tx) *QuantityService {
	return &QuantityService{
		holdingRepo: s.holdingRepo.WithTx(tx),
		tradeRepo:   s.tradeRepo.WithTx(tx),
		priceRepo:   s.priceRepo.WithTx(tx),
	}
}

// CurrentQuantities returns the per-asset quantity snapshot of a portfolio
// as of the given date, inclusive of same-day trades. The map is keyed by
// asset ID; assets the portfolio never touched are absent.
//
// Legs whose trade date has no recorded price, or a price of exactly zero,
// contribute no quantity change. That skip is deliberate defensive
// degradation against division by zero, not a validation error; admission
// of new trades rejects such legs up front (see TradeService).
//
// Pure function over repository reads: no side effects, identical output
// for an unchanged ledger.
func (s *QuantityService) CurrentQuantities(portfolioID string, asOf time.Time) (map[string]decimal.Decimal, error) {
	quantities := make(map[string]decimal.Decimal)

	holdings, err := s.holdingRepo.GetForPortfolio(portfolioID)
	if err != nil {
		return nil, err
	}
	for _, h := range holdings {
		quantities[h.AssetID] = quantities[h.AssetID].Add(h.Quantity)
	}

	legs, err := s.tradeRepo.GetTradesForPortfolio(portfolioID, asOf)
	if err != nil {
		return nil, err
	}

	for _, leg := range legs {
		delta, ok, err := s.legQuantityDelta(leg.AssetID, leg.Date, leg.AmountUSD, leg.Side)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		quantities[leg.AssetID] = quantities[leg.AssetID].Add(delta)
	}

	return quantities, nil
}

// legQuantityDelta converts a leg's USD amount into a signed quantity
// delta using the price on the leg's date. ok is false when the leg must
// be skipped because no usable price exists.
func (s *QuantityService) legQuantityDelta(assetID string, date time.Time, amountUSD decimal.Decimal, side string) (decimal.Decimal, bool, error) {
	price, err := s.priceRepo.GetPriceOnDate(assetID, date)
	if errors.Is(err, apperrors.ErrPriceNotFound) {
		return decimal.Decimal{}, false, nil
	}
	if err != nil {
		return decimal.Decimal{}, false, err
	}
	if price.IsZero() {
		return decimal.Decimal{}, false, nil
	}

	delta := amountUSD.Div(price)
	if side == model.SideSell {
		delta = delta.Neg()
	}

	return delta, true, nil
}
