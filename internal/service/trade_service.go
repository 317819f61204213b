package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mleiva/portfolio-tracker-backend/internal/apperrors"
	"github.com/mleiva/portfolio-tracker-backend/internal/model"
	"github.com/mleiva/portfolio-tracker-backend/internal/repository"
)

// LegInput is one buy/sell instruction within a trade submission batch.
// It is caller input, not a persisted record: the amount is USD exposure,
// and the implied quantity change is resolved against the price on the
// submission date.
type LegInput struct {
	AssetCode string
	Side      string
	AmountUSD decimal.Decimal
}

// TradeService validates and commits batches of trade legs against
// reconstructed quantities. A batch is all-or-nothing: either every leg
// is appended to the ledger or none is.
type TradeService struct {
	db            *sql.DB
	portfolioRepo *repository.PortfolioRepository
	assetRepo     *repository.AssetRepository
	priceRepo     *repository.PriceRepository
	tradeRepo     *repository.TradeRepository
	quantities    *QuantityService
}

// NewTradeService creates a new TradeService with the provided dependencies.
func NewTradeService(
	db *sql.DB,
	portfolioRepo *repository.PortfolioRepository,
	assetRepo *repository.AssetRepository,
	priceRepo *repository.PriceRepository,
	tradeRepo *repository.TradeRepository,
	quantities *QuantityService,
) *TradeService {
	return &TradeService{
		db:            db,
		portfolioRepo: portfolioRepo,
		assetRepo:     assetRepo,
		priceRepo:     priceRepo,
		tradeRepo:     tradeRepo,
		quantities:    quantities,
	}
}

// Submit validates the legs in the order given and appends them to the
// ledger. Order matters: a SELL may legally deplete quantity that an
// earlier BUY in the same batch just added.
//
// Per leg, Submit fails with:
//   - apperrors.ErrAssetNotFound when the asset code is unknown
//   - apperrors.ErrPriceNotFound when the asset has no price (or a zero
//     price) on the submission date
//   - apperrors.ErrInsufficientLiquidity when a SELL would take the
//     asset's running quantity below zero; the message carries available
//     vs requested quantities
//
// Any failure aborts the whole batch before anything is persisted.
//
// Validation and insert share one write transaction. The connection opens
// transactions as BEGIN IMMEDIATE, so concurrent submissions against the
// same database serialize and the no-negative-quantity check cannot race
// with another batch committing between reconstruction and insert.
func (s *TradeService) Submit(ctx context.Context, portfolioID string, date time.Time, legs []LegInput) ([]model.TradeLeg, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	portfolioRepo := s.portfolioRepo.WithTx(tx)
	assetRepo := s.assetRepo.WithTx(tx)
	priceRepo := s.priceRepo.WithTx(tx)
	tradeRepo := s.tradeRepo.WithTx(tx)
	quantities := s.quantities.WithTx(tx)

	if _, err := portfolioRepo.GetPortfolio(portfolioID); err != nil {
		return nil, err
	}

	// Snapshot of quantities from persisted state only; the submitted
	// legs fold into the running map as they validate.
	running, err := quantities.CurrentQuantities(portfolioID, date)
	if err != nil {
		return nil, err
	}

	created := make([]model.TradeLeg, 0, len(legs))
	for _, leg := range legs {
		asset, err := assetRepo.GetByCode(leg.AssetCode)
		if err != nil {
			return nil, err
		}

		price, err := priceRepo.GetPriceOnDate(asset.ID, date)
		if err != nil {
			if errors.Is(err, apperrors.ErrPriceNotFound) {
				return nil, fmt.Errorf("%w: %s on %s", apperrors.ErrPriceNotFound, leg.AssetCode, date.Format(repository.DateLayout))
			}
			return nil, err
		}
		if price.IsZero() {
			return nil, fmt.Errorf("%w: %s on %s", apperrors.ErrPriceNotFound, leg.AssetCode, date.Format(repository.DateLayout))
		}

		deltaQty := leg.AmountUSD.Div(price)

		if leg.Side == model.SideSell {
			available := running[asset.ID]
			newQty := available.Sub(deltaQty)
			if newQty.IsNegative() {
				return nil, fmt.Errorf(
					"%w: %s available=%s requested=%s",
					apperrors.ErrInsufficientLiquidity,
					asset.Code, available.String(), deltaQty.String(),
				)
			}
			running[asset.ID] = newQty
		} else {
			running[asset.ID] = running[asset.ID].Add(deltaQty)
		}

		created = append(created, model.TradeLeg{
			ID:          uuid.New().String(),
			PortfolioID: portfolioID,
			AssetID:     asset.ID,
			Date:        date,
			Side:        leg.Side,
			AmountUSD:   leg.AmountUSD,
		})
	}

	if err := tradeRepo.InsertLegs(ctx, created); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return created, nil
}
