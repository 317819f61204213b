package service

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mleiva/portfolio-tracker-backend/internal/apperrors"
	"github.com/mleiva/portfolio-tracker-backend/internal/model"
	"github.com/mleiva/portfolio-tracker-backend/internal/repository"
)

// TimeseriesService reconstructs the day-by-day valuation and weight
// breakdown of a portfolio. Each computation starts from scratch off the
// initial holdings and the trade ledger; nothing derived is cached.
type TimeseriesService struct {
	portfolioRepo *repository.PortfolioRepository
	holdingRepo   *repository.HoldingRepository
	tradeRepo     *repository.TradeRepository
	priceRepo     *repository.PriceRepository
	assetRepo     *repository.AssetRepository
	quantities    *QuantityService
}

// NewTimeseriesService creates a new TimeseriesService with the provided dependencies.
func NewTimeseriesService(
	portfolioRepo *repository.PortfolioRepository,
	holdingRepo *repository.HoldingRepository,
	tradeRepo *repository.TradeRepository,
	priceRepo *repository.PriceRepository,
	assetRepo *repository.AssetRepository,
	quantities *QuantityService,
) *TimeseriesService {
	return &TimeseriesService{
		portfolioRepo: portfolioRepo,
		holdingRepo:   holdingRepo,
		tradeRepo:     tradeRepo,
		priceRepo:     priceRepo,
		assetRepo:     assetRepo,
		quantities:    quantities,
	}
}

// dateAssetKey identifies one asset on one date in the delta map.
type dateAssetKey struct {
	date    string
	assetID string
}

// Compute walks the priced dates in [start, end] and emits one row per
// date with the portfolio's total value and per-asset weight vector.
//
// Fails with apperrors.ErrPortfolioNotFound, ErrInvalidDateRange,
// ErrStartBeforeInception or ErrEmptyPortfolio before touching prices.
//
// The tracked universe is seeded from the initial holdings and extended
// by any asset a trade references, so a position opened purely by a BUY
// after inception still shows up in the series. Trades dated before the
// window fold into the quantity baseline once, before the date walk;
// trades inside the window apply on their own day. All arithmetic stays
// in decimals until the output row is assembled.
func (s *TimeseriesService) Compute(portfolioID string, start, end time.Time) (model.Timeseries, error) {
	portfolio, err := s.portfolioRepo.GetPortfolio(portfolioID)
	if err != nil {
		return model.Timeseries{}, err
	}

	if start.After(end) {
		return model.Timeseries{}, fmt.Errorf(
			"%w: start %s after end %s",
			apperrors.ErrInvalidDateRange,
			start.Format(repository.DateLayout), end.Format(repository.DateLayout),
		)
	}

	if start.Before(portfolio.StartDate) {
		return model.Timeseries{}, fmt.Errorf(
			"%w: start %s, inception %s",
			apperrors.ErrStartBeforeInception,
			start.Format(repository.DateLayout), portfolio.StartDate.Format(repository.DateLayout),
		)
	}

	holdings, err := s.holdingRepo.GetForPortfolio(portfolioID)
	if err != nil {
		return model.Timeseries{}, err
	}
	if len(holdings) == 0 {
		return model.Timeseries{}, fmt.Errorf("%w: %s", apperrors.ErrEmptyPortfolio, portfolioID)
	}

	// Universe and base quantities from the initial holdings.
	universe := make([]string, 0, len(holdings))
	inUniverse := make(map[string]bool, len(holdings))
	baseQty := make(map[string]decimal.Decimal, len(holdings))
	for _, h := range holdings {
		universe = append(universe, h.AssetID)
		inUniverse[h.AssetID] = true
		baseQty[h.AssetID] = h.Quantity
	}

	// All trades up to the window end: quantity state must reflect
	// everything that happened before the window too.
	legs, err := s.tradeRepo.GetTradesForPortfolio(portfolioID, end)
	if err != nil {
		return model.Timeseries{}, err
	}

	deltaQty := make(map[dateAssetKey]decimal.Decimal)
	for _, leg := range legs {
		if !inUniverse[leg.AssetID] {
			universe = append(universe, leg.AssetID)
			inUniverse[leg.AssetID] = true
		}

		delta, ok, err := s.quantities.legQuantityDelta(leg.AssetID, leg.Date, leg.AmountUSD, leg.Side)
		if err != nil {
			return model.Timeseries{}, err
		}
		if !ok {
			// Missing or zero price on the trade date: the leg
			// contributes no quantity change.
			continue
		}

		key := dateAssetKey{date: leg.Date.Format(repository.DateLayout), assetID: leg.AssetID}
		deltaQty[key] = deltaQty[key].Add(delta)
	}

	codeByAsset, err := s.assetCodes(universe)
	if err != nil {
		return model.Timeseries{}, err
	}

	// The iteration axis is the set of priced dates in range, not a
	// calendar: a date with no price row for any tracked asset is
	// absent from the output.
	prices, err := s.priceRepo.GetPricesInRange(universe, start, end)
	if err != nil {
		return model.Timeseries{}, err
	}

	pricesByDate := make(map[string]map[string]decimal.Decimal)
	dates := []string{}
	for _, p := range prices {
		dateStr := p.Date.Format(repository.DateLayout)
		if _, seen := pricesByDate[dateStr]; !seen {
			pricesByDate[dateStr] = make(map[string]decimal.Decimal)
			dates = append(dates, dateStr)
		}
		pricesByDate[dateStr][p.AssetID] = p.Price
	}
	// prices arrive ordered by date, so dates is already ascending.

	currentQty := make(map[string]decimal.Decimal, len(baseQty))
	for assetID, qty := range baseQty {
		currentQty[assetID] = qty
	}

	// Baseline adjustment: trades dated before the window start were
	// excluded from the date walk, so their deltas apply here once.
	startStr := start.Format(repository.DateLayout)
	for key, delta := range deltaQty {
		if key.date < startStr {
			currentQty[key.assetID] = currentQty[key.assetID].Add(delta)
		}
	}

	rows := make([]model.TimeseriesRow, 0, len(dates))
	for _, dateStr := range dates {
		for _, assetID := range universe {
			if delta, ok := deltaQty[dateAssetKey{date: dateStr, assetID: assetID}]; ok {
				currentQty[assetID] = currentQty[assetID].Add(delta)
			}
		}

		exposures := make(map[string]decimal.Decimal, len(universe))
		total := decimal.Zero
		for _, assetID := range universe {
			price, priced := pricesByDate[dateStr][assetID]
			if !priced {
				// No price for this asset today: zero contribution,
				// reported as weight 0.0 below.
				continue
			}
			exposure := price.Mul(currentQty[assetID])
			exposures[assetID] = exposure
			total = total.Add(exposure)
		}

		weights := make(map[string]float64, len(universe))
		if !total.IsZero() {
			for _, assetID := range universe {
				weights[codeByAsset[assetID]] = exposures[assetID].Div(total).InexactFloat64()
			}
		} else {
			// Defensive all-zero row rather than a division error.
			for _, assetID := range universe {
				weights[codeByAsset[assetID]] = 0.0
			}
		}

		rows = append(rows, model.TimeseriesRow{
			Date:    dateStr,
			V:       total.InexactFloat64(),
			Weights: weights,
		})
	}

	assetCodes := make([]string, len(universe))
	for i, assetID := range universe {
		assetCodes[i] = codeByAsset[assetID]
	}

	return model.Timeseries{
		PortfolioID: portfolioID,
		Start:       startStr,
		End:         end.Format(repository.DateLayout),
		Assets:      assetCodes,
		Rows:        rows,
	}, nil
}

// assetCodes resolves display codes for the tracked universe.
func (s *TimeseriesService) assetCodes(assetIDs []string) (map[string]string, error) {
	assets, err := s.assetRepo.GetByIDs(assetIDs)
	if err != nil {
		return nil, err
	}

	codes := make(map[string]string, len(assets))
	for id, a := range assets {
		codes[id] = a.Code
	}
	return codes, nil
}
