package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mleiva/portfolio-tracker-backend/internal/apperrors"
	"github.com/mleiva/portfolio-tracker-backend/internal/database"
	"github.com/mleiva/portfolio-tracker-backend/internal/model"
	"github.com/mleiva/portfolio-tracker-backend/internal/service"
	"github.com/mleiva/portfolio-tracker-backend/internal/testutil"
)

// TestTradeService_Submit tests trade admission against reconstructed
// quantities.
//
// WHY: The ledger is append-only and immutable, so a bad leg can never be
// corrected after the fact. Admission is the only gate: it must reject
// overdrawn sells, resolve quantities from USD amounts correctly, and keep
// batches atomic.
func TestTradeService_Submit(t *testing.T) {
	t.Run("accepts a buy and persists one leg", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTradeService(t, db)
		quantities := testutil.NewTestQuantityService(t, db)

		start := testutil.MustDate(t, "2022-02-15")
		tradeDate := testutil.MustDate(t, "2022-03-01")
		portfolio := testutil.CreatePortfolio(t, db, "Test Portfolio", start, testutil.MustDecimal(t, "1000000"))
		asset := testutil.CreateAsset(t, db, "US")
		testutil.CreateHolding(t, db, portfolio.ID, asset.ID, testutil.MustDecimal(t, "10"))
		testutil.CreatePrice(t, db, asset.ID, tradeDate, testutil.MustDecimal(t, "100"))

		// Execute
		created, err := svc.Submit(context.Background(), portfolio.ID, tradeDate, []service.LegInput{
			{AssetCode: "US", Side: model.SideBuy, AmountUSD: testutil.MustDecimal(t, "500")},
		})

		// Assert
		if err != nil {
			t.Fatalf("Submit() returned unexpected error: %v", err)
		}
		if len(created) != 1 {
			t.Fatalf("Expected 1 created leg, got %d", len(created))
		}
		testutil.AssertRowCount(t, db, "trade_leg", 1)

		// 10 + 500/100 = 15
		snapshot, err := quantities.CurrentQuantities(portfolio.ID, tradeDate)
		if err != nil {
			t.Fatalf("CurrentQuantities() returned unexpected error: %v", err)
		}
		if got := snapshot[asset.ID]; !got.Equal(decimal.NewFromInt(15)) {
			t.Errorf("Expected quantity 15 after buy, got %s", got)
		}
	})

	t.Run("rejects a sell exceeding the available quantity", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTradeService(t, db)

		start := testutil.MustDate(t, "2022-02-15")
		tradeDate := testutil.MustDate(t, "2022-03-01")
		portfolio := testutil.CreatePortfolio(t, db, "Test Portfolio", start, testutil.MustDecimal(t, "1000000"))
		asset := testutil.CreateAsset(t, db, "US")
		testutil.CreateHolding(t, db, portfolio.ID, asset.ID, testutil.MustDecimal(t, "10"))
		testutil.CreatePrice(t, db, asset.ID, tradeDate, testutil.MustDecimal(t, "100"))

		// Execute: selling 2000 USD at price 100 needs quantity 20, only 10 held
		_, err := svc.Submit(context.Background(), portfolio.ID, tradeDate, []service.LegInput{
			{AssetCode: "US", Side: model.SideSell, AmountUSD: testutil.MustDecimal(t, "2000")},
		})

		// Assert
		if !errors.Is(err, apperrors.ErrInsufficientLiquidity) {
			t.Fatalf("Expected ErrInsufficientLiquidity, got %v", err)
		}
		testutil.AssertRowCount(t, db, "trade_leg", 0)
	})

	t.Run("allows a sell to consume a buy earlier in the same batch", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTradeService(t, db)

		start := testutil.MustDate(t, "2022-02-15")
		tradeDate := testutil.MustDate(t, "2022-03-01")
		portfolio := testutil.CreatePortfolio(t, db, "Test Portfolio", start, testutil.MustDecimal(t, "1000000"))
		held := testutil.CreateAsset(t, db, "US")
		traded := testutil.CreateAsset(t, db, "EU")
		testutil.CreateHolding(t, db, portfolio.ID, held.ID, testutil.MustDecimal(t, "10"))
		testutil.CreatePrice(t, db, held.ID, tradeDate, testutil.MustDecimal(t, "100"))
		testutil.CreatePrice(t, db, traded.ID, tradeDate, testutil.MustDecimal(t, "50"))

		// Execute: nothing of EU is held, the buy in the batch funds the sell
		created, err := svc.Submit(context.Background(), portfolio.ID, tradeDate, []service.LegInput{
			{AssetCode: "EU", Side: model.SideBuy, AmountUSD: testutil.MustDecimal(t, "1000")},
			{AssetCode: "EU", Side: model.SideSell, AmountUSD: testutil.MustDecimal(t, "600")},
		})

		// Assert
		if err != nil {
			t.Fatalf("Submit() returned unexpected error: %v", err)
		}
		if len(created) != 2 {
			t.Fatalf("Expected 2 created legs, got %d", len(created))
		}
		testutil.AssertRowCount(t, db, "trade_leg", 2)
	})

	t.Run("order within the batch matters", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTradeService(t, db)

		start := testutil.MustDate(t, "2022-02-15")
		tradeDate := testutil.MustDate(t, "2022-03-01")
		portfolio := testutil.CreatePortfolio(t, db, "Test Portfolio", start, testutil.MustDecimal(t, "1000000"))
		held := testutil.CreateAsset(t, db, "US")
		traded := testutil.CreateAsset(t, db, "EU")
		testutil.CreateHolding(t, db, portfolio.ID, held.ID, testutil.MustDecimal(t, "10"))
		testutil.CreatePrice(t, db, held.ID, tradeDate, testutil.MustDecimal(t, "100"))
		testutil.CreatePrice(t, db, traded.ID, tradeDate, testutil.MustDecimal(t, "50"))

		// Execute: same legs as the passing case, sell first
		_, err := svc.Submit(context.Background(), portfolio.ID, tradeDate, []service.LegInput{
			{AssetCode: "EU", Side: model.SideSell, AmountUSD: testutil.MustDecimal(t, "600")},
			{AssetCode: "EU", Side: model.SideBuy, AmountUSD: testutil.MustDecimal(t, "1000")},
		})

		// Assert
		if !errors.Is(err, apperrors.ErrInsufficientLiquidity) {
			t.Fatalf("Expected ErrInsufficientLiquidity, got %v", err)
		}
		testutil.AssertRowCount(t, db, "trade_leg", 0)
	})

	t.Run("a failing leg aborts the whole batch", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTradeService(t, db)

		start := testutil.MustDate(t, "2022-02-15")
		tradeDate := testutil.MustDate(t, "2022-03-01")
		portfolio := testutil.CreatePortfolio(t, db, "Test Portfolio", start, testutil.MustDecimal(t, "1000000"))
		asset := testutil.CreateAsset(t, db, "US")
		testutil.CreateHolding(t, db, portfolio.ID, asset.ID, testutil.MustDecimal(t, "10"))
		testutil.CreatePrice(t, db, asset.ID, tradeDate, testutil.MustDecimal(t, "100"))

		// Execute: valid buy followed by an overdrawn sell
		_, err := svc.Submit(context.Background(), portfolio.ID, tradeDate, []service.LegInput{
			{AssetCode: "US", Side: model.SideBuy, AmountUSD: testutil.MustDecimal(t, "500")},
			{AssetCode: "US", Side: model.SideSell, AmountUSD: testutil.MustDecimal(t, "5000")},
		})

		// Assert: the valid buy must not survive the failed batch
		if !errors.Is(err, apperrors.ErrInsufficientLiquidity) {
			t.Fatalf("Expected ErrInsufficientLiquidity, got %v", err)
		}
		testutil.AssertRowCount(t, db, "trade_leg", 0)
	})

	t.Run("rejects an unknown asset code", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTradeService(t, db)

		start := testutil.MustDate(t, "2022-02-15")
		tradeDate := testutil.MustDate(t, "2022-03-01")
		portfolio := testutil.CreatePortfolio(t, db, "Test Portfolio", start, testutil.MustDecimal(t, "1000000"))

		// Execute
		_, err := svc.Submit(context.Background(), portfolio.ID, tradeDate, []service.LegInput{
			{AssetCode: "NOPE", Side: model.SideBuy, AmountUSD: testutil.MustDecimal(t, "500")},
		})

		// Assert
		if !errors.Is(err, apperrors.ErrAssetNotFound) {
			t.Fatalf("Expected ErrAssetNotFound, got %v", err)
		}
		testutil.AssertRowCount(t, db, "trade_leg", 0)
	})

	t.Run("rejects a leg without a price on the trade date", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTradeService(t, db)

		start := testutil.MustDate(t, "2022-02-15")
		tradeDate := testutil.MustDate(t, "2022-03-01")
		portfolio := testutil.CreatePortfolio(t, db, "Test Portfolio", start, testutil.MustDecimal(t, "1000000"))
		testutil.CreateAsset(t, db, "US")

		// Execute: asset exists but has no price on the trade date
		_, err := svc.Submit(context.Background(), portfolio.ID, tradeDate, []service.LegInput{
			{AssetCode: "US", Side: model.SideBuy, AmountUSD: testutil.MustDecimal(t, "500")},
		})

		// Assert
		if !errors.Is(err, apperrors.ErrPriceNotFound) {
			t.Fatalf("Expected ErrPriceNotFound, got %v", err)
		}
		testutil.AssertRowCount(t, db, "trade_leg", 0)
	})

	t.Run("rejects a leg with a zero price on the trade date", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTradeService(t, db)

		start := testutil.MustDate(t, "2022-02-15")
		tradeDate := testutil.MustDate(t, "2022-03-01")
		portfolio := testutil.CreatePortfolio(t, db, "Test Portfolio", start, testutil.MustDecimal(t, "1000000"))
		asset := testutil.CreateAsset(t, db, "US")
		testutil.CreatePrice(t, db, asset.ID, tradeDate, decimal.Zero)

		// Execute
		_, err := svc.Submit(context.Background(), portfolio.ID, tradeDate, []service.LegInput{
			{AssetCode: "US", Side: model.SideBuy, AmountUSD: testutil.MustDecimal(t, "500")},
		})

		// Assert
		if !errors.Is(err, apperrors.ErrPriceNotFound) {
			t.Fatalf("Expected ErrPriceNotFound, got %v", err)
		}
		testutil.AssertRowCount(t, db, "trade_leg", 0)
	})

	t.Run("rejects an unknown portfolio", func(t *testing.T) {
		// Setup
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTradeService(t, db)

		// Execute
		_, err := svc.Submit(context.Background(), testutil.MakeID(), testutil.MustDate(t, "2022-03-01"), []service.LegInput{
			{AssetCode: "US", Side: model.SideBuy, AmountUSD: testutil.MustDecimal(t, "500")},
		})

		// Assert
		if !errors.Is(err, apperrors.ErrPortfolioNotFound) {
			t.Fatalf("Expected ErrPortfolioNotFound, got %v", err)
		}
	})
}

// TestTradeService_Submit_Concurrent tests that parallel submissions
// cannot jointly overdraw a position.
//
// WHY: Two batches that each pass the no-negative-quantity check against
// the same snapshot would both commit without serialization, leaving the
// reconstructed quantity negative. Validation and insert must share one
// write transaction so only the first full-position sell wins.
func TestTradeService_Submit_Concurrent(t *testing.T) {
	// Setup: a file-backed database so submissions run on a real
	// connection pool instead of a single pinned in-memory connection.
	db, err := database.Open(filepath.Join(t.TempDir(), "trades.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}

	svc := testutil.NewTestTradeService(t, db)
	quantities := testutil.NewTestQuantityService(t, db)

	start := testutil.MustDate(t, "2022-02-15")
	tradeDate := testutil.MustDate(t, "2022-03-01")
	portfolio := testutil.CreatePortfolio(t, db, "Test Portfolio", start, testutil.MustDecimal(t, "1000000"))
	asset := testutil.CreateAsset(t, db, "US")
	// 10 units at price 100: exactly one full-position sell of $1000 fits.
	testutil.CreateHolding(t, db, portfolio.ID, asset.ID, testutil.MustDecimal(t, "10"))
	testutil.CreatePrice(t, db, asset.ID, tradeDate, testutil.MustDecimal(t, "100"))

	sellAmount := testutil.MustDecimal(t, "1000")

	// Execute: racing full-position sells.
	const submitters = 8
	errs := make([]error, submitters)
	var wg sync.WaitGroup
	for i := 0; i < submitters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Submit(context.Background(), portfolio.ID, tradeDate, []service.LegInput{
				{AssetCode: "US", Side: model.SideSell, AmountUSD: sellAmount},
			})
		}(i)
	}
	wg.Wait()

	// Assert: exactly one sell committed, the rest were rejected.
	succeeded := 0
	for i, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		if !errors.Is(err, apperrors.ErrInsufficientLiquidity) {
			t.Errorf("Submission %d: expected ErrInsufficientLiquidity, got %v", i, err)
		}
	}
	if succeeded != 1 {
		t.Errorf("Expected exactly 1 successful submission, got %d", succeeded)
	}
	testutil.AssertRowCount(t, db, "trade_leg", 1)

	snapshot, err := quantities.CurrentQuantities(portfolio.ID, tradeDate)
	if err != nil {
		t.Fatalf("CurrentQuantities() returned unexpected error: %v", err)
	}
	if got := snapshot[asset.ID]; !got.IsZero() {
		t.Errorf("Expected quantity 0 after the winning sell, got %s", got)
	}
}
