package service

import (
	"context"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/mleiva/portfolio-tracker-backend/internal/model"
	"github.com/mleiva/portfolio-tracker-backend/internal/repository"
)

// Bulk-load defaults matching the reference dataset.
var (
	DefaultStartDate    = time.Date(2022, 2, 15, 0, 0, 0, 0, time.UTC)
	DefaultInitialValue = decimal.NewFromInt(1_000_000_000)
)

// ETLService loads prices and inception target weights from CSV files and
// materializes the base domain state: assets, portfolios, prices and
// initial holdings. Imports are idempotent by content hash; re-running
// the same files is a no-op unless forced.
type ETLService struct {
	assetRepo     *repository.AssetRepository
	portfolioRepo *repository.PortfolioRepository
	holdingRepo   *repository.HoldingRepository
	priceRepo     *repository.PriceRepository
	importRepo    *repository.ImportRepository
	log           zerolog.Logger
}

// NewETLService creates a new ETLService with the provided dependencies.
func NewETLService(
	assetRepo *repository.AssetRepository,
	portfolioRepo *repository.PortfolioRepository,
	holdingRepo *repository.HoldingRepository,
	priceRepo *repository.PriceRepository,
	importRepo *repository.ImportRepository,
	log zerolog.Logger,
) *ETLService {
	return &ETLService{
		assetRepo:     assetRepo,
		portfolioRepo: portfolioRepo,
		holdingRepo:   holdingRepo,
		priceRepo:     priceRepo,
		importRepo:    importRepo,
		log:           log,
	}
}

// ImportOptions configures one ETL run.
type ImportOptions struct {
	PricesPath   string
	WeightsPath  string
	StartDate    time.Time       // portfolio inception; zero value means DefaultStartDate
	InitialValue decimal.Decimal // V0; zero value means DefaultInitialValue
	Force        bool            // re-import even if the content hash is known
}

type priceRow struct {
	code  string
	date  time.Time
	price decimal.Decimal
}

// Import runs the full ETL flow:
//  1. idempotency check by content hash over both input files
//  2. read and normalize the CSVs
//  3. persist assets, portfolios, prices, then derive initial holdings
//     (quantity = weight * V0 / price at inception)
//
// On failure a FAILED audit row is recorded best-effort so the import
// status endpoint reflects what happened.
func (s *ETLService) Import(ctx context.Context, opts ImportOptions) (model.DataImport, error) {
	if opts.StartDate.IsZero() {
		opts.StartDate = DefaultStartDate
	}
	if opts.InitialValue.IsZero() {
		opts.InitialValue = DefaultInitialValue
	}

	fileHash, err := hashFiles(opts.PricesPath, opts.WeightsPath)
	if err != nil {
		return model.DataImport{}, err
	}

	if !opts.Force {
		existing, found, err := s.importRepo.GetByHash(fileHash)
		if err != nil {
			return model.DataImport{}, err
		}
		if found {
			s.log.Info().Str("hash", fileHash).Msg("Input already imported, skipping")
			return existing, nil
		}
	}

	sourceName := fmt.Sprintf("%s+%s", filepath.Base(opts.PricesPath), filepath.Base(opts.WeightsPath))

	imp, err := s.runImport(ctx, opts, fileHash, sourceName)
	if err != nil {
		audit := model.DataImport{
			ID:         uuid.New().String(),
			SourceName: sourceName,
			FileHash:   fileHash,
			ImportedAt: time.Now().UTC().Truncate(time.Second),
			Status:     model.ImportStatusFailed,
			Notes:      err.Error(),
		}
		if auditErr := s.importRepo.Insert(ctx, audit); auditErr != nil {
			s.log.Error().Err(auditErr).Msg("Failed to record import failure")
		}
		return model.DataImport{}, err
	}

	return imp, nil
}

func (s *ETLService) runImport(ctx context.Context, opts ImportOptions, fileHash, sourceName string) (model.DataImport, error) {
	weights, err := readWeights(opts.WeightsPath, opts.StartDate)
	if err != nil {
		return model.DataImport{}, err
	}

	priceRows, err := readPrices(opts.PricesPath)
	if err != nil {
		return model.DataImport{}, err
	}

	codeSet := make(map[string]bool)
	for _, portfolioWeights := range weights {
		for code := range portfolioWeights {
			codeSet[code] = true
		}
	}
	for _, pr := range priceRows {
		codeSet[pr.code] = true
	}
	codes := make([]string, 0, len(codeSet))
	for code := range codeSet {
		codes = append(codes, code)
	}

	assets, err := s.assetRepo.EnsureAssets(ctx, codes)
	if err != nil {
		return model.DataImport{}, err
	}

	prices := make([]model.Price, 0, len(priceRows))
	for _, pr := range priceRows {
		asset, ok := assets[pr.code]
		if !ok {
			continue
		}
		prices = append(prices, model.Price{
			ID:      uuid.New().String(),
			AssetID: asset.ID,
			Date:    pr.date,
			Price:   pr.price,
		})
	}

	inserted, err := s.priceRepo.BulkInsertPrices(ctx, prices)
	if err != nil {
		return model.DataImport{}, err
	}

	pricesT0, err := s.priceRepo.GetPricesOnDate(opts.StartDate)
	if err != nil {
		return model.DataImport{}, err
	}

	for name, portfolioWeights := range weights {
		portfolio, err := s.portfolioRepo.GetOrCreateByName(ctx, name, opts.StartDate, opts.InitialValue)
		if err != nil {
			return model.DataImport{}, err
		}

		if opts.Force {
			if err := s.holdingRepo.DeleteForPortfolio(ctx, portfolio.ID); err != nil {
				return model.DataImport{}, err
			}
		}

		holdings := make([]model.InitialHolding, 0, len(portfolioWeights))
		for code, weight := range portfolioWeights {
			asset, ok := assets[code]
			if !ok {
				continue
			}
			px0, ok := pricesT0[asset.ID]
			if !ok || px0.IsZero() {
				// No usable inception price: the asset cannot seed a holding.
				continue
			}
			holdings = append(holdings, model.InitialHolding{
				ID:          uuid.New().String(),
				PortfolioID: portfolio.ID,
				AssetID:     asset.ID,
				Quantity:    weight.Mul(opts.InitialValue).Div(px0),
			})
		}

		if err := s.holdingRepo.InsertHoldings(ctx, holdings); err != nil {
			return model.DataImport{}, err
		}
	}

	imp := model.DataImport{
		ID:           uuid.New().String(),
		SourceName:   sourceName,
		FileHash:     fileHash,
		ImportedAt:   time.Now().UTC().Truncate(time.Second),
		Status:       model.ImportStatusSuccess,
		RowsInserted: inserted,
		RowsUpdated:  0,
	}
	if err := s.importRepo.Insert(ctx, imp); err != nil {
		return model.DataImport{}, err
	}

	s.log.Info().
		Str("source", sourceName).
		Int("prices_inserted", inserted).
		Msg("Import completed")

	return imp, nil
}

// LatestStatus returns the most recent import audit record together with
// live row counts of the domain tables.
func (s *ETLService) LatestStatus() (model.ImportStatus, error) {
	latest, err := s.importRepo.GetLatest()
	if err != nil {
		return model.ImportStatus{}, err
	}

	assets, err := s.assetRepo.Count()
	if err != nil {
		return model.ImportStatus{}, err
	}
	prices, err := s.priceRepo.Count()
	if err != nil {
		return model.ImportStatus{}, err
	}
	holdings, err := s.holdingRepo.Count()
	if err != nil {
		return model.ImportStatus{}, err
	}
	portfolios, err := s.portfolioRepo.Count()
	if err != nil {
		return model.ImportStatus{}, err
	}

	return model.ImportStatus{
		SourceName:   latest.SourceName,
		FileHash:     latest.FileHash,
		Status:       latest.Status,
		ImportedAt:   latest.ImportedAt,
		RowsInserted: latest.RowsInserted,
		RowsUpdated:  latest.RowsUpdated,
		Notes:        latest.Notes,
		Assets:       assets,
		Prices:       prices,
		Holdings:     holdings,
		Portfolios:   portfolios,
	}, nil
}

// hashFiles computes a single sha256 over the given files in order.
func hashFiles(paths ...string) (string, error) {
	h := sha256.New()
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return "", fmt.Errorf("failed to open %s: %w", path, err)
		}
		_, err = io.Copy(h, f)
		f.Close()
		if err != nil {
			return "", fmt.Errorf("failed to hash %s: %w", path, err)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// readWeights reads the inception weights CSV. Expected layout:
//
//	date,asset,Portfolio 1,Portfolio 2,...
//
// Portfolio names come from the header; only rows matching the inception
// date are used. Fails when no weights exist for that date.
func readWeights(path string, startDate time.Time) (map[string]map[string]decimal.Decimal, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open weights file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read weights file: %w", err)
	}
	if len(records) < 2 || len(records[0]) < 3 {
		return nil, fmt.Errorf("weights file %s: expected header date,asset,<portfolio>...", path)
	}

	portfolioNames := make([]string, 0, len(records[0])-2)
	for _, name := range records[0][2:] {
		portfolioNames = append(portfolioNames, strings.TrimSpace(name))
	}

	weights := make(map[string]map[string]decimal.Decimal, len(portfolioNames))
	for _, name := range portfolioNames {
		weights[name] = make(map[string]decimal.Decimal)
	}

	startStr := startDate.Format(repository.DateLayout)
	for _, record := range records[1:] {
		if len(record) < 2+len(portfolioNames) {
			continue
		}
		if strings.TrimSpace(record[0]) != startStr {
			continue
		}
		code := strings.TrimSpace(record[1])
		if code == "" {
			continue
		}
		for i, name := range portfolioNames {
			w, err := parseDecimalCell(record[2+i])
			if err != nil {
				return nil, fmt.Errorf("weights file %s: asset %s: %w", path, code, err)
			}
			weights[name][code] = w
		}
	}

	for name, portfolioWeights := range weights {
		if len(portfolioWeights) == 0 {
			return nil, fmt.Errorf("no weights found for %s at start date %s", name, startStr)
		}
	}

	return weights, nil
}

// readPrices reads the wide-format price history CSV. Expected layout:
//
//	date,CODE1,CODE2,...
//
// Empty cells mean no price for that asset on that date.
func readPrices(path string) ([]priceRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open prices file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read prices file: %w", err)
	}
	if len(records) < 2 || len(records[0]) < 2 {
		return nil, fmt.Errorf("prices file %s: expected header date,<asset>...", path)
	}

	codes := make([]string, 0, len(records[0])-1)
	for _, code := range records[0][1:] {
		codes = append(codes, strings.TrimSpace(code))
	}

	rows := []priceRow{}
	for _, record := range records[1:] {
		if len(record) == 0 || strings.TrimSpace(record[0]) == "" {
			continue
		}
		date, err := repository.ParseTime(strings.TrimSpace(record[0]))
		if err != nil {
			return nil, fmt.Errorf("prices file %s: %w", path, err)
		}
		for i, code := range codes {
			if code == "" || i+1 >= len(record) {
				continue
			}
			cell := strings.TrimSpace(record[i+1])
			if cell == "" {
				continue
			}
			price, err := parseDecimalCell(cell)
			if err != nil {
				return nil, fmt.Errorf("prices file %s: asset %s: %w", path, code, err)
			}
			rows = append(rows, priceRow{code: code, date: date, price: price})
		}
	}

	return rows, nil
}

// parseDecimalCell normalizes a spreadsheet-ish cell into a decimal.
// Blank and placeholder cells read as zero; "1,5" reads as 1.5; a
// trailing percent sign divides by 100.
func parseDecimalCell(value string) (decimal.Decimal, error) {
	s := strings.TrimSpace(value)
	switch s {
	case "", "-", "—", "–", "N/A", "na", "null":
		return decimal.Zero, nil
	}

	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ",", ".")

	percent := false
	if strings.HasSuffix(s, "%") {
		percent = true
		s = strings.TrimSuffix(s, "%")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid decimal value %q: %w", value, err)
	}
	if percent {
		d = d.Div(decimal.NewFromInt(100))
	}

	return d, nil
}
