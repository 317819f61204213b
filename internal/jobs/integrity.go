// Package jobs holds scheduled background work. Jobs are registered with
// the cron scheduler in cmd/server.
package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/mleiva/portfolio-tracker-backend/internal/repository"
	"github.com/mleiva/portfolio-tracker-backend/internal/service"
)

// LedgerIntegrityJob audits the trade ledger out-of-band: it reconstructs
// every portfolio's current quantities and logs any asset whose quantity
// has gone negative. Trade admission guards this invariant transactionally,
// so a hit here means ledger rows were tampered with or imported badly.
type LedgerIntegrityJob struct {
	portfolioRepo *repository.PortfolioRepository
	quantities    *service.QuantityService
	log           zerolog.Logger
}

// NewLedgerIntegrityJob creates a new LedgerIntegrityJob with the provided dependencies.
func NewLedgerIntegrityJob(
	portfolioRepo *repository.PortfolioRepository,
	quantities *service.QuantityService,
	log zerolog.Logger,
) *LedgerIntegrityJob {
	return &LedgerIntegrityJob{
		portfolioRepo: portfolioRepo,
		quantities:    quantities,
		log:           log,
	}
}

// Run checks all portfolios, a few at a time. The first repository error
// cancels the remaining checks.
func (j *LedgerIntegrityJob) Run(ctx context.Context) error {
	portfolios, err := j.portfolioRepo.GetPortfolios()
	if err != nil {
		return err
	}

	asOf := time.Now().UTC()

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for _, p := range portfolios {
		p := p
		g.Go(func() error {
			quantities, err := j.quantities.CurrentQuantities(p.ID, asOf)
			if err != nil {
				return err
			}

			for assetID, qty := range quantities {
				if qty.IsNegative() {
					j.log.Warn().
						Str("portfolio", p.Name).
						Str("asset_id", assetID).
						Str("quantity", qty.String()).
						Msg("Negative reconstructed quantity in ledger")
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		j.log.Error().Err(err).Msg("Ledger integrity check failed")
		return err
	}

	j.log.Info().Int("portfolios", len(portfolios)).Msg("Ledger integrity check completed")
	return nil
}
