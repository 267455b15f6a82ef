package marketdata

import (
	"context"

	"github.com/guttosm/stockreturn/internal/domain/models"
	"github.com/guttosm/stockreturn/internal/storage"
)

const postgresName = "postgres"

// PostgresProvider serves daily closes loaded by the ingest mode.
type PostgresProvider struct {
	repo storage.ClosesRepository
}

// NewPostgresProvider wraps a closes repository as a Provider.
func NewPostgresProvider(repo storage.ClosesRepository) *PostgresProvider {
	return &PostgresProvider{repo: repo}
}

func (p *PostgresProvider) Name() string { return postgresName }

// FetchDailyCloses reads the stored rows of the window. An empty window is
// reported as NoDataError, mirroring the Yahoo provider's empty result.
func (p *PostgresProvider) FetchDailyCloses(ctx context.Context, q models.PriceQuery) ([]models.Quote, error) {
	rows, err := p.repo.GetDailyCloses(ctx, q.Symbol, q.Start, q.End)
	if err != nil {
		return nil, unavailable(postgresName, q.Symbol, err)
	}
	if len(rows) == 0 {
		return nil, &models.NoDataError{Symbol: q.Symbol, Reason: "no stored closes in range"}
	}
	return rows, nil
}
