package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/guttosm/stockreturn/internal/domain/models"
	pq "github.com/lib/pq"
)

// ClosesRepository defines contract for DB operations on daily closing prices.
type ClosesRepository interface {
	InsertClosesBatch(ctx context.Context, closes []models.DailyClose) error
	GetDailyCloses(ctx context.Context, symbol string, start, end time.Time) ([]models.Quote, error)
	HasIngestionForFile(ctx context.Context, filename string) (bool, error)
	UpsertIngestionLog(ctx context.Context, filename, symbol string, rowCount int) error
	DeleteClosesBySymbol(ctx context.Context, symbol string) error
}

type closesRepository struct {
	db *sql.DB
}

func NewClosesRepository(db *sql.DB) ClosesRepository {
	return &closesRepository{db: db}
}

// InsertClosesBatch inserts multiple closes into DB in a single transaction using COPY.
func (r *closesRepository) InsertClosesBatch(ctx context.Context, closes []models.DailyClose) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	// Small optimization for bulk load
	if _, err := tx.ExecContext(ctx, `SET LOCAL synchronous_commit = OFF`); err != nil {
		_ = tx.Rollback()
		return err
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("daily_closes", "symbol", "trade_date", "close"))
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	for _, rec := range closes {
		var closeVal interface{}
		if rec.Close != nil {
			closeVal = *rec.Close
		}
		if _, err := stmt.ExecContext(ctx, rec.Symbol, toDate(rec.TradeDate), closeVal); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return err
		}
	}

	if _, err := stmt.ExecContext(ctx); err != nil {
		_ = stmt.Close()
		_ = tx.Rollback()
		return err
	}
	if err := stmt.Close(); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// GetDailyCloses returns the rows of symbol whose trade_date falls within the
// calendar days of [start, end], ordered by date. Null closes are returned as nil.
func (r *closesRepository) GetDailyCloses(ctx context.Context, symbol string, start, end time.Time) ([]models.Quote, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT trade_date, close
		FROM daily_closes
		WHERE symbol = $1 AND trade_date >= $2 AND trade_date <= $3
		ORDER BY trade_date
	`, symbol, toDate(start), toDate(end))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.Quote
	for rows.Next() {
		var (
			day   time.Time
			price sql.NullFloat64
		)
		if err := rows.Scan(&day, &price); err != nil {
			return nil, err
		}
		q := models.Quote{Time: day.UTC()}
		if price.Valid {
			v := price.Float64
			q.Close = &v
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// HasIngestionForFile checks if a source file was already loaded.
func (r *closesRepository) HasIngestionForFile(ctx context.Context, filename string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM ingestion_log WHERE filename = $1)`, filename).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// UpsertIngestionLog records (or updates) an ingestion entry for a source file.
func (r *closesRepository) UpsertIngestionLog(ctx context.Context, filename, symbol string, rowCount int) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ingestion_log (filename, symbol, row_count)
		VALUES ($1, $2, $3)
		ON CONFLICT (filename)
		DO UPDATE SET symbol = EXCLUDED.symbol,
					  row_count = EXCLUDED.row_count,
					  ingested_at = NOW()
	`, filename, symbol, rowCount)
	return err
}

// DeleteClosesBySymbol removes every stored close of a symbol.
func (r *closesRepository) DeleteClosesBySymbol(ctx context.Context, symbol string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM daily_closes WHERE symbol = $1`, symbol)
	return err
}

// toDate keeps only the UTC calendar day of t.
func toDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
