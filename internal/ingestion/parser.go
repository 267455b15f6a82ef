package ingestion

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/guttosm/stockreturn/internal/domain/models"
	"github.com/guttosm/stockreturn/internal/storage"
)

// Required columns of a daily-close export such as Yahoo's
// "Date,Open,High,Low,Close,Adj Close,Volume". Other columns are ignored.
const (
	dateColumn  = "date"
	closeColumn = "close"
)

// columns holds the positions of the required columns in a header.
type columns struct {
	date  int
	close int
}

func (c columns) width() int {
	if c.date > c.close {
		return c.date + 1
	}
	return c.close + 1
}

// parseHeader locates the Date and Close columns by name, ignoring case and spaces.
func parseHeader(header []string) (columns, error) {
	cols := columns{date: -1, close: -1}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))) {
		case dateColumn:
			cols.date = i
		case closeColumn:
			cols.close = i
		}
	}
	if cols.date < 0 || cols.close < 0 {
		return cols, fmt.Errorf("invalid header %q: Date and Close columns are required", strings.Join(header, ","))
	}
	return cols, nil
}

// parseAndPersistFile opens, validates, parses, and persists one file in batches.
// It fails on:
//   - header without Date or Close columns
//   - rows too short to hold them, bad dates or bad prices
//   - unrecoverable I/O errors
//
// It tolerates:
//   - "null" or empty closes (stored as NULL, like Yahoo's non-trading rows)
//
// Parameters:
//   - ctx:    context for cancellation/timeouts.
//   - path:   file path.
//   - symbol: ticker every row belongs to.
//   - repo:   repository for DB insertion.
//   - batch:  batch size for inserts (e.g., 5000).
func parseAndPersistFile(ctx context.Context, path, symbol string, repo storage.ClosesRepository, batch int) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // checked against the header below
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}
	cols, err := parseHeader(header)
	if err != nil {
		return 0, err
	}

	// Parse rows streaming; flush batches to DB.
	buf := make([]models.DailyClose, 0, batch)
	lineNumber := 1 // header already read

	flush := func() error {
		if len(buf) == 0 {
			return nil
		}
		if err := repo.InsertClosesBatch(ctx, buf); err != nil {
			return err
		}
		buf = buf[:0]
		return nil
	}

	total := 0
	for {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		default:
		}

		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return 0, fmt.Errorf("read line after %d: %w", lineNumber, err)
		}
		lineNumber++

		if len(rec) < cols.width() {
			return 0, fmt.Errorf("invalid column count on line %d: need at least %d got %d", lineNumber, cols.width(), len(rec))
		}

		dc, err := recordToClose(symbol, rec, cols)
		if err != nil {
			return 0, fmt.Errorf("line %d: %w", lineNumber, err)
		}

		buf = append(buf, dc)
		total++
		if len(buf) >= batch {
			if err := flush(); err != nil {
				return 0, fmt.Errorf("flush batch ending line %d: %w", lineNumber, err)
			}
		}
	}

	// Final flush
	if err := flush(); err != nil {
		return 0, fmt.Errorf("final flush: %w", err)
	}

	return total, nil
}

// recordToClose converts one CSV record into a models.DailyClose.
// The date is strict (YYYY-MM-DD); the close may be "null" or empty.
func recordToClose(symbol string, rec []string, cols columns) (models.DailyClose, error) {
	dc := models.DailyClose{Symbol: symbol}

	d, err := time.Parse(models.DateLayout, strings.TrimSpace(rec[cols.date]))
	if err != nil {
		return dc, fmt.Errorf("invalid Date: %w", err)
	}
	dc.TradeDate = d

	s := strings.TrimSpace(rec[cols.close])
	if s == "" || strings.EqualFold(s, "null") {
		return dc, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return dc, fmt.Errorf("invalid Close: %w", err)
	}
	if v < 0 {
		return dc, fmt.Errorf("invalid Close: negative price %v", v)
	}
	dc.Close = &v
	return dc, nil
}
