// Package ingestion loads daily-close CSV files into PostgreSQL so the postgres
// market data provider can serve prices without calling Yahoo.
package ingestion

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/guttosm/stockreturn/internal/domain/models"
	"github.com/guttosm/stockreturn/internal/logger"
	"github.com/guttosm/stockreturn/internal/storage"
)

const (
	fileExt          = ".csv"
	defaultBatchSize = 5000
	maxParallelFiles = 8
)

// repoCtor is an indirection for creating the repository; tests can override this.
var repoCtor = func(db *sql.DB) storage.ClosesRepository {
	return storage.NewClosesRepository(db)
}

// ProcessDirectory ingests every "<SYMBOL>.csv" file found in dir.
//
//   - dir: directory containing daily-close CSV files (Date,...,Close,... header).
//   - db:  open *sql.DB (PostgreSQL).
//
// Behavior:
//   - The ticker is the file name without extension, upper-cased.
//   - Uses a concurrency limit of parallel files (default min(8, NumCPU)).
//   - Files already recorded in ingestion_log are skipped unless force is set.
//   - Any other file replaces the stored closes of its symbol.
//   - If any file returns error, cancels the rest and returns that error.
//
// Returns:
//   - error: first error encountered (if any).
func ProcessDirectory(ctx context.Context, dir string, db *sql.DB, parallel int, force bool) error {
	log := logger.Component("ingestion")

	// use indirection to allow tests to swap repository constructor
	repo := repoCtor(db)

	files, err := inputFiles(dir)
	if err != nil {
		return err
	}

	maxParallel := maxParallelFiles
	if parallel > 0 {
		if parallel < maxParallel {
			maxParallel = parallel
		}
	} else if c := runtime.NumCPU(); c < maxParallel {
		maxParallel = c
	}

	log.Info().Int("files", len(files)).Str("dir", dir).Int("max_parallel", maxParallel).Bool("force", force).Msg("ingestion start")

	// errgroup will cancel siblings on first error.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)

	for idx, in := range files {
		idx, in := idx, in
		g.Go(func() error {
			start := time.Now()
			flog := log.With().Str("file", in.name).Str("symbol", in.symbol).Logger()

			// Idempotency: skip if already ingested, unless force
			exists, err := repo.HasIngestionForFile(gctx, in.name)
			if err != nil {
				flog.Error().Err(err).Msg("check ingestion log failed")
				return fmt.Errorf("file %s: check ingestion log: %w", in.path, err)
			}
			if exists && !force {
				flog.Info().Int("idx", idx+1).Int("total", len(files)).Bool("skipped", true).Msg("already ingested")
				return nil
			}

			// Replace whatever a previous or partial run stored for the symbol
			if err := repo.DeleteClosesBySymbol(gctx, in.symbol); err != nil {
				flog.Error().Err(err).Msg("delete existing failed")
				return fmt.Errorf("file %s: delete existing: %w", in.path, err)
			}

			total, err := parseAndPersistFile(gctx, in.path, in.symbol, repo, defaultBatchSize)
			if err != nil {
				flog.Error().Dur("elapsed", time.Since(start)).Err(err).Msg("file failed")
				return fmt.Errorf("file %s: %w", in.path, err)
			}
			if err := repo.UpsertIngestionLog(gctx, in.name, in.symbol, total); err != nil {
				flog.Error().Err(err).Msg("update ingestion log failed")
				return fmt.Errorf("file %s: upsert ingestion log: %w", in.path, err)
			}
			flog.Info().Int("idx", idx+1).Int("total", len(files)).Int("rows", total).Dur("elapsed", time.Since(start)).Msg("file done")
			return nil
		})
	}

	return g.Wait()
}

type inputFile struct {
	path   string
	name   string
	symbol string
}

// inputFiles lists the CSV files of dir sorted by name and derives their symbols.
// Two files resolving to the same symbol are rejected.
func inputFiles(dir string) ([]inputFile, error) {
	entries, err := filepath.Glob(filepath.Join(dir, "*"))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	sort.Strings(entries)

	var files []inputFile
	seen := make(map[string]string)
	for _, p := range entries {
		name := filepath.Base(p)
		if !strings.EqualFold(filepath.Ext(name), fileExt) {
			continue
		}
		symbol := models.NormalizeSymbol(strings.TrimSuffix(name, filepath.Ext(name)))
		if symbol == "" {
			return nil, fmt.Errorf("file %s: cannot derive a symbol from its name", p)
		}
		if other, ok := seen[symbol]; ok {
			return nil, fmt.Errorf("files %s and %s both map to symbol %s", other, name, symbol)
		}
		seen[symbol] = name
		files = append(files, inputFile{path: p, name: name, symbol: symbol})
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no %s files found in %s", fileExt, dir)
	}
	return files, nil
}
