// Command profile-ingest loads gateway tax profiles and currency exponents
// from gzipped JSON-lines dumps into the database. Both files are processed
// concurrently; each line is one JSON object.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/veloxpay/cartrecon/internal/domain/tax"
	"github.com/veloxpay/cartrecon/internal/storage/postgres"
)

const progressEvery = 1000

// profileJSON is one line of the profiles dump.
type profileJSON struct {
	Gateway    string            `json:"gateway"`
	LegalRates []decimal.Decimal `json:"legal_rates"`
	Tolerance  decimal.Decimal   `json:"tolerance"`
}

// currencyJSON is one line of the currencies dump. Exponent is optional;
// absent means the common two-decimal case.
type currencyJSON struct {
	Code     string `json:"code"`
	Exponent *int32 `json:"exponent"`
}

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing profiles.json.gz and currencies.json.gz")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, databaseURL); err != nil {
		slog.Error("profile ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("profile ingest completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	profilesFile := filepath.Join(dataDir, "profiles.json.gz")
	currenciesFile := filepath.Join(dataDir, "currencies.json.gz")

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return ingestProfiles(ctx, postgres.NewProfileRepository(pool), profilesFile)
	})
	g.Go(func() error {
		return ingestCurrencies(ctx, postgres.NewCurrencyRepository(pool), currenciesFile)
	})
	return g.Wait()
}

func ingestProfiles(ctx context.Context, repo *postgres.ProfileRepository, path string) error {
	slog.Info("ingesting gateway tax profiles", slog.String("path", path))

	var count int
	if err := streamGzLines(ctx, path, func(line []byte) error {
		var p profileJSON
		if err := json.Unmarshal(line, &p); err != nil {
			return errors.Wrap(err, "parse profile")
		}
		if p.Gateway == "" {
			return errors.New("profile is missing gateway code")
		}

		if err := repo.Upsert(ctx, tax.Profile{
			Gateway:    p.Gateway,
			LegalRates: p.LegalRates,
			Tolerance:  p.Tolerance,
		}); err != nil {
			return err
		}

		count++
		if count%progressEvery == 0 {
			slog.Info("profile progress", slog.Int("written", count))
		}
		return nil
	}); err != nil {
		return errors.Wrap(err, "ingest profiles")
	}

	slog.Info("profiles ingested", slog.Int("count", count))
	return nil
}

func ingestCurrencies(ctx context.Context, repo *postgres.CurrencyRepository, path string) error {
	slog.Info("ingesting currencies", slog.String("path", path))

	var count int
	if err := streamGzLines(ctx, path, func(line []byte) error {
		var c currencyJSON
		if err := json.Unmarshal(line, &c); err != nil {
			return errors.Wrap(err, "parse currency")
		}
		if c.Code == "" {
			return errors.New("currency is missing code")
		}

		exponent := int32(2)
		if c.Exponent != nil {
			exponent = *c.Exponent
		}

		if err := repo.Upsert(ctx, c.Code, exponent); err != nil {
			return err
		}

		count++
		if count%progressEvery == 0 {
			slog.Info("currency progress", slog.Int("written", count))
		}
		return nil
	}); err != nil {
		return errors.Wrap(err, "ingest currencies")
	}

	slog.Info("currencies ingested", slog.Int("count", count))
	return nil
}

// streamGzLines opens a gzip-compressed file and calls fn for each non-empty line.
func streamGzLines(ctx context.Context, path string, fn func(line []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := fn(line); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}

	return nil
}
