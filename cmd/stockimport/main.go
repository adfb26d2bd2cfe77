// Command stockimport applies gzipped stock count sheets (one "item_id,quantity"
// pair per line) to the inventory as a single bulk correction.
//
// Sheets are looked up in S3 under S3_PREFIX when S3 is enabled and read from
// the local file system otherwise, or when the S3 lookup fails.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"foodhub/internal/config"
	"foodhub/internal/database"
	"foodhub/internal/events"
	"foodhub/internal/model"
	"foodhub/internal/repository"
	"foodhub/internal/service"
	"foodhub/internal/stocksheet"

	"github.com/joho/godotenv"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var sheets []string
	fs := flag.NewFlagSet("stockimport", flag.ContinueOnError)
	fs.Func("sheet", "stock sheet to apply; repeat or comma separate for several", func(v string) error {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				sheets = append(sheets, p)
			}
		}
		return nil
	})
	dryRun := fs.Bool("dry-run", false, "parse the sheets and report without changing stock")
	timeout := fs.Duration("timeout", 2*time.Minute, "overall import deadline")
	if err := fs.Parse(args); err != nil {
		return err
	}
	sheets = append(sheets, fs.Args()...)
	if len(sheets) == 0 {
		return fmt.Errorf("at least one -sheet is required")
	}

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger, "foodhub-stockimport")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	var s3Loader stocksheet.Loader
	if cfg.S3.Enabled {
		s3Loader, err = stocksheet.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to initialise S3 loader, using local file system only")
			s3Loader = nil
		}
	} else {
		logger.Info().Msg("using local file system for stock sheets (S3 disabled)")
	}
	loader := stocksheet.NewFallbackLoader(s3Loader, stocksheet.NewFileLoader(logger), cfg.S3.Prefix, logger)

	loaded, err := stocksheet.LoadAll(ctx, loader, sheets)
	if err != nil {
		return err
	}
	updates := stocksheet.Updates(loaded)
	if len(updates) == 0 {
		logger.Info().Strs("sheets", sheets).Msg("stock sheets are empty, nothing to apply")
		return nil
	}

	if *dryRun {
		logger.Info().
			Strs("sheets", sheets).
			Int("updates", len(updates)).
			Msg("dry run, stock left unchanged")
		return nil
	}

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	publisher, err := events.New(ctx, cfg.Events, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize event publisher: %w", err)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close event publisher")
		}
	}()

	inventory := service.NewInventoryService(
		repository.NewOrderRepository(pool, logger),
		repository.NewStockLedger(pool, logger),
		publisher,
		service.Options{TxTimeout: *timeout, Producer: cfg.Events.Producer},
		logger,
	)

	resp, err := inventory.BulkUpdate(ctx, &model.BulkUpdateRequest{Updates: updates})
	if err != nil {
		return fmt.Errorf("failed to apply stock sheets: %w", err)
	}

	changed := 0
	for _, c := range resp.Changes {
		if c.Previous != c.Current {
			changed++
		}
	}
	logger.Info().
		Strs("sheets", sheets).
		Int("items", len(resp.Changes)).
		Int("changed", changed).
		Msg("stock sheets applied")

	return nil
}
