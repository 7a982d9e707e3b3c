// Command seed loads the built-in demo catalog into PostgreSQL so the
// storefront can run with CATALOG_SOURCE=postgres.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/config"
	"github.com/utafrali/storefront/internal/repository/postgres"
	"github.com/utafrali/storefront/pkg/database"
	"github.com/utafrali/storefront/pkg/logger"
)

func main() {
	dsn := pflag.String("dsn", "", "PostgreSQL connection URL (defaults to DATABASE_URL / POSTGRES_* settings)")
	truncate := pflag.Bool("truncate", false, "delete existing products before seeding")
	timeout := pflag.Duration("timeout", 30*time.Second, "overall deadline")
	level := pflag.String("log-level", "info", "log level")
	pflag.Parse()

	log := logger.New("storefront-seed", *level)
	if err := run(*dsn, *truncate, *timeout, log); err != nil {
		log.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(dsn string, truncate bool, timeout time.Duration, log *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	pgCfg := database.DefaultPostgresConfig()
	if dsn != "" {
		pgCfg.URL = dsn
	} else {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		pgCfg = cfg.Postgres()
	}

	pool, err := database.NewPostgresPool(ctx, &pgCfg, log)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool, postgres.Migrations(), log); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	products, err := catalog.MockProducts()
	if err != nil {
		return err
	}

	repo := postgres.NewCatalogRepository(pool)
	if truncate {
		if err := repo.Truncate(ctx); err != nil {
			return err
		}
		log.Info("existing products deleted")
	}
	if err := repo.Upsert(ctx, products); err != nil {
		return err
	}

	log.Info("catalog seeded", slog.Int("products", len(products)))
	return nil
}
