// Command seed-sources loads a catalog of legal sources into the database.
package main

import (
	"context"
	"fmt"
	"os"

	"lexdraft-backend/config"
	"lexdraft-backend/logger"
	"lexdraft-backend/repository"
	"lexdraft-backend/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

var (
	catalogPath string
	dryRun      bool
)

var rootCmd = &cobra.Command{
	Use:   "seed-sources",
	Short: "Register legal sources from a YAML catalog",
	Long: `seed-sources registers constitution articles, statutes and case law
in the source catalog. Entries already present (same type, reference and
excerpt) are left untouched, so the command can be re-run safely.

Without --file the built-in catalog is used.`,
	SilenceUsage: true,
	RunE:         runSeed,
}

func init() {
	rootCmd.Flags().StringVar(&catalogPath, "file", "", "path to a YAML catalog (default: built-in catalog)")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate the catalog without writing")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, _ := config.Load()
	log, err := logger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	data := defaultCatalog
	if catalogPath != "" {
		if data, err = os.ReadFile(catalogPath); err != nil {
			return fmt.Errorf("read catalog: %w", err)
		}
	}
	reqs, err := parseCatalog(data)
	if err != nil {
		return err
	}
	if dryRun {
		fmt.Fprintf(cmd.OutOrStdout(), "Catalog OK: %d sources\n", len(reqs))
		return nil
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	sources := service.NewSourceService(
		service.WithSourceRepository(repository.NewSourceRepository(pool)),
		service.WithSourceAudit(service.NewAuditService(
			service.AuditWithActivityRepository(repository.NewActivityLogRepository(pool)),
			service.AuditWithLogger(log),
		)),
		service.WithSourceLogger(log),
	)
	return seed(ctx, cmd, sources, reqs, log)
}

func seed(ctx context.Context, cmd *cobra.Command, sources *service.SourceService, reqs []service.CreateSourceRequest, log *logger.Logger) error {
	result, err := sources.BulkCreateSources(ctx, reqs)
	if err != nil {
		return fmt.Errorf("seed sources: %w", err)
	}
	log.Info("Sources seeded", "created", result.Created, "existing", result.Existing)
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %d\nAlready present: %d\n", result.Created, result.Existing)
	return nil
}
