// Command storectl runs storefront maintenance tasks against the configured database.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/catalogfeed"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "storectl",
		Short:         "Storefront maintenance tasks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newMigrateCmd(), newImportCatalogCmd(), newSampleFeedCmd())
	return root
}

func newSampleFeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sample-feed <path>",
		Short: "Write a small demo catalogue feed for local development",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			products := catalogfeed.SampleProducts()
			if err := catalogfeed.WriteFeedFile(args[0], products); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d products to %s\n", len(products), args[0])
			return nil
		},
	}
}

// env is the configuration, logger and pool shared by every subcommand.
type env struct {
	cfg    *config.Config
	logger zerolog.Logger
	pool   *pgxpool.Pool
}

func connect(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := config.NewLogger(cfg.Logger)

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return &env{cfg: cfg, logger: logger, pool: pool}, nil
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer e.pool.Close()

			return database.Migrate(cmd.Context(), e.pool, e.logger)
		},
	}
}

func newImportCatalogCmd() *cobra.Command {
	var (
		fromS3    bool
		batchSize int
	)

	cmd := &cobra.Command{
		Use:   "import-catalog <path>",
		Short: "Upsert products from a gzipped JSON-lines feed",
		Long: "Reads one product per line from a gzip-compressed feed and inserts or replaces\n" +
			"the products in batches. With --s3 the feed is read from the configured bucket\n" +
			"under S3_PREFIX, falling back to the local path when the object is unavailable.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := connect(ctx)
			if err != nil {
				return err
			}
			defer e.pool.Close()

			loader, err := feedLoader(ctx, e.cfg.S3, fromS3, e.logger)
			if err != nil {
				return err
			}

			importer := catalogfeed.NewImporter(loader, repository.NewProductRepository(e.pool, e.logger), batchSize, e.logger)
			n, err := importer.Import(ctx, args[0])
			if err != nil {
				return fmt.Errorf("import stopped after %d products: %w", n, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "imported %d products\n", n)
			return nil
		},
	}

	cmd.Flags().BoolVar(&fromS3, "s3", false, "read the feed from S3 before trying the local file")
	cmd.Flags().IntVar(&batchSize, "batch-size", catalogfeed.DefaultBatchSize, "products upserted per statement batch")
	return cmd
}

func feedLoader(ctx context.Context, cfg config.S3Config, fromS3 bool, logger zerolog.Logger) (catalogfeed.Loader, error) {
	fileLoader := catalogfeed.NewFileLoader(logger)
	if !fromS3 {
		return fileLoader, nil
	}
	if !cfg.Enabled {
		return nil, fmt.Errorf("--s3 requires S3_ENABLED=true")
	}

	s3Loader, err := catalogfeed.NewS3Loader(ctx, cfg.Bucket, cfg.Region, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to initialise S3 loader, falling back to local file system only")
		return fileLoader, nil
	}
	return catalogfeed.NewFallbackLoader(s3Loader, fileLoader, cfg.Prefix, true, logger), nil
}
