package main

import (
	"context"
	"fmt"

	"foodmart/internal/awsclient"
	"foodmart/internal/config"
	"foodmart/internal/coupon"
	"foodmart/internal/database"
	"foodmart/internal/repository"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func importCouponsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import-coupons [file...]",
		Short: "load gzipped JSON-lines coupon files into the database",
		Long: "Each file is looked up in the configured S3 bucket under S3_PREFIX when S3 is enabled, " +
			"falling back to the local path. A code repeated across files takes the definition from the last file.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			logger := config.NewLogger(cfg.Logger)

			return importCoupons(cmd.Context(), cfg, args, logger)
		},
	}
}

func importCoupons(ctx context.Context, cfg *config.Config, files []string, logger zerolog.Logger) error {
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	importer := coupon.NewImporter(newCouponLoader(ctx, cfg.AWS, logger), repository.NewCouponRepository(pool, logger), logger)
	n, err := importer.Import(ctx, files)
	if err != nil {
		return err
	}

	logger.Info().Int("coupons", n).Int("files", len(files)).Msg("coupon import finished")
	return nil
}

// newCouponLoader reads from S3 first when it is enabled, and from the local
// file system otherwise or on S3 failure.
func newCouponLoader(ctx context.Context, cfg config.AWSConfig, logger zerolog.Logger) coupon.Loader {
	fileLoader := coupon.NewFileLoader(logger)
	if !cfg.S3Enabled {
		logger.Info().Msg("using local file system for coupon files (S3 disabled)")
		return fileLoader
	}

	awsCfg, err := awsclient.LoadConfig(ctx, cfg.Region, cfg.Endpoint)
	if err != nil {
		logger.Warn().
			Err(err).
			Msg("failed to load AWS config, falling back to local file system only")
		return fileLoader
	}

	s3Loader := coupon.NewS3Loader(awsclient.NewS3(awsCfg), cfg.S3Bucket, logger)
	return coupon.NewFallbackLoader(s3Loader, fileLoader, cfg.S3Prefix, logger)
}
