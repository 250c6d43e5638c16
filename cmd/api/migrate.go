package main

import (
	"fmt"
	"strconv"

	"foodmart/internal/config"
	"foodmart/internal/database"

	"github.com/spf13/cobra"
)

func migrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "apply or roll back database migrations",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "migrate all the way up",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := config.Load()
				if err != nil {
					return fmt.Errorf("failed to load configuration: %w", err)
				}
				logger := config.NewLogger(cfg.Logger)

				return database.MigrateUp(cfg.Database.ConnectionString(), logger)
			},
		},
		&cobra.Command{
			Use:   "down [steps]",
			Short: "roll back the given number of migrations (default 1)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				steps := 1
				if len(args) == 1 {
					n, err := strconv.Atoi(args[0])
					if err != nil || n < 1 {
						return fmt.Errorf("steps must be a positive integer, got %q", args[0])
					}
					steps = n
				}

				cfg, err := config.Load()
				if err != nil {
					return fmt.Errorf("failed to load configuration: %w", err)
				}
				logger := config.NewLogger(cfg.Logger)

				return database.MigrateDown(cfg.Database.ConnectionString(), steps, logger)
			},
		},
	)

	return cmd
}
