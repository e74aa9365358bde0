package main

import (
	"project-memory-be/internal/config"
	"project-memory-be/pkg/database"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func migrateCMD() *cobra.Command {
	var dimension int

	var migrate = &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the memory tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			if dimension <= 0 {
				dimension = cfg.Ai.EmbeddingDim
			}
			if err := database.Migrate(db, dimension); err != nil {
				return err
			}
			color.Green("Migrated %d tables (vector dimension %d)", len(database.Models()), dimension)
			return nil
		},
	}
	migrate.Flags().IntVar(&dimension, "dimension", 0, "embedding dimension (default EMBEDDING_DIMENSION)")

	return migrate
}
