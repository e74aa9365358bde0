package main

import (
	"log"

	"project-memory-be/internal/config"
	"project-memory-be/pkg/database"
)

func main() {
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.Database.Verbose)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Printf("Migrating %d tables (embedding dimension %d)...", len(database.Models()), cfg.Ai.EmbeddingDim)
	if err := database.Migrate(db, cfg.Ai.EmbeddingDim); err != nil {
		log.Fatalf("Error: migration failed: %v", err)
	}

	log.Println("✅ Success: Database migration completed successfully via GORM.")
}
