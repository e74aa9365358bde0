package database

import (
	"fmt"

	"project-memory-be/internal/model"

	"gorm.io/gorm"
)

// vectorColumns are pinned to the embedding dimension after AutoMigrate.
var vectorColumns = []struct {
	table  string
	column string
}{
	{"document_chunks", "embedding"},
	{"step_memory_embeddings", "embedding"},
	{"project_memory_entries", "embedding"},
}

// Models lists every table the service owns.
func Models() []interface{} {
	return []interface{}{
		&model.Project{},
		&model.Phase{},
		&model.Step{},
		&model.Document{},
		&model.DocumentVersion{},
		&model.DocumentChunk{},
		&model.StepMemoryEmbedding{},
		&model.ProjectMemoryEntry{},
		&model.ProjectProfile{},
		&model.AiUsageRecord{},
		&model.UserAiSettings{},
	}
}

// Migrate installs the extensions, migrates every model and fixes the vector
// dimension. Changing the dimension of a populated column fails.
func Migrate(db *gorm.DB, dimension int) error {
	for _, ext := range []string{"pgcrypto", "vector"} {
		if err := db.Exec(fmt.Sprintf("CREATE EXTENSION IF NOT EXISTS %s", ext)).Error; err != nil {
			return fmt.Errorf("create extension %s: %w", ext, err)
		}
	}

	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if dimension <= 0 {
		return nil
	}
	for _, vc := range vectorColumns {
		stmt := fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE vector(%d)", vc.table, vc.column, dimension)
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("pin %s.%s dimension: %w", vc.table, vc.column, err)
		}
	}
	return nil
}
