package main

import (
	"context"
	"fmt"

	"project-memory-be/internal/bootstrap"
	"project-memory-be/internal/config"
	"project-memory-be/internal/repository/specification"
	"project-memory-be/internal/repository/unitofwork"
	"project-memory-be/pkg/database"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func openDB(cfg *config.Config) (*gorm.DB, error) {
	if cfg.Database.Connection == "" {
		return nil, fmt.Errorf("DB_CONNECTION_STRING is not set")
	}
	return database.NewGormDBFromDSN(cfg.Database.Connection, cfg.Database.Verbose)
}

// openContainer wires the same services the REST server uses, without
// starting the background consumer.
func openContainer() (*bootstrap.Container, error) {
	cfg := config.Load()
	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}
	return bootstrap.NewContainer(db, cfg), nil
}

// projectOwner returns the owner of projectId.
func projectOwner(ctx context.Context, uowFactory unitofwork.RepositoryFactory, projectId uuid.UUID) (uuid.UUID, error) {
	project, err := uowFactory.NewUnitOfWork(ctx).ProjectRepository().FindOne(ctx, specification.ByID{ID: projectId})
	if err != nil {
		return uuid.Nil, fmt.Errorf("load project: %w", err)
	}
	if project == nil {
		return uuid.Nil, fmt.Errorf("project %s not found", projectId)
	}
	return project.UserId, nil
}
