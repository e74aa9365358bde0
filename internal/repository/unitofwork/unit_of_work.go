package unitofwork

import (
	"context"

	"project-memory-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ProjectRepository() contract.ProjectRepository
	StepRepository() contract.StepRepository
	DocumentRepository() contract.DocumentRepository
	DocumentVersionRepository() contract.DocumentVersionRepository

	DocumentChunkRepository() contract.DocumentChunkRepository
	StepMemoryRepository() contract.StepMemoryRepository
	ProjectMemoryRepository() contract.ProjectMemoryRepository
	ProjectProfileRepository() contract.ProjectProfileRepository

	AiUsageRepository() contract.AiUsageRepository
	UserAiSettingsRepository() contract.UserAiSettingsRepository
}
