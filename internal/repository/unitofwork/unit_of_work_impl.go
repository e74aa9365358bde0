package unitofwork

import (
	"context"
	"fmt"

	"project-memory-be/internal/repository/contract"
	"project-memory-be/internal/repository/implementation"

	"gorm.io/gorm"
)

type UnitOfWorkImpl struct {
	db *gorm.DB
	tx *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &UnitOfWorkImpl{
		db: db,
	}
}

// getDB returns the open transaction when there is one.
func (u *UnitOfWorkImpl) getDB() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UnitOfWorkImpl) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}
	u.tx = u.db.WithContext(ctx).Begin()
	return u.tx.Error
}

func (u *UnitOfWorkImpl) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}
	err := u.tx.Commit().Error
	u.tx = nil
	return err
}

func (u *UnitOfWorkImpl) Rollback() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to rollback")
	}
	err := u.tx.Rollback().Error
	u.tx = nil
	return err
}

// Repository Accessors

func (u *UnitOfWorkImpl) ProjectRepository() contract.ProjectRepository {
	return implementation.NewProjectRepository(u.getDB())
}

func (u *UnitOfWorkImpl) StepRepository() contract.StepRepository {
	return implementation.NewStepRepository(u.getDB())
}

func (u *UnitOfWorkImpl) DocumentRepository() contract.DocumentRepository {
	return implementation.NewDocumentRepository(u.getDB())
}

func (u *UnitOfWorkImpl) DocumentVersionRepository() contract.DocumentVersionRepository {
	return implementation.NewDocumentVersionRepository(u.getDB())
}

func (u *UnitOfWorkImpl) DocumentChunkRepository() contract.DocumentChunkRepository {
	return implementation.NewDocumentChunkRepository(u.getDB())
}

func (u *UnitOfWorkImpl) StepMemoryRepository() contract.StepMemoryRepository {
	return implementation.NewStepMemoryRepository(u.getDB())
}

func (u *UnitOfWorkImpl) ProjectMemoryRepository() contract.ProjectMemoryRepository {
	return implementation.NewProjectMemoryRepository(u.getDB())
}

func (u *UnitOfWorkImpl) ProjectProfileRepository() contract.ProjectProfileRepository {
	return implementation.NewProjectProfileRepository(u.getDB())
}

func (u *UnitOfWorkImpl) AiUsageRepository() contract.AiUsageRepository {
	return implementation.NewAiUsageRepository(u.getDB())
}

func (u *UnitOfWorkImpl) UserAiSettingsRepository() contract.UserAiSettingsRepository {
	return implementation.NewUserAiSettingsRepository(u.getDB())
}
