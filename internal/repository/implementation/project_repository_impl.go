package implementation

import (
	"context"
	"errors"

	"project-memory-be/internal/entity"
	"project-memory-be/internal/mapper"
	"project-memory-be/internal/model"
	"project-memory-be/internal/repository/contract"
	"project-memory-be/internal/repository/specification"

	"gorm.io/gorm"
)

type ProjectRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ProjectMapper
}

func NewProjectRepository(db *gorm.DB) contract.ProjectRepository {
	return &ProjectRepositoryImpl{
		db:     db,
		mapper: mapper.NewProjectMapper(),
	}
}

func (r *ProjectRepositoryImpl) Create(ctx context.Context, project *entity.Project) error {
	m := r.mapper.ToModel(project)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*project = *r.mapper.ToEntity(m)
	return nil
}

func (r *ProjectRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Project, error) {
	var m model.Project
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

type StepRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.StepMapper
}

func NewStepRepository(db *gorm.DB) contract.StepRepository {
	return &StepRepositoryImpl{
		db:     db,
		mapper: mapper.NewStepMapper(),
	}
}

func (r *StepRepositoryImpl) Create(ctx context.Context, step *entity.Step) error {
	m := r.mapper.ToModel(step)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*step = *r.mapper.ToEntity(m)
	return nil
}

func (r *StepRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Step, error) {
	var m model.Step
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *StepRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Step, error) {
	var models []*model.Step
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}
