package contract

import (
	"context"

	"project-memory-be/internal/entity"
	"project-memory-be/internal/repository/specification"
)

type ProjectRepository interface {
	Create(ctx context.Context, project *entity.Project) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Project, error)
}

type StepRepository interface {
	Create(ctx context.Context, step *entity.Step) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Step, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Step, error)
}
