package contract

import (
	"context"

	"project-memory-be/internal/entity"
	"project-memory-be/internal/repository/specification"
)

type AiUsageRepository interface {
	Create(ctx context.Context, record *entity.AiUsageRecord) error
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

type UserAiSettingsRepository interface {
	Upsert(ctx context.Context, settings *entity.UserAiSettings) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.UserAiSettings, error)
}
