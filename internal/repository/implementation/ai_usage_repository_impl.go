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
	"gorm.io/gorm/clause"
)

type AiUsageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AiUsageMapper
}

func NewAiUsageRepository(db *gorm.DB) contract.AiUsageRepository {
	return &AiUsageRepositoryImpl{
		db:     db,
		mapper: mapper.NewAiUsageMapper(),
	}
}

func (r *AiUsageRepositoryImpl) Create(ctx context.Context, record *entity.AiUsageRecord) error {
	m := r.mapper.RecordToModel(record)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	record.Id = m.Id
	record.CreatedAt = m.CreatedAt
	return nil
}

func (r *AiUsageRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.AiUsageRecord{}).Count(&count).Error
	return count, err
}

type UserAiSettingsRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AiUsageMapper
}

func NewUserAiSettingsRepository(db *gorm.DB) contract.UserAiSettingsRepository {
	return &UserAiSettingsRepositoryImpl{
		db:     db,
		mapper: mapper.NewAiUsageMapper(),
	}
}

func (r *UserAiSettingsRepositoryImpl) Upsert(ctx context.Context, settings *entity.UserAiSettings) error {
	m := r.mapper.SettingsToModel(settings)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"api_key", "ai_disabled", "updated_at"}),
		}).
		Create(m).Error
	if err != nil {
		return err
	}
	*settings = *r.mapper.SettingsToEntity(m)
	return nil
}

func (r *UserAiSettingsRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.UserAiSettings, error) {
	var m model.UserAiSettings
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.SettingsToEntity(&m), nil
}
