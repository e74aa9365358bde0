package mapper

import (
	"project-memory-be/internal/entity"
	"project-memory-be/internal/model"
)

type AiUsageMapper struct{}

func NewAiUsageMapper() *AiUsageMapper {
	return &AiUsageMapper{}
}

func (m *AiUsageMapper) RecordToModel(r *entity.AiUsageRecord) *model.AiUsageRecord {
	if r == nil {
		return nil
	}
	return &model.AiUsageRecord{
		Id:           r.Id,
		ProjectId:    r.ProjectId,
		UserId:       r.UserId,
		FunctionName: r.FunctionName,
		Model:        r.Model,
		InputChars:   r.InputChars,
		OutputChars:  r.OutputChars,
		Succeeded:    r.Succeeded,
		CreatedAt:    r.CreatedAt,
	}
}

func (m *AiUsageMapper) SettingsToEntity(s *model.UserAiSettings) *entity.UserAiSettings {
	if s == nil {
		return nil
	}
	return &entity.UserAiSettings{
		Id:         s.Id,
		UserId:     s.UserId,
		ApiKey:     s.ApiKey,
		AiDisabled: s.AiDisabled,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  optionalTime(s.UpdatedAt),
	}
}

func (m *AiUsageMapper) SettingsToModel(s *entity.UserAiSettings) *model.UserAiSettings {
	if s == nil {
		return nil
	}
	return &model.UserAiSettings{
		Id:         s.Id,
		UserId:     s.UserId,
		ApiKey:     s.ApiKey,
		AiDisabled: s.AiDisabled,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  requiredTime(s.UpdatedAt),
	}
}
