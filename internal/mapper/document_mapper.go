package mapper

import (
	"project-memory-be/internal/entity"
	"project-memory-be/internal/model"

	"gorm.io/datatypes"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToEntity(d *model.Document) *entity.Document {
	if d == nil {
		return nil
	}
	return &entity.Document{
		Id:               d.Id,
		ProjectId:        d.ProjectId,
		StepId:           d.StepId,
		Title:            d.Title,
		Content:          d.Content,
		Status:           entity.DocumentStatus(d.Status),
		CurrentVersion:   d.CurrentVersion,
		Summary:          d.Summary,
		KeyDecisions:     copyStrings(d.KeyDecisions),
		Tags:             copyStrings(d.Tags),
		ContentUpdatedAt: d.ContentUpdatedAt,
		LastSummarizedAt: d.LastSummarizedAt,
		LastPublishedAt:  d.LastPublishedAt,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        optionalTime(d.UpdatedAt),
	}
}

func (m *DocumentMapper) ToModel(d *entity.Document) *model.Document {
	if d == nil {
		return nil
	}
	return &model.Document{
		Id:               d.Id,
		ProjectId:        d.ProjectId,
		StepId:           d.StepId,
		Title:            d.Title,
		Content:          d.Content,
		Status:           string(d.Status),
		CurrentVersion:   d.CurrentVersion,
		Summary:          d.Summary,
		KeyDecisions:     datatypes.JSONSlice[string](copyStrings(d.KeyDecisions)),
		Tags:             datatypes.JSONSlice[string](copyStrings(d.Tags)),
		ContentUpdatedAt: d.ContentUpdatedAt,
		LastSummarizedAt: d.LastSummarizedAt,
		LastPublishedAt:  d.LastPublishedAt,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        requiredTime(d.UpdatedAt),
	}
}

func (m *DocumentMapper) VersionToEntity(v *model.DocumentVersion) *entity.DocumentVersion {
	if v == nil {
		return nil
	}
	return &entity.DocumentVersion{
		Id:         v.Id,
		DocumentId: v.DocumentId,
		Version:    v.Version,
		Content:    v.Content,
		CreatedBy:  v.CreatedBy,
		CreatedAt:  v.CreatedAt,
	}
}

func (m *DocumentMapper) VersionToModel(v *entity.DocumentVersion) *model.DocumentVersion {
	if v == nil {
		return nil
	}
	return &model.DocumentVersion{
		Id:         v.Id,
		DocumentId: v.DocumentId,
		Version:    v.Version,
		Content:    v.Content,
		CreatedBy:  v.CreatedBy,
		CreatedAt:  v.CreatedAt,
	}
}
