package mapper

import (
	"project-memory-be/internal/entity"
	"project-memory-be/internal/model"
)

type ProjectMapper struct{}

func NewProjectMapper() *ProjectMapper {
	return &ProjectMapper{}
}

func (m *ProjectMapper) ToEntity(p *model.Project) *entity.Project {
	if p == nil {
		return nil
	}
	return &entity.Project{
		Id:          p.Id,
		UserId:      p.UserId,
		Name:        p.Name,
		Pitch:       p.Pitch,
		Audience:    p.Audience,
		Positioning: p.Positioning,
		Constraints: p.Constraints,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   optionalTime(p.UpdatedAt),
	}
}

func (m *ProjectMapper) ToModel(p *entity.Project) *model.Project {
	if p == nil {
		return nil
	}
	return &model.Project{
		Id:          p.Id,
		UserId:      p.UserId,
		Name:        p.Name,
		Pitch:       p.Pitch,
		Audience:    p.Audience,
		Positioning: p.Positioning,
		Constraints: p.Constraints,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   requiredTime(p.UpdatedAt),
	}
}

type StepMapper struct{}

func NewStepMapper() *StepMapper {
	return &StepMapper{}
}

func (m *StepMapper) ToEntity(s *model.Step) *entity.Step {
	if s == nil {
		return nil
	}
	return &entity.Step{
		Id:          s.Id,
		ProjectId:   s.ProjectId,
		PhaseId:     s.PhaseId,
		Name:        s.Name,
		Description: s.Description,
		Position:    s.Position,
		CreatedAt:   s.CreatedAt,
	}
}

func (m *StepMapper) ToModel(s *entity.Step) *model.Step {
	if s == nil {
		return nil
	}
	return &model.Step{
		Id:          s.Id,
		ProjectId:   s.ProjectId,
		PhaseId:     s.PhaseId,
		Name:        s.Name,
		Description: s.Description,
		Position:    s.Position,
		CreatedAt:   s.CreatedAt,
	}
}

func (m *StepMapper) ToEntities(steps []*model.Step) []*entity.Step {
	entities := make([]*entity.Step, len(steps))
	for i, s := range steps {
		entities[i] = m.ToEntity(s)
	}
	return entities
}
