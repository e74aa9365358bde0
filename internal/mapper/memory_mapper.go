package mapper

import (
	"project-memory-be/internal/entity"
	"project-memory-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type MemoryMapper struct{}

func NewMemoryMapper() *MemoryMapper {
	return &MemoryMapper{}
}

func (m *MemoryMapper) ChunkToEntity(c *model.DocumentChunk) *entity.DocumentChunk {
	if c == nil {
		return nil
	}
	var vec []float32
	if c.Embedding != nil {
		vec = c.Embedding.Slice()
	}
	return &entity.DocumentChunk{
		Id:          c.Id,
		DocumentId:  c.DocumentId,
		ProjectId:   c.ProjectId,
		ChunkIndex:  c.ChunkIndex,
		Content:     c.Content,
		ContentHash: c.ContentHash,
		Embedding:   vec,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   optionalTime(c.UpdatedAt),
	}
}

func (m *MemoryMapper) ChunkToModel(c *entity.DocumentChunk) *model.DocumentChunk {
	if c == nil {
		return nil
	}
	var vec *pgvector.Vector
	if len(c.Embedding) > 0 {
		v := pgvector.NewVector(c.Embedding)
		vec = &v
	}
	return &model.DocumentChunk{
		Id:          c.Id,
		DocumentId:  c.DocumentId,
		ProjectId:   c.ProjectId,
		ChunkIndex:  c.ChunkIndex,
		Content:     c.Content,
		ContentHash: c.ContentHash,
		Embedding:   vec,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   requiredTime(c.UpdatedAt),
	}
}

func (m *MemoryMapper) StepMemoryToEntity(s *model.StepMemoryEmbedding) *entity.StepMemoryEmbedding {
	if s == nil {
		return nil
	}
	return &entity.StepMemoryEmbedding{
		Id:         s.Id,
		DocumentId: s.DocumentId,
		ProjectId:  s.ProjectId,
		StepId:     s.StepId,
		Content:    s.Content,
		Embedding:  s.Embedding.Slice(),
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  optionalTime(s.UpdatedAt),
	}
}

func (m *MemoryMapper) StepMemoryToModel(s *entity.StepMemoryEmbedding) *model.StepMemoryEmbedding {
	if s == nil {
		return nil
	}
	return &model.StepMemoryEmbedding{
		Id:         s.Id,
		DocumentId: s.DocumentId,
		ProjectId:  s.ProjectId,
		StepId:     s.StepId,
		Content:    s.Content,
		Embedding:  pgvector.NewVector(s.Embedding),
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  requiredTime(s.UpdatedAt),
	}
}

func (m *MemoryMapper) EntryToEntity(e *model.ProjectMemoryEntry) *entity.ProjectMemoryEntry {
	if e == nil {
		return nil
	}
	return &entity.ProjectMemoryEntry{
		Id:           e.Id,
		DocumentId:   e.DocumentId,
		ProjectId:    e.ProjectId,
		PhaseId:      e.PhaseId,
		StepId:       e.StepId,
		Title:        e.Title,
		Summary:      e.Summary,
		KeyDecisions: copyStrings(e.KeyDecisions),
		Tags:         copyStrings(e.Tags),
		Embedding:    e.Embedding.Slice(),
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    optionalTime(e.UpdatedAt),
	}
}

func (m *MemoryMapper) EntryToModel(e *entity.ProjectMemoryEntry) *model.ProjectMemoryEntry {
	if e == nil {
		return nil
	}
	return &model.ProjectMemoryEntry{
		Id:           e.Id,
		DocumentId:   e.DocumentId,
		ProjectId:    e.ProjectId,
		PhaseId:      e.PhaseId,
		StepId:       e.StepId,
		Title:        e.Title,
		Summary:      e.Summary,
		KeyDecisions: datatypes.JSONSlice[string](copyStrings(e.KeyDecisions)),
		Tags:         datatypes.JSONSlice[string](copyStrings(e.Tags)),
		Embedding:    pgvector.NewVector(e.Embedding),
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    requiredTime(e.UpdatedAt),
	}
}

func (m *MemoryMapper) ProfileToEntity(p *model.ProjectProfile) *entity.ProjectProfile {
	if p == nil {
		return nil
	}
	return &entity.ProjectProfile{
		Id:             p.Id,
		ProjectId:      p.ProjectId,
		Profile:        p.Profile,
		SourceEntryIds: copyStrings(p.SourceEntryIds),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      optionalTime(p.UpdatedAt),
	}
}

func (m *MemoryMapper) ProfileToModel(p *entity.ProjectProfile) *model.ProjectProfile {
	if p == nil {
		return nil
	}
	return &model.ProjectProfile{
		Id:             p.Id,
		ProjectId:      p.ProjectId,
		Profile:        p.Profile,
		SourceEntryIds: datatypes.JSONSlice[string](copyStrings(p.SourceEntryIds)),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      requiredTime(p.UpdatedAt),
	}
}
