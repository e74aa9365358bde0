package implementation

import (
	"context"
	"errors"

	"project-memory-be/internal/entity"
	"project-memory-be/internal/mapper"
	"project-memory-be/internal/model"
	"project-memory-be/internal/repository/contract"
	"project-memory-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DocumentChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.MemoryMapper
}

func NewDocumentChunkRepository(db *gorm.DB) contract.DocumentChunkRepository {
	return &DocumentChunkRepositoryImpl{
		db:     db,
		mapper: mapper.NewMemoryMapper(),
	}
}

func (r *DocumentChunkRepositoryImpl) CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	models := make([]*model.DocumentChunk, len(chunks))
	for i, c := range chunks {
		models[i] = r.mapper.ChunkToModel(c)
	}

	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}

	for i, m := range models {
		*chunks[i] = *r.mapper.ChunkToEntity(m)
	}
	return nil
}

func (r *DocumentChunkRepositoryImpl) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("document_id = ?", documentId).Delete(&model.DocumentChunk{}).Error
}

func (r *DocumentChunkRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error) {
	var models []*model.DocumentChunk
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	chunks := make([]*entity.DocumentChunk, len(models))
	for i, m := range models {
		chunks[i] = r.mapper.ChunkToEntity(m)
	}
	return chunks, nil
}

func (r *DocumentChunkRepositoryImpl) UpdateEmbedding(ctx context.Context, chunkId uuid.UUID, embedding []float32) error {
	return r.db.WithContext(ctx).
		Model(&model.DocumentChunk{Id: chunkId}).
		Update("embedding", pgvector.NewVector(embedding)).Error
}

func (r *DocumentChunkRepositoryImpl) BestMatch(ctx context.Context, documentId uuid.UUID, embedding []float32) (*entity.DocumentChunk, error) {
	var m model.DocumentChunk
	err := r.db.WithContext(ctx).
		Where("document_id = ?", documentId).
		Where("embedding IS NOT NULL").
		Order(gorm.Expr("embedding <=> ?", pgvector.NewVector(embedding))).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ChunkToEntity(&m), nil
}

type StepMemoryRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.MemoryMapper
}

func NewStepMemoryRepository(db *gorm.DB) contract.StepMemoryRepository {
	return &StepMemoryRepositoryImpl{
		db:     db,
		mapper: mapper.NewMemoryMapper(),
	}
}

func (r *StepMemoryRepositoryImpl) Upsert(ctx context.Context, memory *entity.StepMemoryEmbedding) error {
	m := r.mapper.StepMemoryToModel(memory)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "document_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"project_id", "step_id", "content", "embedding", "updated_at"}),
		}).
		Create(m).Error
	if err != nil {
		return err
	}
	*memory = *r.mapper.StepMemoryToEntity(m)
	return nil
}

func (r *StepMemoryRepositoryImpl) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("document_id = ?", documentId).Delete(&model.StepMemoryEmbedding{}).Error
}

func (r *StepMemoryRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.StepMemoryEmbedding, error) {
	var m model.StepMemoryEmbedding
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.StepMemoryToEntity(&m), nil
}

type ProjectMemoryRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.MemoryMapper
}

func NewProjectMemoryRepository(db *gorm.DB) contract.ProjectMemoryRepository {
	return &ProjectMemoryRepositoryImpl{
		db:     db,
		mapper: mapper.NewMemoryMapper(),
	}
}

func (r *ProjectMemoryRepositoryImpl) Upsert(ctx context.Context, entry *entity.ProjectMemoryEntry) error {
	m := r.mapper.EntryToModel(entry)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "document_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"project_id", "phase_id", "step_id", "title", "summary",
				"key_decisions", "tags", "embedding", "updated_at",
			}),
		}).
		Create(m).Error
	if err != nil {
		return err
	}
	*entry = *r.mapper.EntryToEntity(m)
	return nil
}

func (r *ProjectMemoryRepositoryImpl) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("document_id = ?", documentId).Delete(&model.ProjectMemoryEntry{}).Error
}

func (r *ProjectMemoryRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ProjectMemoryEntry, error) {
	var m model.ProjectMemoryEntry
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.EntryToEntity(&m), nil
}

func (r *ProjectMemoryRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ProjectMemoryEntry, error) {
	var models []*model.ProjectMemoryEntry
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entries := make([]*entity.ProjectMemoryEntry, len(models))
	for i, m := range models {
		entries[i] = r.mapper.EntryToEntity(m)
	}
	return entries, nil
}

// SearchSimilarWithScore ranks by pgvector cosine distance; similarity is 1 - distance.
func (r *ProjectMemoryRepositoryImpl) SearchSimilarWithScore(ctx context.Context, projectId uuid.UUID, embedding []float32, limit int, threshold float64) ([]*contract.ScoredMemoryEntry, error) {
	if limit <= 0 {
		limit = 3
	}

	type result struct {
		model.ProjectMemoryEntry
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("project_memory_entries").
		Select("project_memory_entries.*, 1 - (embedding <=> ?) as similarity", queryVector).
		Where("project_id = ?", projectId).
		Where("1 - (embedding <=> ?) >= ?", queryVector, threshold).
		Order("similarity DESC").
		Order("updated_at DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredMemoryEntry, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredMemoryEntry{
			Entry:      r.mapper.EntryToEntity(&res.ProjectMemoryEntry),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}

type ProjectProfileRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.MemoryMapper
}

func NewProjectProfileRepository(db *gorm.DB) contract.ProjectProfileRepository {
	return &ProjectProfileRepositoryImpl{
		db:     db,
		mapper: mapper.NewMemoryMapper(),
	}
}

func (r *ProjectProfileRepositoryImpl) Upsert(ctx context.Context, profile *entity.ProjectProfile) error {
	m := r.mapper.ProfileToModel(profile)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "project_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"profile", "source_entry_ids", "updated_at"}),
		}).
		Create(m).Error
	if err != nil {
		return err
	}
	*profile = *r.mapper.ProfileToEntity(m)
	return nil
}

func (r *ProjectProfileRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ProjectProfile, error) {
	var m model.ProjectProfile
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ProfileToEntity(&m), nil
}
