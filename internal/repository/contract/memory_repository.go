package contract

import (
	"context"

	"project-memory-be/internal/entity"
	"project-memory-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredMemoryEntry wraps ProjectMemoryEntry with its cosine similarity in [-1, 1].
type ScoredMemoryEntry struct {
	Entry      *entity.ProjectMemoryEntry
	Similarity float64
}

type DocumentChunkRepository interface {
	CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error
	DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error)
	UpdateEmbedding(ctx context.Context, chunkId uuid.UUID, embedding []float32) error
	// BestMatch returns the embedded chunk of documentId closest to embedding, or nil.
	BestMatch(ctx context.Context, documentId uuid.UUID, embedding []float32) (*entity.DocumentChunk, error)
}

type StepMemoryRepository interface {
	Upsert(ctx context.Context, memory *entity.StepMemoryEmbedding) error
	DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.StepMemoryEmbedding, error)
}

type ProjectMemoryRepository interface {
	Upsert(ctx context.Context, entry *entity.ProjectMemoryEntry) error
	DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ProjectMemoryEntry, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ProjectMemoryEntry, error)
	// SearchSimilarWithScore returns entries of projectId with similarity >= threshold, best first.
	SearchSimilarWithScore(ctx context.Context, projectId uuid.UUID, embedding []float32, limit int, threshold float64) ([]*ScoredMemoryEntry, error)
}

type ProjectProfileRepository interface {
	Upsert(ctx context.Context, profile *entity.ProjectProfile) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ProjectProfile, error)
}
