package entity

import (
	"time"

	"github.com/google/uuid"
)

// DocumentChunk is a contiguous slice of a document's normalized text.
// Embedding is nil until the chunk has been embedded.
type DocumentChunk struct {
	Id          uuid.UUID
	DocumentId  uuid.UUID
	ProjectId   uuid.UUID
	ChunkIndex  int
	Content     string
	ContentHash string
	Embedding   []float32
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// StepMemoryEmbedding is the vector of a document's summary, one per document.
type StepMemoryEmbedding struct {
	Id         uuid.UUID
	DocumentId uuid.UUID
	ProjectId  uuid.UUID
	StepId     uuid.UUID
	Content    string
	Embedding  []float32
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}

// ProjectMemoryEntry exists only while its document is published.
type ProjectMemoryEntry struct {
	Id           uuid.UUID
	DocumentId   uuid.UUID
	ProjectId    uuid.UUID
	PhaseId      *uuid.UUID
	StepId       *uuid.UUID
	Title        string
	Summary      string
	KeyDecisions []string
	Tags         []string
	Embedding    []float32
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

type ProjectProfile struct {
	Id             uuid.UUID
	ProjectId      uuid.UUID
	Profile        string
	SourceEntryIds []string
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}
