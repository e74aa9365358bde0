package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// Vector columns are declared dimensionless here; database.Migrate pins the
// configured dimension after AutoMigrate.

type DocumentChunk struct {
	Id          uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentId  uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_document_chunks_document_index"`
	ProjectId   uuid.UUID        `gorm:"type:uuid;not null;index"`
	ChunkIndex  int              `gorm:"not null;uniqueIndex:idx_document_chunks_document_index"`
	Content     string           `gorm:"type:text"`
	ContentHash string           `gorm:"type:varchar(64)"`
	Embedding   *pgvector.Vector `gorm:"type:vector"`
	CreatedAt   time.Time        `gorm:"autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"autoUpdateTime"`
}

func (DocumentChunk) TableName() string {
	return "document_chunks"
}

type StepMemoryEmbedding struct {
	Id         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentId uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	ProjectId  uuid.UUID       `gorm:"type:uuid;not null;index"`
	StepId     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Content    string          `gorm:"type:text"`
	Embedding  pgvector.Vector `gorm:"type:vector"`
	CreatedAt  time.Time       `gorm:"autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime"`
}

func (StepMemoryEmbedding) TableName() string {
	return "step_memory_embeddings"
}

type ProjectMemoryEntry struct {
	Id           uuid.UUID                   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentId   uuid.UUID                   `gorm:"type:uuid;not null;uniqueIndex"`
	ProjectId    uuid.UUID                   `gorm:"type:uuid;not null;index"`
	PhaseId      *uuid.UUID                  `gorm:"type:uuid"`
	StepId       *uuid.UUID                  `gorm:"type:uuid"`
	Title        string                      `gorm:"type:varchar(255)"`
	Summary      string                      `gorm:"type:text"`
	KeyDecisions datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	Tags         datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	Embedding    pgvector.Vector             `gorm:"type:vector"`
	CreatedAt    time.Time                   `gorm:"autoCreateTime"`
	UpdatedAt    time.Time                   `gorm:"autoUpdateTime;index"`
}

func (ProjectMemoryEntry) TableName() string {
	return "project_memory_entries"
}

type ProjectProfile struct {
	Id             uuid.UUID                   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProjectId      uuid.UUID                   `gorm:"type:uuid;not null;uniqueIndex"`
	Profile        string                      `gorm:"type:text"`
	SourceEntryIds datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	CreatedAt      time.Time                   `gorm:"autoCreateTime"`
	UpdatedAt      time.Time                   `gorm:"autoUpdateTime"`
}

func (ProjectProfile) TableName() string {
	return "project_profiles"
}
