package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Document struct {
	Id               uuid.UUID                   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProjectId        uuid.UUID                   `gorm:"type:uuid;not null;index"`
	StepId           uuid.UUID                   `gorm:"type:uuid;not null;index"`
	Title            string                      `gorm:"type:varchar(255);not null"`
	Content          string                      `gorm:"type:text"`
	Status           string                      `gorm:"type:varchar(32);not null;default:'draft';index"`
	CurrentVersion   int                         `gorm:"not null;default:0"`
	Summary          string                      `gorm:"type:text"`
	KeyDecisions     datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	Tags             datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	ContentUpdatedAt *time.Time
	LastSummarizedAt *time.Time
	LastPublishedAt  *time.Time
	CreatedAt        time.Time      `gorm:"autoCreateTime"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime"`
	DeletedAt        gorm.DeletedAt `gorm:"index"`
}

func (Document) TableName() string {
	return "documents"
}

type DocumentVersion struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentId uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_document_versions_document_version"`
	Version    int       `gorm:"not null;uniqueIndex:idx_document_versions_document_version"`
	Content    string    `gorm:"type:text"`
	CreatedBy  uuid.UUID `gorm:"type:uuid"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (DocumentVersion) TableName() string {
	return "document_versions"
}
