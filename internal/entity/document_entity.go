package entity

import (
	"time"

	"github.com/google/uuid"
)

type DocumentStatus string

const (
	DocumentStatusDraft     DocumentStatus = "draft"
	DocumentStatusInReview  DocumentStatus = "in_review"
	DocumentStatusApproved  DocumentStatus = "approved"
	DocumentStatusPublished DocumentStatus = "published"
)

func (s DocumentStatus) Valid() bool {
	switch s {
	case DocumentStatusDraft, DocumentStatusInReview, DocumentStatusApproved, DocumentStatusPublished:
		return true
	}
	return false
}

// Document is a rich-text artifact attached to a project step. Summary,
// KeyDecisions and Tags are derived by the memory pipeline.
type Document struct {
	Id               uuid.UUID
	ProjectId        uuid.UUID
	StepId           uuid.UUID
	Title            string
	Content          string
	Status           DocumentStatus
	CurrentVersion   int
	Summary          string
	KeyDecisions     []string
	Tags             []string
	ContentUpdatedAt *time.Time
	LastSummarizedAt *time.Time
	LastPublishedAt  *time.Time
	CreatedAt        time.Time
	UpdatedAt        *time.Time
}

// SummaryIsFresh reports whether the derived fields were produced from the
// current content and can be reused instead of summarizing again.
func (d *Document) SummaryIsFresh() bool {
	if d.LastSummarizedAt == nil || d.Summary == "" {
		return false
	}
	if d.ContentUpdatedAt == nil {
		return true
	}
	return !d.LastSummarizedAt.Before(*d.ContentUpdatedAt)
}

// DocumentVersion is an immutable content snapshot. Version numbers are
// strictly increasing per document.
type DocumentVersion struct {
	Id         uuid.UUID
	DocumentId uuid.UUID
	Version    int
	Content    string
	CreatedBy  uuid.UUID
	CreatedAt  time.Time
}
