package entity

import (
	"time"

	"github.com/google/uuid"
)

// AiUsageRecord is appended for every external model call.
type AiUsageRecord struct {
	Id           uuid.UUID
	ProjectId    uuid.UUID
	UserId       uuid.UUID
	FunctionName string // e.g. "summarize-document", "embed-chunk"
	Model        string
	InputChars   int
	OutputChars  int
	Succeeded    bool
	CreatedAt    time.Time
}

// UserAiSettings is the per-account AI configuration consulted on every call.
type UserAiSettings struct {
	Id         uuid.UUID
	UserId     uuid.UUID
	ApiKey     string
	AiDisabled bool
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}
