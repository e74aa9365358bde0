package dto

import (
	"github.com/google/uuid"
)

type TriggerPipelineRequest struct {
	DocumentId uuid.UUID `json:"document_id" validate:"required"`
	ProjectId  uuid.UUID `json:"project_id" validate:"required"`
}

type TriggerPipelineResponse struct {
	Summary      string   `json:"summary"`
	KeyDecisions []string `json:"key_decisions"`
}

const (
	MemoryActionPublish    = "publish"
	MemoryActionDisconnect = "disconnect"
)

type PublishMemoryRequest struct {
	DocumentId uuid.UUID `json:"document_id" validate:"required"`
	ProjectId  uuid.UUID `json:"project_id"`
	Action     string    `json:"action" validate:"required,oneof=publish disconnect"`
}

// PublishMemoryResponse carries the derived fields after a publish, or only
// Message after a disconnect.
type PublishMemoryResponse struct {
	Summary      string   `json:"summary,omitempty"`
	KeyDecisions []string `json:"key_decisions,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	Message      string   `json:"message,omitempty"`
}

type EmbedChunksRequest struct {
	DocumentId uuid.UUID `json:"document_id" validate:"required"`
	ProjectId  uuid.UUID `json:"project_id"`
}

type EmbedChunksResponse struct {
	ProcessedChunks int `json:"processedChunks"`
}

type SuggestStepsRequest struct {
	ProjectId    uuid.UUID `json:"project_id" validate:"required"`
	DocumentText string    `json:"document_text" validate:"required"`
}

type StepSuggestion struct {
	StepId      uuid.UUID `json:"step_id"`
	StepName    string    `json:"step_name"`
	Description string    `json:"description"`
	Score       float64   `json:"score"`
}

type SuggestStepsResponse struct {
	Suggestions []StepSuggestion `json:"suggestions"`
}

type ContextSearchRequest struct {
	ProjectId uuid.UUID `json:"project_id" validate:"required"`
	QueryText string    `json:"query_text" validate:"required"`
	TopK      int       `json:"top_k" validate:"omitempty,min=1,max=10"`
}

type ContextSearchResult struct {
	DocumentId     uuid.UUID `json:"document_id"`
	Summary        string    `json:"summary"`
	KeyDecisions   []string  `json:"key_decisions"`
	Tags           []string  `json:"tags"`
	ChunkPreview   string    `json:"chunk_preview"`
	RelevanceScore float64   `json:"relevance_score"`
}

type ContextSearchResponse struct {
	Results []ContextSearchResult `json:"results"`
}

type RecomputeProfileRequest struct {
	ProjectId uuid.UUID `json:"project_id" validate:"required"`
}

type RecomputeProfileResponse struct {
	ProjectProfile string `json:"project_profile"`
}

type SaveContentRequest struct {
	DocumentId uuid.UUID `json:"-"`
	ProjectId  uuid.UUID `json:"project_id" validate:"required"`
	Content    string    `json:"content"`
}

type SaveContentResponse struct {
	DocumentId uuid.UUID `json:"document_id"`
	Version    int       `json:"version"`
}

type ChangeStatusRequest struct {
	DocumentId uuid.UUID `json:"-"`
	ProjectId  uuid.UUID `json:"project_id" validate:"required"`
	Status     string    `json:"status" validate:"required,oneof=draft in_review approved published"`
}

type ChangeStatusResponse struct {
	DocumentId uuid.UUID `json:"document_id"`
	Status     string    `json:"status"`
}
