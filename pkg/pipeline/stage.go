// Package pipeline describes the document memory stage chain: the stages, the
// job that carries a document through them and the transition function that
// decides what runs next.
package pipeline

import (
	"fmt"

	"github.com/google/uuid"
)

type Stage string

const (
	StageSummarize        Stage = "summarize"
	StageChunk            Stage = "chunk"
	StageEmbedChunks      Stage = "embed_chunks"
	StageEmbedStepMemory  Stage = "embed_step_memory"
	StagePublishMemory    Stage = "publish_memory"
	StageDisconnectMemory Stage = "disconnect_memory"
	StageRecomputeProfile Stage = "recompute_profile"
	StageIdle             Stage = "idle"
)

var stages = map[Stage]struct{}{
	StageSummarize:        {},
	StageChunk:            {},
	StageEmbedChunks:      {},
	StageEmbedStepMemory:  {},
	StagePublishMemory:    {},
	StageDisconnectMemory: {},
	StageRecomputeProfile: {},
	StageIdle:             {},
}

func (s Stage) Valid() bool {
	_, ok := stages[s]
	return ok
}

func ParseStage(s string) (Stage, error) {
	stage := Stage(s)
	if !stage.Valid() {
		return "", fmt.Errorf("unknown pipeline stage %q", s)
	}
	return stage, nil
}

// DocumentState is what Next needs to know about the document after a stage.
type DocumentState struct {
	Published      bool
	HasMemoryEntry bool
}

// Next returns the stage that follows completed. After step memory the chain
// publishes published documents, disconnects documents that still own a
// memory entry, and otherwise stops.
func Next(completed Stage, state DocumentState) Stage {
	switch completed {
	case StageSummarize:
		return StageChunk
	case StageChunk:
		return StageEmbedChunks
	case StageEmbedChunks:
		return StageEmbedStepMemory
	case StageEmbedStepMemory:
		switch {
		case state.Published:
			return StagePublishMemory
		case state.HasMemoryEntry:
			return StageDisconnectMemory
		default:
			return StageIdle
		}
	case StagePublishMemory, StageDisconnectMemory:
		return StageRecomputeProfile
	default:
		return StageIdle
	}
}

// Job moves one document through the chain. Guarded jobs hold the
// auto-trigger's in-flight slot and must release it when the chain stops.
type Job struct {
	DocumentId uuid.UUID `json:"document_id"`
	ProjectId  uuid.UUID `json:"project_id"`
	UserId     uuid.UUID `json:"user_id"`
	Stage      Stage     `json:"stage"`
	Guarded    bool      `json:"guarded"`
	Origin     string    `json:"origin,omitempty"`
}

// Advance returns a copy of the job positioned at stage.
func (j Job) Advance(stage Stage) Job {
	j.Stage = stage
	return j
}
