// Package trigger decides which document status changes start the memory
// pipeline and makes sure each qualifying change starts it only once.
package trigger

import (
	"strings"

	"project-memory-be/pkg/pipeline"
)

type statusClass int

const (
	classOpen statusClass = iota
	classReady
	classPublished
)

func classify(status string) statusClass {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "approved", "complete", "completed":
		return classReady
	case "published":
		return classPublished
	default:
		return classOpen
	}
}

type transition struct {
	from, to statusClass
}

// transitions is the only place that says which status changes qualify.
// Anything missing here, including a change within one class, does nothing.
var transitions = map[transition]pipeline.Stage{
	{classOpen, classReady}:      pipeline.StageSummarize,
	{classOpen, classPublished}:  pipeline.StageSummarize,
	{classReady, classPublished}: pipeline.StageSummarize,
	{classPublished, classOpen}:  pipeline.StageDisconnectMemory,
	{classPublished, classReady}: pipeline.StageDisconnectMemory,
}

// EntryStage returns the stage a status change starts, or false when the
// change does not qualify.
func EntryStage(from, to string) (pipeline.Stage, bool) {
	stage, ok := transitions[transition{classify(from), classify(to)}]
	return stage, ok
}
