package trigger

import (
	"context"
	"fmt"

	"project-memory-be/internal/pkg/logger"
	"project-memory-be/pkg/metrics"
	"project-memory-be/pkg/pipeline"

	"github.com/google/uuid"
)

type Outcome string

const (
	OutcomeFired        Outcome = "fired"
	OutcomeIgnored      Outcome = "ignored"
	OutcomeDeduplicated Outcome = "deduplicated"
)

// InFlightGuard admits one pipeline run per document at a time.
type InFlightGuard interface {
	// Acquire returns false when a run for documentId already holds the slot.
	Acquire(ctx context.Context, documentId uuid.UUID) (bool, error)
	Release(ctx context.Context, documentId uuid.UUID) error
}

// Starter launches a pipeline job asynchronously.
type Starter interface {
	Start(ctx context.Context, job pipeline.Job) error
}

type StatusChange struct {
	DocumentId uuid.UUID
	ProjectId  uuid.UUID
	UserId     uuid.UUID
	From       string
	To         string
}

type Controller struct {
	guard   InFlightGuard
	starter Starter
	metrics *metrics.Metrics
	logger  logger.ILogger
}

func NewController(guard InFlightGuard, starter Starter, m *metrics.Metrics, log logger.ILogger) *Controller {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Controller{guard: guard, starter: starter, metrics: m, logger: log}
}

// HandleStatusChange fires the entry stage for a qualifying change. A second
// change for a document whose run is still in flight is dropped.
func (c *Controller) HandleStatusChange(ctx context.Context, change StatusChange) (Outcome, error) {
	stage, ok := EntryStage(change.From, change.To)
	if !ok {
		c.metrics.ObserveTrigger(string(OutcomeIgnored))
		return OutcomeIgnored, nil
	}

	acquired, err := c.guard.Acquire(ctx, change.DocumentId)
	if err != nil {
		return "", fmt.Errorf("acquire in-flight guard: %w", err)
	}
	if !acquired {
		c.logger.Info("TRIGGER", "Pipeline already running, dropping trigger", map[string]interface{}{
			"document_id": change.DocumentId.String(),
			"from":        change.From,
			"to":          change.To,
		})
		c.metrics.ObserveTrigger(string(OutcomeDeduplicated))
		return OutcomeDeduplicated, nil
	}

	job := pipeline.Job{
		DocumentId: change.DocumentId,
		ProjectId:  change.ProjectId,
		UserId:     change.UserId,
		Stage:      stage,
		Guarded:    true,
		Origin:     "status:" + change.From + "->" + change.To,
	}
	if err := c.starter.Start(ctx, job); err != nil {
		if relErr := c.guard.Release(ctx, change.DocumentId); relErr != nil {
			c.logger.Error("TRIGGER", "Failed to release in-flight guard", map[string]interface{}{
				"document_id": change.DocumentId.String(),
				"error":       relErr.Error(),
			})
		}
		return "", fmt.Errorf("start pipeline: %w", err)
	}

	c.logger.Info("TRIGGER", "Pipeline triggered", map[string]interface{}{
		"document_id": change.DocumentId.String(),
		"stage":       string(stage),
		"from":        change.From,
		"to":          change.To,
	})
	c.metrics.ObserveTrigger(string(OutcomeFired))
	return OutcomeFired, nil
}
