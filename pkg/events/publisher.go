package events

import (
	"context"
	"time"

	"project-memory-be/internal/pkg/logger"

	"github.com/google/uuid"
)

// Publisher emits the document and memory lifecycle events.
type Publisher interface {
	PublishStatusChanged(ctx context.Context, documentId, projectId, userId uuid.UUID, from, to string) error
	PublishMemoryPublished(ctx context.Context, documentId, projectId, entryId uuid.UUID)
	PublishMemoryDisconnected(ctx context.Context, documentId, projectId uuid.UUID)
	PublishProfileRecomputed(ctx context.Context, projectId uuid.UUID, sourceEntries int)
}

type SinkPublisher struct {
	sink   Sink
	logger logger.ILogger
}

// NewSinkPublisher returns a Publisher over sink; a nil sink drops every event.
func NewSinkPublisher(sink Sink, log logger.ILogger) *SinkPublisher {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &SinkPublisher{sink: sink, logger: log}
}

// PublishStatusChanged returns the sink error so the caller can report it;
// the status itself is already persisted.
func (p *SinkPublisher) PublishStatusChanged(ctx context.Context, documentId, projectId, userId uuid.UUID, from, to string) error {
	if p.sink == nil {
		return nil
	}

	now := time.Now()
	evt := BaseEvent{
		Type: TypeDocumentStatusChanged,
		Data: map[string]interface{}{
			"document_id": documentId.String(),
			"project_id":  projectId.String(),
			"user_id":     userId.String(),
			"from_status": from,
			"to_status":   to,
			"occurred_at": now,
		},
		OccurredAt: now,
	}

	if err := p.sink.Publish(ctx, evt); err != nil {
		p.logger.Error("EVENTS", "Failed to publish DOCUMENT_STATUS_CHANGED event", map[string]interface{}{
			"document_id": documentId.String(),
			"error":       err.Error(),
		})
		return err
	}
	return nil
}

func (p *SinkPublisher) PublishMemoryPublished(ctx context.Context, documentId, projectId, entryId uuid.UUID) {
	p.emit(ctx, TypeMemoryPublished, map[string]interface{}{
		"document_id": documentId.String(),
		"project_id":  projectId.String(),
		"entry_id":    entryId.String(),
		"entity_type": "project_memory_entry",
		"entity_id":   entryId.String(),
	})
}

func (p *SinkPublisher) PublishMemoryDisconnected(ctx context.Context, documentId, projectId uuid.UUID) {
	p.emit(ctx, TypeMemoryDisconnected, map[string]interface{}{
		"document_id": documentId.String(),
		"project_id":  projectId.String(),
		"entity_type": "document",
		"entity_id":   documentId.String(),
	})
}

func (p *SinkPublisher) PublishProfileRecomputed(ctx context.Context, projectId uuid.UUID, sourceEntries int) {
	p.emit(ctx, TypeProfileRecomputed, map[string]interface{}{
		"project_id":     projectId.String(),
		"source_entries": sourceEntries,
		"entity_type":    "project_profile",
		"entity_id":      projectId.String(),
	})
}

// emit never fails the caller; broker trouble is only logged.
func (p *SinkPublisher) emit(ctx context.Context, eventType string, data map[string]interface{}) {
	if p.sink == nil {
		return
	}
	now := time.Now()
	data["occurred_at"] = now
	evt := BaseEvent{Type: eventType, Data: data, OccurredAt: now}
	if err := p.sink.Publish(ctx, evt); err != nil {
		p.logger.Error("EVENTS", "Failed to publish "+eventType+" event", map[string]interface{}{"error": err.Error()})
	}
}
