package service

import (
	"context"

	"project-memory-be/internal/pkg/logger"
	"project-memory-be/pkg/events"
	"project-memory-be/pkg/trigger"

	"github.com/google/uuid"
)

// StatusEventListener feeds DOCUMENT_STATUS_CHANGED events to the
// auto-trigger controller.
type StatusEventListener struct {
	controller *trigger.Controller
	logger     logger.ILogger
}

func NewStatusEventListener(controller *trigger.Controller, log logger.ILogger) *StatusEventListener {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &StatusEventListener{controller: controller, logger: log}
}

// Handle returns an error only when the event should be redelivered.
func (l *StatusEventListener) Handle(ctx context.Context, event events.Event) error {
	if event.EventType() != events.TypeDocumentStatusChanged {
		return nil
	}

	documentId, err := uuid.Parse(events.PayloadString(event, "document_id"))
	if err != nil {
		l.logger.Warn("TRIGGER", "Ignoring status event without document id", map[string]interface{}{
			"payload": event.Payload(),
		})
		return nil
	}
	projectId, _ := uuid.Parse(events.PayloadString(event, "project_id"))
	userId, _ := uuid.Parse(events.PayloadString(event, "user_id"))

	_, err = l.controller.HandleStatusChange(ctx, trigger.StatusChange{
		DocumentId: documentId,
		ProjectId:  projectId,
		UserId:     userId,
		From:       events.PayloadString(event, "from_status"),
		To:         events.PayloadString(event, "to_status"),
	})
	return err
}
