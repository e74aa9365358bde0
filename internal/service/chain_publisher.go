package service

import (
	"context"
	"encoding/json"
	"fmt"

	"project-memory-be/pkg/pipeline"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// IPublisherService queues pipeline jobs for the consumer.
type IPublisherService interface {
	Publish(ctx context.Context, job pipeline.Job) error
	// Start satisfies trigger.Starter.
	Start(ctx context.Context, job pipeline.Job) error
}

type publisherService struct {
	topicName string
	publisher message.Publisher
}

func NewPublisherService(topicName string, publisher message.Publisher) IPublisherService {
	return &publisherService{
		topicName: topicName,
		publisher: publisher,
	}
}

func (p *publisherService) Publish(ctx context.Context, job pipeline.Job) error {
	if !job.Stage.Valid() {
		return fmt.Errorf("refusing to queue unknown stage %q", job.Stage)
	}
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("stage", string(job.Stage))
	msg.Metadata.Set("document_id", job.DocumentId.String())

	return p.publisher.Publish(p.topicName, msg)
}

func (p *publisherService) Start(ctx context.Context, job pipeline.Job) error {
	return p.Publish(ctx, job)
}
