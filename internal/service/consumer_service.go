package service

import (
	"context"
	"encoding/json"
	"sync"

	"project-memory-be/internal/pkg/logger"
	"project-memory-be/pkg/errs"
	"project-memory-be/pkg/pipeline"
	"project-memory-be/pkg/trigger"

	"github.com/ThreeDotsLabs/watermill/message"
)

const consumerModule = "CONSUMER"

type IConsumerService interface {
	Consume(ctx context.Context) error
	// Wait blocks until every stage already handed to a worker has finished.
	Wait()
}

// consumerService runs one stage per message and queues the next one, so
// each stage of a document runs strictly after the previous one.
type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	pipeline   IPipelineService
	publisher  IPublisherService
	guard      trigger.InFlightGuard
	logger     logger.ILogger
	workers    chan struct{}
	inFlight   sync.WaitGroup
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	pipelineService IPipelineService,
	publisher IPublisherService,
	guard trigger.InFlightGuard,
	log logger.ILogger,
	workers int,
) IConsumerService {
	if workers <= 0 {
		workers = 4
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		pipeline:   pipelineService,
		publisher:  publisher,
		guard:      guard,
		logger:     log,
		workers:    make(chan struct{}, workers),
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.dispatch(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) Wait() {
	cs.inFlight.Wait()
}

// dispatch acks on receipt; failed stages are not redelivered and wait for
// the next qualifying trigger instead.
func (cs *consumerService) dispatch(ctx context.Context, msg *message.Message) {
	var job pipeline.Job
	if err := json.Unmarshal(msg.Payload, &job); err != nil {
		cs.logger.Error(consumerModule, "Dropping undecodable job", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		msg.Ack()
		return
	}
	msg.Ack()

	cs.inFlight.Add(1)
	cs.workers <- struct{}{}
	go func() {
		defer func() {
			<-cs.workers
			cs.inFlight.Done()
		}()
		cs.process(context.WithoutCancel(ctx), job)
	}()
}

func (cs *consumerService) process(ctx context.Context, job pipeline.Job) {
	next, err := cs.pipeline.RunStage(ctx, job)
	if err != nil {
		details := map[string]interface{}{
			"document_id": job.DocumentId.String(),
			"stage":       string(job.Stage),
			"origin":      job.Origin,
			"error":       err.Error(),
		}
		// Missing documents, disabled features and absent keys end the chain
		// without being a fault of the pipeline itself.
		if errs.IsRequestLevel(err) {
			details["outcome"] = "skipped"
			cs.logger.Warn(consumerModule, "Pipeline stage skipped", details)
		} else {
			details["outcome"] = "failed"
			cs.logger.Error(consumerModule, "Pipeline stage failed", details)
		}
		cs.release(ctx, job)
		return
	}

	if next.Stage == pipeline.StageIdle {
		cs.logger.Info(consumerModule, "Pipeline chain finished", map[string]interface{}{
			"document_id": job.DocumentId.String(),
			"last_stage":  string(job.Stage),
		})
		cs.release(ctx, job)
		return
	}

	if err := cs.publisher.Publish(ctx, next); err != nil {
		cs.logger.Error(consumerModule, "Failed to queue next stage", map[string]interface{}{
			"document_id": job.DocumentId.String(),
			"stage":       string(next.Stage),
			"error":       err.Error(),
		})
		cs.release(ctx, job)
	}
}

func (cs *consumerService) release(ctx context.Context, job pipeline.Job) {
	if !job.Guarded || cs.guard == nil {
		return
	}
	if err := cs.guard.Release(ctx, job.DocumentId); err != nil {
		cs.logger.Error(consumerModule, "Failed to release in-flight guard", map[string]interface{}{
			"document_id": job.DocumentId.String(),
			"error":       err.Error(),
		})
	}
}
