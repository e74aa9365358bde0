package service

import (
	"context"
	"fmt"

	"project-memory-be/internal/dto"
	"project-memory-be/internal/pkg/logger"
	"project-memory-be/internal/repository/specification"
	"project-memory-be/internal/repository/unitofwork"
	"project-memory-be/pkg/errs"
	"project-memory-be/pkg/pipeline"

	"github.com/google/uuid"
)

const memoryModule = "MEMORY"

// IMemoryService backs the memory endpoints. Every call is scoped to a
// project owned by userId.
type IMemoryService interface {
	Trigger(ctx context.Context, userId uuid.UUID, req *dto.TriggerPipelineRequest) (*dto.TriggerPipelineResponse, error)
	PublishOrDisconnect(ctx context.Context, userId uuid.UUID, req *dto.PublishMemoryRequest) (*dto.PublishMemoryResponse, error)
	EmbedChunks(ctx context.Context, userId uuid.UUID, req *dto.EmbedChunksRequest) (*dto.EmbedChunksResponse, error)
	RecomputeProfile(ctx context.Context, userId uuid.UUID, req *dto.RecomputeProfileRequest) (*dto.RecomputeProfileResponse, error)
}

type memoryService struct {
	uowFactory unitofwork.RepositoryFactory
	pipeline   IPipelineService
	publisher  IPublisherService
	logger     logger.ILogger
}

func NewMemoryService(
	uowFactory unitofwork.RepositoryFactory,
	pipelineService IPipelineService,
	publisher IPublisherService,
	log logger.ILogger,
) IMemoryService {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &memoryService{
		uowFactory: uowFactory,
		pipeline:   pipelineService,
		publisher:  publisher,
		logger:     log,
	}
}

// ensureProjectAccess reports NotFound for projects the user does not own.
func ensureProjectAccess(ctx context.Context, uowFactory unitofwork.RepositoryFactory, userId, projectId uuid.UUID) error {
	uow := uowFactory.NewUnitOfWork(ctx)
	project, err := uow.ProjectRepository().FindOne(ctx,
		specification.ByID{ID: projectId},
		specification.ProjectOwnedBy{UserID: userId},
	)
	if err != nil {
		return fmt.Errorf("load project: %w", err)
	}
	if project == nil {
		return errs.ErrNotFound.WithMessage("project not found")
	}
	return nil
}

// resolveProject returns the project the request is scoped to. Without an
// explicit project id the document's own project is checked instead.
func (s *memoryService) resolveProject(ctx context.Context, userId, documentId, projectId uuid.UUID) (uuid.UUID, error) {
	if projectId == uuid.Nil {
		uow := s.uowFactory.NewUnitOfWork(ctx)
		doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: documentId})
		if err != nil {
			return uuid.Nil, fmt.Errorf("load document: %w", err)
		}
		if doc == nil {
			return uuid.Nil, errs.ErrNotFound.WithMessage("document not found")
		}
		projectId = doc.ProjectId
	}
	if err := ensureProjectAccess(ctx, s.uowFactory, userId, projectId); err != nil {
		return uuid.Nil, err
	}
	return projectId, nil
}

// queue hands the rest of the chain to the consumer. The synchronous part
// already succeeded, so a queueing failure is only logged.
func (s *memoryService) queue(ctx context.Context, job pipeline.Job) {
	if err := s.publisher.Publish(ctx, job); err != nil {
		s.logger.Error(memoryModule, "Failed to queue pipeline stage", map[string]interface{}{
			"document_id": job.DocumentId.String(),
			"stage":       string(job.Stage),
			"error":       err.Error(),
		})
	}
}

func (s *memoryService) Trigger(ctx context.Context, userId uuid.UUID, req *dto.TriggerPipelineRequest) (*dto.TriggerPipelineResponse, error) {
	projectId, err := s.resolveProject(ctx, userId, req.DocumentId, req.ProjectId)
	if err != nil {
		return nil, err
	}

	ref := DocumentRef{DocumentId: req.DocumentId, ProjectId: projectId, UserId: userId}
	doc, err := s.pipeline.Summarize(ctx, ref)
	if err != nil {
		return nil, err
	}

	s.queue(ctx, pipeline.Job{
		DocumentId: doc.Id,
		ProjectId:  projectId,
		UserId:     userId,
		Stage:      pipeline.Next(pipeline.StageSummarize, pipeline.DocumentState{}),
		Origin:     "manual:trigger",
	})

	return &dto.TriggerPipelineResponse{
		Summary:      doc.Summary,
		KeyDecisions: doc.KeyDecisions,
	}, nil
}

func (s *memoryService) PublishOrDisconnect(ctx context.Context, userId uuid.UUID, req *dto.PublishMemoryRequest) (*dto.PublishMemoryResponse, error) {
	projectId, err := s.resolveProject(ctx, userId, req.DocumentId, req.ProjectId)
	if err != nil {
		return nil, err
	}
	ref := DocumentRef{DocumentId: req.DocumentId, ProjectId: projectId, UserId: userId}
	profileJob := pipeline.Job{
		DocumentId: req.DocumentId,
		ProjectId:  projectId,
		UserId:     userId,
		Stage:      pipeline.StageRecomputeProfile,
		Origin:     "manual:" + req.Action,
	}

	switch req.Action {
	case dto.MemoryActionPublish:
		doc, err := s.pipeline.PublishMemory(ctx, ref)
		if err != nil {
			return nil, err
		}
		s.queue(ctx, profileJob)
		return &dto.PublishMemoryResponse{
			Summary:      doc.Summary,
			KeyDecisions: doc.KeyDecisions,
			Tags:         doc.Tags,
		}, nil
	case dto.MemoryActionDisconnect:
		if _, err := s.pipeline.DisconnectMemory(ctx, ref); err != nil {
			return nil, err
		}
		s.queue(ctx, profileJob)
		return &dto.PublishMemoryResponse{Message: "Document removed from project memory"}, nil
	default:
		return nil, errs.ErrInvalidRequest.WithMessage("action must be publish or disconnect")
	}
}

func (s *memoryService) EmbedChunks(ctx context.Context, userId uuid.UUID, req *dto.EmbedChunksRequest) (*dto.EmbedChunksResponse, error) {
	projectId, err := s.resolveProject(ctx, userId, req.DocumentId, req.ProjectId)
	if err != nil {
		return nil, err
	}

	processed, err := s.pipeline.EmbedChunks(ctx, DocumentRef{DocumentId: req.DocumentId, ProjectId: projectId, UserId: userId})
	if err != nil {
		return nil, err
	}
	return &dto.EmbedChunksResponse{ProcessedChunks: processed}, nil
}

func (s *memoryService) RecomputeProfile(ctx context.Context, userId uuid.UUID, req *dto.RecomputeProfileRequest) (*dto.RecomputeProfileResponse, error) {
	if err := ensureProjectAccess(ctx, s.uowFactory, userId, req.ProjectId); err != nil {
		return nil, err
	}

	profile, err := s.pipeline.RecomputeProfile(ctx, req.ProjectId, userId)
	if err != nil {
		return nil, err
	}
	return &dto.RecomputeProfileResponse{ProjectProfile: profile.Profile}, nil
}
