package service

import (
	"context"
	"fmt"
	"time"

	"project-memory-be/internal/dto"
	"project-memory-be/internal/entity"
	"project-memory-be/internal/pkg/logger"
	"project-memory-be/internal/repository/specification"
	"project-memory-be/internal/repository/unitofwork"
	"project-memory-be/pkg/errs"
	"project-memory-be/pkg/events"

	"github.com/google/uuid"
)

const documentModule = "DOCUMENT"

type IDocumentService interface {
	SaveContent(ctx context.Context, userId uuid.UUID, req *dto.SaveContentRequest) (*dto.SaveContentResponse, error)
	ChangeStatus(ctx context.Context, userId uuid.UUID, req *dto.ChangeStatusRequest) (*dto.ChangeStatusResponse, error)
}

type documentService struct {
	uowFactory unitofwork.RepositoryFactory
	publisher  events.Publisher
	logger     logger.ILogger
}

func NewDocumentService(uowFactory unitofwork.RepositoryFactory, publisher events.Publisher, log logger.ILogger) IDocumentService {
	if log == nil {
		log = logger.NewNopLogger()
	}
	if publisher == nil {
		publisher = events.NewSinkPublisher(nil, log)
	}
	return &documentService{
		uowFactory: uowFactory,
		publisher:  publisher,
		logger:     log,
	}
}

// SaveContent appends a version and updates the document in one transaction.
// The row lock keeps concurrent saves from reusing a version number.
func (s *documentService) SaveContent(ctx context.Context, userId uuid.UUID, req *dto.SaveContentRequest) (*dto.SaveContentResponse, error) {
	if err := ensureProjectAccess(ctx, s.uowFactory, userId, req.ProjectId); err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, errs.Wrap(errs.ErrStoreWriteFailed, err)
	}
	defer uow.Rollback()

	doc, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: req.DocumentId},
		specification.ForUpdate{},
	)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	if doc == nil || doc.ProjectId != req.ProjectId {
		return nil, errs.ErrNotFound.WithMessage("document not found")
	}

	version := &entity.DocumentVersion{
		DocumentId: doc.Id,
		Version:    doc.CurrentVersion + 1,
		Content:    req.Content,
		CreatedBy:  userId,
	}
	if err := uow.DocumentVersionRepository().Create(ctx, version); err != nil {
		return nil, errs.Wrap(errs.ErrStoreWriteFailed, err)
	}
	if err := uow.DocumentRepository().UpdateContent(ctx, doc.Id, req.Content, version.Version, time.Now()); err != nil {
		return nil, errs.Wrap(errs.ErrStoreWriteFailed, err)
	}
	if err := uow.Commit(); err != nil {
		return nil, errs.Wrap(errs.ErrStoreWriteFailed, err)
	}

	return &dto.SaveContentResponse{DocumentId: doc.Id, Version: version.Version}, nil
}

// ChangeStatus persists the new status and announces the transition; the
// auto-trigger reacts to the event, not to this call.
func (s *documentService) ChangeStatus(ctx context.Context, userId uuid.UUID, req *dto.ChangeStatusRequest) (*dto.ChangeStatusResponse, error) {
	status := entity.DocumentStatus(req.Status)
	if !status.Valid() {
		return nil, errs.ErrInvalidRequest.WithMessage(fmt.Sprintf("unknown status %q", req.Status))
	}
	if err := ensureProjectAccess(ctx, s.uowFactory, userId, req.ProjectId); err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: req.DocumentId})
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	if doc == nil || doc.ProjectId != req.ProjectId {
		return nil, errs.ErrNotFound.WithMessage("document not found")
	}

	res := &dto.ChangeStatusResponse{DocumentId: doc.Id, Status: string(status)}
	if doc.Status == status {
		return res, nil
	}

	if err := uow.DocumentRepository().UpdateStatus(ctx, doc.Id, status); err != nil {
		return nil, errs.Wrap(errs.ErrStoreWriteFailed, err)
	}

	if err := s.publisher.PublishStatusChanged(ctx, doc.Id, doc.ProjectId, userId, string(doc.Status), string(status)); err != nil {
		s.logger.Warn(documentModule, "Status saved but change event was not delivered", map[string]interface{}{
			"document_id": doc.Id.String(),
			"from":        string(doc.Status),
			"to":          string(status),
		})
	}
	return res, nil
}
