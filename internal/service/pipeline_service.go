package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"project-memory-be/internal/entity"
	"project-memory-be/internal/pkg/logger"
	"project-memory-be/internal/repository/specification"
	"project-memory-be/internal/repository/unitofwork"
	"project-memory-be/pkg/content"
	"project-memory-be/pkg/errs"
	"project-memory-be/pkg/events"
	"project-memory-be/pkg/gateway"
	"project-memory-be/pkg/metrics"
	"project-memory-be/pkg/pipeline"
	"project-memory-be/pkg/utils"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const pipelineModule = "PIPELINE"

// Usage accounting names, one per model call site.
const (
	FnSummarizeDocument  = "summarize-document"
	FnSummarizePublish   = "summarize-publish"
	FnEmbedChunk         = "embed-chunk"
	FnEmbedStepMemory    = "embed-step-memory"
	FnEmbedProjectMemory = "embed-project-memory"
	FnRecomputeProfile   = "recompute-profile"
)

// DocumentRef addresses a document on behalf of a user. A nil ProjectId
// accepts the document's own project.
type DocumentRef struct {
	DocumentId uuid.UUID
	ProjectId  uuid.UUID
	UserId     uuid.UUID
}

func refFromJob(job pipeline.Job) DocumentRef {
	return DocumentRef{DocumentId: job.DocumentId, ProjectId: job.ProjectId, UserId: job.UserId}
}

type PipelineConfig struct {
	ChunkSize    int
	ChunkOverlap int
}

type IPipelineService interface {
	Summarize(ctx context.Context, ref DocumentRef) (*entity.Document, error)
	Chunk(ctx context.Context, ref DocumentRef) (int, error)
	EmbedChunks(ctx context.Context, ref DocumentRef) (int, error)
	EmbedStepMemory(ctx context.Context, ref DocumentRef) error
	PublishMemory(ctx context.Context, ref DocumentRef) (*entity.Document, error)
	DisconnectMemory(ctx context.Context, ref DocumentRef) (*entity.Document, error)
	RecomputeProfile(ctx context.Context, projectId, userId uuid.UUID) (*entity.ProjectProfile, error)

	// RunStage runs job.Stage and returns the job for the stage that follows,
	// positioned at pipeline.StageIdle when the chain is done.
	RunStage(ctx context.Context, job pipeline.Job) (pipeline.Job, error)
	// RunChain runs stages in order until the chain stops or a stage fails.
	RunChain(ctx context.Context, job pipeline.Job) ([]pipeline.Stage, error)
}

type pipelineService struct {
	uowFactory unitofwork.RepositoryFactory
	gateway    gateway.IGateway
	publisher  events.Publisher
	metrics    *metrics.Metrics
	logger     logger.ILogger
	tracer     trace.Tracer
	cfg        PipelineConfig
}

func NewPipelineService(
	uowFactory unitofwork.RepositoryFactory,
	gw gateway.IGateway,
	publisher events.Publisher,
	m *metrics.Metrics,
	log logger.ILogger,
	cfg PipelineConfig,
) IPipelineService {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 1500
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		cfg.ChunkOverlap = 200
	}
	if publisher == nil {
		publisher = events.NewSinkPublisher(nil, log)
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &pipelineService{
		uowFactory: uowFactory,
		gateway:    gw,
		publisher:  publisher,
		metrics:    m,
		logger:     log,
		tracer:     otel.Tracer("project-memory-be/pipeline"),
		cfg:        cfg,
	}
}

// loadDocument returns NotFound for missing documents and for documents
// outside ref.ProjectId.
func (s *pipelineService) loadDocument(ctx context.Context, uow unitofwork.UnitOfWork, ref DocumentRef, specs ...specification.Specification) (*entity.Document, error) {
	specs = append([]specification.Specification{specification.ByID{ID: ref.DocumentId}}, specs...)
	doc, err := uow.DocumentRepository().FindOne(ctx, specs...)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	if doc == nil || (ref.ProjectId != uuid.Nil && doc.ProjectId != ref.ProjectId) {
		return nil, errs.ErrNotFound.WithMessage("document not found")
	}
	return doc, nil
}

func (s *pipelineService) loadStep(ctx context.Context, uow unitofwork.UnitOfWork, stepId uuid.UUID) (*entity.Step, error) {
	step, err := uow.StepRepository().FindOne(ctx, specification.ByID{ID: stepId})
	if err != nil {
		return nil, fmt.Errorf("load step: %w", err)
	}
	if step == nil {
		return &entity.Step{Id: stepId}, nil
	}
	return step, nil
}

func (s *pipelineService) caller(ctx context.Context, uow unitofwork.UnitOfWork, projectId, userId uuid.UUID) (gateway.Caller, error) {
	settings, err := uow.UserAiSettingsRepository().FindOne(ctx, specification.ByUserID{UserID: userId})
	if err != nil {
		return gateway.Caller{}, fmt.Errorf("load ai settings: %w", err)
	}
	return gateway.CallerFromSettings(projectId, userId, settings), nil
}

func placeholderFields(doc *entity.Document, stepName string) {
	doc.Summary = gateway.PlaceholderSummary
	doc.KeyDecisions = gateway.PlaceholderDecisions()
	doc.Tags = gateway.NormalizeTags(nil, gateway.TagsFromName(stepName))
}

func stepPurpose(step *entity.Step) string {
	if step.Name == "" {
		return ""
	}
	return fmt.Sprintf("The document belongs to the project step %q.", step.Name)
}

func (s *pipelineService) Summarize(ctx context.Context, ref DocumentRef) (*entity.Document, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	doc, err := s.loadDocument(ctx, uow, ref)
	if err != nil {
		return nil, err
	}
	step, err := s.loadStep(ctx, uow, doc.StepId)
	if err != nil {
		return nil, err
	}

	text := content.Normalize(doc.Content)
	if text == "" {
		placeholderFields(doc, step.Name)
	} else {
		caller, err := s.caller(ctx, uow, doc.ProjectId, ref.UserId)
		if err != nil {
			return nil, err
		}
		res, err := s.gateway.Summarize(ctx, caller, text, gateway.SummaryConstraints{
			Function:     FnSummarizeDocument,
			Purpose:      stepPurpose(step),
			MinSentences: 2,
			MaxSentences: 4,
			MaxDecisions: 7,
			FallbackTags: gateway.TagsFromName(step.Name),
		})
		if err != nil {
			return nil, err
		}
		doc.Summary = res.Summary
		doc.KeyDecisions = res.KeyDecisions
		doc.Tags = res.Tags
	}

	now := time.Now()
	doc.LastSummarizedAt = &now
	if err := uow.DocumentRepository().SaveDerived(ctx, doc); err != nil {
		return nil, errs.Wrap(errs.ErrStoreWriteFailed, err)
	}

	s.logger.Info(pipelineModule, "Document summarized", map[string]interface{}{
		"document_id": doc.Id.String(),
		"decisions":   len(doc.KeyDecisions),
		"placeholder": text == "",
	})
	return doc, nil
}

func contentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Chunk replaces the document's chunk set. A chunk keeps its previous vector
// only when the chunk at the same index had identical text.
func (s *pipelineService) Chunk(ctx context.Context, ref DocumentRef) (int, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	doc, err := s.loadDocument(ctx, uow, ref)
	if err != nil {
		return 0, err
	}

	previous, err := uow.DocumentChunkRepository().FindAll(ctx,
		specification.ByDocumentID{DocumentID: doc.Id},
		specification.OrderBy{Field: "chunk_index"},
	)
	if err != nil {
		return 0, fmt.Errorf("load chunks: %w", err)
	}
	prior := make(map[int]*entity.DocumentChunk, len(previous))
	for _, c := range previous {
		prior[c.ChunkIndex] = c
	}

	pieces := utils.SplitText(content.Normalize(doc.Content), s.cfg.ChunkSize, s.cfg.ChunkOverlap)
	chunks := make([]*entity.DocumentChunk, 0, len(pieces))
	carried := 0
	for i, piece := range pieces {
		chunk := &entity.DocumentChunk{
			DocumentId:  doc.Id,
			ProjectId:   doc.ProjectId,
			ChunkIndex:  i,
			Content:     piece,
			ContentHash: contentHash(piece),
		}
		if old, ok := prior[i]; ok && old.ContentHash == chunk.ContentHash && len(old.Embedding) > 0 {
			chunk.Embedding = old.Embedding
			carried++
		}
		chunks = append(chunks, chunk)
	}

	if err := uow.Begin(ctx); err != nil {
		return 0, errs.Wrap(errs.ErrStoreWriteFailed, err)
	}
	defer uow.Rollback()

	if err := uow.DocumentChunkRepository().DeleteByDocumentId(ctx, doc.Id); err != nil {
		return 0, errs.Wrap(errs.ErrStoreWriteFailed, err)
	}
	if err := uow.DocumentChunkRepository().CreateBulk(ctx, chunks); err != nil {
		return 0, errs.Wrap(errs.ErrStoreWriteFailed, err)
	}
	if err := uow.Commit(); err != nil {
		return 0, errs.Wrap(errs.ErrStoreWriteFailed, err)
	}

	s.logger.Info(pipelineModule, "Document chunked", map[string]interface{}{
		"document_id": doc.Id.String(),
		"chunks":      len(chunks),
		"carried":     carried,
	})
	return len(chunks), nil
}

// EmbedChunks embeds pending chunks one at a time in index order. Each vector
// is committed on its own, so a failure keeps the chunks embedded so far.
func (s *pipelineService) EmbedChunks(ctx context.Context, ref DocumentRef) (int, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	doc, err := s.loadDocument(ctx, uow, ref)
	if err != nil {
		return 0, err
	}

	pending, err := uow.DocumentChunkRepository().FindAll(ctx,
		specification.ByDocumentID{DocumentID: doc.Id},
		specification.PendingEmbedding{},
		specification.OrderBy{Field: "chunk_index"},
	)
	if err != nil {
		return 0, fmt.Errorf("load pending chunks: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	caller, err := s.caller(ctx, uow, doc.ProjectId, ref.UserId)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, chunk := range pending {
		vec, err := s.gateway.Embed(ctx, caller, FnEmbedChunk, chunk.Content)
		if err != nil {
			s.logger.Warn(pipelineModule, "Chunk embedding stopped", map[string]interface{}{
				"document_id": doc.Id.String(),
				"chunk_index": chunk.ChunkIndex,
				"processed":   processed,
				"error":       err.Error(),
			})
			return processed, err
		}
		if err := uow.DocumentChunkRepository().UpdateEmbedding(ctx, chunk.Id, vec); err != nil {
			return processed, errs.Wrap(errs.ErrStoreWriteFailed, err)
		}
		processed++
	}

	s.logger.Info(pipelineModule, "Chunks embedded", map[string]interface{}{
		"document_id": doc.Id.String(),
		"processed":   processed,
	})
	return processed, nil
}

func (s *pipelineService) EmbedStepMemory(ctx context.Context, ref DocumentRef) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	doc, err := s.loadDocument(ctx, uow, ref)
	if err != nil {
		return err
	}
	if strings.TrimSpace(doc.Summary) == "" {
		return errs.ErrInvalidRequest.WithMessage("document has not been summarized")
	}

	caller, err := s.caller(ctx, uow, doc.ProjectId, ref.UserId)
	if err != nil {
		return err
	}
	text := pipeline.MemoryText("", doc.Summary, doc.KeyDecisions)
	vec, err := s.gateway.Embed(ctx, caller, FnEmbedStepMemory, text)
	if err != nil {
		return err
	}

	err = uow.StepMemoryRepository().Upsert(ctx, &entity.StepMemoryEmbedding{
		DocumentId: doc.Id,
		ProjectId:  doc.ProjectId,
		StepId:     doc.StepId,
		Content:    text,
		Embedding:  vec,
	})
	if err != nil {
		return errs.Wrap(errs.ErrStoreWriteFailed, err)
	}
	return nil
}

// PublishMemory upserts the document's memory entry. Publishing an empty
// document removes its entry instead.
func (s *pipelineService) PublishMemory(ctx context.Context, ref DocumentRef) (*entity.Document, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	doc, err := s.loadDocument(ctx, uow, ref)
	if err != nil {
		return nil, err
	}
	if doc.Status != entity.DocumentStatusPublished {
		return nil, errs.ErrInvalidRequest.WithMessage("document is not published")
	}
	step, err := s.loadStep(ctx, uow, doc.StepId)
	if err != nil {
		return nil, err
	}
	fallbackTags := gateway.TagsFromName(step.Name)
	now := time.Now()

	text := content.Normalize(doc.Content)
	if text == "" {
		placeholderFields(doc, step.Name)
		doc.LastSummarizedAt = &now
		doc.LastPublishedAt = nil

		if err := uow.Begin(ctx); err != nil {
			return nil, errs.Wrap(errs.ErrStoreWriteFailed, err)
		}
		defer uow.Rollback()
		if err := uow.ProjectMemoryRepository().DeleteByDocumentId(ctx, doc.Id); err != nil {
			return nil, errs.Wrap(errs.ErrStoreWriteFailed, err)
		}
		if err := uow.DocumentRepository().SaveDerived(ctx, doc); err != nil {
			return nil, errs.Wrap(errs.ErrStoreWriteFailed, err)
		}
		if err := uow.Commit(); err != nil {
			return nil, errs.Wrap(errs.ErrStoreWriteFailed, err)
		}

		s.publisher.PublishMemoryDisconnected(ctx, doc.Id, doc.ProjectId)
		s.logger.Info(pipelineModule, "Empty document published, memory entry removed", map[string]interface{}{
			"document_id": doc.Id.String(),
		})
		return doc, nil
	}

	caller, err := s.caller(ctx, uow, doc.ProjectId, ref.UserId)
	if err != nil {
		return nil, err
	}

	if doc.SummaryIsFresh() {
		doc.KeyDecisions = gateway.NormalizeDecisions(doc.KeyDecisions, 7)
		doc.Tags = gateway.NormalizeTags(doc.Tags, fallbackTags)
	} else {
		res, err := s.gateway.Summarize(ctx, caller, text, gateway.SummaryConstraints{
			Function:     FnSummarizePublish,
			Purpose:      stepPurpose(step),
			MinSentences: 2,
			MaxSentences: 3,
			MaxDecisions: 5,
			FallbackTags: fallbackTags,
		})
		if err != nil {
			return nil, err
		}
		doc.Summary = res.Summary
		doc.KeyDecisions = res.KeyDecisions
		doc.Tags = res.Tags
		doc.LastSummarizedAt = &now
	}

	vec, err := s.gateway.Embed(ctx, caller, FnEmbedProjectMemory, pipeline.MemoryText(doc.Title, doc.Summary, doc.KeyDecisions))
	if err != nil {
		return nil, err
	}

	stepId := doc.StepId
	entry := &entity.ProjectMemoryEntry{
		DocumentId:   doc.Id,
		ProjectId:    doc.ProjectId,
		StepId:       &stepId,
		Title:        doc.Title,
		Summary:      doc.Summary,
		KeyDecisions: doc.KeyDecisions,
		Tags:         doc.Tags,
		Embedding:    vec,
	}
	if step.PhaseId != uuid.Nil {
		phaseId := step.PhaseId
		entry.PhaseId = &phaseId
	}
	doc.LastPublishedAt = &now

	if err := uow.Begin(ctx); err != nil {
		return nil, errs.Wrap(errs.ErrStoreWriteFailed, err)
	}
	defer uow.Rollback()
	if err := uow.ProjectMemoryRepository().Upsert(ctx, entry); err != nil {
		return nil, errs.Wrap(errs.ErrStoreWriteFailed, err)
	}
	if err := uow.DocumentRepository().SaveDerived(ctx, doc); err != nil {
		return nil, errs.Wrap(errs.ErrStoreWriteFailed, err)
	}
	if err := uow.Commit(); err != nil {
		return nil, errs.Wrap(errs.ErrStoreWriteFailed, err)
	}

	s.publisher.PublishMemoryPublished(ctx, doc.Id, doc.ProjectId, entry.Id)
	s.logger.Info(pipelineModule, "Memory entry published", map[string]interface{}{
		"document_id": doc.Id.String(),
		"entry_id":    entry.Id.String(),
	})
	return doc, nil
}

// DisconnectMemory removes the document from project memory. It succeeds
// when there is nothing to remove.
func (s *pipelineService) DisconnectMemory(ctx context.Context, ref DocumentRef) (*entity.Document, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	doc, err := s.loadDocument(ctx, uow, ref)
	if err != nil {
		return nil, err
	}

	doc.Summary = ""
	doc.KeyDecisions = nil
	doc.Tags = nil
	doc.LastSummarizedAt = nil
	doc.LastPublishedAt = nil

	if err := uow.Begin(ctx); err != nil {
		return nil, errs.Wrap(errs.ErrStoreWriteFailed, err)
	}
	defer uow.Rollback()
	if err := uow.ProjectMemoryRepository().DeleteByDocumentId(ctx, doc.Id); err != nil {
		return nil, errs.Wrap(errs.ErrStoreWriteFailed, err)
	}
	if err := uow.StepMemoryRepository().DeleteByDocumentId(ctx, doc.Id); err != nil {
		return nil, errs.Wrap(errs.ErrStoreWriteFailed, err)
	}
	if err := uow.DocumentRepository().SaveDerived(ctx, doc); err != nil {
		return nil, errs.Wrap(errs.ErrStoreWriteFailed, err)
	}
	if err := uow.Commit(); err != nil {
		return nil, errs.Wrap(errs.ErrStoreWriteFailed, err)
	}

	s.publisher.PublishMemoryDisconnected(ctx, doc.Id, doc.ProjectId)
	s.logger.Info(pipelineModule, "Memory entry disconnected", map[string]interface{}{
		"document_id": doc.Id.String(),
	})
	return doc, nil
}

const profileSystemPrompt = `You maintain a short running digest of a product project.
Write at most three plain sentences that capture what the project is and the direction set by its most recent decisions.
Do not use markdown, lists or headings.`

// RecomputeProfile regenerates the project profile from scratch.
func (s *pipelineService) RecomputeProfile(ctx context.Context, projectId, userId uuid.UUID) (*entity.ProjectProfile, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	project, err := uow.ProjectRepository().FindOne(ctx, specification.ByID{ID: projectId})
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	if project == nil {
		return nil, errs.ErrNotFound.WithMessage("project not found")
	}

	entries, err := uow.ProjectMemoryRepository().FindAll(ctx,
		specification.ByProjectID{ProjectID: projectId},
		specification.OrderBy{Field: "updated_at", Desc: true},
		specification.Pagination{Limit: pipeline.ProfileEntries},
	)
	if err != nil {
		return nil, fmt.Errorf("load memory entries: %w", err)
	}

	digest := ""
	if len(entries) > 0 {
		caller, err := s.caller(ctx, uow, projectId, userId)
		if err != nil {
			return nil, err
		}
		digest, err = s.gateway.Complete(ctx, caller, FnRecomputeProfile, profileSystemPrompt, pipeline.ProfilePrompt(project, entries), 200)
		if err != nil {
			return nil, err
		}
	}

	sources := make([]string, len(entries))
	for i, e := range entries {
		sources[i] = e.Id.String()
	}
	profile := &entity.ProjectProfile{
		ProjectId:      projectId,
		Profile:        pipeline.ComposeProfile(project, digest, entries),
		SourceEntryIds: sources,
	}
	if err := uow.ProjectProfileRepository().Upsert(ctx, profile); err != nil {
		return nil, errs.Wrap(errs.ErrStoreWriteFailed, err)
	}

	s.publisher.PublishProfileRecomputed(ctx, projectId, len(entries))
	s.logger.Info(pipelineModule, "Project profile recomputed", map[string]interface{}{
		"project_id": projectId.String(),
		"entries":    len(entries),
	})
	return profile, nil
}

func (s *pipelineService) documentState(ctx context.Context, doc *entity.Document) (pipeline.DocumentState, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	entry, err := uow.ProjectMemoryRepository().FindOne(ctx, specification.ByDocumentID{DocumentID: doc.Id})
	if err != nil {
		return pipeline.DocumentState{}, fmt.Errorf("load memory entry: %w", err)
	}
	return pipeline.DocumentState{
		Published:      doc.Status == entity.DocumentStatusPublished,
		HasMemoryEntry: entry != nil,
	}, nil
}

func (s *pipelineService) RunStage(ctx context.Context, job pipeline.Job) (pipeline.Job, error) {
	if job.Stage == pipeline.StageIdle {
		return job, nil
	}

	ctx, span := s.tracer.Start(ctx, "pipeline."+string(job.Stage), trace.WithAttributes(
		attribute.String("document.id", job.DocumentId.String()),
		attribute.String("project.id", job.ProjectId.String()),
	))
	defer span.End()
	started := time.Now()

	next, err := s.runStage(ctx, &job)

	s.metrics.ObserveStage(string(job.Stage), err, time.Since(started))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return job.Advance(pipeline.StageIdle), err
	}
	return job.Advance(next), nil
}

// runStage fills job.ProjectId from the document when the job lacks it.
func (s *pipelineService) runStage(ctx context.Context, job *pipeline.Job) (pipeline.Stage, error) {
	ref := refFromJob(*job)
	var doc *entity.Document
	var err error

	switch job.Stage {
	case pipeline.StageSummarize:
		doc, err = s.Summarize(ctx, ref)
	case pipeline.StageChunk:
		if _, err = s.Chunk(ctx, ref); err == nil {
			doc, err = s.loadDocument(ctx, s.uowFactory.NewUnitOfWork(ctx), ref)
		}
	case pipeline.StageEmbedChunks:
		if _, err = s.EmbedChunks(ctx, ref); err == nil {
			doc, err = s.loadDocument(ctx, s.uowFactory.NewUnitOfWork(ctx), ref)
		}
	case pipeline.StageEmbedStepMemory:
		if err = s.EmbedStepMemory(ctx, ref); err == nil {
			doc, err = s.loadDocument(ctx, s.uowFactory.NewUnitOfWork(ctx), ref)
		}
	case pipeline.StagePublishMemory:
		doc, err = s.PublishMemory(ctx, ref)
	case pipeline.StageDisconnectMemory:
		doc, err = s.DisconnectMemory(ctx, ref)
	case pipeline.StageRecomputeProfile:
		if job.ProjectId == uuid.Nil {
			if doc, err = s.loadDocument(ctx, s.uowFactory.NewUnitOfWork(ctx), ref); err != nil {
				return pipeline.StageIdle, err
			}
			job.ProjectId = doc.ProjectId
		}
		_, err = s.RecomputeProfile(ctx, job.ProjectId, job.UserId)
		return pipeline.StageIdle, err
	default:
		return pipeline.StageIdle, errs.ErrInvalidRequest.WithMessage(fmt.Sprintf("unknown stage %q", job.Stage))
	}
	if err != nil {
		return pipeline.StageIdle, err
	}

	job.ProjectId = doc.ProjectId
	state, err := s.documentState(ctx, doc)
	if err != nil {
		return pipeline.StageIdle, err
	}
	return pipeline.Next(job.Stage, state), nil
}

func (s *pipelineService) RunChain(ctx context.Context, job pipeline.Job) ([]pipeline.Stage, error) {
	var ran []pipeline.Stage
	for job.Stage != pipeline.StageIdle {
		ran = append(ran, job.Stage)
		next, err := s.RunStage(ctx, job)
		if err != nil {
			return ran, fmt.Errorf("stage %s: %w", job.Stage, err)
		}
		job = next
	}
	return ran, nil
}
