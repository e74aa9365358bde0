package service

import (
	"context"
	"fmt"
	"unicode/utf8"

	"project-memory-be/internal/dto"
	"project-memory-be/internal/repository/specification"
	"project-memory-be/internal/repository/unitofwork"
	"project-memory-be/pkg/content"
	"project-memory-be/pkg/errs"
	"project-memory-be/pkg/gateway"

	"github.com/google/uuid"
)

const (
	FnEmbedSearchQuery = "embed-search-query"

	DefaultSearchTopK = 3
	MaxSearchTopK     = 10
	previewChars      = 200
)

type IContextSearchService interface {
	Search(ctx context.Context, userId uuid.UUID, req *dto.ContextSearchRequest) (*dto.ContextSearchResponse, error)
}

type contextSearchService struct {
	uowFactory    unitofwork.RepositoryFactory
	gateway       gateway.IGateway
	minSimilarity float64
}

// NewContextSearchService drops hits whose cosine similarity is below
// minSimilarity.
func NewContextSearchService(uowFactory unitofwork.RepositoryFactory, gw gateway.IGateway, minSimilarity float64) IContextSearchService {
	return &contextSearchService{
		uowFactory:    uowFactory,
		gateway:       gw,
		minSimilarity: minSimilarity,
	}
}

func preview(s string) string {
	if utf8.RuneCountInString(s) <= previewChars {
		return s
	}
	return string([]rune(s)[:previewChars])
}

func (s *contextSearchService) Search(ctx context.Context, userId uuid.UUID, req *dto.ContextSearchRequest) (*dto.ContextSearchResponse, error) {
	if err := ensureProjectAccess(ctx, s.uowFactory, userId, req.ProjectId); err != nil {
		return nil, err
	}
	query := content.Normalize(req.QueryText)
	if query == "" {
		return nil, errs.ErrInvalidRequest.WithMessage("query_text is empty")
	}
	topK := req.TopK
	if topK <= 0 {
		topK = DefaultSearchTopK
	}
	if topK > MaxSearchTopK {
		topK = MaxSearchTopK
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	settings, err := uow.UserAiSettingsRepository().FindOne(ctx, specification.ByUserID{UserID: userId})
	if err != nil {
		return nil, fmt.Errorf("load ai settings: %w", err)
	}
	caller := gateway.CallerFromSettings(req.ProjectId, userId, settings)

	vec, err := s.gateway.Embed(ctx, caller, FnEmbedSearchQuery, query)
	if err != nil {
		return nil, err
	}

	hits, err := uow.ProjectMemoryRepository().SearchSimilarWithScore(ctx, req.ProjectId, vec, topK, s.minSimilarity)
	if err != nil {
		return nil, fmt.Errorf("search memory: %w", err)
	}

	res := &dto.ContextSearchResponse{Results: make([]dto.ContextSearchResult, 0, len(hits))}
	for _, hit := range hits {
		chunkPreview := preview(hit.Entry.Summary)
		chunk, err := uow.DocumentChunkRepository().BestMatch(ctx, hit.Entry.DocumentId, vec)
		if err != nil {
			return nil, fmt.Errorf("load chunk preview: %w", err)
		}
		if chunk != nil {
			chunkPreview = preview(chunk.Content)
		}

		res.Results = append(res.Results, dto.ContextSearchResult{
			DocumentId:     hit.Entry.DocumentId,
			Summary:        hit.Entry.Summary,
			KeyDecisions:   hit.Entry.KeyDecisions,
			Tags:           hit.Entry.Tags,
			ChunkPreview:   chunkPreview,
			RelevanceScore: hit.Similarity,
		})
	}
	return res, nil
}
