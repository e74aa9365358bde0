package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"project-memory-be/internal/dto"
	"project-memory-be/internal/entity"
	"project-memory-be/internal/repository/specification"
	"project-memory-be/internal/repository/unitofwork"
	"project-memory-be/pkg/content"
	"project-memory-be/pkg/errs"
	"project-memory-be/pkg/gateway"
	"project-memory-be/pkg/similarity"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

const (
	FnEmbedStep       = "embed-step"
	FnSuggestDocument = "suggest-document"

	MaxSuggestions = 5
)

type ISuggestionService interface {
	SuggestSteps(ctx context.Context, userId uuid.UUID, req *dto.SuggestStepsRequest) (*dto.SuggestStepsResponse, error)
}

type suggestionService struct {
	uowFactory     unitofwork.RepositoryFactory
	gateway        gateway.IGateway
	embeddingModel string
	stepVectors    *cache.Cache
}

// NewSuggestionService caches step vectors per embedding model for an hour.
func NewSuggestionService(uowFactory unitofwork.RepositoryFactory, gw gateway.IGateway, embeddingModel string) ISuggestionService {
	return &suggestionService{
		uowFactory:     uowFactory,
		gateway:        gw,
		embeddingModel: embeddingModel,
		stepVectors:    cache.New(1*time.Hour, 10*time.Minute),
	}
}

func stepText(step *entity.Step) string {
	return strings.TrimSpace(step.Name + "\n" + step.Description)
}

func (s *suggestionService) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return s.embeddingModel + ":" + hex.EncodeToString(sum[:])
}

func (s *suggestionService) stepVector(ctx context.Context, caller gateway.Caller, step *entity.Step) ([]float32, error) {
	text := stepText(step)
	key := s.cacheKey(text)
	if v, found := s.stepVectors.Get(key); found {
		return v.([]float32), nil
	}
	vec, err := s.gateway.Embed(ctx, caller, FnEmbedStep, text)
	if err != nil {
		return nil, err
	}
	s.stepVectors.Set(key, vec, cache.DefaultExpiration)
	return vec, nil
}

// SuggestSteps ranks the project's steps by similarity to the document text.
func (s *suggestionService) SuggestSteps(ctx context.Context, userId uuid.UUID, req *dto.SuggestStepsRequest) (*dto.SuggestStepsResponse, error) {
	if err := ensureProjectAccess(ctx, s.uowFactory, userId, req.ProjectId); err != nil {
		return nil, err
	}
	text := content.Normalize(req.DocumentText)
	if text == "" {
		return nil, errs.ErrInvalidRequest.WithMessage("document_text is empty")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	steps, err := uow.StepRepository().FindAll(ctx,
		specification.ByProjectID{ProjectID: req.ProjectId},
		specification.OrderBy{Field: "position"},
	)
	if err != nil {
		return nil, fmt.Errorf("load steps: %w", err)
	}
	res := &dto.SuggestStepsResponse{Suggestions: []dto.StepSuggestion{}}
	if len(steps) == 0 {
		return res, nil
	}

	settings, err := uow.UserAiSettingsRepository().FindOne(ctx, specification.ByUserID{UserID: userId})
	if err != nil {
		return nil, fmt.Errorf("load ai settings: %w", err)
	}
	caller := gateway.CallerFromSettings(req.ProjectId, userId, settings)

	query, err := s.gateway.Embed(ctx, caller, FnSuggestDocument, text)
	if err != nil {
		return nil, err
	}

	corpus := make([]similarity.Candidate[*entity.Step], 0, len(steps))
	for _, step := range steps {
		vec, err := s.stepVector(ctx, caller, step)
		if err != nil {
			return nil, err
		}
		corpus = append(corpus, similarity.Candidate[*entity.Step]{Item: step, Vector: vec})
	}

	for _, hit := range similarity.Search(query, corpus, MaxSuggestions) {
		res.Suggestions = append(res.Suggestions, dto.StepSuggestion{
			StepId:      hit.Item.Id,
			StepName:    hit.Item.Name,
			Description: hit.Item.Description,
			Score:       hit.Score,
		})
	}
	return res, nil
}
