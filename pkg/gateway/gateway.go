// Package gateway is the single path to external language and embedding
// models: key resolution, input budgeting, rate limiting, timeouts, the typed
// summary contract and usage accounting all live here.
package gateway

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"project-memory-be/internal/entity"
	"project-memory-be/internal/pkg/logger"
	"project-memory-be/pkg/embedding"
	"project-memory-be/pkg/errs"
	"project-memory-be/pkg/llm"
	"project-memory-be/pkg/metrics"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const logModule = "GATEWAY"

type LLMFactory func(apiKey string) (llm.LLMProvider, error)

type EmbeddingFactory func(apiKey string) (embedding.EmbeddingProvider, error)

type UsageRecorder interface {
	Record(ctx context.Context, record *entity.AiUsageRecord)
}

// Caller identifies on whose behalf a model call is made.
type Caller struct {
	ProjectId  uuid.UUID
	UserId     uuid.UUID
	AccountKey string
	AiDisabled bool
}

// CallerFromSettings builds a Caller; settings may be nil.
func CallerFromSettings(projectId, userId uuid.UUID, settings *entity.UserAiSettings) Caller {
	c := Caller{ProjectId: projectId, UserId: userId}
	if settings != nil {
		c.AccountKey = settings.ApiKey
		c.AiDisabled = settings.AiDisabled
	}
	return c
}

type Config struct {
	LLMModel          string
	EmbeddingModel    string
	DefaultAPIKey     string
	KeyOptional       bool
	MaxInputChars     int
	MaxEmbedChars     int
	CallTimeout       time.Duration
	RequestsPerSecond float64
	Burst             int
}

type IGateway interface {
	Summarize(ctx context.Context, caller Caller, text string, constraints SummaryConstraints) (*SummaryResult, error)
	Embed(ctx context.Context, caller Caller, function string, text string) ([]float32, error)
	Complete(ctx context.Context, caller Caller, function string, system string, prompt string, maxTokens int) (string, error)
}

type Gateway struct {
	cfg         Config
	newLLM      LLMFactory
	newEmbedder EmbeddingFactory
	usage       UsageRecorder
	limiter     *rate.Limiter
	metrics     *metrics.Metrics
	logger      logger.ILogger
}

var _ IGateway = (*Gateway)(nil)

func New(cfg Config, newLLM LLMFactory, newEmbedder EmbeddingFactory, usage UsageRecorder, m *metrics.Metrics, log logger.ILogger) *Gateway {
	if cfg.MaxInputChars <= 0 {
		cfg.MaxInputChars = DefaultMaxInputChars
	}
	if cfg.MaxEmbedChars <= 0 {
		cfg.MaxEmbedChars = 8000
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Gateway{
		cfg:         cfg,
		newLLM:      newLLM,
		newEmbedder: newEmbedder,
		usage:       usage,
		limiter:     rate.NewLimiter(limit, cfg.Burst),
		metrics:     m,
		logger:      log,
	}
}

func (g *Gateway) resolveKey(caller Caller) (string, error) {
	return ResolveAPIKey(KeySettings{
		AiDisabled:  caller.AiDisabled,
		AccountKey:  caller.AccountKey,
		DefaultKey:  g.cfg.DefaultAPIKey,
		KeyOptional: g.cfg.KeyOptional,
	})
}

// begin waits for a rate-limit slot and returns the per-call deadline context.
func (g *Gateway) begin(ctx context.Context) (context.Context, context.CancelFunc, error) {
	callCtx, cancel := ctx, context.CancelFunc(func() {})
	if g.cfg.CallTimeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, g.cfg.CallTimeout)
	}
	if err := g.limiter.Wait(callCtx); err != nil {
		cancel()
		return nil, nil, err
	}
	return callCtx, cancel, nil
}

func (g *Gateway) record(ctx context.Context, caller Caller, function, model string, input, output int, err error) {
	g.metrics.ObserveModelCall(function, err)
	if err != nil {
		g.logger.Warn(logModule, "Model call failed", map[string]interface{}{
			"function":   function,
			"model":      model,
			"project_id": caller.ProjectId.String(),
			"error":      err.Error(),
		})
	}
	if g.usage == nil {
		return
	}
	g.usage.Record(ctx, &entity.AiUsageRecord{
		Id:           uuid.New(),
		ProjectId:    caller.ProjectId,
		UserId:       caller.UserId,
		FunctionName: function,
		Model:        model,
		InputChars:   input,
		OutputChars:  output,
		Succeeded:    err == nil,
		CreatedAt:    time.Now(),
	})
}

func (g *Gateway) chat(ctx context.Context, caller Caller, function string, messages []llm.Message, opts ...llm.Option) (string, error) {
	key, err := g.resolveKey(caller)
	if err != nil {
		return "", err
	}
	provider, err := g.newLLM(key)
	if err != nil {
		return "", errs.Wrap(errs.ErrMalformedModelResponse, err)
	}

	input := 0
	for _, m := range messages {
		input += utf8.RuneCountInString(m.Content)
	}

	callCtx, cancel, err := g.begin(ctx)
	if err != nil {
		g.record(ctx, caller, function, g.cfg.LLMModel, input, 0, err)
		return "", errs.Wrap(errs.ErrMalformedModelResponse, err)
	}
	defer cancel()

	reply, err := provider.Chat(callCtx, messages, opts...)
	g.record(ctx, caller, function, g.cfg.LLMModel, input, utf8.RuneCountInString(reply), err)
	if err != nil {
		return "", errs.Wrap(errs.ErrMalformedModelResponse, err)
	}
	return reply, nil
}

// Summarize asks the model for the typed summary contract. Upstream failures
// and timeouts surface as ErrMalformedModelResponse.
func (g *Gateway) Summarize(ctx context.Context, caller Caller, text string, constraints SummaryConstraints) (*SummaryResult, error) {
	constraints = constraints.normalized()
	function := constraints.Function
	if function == "" {
		function = "summarize"
	}

	system, user := summaryMessages(TruncateForModel(text, g.cfg.MaxInputChars), constraints)
	reply, err := g.chat(ctx, caller, function,
		[]llm.Message{{Role: "system", Content: system}, {Role: "user", Content: user}},
		llm.WithModel(g.cfg.LLMModel), llm.WithTemperature(0.2), llm.WithMaxTokens(600), llm.WithJSONMode(),
	)
	if err != nil {
		return nil, err
	}
	return DecodeSummary(reply, constraints)
}

// Complete returns free text, used for the profile digest.
func (g *Gateway) Complete(ctx context.Context, caller Caller, function string, system string, prompt string, maxTokens int) (string, error) {
	messages := []llm.Message{{Role: "user", Content: TruncateForModel(prompt, g.cfg.MaxInputChars)}}
	if system != "" {
		messages = append([]llm.Message{{Role: "system", Content: system}}, messages...)
	}
	reply, err := g.chat(ctx, caller, function, messages,
		llm.WithModel(g.cfg.LLMModel), llm.WithTemperature(0.3), llm.WithMaxTokens(maxTokens),
	)
	if err != nil {
		return "", err
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", errs.Wrapf(errs.ErrMalformedModelResponse, "empty completion")
	}
	return reply, nil
}

// Embed returns the vector for text. Any upstream failure, including a reply
// without a vector, is ErrEmbeddingFailed.
func (g *Gateway) Embed(ctx context.Context, caller Caller, function string, text string) ([]float32, error) {
	key, err := g.resolveKey(caller)
	if err != nil {
		return nil, err
	}
	provider, err := g.newEmbedder(key)
	if err != nil {
		return nil, errs.Wrap(errs.ErrEmbeddingFailed, err)
	}

	input := TruncateForModel(text, g.cfg.MaxEmbedChars)
	model := provider.Model()

	callCtx, cancel, err := g.begin(ctx)
	if err != nil {
		g.record(ctx, caller, function, model, utf8.RuneCountInString(input), 0, err)
		return nil, errs.Wrap(errs.ErrEmbeddingFailed, err)
	}
	defer cancel()

	vec, err := provider.Generate(callCtx, input)
	if err == nil && len(vec) == 0 {
		err = errs.Wrapf(errs.ErrEmbeddingFailed, "provider returned no vector")
	}
	g.record(ctx, caller, function, model, utf8.RuneCountInString(input), len(vec), err)
	if err != nil {
		return nil, errs.Wrap(errs.ErrEmbeddingFailed, err)
	}
	return vec, nil
}
