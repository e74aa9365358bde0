package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"project-memory-be/internal/entity"
	"project-memory-be/internal/repository/specification"
	"project-memory-be/pkg/errs"
	"project-memory-be/pkg/events"
	"project-memory-be/pkg/gateway"
	"project-memory-be/pkg/pipeline"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pricingDoc = "<h2>Pricing</h2><p>We target small businesses.</p><p>We will price at $49/mo.</p>"

func longContent(sentences int, tail string) string {
	var b strings.Builder
	for i := 0; i < sentences; i++ {
		fmt.Fprintf(&b, "<p>Paragraph %d covers onboarding flow number %d in detail.</p>", i, i)
	}
	if tail != "" {
		b.WriteString("<p>" + tail + "</p>")
	}
	return b.String()
}

func TestSummarize(t *testing.T) {
	ctx := context.Background()

	t.Run("writes the typed summary contract", func(t *testing.T) {
		f := newFixture()
		doc := f.addDocument("Pricing", pricingDoc, entity.DocumentStatusDraft)

		got, err := f.pipeline().Summarize(ctx, f.ref(doc))
		require.NoError(t, err)

		assert.Equal(t, "We target small businesses and price the product at $49 per month.", got.Summary)
		assert.NotContains(t, got.Summary, "<")
		assert.Equal(t, []string{"Target small businesses", "Price at $49 per month", gateway.PlaceholderDecision}, got.KeyDecisions)
		assert.Equal(t, []string{"pricing", "go-to-market"}, got.Tags)

		stored := f.document(doc.Id)
		assert.Equal(t, got.Summary, stored.Summary)
		assert.NotNil(t, stored.LastSummarizedAt)
		assert.Equal(t, 1, f.usage.count(FnSummarizeDocument))
	})

	t.Run("empty content gets placeholders without a model call", func(t *testing.T) {
		f := newFixture()
		doc := f.addDocument("Pricing", "<p>&nbsp;</p>", entity.DocumentStatusDraft)

		got, err := f.pipeline().Summarize(ctx, f.ref(doc))
		require.NoError(t, err)

		assert.Equal(t, gateway.PlaceholderSummary, got.Summary)
		assert.Equal(t, gateway.PlaceholderDecisions(), got.KeyDecisions)
		assert.Equal(t, []string{"pricing-strategy", "pricing"}, got.Tags)
		assert.Zero(t, f.chat.summarizeN)
		assert.Empty(t, f.usage.records)
	})

	t.Run("unusable reply leaves the document untouched", func(t *testing.T) {
		f := newFixture()
		f.chat.summary = "I cannot help with that."
		doc := f.addDocument("Pricing", pricingDoc, entity.DocumentStatusDraft)

		_, err := f.pipeline().Summarize(ctx, f.ref(doc))
		assert.True(t, errors.Is(err, errs.ErrMalformedModelResponse))
		assert.Empty(t, f.document(doc.Id).Summary)
	})

	t.Run("disabled account makes no call", func(t *testing.T) {
		f := newFixture()
		_ = settingsRepo{f.store}.Upsert(ctx, &entity.UserAiSettings{UserId: f.ownerId, AiDisabled: true})
		doc := f.addDocument("Pricing", pricingDoc, entity.DocumentStatusDraft)

		_, err := f.pipeline().Summarize(ctx, f.ref(doc))
		assert.True(t, errors.Is(err, errs.ErrFeatureDisabled))
		assert.Zero(t, f.chat.summarizeN)
		assert.Empty(t, f.usage.records)
	})
}

func TestDocumentScoping(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	doc := f.addDocument("Pricing", pricingDoc, entity.DocumentStatusPublished)
	svc := f.pipeline()

	foreign := DocumentRef{DocumentId: doc.Id, ProjectId: uuid.New(), UserId: f.ownerId}
	missing := DocumentRef{DocumentId: uuid.New(), ProjectId: f.projectId, UserId: f.ownerId}

	for _, ref := range []DocumentRef{foreign, missing} {
		_, err := svc.Summarize(ctx, ref)
		assert.True(t, errors.Is(err, errs.ErrNotFound))

		_, err = svc.Chunk(ctx, ref)
		assert.True(t, errors.Is(err, errs.ErrNotFound))

		_, err = svc.EmbedChunks(ctx, ref)
		assert.True(t, errors.Is(err, errs.ErrNotFound))

		_, err = svc.PublishMemory(ctx, ref)
		assert.True(t, errors.Is(err, errs.ErrNotFound))

		_, err = svc.DisconnectMemory(ctx, ref)
		assert.True(t, errors.Is(err, errs.ErrNotFound))
	}
	assert.Empty(t, f.usage.records)
}

func TestChunk(t *testing.T) {
	ctx := context.Background()

	t.Run("indices are contiguous from zero", func(t *testing.T) {
		f := newFixture()
		doc := f.addDocument("Onboarding", longContent(8, ""), entity.DocumentStatusDraft)

		n, err := f.pipeline().Chunk(ctx, f.ref(doc))
		require.NoError(t, err)
		require.Greater(t, n, 2)

		chunks := f.chunksOf(doc.Id)
		require.Len(t, chunks, n)
		for i, c := range chunks {
			assert.Equal(t, i, c.ChunkIndex)
			assert.NotEmpty(t, c.Content)
			assert.NotContains(t, c.Content, "<p>")
			assert.Nil(t, c.Embedding)
		}
	})

	t.Run("empty document has no chunks", func(t *testing.T) {
		f := newFixture()
		doc := f.addDocument("Onboarding", longContent(8, ""), entity.DocumentStatusDraft)
		svc := f.pipeline()
		_, err := svc.Chunk(ctx, f.ref(doc))
		require.NoError(t, err)

		require.NoError(t, documentRepo{f.store}.UpdateContent(ctx, doc.Id, "", 1, f.store.now()))
		n, err := svc.Chunk(ctx, f.ref(doc))
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Empty(t, f.chunksOf(doc.Id))
	})
}

func TestEmbedChunks(t *testing.T) {
	ctx := context.Background()

	t.Run("second run embeds nothing", func(t *testing.T) {
		f := newFixture()
		doc := f.addDocument("Onboarding", longContent(8, ""), entity.DocumentStatusDraft)
		svc := f.pipeline()

		n, err := svc.Chunk(ctx, f.ref(doc))
		require.NoError(t, err)

		processed, err := svc.EmbedChunks(ctx, f.ref(doc))
		require.NoError(t, err)
		assert.Equal(t, n, processed)
		assert.Equal(t, n, f.usage.count(FnEmbedChunk))

		processed, err = svc.EmbedChunks(ctx, f.ref(doc))
		require.NoError(t, err)
		assert.Zero(t, processed)
		assert.Equal(t, n, f.usage.count(FnEmbedChunk))

		for _, c := range f.chunksOf(doc.Id) {
			assert.NotEmpty(t, c.Embedding)
		}
	})

	t.Run("rechunking unchanged content keeps every vector", func(t *testing.T) {
		f := newFixture()
		doc := f.addDocument("Onboarding", longContent(8, ""), entity.DocumentStatusDraft)
		svc := f.pipeline()

		_, err := svc.Chunk(ctx, f.ref(doc))
		require.NoError(t, err)
		_, err = svc.EmbedChunks(ctx, f.ref(doc))
		require.NoError(t, err)

		_, err = svc.Chunk(ctx, f.ref(doc))
		require.NoError(t, err)
		processed, err := svc.EmbedChunks(ctx, f.ref(doc))
		require.NoError(t, err)
		assert.Zero(t, processed)
	})

	t.Run("edited tail re-embeds only changed chunks", func(t *testing.T) {
		f := newFixture()
		doc := f.addDocument("Onboarding", longContent(8, ""), entity.DocumentStatusDraft)
		svc := f.pipeline()

		_, err := svc.Chunk(ctx, f.ref(doc))
		require.NoError(t, err)
		_, err = svc.EmbedChunks(ctx, f.ref(doc))
		require.NoError(t, err)

		edited := longContent(8, "A closing note about churn and retention.")
		require.NoError(t, documentRepo{f.store}.UpdateContent(ctx, doc.Id, edited, 2, f.store.now()))

		n, err := svc.Chunk(ctx, f.ref(doc))
		require.NoError(t, err)
		processed, err := svc.EmbedChunks(ctx, f.ref(doc))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, processed, 1)
		assert.Less(t, processed, n)
	})

	t.Run("failure keeps the chunks embedded so far", func(t *testing.T) {
		f := newFixture()
		f.embedder.failOn = "zebra"
		doc := f.addDocument("Onboarding", longContent(8, "zebra"), entity.DocumentStatusDraft)
		svc := f.pipeline()

		n, err := svc.Chunk(ctx, f.ref(doc))
		require.NoError(t, err)

		processed, err := svc.EmbedChunks(ctx, f.ref(doc))
		assert.True(t, errors.Is(err, errs.ErrEmbeddingFailed))
		assert.Equal(t, n-1, processed)

		f.embedder.failOn = ""
		processed, err = svc.EmbedChunks(ctx, f.ref(doc))
		require.NoError(t, err)
		assert.Equal(t, 1, processed)
	})

	t.Run("store failure surfaces as a write error", func(t *testing.T) {
		f := newFixture()
		f.store.failEmbeddingWrites = true
		doc := f.addDocument("Onboarding", longContent(8, ""), entity.DocumentStatusDraft)
		svc := f.pipeline()

		_, err := svc.Chunk(ctx, f.ref(doc))
		require.NoError(t, err)
		processed, err := svc.EmbedChunks(ctx, f.ref(doc))
		assert.True(t, errors.Is(err, errs.ErrStoreWriteFailed))
		assert.Zero(t, processed)
	})
}

func TestEmbedStepMemory(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	doc := f.addDocument("Pricing", pricingDoc, entity.DocumentStatusDraft)
	svc := f.pipeline()

	err := svc.EmbedStepMemory(ctx, f.ref(doc))
	assert.True(t, errors.Is(err, errs.ErrInvalidRequest))

	_, err = svc.Summarize(ctx, f.ref(doc))
	require.NoError(t, err)
	require.NoError(t, svc.EmbedStepMemory(ctx, f.ref(doc)))
	require.NoError(t, svc.EmbedStepMemory(ctx, f.ref(doc)))

	require.Len(t, f.store.stepMemories, 1)
	memory := f.store.stepMemories[doc.Id]
	assert.Equal(t, f.stepId, memory.StepId)
	assert.Contains(t, memory.Content, "Key decisions:\n- Target small businesses")
	assert.NotEmpty(t, memory.Embedding)
	assert.Equal(t, 2, f.usage.count(FnEmbedStepMemory))
}

func TestPublishMemory(t *testing.T) {
	ctx := context.Background()

	t.Run("requires a published document", func(t *testing.T) {
		f := newFixture()
		doc := f.addDocument("Pricing", pricingDoc, entity.DocumentStatusApproved)

		_, err := f.pipeline().PublishMemory(ctx, f.ref(doc))
		assert.True(t, errors.Is(err, errs.ErrInvalidRequest))
		assert.Empty(t, f.store.entries)
	})

	t.Run("reuses a fresh summary", func(t *testing.T) {
		f := newFixture()
		sink := &eventRecorder{}
		svc := NewPipelineService(f.store, f.gateway, events.NewSinkPublisher(sink, nil), nil, nil, PipelineConfig{})
		doc := f.addDocument("Pricing", pricingDoc, entity.DocumentStatusPublished)

		_, err := svc.Summarize(ctx, f.ref(doc))
		require.NoError(t, err)
		got, err := svc.PublishMemory(ctx, f.ref(doc))
		require.NoError(t, err)

		assert.Zero(t, f.usage.count(FnSummarizePublish))
		assert.Equal(t, 1, f.usage.count(FnEmbedProjectMemory))
		assert.NotNil(t, got.LastPublishedAt)

		entry := f.store.entries[doc.Id]
		require.NotNil(t, entry)
		assert.Equal(t, f.projectId, entry.ProjectId)
		assert.Equal(t, got.Summary, entry.Summary)
		assert.NotEmpty(t, entry.Embedding)
		require.NotNil(t, entry.StepId)
		assert.Equal(t, f.stepId, *entry.StepId)
		assert.NotNil(t, entry.PhaseId)
		assert.Equal(t, []string{events.TypeMemoryPublished}, sink.types())
	})

	t.Run("summarizes stale content", func(t *testing.T) {
		f := newFixture()
		doc := f.addDocument("Pricing", pricingDoc, entity.DocumentStatusPublished)

		got, err := f.pipeline().PublishMemory(ctx, f.ref(doc))
		require.NoError(t, err)
		assert.Equal(t, 1, f.usage.count(FnSummarizePublish))
		assert.NotNil(t, got.LastSummarizedAt)
		assert.GreaterOrEqual(t, len(got.KeyDecisions), gateway.MinDecisions)
	})

	t.Run("republishing keeps one entry per document", func(t *testing.T) {
		f := newFixture()
		doc := f.addDocument("Pricing", pricingDoc, entity.DocumentStatusPublished)
		svc := f.pipeline()

		_, err := svc.PublishMemory(ctx, f.ref(doc))
		require.NoError(t, err)
		first := f.store.entries[doc.Id].Id
		_, err = svc.PublishMemory(ctx, f.ref(doc))
		require.NoError(t, err)

		assert.Len(t, f.store.entries, 1)
		assert.Equal(t, first, f.store.entries[doc.Id].Id)
	})

	t.Run("empty document removes its entry", func(t *testing.T) {
		f := newFixture()
		doc := f.addDocument("Pricing", pricingDoc, entity.DocumentStatusPublished)
		svc := f.pipeline()

		_, err := svc.PublishMemory(ctx, f.ref(doc))
		require.NoError(t, err)
		require.NoError(t, documentRepo{f.store}.UpdateContent(ctx, doc.Id, "<p></p>", 2, f.store.now()))
		calls := len(f.usage.records)

		got, err := svc.PublishMemory(ctx, f.ref(doc))
		require.NoError(t, err)
		assert.Empty(t, f.store.entries)
		assert.Equal(t, gateway.PlaceholderSummary, got.Summary)
		assert.Nil(t, f.document(doc.Id).LastPublishedAt)
		assert.Len(t, f.usage.records, calls)
	})
}

func TestDisconnectMemory(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	sink := &eventRecorder{}
	svc := NewPipelineService(f.store, f.gateway, events.NewSinkPublisher(sink, nil), nil, nil, PipelineConfig{})
	doc := f.addDocument("Pricing", pricingDoc, entity.DocumentStatusPublished)

	_, err := svc.Summarize(ctx, f.ref(doc))
	require.NoError(t, err)
	require.NoError(t, svc.EmbedStepMemory(ctx, f.ref(doc)))
	_, err = svc.PublishMemory(ctx, f.ref(doc))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		got, err := svc.DisconnectMemory(ctx, f.ref(doc))
		require.NoError(t, err)
		assert.Empty(t, got.Summary)
	}

	stored := f.document(doc.Id)
	assert.Empty(t, stored.Summary)
	assert.Empty(t, stored.KeyDecisions)
	assert.Empty(t, stored.Tags)
	assert.Nil(t, stored.LastSummarizedAt)
	assert.Nil(t, stored.LastPublishedAt)
	assert.Empty(t, f.store.entries)
	assert.Empty(t, f.store.stepMemories)
	assert.Equal(t, []string{
		events.TypeMemoryPublished,
		events.TypeMemoryDisconnected,
		events.TypeMemoryDisconnected,
	}, sink.types())
}

func TestRecomputeProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("project without entries has attributes only", func(t *testing.T) {
		f := newFixture()
		profile, err := f.pipeline().RecomputeProfile(ctx, f.projectId, f.ownerId)
		require.NoError(t, err)

		assert.Equal(t, "Project: Ledgerly\nPitch: Bookkeeping for freelancers\nAudience: small businesses", profile.Profile)
		assert.Empty(t, profile.SourceEntryIds)
		assert.Zero(t, f.chat.completeN)
	})

	t.Run("folds the three most recent entries", func(t *testing.T) {
		f := newFixture()
		svc := f.pipeline()
		var docs []*entity.Document
		for i := 1; i <= 4; i++ {
			doc := f.addDocument(fmt.Sprintf("Decision log %d", i), pricingDoc, entity.DocumentStatusPublished)
			_, err := svc.PublishMemory(ctx, f.ref(doc))
			require.NoError(t, err)
			docs = append(docs, doc)
		}

		profile, err := svc.RecomputeProfile(ctx, f.projectId, f.ownerId)
		require.NoError(t, err)

		assert.Equal(t, []string{
			f.store.entries[docs[3].Id].Id.String(),
			f.store.entries[docs[2].Id].Id.String(),
			f.store.entries[docs[1].Id].Id.String(),
		}, profile.SourceEntryIds)
		assert.Contains(t, profile.Profile, "Digest: "+digestReply)
		assert.Contains(t, profile.Profile, "Recent decisions:\n- Decision log 4:")
		assert.NotContains(t, profile.Profile, "Decision log 1")
		assert.NotContains(t, profile.Profile, gateway.PlaceholderDecision)
		assert.Equal(t, 1, f.usage.count(FnRecomputeProfile))

		stored, err := profileRepo{f.store}.FindOne(ctx, specification.ByProjectID{ProjectID: f.projectId})
		require.NoError(t, err)
		assert.Equal(t, profile.Profile, stored.Profile)
	})

	t.Run("unknown project", func(t *testing.T) {
		f := newFixture()
		_, err := f.pipeline().RecomputeProfile(ctx, uuid.New(), f.ownerId)
		assert.True(t, errors.Is(err, errs.ErrNotFound))
	})
}

func TestRunChain(t *testing.T) {
	ctx := context.Background()

	t.Run("published document ends in a profile", func(t *testing.T) {
		f := newFixture()
		doc := f.addDocument("Pricing", pricingDoc, entity.DocumentStatusPublished)

		ran, err := f.pipeline().RunChain(ctx, pipeline.Job{DocumentId: doc.Id, UserId: f.ownerId, Stage: pipeline.StageSummarize})
		require.NoError(t, err)
		assert.Equal(t, []pipeline.Stage{
			pipeline.StageSummarize,
			pipeline.StageChunk,
			pipeline.StageEmbedChunks,
			pipeline.StageEmbedStepMemory,
			pipeline.StagePublishMemory,
			pipeline.StageRecomputeProfile,
		}, ran)

		stored := f.document(doc.Id)
		assert.NotContains(t, stored.Summary, "<")
		assert.GreaterOrEqual(t, len(stored.KeyDecisions), 3)

		entry := f.store.entries[doc.Id]
		require.NotNil(t, entry)
		assert.NotEmpty(t, entry.Embedding)
		assert.Contains(t, f.store.profiles[f.projectId].Profile, stored.Summary)
		assert.NotEmpty(t, f.chunksOf(doc.Id))
		assert.Contains(t, f.store.stepMemories, doc.Id)
	})

	t.Run("draft document stops after step memory", func(t *testing.T) {
		f := newFixture()
		doc := f.addDocument("Pricing", pricingDoc, entity.DocumentStatusDraft)

		ran, err := f.pipeline().RunChain(ctx, pipeline.Job{DocumentId: doc.Id, UserId: f.ownerId, Stage: pipeline.StageSummarize})
		require.NoError(t, err)
		assert.Equal(t, pipeline.StageEmbedStepMemory, ran[len(ran)-1])
		assert.Empty(t, f.store.entries)
	})

	t.Run("unpublished document with an entry is disconnected", func(t *testing.T) {
		f := newFixture()
		doc := f.addDocument("Pricing", pricingDoc, entity.DocumentStatusPublished)
		svc := f.pipeline()
		_, err := svc.PublishMemory(ctx, f.ref(doc))
		require.NoError(t, err)
		require.NoError(t, documentRepo{f.store}.UpdateStatus(ctx, doc.Id, entity.DocumentStatusDraft))

		ran, err := svc.RunChain(ctx, pipeline.Job{DocumentId: doc.Id, UserId: f.ownerId, Stage: pipeline.StageSummarize})
		require.NoError(t, err)
		assert.Equal(t, []pipeline.Stage{pipeline.StageDisconnectMemory, pipeline.StageRecomputeProfile}, ran[len(ran)-2:])
		assert.Empty(t, f.store.entries)
	})

	t.Run("failed stage stops the chain", func(t *testing.T) {
		f := newFixture()
		f.embedder.failAll = true
		doc := f.addDocument("Pricing", pricingDoc, entity.DocumentStatusPublished)

		ran, err := f.pipeline().RunChain(ctx, pipeline.Job{DocumentId: doc.Id, UserId: f.ownerId, Stage: pipeline.StageSummarize})
		assert.True(t, errors.Is(err, errs.ErrEmbeddingFailed))
		assert.Equal(t, pipeline.StageEmbedChunks, ran[len(ran)-1])
		assert.Empty(t, f.store.entries)
	})
}

func TestRunStage(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	doc := f.addDocument("Pricing", pricingDoc, entity.DocumentStatusPublished)
	svc := f.pipeline()

	next, err := svc.RunStage(ctx, pipeline.Job{DocumentId: doc.Id, UserId: f.ownerId, Stage: pipeline.StageSummarize, Guarded: true})
	require.NoError(t, err)
	assert.Equal(t, pipeline.StageChunk, next.Stage)
	assert.Equal(t, f.projectId, next.ProjectId)
	assert.True(t, next.Guarded)

	next, err = svc.RunStage(ctx, pipeline.Job{DocumentId: doc.Id, Stage: "reindex"})
	assert.True(t, errors.Is(err, errs.ErrInvalidRequest))
	assert.Equal(t, pipeline.StageIdle, next.Stage)

	idle := pipeline.Job{DocumentId: doc.Id, Stage: pipeline.StageIdle}
	next, err = svc.RunStage(ctx, idle)
	require.NoError(t, err)
	assert.Equal(t, idle, next)
}
