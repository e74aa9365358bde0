package trigger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"project-memory-be/pkg/pipeline"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapGuard struct {
	mu   sync.Mutex
	held map[uuid.UUID]bool
}

func newMapGuard() *mapGuard {
	return &mapGuard{held: map[uuid.UUID]bool{}}
}

func (g *mapGuard) Acquire(ctx context.Context, id uuid.UUID) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.held[id] {
		return false, nil
	}
	g.held[id] = true
	return true, nil
}

func (g *mapGuard) Release(ctx context.Context, id uuid.UUID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.held, id)
	return nil
}

type recordingStarter struct {
	mu   sync.Mutex
	jobs []pipeline.Job
	err  error
}

func (s *recordingStarter) Start(ctx context.Context, job pipeline.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.jobs = append(s.jobs, job)
	return nil
}

func TestEntryStage(t *testing.T) {
	tests := []struct {
		from, to string
		want     pipeline.Stage
		fires    bool
	}{
		{"draft", "approved", pipeline.StageSummarize, true},
		{"in_review", "complete", pipeline.StageSummarize, true},
		{"draft", "published", pipeline.StageSummarize, true},
		{"approved", "published", pipeline.StageSummarize, true},
		{"", "approved", pipeline.StageSummarize, true},
		{"published", "draft", pipeline.StageDisconnectMemory, true},
		{"published", "approved", pipeline.StageDisconnectMemory, true},
		{"approved", "approved", "", false},
		{"approved", "complete", "", false},
		{"published", "published", "", false},
		{"draft", "in_review", "", false},
		{"approved", "draft", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			stage, ok := EntryStage(tt.from, tt.to)
			assert.Equal(t, tt.fires, ok)
			assert.Equal(t, tt.want, stage)
		})
	}
}

func TestController_FiresGuardedJob(t *testing.T) {
	starter := &recordingStarter{}
	c := NewController(newMapGuard(), starter, nil, nil)
	change := StatusChange{DocumentId: uuid.New(), ProjectId: uuid.New(), UserId: uuid.New(), From: "draft", To: "published"}

	outcome, err := c.HandleStatusChange(context.Background(), change)
	require.NoError(t, err)
	assert.Equal(t, OutcomeFired, outcome)

	require.Len(t, starter.jobs, 1)
	job := starter.jobs[0]
	assert.Equal(t, change.DocumentId, job.DocumentId)
	assert.Equal(t, change.ProjectId, job.ProjectId)
	assert.Equal(t, pipeline.StageSummarize, job.Stage)
	assert.True(t, job.Guarded)
}

func TestController_IgnoresNonQualifying(t *testing.T) {
	starter := &recordingStarter{}
	c := NewController(newMapGuard(), starter, nil, nil)

	outcome, err := c.HandleStatusChange(context.Background(), StatusChange{DocumentId: uuid.New(), From: "approved", To: "approved"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, outcome)
	assert.Empty(t, starter.jobs)
}

func TestController_DeduplicatesConcurrentTriggers(t *testing.T) {
	starter := &recordingStarter{}
	c := NewController(newMapGuard(), starter, nil, nil)
	docId := uuid.New()

	var wg sync.WaitGroup
	outcomes := make([]Outcome, 2)
	for i := range outcomes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i], _ = c.HandleStatusChange(context.Background(), StatusChange{DocumentId: docId, From: "in_review", To: "complete"})
		}(i)
	}
	wg.Wait()

	assert.ElementsMatch(t, []Outcome{OutcomeFired, OutcomeDeduplicated}, outcomes)
	assert.Len(t, starter.jobs, 1)
}

func TestController_ReleasesGuardWhenStartFails(t *testing.T) {
	guard := newMapGuard()
	starter := &recordingStarter{err: errors.New("queue closed")}
	c := NewController(guard, starter, nil, nil)
	docId := uuid.New()

	_, err := c.HandleStatusChange(context.Background(), StatusChange{DocumentId: docId, From: "draft", To: "approved"})
	require.Error(t, err)

	ok, err := guard.Acquire(context.Background(), docId)
	require.NoError(t, err)
	assert.True(t, ok)
}
