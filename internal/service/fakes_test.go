package service

import (
	"context"
	"errors"
	"hash/fnv"
	"sort"
	"strings"
	"sync"
	"time"

	"project-memory-be/internal/entity"
	"project-memory-be/internal/repository/contract"
	"project-memory-be/internal/repository/specification"
	"project-memory-be/internal/repository/unitofwork"
	"project-memory-be/pkg/embedding"
	"project-memory-be/pkg/events"
	"project-memory-be/pkg/gateway"
	"project-memory-be/pkg/llm"
	"project-memory-be/pkg/pipeline"
	"project-memory-be/pkg/similarity"

	"github.com/google/uuid"
)

// memStore is an in-memory stand-in for the postgres repositories. It
// understands the specifications the services use.
type memStore struct {
	mu   sync.Mutex
	tick int64

	projects     map[uuid.UUID]*entity.Project
	steps        map[uuid.UUID]*entity.Step
	documents    map[uuid.UUID]*entity.Document
	versions     []*entity.DocumentVersion
	chunks       map[uuid.UUID]*entity.DocumentChunk
	stepMemories map[uuid.UUID]*entity.StepMemoryEmbedding // by document
	entries      map[uuid.UUID]*entity.ProjectMemoryEntry  // by document
	profiles     map[uuid.UUID]*entity.ProjectProfile      // by project
	settings     map[uuid.UUID]*entity.UserAiSettings      // by user

	failEmbeddingWrites bool
}

func newMemStore() *memStore {
	return &memStore{
		projects:     map[uuid.UUID]*entity.Project{},
		steps:        map[uuid.UUID]*entity.Step{},
		documents:    map[uuid.UUID]*entity.Document{},
		chunks:       map[uuid.UUID]*entity.DocumentChunk{},
		stepMemories: map[uuid.UUID]*entity.StepMemoryEmbedding{},
		entries:      map[uuid.UUID]*entity.ProjectMemoryEntry{},
		profiles:     map[uuid.UUID]*entity.ProjectProfile{},
		settings:     map[uuid.UUID]*entity.UserAiSettings{},
	}
}

// now returns strictly increasing timestamps so updated_at ordering is stable.
func (s *memStore) now() time.Time {
	s.tick++
	return time.Unix(1_700_000_000, 0).Add(time.Duration(s.tick) * time.Millisecond)
}

func (s *memStore) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &memUoW{s: s}
}

var _ unitofwork.RepositoryFactory = (*memStore)(nil)

type memUoW struct{ s *memStore }

func (u *memUoW) Begin(ctx context.Context) error { return nil }
func (u *memUoW) Commit() error                   { return nil }
func (u *memUoW) Rollback() error                 { return nil }

func (u *memUoW) ProjectRepository() contract.ProjectRepository { return projectRepo{u.s} }
func (u *memUoW) StepRepository() contract.StepRepository       { return stepRepo{u.s} }
func (u *memUoW) DocumentRepository() contract.DocumentRepository {
	return documentRepo{u.s}
}
func (u *memUoW) DocumentVersionRepository() contract.DocumentVersionRepository {
	return versionRepo{u.s}
}
func (u *memUoW) DocumentChunkRepository() contract.DocumentChunkRepository {
	return chunkRepo{u.s}
}
func (u *memUoW) StepMemoryRepository() contract.StepMemoryRepository {
	return stepMemoryRepo{u.s}
}
func (u *memUoW) ProjectMemoryRepository() contract.ProjectMemoryRepository {
	return entryRepo{u.s}
}
func (u *memUoW) ProjectProfileRepository() contract.ProjectProfileRepository {
	return profileRepo{u.s}
}
func (u *memUoW) AiUsageRepository() contract.AiUsageRepository { return nil }
func (u *memUoW) UserAiSettingsRepository() contract.UserAiSettingsRepository {
	return settingsRepo{u.s}
}

// query is the flattened form of a specification list.
type query struct {
	id, documentId, projectId, userId, ownerId *uuid.UUID
	pending                                    bool
	order                                      *specification.OrderBy
	limit                                      int
}

func parseSpecs(specs []specification.Specification) query {
	var q query
	for _, spec := range specs {
		switch sp := spec.(type) {
		case specification.ByID:
			id := sp.ID
			q.id = &id
		case specification.ByDocumentID:
			id := sp.DocumentID
			q.documentId = &id
		case specification.ByProjectID:
			id := sp.ProjectID
			q.projectId = &id
		case specification.ByUserID:
			id := sp.UserID
			q.userId = &id
		case specification.ProjectOwnedBy:
			id := sp.UserID
			q.ownerId = &id
		case specification.PendingEmbedding:
			q.pending = true
		case specification.OrderBy:
			o := sp
			q.order = &o
		case specification.Pagination:
			q.limit = sp.Limit
		}
	}
	return q
}

func match(want *uuid.UUID, got uuid.UUID) bool {
	return want == nil || *want == got
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

func cloneVector(in []float32) []float32 {
	if in == nil {
		return nil
	}
	return append([]float32(nil), in...)
}

// --- projects & steps

type projectRepo struct{ s *memStore }

func (r projectRepo) Create(ctx context.Context, p *entity.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p.Id == uuid.Nil {
		p.Id = uuid.New()
	}
	cp := *p
	r.s.projects[p.Id] = &cp
	return nil
}

func (r projectRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q := parseSpecs(specs)
	for _, p := range r.s.projects {
		if match(q.id, p.Id) && match(q.ownerId, p.UserId) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

type stepRepo struct{ s *memStore }

func (r stepRepo) Create(ctx context.Context, st *entity.Step) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if st.Id == uuid.Nil {
		st.Id = uuid.New()
	}
	cp := *st
	r.s.steps[st.Id] = &cp
	return nil
}

func (r stepRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Step, error) {
	all, _ := r.FindAll(ctx, specs...)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r stepRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Step, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q := parseSpecs(specs)
	var out []*entity.Step
	for _, st := range r.s.steps {
		if match(q.id, st.Id) && match(q.projectId, st.ProjectId) {
			cp := *st
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

// --- documents

type documentRepo struct{ s *memStore }

func cloneDocument(d *entity.Document) *entity.Document {
	cp := *d
	cp.KeyDecisions = cloneStrings(d.KeyDecisions)
	cp.Tags = cloneStrings(d.Tags)
	return &cp
}

func (r documentRepo) Create(ctx context.Context, d *entity.Document) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if d.Id == uuid.Nil {
		d.Id = uuid.New()
	}
	if d.Status == "" {
		d.Status = entity.DocumentStatusDraft
	}
	r.s.documents[d.Id] = cloneDocument(d)
	return nil
}

func (r documentRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q := parseSpecs(specs)
	for _, d := range r.s.documents {
		if match(q.id, d.Id) && match(q.projectId, d.ProjectId) {
			return cloneDocument(d), nil
		}
	}
	return nil, nil
}

func (r documentRepo) SaveDerived(ctx context.Context, d *entity.Document) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.documents[d.Id]
	if !ok {
		return nil
	}
	stored.Summary = d.Summary
	stored.KeyDecisions = cloneStrings(d.KeyDecisions)
	stored.Tags = cloneStrings(d.Tags)
	stored.LastSummarizedAt = d.LastSummarizedAt
	stored.LastPublishedAt = d.LastPublishedAt
	return nil
}

func (r documentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.DocumentStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if d, ok := r.s.documents[id]; ok {
		d.Status = status
	}
	return nil
}

func (r documentRepo) UpdateContent(ctx context.Context, id uuid.UUID, content string, version int, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if d, ok := r.s.documents[id]; ok {
		d.Content = content
		d.CurrentVersion = version
		d.ContentUpdatedAt = &at
	}
	return nil
}

type versionRepo struct{ s *memStore }

func (r versionRepo) Create(ctx context.Context, v *entity.DocumentVersion) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.versions {
		if existing.DocumentId == v.DocumentId && existing.Version == v.Version {
			return errors.New("duplicate key value violates unique constraint")
		}
	}
	v.Id = uuid.New()
	cp := *v
	r.s.versions = append(r.s.versions, &cp)
	return nil
}

func (r versionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentVersion, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q := parseSpecs(specs)
	var out []*entity.DocumentVersion
	for _, v := range r.s.versions {
		if match(q.documentId, v.DocumentId) {
			cp := *v
			out = append(out, &cp)
		}
	}
	return out, nil
}

// --- chunks

type chunkRepo struct{ s *memStore }

func cloneChunk(c *entity.DocumentChunk) *entity.DocumentChunk {
	cp := *c
	cp.Embedding = cloneVector(c.Embedding)
	return &cp
}

func (r chunkRepo) CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range chunks {
		for _, existing := range r.s.chunks {
			if existing.DocumentId == c.DocumentId && existing.ChunkIndex == c.ChunkIndex {
				return errors.New("duplicate chunk index")
			}
		}
		c.Id = uuid.New()
		r.s.chunks[c.Id] = cloneChunk(c)
	}
	return nil
}

func (r chunkRepo) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, c := range r.s.chunks {
		if c.DocumentId == documentId {
			delete(r.s.chunks, id)
		}
	}
	return nil
}

func (r chunkRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q := parseSpecs(specs)
	var out []*entity.DocumentChunk
	for _, c := range r.s.chunks {
		if !match(q.documentId, c.DocumentId) {
			continue
		}
		if q.pending && c.Embedding != nil {
			continue
		}
		out = append(out, cloneChunk(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChunkIndex < out[j].ChunkIndex })
	return out, nil
}

func (r chunkRepo) UpdateEmbedding(ctx context.Context, chunkId uuid.UUID, vec []float32) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failEmbeddingWrites {
		return errors.New("connection reset")
	}
	if c, ok := r.s.chunks[chunkId]; ok {
		c.Embedding = cloneVector(vec)
	}
	return nil
}

func (r chunkRepo) BestMatch(ctx context.Context, documentId uuid.UUID, vec []float32) (*entity.DocumentChunk, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var best *entity.DocumentChunk
	bestScore := -2.0
	for _, c := range r.s.chunks {
		if c.DocumentId != documentId || c.Embedding == nil {
			continue
		}
		if score := similarity.Cosine(vec, c.Embedding); score > bestScore {
			best, bestScore = c, score
		}
	}
	if best == nil {
		return nil, nil
	}
	return cloneChunk(best), nil
}

// --- step memory, memory entries, profiles

type stepMemoryRepo struct{ s *memStore }

func (r stepMemoryRepo) Upsert(ctx context.Context, m *entity.StepMemoryEmbedding) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if existing, ok := r.s.stepMemories[m.DocumentId]; ok {
		m.Id = existing.Id
	} else {
		m.Id = uuid.New()
	}
	cp := *m
	cp.Embedding = cloneVector(m.Embedding)
	r.s.stepMemories[m.DocumentId] = &cp
	return nil
}

func (r stepMemoryRepo) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.stepMemories, documentId)
	return nil
}

func (r stepMemoryRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.StepMemoryEmbedding, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q := parseSpecs(specs)
	for _, m := range r.s.stepMemories {
		if match(q.documentId, m.DocumentId) {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

type entryRepo struct{ s *memStore }

func cloneEntry(e *entity.ProjectMemoryEntry) *entity.ProjectMemoryEntry {
	cp := *e
	cp.KeyDecisions = cloneStrings(e.KeyDecisions)
	cp.Tags = cloneStrings(e.Tags)
	cp.Embedding = cloneVector(e.Embedding)
	return &cp
}

func (r entryRepo) Upsert(ctx context.Context, e *entity.ProjectMemoryEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if existing, ok := r.s.entries[e.DocumentId]; ok {
		e.Id = existing.Id
		e.CreatedAt = existing.CreatedAt
	} else {
		e.Id = uuid.New()
		e.CreatedAt = r.s.now()
	}
	updated := r.s.now()
	e.UpdatedAt = &updated
	r.s.entries[e.DocumentId] = cloneEntry(e)
	return nil
}

func (r entryRepo) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.entries, documentId)
	return nil
}

func (r entryRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ProjectMemoryEntry, error) {
	all, _ := r.FindAll(ctx, specs...)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r entryRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ProjectMemoryEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q := parseSpecs(specs)
	var out []*entity.ProjectMemoryEntry
	for _, e := range r.s.entries {
		if match(q.documentId, e.DocumentId) && match(q.projectId, e.ProjectId) {
			out = append(out, cloneEntry(e))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if q.order != nil && q.order.Desc {
			return out[i].UpdatedAt.After(*out[j].UpdatedAt)
		}
		return out[i].UpdatedAt.Before(*out[j].UpdatedAt)
	})
	if q.limit > 0 && len(out) > q.limit {
		out = out[:q.limit]
	}
	return out, nil
}

func (r entryRepo) SearchSimilarWithScore(ctx context.Context, projectId uuid.UUID, vec []float32, limit int, threshold float64) ([]*contract.ScoredMemoryEntry, error) {
	entries, _ := r.FindAll(ctx, specification.ByProjectID{ProjectID: projectId})
	var scored []similarity.Scored[*entity.ProjectMemoryEntry]
	for _, e := range entries {
		if score := similarity.Cosine(vec, e.Embedding); score >= threshold {
			scored = append(scored, similarity.Scored[*entity.ProjectMemoryEntry]{Item: e, Score: score})
		}
	}
	var out []*contract.ScoredMemoryEntry
	for _, hit := range similarity.Rank(scored, limit) {
		out = append(out, &contract.ScoredMemoryEntry{Entry: hit.Item, Similarity: hit.Score})
	}
	return out, nil
}

type profileRepo struct{ s *memStore }

func (r profileRepo) Upsert(ctx context.Context, p *entity.ProjectProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if existing, ok := r.s.profiles[p.ProjectId]; ok {
		p.Id = existing.Id
	} else {
		p.Id = uuid.New()
	}
	cp := *p
	cp.SourceEntryIds = cloneStrings(p.SourceEntryIds)
	r.s.profiles[p.ProjectId] = &cp
	return nil
}

func (r profileRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ProjectProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q := parseSpecs(specs)
	for _, p := range r.s.profiles {
		if match(q.projectId, p.ProjectId) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

type settingsRepo struct{ s *memStore }

func (r settingsRepo) Upsert(ctx context.Context, st *entity.UserAiSettings) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *st
	r.s.settings[st.UserId] = &cp
	return nil
}

func (r settingsRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.UserAiSettings, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q := parseSpecs(specs)
	for _, st := range r.s.settings {
		if match(q.userId, st.UserId) {
			cp := *st
			return &cp, nil
		}
	}
	return nil, nil
}

// --- model stubs

const summaryReply = `{"summary": "We target small businesses and price the product at $49 per month.",
"key_decisions": ["Target small businesses", "Price at $49 per month"],
"tags": ["Pricing", "go to market"]}`

const digestReply = "A bookkeeping tool for small businesses priced at $49 per month."

type stubChat struct {
	mu          sync.Mutex
	summary     string
	digest      string
	summarizeN  int
	completeN   int
	summaryErr  error
	lastPrompts []string
}

func newStubChat() *stubChat {
	return &stubChat{summary: summaryReply, digest: digestReply}
}

func (c *stubChat) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, m := range history {
		c.lastPrompts = append(c.lastPrompts, m.Content)
	}
	if llm.ApplyOptions("", options...).JSONMode {
		c.summarizeN++
		return c.summary, c.summaryErr
	}
	c.completeN++
	return c.digest, nil
}

func (c *stubChat) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return c.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}

// bagEmbedder hashes words into a small vector so related texts score higher.
type bagEmbedder struct {
	mu      sync.Mutex
	calls   int
	failOn  string
	failAll bool
}

func (e *bagEmbedder) Generate(ctx context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	if e.failAll || (e.failOn != "" && strings.Contains(text, e.failOn)) {
		return nil, errors.New("upstream 503")
	}
	vec := make([]float32, 128)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,;:!?$")
		if w == "" {
			continue
		}
		h := fnv.New32a()
		h.Write([]byte(w))
		vec[h.Sum32()%128]++
	}
	vec[127] += 0.01
	return vec, nil
}

func (e *bagEmbedder) Model() string { return "bag-128" }

func (e *bagEmbedder) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

type usageLog struct {
	mu      sync.Mutex
	records []*entity.AiUsageRecord
}

func (u *usageLog) Record(ctx context.Context, r *entity.AiUsageRecord) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.records = append(u.records, r)
}

func (u *usageLog) count(function string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	n := 0
	for _, r := range u.records {
		if r.FunctionName == function {
			n++
		}
	}
	return n
}

// --- fixture

type fixture struct {
	store    *memStore
	chat     *stubChat
	embedder *bagEmbedder
	usage    *usageLog
	gateway  *gateway.Gateway

	ownerId   uuid.UUID
	projectId uuid.UUID
	stepId    uuid.UUID
}

func newFixture() *fixture {
	f := &fixture{
		store:    newMemStore(),
		chat:     newStubChat(),
		embedder: &bagEmbedder{},
		usage:    &usageLog{},
		ownerId:  uuid.New(),
	}
	f.gateway = gateway.New(gateway.Config{LLMModel: "stub-chat", DefaultAPIKey: "test-key"},
		func(apiKey string) (llm.LLMProvider, error) { return f.chat, nil },
		func(apiKey string) (embedding.EmbeddingProvider, error) { return f.embedder, nil },
		f.usage, nil, nil,
	)

	ctx := context.Background()
	uow := f.store.NewUnitOfWork(ctx)
	project := &entity.Project{
		UserId:   f.ownerId,
		Name:     "Ledgerly",
		Pitch:    "Bookkeeping for freelancers",
		Audience: "small businesses",
	}
	_ = uow.ProjectRepository().Create(ctx, project)
	f.projectId = project.Id

	step := &entity.Step{ProjectId: project.Id, PhaseId: uuid.New(), Name: "Pricing Strategy", Description: "Decide how we charge customers", Position: 1}
	_ = uow.StepRepository().Create(ctx, step)
	f.stepId = step.Id
	return f
}

func (f *fixture) addDocument(title, content string, status entity.DocumentStatus) *entity.Document {
	doc := &entity.Document{
		ProjectId: f.projectId,
		StepId:    f.stepId,
		Title:     title,
		Content:   content,
		Status:    status,
	}
	_ = f.store.NewUnitOfWork(context.Background()).DocumentRepository().Create(context.Background(), doc)
	return doc
}

func (f *fixture) document(id uuid.UUID) *entity.Document {
	doc, _ := f.store.NewUnitOfWork(context.Background()).DocumentRepository().FindOne(context.Background(), specification.ByID{ID: id})
	return doc
}

func (f *fixture) ref(doc *entity.Document) DocumentRef {
	return DocumentRef{DocumentId: doc.Id, ProjectId: f.projectId, UserId: f.ownerId}
}

func (f *fixture) pipeline() IPipelineService {
	return NewPipelineService(f.store, f.gateway, nil, nil, nil, PipelineConfig{ChunkSize: 80, ChunkOverlap: 10})
}

func (f *fixture) chunksOf(documentId uuid.UUID) []*entity.DocumentChunk {
	chunks, _ := chunkRepo{f.store}.FindAll(context.Background(), specification.ByDocumentID{DocumentID: documentId})
	return chunks
}

// jobRecorder captures queued jobs instead of delivering them.
type jobRecorder struct {
	mu   sync.Mutex
	jobs []pipeline.Job
	err  error
}

func (r *jobRecorder) Publish(ctx context.Context, job pipeline.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.jobs = append(r.jobs, job)
	return nil
}

func (r *jobRecorder) Start(ctx context.Context, job pipeline.Job) error {
	return r.Publish(ctx, job)
}

func (r *jobRecorder) queued() []pipeline.Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]pipeline.Job(nil), r.jobs...)
}

// eventRecorder is an events.Sink that keeps everything it is given.
type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (r *eventRecorder) Publish(ctx context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, e)
	return nil
}

func (r *eventRecorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.EventType())
	}
	return out
}
