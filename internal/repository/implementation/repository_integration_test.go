package implementation_test

import (
	"context"
	"log"
	"os"
	"strconv"
	"testing"
	"time"

	"project-memory-be/internal/entity"
	"project-memory-be/internal/repository/specification"
	"project-memory-be/internal/repository/unitofwork"
	"project-memory-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	if err := godotenv.Load("../../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	db, err := database.NewGormDBFromDSN(dsn, false)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, 0))
	return db
}

// vec returns a unit vector of the configured dimension pointing along axis.
func vec(axis int) []float32 {
	dim := 768
	if v := os.Getenv("EMBEDDING_DIMENSION"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 1 {
			dim = n
		}
	}
	out := make([]float32, dim)
	out[axis%dim] = 1
	return out
}

func TestMemoryRepositories(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	uow := unitofwork.NewRepositoryFactory(db).NewUnitOfWork(ctx)

	ownerId := uuid.New()
	project := &entity.Project{Id: uuid.New(), UserId: ownerId, Name: "Integration " + uuid.NewString()}
	require.NoError(t, uow.ProjectRepository().Create(ctx, project))

	doc := &entity.Document{
		Id:        uuid.New(),
		ProjectId: project.Id,
		StepId:    uuid.New(),
		Title:     "Pricing",
		Content:   "We charge $49 per month.",
		Status:    entity.DocumentStatusPublished,
	}
	require.NoError(t, uow.DocumentRepository().Create(ctx, doc))

	t.Cleanup(func() {
		_ = uow.ProjectMemoryRepository().DeleteByDocumentId(ctx, doc.Id)
		_ = uow.DocumentChunkRepository().DeleteByDocumentId(ctx, doc.Id)
		db.Exec("DELETE FROM project_profiles WHERE project_id = ?", project.Id)
		db.Exec("DELETE FROM documents WHERE id = ?", doc.Id)
		db.Exec("DELETE FROM projects WHERE id = ?", project.Id)
	})

	t.Run("project ownership", func(t *testing.T) {
		found, err := uow.ProjectRepository().FindOne(ctx,
			specification.ByID{ID: project.Id},
			specification.ProjectOwnedBy{UserID: ownerId},
		)
		require.NoError(t, err)
		require.NotNil(t, found)

		found, err = uow.ProjectRepository().FindOne(ctx,
			specification.ByID{ID: project.Id},
			specification.ProjectOwnedBy{UserID: uuid.New()},
		)
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("chunks", func(t *testing.T) {
		chunks := []*entity.DocumentChunk{
			{Id: uuid.New(), DocumentId: doc.Id, ProjectId: project.Id, ChunkIndex: 0, Content: "pricing", ContentHash: "a"},
			{Id: uuid.New(), DocumentId: doc.Id, ProjectId: project.Id, ChunkIndex: 1, Content: "audience", ContentHash: "b"},
		}
		require.NoError(t, uow.DocumentChunkRepository().CreateBulk(ctx, chunks))
		require.NoError(t, uow.DocumentChunkRepository().UpdateEmbedding(ctx, chunks[0].Id, vec(0)))
		require.NoError(t, uow.DocumentChunkRepository().UpdateEmbedding(ctx, chunks[1].Id, vec(1)))

		best, err := uow.DocumentChunkRepository().BestMatch(ctx, doc.Id, vec(1))
		require.NoError(t, err)
		require.NotNil(t, best)
		assert.Equal(t, 1, best.ChunkIndex)

		dup := []*entity.DocumentChunk{{Id: uuid.New(), DocumentId: doc.Id, ProjectId: project.Id, ChunkIndex: 1, Content: "x"}}
		assert.Error(t, uow.DocumentChunkRepository().CreateBulk(ctx, dup))
	})

	t.Run("memory entry upsert and search", func(t *testing.T) {
		entry := &entity.ProjectMemoryEntry{
			Id:           uuid.New(),
			DocumentId:   doc.Id,
			ProjectId:    project.Id,
			Title:        doc.Title,
			Summary:      "Monthly pricing.",
			KeyDecisions: []string{"Charge monthly", "Price at $49", "Target freelancers"},
			Tags:         []string{"pricing"},
			Embedding:    vec(0),
		}
		require.NoError(t, uow.ProjectMemoryRepository().Upsert(ctx, entry))

		entry.Summary = "Monthly pricing at $49."
		require.NoError(t, uow.ProjectMemoryRepository().Upsert(ctx, entry))

		all, err := uow.ProjectMemoryRepository().FindAll(ctx, specification.ByProjectID{ProjectID: project.Id})
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "Monthly pricing at $49.", all[0].Summary)
		assert.Equal(t, []string{"pricing"}, all[0].Tags)

		hits, err := uow.ProjectMemoryRepository().SearchSimilarWithScore(ctx, project.Id, vec(0), 3, 0.5)
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.InDelta(t, 1.0, hits[0].Similarity, 1e-6)

		hits, err = uow.ProjectMemoryRepository().SearchSimilarWithScore(ctx, project.Id, vec(1), 3, 0.5)
		require.NoError(t, err)
		assert.Empty(t, hits)
	})

	t.Run("profile upsert", func(t *testing.T) {
		profile := &entity.ProjectProfile{
			Id:             uuid.New(),
			ProjectId:      project.Id,
			Profile:        "Project: Integration",
			SourceEntryIds: []string{},
			CreatedAt:      time.Now(),
		}
		require.NoError(t, uow.ProjectProfileRepository().Upsert(ctx, profile))
		profile.Profile = "Project: Integration (recomputed)"
		require.NoError(t, uow.ProjectProfileRepository().Upsert(ctx, profile))

		found, err := uow.ProjectProfileRepository().FindOne(ctx, specification.ByProjectID{ProjectID: project.Id})
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "Project: Integration (recomputed)", found.Profile)
	})
}
