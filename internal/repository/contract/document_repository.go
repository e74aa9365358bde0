package contract

import (
	"context"
	"time"

	"project-memory-be/internal/entity"
	"project-memory-be/internal/repository/specification"

	"github.com/google/uuid"
)

type DocumentRepository interface {
	Create(ctx context.Context, document *entity.Document) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error)
	// SaveDerived writes only the pipeline-owned columns (summary, decisions, tags, timestamps).
	SaveDerived(ctx context.Context, document *entity.Document) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.DocumentStatus) error
	UpdateContent(ctx context.Context, id uuid.UUID, content string, version int, at time.Time) error
}

type DocumentVersionRepository interface {
	Create(ctx context.Context, version *entity.DocumentVersion) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentVersion, error)
}
