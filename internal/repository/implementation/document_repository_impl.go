package implementation

import (
	"context"
	"errors"
	"time"

	"project-memory-be/internal/entity"
	"project-memory-be/internal/mapper"
	"project-memory-be/internal/model"
	"project-memory-be/internal/repository/contract"
	"project-memory-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DocumentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DocumentMapper
}

func NewDocumentRepository(db *gorm.DB) contract.DocumentRepository {
	return &DocumentRepositoryImpl{
		db:     db,
		mapper: mapper.NewDocumentMapper(),
	}
}

func (r *DocumentRepositoryImpl) Create(ctx context.Context, document *entity.Document) error {
	m := r.mapper.ToModel(document)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*document = *r.mapper.ToEntity(m)
	return nil
}

func (r *DocumentRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error) {
	var m model.Document
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *DocumentRepositoryImpl) SaveDerived(ctx context.Context, document *entity.Document) error {
	m := r.mapper.ToModel(document)
	return r.db.WithContext(ctx).
		Model(&model.Document{Id: document.Id}).
		Select("summary", "key_decisions", "tags", "last_summarized_at", "last_published_at").
		Updates(m).Error
}

func (r *DocumentRepositoryImpl) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.DocumentStatus) error {
	return r.db.WithContext(ctx).
		Model(&model.Document{Id: id}).
		Update("status", string(status)).Error
}

func (r *DocumentRepositoryImpl) UpdateContent(ctx context.Context, id uuid.UUID, content string, version int, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.Document{Id: id}).
		Updates(map[string]interface{}{
			"content":            content,
			"current_version":    version,
			"content_updated_at": at,
		}).Error
}

type DocumentVersionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DocumentMapper
}

func NewDocumentVersionRepository(db *gorm.DB) contract.DocumentVersionRepository {
	return &DocumentVersionRepositoryImpl{
		db:     db,
		mapper: mapper.NewDocumentMapper(),
	}
}

func (r *DocumentVersionRepositoryImpl) Create(ctx context.Context, version *entity.DocumentVersion) error {
	m := r.mapper.VersionToModel(version)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*version = *r.mapper.VersionToEntity(m)
	return nil
}

func (r *DocumentVersionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentVersion, error) {
	var models []*model.DocumentVersion
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	versions := make([]*entity.DocumentVersion, len(models))
	for i, m := range models {
		versions[i] = r.mapper.VersionToEntity(m)
	}
	return versions, nil
}
