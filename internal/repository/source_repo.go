package repository

import (
	"context"

	"EquiSync/internal/model"

	"gorm.io/gorm"
)

// SourceRepository 来源仓储（只读：来源由种子播种，运行期不新建）
type SourceRepository interface {
	GetByID(ctx context.Context, id uint64) (*model.Source, error)
	GetByKey(ctx context.Context, key string) (*model.Source, error)
	ListAll(ctx context.Context) ([]*model.Source, error)
	ListEnabled(ctx context.Context) ([]*model.Source, error)
}

type sourceRepository struct {
	db *gorm.DB
}

func NewSourceRepository(db *gorm.DB) SourceRepository {
	return &sourceRepository{db: db}
}

func (r *sourceRepository) GetByID(ctx context.Context, id uint64) (*model.Source, error) {
	var src model.Source
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&src).Error; err != nil {
		return nil, err
	}
	return &src, nil
}

func (r *sourceRepository) GetByKey(ctx context.Context, key string) (*model.Source, error) {
	var src model.Source
	if err := r.db.WithContext(ctx).Where("key = ?", key).First(&src).Error; err != nil {
		return nil, err
	}
	return &src, nil
}

func (r *sourceRepository) ListAll(ctx context.Context) ([]*model.Source, error) {
	var list []*model.Source
	if err := r.db.WithContext(ctx).Order("display_name ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *sourceRepository) ListEnabled(ctx context.Context) ([]*model.Source, error) {
	var list []*model.Source
	if err := r.db.WithContext(ctx).Where("enabled = ?", true).Order("id ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
