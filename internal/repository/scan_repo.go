package repository

import (
	"context"
	"time"

	"EquiSync/internal/model"

	"gorm.io/gorm"
)

// ScanRepository 扫描审计仓储（只增：状态流转落在同一行上）
type ScanRepository interface {
	Create(ctx context.Context, scan *model.Scan) error
	Save(ctx context.Context, scan *model.Scan) error
	GetByID(ctx context.Context, id uint64) (*model.Scan, error)
	List(ctx context.Context, sourceID uint64, limit int) ([]*model.Scan, error)
	PrevCompleted(ctx context.Context, sourceID, excludeScanID uint64) (*model.Scan, error)
	MarkInterrupted(ctx context.Context) (int64, error)
}

type scanRepository struct {
	db *gorm.DB
}

func NewScanRepository(db *gorm.DB) ScanRepository {
	return &scanRepository{db: db}
}

func (r *scanRepository) Create(ctx context.Context, scan *model.Scan) error {
	return r.db.WithContext(ctx).Create(scan).Error
}

func (r *scanRepository) Save(ctx context.Context, scan *model.Scan) error {
	return r.db.WithContext(ctx).Save(scan).Error
}

func (r *scanRepository) GetByID(ctx context.Context, id uint64) (*model.Scan, error) {
	var s model.Scan
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *scanRepository) List(ctx context.Context, sourceID uint64, limit int) ([]*model.Scan, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	db := r.db.WithContext(ctx).Model(&model.Scan{})
	if sourceID != 0 {
		db = db.Where("source_id = ?", sourceID)
	}
	var list []*model.Scan
	if err := db.Order("started_at DESC").Limit(limit).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// PrevCompleted 上一次完成的扫描（阈值告警对比用）
func (r *scanRepository) PrevCompleted(ctx context.Context, sourceID, excludeScanID uint64) (*model.Scan, error) {
	var s model.Scan
	err := r.db.WithContext(ctx).
		Where("source_id = ? AND status = ? AND id <> ?", sourceID, model.ScanStatusCompleted, excludeScanID).
		Order("id DESC").First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// MarkInterrupted 启动时把上次进程残留的 pending/running 扫描标记为失败
func (r *scanRepository) MarkInterrupted(ctx context.Context) (int64, error) {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&model.Scan{}).
		Where("status IN ?", []string{model.ScanStatusPending, model.ScanStatusRunning}).
		Updates(map[string]interface{}{
			"status":      model.ScanStatusFailed,
			"error":       "interrupted by restart",
			"finished_at": now,
		})
	return res.RowsAffected, res.Error
}
