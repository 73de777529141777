package repository

import (
	"context"

	"EquiSync/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VenueRepository 场地仓储。坐标写入用条件更新（仅在为空时生效），
// 跨扫描并发写同一场地时先写者胜。
type VenueRepository interface {
	GetByID(ctx context.Context, id uint64) (*model.Venue, error)
	GetByName(ctx context.Context, canonicalName string) (*model.Venue, error)
	ListAll(ctx context.Context) ([]*model.Venue, error)
	ListAliases(ctx context.Context) ([]*model.VenueAlias, error)
	Create(ctx context.Context, venue *model.Venue) error
	CreateAlias(ctx context.Context, alias *model.VenueAlias) error
	SetCoordsIfEmpty(ctx context.Context, venueID uint64, lat, lng float64) error
	SetPostcodeIfEmpty(ctx context.Context, venueID uint64, postcode string) error
	SetDistance(ctx context.Context, venueID uint64, miles float64) error
	ListWithCoords(ctx context.Context) ([]*model.Venue, error)
}

type venueRepository struct {
	db *gorm.DB
}

func NewVenueRepository(db *gorm.DB) VenueRepository {
	return &venueRepository{db: db}
}

func (r *venueRepository) GetByID(ctx context.Context, id uint64) (*model.Venue, error) {
	var v model.Venue
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *venueRepository) GetByName(ctx context.Context, canonicalName string) (*model.Venue, error) {
	var v model.Venue
	if err := r.db.WithContext(ctx).Where("canonical_name = ?", canonicalName).First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *venueRepository) ListAll(ctx context.Context) ([]*model.Venue, error) {
	var list []*model.Venue
	if err := r.db.WithContext(ctx).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *venueRepository) ListAliases(ctx context.Context) ([]*model.VenueAlias, error) {
	var list []*model.VenueAlias
	if err := r.db.WithContext(ctx).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// Create 新建场地。规范化名撞唯一索引时不报错（并发扫描同名竞态），
// 调用方回读取胜者ID。
func (r *venueRepository) Create(ctx context.Context, venue *model.Venue) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "canonical_name"}},
		DoNothing: true,
	}).Create(venue).Error
}

func (r *venueRepository) CreateAlias(ctx context.Context, alias *model.VenueAlias) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "alias_name"}},
		DoNothing: true,
	}).Create(alias).Error
}

// SetCoordsIfEmpty 条件写坐标：已有坐标的场地不动
func (r *venueRepository) SetCoordsIfEmpty(ctx context.Context, venueID uint64, lat, lng float64) error {
	return r.db.WithContext(ctx).Model(&model.Venue{}).
		Where("id = ? AND latitude IS NULL", venueID).
		Updates(map[string]interface{}{"latitude": lat, "longitude": lng}).Error
}

// SetPostcodeIfEmpty 条件写邮编：已有邮编的场地不动
func (r *venueRepository) SetPostcodeIfEmpty(ctx context.Context, venueID uint64, postcode string) error {
	return r.db.WithContext(ctx).Model(&model.Venue{}).
		Where("id = ? AND postcode IS NULL", venueID).
		Update("postcode", postcode).Error
}

func (r *venueRepository) SetDistance(ctx context.Context, venueID uint64, miles float64) error {
	return r.db.WithContext(ctx).Model(&model.Venue{}).
		Where("id = ?", venueID).
		Update("distance_miles", miles).Error
}

func (r *venueRepository) ListWithCoords(ctx context.Context) ([]*model.Venue, error) {
	var list []*model.Venue
	if err := r.db.WithContext(ctx).
		Where("latitude IS NOT NULL AND longitude IS NOT NULL").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
