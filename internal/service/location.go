package service

import (
	"context"
	"fmt"

	"EquiSync/internal/geocoder"
	"EquiSync/internal/model"
	"EquiSync/internal/normalize"
	"EquiSync/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LocationService 家庭邮编管理：更新后重新编码家庭位置，
// 给所有有坐标的场地重算 distance_miles，并把设置持久化。
type LocationService struct {
	db        *gorm.DB
	geocoder  *geocoder.Geocoder
	venueRepo repository.VenueRepository
	logger    *logrus.Logger
}

func NewLocationService(db *gorm.DB, g *geocoder.Geocoder, logger *logrus.Logger) *LocationService {
	return &LocationService{
		db:        db,
		geocoder:  g,
		venueRepo: repository.NewVenueRepository(db),
		logger:    logger,
	}
}

// LoadSavedPostcode 启动时读取持久化的家庭邮编（没有则返回空串）
func (s *LocationService) LoadSavedPostcode(ctx context.Context) string {
	var setting model.AppSetting
	if err := s.db.WithContext(ctx).
		Where("key = ?", model.SettingHomePostcode).First(&setting).Error; err != nil {
		return ""
	}
	return setting.Value
}

// UpdateHomePostcode 更新家庭邮编。返回重算距离的场地数。
func (s *LocationService) UpdateHomePostcode(ctx context.Context, raw string) (int, error) {
	postcode := normalize.Postcode(raw)
	if postcode == "" {
		return 0, fmt.Errorf("无效的邮编: %q", raw)
	}
	if !s.geocoder.SetHome(ctx, postcode) {
		return 0, fmt.Errorf("邮编%s地理编码失败", postcode)
	}

	// 持久化设置，重启后仍然生效
	setting := model.AppSetting{Key: model.SettingHomePostcode, Value: postcode}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&setting).Error; err != nil {
		return 0, fmt.Errorf("持久化家庭邮编失败: %w", err)
	}

	return s.RecomputeDistances(ctx)
}

// RecomputeDistances 给所有有坐标的场地重算到家庭位置的距离
func (s *LocationService) RecomputeDistances(ctx context.Context) (int, error) {
	venues, err := s.venueRepo.ListWithCoords(ctx)
	if err != nil {
		return 0, err
	}
	updated := 0
	for _, v := range venues {
		d := s.geocoder.Distance(*v.Latitude, *v.Longitude)
		if d == nil {
			continue
		}
		if err := s.venueRepo.SetDistance(ctx, v.ID, *d); err != nil {
			s.logger.WithError(err).WithField("venue", v.CanonicalName).Warn("距离写入失败")
			continue
		}
		updated++
	}
	s.logger.WithField("venues", updated).Info("场地距离重算完成")
	return updated, nil
}
