package seed

import (
	"context"
	"fmt"

	"EquiSync/internal/model"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Run 启动播种：来源定义、场地种子、别名，全部幂等（按唯一键插入，不覆盖）。
// 跑两遍得到完全一致的数据库状态。
func Run(ctx context.Context, db *gorm.DB, logger *logrus.Logger) error {
	if err := seedSources(ctx, db); err != nil {
		return fmt.Errorf("播种来源失败: %w", err)
	}
	if err := seedVenues(ctx, db, logger); err != nil {
		return fmt.Errorf("播种场地失败: %w", err)
	}
	logger.WithFields(logrus.Fields{
		"sources": len(Sources),
		"venues":  len(Venues),
	}).Info("种子数据检查完成")
	return nil
}

// seedSources 按唯一key插入来源，已存在的行不动
func seedSources(ctx context.Context, db *gorm.DB) error {
	for _, def := range Sources {
		src := model.Source{
			Key:         def.Key,
			DisplayName: def.DisplayName,
			URL:         def.URL,
			Enabled:     def.Enabled,
		}
		if err := db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoNothing: true,
		}).Create(&src).Error; err != nil {
			return fmt.Errorf("来源%s: %w", def.Key, err)
		}
	}
	return nil
}

// seedVenues 按规范化名插入场地（已存在的行不动），再挂种子别名。
// 场地自指名不写入别名表，匹配器建索引时会自行加入。
func seedVenues(ctx context.Context, db *gorm.DB, logger *logrus.Logger) error {
	for _, vs := range Venues {
		venue := model.Venue{CanonicalName: vs.CanonicalName}
		if vs.Postcode != "" {
			pc := vs.Postcode
			venue.Postcode = &pc
		}
		if vs.Latitude != 0 || vs.Longitude != 0 {
			lat, lng := vs.Latitude, vs.Longitude
			venue.Latitude = &lat
			venue.Longitude = &lng
		}
		if err := db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "canonical_name"}},
			DoNothing: true,
		}).Create(&venue).Error; err != nil {
			return fmt.Errorf("场地%s: %w", vs.CanonicalName, err)
		}
		if venue.ID == 0 {
			// 冲突路径拿不到ID，回读
			if err := db.WithContext(ctx).Where("canonical_name = ?", vs.CanonicalName).
				First(&venue).Error; err != nil {
				return fmt.Errorf("回读场地%s: %w", vs.CanonicalName, err)
			}
		}

		for _, alias := range vs.Aliases {
			va := model.VenueAlias{
				AliasName: alias,
				VenueID:   venue.ID,
				Origin:    "seed",
			}
			if err := db.WithContext(ctx).Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "alias_name"}},
				DoNothing: true,
			}).Create(&va).Error; err != nil {
				logger.WithError(err).WithField("alias", alias).Warn("别名播种失败，跳过")
			}
		}
	}
	return nil
}
