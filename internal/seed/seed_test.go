package seed

import (
	"context"
	"testing"

	"EquiSync/internal/model"
	"EquiSync/internal/normalize"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newSeedDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.AutoMigrate(&model.Source{}, &model.Venue{}, &model.VenueAlias{}); err != nil {
		t.Fatal(err)
	}
	return db
}

func counts(t *testing.T, db *gorm.DB) (sources, venues, aliases int64) {
	t.Helper()
	db.Model(&model.Source{}).Count(&sources)
	db.Model(&model.Venue{}).Count(&venues)
	db.Model(&model.VenueAlias{}).Count(&aliases)
	return
}

// 播种幂等：跑两遍数据库状态一致
func TestSeedIdempotent(t *testing.T) {
	db := newSeedDB(t)
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	ctx := context.Background()

	if err := Run(ctx, db, log); err != nil {
		t.Fatal(err)
	}
	s1, v1, a1 := counts(t, db)
	if s1 != int64(len(Sources)) {
		t.Errorf("来源数 %d，期望 %d", s1, len(Sources))
	}
	if v1 != int64(len(Venues)) {
		t.Errorf("场地数 %d，期望 %d", v1, len(Venues))
	}
	if a1 == 0 {
		t.Error("别名应已播种")
	}

	if err := Run(ctx, db, log); err != nil {
		t.Fatal(err)
	}
	s2, v2, a2 := counts(t, db)
	if s1 != s2 || v1 != v2 || a1 != a2 {
		t.Errorf("二次播种改变了状态: (%d,%d,%d) → (%d,%d,%d)", s1, v1, a1, s2, v2, a2)
	}
}

// 播种不覆盖已有行
func TestSeedDoesNotOverwrite(t *testing.T) {
	db := newSeedDB(t)
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	ctx := context.Background()

	if err := Run(ctx, db, log); err != nil {
		t.Fatal(err)
	}

	// 运行期学到的坐标不被下次播种冲掉
	lat := 53.0
	if err := db.Model(&model.Venue{}).
		Where("canonical_name = ?", "Sykehouse").
		Update("latitude", lat).Error; err != nil {
		t.Fatal(err)
	}

	if err := Run(ctx, db, log); err != nil {
		t.Fatal(err)
	}
	var v model.Venue
	if err := db.Where("canonical_name = ?", "Sykehouse").First(&v).Error; err != nil {
		t.Fatal(err)
	}
	if v.Latitude == nil || *v.Latitude != lat {
		t.Errorf("播种覆盖了运行期数据: %+v", v.Latitude)
	}
}

// 种子场地名本身必须已是规范化形式（别名表才有意义）
func TestSeedVenueNamesAreCanonical(t *testing.T) {
	for _, vs := range Venues {
		if vs.CanonicalName == "" {
			t.Error("场地种子不能有空名")
		}
		if got := normalize.VenueName(vs.CanonicalName); got != vs.CanonicalName {
			t.Errorf("场地种子名不是规范化形式: %q → %q", vs.CanonicalName, got)
		}
	}
	// 种子来源key唯一
	seen := map[string]bool{}
	for _, s := range Sources {
		if seen[s.Key] {
			t.Errorf("来源key重复: %s", s.Key)
		}
		seen[s.Key] = true
	}
}
