package repository

import (
	"context"
	"strings"
	"time"

	"EquiSync/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CompetitionFilter 赛事列表筛选
type CompetitionFilter struct {
	DateFrom      *time.Time
	DateTo        *time.Time
	Discipline    string
	VenueSubstr   string // 场地名子串（不区分大小写）
	PonyOnly      bool
	MaxDistance   *float64 // 按 venues.distance_miles 过滤
	IsCompetition *bool    // 查询面默认 true
	SourceID      uint64
}

// CompetitionRepository 赛事仓储。
// 去重键 (source_id, name, date_start, venue_id)：Upsert 撞键时
// 刷新 last_seen_at 并覆盖可变字段，first_seen_at 插入后不变。
type CompetitionRepository interface {
	Upsert(ctx context.Context, comp *model.Competition) error
	GetByID(ctx context.Context, id uint64) (*model.Competition, error)
	List(ctx context.Context, filter CompetitionFilter, page, pageSize int) ([]*model.Competition, int64, error)
	ListDisciplines(ctx context.Context) ([]string, error)
	UpdateDiscipline(ctx context.Context, from, to string, isCompetition bool) (int64, error)
}

type competitionRepository struct {
	db *gorm.DB
}

func NewCompetitionRepository(db *gorm.DB) CompetitionRepository {
	return &competitionRepository{db: db}
}

// Upsert 按去重键插入或刷新。每个事件独立提交（事务边界是单事件，
// 扫描中途失败最多损失一个事件）。
func (r *competitionRepository) Upsert(ctx context.Context, comp *model.Competition) error {
	now := time.Now().UTC()
	if comp.FirstSeenAt.IsZero() {
		comp.FirstSeenAt = now
	}
	comp.LastSeenAt = now

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "source_id"}, {Name: "name"}, {Name: "date_start"}, {Name: "venue_id"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"date_end", "discipline", "is_competition", "has_pony_classes",
				"classes", "url", "description", "raw_extract", "last_seen_at",
			}),
		}).Create(comp).Error
	})
}

func (r *competitionRepository) GetByID(ctx context.Context, id uint64) (*model.Competition, error) {
	var comp model.Competition
	if err := r.db.WithContext(ctx).Preload("Venue").Preload("Source").
		Where("id = ?", id).First(&comp).Error; err != nil {
		return nil, err
	}
	return &comp, nil
}

func (r *competitionRepository) List(ctx context.Context, filter CompetitionFilter, page, pageSize int) ([]*model.Competition, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	db := r.db.WithContext(ctx).Model(&model.Competition{}).
		Joins("JOIN venues ON venues.id = competitions.venue_id")

	if filter.DateFrom != nil {
		db = db.Where("competitions.date_start >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		db = db.Where("competitions.date_start <= ?", *filter.DateTo)
	}
	if filter.Discipline != "" {
		db = db.Where("competitions.discipline = ?", filter.Discipline)
	}
	if filter.VenueSubstr != "" {
		db = db.Where("LOWER(venues.canonical_name) LIKE ?", "%"+escapeLike(filter.VenueSubstr)+"%")
	}
	if filter.PonyOnly {
		db = db.Where("competitions.has_pony_classes = ?", true)
	}
	if filter.MaxDistance != nil {
		db = db.Where("venues.distance_miles IS NOT NULL AND venues.distance_miles <= ?", *filter.MaxDistance)
	}
	if filter.IsCompetition != nil {
		db = db.Where("competitions.is_competition = ?", *filter.IsCompetition)
	}
	if filter.SourceID != 0 {
		db = db.Where("competitions.source_id = ?", filter.SourceID)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []*model.Competition
	if err := db.Preload("Venue").Order("competitions.date_start ASC").
		Offset((page - 1) * pageSize).Limit(pageSize).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// ListDisciplines 当前库里全部非空 discipline 值（项目审计用）
func (r *competitionRepository) ListDisciplines(ctx context.Context) ([]string, error) {
	var values []string
	if err := r.db.WithContext(ctx).Model(&model.Competition{}).
		Where("discipline IS NOT NULL").
		Distinct("discipline").Pluck("discipline", &values).Error; err != nil {
		return nil, err
	}
	return values, nil
}

// UpdateDiscipline 项目审计改写：把漂移值批量改成规范化值
func (r *competitionRepository) UpdateDiscipline(ctx context.Context, from, to string, isCompetition bool) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Competition{}).
		Where("discipline = ?", from).
		Updates(map[string]interface{}{"discipline": to, "is_competition": isCompetition})
	return res.RowsAffected, res.Error
}

func escapeLike(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}
