package model

import (
	"time"

	"gorm.io/datatypes"
)

// Source 数据来源（启动时从编译内置定义播种，运行期不新建）
type Source struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	Key         string    `gorm:"column:key;type:varchar(64);uniqueIndex;not null;comment:解析器键（稳定）"`
	DisplayName string    `gorm:"column:display_name;type:varchar(128);not null;comment:来源展示名"`
	URL         string    `gorm:"column:url;type:varchar(512);not null;comment:来源地址"`
	Enabled     bool      `gorm:"column:enabled;type:boolean;default:true;comment:是否启用"`
	CreatedAt   time.Time `gorm:"column:created_at;type:timestamp;default:CURRENT_TIMESTAMP;comment:创建时间"`
}

// Venue 场地（canonical_name 为规范化后的唯一名称）
type Venue struct {
	ID            uint64   `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	CanonicalName string   `gorm:"column:canonical_name;type:varchar(256);uniqueIndex;not null;comment:规范化场地名"`
	Postcode      *string  `gorm:"column:postcode;type:varchar(16);comment:规范化邮编（OUTWARD INWARD）"`
	Latitude      *float64 `gorm:"column:latitude;type:numeric(10,6);comment:纬度（UK范围内）"`
	Longitude     *float64 `gorm:"column:longitude;type:numeric(10,6);comment:经度（UK范围内）"`
	DistanceMiles *float64 `gorm:"column:distance_miles;type:numeric(10,2);comment:距家庭邮编的大圆距离（英里）"`
}

// VenueAlias 场地别名（种子别名与运行期学习的别名同表存放）
type VenueAlias struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	AliasName string    `gorm:"column:alias_name;type:varchar(256);uniqueIndex;not null;comment:规范化别名"`
	VenueID   uint64    `gorm:"column:venue_id;type:bigint;not null;index;comment:关联场地ID"`
	Origin    string    `gorm:"column:origin;type:varchar(16);default:runtime;comment:来源：seed/runtime"`
	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:CURRENT_TIMESTAMP;comment:创建时间"`
}

// Competition 赛事（分类、场地解析后的持久化行）
// 去重键：(source_id, name, date_start, venue_id)
type Competition struct {
	ID             uint64         `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	SourceID       uint64         `gorm:"column:source_id;type:bigint;not null;uniqueIndex:uk_competition_dedup;comment:关联来源ID"`
	Name           string         `gorm:"column:name;type:varchar(512);not null;uniqueIndex:uk_competition_dedup;comment:赛事名称"`
	DateStart      time.Time      `gorm:"column:date_start;type:date;not null;uniqueIndex:uk_competition_dedup;index:idx_comp_date_flag;comment:开始日期"`
	DateEnd        *time.Time     `gorm:"column:date_end;type:date;comment:结束日期"`
	VenueID        uint64         `gorm:"column:venue_id;type:bigint;not null;uniqueIndex:uk_competition_dedup;index;comment:关联场地ID"`
	IsCompetition  bool           `gorm:"column:is_competition;type:boolean;index:idx_comp_date_flag;comment:是否比赛（分类器判定）"`
	Discipline     *string        `gorm:"column:discipline;type:varchar(64);index;comment:规范化项目类别"`
	HasPonyClasses bool           `gorm:"column:has_pony_classes;type:boolean;default:false;comment:是否含小马/青少年级别"`
	URL            *string        `gorm:"column:url;type:varchar(1024);comment:赛事链接（仅http/https）"`
	Classes        datatypes.JSON `gorm:"column:classes;type:jsonb;comment:级别列表（有序）"`
	Description    *string        `gorm:"column:description;type:text;comment:赛事描述"`
	RawExtract     *string        `gorm:"column:raw_extract;type:text;comment:解析器原始输出（JSON）"`
	FirstSeenAt    time.Time      `gorm:"column:first_seen_at;type:timestamp;not null;comment:首次发现时间（插入后不变）"`
	LastSeenAt     time.Time      `gorm:"column:last_seen_at;type:timestamp;not null;comment:最近发现时间（每次匹配更新）"`

	Venue  *Venue  `gorm:"foreignKey:VenueID"`
	Source *Source `gorm:"foreignKey:SourceID"`
}

// Scan 扫描审计记录（只增不改）
type Scan struct {
	ID               uint64     `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	SourceID         uint64     `gorm:"column:source_id;type:bigint;not null;index;comment:关联来源ID"`
	StartedAt        time.Time  `gorm:"column:started_at;type:timestamp;not null;comment:开始时间"`
	FinishedAt       *time.Time `gorm:"column:finished_at;type:timestamp;comment:结束时间"`
	Status           string     `gorm:"column:status;type:varchar(16);default:pending;comment:状态：pending/running/completed/failed"`
	EventsFound      int        `gorm:"column:events_found;type:int;default:0;comment:解析器产出事件数"`
	EventsSkipped    int        `gorm:"column:events_skipped;type:int;default:0;comment:规范化失败被跳过的事件数"`
	EventsUpserted   int        `gorm:"column:events_upserted;type:int;default:0;comment:成功入库（新增或刷新）的事件数"`
	CompetitionCount int        `gorm:"column:competition_count;type:int;default:0;comment:判定为比赛的事件数"`
	TrainingCount    int        `gorm:"column:training_count;type:int;default:0;comment:判定为非比赛的事件数"`
	Error            *string    `gorm:"column:error;type:text;comment:失败原因"`
}

// AppSetting 运行期可改的应用设置（如家庭邮编），重启后保留
type AppSetting struct {
	Key   string `gorm:"column:key;type:varchar(64);primaryKey;comment:设置键"`
	Value string `gorm:"column:value;type:text;not null;comment:设置值"`
}

func (Source) TableName() string      { return "sources" }
func (Venue) TableName() string       { return "venues" }
func (VenueAlias) TableName() string  { return "venue_aliases" }
func (Competition) TableName() string { return "competitions" }
func (Scan) TableName() string        { return "scans" }
func (AppSetting) TableName() string  { return "app_settings" }
