package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"EquiSync/internal/config"
	"EquiSync/internal/geocoder"
	"EquiSync/internal/matcher"
	"EquiSync/internal/model"
	"EquiSync/internal/parser"
	"EquiSync/internal/repository"
	"EquiSync/internal/utils/httpclient"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// 测试桩解析器：吐出预先设好的事件
var (
	stubMu     sync.Mutex
	stubEvents []model.ExtractedEvent
	stubErr    error
)

func setStub(events []model.ExtractedEvent, err error) {
	stubMu.Lock()
	defer stubMu.Unlock()
	stubEvents = events
	stubErr = err
}

type stubParser struct{}

func (stubParser) FetchAndParse(ctx context.Context, url string) ([]model.ExtractedEvent, error) {
	stubMu.Lock()
	defer stubMu.Unlock()
	return stubEvents, stubErr
}

// 慢解析器：阻塞到放行或ctx取消（调度重叠抑制测试用）
var slowRelease = make(chan struct{})

type slowParser struct{}

func (slowParser) FetchAndParse(ctx context.Context, url string) ([]model.ExtractedEvent, error) {
	select {
	case <-slowRelease:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func init() {
	parser.Register("test_source", func(parser.Deps) parser.Parser { return stubParser{} })
	parser.Register("slow_source", func(parser.Deps) parser.Parser { return slowParser{} })
}

type testEnv struct {
	db       *gorm.DB
	svc      *ScanService
	source   *model.Source
	scanRepo repository.ScanRepository
	venues   repository.VenueRepository
}

func newTestEnv(t *testing.T, sourceKey string) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.AutoMigrate(&model.Source{}, &model.Venue{}, &model.VenueAlias{},
		&model.Competition{}, &model.Scan{}, &model.AppSetting{}); err != nil {
		t.Fatal(err)
	}

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	cfg := &config.Config{}
	cfg.Scan.TimeoutSeconds = 30
	cfg.Scan.HTTPRatePerHost = 100

	source := &model.Source{Key: sourceKey, DisplayName: "Test Source",
		URL: "http://example.invalid", Enabled: true}
	if err := db.Create(source).Error; err != nil {
		t.Fatal(err)
	}

	client := httpclient.New(5*time.Second, 100, log)
	venueRepo := repository.NewVenueRepository(db)
	geo := geocoder.New(client, venueRepo, config.GeocoderConfig{}, log)
	m := matcher.New(venueRepo, log)
	svc := NewScanService(db, log, cfg, parser.Deps{Client: client, Logger: log}, m, geo)

	return &testEnv{
		db:       db,
		svc:      svc,
		source:   source,
		scanRepo: repository.NewScanRepository(db),
		venues:   venueRepo,
	}
}

func (e *testEnv) runScan(t *testing.T) *model.Scan {
	t.Helper()
	ctx := context.Background()
	scan := &model.Scan{SourceID: e.source.ID, StartedAt: time.Now().UTC(),
		Status: model.ScanStatusPending}
	if err := e.scanRepo.Create(ctx, scan); err != nil {
		t.Fatal(err)
	}
	e.svc.RunScan(ctx, scan, model.TriggerManual)
	return scan
}

func (e *testEnv) allCompetitions(t *testing.T) []*model.Competition {
	t.Helper()
	var comps []*model.Competition
	if err := e.db.Preload("Venue").Find(&comps).Error; err != nil {
		t.Fatal(err)
	}
	return comps
}

// 场景：训练关键词压过项目提示
func TestScanTrainingKeywordOverride(t *testing.T) {
	env := newTestEnv(t, "test_source")
	setStub([]model.ExtractedEvent{{
		Name: "Maddy Moffet Jump Polework Training Clinic", DateStart: "2026-02-25",
		VenueName: "Abbey Farm", Discipline: "Show Jumping",
	}}, nil)

	scan := env.runScan(t)
	if scan.Status != model.ScanStatusCompleted {
		t.Fatalf("扫描应完成: %+v", scan)
	}
	comps := env.allCompetitions(t)
	if len(comps) != 1 {
		t.Fatalf("应入库1条，实际 %d", len(comps))
	}
	c := comps[0]
	if c.Discipline == nil || *c.Discipline != "Training" || c.IsCompetition {
		t.Errorf("训练关键词应压过提示: discipline=%v is_competition=%v", c.Discipline, c.IsCompetition)
	}
	if scan.TrainingCount != 1 || scan.CompetitionCount != 0 {
		t.Errorf("计数异常: %+v", scan)
	}
}

// 场景：项目提示可解析时采信
func TestScanDisciplineHintTrusted(t *testing.T) {
	env := newTestEnv(t, "test_source")
	setStub([]model.ExtractedEvent{{
		Name: "Spring Show", DateStart: "2026-05-10",
		VenueName: "Arena UK", Discipline: "showjump",
	}}, nil)

	env.runScan(t)
	comps := env.allCompetitions(t)
	if len(comps) != 1 {
		t.Fatal("应入库1条")
	}
	c := comps[0]
	if c.Discipline == nil || *c.Discipline != "Show Jumping" || !c.IsCompetition {
		t.Errorf("提示应解析为Show Jumping: %v %v", c.Discipline, c.IsCompetition)
	}
}

// 场景：别名收敛到同一场地
func TestScanVenueAliasCollapse(t *testing.T) {
	env := newTestEnv(t, "test_source")
	ctx := context.Background()

	pc := "WR10 2DH"
	seedVenue := &model.Venue{CanonicalName: "Allens Hill Competition Centre", Postcode: &pc}
	if err := env.venues.Create(ctx, seedVenue); err != nil {
		t.Fatal(err)
	}
	if err := env.venues.CreateAlias(ctx, &model.VenueAlias{
		AliasName: "Allens Hill", VenueID: seedVenue.ID, Origin: "seed"}); err != nil {
		t.Fatal(err)
	}

	setStub([]model.ExtractedEvent{
		{Name: "Show A", DateStart: "2026-03-01", VenueName: "Allens Hill"},
		{Name: "Show B", DateStart: "2026-03-02", VenueName: "Allens Hill Competition Centre"},
	}, nil)

	env.runScan(t)
	comps := env.allCompetitions(t)
	if len(comps) != 2 {
		t.Fatalf("应入库2条，实际 %d", len(comps))
	}
	if comps[0].VenueID != comps[1].VenueID {
		t.Errorf("两条赛事应共享场地: %d vs %d", comps[0].VenueID, comps[1].VenueID)
	}
	if comps[0].VenueID != seedVenue.ID {
		t.Errorf("应收敛到种子场地 %d，实际 %d", seedVenue.ID, comps[0].VenueID)
	}
}

// 场景：邮编规范化入库
func TestScanPostcodeNormalised(t *testing.T) {
	env := newTestEnv(t, "test_source")
	setStub([]model.ExtractedEvent{{
		Name: "Evening Dressage", DateStart: "2026-04-01",
		VenueName: "Brand New Place", VenuePostcode: "cv129ja",
	}}, nil)

	env.runScan(t)
	comps := env.allCompetitions(t)
	if len(comps) != 1 {
		t.Fatal("应入库1条")
	}
	v := comps[0].Venue
	if v == nil || v.Postcode == nil || *v.Postcode != "CV12 9JA" {
		t.Errorf("场地邮编应为 CV12 9JA: %+v", v)
	}
}

// 场景：垃圾场地名归到 Tbc，事件保留
func TestScanJunkVenueGuard(t *testing.T) {
	env := newTestEnv(t, "test_source")
	setStub([]model.ExtractedEvent{{
		Name: "Mystery Show", DateStart: "2026-06-01",
		VenueName: "http://example.com/event/123",
	}}, nil)

	scan := env.runScan(t)
	if scan.EventsUpserted != 1 {
		t.Fatalf("垃圾场地名不丢事件: %+v", scan)
	}
	comps := env.allCompetitions(t)
	if comps[0].Venue.CanonicalName != "Tbc" {
		t.Errorf("场地应为Tbc哨兵: %q", comps[0].Venue.CanonicalName)
	}
}

// 场景：过去的事件照常入库（解析器不筛日期）
func TestScanPastEventPreserved(t *testing.T) {
	env := newTestEnv(t, "test_source")
	setStub([]model.ExtractedEvent{{
		Name: "Historic Show", DateStart: "2023-07-15", VenueName: "Old Grounds",
	}}, nil)

	scan := env.runScan(t)
	if scan.EventsUpserted != 1 {
		t.Errorf("过去的事件应照常入库: %+v", scan)
	}
}

// 去重键：同一来源重复扫描不产生重复行，last_seen_at 前移，first_seen_at 不变
func TestScanUpsertDedup(t *testing.T) {
	env := newTestEnv(t, "test_source")
	setStub([]model.ExtractedEvent{{
		Name: "Weekly Show", DateStart: "2026-05-01", VenueName: "Somewhere",
		Discipline: "dressage",
	}}, nil)

	env.runScan(t)
	first := env.allCompetitions(t)
	if len(first) != 1 {
		t.Fatal("第一次扫描应入库1条")
	}
	firstSeen := first[0].FirstSeenAt
	lastSeen := first[0].LastSeenAt

	time.Sleep(20 * time.Millisecond)
	scan2 := env.runScan(t)
	if scan2.EventsUpserted != 1 {
		t.Errorf("重复扫描仍计入upsert: %+v", scan2)
	}

	second := env.allCompetitions(t)
	if len(second) != 1 {
		t.Fatalf("重复扫描不得产生重复行，实际 %d 行", len(second))
	}
	if !second[0].FirstSeenAt.Equal(firstSeen) {
		t.Errorf("first_seen_at 插入后不可变: %v → %v", firstSeen, second[0].FirstSeenAt)
	}
	if !second[0].LastSeenAt.After(lastSeen) {
		t.Errorf("last_seen_at 应前移: %v → %v", lastSeen, second[0].LastSeenAt)
	}
}

// 坏日期跳过，扫描继续，计数入skip
func TestScanInvalidDateSkipped(t *testing.T) {
	env := newTestEnv(t, "test_source")
	setStub([]model.ExtractedEvent{
		{Name: "Bad Date", DateStart: "soon", VenueName: "X"},
		{Name: "Good Date", DateStart: "2026-08-01", VenueName: "X"},
	}, nil)

	scan := env.runScan(t)
	if scan.Status != model.ScanStatusCompleted {
		t.Fatalf("单事件失败不拖垮扫描: %+v", scan)
	}
	if scan.EventsFound != 2 || scan.EventsUpserted != 1 || scan.EventsSkipped != 1 {
		t.Errorf("计数异常: found=%d upserted=%d skipped=%d",
			scan.EventsFound, scan.EventsUpserted, scan.EventsSkipped)
	}
}

// 非http链接被丢弃，事件保留
func TestScanNonHTTPURLDropped(t *testing.T) {
	env := newTestEnv(t, "test_source")
	setStub([]model.ExtractedEvent{{
		Name: "Show", DateStart: "2026-09-01", VenueName: "X",
		URL: "javascript:alert(1)",
	}}, nil)

	env.runScan(t)
	comps := env.allCompetitions(t)
	if len(comps) != 1 {
		t.Fatal("事件应保留")
	}
	if comps[0].URL != nil {
		t.Errorf("非http链接应被丢弃: %v", *comps[0].URL)
	}
}

// 零事件是完成不是失败
func TestScanZeroEventsCompleted(t *testing.T) {
	env := newTestEnv(t, "test_source")
	setStub(nil, nil)

	scan := env.runScan(t)
	if scan.Status != model.ScanStatusCompleted || scan.EventsFound != 0 {
		t.Errorf("零事件应为completed: %+v", scan)
	}
}

// 解析器崩溃 → 扫描failed，错误被捕获
func TestScanParserFailure(t *testing.T) {
	env := newTestEnv(t, "test_source")
	setStub(nil, context.DeadlineExceeded)

	scan := env.runScan(t)
	if scan.Status != model.ScanStatusFailed {
		t.Fatalf("解析器失败应标记failed: %+v", scan)
	}
	if scan.Error == nil {
		t.Error("失败原因应被捕获")
	}
}

// 解析器坐标写入场地
func TestScanParserCoordsPersisted(t *testing.T) {
	env := newTestEnv(t, "test_source")
	lat, lng := 52.9634, -0.6474
	setStub([]model.ExtractedEvent{{
		Name: "Coords Show", DateStart: "2026-05-05", VenueName: "Arena UK",
		Latitude: &lat, Longitude: &lng,
	}}, nil)

	env.runScan(t)
	comps := env.allCompetitions(t)
	v := comps[0].Venue
	if v.Latitude == nil || *v.Latitude != lat {
		t.Errorf("解析器坐标应写入场地: %+v", v)
	}
}
