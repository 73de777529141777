package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"EquiSync/internal/classifier"
	"EquiSync/internal/config"
	"EquiSync/internal/geocoder"
	"EquiSync/internal/matcher"
	"EquiSync/internal/model"
	"EquiSync/internal/normalize"
	"EquiSync/internal/parser"
	"EquiSync/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ScanService 扫描编排器：一次调用扫描一个来源。
// 流程：分发解析器 → 提取 → 逐事件（日期解析→场地规范化→邮编规范化→
// 分类→场地解析→地理编码→URL清洗→upsert）→ 场地回填 → 落审计行。
type ScanService struct {
	db       *gorm.DB
	logger   *logrus.Logger
	cfg      *config.Config
	deps     parser.Deps
	matcher  *matcher.Matcher
	geocoder *geocoder.Geocoder

	sourceRepo repository.SourceRepository
	scanRepo   repository.ScanRepository
	compRepo   repository.CompetitionRepository
	venueRepo  repository.VenueRepository
}

func NewScanService(db *gorm.DB, logger *logrus.Logger, cfg *config.Config,
	deps parser.Deps, m *matcher.Matcher, g *geocoder.Geocoder) *ScanService {
	return &ScanService{
		db:         db,
		logger:     logger,
		cfg:        cfg,
		deps:       deps,
		matcher:    m,
		geocoder:   g,
		sourceRepo: repository.NewSourceRepository(db),
		scanRepo:   repository.NewScanRepository(db),
		compRepo:   repository.NewCompetitionRepository(db),
		venueRepo:  repository.NewVenueRepository(db),
	}
}

// RunScan 执行一次扫描。scan 行由触发方预建（pending），本方法负责
// 状态流转 pending → running → (completed|failed)。
// trigger 为 scheduled 时扫描完成后追加项目审计。
func (s *ScanService) RunScan(ctx context.Context, scan *model.Scan, trigger string) {
	started := time.Now().UTC()
	scan.StartedAt = started
	scan.Status = model.ScanStatusRunning
	if err := s.scanRepo.Save(ctx, scan); err != nil {
		s.logger.WithError(err).WithField("scan", scan.ID).Error("扫描状态写入失败")
		return
	}

	// 单次扫描的总耗时预算；超时后取消解析器，已入库事件保留
	timeout := time.Duration(s.cfg.Scan.TimeoutSeconds) * time.Second
	scanCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := s.scanSource(scanCtx, scan)

	now := time.Now().UTC()
	scan.FinishedAt = &now
	if err != nil {
		scan.Status = model.ScanStatusFailed
		msg := err.Error()
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(scanCtx.Err(), context.DeadlineExceeded) {
			msg = "timeout"
		}
		scan.Error = &msg
	} else {
		scan.Status = model.ScanStatusCompleted
	}
	// 终态落库用外层ctx：扫描超时不应吞掉审计行
	if saveErr := s.scanRepo.Save(ctx, scan); saveErr != nil {
		s.logger.WithError(saveErr).WithField("scan", scan.ID).Error("扫描终态写入失败")
	}

	s.logger.WithFields(logrus.Fields{
		"scan":      scan.ID,
		"source":    scan.SourceID,
		"status":    scan.Status,
		"found":     scan.EventsFound,
		"upserted":  scan.EventsUpserted,
		"skipped":   scan.EventsSkipped,
		"duration":  time.Since(started).Round(time.Millisecond).String(),
		"venue_hit": s.matcher.Counters(),
	}).Info("扫描结束")

	if scan.Status == model.ScanStatusCompleted {
		s.checkThreshold(ctx, scan)
	}

	// 项目审计只跟在调度触发的扫描后面，手动扫描保持快速返回
	if trigger == model.TriggerScheduled && scan.Status == model.ScanStatusCompleted {
		if err := s.AuditDisciplines(ctx); err != nil {
			s.logger.WithError(err).Warn("项目审计失败")
		}
	}
}

// scanSource 单来源扫描主体。返回错误即整次扫描失败（编排级故障）；
// 单个事件规范化失败只跳过该事件。
func (s *ScanService) scanSource(ctx context.Context, scan *model.Scan) error {
	source, err := s.sourceRepo.GetByID(ctx, scan.SourceID)
	if err != nil {
		return fmt.Errorf("来源%d不存在: %w", scan.SourceID, err)
	}
	if !source.Enabled {
		return fmt.Errorf("来源%s已禁用", source.Key)
	}

	log := s.logger.WithFields(logrus.Fields{"source": source.Key, "scan": scan.ID})
	parserKind := source.Key
	if !parser.Has(source.Key) {
		parserKind = "generic"
	}
	log.WithField("parser", parserKind).Info("开始扫描来源")

	// 场地索引在扫描开始时从库里重建
	if err := s.matcher.Rebuild(ctx); err != nil {
		return err
	}

	p := parser.Get(source.Key, s.deps)
	extracted, err := p.FetchAndParse(ctx, source.URL)
	if err != nil {
		return fmt.Errorf("解析器失败: %w", err)
	}

	scan.EventsFound = len(extracted)
	if len(extracted) == 0 {
		// 零事件不算失败，完成并告警
		log.Warn("解析器未产出任何事件")
		return nil
	}

	// 本次扫描学到坐标/邮编的场地，循环后统一回填距离
	touchedVenues := make(map[uint64]bool)

	for _, ev := range extracted {
		if err := ctx.Err(); err != nil {
			return err
		}
		ok, err := s.ingestEvent(ctx, scan, source, ev, touchedVenues)
		if err != nil {
			return err // 数据库错误对整次扫描是致命的
		}
		if !ok {
			scan.EventsSkipped++
			continue
		}
		scan.EventsUpserted++
	}

	s.backfillVenues(ctx, touchedVenues)
	return nil
}

// ingestEvent 单事件入库。返回 (false, nil) 表示该事件规范化失败被跳过；
// 返回错误表示数据库级故障（事务在事件边界回滚，扫描终止）。
func (s *ScanService) ingestEvent(ctx context.Context, scan *model.Scan, source *model.Source,
	ev model.ExtractedEvent, touchedVenues map[uint64]bool) (bool, error) {

	log := s.logger.WithFields(logrus.Fields{"source": source.Key, "event": ev.Name})

	// 1. 日期解析：date_start 不是ISO日期直接跳过
	dateStart, err := normalize.ParseISODate(ev.DateStart)
	if err != nil {
		log.WithField("date_start", ev.DateStart).Warn("日期无法解析，跳过事件")
		return false, nil
	}
	var dateEnd *time.Time
	if ev.DateEnd != "" {
		if d, err := normalize.ParseISODate(ev.DateEnd); err == nil {
			dateEnd = &d
		}
	}

	// 2/3. 场地名与邮编规范化（垃圾场地名归到 "Tbc"，事件保留）
	venueName := normalize.VenueName(ev.VenueName)
	postcode := normalize.Postcode(ev.VenuePostcode)

	// 4. 分类：is_competition 与规范化 discipline 只在这里决定
	discipline, isCompetition := classifier.Classify(ev.Name, ev.Discipline, ev.Description)

	// 5. 场地解析（必要时新建；保证upsert前场地一定存在）
	venueID, err := s.matcher.Resolve(ctx, venueName, postcode)
	if err != nil {
		return false, err
	}
	venue, err := s.venueRepo.GetByID(ctx, venueID)
	if err != nil {
		return false, err
	}
	if postcode != "" && venue.Postcode == nil {
		if err := s.venueRepo.SetPostcodeIfEmpty(ctx, venueID, postcode); err != nil {
			log.WithError(err).Warn("场地邮编写入失败")
		} else {
			venue.Postcode = &postcode
			touchedVenues[venueID] = true
		}
	}

	// 6. 坐标级联（新学到的坐标已写场地行）
	if _, _, learned := s.geocoder.ResolveVenue(ctx, venue, ev.Latitude, ev.Longitude); learned {
		touchedVenues[venueID] = true
	}

	// 7. URL清洗：非http/https丢掉链接，事件保留
	var urlPtr *string
	if u := normalize.SanitizeURL(ev.URL); u != "" {
		urlPtr = &u
	} else if ev.URL != "" {
		log.WithField("url", ev.URL).Warn("拒绝非HTTP链接")
	}

	// 8. upsert：去重键 (source_id, name, date_start, venue_id)
	comp := &model.Competition{
		SourceID:       source.ID,
		Name:           ev.Name,
		DateStart:      dateStart,
		DateEnd:        dateEnd,
		VenueID:        venueID,
		IsCompetition:  isCompetition,
		HasPonyClasses: ev.HasPonyClasses || normalize.DetectPonyClasses(ev.Name+" "+ev.Description),
		URL:            urlPtr,
	}
	if discipline != "" {
		d := string(discipline)
		comp.Discipline = &d
	}
	if ev.Description != "" {
		desc := ev.Description
		comp.Description = &desc
	}
	if len(ev.Classes) > 0 {
		if raw, err := json.Marshal(ev.Classes); err == nil {
			comp.Classes = raw
		}
	}
	if raw, err := json.Marshal(ev); err == nil {
		rawStr := string(raw)
		comp.RawExtract = &rawStr
	}

	if err := s.compRepo.Upsert(ctx, comp); err != nil {
		return false, fmt.Errorf("upsert失败: %w", err)
	}

	if isCompetition {
		scan.CompetitionCount++
	} else {
		scan.TrainingCount++
	}
	return true, nil
}

// backfillVenues 本次扫描学到坐标或邮编的场地，统一重算一次距离。
// 同场地的兄弟赛事通过场地引用读坐标，无需逐行传播。
func (s *ScanService) backfillVenues(ctx context.Context, touched map[uint64]bool) {
	if len(touched) == 0 {
		return
	}
	filled := 0
	for venueID := range touched {
		venue, err := s.venueRepo.GetByID(ctx, venueID)
		if err != nil {
			continue
		}
		if venue.Latitude == nil || venue.Longitude == nil {
			continue
		}
		if d := s.geocoder.Distance(*venue.Latitude, *venue.Longitude); d != nil {
			if err := s.venueRepo.SetDistance(ctx, venueID, *d); err == nil {
				filled++
			}
		}
	}
	if filled > 0 {
		s.logger.WithField("venues", filled).Info("场地距离回填完成")
	}
}

// checkThreshold 事件数比上次完成的扫描掉了一半以上时告警（解析器可能坏了）
func (s *ScanService) checkThreshold(ctx context.Context, scan *model.Scan) {
	prev, err := s.scanRepo.PrevCompleted(ctx, scan.SourceID, scan.ID)
	if err != nil || prev.EventsFound == 0 {
		return
	}
	if scan.EventsFound*2 < prev.EventsFound {
		s.logger.WithFields(logrus.Fields{
			"source":   scan.SourceID,
			"found":    scan.EventsFound,
			"previous": prev.EventsFound,
		}).Warn("事件数比上次扫描大幅下降，解析器可能需要检查")
	}
}
