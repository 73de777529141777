package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"EquiSync/internal/model"
	"EquiSync/internal/repository"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// 停机时等运行中扫描退出的宽限期
const shutdownGrace = 10 * time.Second

// Scheduler 每日定时扫描 + 按需触发。
// 同一来源同时只允许一个扫描在跑：重复触发立即返回"已在运行"。
type Scheduler struct {
	scanSvc    *ScanService
	sourceRepo repository.SourceRepository
	scanRepo   repository.ScanRepository
	logger     *logrus.Logger

	concurrency int
	cron        *cron.Cron

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu       sync.Mutex
	inFlight map[uint64]bool // 来源ID → 是否有扫描在跑
}

func NewScheduler(scanSvc *ScanService, sourceRepo repository.SourceRepository,
	scanRepo repository.ScanRepository, concurrency int, logger *logrus.Logger) *Scheduler {
	if concurrency <= 0 {
		concurrency = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		scanSvc:     scanSvc,
		sourceRepo:  sourceRepo,
		scanRepo:    scanRepo,
		logger:      logger,
		concurrency: concurrency,
		baseCtx:     ctx,
		cancel:      cancel,
		inFlight:    make(map[uint64]bool),
	}
}

// Start 按 "HH:MM"（本地时间）注册每日扫描
func (s *Scheduler) Start(schedule string) error {
	spec, err := scheduleToCron(schedule)
	if err != nil {
		return err
	}
	s.cron = cron.New()
	if _, err := s.cron.AddFunc(spec, func() {
		s.logger.Info("每日定时扫描开始")
		if _, err := s.TriggerAll(model.TriggerScheduled); err != nil {
			s.logger.WithError(err).Error("定时扫描触发失败")
		}
	}); err != nil {
		return fmt.Errorf("注册定时任务失败: %w", err)
	}
	s.cron.Start()
	s.logger.WithField("schedule", schedule).Info("调度器已启动")
	return nil
}

// Stop 停止调度并取消全部运行中的扫描，最多等10秒
func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.logger.Info("调度器已停止")
	case <-time.After(shutdownGrace):
		s.logger.Warn("等待扫描退出超时，强制停止")
	}
}

// TriggerAll 扫描全部启用的来源。为每个不在跑的来源建一条 pending
// 扫描记录并投入工作池（并发上限 concurrency，单来源内部严格串行）。
func (s *Scheduler) TriggerAll(trigger string) ([]*model.Scan, error) {
	sources, err := s.sourceRepo.ListEnabled(s.baseCtx)
	if err != nil {
		return nil, fmt.Errorf("加载启用来源失败: %w", err)
	}

	var scans []*model.Scan
	for _, src := range sources {
		scan, already, err := s.enqueue(src.ID)
		if err != nil {
			return nil, err
		}
		if already {
			continue
		}
		scans = append(scans, scan)
	}

	s.wg.Add(1)
	go func(batch []*model.Scan) {
		defer s.wg.Done()
		g, ctx := errgroup.WithContext(s.baseCtx)
		g.SetLimit(s.concurrency)
		for _, scan := range batch {
			g.Go(func() error {
				defer s.release(scan.SourceID)
				s.scanSvc.RunScan(ctx, scan, trigger)
				return nil
			})
		}
		_ = g.Wait()
		s.logger.WithField("sources", len(batch)).Info("扫描批次结束")
	}(scans)

	return scans, nil
}

// TriggerSource 按需扫描单个来源。already=true 表示该来源已有扫描在跑，
// 本次触发被抑制。
func (s *Scheduler) TriggerSource(sourceID uint64, trigger string) (*model.Scan, bool, error) {
	if _, err := s.sourceRepo.GetByID(s.baseCtx, sourceID); err != nil {
		return nil, false, fmt.Errorf("来源%d不存在: %w", sourceID, err)
	}
	scan, already, err := s.enqueue(sourceID)
	if err != nil || already {
		return nil, already, err
	}
	// 返回入队时的快照：后台扫描会改写 scan 本身
	snapshot := *scan

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.release(sourceID)
		s.scanSvc.RunScan(s.baseCtx, scan, trigger)
	}()
	return &snapshot, false, nil
}

// enqueue 占住来源并建 pending 扫描记录；来源已在跑时抑制并记日志
func (s *Scheduler) enqueue(sourceID uint64) (*model.Scan, bool, error) {
	s.mu.Lock()
	if s.inFlight[sourceID] {
		s.mu.Unlock()
		s.logger.WithField("source", sourceID).Info("来源已有扫描在跑，本次触发被抑制")
		return nil, true, nil
	}
	s.inFlight[sourceID] = true
	s.mu.Unlock()

	scan := &model.Scan{
		SourceID:  sourceID,
		StartedAt: time.Now().UTC(),
		Status:    model.ScanStatusPending,
	}
	if err := s.scanRepo.Create(s.baseCtx, scan); err != nil {
		s.release(sourceID)
		return nil, false, fmt.Errorf("建扫描记录失败: %w", err)
	}
	return scan, false, nil
}

func (s *Scheduler) release(sourceID uint64) {
	s.mu.Lock()
	delete(s.inFlight, sourceID)
	s.mu.Unlock()
}

// scheduleToCron "HH:MM" → cron 表达式
func scheduleToCron(schedule string) (string, error) {
	parts := strings.SplitN(strings.TrimSpace(schedule), ":", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("无效的扫描时间: %q（期望 HH:MM）", schedule)
	}
	hour, err1 := strconv.Atoi(parts[0])
	minute, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return "", fmt.Errorf("无效的扫描时间: %q（期望 HH:MM）", schedule)
	}
	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}
