package syncer

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Scheduler 进程内的定时触发器，按固定间隔调用 DrainAndSync。
// 外部定时任务调用 /api/cron/sync-analytics 时可以不启用。
// 同步在循环 goroutine 内串行执行，上一轮未结束时 ticker 会丢弃多余的 tick，不会重叠。
type Scheduler struct {
	worker    *Worker
	interval  time.Duration
	batchSize int
	stopChan  chan struct{}
	doneChan  chan struct{}
	logger    *zap.SugaredLogger
}

// NewScheduler 创建定时触发器
func NewScheduler(worker *Worker, interval time.Duration, batchSize int, logger *zap.SugaredLogger) *Scheduler {
	return &Scheduler{
		worker:    worker,
		interval:  interval,
		batchSize: batchSize,
		stopChan:  make(chan struct{}),
		doneChan:  make(chan struct{}),
		logger:    logger.Named("sync_scheduler"),
	}
}

// Start 启动后台同步循环
func (s *Scheduler) Start() {
	s.logger.Infof("启动点击同步任务，间隔 %s，批次 %d", s.interval, s.batchSize)
	go s.loop()
}

// Stop 停止同步循环并等待当前批次结束
func (s *Scheduler) Stop() {
	s.logger.Info("正在停止点击同步任务...")
	close(s.stopChan)
	<-s.doneChan
}

func (s *Scheduler) loop() {
	defer close(s.doneChan)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runOnce()
		case <-s.stopChan:
			s.logger.Info("点击同步任务已停止。")
			return
		}
	}
}

func (s *Scheduler) runOnce() {
	// 出队后的批次只在落库失败时丢失，时限与触发间隔无关
	ctx, cancel := context.WithTimeout(context.Background(), RunTimeout)
	defer cancel()

	result, err := s.worker.DrainAndSync(ctx, s.batchSize)
	if err != nil {
		s.logger.Errorf("点击同步失败: %v", err)
		return
	}
	if result.Popped > 0 {
		s.logger.Infow("点击同步完成", "popped", result.Popped, "inserted", result.Inserted, "discarded", result.Discarded)
	}
}
