// Package syncer 把 Redis 队列中的点击快照批量落库，并累加链接的点击计数。
//
// 出队是破坏性读取：取出后、落库前失败的批次会丢失（至多一次投递），
// 以此换取重定向路径的低延迟。
package syncer

import (
	"context"
	"fmt"
	"time"

	"linkbio-platform/internal/metrics"
	"linkbio-platform/internal/model"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const (
	// MaxBatchSize 单次同步的出队上限
	MaxBatchSize = 1000
	// DefaultBatchSize 未指定批次大小时使用
	DefaultBatchSize = 100
	// RunTimeout 单次同步（出队到落库）的时限，与触发方无关
	RunTimeout = 30 * time.Second

	MessageNothingToSync = "No data to sync"
	MessageAllDiscarded  = "Data found in buffer but all associated links were deleted"
)

// Queue 同步任务依赖的缓冲区操作
type Queue interface {
	Pop(ctx context.Context, count int) ([]string, error)
	Reconcile(ctx context.Context, durable map[string]int64) error
}

// EmptyQueue 未启用 Redis 时使用：点击已直接落库，队列始终为空
type EmptyQueue struct{}

func (EmptyQueue) Pop(context.Context, int) ([]string, error) { return nil, nil }

func (EmptyQueue) Reconcile(context.Context, map[string]int64) error { return nil }

func (EmptyQueue) Len(context.Context) (int64, error) { return 0, nil }

func (EmptyQueue) LiveCount(context.Context, string) (int64, error) { return 0, nil }

// Result 一次同步的汇总
type Result struct {
	Message    string           `json:"message"`
	Popped     int              `json:"popped"`
	Inserted   int              `json:"inserted"`
	Discarded  int              `json:"discarded"`
	Increments map[string]int64 `json:"increments,omitempty"`
}

// Worker 同步任务
type Worker struct {
	db     *gorm.DB
	queue  Queue
	logger *zap.SugaredLogger
}

// NewWorker 创建同步任务
func NewWorker(db *gorm.DB, queue Queue, logger *zap.SugaredLogger) *Worker {
	return &Worker{
		db:     db,
		queue:  queue,
		logger: logger.Named("sync_worker"),
	}
}

// DrainAndSync 出队至多 batchSize 个条目，校验链接仍然存在后批量写入点击记录，
// 再按链接原子累加点击计数。多个实例并发执行是安全的：写入只追加，计数只做加法。
func (w *Worker) DrainAndSync(ctx context.Context, batchSize int) (*Result, error) {
	start := time.Now()
	defer func() { metrics.SyncDuration.Observe(time.Since(start).Seconds()) }()

	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if batchSize > MaxBatchSize {
		batchSize = MaxBatchSize
	}

	items, err := w.queue.Pop(ctx, batchSize)
	if err != nil {
		metrics.SyncRuns.WithLabelValues("failure").Inc()
		return nil, err
	}
	if len(items) == 0 {
		metrics.SyncRuns.WithLabelValues("empty").Inc()
		return &Result{Message: MessageNothingToSync}, nil
	}

	result := &Result{Popped: len(items)}
	metrics.SyncEntries.WithLabelValues("popped").Add(float64(len(items)))

	if err := w.persist(ctx, items, result); err != nil {
		metrics.SyncRuns.WithLabelValues("failure").Inc()
		w.logger.Errorw("同步失败，本批次已出队的条目不会回滚", "popped", result.Popped, "inserted", result.Inserted, "error", err)
		return result, err
	}

	metrics.SyncRuns.WithLabelValues("success").Inc()
	return result, nil
}

func (w *Worker) persist(ctx context.Context, items []string, result *Result) error {
	entries := make([]model.BufferedClickEntry, 0, len(items))
	for _, raw := range items {
		entry, err := model.ParseBufferedClickEntry(raw)
		if err != nil {
			result.Discarded++
			w.logger.Warnw("丢弃无法解析的队列条目", "error", err)
			continue
		}
		entries = append(entries, entry)
	}

	existing, err := w.existingLinkIDs(ctx, entries)
	if err != nil {
		return err
	}

	events := make([]model.ClickEvent, 0, len(entries))
	increments := make(map[string]int64)
	for _, entry := range entries {
		if _, ok := existing[entry.LinkID]; !ok {
			result.Discarded++
			continue
		}
		events = append(events, entry.ToClickEvent())
		increments[entry.LinkID]++
	}
	metrics.SyncEntries.WithLabelValues("discarded").Add(float64(result.Discarded))

	if len(events) == 0 {
		result.Message = MessageAllDiscarded
		return nil
	}

	if err := w.db.WithContext(ctx).Create(&events).Error; err != nil {
		return fmt.Errorf("批量写入点击记录失败: %w", err)
	}
	result.Inserted = len(events)
	metrics.SyncEntries.WithLabelValues("inserted").Add(float64(len(events)))

	if err := w.increment(ctx, increments); err != nil {
		return err
	}
	result.Increments = increments
	result.Message = fmt.Sprintf("Success. Processed %d logs. Inserted %d valid records.", result.Popped, result.Inserted)

	w.reconcile(ctx, increments)
	return nil
}

// existingLinkIDs 查询批次中仍然存在的链接
func (w *Worker) existingLinkIDs(ctx context.Context, entries []model.BufferedClickEntry) (map[string]struct{}, error) {
	seen := make(map[string]struct{})
	ids := make([]string, 0)
	for _, entry := range entries {
		if _, ok := seen[entry.LinkID]; ok {
			continue
		}
		seen[entry.LinkID] = struct{}{}
		ids = append(ids, entry.LinkID)
	}

	existing := make(map[string]struct{}, len(ids))
	if len(ids) == 0 {
		return existing, nil
	}

	var found []string
	if err := w.db.WithContext(ctx).Model(&model.Link{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return nil, fmt.Errorf("查询链接失败: %w", err)
	}
	for _, id := range found {
		existing[id] = struct{}{}
	}
	return existing, nil
}

// increment 每个链接一条 "clicks = clicks + n"，并发执行
func (w *Worker) increment(ctx context.Context, increments map[string]int64) error {
	g, gctx := errgroup.WithContext(ctx)
	for linkID, n := range increments {
		linkID, n := linkID, n
		g.Go(func() error {
			err := w.db.WithContext(gctx).Model(&model.Link{}).
				Where("id = ?", linkID).
				UpdateColumn("clicks", gorm.Expr("clicks + ?", n)).Error
			if err != nil {
				return fmt.Errorf("累加链接 %s 点击数失败: %w", linkID, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// reconcile 用最新的持久化计数校正实时计数，失败只记日志
func (w *Worker) reconcile(ctx context.Context, increments map[string]int64) {
	ids := make([]string, 0, len(increments))
	for id := range increments {
		ids = append(ids, id)
	}

	var links []model.Link
	if err := w.db.WithContext(ctx).Select("id", "clicks").Where("id IN ?", ids).Find(&links).Error; err != nil {
		w.logger.Warnw("读取点击计数失败，跳过实时计数校正", "error", err)
		return
	}

	durable := make(map[string]int64, len(links))
	for _, link := range links {
		durable[link.ID] = link.Clicks
	}
	if err := w.queue.Reconcile(ctx, durable); err != nil {
		w.logger.Warnw("实时计数校正失败", "error", err)
	}
}
