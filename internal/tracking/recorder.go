// Package tracking 实现点击记录：重定向先返回，点击元数据由独立的后台任务写出。
package tracking

import (
	"context"
	"sync"
	"time"

	"linkbio-platform/internal/metrics"

	"go.uber.org/zap"
)

// Recorder 点击记录器
type Recorder struct {
	sink    Sink
	logger  *zap.SugaredLogger
	timeout time.Duration
	now     func() time.Time
	wg      sync.WaitGroup
}

// NewRecorder 创建记录器，timeout 限制单次后台写入的时长
func NewRecorder(sink Sink, logger *zap.SugaredLogger, timeout time.Duration) *Recorder {
	return &Recorder{
		sink:    sink,
		logger:  logger.Named("click_recorder"),
		timeout: timeout,
		now:     time.Now,
	}
}

// Track 启动一个独立的后台任务写出点击记录后立即返回。
// 调用方不会等待该任务；任务的错误只记录日志，不会影响已经发出的响应。
func (r *Recorder) Track(linkID string, cc ClickContext) {
	clickedAt := r.now()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				r.logger.Errorw("点击记录任务 panic", "link_id", linkID, "panic", rec)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		entry := BuildEntry(linkID, cc, clickedAt)
		if err := r.sink.Record(ctx, entry); err != nil {
			metrics.ClicksTracked.WithLabelValues(r.sink.Name(), "failure").Inc()
			r.logger.Warnw("点击记录失败", "link_id", linkID, "sink", r.sink.Name(), "error", err)
			return
		}
		metrics.ClicksTracked.WithLabelValues(r.sink.Name(), "success").Inc()
	}()
}

// Wait 等待所有已启动的记录任务结束，用于进程退出前
func (r *Recorder) Wait() {
	r.wg.Wait()
}
