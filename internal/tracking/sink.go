package tracking

import (
	"context"
	"fmt"
	"time"

	"linkbio-platform/internal/buffer"
	"linkbio-platform/internal/model"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Sink 点击快照的去向
type Sink interface {
	Record(ctx context.Context, entry model.BufferedClickEntry) error
	Name() string
}

// BufferSink 写入 Redis 缓冲区。
// 连续失败后熔断，熔断期间直接返回错误，不再占用 Redis 连接。
type BufferSink struct {
	buf *buffer.Buffer
	cb  *gobreaker.CircuitBreaker[struct{}]
}

// NewBufferSink 创建带熔断的缓冲区写入器
func NewBufferSink(buf *buffer.Buffer, logger *zap.SugaredLogger) *BufferSink {
	settings := gobreaker.Settings{
		Name:        "click-buffer",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warnw("点击缓冲区熔断状态变化", "breaker", name, "from", from.String(), "to", to.String())
		},
	}
	return &BufferSink{
		buf: buf,
		cb:  gobreaker.NewCircuitBreaker[struct{}](settings),
	}
}

func (s *BufferSink) Name() string { return "buffer" }

// Record 入队并累加实时计数
func (s *BufferSink) Record(ctx context.Context, entry model.BufferedClickEntry) error {
	_, err := s.cb.Execute(func() (struct{}, error) {
		return struct{}{}, s.buf.Push(ctx, entry)
	})
	return err
}

// StoreSink 未配置 Redis 时直接写数据库：计数原子加一，再插入点击记录
type StoreSink struct {
	db *gorm.DB
}

func NewStoreSink(db *gorm.DB) *StoreSink {
	return &StoreSink{db: db}
}

func (s *StoreSink) Name() string { return "store" }

func (s *StoreSink) Record(ctx context.Context, entry model.BufferedClickEntry) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Link{}).
			Where("id = ?", entry.LinkID).
			UpdateColumn("clicks", gorm.Expr("clicks + ?", 1))
		if res.Error != nil {
			return fmt.Errorf("累加点击数失败: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			// 链接已被删除
			return nil
		}
		event := entry.ToClickEvent()
		if err := tx.Create(&event).Error; err != nil {
			return fmt.Errorf("写入点击记录失败: %w", err)
		}
		return nil
	})
}
