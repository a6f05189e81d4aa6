// Package buffer 基于 Redis 的点击缓冲区：
// 队列 (RPUSH / LPOP) 吸收重定向路径上的写入，实时计数 (INCR) 提供廉价的总点击数。
package buffer

import (
	"context"
	"errors"
	"fmt"

	"linkbio-platform/internal/model"

	"github.com/redis/go-redis/v9"
)

// reconcileScript 只会把实时计数抬高到持久化计数，不会调低
var reconcileScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
local durable = tonumber(ARGV[1])
if current < durable then
	redis.call('SET', KEYS[1], ARGV[1])
	return durable
end
return current
`)

// Buffer 点击缓冲区
type Buffer struct {
	client        *redis.Client
	queueKey      string
	counterPrefix string
}

// New 创建缓冲区
func New(client *redis.Client, queueKey, counterPrefix string) *Buffer {
	return &Buffer{
		client:        client,
		queueKey:      queueKey,
		counterPrefix: counterPrefix,
	}
}

func (b *Buffer) counterKey(linkID string) string {
	return b.counterPrefix + linkID
}

// Push 在一个 pipeline 中累加实时计数并把点击快照追加到队尾
func (b *Buffer) Push(ctx context.Context, entry model.BufferedClickEntry) error {
	payload, err := entry.Encode()
	if err != nil {
		return fmt.Errorf("序列化点击记录失败: %w", err)
	}

	_, err = b.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, b.counterKey(entry.LinkID))
		pipe.RPush(ctx, b.queueKey, payload)
		return nil
	})
	if err != nil {
		return fmt.Errorf("写入点击队列失败: %w", err)
	}
	return nil
}

// Pop 从队头取出至多 count 个条目，取出即删除
func (b *Buffer) Pop(ctx context.Context, count int) ([]string, error) {
	if count <= 0 {
		return nil, nil
	}
	items, err := b.client.LPopCount(ctx, b.queueKey, count).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("读取点击队列失败: %w", err)
	}
	return items, nil
}

// Len 队列中待同步的条目数
func (b *Buffer) Len(ctx context.Context) (int64, error) {
	return b.client.LLen(ctx, b.queueKey).Result()
}

// LiveCount 实时点击数，键不存在时为 0
func (b *Buffer) LiveCount(ctx context.Context, linkID string) (int64, error) {
	n, err := b.client.Get(ctx, b.counterKey(linkID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// Reconcile 用持久化计数校正实时计数（例如 Redis 数据被清空后）
func (b *Buffer) Reconcile(ctx context.Context, durable map[string]int64) error {
	var errs []error
	for linkID, clicks := range durable {
		if err := reconcileScript.Run(ctx, b.client, []string{b.counterKey(linkID)}, clicks).Err(); err != nil {
			errs = append(errs, fmt.Errorf("link %s: %w", linkID, err))
		}
	}
	return errors.Join(errs...)
}
