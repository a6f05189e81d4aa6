package buffer

import (
	"context"
	"fmt"
	"testing"
	"time"

	"linkbio-platform/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBuffer(t *testing.T) (*Buffer, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, "analytics:queue", "link:clicks:"), mr
}

func entryFor(linkID string, i int) model.BufferedClickEntry {
	return model.BufferedClickEntry{
		LinkID:    linkID,
		Device:    "mobile",
		Browser:   "Chrome",
		OS:        "Android",
		Referrer:  fmt.Sprintf("https://ref-%d.example", i),
		Country:   "ID",
		City:      "Bandung",
		CreatedAt: time.Now().UTC(),
	}
}

func TestBuffer_PushIncrementsAndQueues(t *testing.T) {
	b, _ := newTestBuffer(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, b.Push(ctx, entryFor("L1", i)))
		live, err := b.LiveCount(ctx, "L1")
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), live)
	}

	n, err := b.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

// 队列按先进先出出队，且出队后即被删除
func TestBuffer_PopFIFOAndDestructive(t *testing.T) {
	b, _ := newTestBuffer(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, b.Push(ctx, entryFor("L1", i)))
	}

	first, err := b.Pop(ctx, 3)
	require.NoError(t, err)
	require.Len(t, first, 3)
	for i, raw := range first {
		entry, err := model.ParseBufferedClickEntry(raw)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("https://ref-%d.example", i), entry.Referrer)
	}

	rest, err := b.Pop(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, rest, 2)

	empty, err := b.Pop(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestBuffer_LiveCountMissingKey(t *testing.T) {
	b, _ := newTestBuffer(t)
	n, err := b.LiveCount(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBuffer_ReconcileNeverLowers(t *testing.T) {
	b, mr := newTestBuffer(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("link:clicks:L1", "10"))

	require.NoError(t, b.Reconcile(ctx, map[string]int64{"L1": 4, "L2": 7}))

	l1, err := b.LiveCount(ctx, "L1")
	require.NoError(t, err)
	assert.Equal(t, int64(10), l1)

	l2, err := b.LiveCount(ctx, "L2")
	require.NoError(t, err)
	assert.Equal(t, int64(7), l2)
}
