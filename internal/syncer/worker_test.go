package syncer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"linkbio-platform/internal/buffer"
	"linkbio-platform/internal/model"
	"linkbio-platform/internal/testutils"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db     *gorm.DB
	buf    *buffer.Buffer
	mr     *miniredis.Miniredis
	worker *Worker
	user   *model.User
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := testutils.NewTestDB(t)
	client, mr := testutils.NewTestRedis(t)
	buf := buffer.New(client, "analytics:queue", "link:clicks:")
	return &fixture{
		db:     db,
		buf:    buf,
		mr:     mr,
		worker: NewWorker(db, buf, testutils.NewTestLogger()),
		user:   testutils.CreateUser(t, db, "owner"),
	}
}

func (f *fixture) push(t *testing.T, linkID string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, f.buf.Push(context.Background(), model.BufferedClickEntry{
			LinkID:    linkID,
			Device:    "mobile",
			Browser:   "Safari",
			OS:        "iOS",
			Referrer:  model.ReferrerDirect,
			Country:   "ID",
			City:      "Jakarta",
			CreatedAt: time.Now().UTC().Add(-time.Minute),
		}))
	}
}

func (f *fixture) clicks(t *testing.T, linkID string) int64 {
	t.Helper()
	var link model.Link
	require.NoError(t, f.db.First(&link, "id = ?", linkID).Error)
	return link.Clicks
}

func (f *fixture) eventCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&model.ClickEvent{}).Count(&n).Error)
	return n
}

func TestDrainAndSync_EmptyQueue(t *testing.T) {
	f := setup(t)
	link := testutils.CreateLink(t, f.db, f.user.ID, "https://example.com", 0)

	result, err := f.worker.DrainAndSync(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, MessageNothingToSync, result.Message)
	assert.Zero(t, result.Popped)
	assert.Zero(t, f.eventCount(t))
	assert.Zero(t, f.clicks(t, link.ID))
}

// 三次点击，一次同步：写入 3 条记录，计数加 3
func TestDrainAndSync_ThreeClicks(t *testing.T) {
	f := setup(t)
	link := testutils.CreateLink(t, f.db, f.user.ID, "https://example.com", 0)
	f.push(t, link.ID, 3)

	live, err := f.buf.LiveCount(context.Background(), link.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), live)

	result, err := f.worker.DrainAndSync(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Popped)
	assert.Equal(t, 3, result.Inserted)
	assert.Equal(t, map[string]int64{link.ID: 3}, result.Increments)
	assert.Equal(t, int64(3), f.clicks(t, link.ID))
	assert.Equal(t, int64(3), f.eventCount(t))
}

func TestDrainAndSync_RespectsBatchSize(t *testing.T) {
	f := setup(t)
	link := testutils.CreateLink(t, f.db, f.user.ID, "https://example.com", 0)
	f.push(t, link.ID, 5)

	result, err := f.worker.DrainAndSync(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Inserted)
	assert.Equal(t, int64(2), f.eventCount(t))

	remaining, err := f.buf.Len(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), remaining)
}

// 出队时链接已被删除的条目被丢弃，不写入
func TestDrainAndSync_DiscardsDeletedLinks(t *testing.T) {
	f := setup(t)
	link := testutils.CreateLink(t, f.db, f.user.ID, "https://example.com", 0)
	f.push(t, link.ID, 2)
	f.push(t, "deleted-link", 3)

	result, err := f.worker.DrainAndSync(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 5, result.Popped)
	assert.Equal(t, 2, result.Inserted)
	assert.Equal(t, 3, result.Discarded)

	var orphans int64
	f.db.Model(&model.ClickEvent{}).Where("link_id = ?", "deleted-link").Count(&orphans)
	assert.Zero(t, orphans)
}

func TestDrainAndSync_AllDiscarded(t *testing.T) {
	f := setup(t)
	f.push(t, "gone", 2)

	result, err := f.worker.DrainAndSync(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, MessageAllDiscarded, result.Message)
	assert.Zero(t, f.eventCount(t))
}

func TestDrainAndSync_SkipsMalformedEntries(t *testing.T) {
	f := setup(t)
	link := testutils.CreateLink(t, f.db, f.user.ID, "https://example.com", 0)
	f.push(t, link.ID, 1)
	_, err := f.mr.RPush("analytics:queue", "{not json")
	require.NoError(t, err)

	result, err := f.worker.DrainAndSync(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Popped)
	assert.Equal(t, 1, result.Inserted)
	assert.Equal(t, 1, result.Discarded)
}

// 并发的同步批次对同一链接的累加可以叠加，不会互相覆盖
func TestDrainAndSync_ConcurrentBatchesAreAdditive(t *testing.T) {
	f := setup(t)
	link := testutils.CreateLink(t, f.db, f.user.ID, "https://example.com", 0)
	f.push(t, link.ID, 20)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.worker.DrainAndSync(context.Background(), 5)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(20), f.clicks(t, link.ID))
	assert.Equal(t, int64(20), f.eventCount(t))
}

func TestDrainAndSync_ReconcilesLiveCounter(t *testing.T) {
	f := setup(t)
	link := testutils.CreateLink(t, f.db, f.user.ID, "https://example.com", 0)
	f.push(t, link.ID, 2)
	f.mr.Del("link:clicks:" + link.ID)

	_, err := f.worker.DrainAndSync(context.Background(), 10)
	require.NoError(t, err)

	live, err := f.buf.LiveCount(context.Background(), link.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), live)
}

// 出队后写入失败：返回错误，已出队的条目不回到队列
func TestDrainAndSync_InsertFailureLosesPoppedBatch(t *testing.T) {
	f := setup(t)
	link := testutils.CreateLink(t, f.db, f.user.ID, "https://example.com", 0)
	f.push(t, link.ID, 3)
	testutils.FailCreates(t, f.db, "click_events")

	result, err := f.worker.DrainAndSync(context.Background(), 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, testutils.ErrInjected)
	require.NotNil(t, result)
	assert.Equal(t, 3, result.Popped)
	assert.Zero(t, result.Inserted)

	remaining, err := f.buf.Len(context.Background())
	require.NoError(t, err)
	assert.Zero(t, remaining)
	assert.Zero(t, f.eventCount(t))
	assert.Zero(t, f.clicks(t, link.ID))
}

func TestDrainAndSync_DefaultBatchSize(t *testing.T) {
	f := setup(t)
	link := testutils.CreateLink(t, f.db, f.user.ID, "https://example.com", 0)
	f.push(t, link.ID, DefaultBatchSize+50)

	result, err := f.worker.DrainAndSync(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultBatchSize, result.Popped)

	remaining, err := f.buf.Len(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(50), remaining)
}

type brokenQueue struct{}

func (brokenQueue) Pop(ctx context.Context, count int) ([]string, error) {
	return nil, errors.New("connection refused")
}

func (brokenQueue) Reconcile(ctx context.Context, durable map[string]int64) error { return nil }

func TestDrainAndSync_PopFailure(t *testing.T) {
	db := testutils.NewTestDB(t)
	worker := NewWorker(db, brokenQueue{}, testutils.NewTestLogger())

	result, err := worker.DrainAndSync(context.Background(), 10)
	assert.Error(t, err)
	assert.Nil(t, result)
}

func TestScheduler_DrainsPeriodically(t *testing.T) {
	f := setup(t)
	link := testutils.CreateLink(t, f.db, f.user.ID, "https://example.com", 0)
	f.push(t, link.ID, 4)

	scheduler := NewScheduler(f.worker, 20*time.Millisecond, 10, testutils.NewTestLogger())
	scheduler.Start()
	defer scheduler.Stop()

	assert.Eventually(t, func() bool {
		var l model.Link
		return f.db.First(&l, "id = ?", link.ID).Error == nil && l.Clicks == 4
	}, 2*time.Second, 20*time.Millisecond)
}

// 间隔远小于一次同步的耗时，批次仍然完整落库
func TestScheduler_ShortIntervalDoesNotCutBatch(t *testing.T) {
	f := setup(t)
	link := testutils.CreateLink(t, f.db, f.user.ID, "https://example.com", 0)
	f.push(t, link.ID, 200)

	scheduler := NewScheduler(f.worker, time.Millisecond, MaxBatchSize, testutils.NewTestLogger())
	scheduler.Start()

	assert.Eventually(t, func() bool {
		var l model.Link
		return f.db.First(&l, "id = ?", link.ID).Error == nil && l.Clicks == 200
	}, 5*time.Second, 20*time.Millisecond)

	scheduler.Stop()
	assert.Equal(t, int64(200), f.eventCount(t))
	remaining, err := f.buf.Len(context.Background())
	require.NoError(t, err)
	assert.Zero(t, remaining)
}
