package analytics

import (
	"context"
	"fmt"
	"testing"
	"time"

	"linkbio-platform/internal/model"
	"linkbio-platform/internal/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func newService(t *testing.T, db *gorm.DB, cache Cache) *Service {
	t.Helper()
	svc := NewService(db, cache, Options{WindowDays: 7, TopN: 5, CacheTTL: 5 * time.Minute}, testutils.NewTestLogger())
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func addEvent(t *testing.T, db *gorm.DB, linkID string, at time.Time, device, referrer, country string) {
	t.Helper()
	event := model.ClickEvent{
		LinkID:    linkID,
		Device:    device,
		Browser:   "Chrome",
		OS:        "Android",
		Referrer:  referrer,
		Country:   country,
		City:      model.LocationUnknown,
		CreatedAt: at.UTC(),
	}
	require.NoError(t, db.Create(&event).Error)
}

func TestGetAnalytics_NotOwner(t *testing.T) {
	db := testutils.NewTestDB(t)
	owner := testutils.CreateUser(t, db, "owner")
	other := testutils.CreateUser(t, db, "other")
	link := testutils.CreateLink(t, db, owner.ID, "https://example.com", 0)
	addEvent(t, db, link.ID, fixedNow.Add(-time.Hour), "mobile", "Direct", "ID")

	svc := newService(t, db, NewMemoryCache())

	report, err := svc.GetAnalytics(context.Background(), link.ID, other.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, report)

	_, err = svc.GetAnalytics(context.Background(), "does-not-exist", owner.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

// 没有点击数据不是错误，返回空的聚合结果
func TestGetAnalytics_Empty(t *testing.T) {
	db := testutils.NewTestDB(t)
	owner := testutils.CreateUser(t, db, "owner")
	link := testutils.CreateLink(t, db, owner.ID, "https://example.com", 0)

	report, err := newService(t, db, NewMemoryCache()).GetAnalytics(context.Background(), link.ID, owner.ID)
	require.NoError(t, err)
	assert.Zero(t, report.TotalClicks)
	assert.Empty(t, report.DailySeries)
	assert.Empty(t, report.Devices)
	assert.Empty(t, report.Referrers)
	assert.Empty(t, report.Locations)
}

// 每日序列只包含窗口内实际出现的日期，不补零，窗口外的日期不出现
func TestGetAnalytics_DailySeriesWindow(t *testing.T) {
	db := testutils.NewTestDB(t)
	owner := testutils.CreateUser(t, db, "owner")
	link := testutils.CreateLink(t, db, owner.ID, "https://example.com", 0)

	addEvent(t, db, link.ID, fixedNow.Add(-1*time.Hour), "mobile", "Direct", "ID")
	addEvent(t, db, link.ID, fixedNow.Add(-2*time.Hour), "mobile", "Direct", "ID")
	addEvent(t, db, link.ID, fixedNow.AddDate(0, 0, -3), "desktop", "Direct", "ID")
	addEvent(t, db, link.ID, fixedNow.AddDate(0, 0, -10), "desktop", "Direct", "ID")

	report, err := newService(t, db, NewMemoryCache()).GetAnalytics(context.Background(), link.ID, owner.ID)
	require.NoError(t, err)

	assert.Equal(t, map[string]int64{
		"2026-10-15": 2,
		"2026-10-12": 1,
	}, report.DailySeries)
}

func TestGetAnalytics_Breakdowns(t *testing.T) {
	db := testutils.NewTestDB(t)
	owner := testutils.CreateUser(t, db, "owner")
	link := testutils.CreateLink(t, db, owner.ID, "https://example.com", 0)
	at := fixedNow.Add(-time.Hour)

	for i := 0; i < 3; i++ {
		addEvent(t, db, link.ID, at, "mobile", "https://instagram.com", "ID")
	}
	addEvent(t, db, link.ID, at, "tablet", "Direct", "SG")
	for i := 0; i < 2; i++ {
		addEvent(t, db, link.ID, at, "desktop", "Direct", "MY")
	}
	for i := 0; i < 6; i++ {
		addEvent(t, db, link.ID, at, "desktop", fmt.Sprintf("https://site-%d.example", i), fmt.Sprintf("C%d", i))
	}

	report, err := newService(t, db, NewMemoryCache()).GetAnalytics(context.Background(), link.ID, owner.ID)
	require.NoError(t, err)

	require.Len(t, report.Devices, 3)
	assert.Equal(t, DeviceStat{Device: "desktop", Count: 8}, report.Devices[0])
	assert.Equal(t, DeviceStat{Device: "mobile", Count: 3}, report.Devices[1])
	assert.Equal(t, DeviceStat{Device: "tablet", Count: 1}, report.Devices[2])

	assert.Len(t, report.Referrers, 5)
	assert.Equal(t, ReferrerStat{Referrer: "Direct", Count: 3}, report.Referrers[0])
	assert.Equal(t, ReferrerStat{Referrer: "https://instagram.com", Count: 3}, report.Referrers[1])

	assert.Len(t, report.Locations, 5)
	assert.Equal(t, LocationStat{Country: "ID", Count: 3}, report.Locations[0])
	assert.Equal(t, LocationStat{Country: "MY", Count: 2}, report.Locations[1])
	for i := 1; i < len(report.Locations); i++ {
		assert.GreaterOrEqual(t, report.Locations[i-1].Count, report.Locations[i].Count)
	}
}

// 缓存期内新增的点击不会反映到结果中
func TestGetAnalytics_CachedUntilTTL(t *testing.T) {
	db := testutils.NewTestDB(t)
	owner := testutils.CreateUser(t, db, "owner")
	link := testutils.CreateLink(t, db, owner.ID, "https://example.com", 0)
	addEvent(t, db, link.ID, fixedNow.Add(-time.Hour), "mobile", "Direct", "ID")

	cache := NewMemoryCache()
	clock := fixedNow
	cache.now = func() time.Time { return clock }
	svc := newService(t, db, cache)

	first, err := svc.GetAnalytics(context.Background(), link.ID, owner.ID)
	require.NoError(t, err)
	require.Len(t, first.Devices, 1)

	addEvent(t, db, link.ID, fixedNow.Add(-time.Minute), "desktop", "Direct", "ID")

	second, err := svc.GetAnalytics(context.Background(), link.ID, owner.ID)
	require.NoError(t, err)
	assert.Len(t, second.Devices, 1)

	clock = fixedNow.Add(6 * time.Minute)
	third, err := svc.GetAnalytics(context.Background(), link.ID, owner.ID)
	require.NoError(t, err)
	assert.Len(t, third.Devices, 2)
}

func TestRedisCache(t *testing.T) {
	client, mr := testutils.NewTestRedis(t)
	cache := NewRedisCache(client)
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, "L1")
	require.NoError(t, err)
	assert.False(t, ok)

	report := &Report{
		TotalClicks: 3,
		DailySeries: map[string]int64{"2026-10-15": 3},
		Devices:     []DeviceStat{{Device: "mobile", Count: 3}},
		Referrers:   []ReferrerStat{{Referrer: "Direct", Count: 3}},
		Locations:   []LocationStat{{Country: "ID", Count: 3}},
	}
	require.NoError(t, cache.Set(ctx, "L1", report, time.Minute))

	got, ok, err := cache.Get(ctx, "L1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, report, got)

	mr.FastForward(2 * time.Minute)
	_, ok, err = cache.Get(ctx, "L1")
	require.NoError(t, err)
	assert.False(t, ok)
}

// cancelOnGet 在读缓存时取消调用方的请求，模拟客户端在计算开始前断开
type cancelOnGet struct {
	*MemoryCache
	cancel context.CancelFunc
}

func (c cancelOnGet) Get(ctx context.Context, linkID string) (*Report, bool, error) {
	c.cancel()
	return nil, false, nil
}

func TestGetAnalytics_ComputeSurvivesCallerCancel(t *testing.T) {
	db := testutils.NewTestDB(t)
	owner := testutils.CreateUser(t, db, "owner")
	link := testutils.CreateLink(t, db, owner.ID, "https://example.com", 0)
	addEvent(t, db, link.ID, fixedNow.Add(-time.Hour), "mobile", "Direct", "ID")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cache := cancelOnGet{MemoryCache: NewMemoryCache(), cancel: cancel}
	svc := newService(t, db, cache)

	report, err := svc.GetAnalytics(ctx, link.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), report.Devices[0].Count)

	// 结果照常写入缓存，供其他请求使用
	cached, ok, err := cache.MemoryCache.Get(context.Background(), link.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, report, cached)
}
