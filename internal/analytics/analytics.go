// Package analytics 汇总单个链接的点击数据：近 N 天的每日点击、设备、来源和国家分布。
package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"linkbio-platform/internal/metrics"
	"linkbio-platform/internal/model"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// ErrNotFound 链接不存在或不属于当前用户，两种情况不做区分
var ErrNotFound = errors.New("link not found")

const dateLayout = "2006-01-02"

type DeviceStat struct {
	Device string `json:"device"`
	Count  int64  `json:"count"`
}

type ReferrerStat struct {
	Referrer string `json:"referrer"`
	Count    int64  `json:"count"`
}

type LocationStat struct {
	Country string `json:"country"`
	Count   int64  `json:"count"`
}

// Report 统计结果
type Report struct {
	TotalClicks int64            `json:"totalClicks"`
	DailySeries map[string]int64 `json:"dailySeries"`
	Devices     []DeviceStat     `json:"devices"`
	Referrers   []ReferrerStat   `json:"referrers"`
	Locations   []LocationStat   `json:"locations"`
}

// Options 统计参数
type Options struct {
	WindowDays int
	TopN       int
	CacheTTL   time.Duration
}

// Service 统计查询服务
type Service struct {
	db     *gorm.DB
	cache  Cache
	group  singleflight.Group
	opts   Options
	now    func() time.Time
	logger *zap.SugaredLogger
}

// NewService 创建统计服务
func NewService(db *gorm.DB, cache Cache, opts Options, logger *zap.SugaredLogger) *Service {
	return &Service{
		db:     db,
		cache:  cache,
		opts:   opts,
		now:    time.Now,
		logger: logger.Named("analytics"),
	}
}

// GetAnalytics 返回链接的统计结果。先校验归属再读缓存，缓存只按链接 ID 命中。
func (s *Service) GetAnalytics(ctx context.Context, linkID string, userID uint) (*Report, error) {
	var link model.Link
	err := s.db.WithContext(ctx).
		Select("id", "user_id", "clicks").
		Where("id = ? AND user_id = ?", linkID, userID).
		First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("查询链接失败: %w", err)
	}

	report, ok, err := s.cache.Get(ctx, linkID)
	switch {
	case err != nil:
		metrics.AnalyticsCache.WithLabelValues("error").Inc()
		s.logger.Warnw("读取统计缓存失败", "link_id", linkID, "error", err)
	case ok:
		metrics.AnalyticsCache.WithLabelValues("hit").Inc()
		return report, nil
	default:
		metrics.AnalyticsCache.WithLabelValues("miss").Inc()
	}

	// 同一链接的并发请求共享一次计算，计算不随发起者的请求取消
	shared := context.WithoutCancel(ctx)
	v, err, _ := s.group.Do(linkID, func() (any, error) {
		report, err := s.compute(shared, &link)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(shared, linkID, report, s.opts.CacheTTL); err != nil {
			s.logger.Warnw("写入统计缓存失败", "link_id", linkID, "error", err)
		}
		return report, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Report), nil
}

// compute 四项聚合相互独立，并发查询
func (s *Service) compute(ctx context.Context, link *model.Link) (*Report, error) {
	report := &Report{
		TotalClicks: link.Clicks,
		DailySeries: map[string]int64{},
		Devices:     []DeviceStat{},
		Referrers:   []ReferrerStat{},
		Locations:   []LocationStat{},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		series, err := s.dailySeries(gctx, link.ID)
		report.DailySeries = series
		return err
	})
	g.Go(func() error {
		return s.groupCount(gctx, link.ID, "device", 0, &report.Devices)
	})
	g.Go(func() error {
		return s.groupCount(gctx, link.ID, "referrer", s.opts.TopN, &report.Referrers)
	})
	g.Go(func() error {
		return s.groupCount(gctx, link.ID, "country", s.opts.TopN, &report.Locations)
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("统计查询失败: %w", err)
	}
	return report, nil
}

// dailySeries 最近 WindowDays 天内每个自然日（UTC）的点击数，不补零
func (s *Service) dailySeries(ctx context.Context, linkID string) (map[string]int64, error) {
	since := s.now().UTC().AddDate(0, 0, -s.opts.WindowDays)

	var times []time.Time
	err := s.db.WithContext(ctx).Model(&model.ClickEvent{}).
		Where("link_id = ? AND created_at >= ?", linkID, since).
		Pluck("created_at", &times).Error
	if err != nil {
		return nil, err
	}

	series := make(map[string]int64)
	for _, t := range times {
		series[t.UTC().Format(dateLayout)]++
	}
	return series, nil
}

// groupCount 按列分组计数，按数量降序；limit 为 0 表示不限制
func (s *Service) groupCount(ctx context.Context, linkID, column string, limit int, dest any) error {
	query := s.db.WithContext(ctx).Model(&model.ClickEvent{}).
		Select(column+", COUNT(*) AS count").
		Where("link_id = ?", linkID).
		Group(column).
		Order("count DESC").
		Order(column + " ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	return query.Scan(dest).Error
}
