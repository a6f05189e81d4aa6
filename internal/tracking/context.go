package tracking

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"linkbio-platform/internal/model"
)

// GeoHeaders 平台注入的地理位置请求头，按顺序取第一个非空值
type GeoHeaders struct {
	Country []string
	City    []string
}

// ClickContext 从请求中提取的点击元数据。
// 必须在请求处理 goroutine 内构造，之后才能交给后台任务。
type ClickContext struct {
	UserAgent string
	Referrer  string
	Country   string
	City      string
}

// FromRequest 读取 User-Agent、Referer 和地理位置头
func FromRequest(r *http.Request, geo GeoHeaders) ClickContext {
	cc := ClickContext{
		UserAgent: r.UserAgent(),
		Referrer:  r.Referer(),
		Country:   firstHeader(r.Header, geo.Country),
		City:      firstHeader(r.Header, geo.City),
	}

	if cc.Referrer == "" {
		cc.Referrer = model.ReferrerDirect
	}
	if cc.Country == "" {
		cc.Country = model.LocationUnknown
	}
	if cc.City == "" {
		cc.City = model.LocationUnknown
	} else if decoded, err := url.QueryUnescape(cc.City); err == nil {
		// Vercel 的城市名经过 URL 编码
		cc.City = decoded
	}
	return cc
}

// BuildEntry 组装入队的点击快照
func BuildEntry(linkID string, cc ClickContext, now time.Time) model.BufferedClickEntry {
	device, browser, os := ParseUserAgent(cc.UserAgent)
	return model.BufferedClickEntry{
		LinkID:    linkID,
		Device:    device,
		Browser:   browser,
		OS:        os,
		Referrer:  cc.Referrer,
		Country:   cc.Country,
		City:      cc.City,
		CreatedAt: now.UTC(),
	}
}

func firstHeader(h http.Header, names []string) string {
	for _, name := range names {
		if v := strings.TrimSpace(h.Get(name)); v != "" {
			return v
		}
	}
	return ""
}
