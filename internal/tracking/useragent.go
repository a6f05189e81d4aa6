package tracking

import (
	"linkbio-platform/internal/model"

	"github.com/mileusna/useragent"
)

// 设备类型
const (
	DeviceMobile = "mobile"
	DeviceTablet = "tablet"
)

// ParseUserAgent 从 User-Agent 中提取设备类型、浏览器和操作系统。
// 无法识别的设备（包括爬虫）按 desktop 处理。
func ParseUserAgent(raw string) (device, browser, os string) {
	ua := useragent.Parse(raw)

	switch {
	case ua.Tablet:
		device = DeviceTablet
	case ua.Mobile:
		device = DeviceMobile
	default:
		device = model.DeviceDesktop
	}

	browser = ua.Name
	if browser == "" {
		browser = model.LocationUnknown
	}
	os = ua.OS
	if os == "" {
		os = model.LocationUnknown
	}
	return device, browser, os
}
