package model

import (
	"time"
)

// 缺省值
const (
	ReferrerDirect  = "Direct"
	LocationUnknown = "Unknown"
	DeviceDesktop   = "desktop"
)

// ClickEvent 一次点击的持久化记录，只由同步任务写入，不做更新
type ClickEvent struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	LinkID    string    `gorm:"type:varchar(36);not null;index:idx_click_events_link_created,priority:1" json:"link_id"`
	Link      *Link     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Device    string    `gorm:"size:20" json:"device"`
	Browser   string    `gorm:"size:50" json:"browser"`
	OS        string    `gorm:"size:50" json:"os"`
	Referrer  string    `gorm:"type:text" json:"referrer"`
	Country   string    `gorm:"size:100" json:"country"`
	City      string    `gorm:"size:100" json:"city"`
	CreatedAt time.Time `gorm:"index:idx_click_events_link_created,priority:2" json:"created_at"`
}

func (ClickEvent) TableName() string {
	return "click_events"
}
