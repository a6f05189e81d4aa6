package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var ErrInvalidEntry = errors.New("invalid buffered click entry")

// BufferedClickEntry 写入 Redis 队列的点击快照。
// 字段名与线上队列里已有的数据保持一致（camelCase）。
type BufferedClickEntry struct {
	LinkID    string    `json:"linkId"`
	Device    string    `json:"device"`
	Browser   string    `json:"browser"`
	OS        string    `json:"os"`
	Referrer  string    `json:"referrer"`
	Country   string    `json:"country"`
	City      string    `json:"city"`
	CreatedAt time.Time `json:"createdAt"`
}

// Encode 序列化为队列中的文本
func (e BufferedClickEntry) Encode() (string, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ToClickEvent 转换为持久化记录，CreatedAt 使用入队时间
func (e BufferedClickEntry) ToClickEvent() ClickEvent {
	return ClickEvent{
		LinkID:    e.LinkID,
		Device:    e.Device,
		Browser:   e.Browser,
		OS:        e.OS,
		Referrer:  e.Referrer,
		Country:   e.Country,
		City:      e.City,
		CreatedAt: e.CreatedAt,
	}
}

// ParseBufferedClickEntry 解析队列元素。
// 不同的缓冲区客户端可能直接返回结构化对象，也可能返回 JSON 文本，两种都接受。
func ParseBufferedClickEntry(raw any) (BufferedClickEntry, error) {
	var entry BufferedClickEntry

	switch v := raw.(type) {
	case BufferedClickEntry:
		entry = v
	case *BufferedClickEntry:
		if v == nil {
			return entry, ErrInvalidEntry
		}
		entry = *v
	case map[string]any:
		// 已解码的对象，重新走一遍 JSON 以复用字段映射和时间解析
		data, err := json.Marshal(v)
		if err != nil {
			return entry, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
		}
		if err := json.Unmarshal(data, &entry); err != nil {
			return entry, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
		}
	case string:
		if err := json.Unmarshal([]byte(v), &entry); err != nil {
			return entry, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
		}
	case []byte:
		if err := json.Unmarshal(v, &entry); err != nil {
			return entry, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
		}
	default:
		return entry, fmt.Errorf("%w: unsupported type %T", ErrInvalidEntry, raw)
	}

	if entry.LinkID == "" {
		return entry, fmt.Errorf("%w: missing linkId", ErrInvalidEntry)
	}
	return entry, nil
}
