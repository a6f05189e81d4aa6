package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// LinkType 链接展示类型
type LinkType string

const (
	LinkTypeLink    LinkType = "link"
	LinkTypeSocial  LinkType = "social"
	LinkTypeEmbed   LinkType = "embed"
	LinkTypeSupport LinkType = "support"
)

// ErrInvalidLinkType 未知的链接类型
var ErrInvalidLinkType = errors.New("invalid link type")

// Valid 是否为已知类型
func (t LinkType) Valid() bool {
	switch t {
	case LinkTypeLink, LinkTypeSocial, LinkTypeEmbed, LinkTypeSupport:
		return true
	}
	return false
}

// Link 用户主页上的一个外链。
// SortOrder 在同一用户内唯一；Clicks 只增不减，由同步任务累加。
type Link struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;uniqueIndex:idx_links_user_sort,priority:1" json:"user_id"`
	URL          string    `gorm:"type:text;not null" json:"url"`
	Title        string    `gorm:"size:255" json:"title"`
	Description  string    `gorm:"type:text" json:"description"`
	ImageURL     string    `gorm:"type:text" json:"image_url"`
	Category     string    `gorm:"size:100" json:"category"`
	SortOrder    int       `gorm:"not null;default:0;uniqueIndex:idx_links_user_sort,priority:2" json:"sort_order"`
	Type         LinkType  `gorm:"size:20;default:'link'" json:"type"`
	Clicks       int64     `gorm:"not null;default:0" json:"clicks"`
	IsSensitive  bool      `gorm:"default:false" json:"is_sensitive"`
	PasswordHash string    `gorm:"size:255" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName 指定表名
func (Link) TableName() string {
	return "links"
}

// BeforeCreate 生成 UUID 主键并校验类型
func (l *Link) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.Type == "" {
		l.Type = LinkTypeLink
	}
	if !l.Type.Valid() {
		return ErrInvalidLinkType
	}
	return nil
}

// SetPassword 设置访问密码，空字符串表示取消密码
func (l *Link) SetPassword(password string) error {
	if password == "" {
		l.PasswordHash = ""
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	l.PasswordHash = string(hash)
	return nil
}

// HasPassword 是否设置了访问密码
func (l *Link) HasPassword() bool {
	return l.PasswordHash != ""
}

// CheckPassword 校验访问密码；未设置密码的链接总是通过
func (l *Link) CheckPassword(password string) bool {
	if !l.HasPassword() {
		return true
	}
	return bcrypt.CompareHashAndPassword([]byte(l.PasswordHash), []byte(password)) == nil
}
