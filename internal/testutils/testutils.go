// Package testutils 提供测试用的数据库、Redis 和测试数据构造函数。
package testutils

import (
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"linkbio-platform/internal/model"
	"linkbio-platform/pkg/database"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NewTestDB 每个测试一个独立的内存 SQLite 库，并完成迁移
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.Open(&database.Options{Driver: "sqlite", DSN: dsn})
	if err != nil {
		t.Fatalf("无法连接到内存数据库: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// NewTestRedis 启动 miniredis 并返回连接到它的客户端
func NewTestRedis(t testing.TB) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

// NewTestLogger 测试用日志
func NewTestLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// CreateUser 创建测试用户
func CreateUser(t testing.TB, db *gorm.DB, username string) *model.User {
	t.Helper()

	user := &model.User{Username: username, Email: username + "@example.com", Role: model.RoleUser, IsActive: true}
	if err := user.SetPassword("password123"); err != nil {
		t.Fatalf("密码加密失败: %v", err)
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("创建用户失败: %v", err)
	}
	return user
}

// CreateLink 为用户创建一个链接，sortOrder 由调用方保证唯一
func CreateLink(t testing.TB, db *gorm.DB, userID uint, url string, sortOrder int) *model.Link {
	t.Helper()

	link := &model.Link{UserID: userID, URL: url, Title: url, SortOrder: sortOrder}
	if err := db.Create(link).Error; err != nil {
		t.Fatalf("创建链接失败: %v", err)
	}
	return link
}

// ErrInjected 由 FailCreates / FailQueriesOnce 注入的数据库错误
var ErrInjected = errors.New("injected database failure")

// FailCreates 让之后对 table 的所有 INSERT 失败
func FailCreates(t testing.TB, db *gorm.DB, table string) {
	t.Helper()

	err := db.Callback().Create().Before("gorm:create").Register("testutils:fail_create", func(tx *gorm.DB) {
		if tx.Statement.Table == table {
			_ = tx.AddError(ErrInjected)
		}
	})
	if err != nil {
		t.Fatalf("注册写入故障失败: %v", err)
	}
}

// FailQueriesOnce 让下一次对 table 的查询失败，之后恢复正常
func FailQueriesOnce(t testing.TB, db *gorm.DB, table string) {
	t.Helper()

	var fired atomic.Bool
	err := db.Callback().Query().Before("gorm:query").Register("testutils:fail_query_once", func(tx *gorm.DB) {
		if tx.Statement.Table == table && fired.CompareAndSwap(false, true) {
			_ = tx.AddError(ErrInjected)
		}
	})
	if err != nil {
		t.Fatalf("注册查询故障失败: %v", err)
	}
}
