package database

import (
	"fmt"

	"linkbio-platform/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Options 数据库连接参数，DSN 非空时优先使用
type Options struct {
	Driver   string
	DSN      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	Charset  string
	Debug    bool
}

// Open 按驱动类型建立连接
func Open(opts *Options) (*gorm.DB, error) {
	dialector, err := dialectorFor(opts)
	if err != nil {
		return nil, err
	}

	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}
	if opts.Debug {
		gormCfg.Logger = logger.Default.LogMode(logger.Info)
	}

	connection, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("数据库连接失败: %w", err)
	}

	if opts.Driver == "sqlite" {
		// SQLite 只允许一个写连接，串行化以避免 database is locked
		sqlDB, err := connection.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return connection, nil
}

// Migrate 自动迁移所有表
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.User{}, &model.Link{}, &model.ClickEvent{}); err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}
	return nil
}

func dialectorFor(opts *Options) (gorm.Dialector, error) {
	switch opts.Driver {
	case "", "mysql":
		dsn := opts.DSN
		if dsn == "" {
			charset := opts.Charset
			if charset == "" {
				charset = "utf8mb4"
			}
			dsn = fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=UTC",
				opts.User, opts.Password, opts.Host, opts.Port, opts.Name, charset)
		}
		return mysql.Open(dsn), nil
	case "postgres":
		dsn := opts.DSN
		if dsn == "" {
			dsn = fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
				opts.Host, opts.Port, opts.User, opts.Password, opts.Name)
		}
		return postgres.Open(dsn), nil
	case "sqlite":
		dsn := opts.DSN
		if dsn == "" {
			dsn = opts.Name + ".db"
		}
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("不支持的数据库驱动: %s", opts.Driver)
	}
}
