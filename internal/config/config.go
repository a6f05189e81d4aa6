package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// 运行模式
const (
	ModeDevelopment = "development"
	ModeProduction  = "production"
)

// 同步批次上限，与缓冲区单次 LPOP 的上限保持一致
const MaxSyncBatchSize = 1000

// 主配置结构
type Config struct {
	App       App       `yaml:"app"`
	Server    Server    `yaml:"server"`
	Database  DB        `yaml:"database"`
	Cache     Cache     `yaml:"cache"`
	Auth      Auth      `yaml:"auth"`
	RateLimit Limit     `yaml:"rate_limit"`
	Log       Log       `yaml:"log"`
	Tracking  Tracking  `yaml:"tracking"`
	Sync      Sync      `yaml:"sync"`
	Analytics Analytics `yaml:"analytics"`
	Cron      Cron      `yaml:"cron"`
}

// 应用配置
type App struct {
	Name    string `yaml:"name"`
	Mode    string `yaml:"mode"`
	Version string `yaml:"version"`
	BaseURL string `yaml:"base_url"`
}

// 服务器配置
type Server struct {
	Port         int `yaml:"port"`
	ReadTimeout  int `yaml:"read_timeout"`
	WriteTimeout int `yaml:"write_timeout"`
}

// 数据库配置，Driver 可选 mysql / postgres / sqlite
type DB struct {
	Driver   string `yaml:"driver"`
	DSN      string `yaml:"dsn"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	Charset  string `yaml:"charset"`
}

// 缓存配置（Redis），同时承担点击队列和实时计数
type Cache struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// 认证配置
type Auth struct {
	Secret          string `yaml:"secret"`
	Issuer          string `yaml:"issuer"`
	ExpirationHours int    `yaml:"expiration_hours"`
}

// 限流配置
type Limit struct {
	Enabled   bool     `yaml:"enabled"`
	Requests  int64    `yaml:"requests"`
	Period    int      `yaml:"period_seconds"`
	Burst     int64    `yaml:"burst"`
	SkipPaths []string `yaml:"skip_paths"`
}

// 日志配置
type Log struct {
	Level      string `yaml:"level"`
	Filename   string `yaml:"filename"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
	Compress   bool   `yaml:"compress"`
}

// 点击追踪配置
type Tracking struct {
	QueueKey       string   `yaml:"queue_key"`
	CounterPrefix  string   `yaml:"counter_prefix"`
	CountryHeaders []string `yaml:"country_headers"`
	CityHeaders    []string `yaml:"city_headers"`
	TimeoutMs      int      `yaml:"timeout_ms"`
}

// 同步任务配置
type Sync struct {
	Enabled         bool `yaml:"enabled"`
	BatchSize       int  `yaml:"batch_size"`
	IntervalSeconds int  `yaml:"interval_seconds"`
}

// 统计分析配置
type Analytics struct {
	CacheTTLSeconds int `yaml:"cache_ttl_seconds"`
	WindowDays      int `yaml:"window_days"`
	TopN            int `yaml:"top_n"`
}

// 定时任务触发方的共享密钥
type Cron struct {
	Secret string `yaml:"secret"`
}

// IsDevelopment 是否为本地开发模式
func (c *Config) IsDevelopment() bool {
	return c.App.Mode == ModeDevelopment
}

// SyncInterval 同步间隔
func (c *Config) SyncInterval() time.Duration {
	return time.Duration(c.Sync.IntervalSeconds) * time.Second
}

// AnalyticsCacheTTL 统计结果缓存时间
func (c *Config) AnalyticsCacheTTL() time.Duration {
	return time.Duration(c.Analytics.CacheTTLSeconds) * time.Second
}

// 加载配置：YAML 文件 -> .env -> 环境变量 -> 默认值
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// .env 不存在时忽略
	_ = godotenv.Load()
	applyEnv(&cfg)
	applyDefaults(&cfg)

	return &cfg, nil
}

// 环境变量覆盖
func applyEnv(cfg *Config) {
	if v := os.Getenv("APP_MODE"); v != "" {
		cfg.App.Mode = v
	}
	if v := os.Getenv("CRON_SECRET"); v != "" {
		cfg.Cron.Secret = v
	}
	if v := os.Getenv("AUTH_SECRET"); v != "" {
		cfg.Auth.Secret = v
	}
	if v := os.Getenv("DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		cfg.Cache.Host = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Mode == "" {
		cfg.App.Mode = ModeProduction
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "mysql"
	}
	if cfg.Cache.Port == 0 {
		cfg.Cache.Port = 6379
	}
	if cfg.Auth.ExpirationHours == 0 {
		cfg.Auth.ExpirationHours = 24
	}
	if cfg.RateLimit.Requests == 0 {
		cfg.RateLimit.Requests = 10
	}
	if cfg.RateLimit.Period == 0 {
		cfg.RateLimit.Period = 10
	}
	if cfg.RateLimit.Burst == 0 {
		cfg.RateLimit.Burst = cfg.RateLimit.Requests
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Filename == "" {
		cfg.Log.Filename = "./logs/app.log"
	}
	if cfg.Tracking.QueueKey == "" {
		cfg.Tracking.QueueKey = "analytics:queue"
	}
	if cfg.Tracking.CounterPrefix == "" {
		cfg.Tracking.CounterPrefix = "link:clicks:"
	}
	if len(cfg.Tracking.CountryHeaders) == 0 {
		cfg.Tracking.CountryHeaders = []string{"X-Vercel-IP-Country", "CF-IPCountry"}
	}
	if len(cfg.Tracking.CityHeaders) == 0 {
		cfg.Tracking.CityHeaders = []string{"X-Vercel-IP-City"}
	}
	if cfg.Tracking.TimeoutMs == 0 {
		cfg.Tracking.TimeoutMs = 2000
	}
	if cfg.Sync.BatchSize <= 0 {
		cfg.Sync.BatchSize = 100
	}
	if cfg.Sync.BatchSize > MaxSyncBatchSize {
		cfg.Sync.BatchSize = MaxSyncBatchSize
	}
	if cfg.Sync.IntervalSeconds == 0 {
		cfg.Sync.IntervalSeconds = 60
	}
	if cfg.Analytics.CacheTTLSeconds == 0 {
		cfg.Analytics.CacheTTLSeconds = 300
	}
	if cfg.Analytics.WindowDays == 0 {
		cfg.Analytics.WindowDays = 7
	}
	if cfg.Analytics.TopN == 0 {
		cfg.Analytics.TopN = 5
	}
}
