package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 全局配置结构体（完全匹配config.yaml）
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`    // 服务器配置
	Database  DatabaseConfig  `mapstructure:"database"`  // 数据库配置
	Scan      ScanConfig      `mapstructure:"scan"`      // 扫描调度配置
	Home      HomeConfig      `mapstructure:"home"`      // 距离计算原点
	Geocoder  GeocoderConfig  `mapstructure:"geocoder"`  // 地理编码服务配置
	Extractor ExtractorConfig `mapstructure:"extractor"` // 通用提取器（LLM）配置
	Log       LogConfig       `mapstructure:"log"`       // 日志配置
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port int    `mapstructure:"port"` // 服务端口
	Mode string `mapstructure:"mode"` // Gin运行模式：debug/release/test
}

// DatabaseConfig PostgreSQL数据库配置
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`               // 连接DSN
	MaxOpenConns    int           `mapstructure:"max_open_conns"`    // 最大打开连接数
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`    // 最大空闲连接数
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"` // 连接最大存活时间
}

// ScanConfig 扫描调度配置
type ScanConfig struct {
	Schedule        string `mapstructure:"schedule"`           // 每日扫描时间（HH:MM 本地时间）
	Concurrency     int    `mapstructure:"concurrency"`        // 同时扫描的来源数上限
	TimeoutSeconds  int    `mapstructure:"timeout_seconds"`    // 单次扫描总耗时预算（秒）
	HTTPRatePerHost int    `mapstructure:"http_rate_per_host"` // 每个上游主机的请求速率（次/秒）
}

// HomeConfig 距离计算原点配置
type HomeConfig struct {
	Postcode string `mapstructure:"postcode"` // 家庭邮编，用于计算场地距离
}

// GeocoderConfig 地理编码服务配置
type GeocoderConfig struct {
	PrimaryURL    string `mapstructure:"primary_url"`    // 邮编目录服务（现行邮编）
	TerminatedURL string `mapstructure:"terminated_url"` // 邮编目录服务（已停用邮编）
	FallbackURL   string `mapstructure:"fallback_url"`   // 自由文本地理编码兜底服务
}

// ExtractorConfig 通用提取器配置（未注册解析器的来源走LLM提取）
type ExtractorConfig struct {
	URL   string `mapstructure:"url"`   // Ollama兼容服务地址
	Model string `mapstructure:"model"` // 模型名称
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `mapstructure:"level"` // 日志级别：debug/info/warn/error
}

// LoadConfig 加载配置文件（config/config.yaml），可覆盖项从 .env / 环境变量读取
func LoadConfig() (*Config, error) {
	// 1. 加载 .env（若存在），env 中的值会覆盖 config.yaml 中同名字段
	_ = godotenv.Load() // 忽略错误（.env 可不存在）

	// 2. 读取 config.yaml
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	viper.SetTypeByDefaultValue(true)
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 3. 用环境变量覆盖（优先级 env > yaml）
	overrideFromEnv(&cfg)
	cfg.applyDefaults()
	return &cfg, nil
}

// overrideFromEnv 用环境变量覆盖可运行时调整的配置
func overrideFromEnv(cfg *Config) {
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("HOME_POSTCODE"); v != "" {
		cfg.Home.Postcode = v
	}
	if v := os.Getenv("SCAN_SCHEDULE"); v != "" {
		cfg.Scan.Schedule = v
	}
	if v := os.Getenv("SCAN_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Scan.Concurrency = n
		}
	}
	if v := os.Getenv("SCAN_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Scan.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("HTTP_RATE_PER_HOST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Scan.HTTPRatePerHost = n
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("GEOCODER_PRIMARY_URL"); v != "" {
		cfg.Geocoder.PrimaryURL = v
	}
	if v := os.Getenv("GEOCODER_FALLBACK_URL"); v != "" {
		cfg.Geocoder.FallbackURL = v
	}
	if v := os.Getenv("GENERIC_EXTRACTOR_URL"); v != "" {
		cfg.Extractor.URL = v
	}
	if v := os.Getenv("GENERIC_EXTRACTOR_MODEL"); v != "" {
		cfg.Extractor.Model = v
	}
}

// applyDefaults 缺省值兜底（yaml缺失或值非法时）
func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = "release"
	}
	if cfg.Scan.Schedule == "" {
		cfg.Scan.Schedule = "06:00"
	}
	if cfg.Scan.Concurrency <= 0 {
		cfg.Scan.Concurrency = 1
	}
	if cfg.Scan.TimeoutSeconds <= 0 {
		cfg.Scan.TimeoutSeconds = 300
	}
	if cfg.Scan.HTTPRatePerHost <= 0 {
		cfg.Scan.HTTPRatePerHost = 4
	}
	if cfg.Home.Postcode == "" {
		cfg.Home.Postcode = "SW1A 1AA"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}
