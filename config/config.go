// Package config 负责加载服务配置
// 配置来源优先级: 环境变量 > 配置文件 > 默认值
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/weiwangfds/redactor-upload/internal/logger"
)

// EnvPrefix 环境变量前缀，例如 REDACTOR_SERVER_PORT
const EnvPrefix = "REDACTOR"

// Config 服务总配置
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Upload    UploadConfig    `mapstructure:"upload"`
	Mirror    MirrorConfig    `mapstructure:"mirror"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Log       logger.Config   `mapstructure:"log"`
}

// ServerConfig HTTP服务配置
type ServerConfig struct {
	Port         int      `mapstructure:"port"`
	Mode         string   `mapstructure:"mode"`          // gin模式: debug, release, test
	ReadTimeout  int      `mapstructure:"read_timeout"`  // 秒
	WriteTimeout int      `mapstructure:"write_timeout"` // 秒
	UploadPath   string   `mapstructure:"upload_path"`   // 上传接口路径
	ServeUploads bool     `mapstructure:"serve_uploads"` // 是否直接提供上传目录的静态访问
	CORSOrigins  []string `mapstructure:"cors_origins"`
	RateLimitQPS int      `mapstructure:"rate_limit_qps"` // 上传接口每秒请求数，0表示不限制

	EnableHTTPS bool   `mapstructure:"enable_https"`
	EnableHTTP2 bool   `mapstructure:"enable_http2"`
	TLSCertFile string `mapstructure:"tls_cert_file"`
	TLSKeyFile  string `mapstructure:"tls_key_file"`
}

// UploadConfig 上传处理配置
type UploadConfig struct {
	// UploadsRoot 上传根目录，优先使用
	UploadsRoot string `mapstructure:"uploads_root"`
	// ScriptPath 未配置UploadsRoot时，从该路径中按Marker推导上传根目录
	ScriptPath string `mapstructure:"script_path"`
	Marker     string `mapstructure:"marker"`

	PublicPath string `mapstructure:"public_path"` // 对外URL路径前缀
	PublicHost string `mapstructure:"public_host"` // 为空时使用请求Host
	URLScheme  string `mapstructure:"url_scheme"`  // http, https, auto

	AllowedTypes      []string `mapstructure:"allowed_types"`
	MaxFileSize       int64    `mapstructure:"max_file_size"` // 字节，0表示不限制
	MaxRenameAttempts int      `mapstructure:"max_rename_attempts"`
	DirMode           uint32   `mapstructure:"dir_mode"`
	FileMode          uint32   `mapstructure:"file_mode"`

	// LegacySilent 为true时，类型不合法或未提供文件返回200空响应
	LegacySilent bool `mapstructure:"legacy_silent"`
}

// MirrorConfig 对象存储镜像配置
type MirrorConfig struct {
	Provider  string `mapstructure:"provider"` // aliyun, tencent, qiniu, 空表示禁用
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Endpoint  string `mapstructure:"endpoint"`
	Prefix    string `mapstructure:"prefix"`
	Required  bool   `mapstructure:"required"` // 镜像失败是否导致请求失败
	Timeout   int    `mapstructure:"timeout"`  // 秒
}

// SchedulerConfig 定时任务配置
type SchedulerConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Spec    string `mapstructure:"spec"` // cron表达式
}

// DefaultAllowedTypes 默认允许上传的MIME类型
var DefaultAllowedTypes = []string{
	"image/png",
	"image/jpg",
	"image/jpeg",
	"image/pjpeg",
	"image/gif",
}

// SetDefaults 设置默认配置
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 60)
	v.SetDefault("server.write_timeout", 60)
	v.SetDefault("server.upload_path", "/upload")
	v.SetDefault("server.serve_uploads", true)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.rate_limit_qps", 0)
	v.SetDefault("server.enable_https", false)
	v.SetDefault("server.enable_http2", true)

	v.SetDefault("upload.uploads_root", "")
	v.SetDefault("upload.script_path", "")
	v.SetDefault("upload.marker", "wp-content")
	v.SetDefault("upload.public_path", "/wp-content/uploads")
	v.SetDefault("upload.public_host", "")
	v.SetDefault("upload.url_scheme", "http")
	v.SetDefault("upload.allowed_types", DefaultAllowedTypes)
	v.SetDefault("upload.max_file_size", 0)
	v.SetDefault("upload.max_rename_attempts", 100)
	v.SetDefault("upload.dir_mode", 0755)
	v.SetDefault("upload.file_mode", 0644)
	v.SetDefault("upload.legacy_silent", false)

	v.SetDefault("mirror.provider", "")
	v.SetDefault("mirror.prefix", "wp-content/uploads")
	v.SetDefault("mirror.required", false)
	v.SetDefault("mirror.timeout", 30)

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.spec", "5 0 1 * *")

	def := logger.DefaultConfig()
	v.SetDefault("log.level", def.Level)
	v.SetDefault("log.format", def.Format)
	v.SetDefault("log.output", def.Output)
	v.SetDefault("log.file_path", def.FilePath)
}

// Load 加载配置
// 先尝试读取 .env，再读取 configs/config.yaml 或 ./config.yaml，最后应用环境变量覆盖
func Load() (*Config, error) {
	// .env 不存在时忽略
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	return LoadWith(v)
}

// LoadWith 使用给定的viper实例加载配置，便于测试
func LoadWith(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port: %d", c.Server.Port)
	}
	if !strings.HasPrefix(c.Server.UploadPath, "/") {
		return fmt.Errorf("server.upload_path must start with '/': %q", c.Server.UploadPath)
	}
	if c.Server.EnableHTTPS && (c.Server.TLSCertFile == "" || c.Server.TLSKeyFile == "") {
		return errors.New("server.tls_cert_file and server.tls_key_file are required when https is enabled")
	}

	switch strings.ToLower(c.Upload.URLScheme) {
	case "http", "https", "auto":
	default:
		return fmt.Errorf("invalid upload.url_scheme: %q", c.Upload.URLScheme)
	}
	if c.Upload.UploadsRoot == "" && c.Upload.ScriptPath == "" {
		return errors.New("either upload.uploads_root or upload.script_path must be set")
	}
	if !strings.HasPrefix(c.Upload.PublicPath, "/") {
		return fmt.Errorf("upload.public_path must start with '/': %q", c.Upload.PublicPath)
	}
	if len(c.Upload.AllowedTypes) == 0 {
		return errors.New("upload.allowed_types must not be empty")
	}
	if c.Upload.MaxFileSize < 0 {
		return fmt.Errorf("invalid upload.max_file_size: %d", c.Upload.MaxFileSize)
	}
	if c.Upload.MaxRenameAttempts <= 0 {
		return fmt.Errorf("invalid upload.max_rename_attempts: %d", c.Upload.MaxRenameAttempts)
	}

	switch strings.ToLower(c.Mirror.Provider) {
	case "", "none":
	case "aliyun", "tencent", "qiniu":
		if c.Mirror.Bucket == "" || c.Mirror.AccessKey == "" || c.Mirror.SecretKey == "" {
			return fmt.Errorf("mirror %s requires bucket, access_key and secret_key", c.Mirror.Provider)
		}
	default:
		return fmt.Errorf("unsupported mirror.provider: %q", c.Mirror.Provider)
	}
	return nil
}
