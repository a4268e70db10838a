package config

import (
	"fmt"
	"time"
)

// Config 应用配置结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis_service"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Admin    AdminConfig    `mapstructure:"admin"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Backend  BackendConfig  `mapstructure:"backend"`
	Export   ExportConfig   `mapstructure:"export"`
	Upload   UploadConfig   `mapstructure:"upload"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	ProductionMode bool   `mapstructure:"production_mode"`
}

// GetAddress 获取服务器地址
func (s *ServerConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// RedisConfig Redis配置，Host为空时使用进程内限流
type RedisConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	DB             int    `mapstructure:"db"`
	Password       string `mapstructure:"password"`
	MaxConcurrency int    `mapstructure:"max_concurrency"`
	SlotTTL        int    `mapstructure:"slot_ttl"`
}

// Enabled 是否配置了Redis
func (r *RedisConfig) Enabled() bool {
	return r.Host != ""
}

// GetAddress 获取Redis地址
func (r *RedisConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// GetSlotTTL 获取并发槽位过期时间
func (r *RedisConfig) GetSlotTTL() time.Duration {
	return time.Duration(r.SlotTTL) * time.Second
}

// JWTConfig JWT配置
type JWTConfig struct {
	SecretKey     string `mapstructure:"secret_key"`
	Algorithm     string `mapstructure:"algorithm"`
	ExpireMinutes int    `mapstructure:"expire_minutes"`
}

// GetExpireDuration 获取过期时间
func (j *JWTConfig) GetExpireDuration() time.Duration {
	return time.Duration(j.ExpireMinutes) * time.Minute
}

// AdminConfig 管理员配置
type AdminConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// CORSConfig CORS配置
type CORSConfig struct {
	Origins          []string `mapstructure:"origins"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	AllowMethods     []string `mapstructure:"allow_methods"`
	AllowHeaders     []string `mapstructure:"allow_headers"`
}

// BackendConfig 预测后端配置
type BackendConfig struct {
	BaseURL           string `mapstructure:"base_url"`
	PredictTimeout    int    `mapstructure:"predict_timeout"`
	HealthTimeout     int    `mapstructure:"health_timeout"`
	MaxRetries        int    `mapstructure:"max_retries"`
	RetryBackoffMs    int    `mapstructure:"retry_backoff_ms"`
	MaxResponseSizeMB int64  `mapstructure:"max_response_size_mb"`
}

// GetPredictTimeout 预测请求超时
func (b *BackendConfig) GetPredictTimeout() time.Duration {
	return time.Duration(b.PredictTimeout) * time.Second
}

// GetHealthTimeout 健康检查超时
func (b *BackendConfig) GetHealthTimeout() time.Duration {
	return time.Duration(b.HealthTimeout) * time.Second
}

// GetRetryBackoff 首次重试等待时间
func (b *BackendConfig) GetRetryBackoff() time.Duration {
	return time.Duration(b.RetryBackoffMs) * time.Millisecond
}

// GetMaxResponseBytes 预测响应体上限
func (b *BackendConfig) GetMaxResponseBytes() int64 {
	return b.MaxResponseSizeMB << 20
}

// ExportConfig 导出配置
type ExportConfig struct {
	ModelVersion string `mapstructure:"model_version"`
}

// UploadConfig 上传配置
type UploadConfig struct {
	MaxSizeMB int `mapstructure:"max_size_mb"`
}

// MaxBytes 上传文件大小上限（字节）
func (u *UploadConfig) MaxBytes() int64 {
	return int64(u.MaxSizeMB) << 20
}
