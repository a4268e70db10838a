package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

var (
	globalConfig *Config
	once         sync.Once
)

// LoadConfig 加载配置文件，只在首次调用时读取
func LoadConfig(configFile string) (*Config, error) {
	var err error

	once.Do(func() {
		var cfg *Config
		cfg, err = loadConfigFromFile(configFile)
		if err == nil {
			globalConfig = cfg
		}
	})

	return globalConfig, err
}

// loadConfigFromFile 从文件加载配置
func loadConfigFromFile(configFile string) (*Config, error) {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// 环境变量覆盖，例如 BACKEND_BASE_URL
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	setDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("配置验证失败: %w", err)
	}

	return &cfg, nil
}

// setDefaults 设置默认值
func setDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 18080
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "./database/app.db"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Redis.MaxConcurrency == 0 {
		cfg.Redis.MaxConcurrency = 4
	}
	if cfg.Redis.SlotTTL == 0 {
		cfg.Redis.SlotTTL = 60
	}
	if cfg.JWT.Algorithm == "" {
		cfg.JWT.Algorithm = "HS256"
	}
	if cfg.JWT.ExpireMinutes == 0 {
		cfg.JWT.ExpireMinutes = 1440
	}
	if cfg.Admin.Username == "" {
		cfg.Admin.Username = "admin"
	}
	if cfg.CORS.AllowMethods == nil {
		cfg.CORS.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if cfg.CORS.AllowHeaders == nil {
		cfg.CORS.AllowHeaders = []string{"*"}
	}
	if cfg.Backend.BaseURL == "" {
		cfg.Backend.BaseURL = "http://backend:8000"
	}
	if cfg.Backend.PredictTimeout == 0 {
		cfg.Backend.PredictTimeout = 30
	}
	if cfg.Backend.HealthTimeout == 0 {
		cfg.Backend.HealthTimeout = 5
	}
	if cfg.Backend.RetryBackoffMs == 0 {
		cfg.Backend.RetryBackoffMs = 500
	}
	if cfg.Backend.MaxResponseSizeMB == 0 {
		cfg.Backend.MaxResponseSizeMB = 64
	}
	if cfg.Export.ModelVersion == "" {
		cfg.Export.ModelVersion = "xgb_model"
	}
	if cfg.Upload.MaxSizeMB == 0 {
		cfg.Upload.MaxSizeMB = 50
	}
}

// validateConfig 验证配置
func validateConfig(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("无效的服务器端口: %d", cfg.Server.Port)
	}

	if cfg.JWT.SecretKey == "" {
		return fmt.Errorf("JWT密钥不能为空")
	}

	if cfg.Admin.Password == "" {
		return fmt.Errorf("管理员密码不能为空")
	}

	u, err := url.Parse(cfg.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("无效的预测后端地址: %s", cfg.Backend.BaseURL)
	}

	if cfg.Backend.MaxRetries < 0 || cfg.Backend.MaxRetries > 5 {
		return fmt.Errorf("max_retries 必须在 0-5 之间: %d", cfg.Backend.MaxRetries)
	}

	if cfg.Backend.PredictTimeout < 0 || cfg.Backend.HealthTimeout < 0 {
		return fmt.Errorf("超时时间不能为负数")
	}

	// 检查数据库目录是否存在
	dbDir := filepath.Dir(cfg.Database.Path)
	if _, err := os.Stat(dbDir); os.IsNotExist(err) {
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return fmt.Errorf("创建数据库目录失败: %w", err)
		}
	}

	return nil
}

// GetConfig 获取全局配置
func GetConfig() *Config {
	return globalConfig
}
