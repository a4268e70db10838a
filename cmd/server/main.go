package main

import (
	"context"
	"log"
	"os"
	"time"

	"predict-go/internal/config"
	"predict-go/internal/models"
	"predict-go/internal/repository"
	"predict-go/internal/router"
	"predict-go/internal/service"
	"predict-go/internal/utils"
	"predict-go/pkg/limiter"
	"predict-go/pkg/predictor"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

func main() {
	configPath := "./config/config.yaml"
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		configPath = p
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)
	logger.SetLevel(logrus.InfoLevel)

	if err := models.InitDB(cfg); err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}
	db := models.GetDB()

	lim := newLimiter(cfg, logger)

	client := predictor.NewClient(predictor.Options{
		BaseURL:          cfg.Backend.BaseURL,
		PredictTimeout:   cfg.Backend.GetPredictTimeout(),
		HealthTimeout:    cfg.Backend.GetHealthTimeout(),
		MaxRetries:       cfg.Backend.MaxRetries,
		RetryBackoff:     cfg.Backend.GetRetryBackoff(),
		MaxResponseBytes: cfg.Backend.GetMaxResponseBytes(),
		Logger:           logger,
	})

	jwtManager := utils.NewJWTManager(
		cfg.JWT.SecretKey,
		cfg.JWT.Algorithm,
		cfg.JWT.GetExpireDuration(),
	)

	authService := service.NewAuthService(repository.NewUserRepository(db), jwtManager, cfg)
	if err := authService.InitAdmin(); err != nil {
		logger.Warnf("初始化管理员失败: %v", err)
	}

	r := router.SetupRouter(cfg, jwtManager, logger, db, client, lim)

	addr := cfg.Server.GetAddress()
	logger.WithFields(logrus.Fields{
		"addr":    addr,
		"backend": cfg.Backend.BaseURL,
		"redis":   cfg.Redis.Enabled(),
	}).Info("服务器启动")

	if err := r.Run(addr); err != nil {
		log.Fatalf("启动服务器失败: %v", err)
	}
}

// newLimiter 配置了Redis时使用Redis并发槽位，否则使用进程内计数
func newLimiter(cfg *config.Config, logger *logrus.Logger) limiter.Limiter {
	if !cfg.Redis.Enabled() {
		logger.Info("未配置Redis，使用进程内并发限制")
		return limiter.NewLocalLimiter(cfg.Redis.MaxConcurrency)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddress(),
		DB:       cfg.Redis.DB,
		Password: cfg.Redis.Password,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Warn("Redis连接失败，使用进程内并发限制")
		redisClient.Close()
		return limiter.NewLocalLimiter(cfg.Redis.MaxConcurrency)
	}

	return limiter.NewRedisLimiter(redisClient, cfg.Redis.MaxConcurrency, "predict:slots:", cfg.Redis.GetSlotTTL(), logger)
}
