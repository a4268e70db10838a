package router

import (
	"net/http"

	"predict-go/internal/config"
	"predict-go/internal/handler"
	"predict-go/internal/middleware"
	"predict-go/internal/repository"
	"predict-go/internal/service"
	"predict-go/internal/utils"
	"predict-go/pkg/limiter"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SetupRouter 设置路由
func SetupRouter(
	cfg *config.Config,
	jwtManager *utils.JWTManager,
	logger *logrus.Logger,
	db *gorm.DB,
	client service.Predictor,
	lim limiter.Limiter,
) *gin.Engine {
	if cfg.Server.ProductionMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.LoggerMiddleware(logger))
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(cfg.CORS))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "预测数据看板 API",
			"version": "1.0.0",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	userRepo := repository.NewUserRepository(db)
	fileRepo := repository.NewDataFileRepository(db)
	runRepo := repository.NewPredictionRunRepository(db)

	authService := service.NewAuthService(userRepo, jwtManager, cfg)
	predictionService := service.NewPredictionService(fileRepo, runRepo, client, lim, cfg, logger)

	authHandler := handler.NewAuthHandler(authService)
	datasetHandler := handler.NewDatasetHandler(predictionService, cfg.Upload.MaxBytes())
	predictionHandler := handler.NewPredictionHandler(predictionService)

	api := r.Group("/api")
	{
		api.POST("/register", authHandler.Register)
		api.POST("/login", authHandler.Login)
		api.GET("/schema", datasetHandler.Schema)
		api.GET("/health", predictionHandler.Health)

		authed := api.Group("")
		authed.Use(middleware.AuthMiddleware(jwtManager))
		{
			authed.GET("/me", authHandler.GetMe)

			datasets := authed.Group("/datasets")
			{
				datasets.POST("", datasetHandler.Upload)
				datasets.GET("/current", datasetHandler.Current)
				datasets.GET("/current/quality", datasetHandler.Quality)
			}

			predictions := authed.Group("/predictions")
			{
				predictions.POST("", predictionHandler.Predict)
				predictions.GET("/current", predictionHandler.Current)
				predictions.GET("/current/export", predictionHandler.Export)
			}
		}
	}

	return r
}
