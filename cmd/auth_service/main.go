package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"video_audio_service/internal/auth/app"
	"video_audio_service/internal/auth/repository"
	"video_audio_service/internal/auth/router"
	"video_audio_service/pkg/config"
	"video_audio_service/pkg/database"
	"video_audio_service/pkg/logger"
	"video_audio_service/pkg/token"

	"github.com/gofiber/fiber/v2"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.AuthService, config.EnvConfig.AuthServiceLogPath)
	cfg := config.LoadConfig[config.AuthService](config.EnvConfig.AuthService, config.EnvConfig.AuthServiceYAMLPath)

	// 未設定時沿用內建 secret，部署環境務必覆蓋
	token.SetSecret(cfg.JWTSecret)

	// 1. 連線 PostgreSQL
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		cfg.PostgreSQL.Host, cfg.PostgreSQL.User, cfg.PostgreSQL.Password, cfg.PostgreSQL.Database, cfg.PostgreSQL.Port)
	db, err := database.NewDatabaseConnection(database.Connection{
		ConnectStr: dsn,

		RetryCount:    cfg.PostgreSQL.RetryCount,
		RetryInterval: time.Duration(cfg.PostgreSQL.RetryInterval),
	})
	if err != nil {
		logger.Log.Fatal(
			"Unable to connect to postgreSQL database after retries",
			zap.String("address", fmt.Sprintf("[%s]", dsn)),
			zap.Error(err),
		)
	}
	defer db.Close()

	userRepo := repository.NewUserRepository(db)
	usecase := app.NewAuthUseCase(userRepo)
	authHandler := app.NewAuthHandler(usecase)

	// 创建 Fiber 应用
	r := fiber.New()
	// 添加日志中间件
	file, err := os.OpenFile(fmt.Sprintf("%s/access.log", config.EnvConfig.AuthServiceLogPath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer file.Close()

	r.Use(fiber_log.New(fiber_log.Config{
		Output: file, // 将日志输出到文件
	}))

	// 注册路由
	router.RegisterRoutes(r, authHandler)

	// 启动服务器
	if err := r.Listen(":" + cfg.Port); err != nil {
		logger.Log.Fatal("Server failed to start", zap.Error(err))
	}
}
