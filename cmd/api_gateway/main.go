package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"video_audio_service/internal/gateway/app"
	"video_audio_service/internal/gateway/authclient"
	"video_audio_service/internal/gateway/handlers"
	"video_audio_service/internal/gateway/router"
	"video_audio_service/pkg/config"
	"video_audio_service/pkg/database"
	"video_audio_service/pkg/logger"

	"github.com/gofiber/fiber/v2"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.APIGateway, config.EnvConfig.APIGatewayLogPath)
	cfg := config.LoadConfig[config.APIGateway](config.EnvConfig.APIGateway, config.EnvConfig.APIGatewayYAMLPath)

	// video/audio 兩個 blob store，依 URI 自動選 MinIO 或 GridFS
	videoStore, err := database.NewBlobStore(blobConn(cfg.VideoStore))
	if err != nil {
		logger.Log.Fatal("Unable to connect to video store after retries", zap.Error(err))
	}
	audioStore, err := database.NewBlobStore(blobConn(cfg.AudioStore))
	if err != nil {
		logger.Log.Fatal("Unable to connect to audio store after retries", zap.Error(err))
	}

	rabbitURL := fmt.Sprintf("amqp://%s:%s@%s:%s/", cfg.RabbitMQ.User, cfg.RabbitMQ.Password, cfg.RabbitMQ.IP, cfg.RabbitMQ.Port)
	broker, err := database.DialBrokerWithRetry(database.Connection{
		ConnectStr:    rabbitURL,
		RetryCount:    cfg.RabbitMQ.RetryCount,
		RetryInterval: time.Duration(cfg.RabbitMQ.RetryInterval),
	})
	if err != nil {
		log.Fatalf("RabbitMQ 連線失敗: %v", err)
	}
	defer broker.Close()

	// 先宣告 durable queue，worker 還沒起來時訊息也不會丟
	if err := broker.DeclareQueue(cfg.VideoQueue); err != nil {
		log.Fatalf("Queue Declare failed: %v", err)
	}

	auth := authclient.New(fmt.Sprintf("http://%s:%s", cfg.AuthService.IP, cfg.AuthService.Port))
	usecase := app.NewGatewayUseCase(videoStore, audioStore, broker, cfg.VideoQueue)
	gatewayHandler := handlers.NewGatewayHandler(auth, usecase)

	// 创建 Fiber 应用
	r := fiber.New()
	// 添加日志中间件
	file, err := os.OpenFile(fmt.Sprintf("%s/access.log", config.EnvConfig.APIGatewayLogPath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer file.Close()

	r.Use(fiber_log.New(fiber_log.Config{
		Output: file, // 将日志输出到文件
	}))

	// 注册路由
	router.RegisterRoutes(r, gatewayHandler)

	// 启动服务器
	if err := r.Listen(":" + cfg.Port); err != nil {
		logger.Log.Fatal("Server failed to start", zap.Error(err))
	}
}

func blobConn(c config.BlobStoreConfig) database.BlobConnection {
	return database.BlobConnection{
		URI:      c.URI,
		User:     c.User,
		Password: c.Password,
		Bucket:   c.Bucket,
		UseSSL:   c.UseSSL,

		RetryCount:    c.RetryCount,
		RetryInterval: time.Duration(c.RetryInterval),
	}
}
