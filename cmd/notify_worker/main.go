package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"video_audio_service/internal/notify/app"
	"video_audio_service/pkg/config"
	"video_audio_service/pkg/database"
	"video_audio_service/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.NotifyWorker, config.EnvConfig.NotifyWorkerLogPath)
	cfg := config.LoadConfig[config.NotifyWorker](config.EnvConfig.NotifyWorker, config.EnvConfig.NotifyWorkerYAMLPath)

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

	if err := broker.DeclareQueue(cfg.MP3Queue); err != nil {
		log.Fatalf("Queue Declare failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := app.NewConsumer(broker, app.NewSMTPMailer(cfg.SMTP), cfg.MP3Queue)
	if err := consumer.StartConsumer(ctx); err != nil {
		logger.Log.Fatal("notify consumer 異常結束", zap.Error(err))
	}
}
