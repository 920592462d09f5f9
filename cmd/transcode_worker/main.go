package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"video_audio_service/internal/transcode/app"
	"video_audio_service/pkg/config"
	"video_audio_service/pkg/database"
	"video_audio_service/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.TranscodeWorker, config.EnvConfig.TranscodeWorkerLogPath)
	cfg := config.LoadConfig[config.TranscodeWorker](config.EnvConfig.TranscodeWorker, config.EnvConfig.TranscodeWorkerYAMLPath)

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

	// 消費端與發布端的 queue 都先宣告，避免依賴服務啟動順序
	if err := broker.DeclareQueue(cfg.VideoQueue); err != nil {
		log.Fatalf("Queue Declare failed: %v", err)
	}
	if err := broker.DeclareQueue(cfg.MP3Queue); err != nil {
		log.Fatalf("Queue Declare failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := app.NewConsumer(broker, broker, videoStore, audioStore, app.FFmpegCodec{}, cfg.VideoQueue, cfg.MP3Queue)
	if err := consumer.StartConsumer(ctx); err != nil {
		logger.Log.Fatal("transcode consumer 異常結束", zap.Error(err))
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
