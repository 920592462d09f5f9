package app

import (
	"context"
	"fmt"

	"github.com/streadway/amqp"

	"video_audio_service/internal/pipeline/domain"
	errprocess "video_audio_service/pkg/err"
	"video_audio_service/pkg/logger"
)

// Source 提供 delivery channel，由 Broker 實作
type Source interface {
	Consume(queue string) (<-chan amqp.Delivery, error)
}

// Consumer 消費 mp3 queue，寄信通知使用者轉檔完成
type Consumer struct {
	source       Source
	mailer       Mailer
	consumeQueue string
}

// NewConsumer create a notify Consumer
func NewConsumer(source Source, mailer Mailer, consumeQueue string) *Consumer {
	if consumeQueue == "" {
		consumeQueue = domain.MP3QueueName
	}
	return &Consumer{
		source:       source,
		mailer:       mailer,
		consumeQueue: consumeQueue,
	}
}

// StartConsumer 開始消費，直到 ctx 取消或 delivery channel 關閉
func (c *Consumer) StartConsumer(ctx context.Context) error {
	msgs, err := c.source.Consume(c.consumeQueue)
	if err != nil {
		return fmt.Errorf("consume queue[%s] failed: %w", c.consumeQueue, err)
	}

	logger.Log.Info(fmt.Sprintf("notify consumer 已啟動，等待 queue[%s] 訊息...", c.consumeQueue))

	for {
		select {
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("queue[%s] delivery channel 已關閉", c.consumeQueue)
			}
			c.Handle(d)
		case <-ctx.Done():
			return nil
		}
	}
}

// Handle 處理單條訊息，成功 ack，poison nack 不 requeue，寄信失敗 requeue 重試
func (c *Consumer) Handle(d amqp.Delivery) {
	err := c.process(d.Body)
	if err == nil {
		if ackErr := d.Ack(false); ackErr != nil {
			logger.Log.Errorf("ack 失敗:", ackErr)
		}
		return
	}

	logger.Log.Errorf("notify job 失敗:", err)

	requeue := errprocess.KindOf(err) != errprocess.KindPoisonMessage
	if nackErr := d.Nack(false, requeue); nackErr != nil {
		logger.Log.Errorf("nack 失敗:", nackErr)
	}
}

func (c *Consumer) process(body []byte) error {
	job, err := domain.DecodeJobMessage(body)
	if err != nil {
		return err
	}
	if err := job.ValidateForNotify(); err != nil {
		return err
	}

	mailBody := fmt.Sprintf("mp3 file_id: %s is now ready!", *job.MP3Fid)
	if err := c.mailer.Send(job.Username, "MP3 Download", mailBody); err != nil {
		return errprocess.Wrap(err, errprocess.KindServiceUnavailable, fmt.Sprintf("send mail to %s failed", job.Username))
	}

	logger.Log.Info(fmt.Sprintf("已通知 user[%s] mp3[%s] 完成", job.Username, *job.MP3Fid))
	return nil
}
