package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/streadway/amqp"

	"video_audio_service/internal/pipeline/domain"
	"video_audio_service/pkg/database"
	errprocess "video_audio_service/pkg/err"
	"video_audio_service/pkg/logger"
)

// jobState 標記單條訊息處理到哪個階段，失敗時寫進 log 方便追查
type jobState string

const (
	stateReceived   jobState = "received"
	stateFetched    jobState = "fetched"
	stateTranscoded jobState = "transcoded"
	stateStored     jobState = "stored"
	statePublished  jobState = "published"
)

// Source 提供 delivery channel，由 Broker 實作
type Source interface {
	Consume(queue string) (<-chan amqp.Delivery, error)
}

// Publisher 發布 persistent 訊息，由 Broker 實作
type Publisher interface {
	PublishPersistent(queue string, body []byte) error
}

// Consumer 消費 video queue，抽音軌後存入 audio store 再發布到 mp3 queue
type Consumer struct {
	source       Source
	publisher    Publisher
	videoStore   database.BlobStore
	audioStore   database.BlobStore
	codec        Codec
	consumeQueue string
	publishQueue string
}

// NewConsumer create a transcode Consumer
func NewConsumer(source Source, publisher Publisher, videoStore, audioStore database.BlobStore, codec Codec, consumeQueue, publishQueue string) *Consumer {
	if consumeQueue == "" {
		consumeQueue = domain.VideoQueueName
	}
	if publishQueue == "" {
		publishQueue = domain.MP3QueueName
	}
	return &Consumer{
		source:       source,
		publisher:    publisher,
		videoStore:   videoStore,
		audioStore:   audioStore,
		codec:        codec,
		consumeQueue: consumeQueue,
		publishQueue: publishQueue,
	}
}

// StartConsumer 開始消費，直到 ctx 取消或 delivery channel 關閉
func (c *Consumer) StartConsumer(ctx context.Context) error {
	msgs, err := c.source.Consume(c.consumeQueue)
	if err != nil {
		return fmt.Errorf("consume queue[%s] failed: %w", c.consumeQueue, err)
	}

	logger.Log.Info(fmt.Sprintf("transcode consumer 已啟動，等待 queue[%s] 訊息...", c.consumeQueue))

	for {
		select {
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("queue[%s] delivery channel 已關閉", c.consumeQueue)
			}
			c.Handle(ctx, d)
		case <-ctx.Done():
			return nil
		}
	}
}

// Handle 處理單條訊息；所有路徑最後都經過 finish 做 ack/nack
func (c *Consumer) Handle(ctx context.Context, d amqp.Delivery) {
	state, err := c.process(ctx, d.Body)
	c.finish(d, state, err)
}

// finish 是 ack/nack 的唯一出口：
// 成功 ack；poison 訊息 nack 不 requeue（重送也不會成功）；
// 其他錯誤視為暫時性，nack requeue 等待重試
func (c *Consumer) finish(d amqp.Delivery, state jobState, err error) {
	if err == nil {
		if ackErr := d.Ack(false); ackErr != nil {
			logger.Log.Errorf("ack 失敗:", ackErr)
		}
		return
	}

	logger.Log.Errorf(fmt.Sprintf("transcode job 在階段[%s] 失敗:", state), err)

	requeue := errprocess.KindOf(err) != errprocess.KindPoisonMessage
	if nackErr := d.Nack(false, requeue); nackErr != nil {
		logger.Log.Errorf("nack 失敗:", nackErr)
	}
}

func (c *Consumer) process(ctx context.Context, body []byte) (jobState, error) {
	state := stateReceived

	job, err := domain.DecodeJobMessage(body)
	if err != nil {
		return state, err
	}
	if err := job.ValidateForTranscode(); err != nil {
		return state, err
	}

	// 抓 video blob 到暫存檔，所有離開路徑都會清掉暫存檔
	videoFile, err := os.CreateTemp("", "video-*.tmp")
	if err != nil {
		return state, errprocess.Wrap(err, errprocess.KindInternal, "create temp file failed")
	}
	videoPath := videoFile.Name()
	defer os.Remove(videoPath)

	rc, err := c.videoStore.Get(ctx, job.VideoFid)
	if err != nil {
		videoFile.Close()
		return state, errprocess.Wrap(err, errprocess.KindInternal, fmt.Sprintf("fetch video blob[%s] failed", job.VideoFid))
	}
	_, copyErr := io.Copy(videoFile, rc)
	rc.Close()
	if closeErr := videoFile.Close(); copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		return state, errprocess.Wrap(copyErr, errprocess.KindInternal, "write video temp file failed")
	}
	state = stateFetched

	mp3Path := videoPath + ".mp3"
	defer os.Remove(mp3Path)
	if err := c.codec.ExtractAudio(ctx, videoPath, mp3Path); err != nil {
		return state, errprocess.Wrap(err, errprocess.KindInternal, "audio extraction failed")
	}
	state = stateTranscoded

	mp3File, err := os.Open(mp3Path)
	if err != nil {
		return state, errprocess.Wrap(err, errprocess.KindInternal, "open mp3 temp file failed")
	}
	fi, err := mp3File.Stat()
	if err != nil {
		mp3File.Close()
		return state, errprocess.Wrap(err, errprocess.KindInternal, "stat mp3 temp file failed")
	}
	mp3Fid, err := c.audioStore.Put(ctx, mp3File, fi.Size())
	mp3File.Close()
	if err != nil {
		return state, errprocess.Wrap(err, errprocess.KindInternal, "store audio blob failed")
	}
	state = stateStored

	job.MP3Fid = &mp3Fid
	next, err := job.Encode()
	if err == nil {
		err = c.publisher.PublishPersistent(c.publishQueue, next)
	}
	if err != nil {
		// 補償：發布失敗就刪掉剛寫入的 audio blob，重試時會重新轉碼；
		// video blob 不動，它是這條訊息的來源資料
		if delErr := c.audioStore.Delete(ctx, mp3Fid); delErr != nil {
			logger.Log.Warn(fmt.Sprintf("補償刪除 audio blob[%s] 失敗，留下孤兒 blob: %v", mp3Fid, delErr))
		}
		return state, errprocess.Wrap(err, errprocess.KindServiceUnavailable, "failed to publish notify job")
	}
	state = statePublished

	logger.Log.Info(fmt.Sprintf("video[%s] 轉碼完成 mp3[%s] user[%s]", job.VideoFid, mp3Fid, job.Username))
	return state, nil
}
