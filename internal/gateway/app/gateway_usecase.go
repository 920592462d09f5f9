package app

import (
	"context"
	"errors"
	"io"

	"go.uber.org/zap"

	"video_audio_service/internal/pipeline/domain"
	"video_audio_service/pkg/database"
	errprocess "video_audio_service/pkg/err"
	"video_audio_service/pkg/logger"
)

// Publisher 發布 persistent 訊息到指定 queue
type Publisher interface {
	PublishPersistent(queue string, body []byte) error
}

// GatewayUseCase 這裡封裝了上傳與下載的應用服務
type GatewayUseCase interface {
	Upload(ctx context.Context, file io.Reader, size int64, username string) (string, error)
	Download(ctx context.Context, fid string) (io.ReadCloser, int64, error)
}

type gatewayUseCase struct {
	videoStore database.BlobStore
	audioStore database.BlobStore
	publisher  Publisher
	videoQueue string
}

// NewGatewayUseCase 建立一個新的 GatewayUseCase
func NewGatewayUseCase(videoStore, audioStore database.BlobStore, publisher Publisher, videoQueue string) GatewayUseCase {
	return &gatewayUseCase{
		videoStore: videoStore,
		audioStore: audioStore,
		publisher:  publisher,
		videoQueue: videoQueue,
	}
}

// Upload 寫入 video blob 並發布轉檔工作
// 發布失敗時刪除剛寫入的 blob：store 裡不能存在沒有對應工作的孤兒資料
func (g *gatewayUseCase) Upload(ctx context.Context, file io.Reader, size int64, username string) (string, error) {
	fid, err := g.videoStore.Put(ctx, file, size)
	if err != nil {
		return "", errprocess.Wrap(err, errprocess.KindInternal, "failed to store file")
	}

	job := domain.JobMessage{VideoFid: fid, MP3Fid: nil, Username: username}
	body, err := job.Encode()
	if err != nil {
		return "", errprocess.Wrap(err, errprocess.KindInternal, "failed to encode job message")
	}

	if err := g.publisher.PublishPersistent(g.videoQueue, body); err != nil {
		logger.Log.Errorf("publish transcode job failed :", err)
		// 補償刪除採 best-effort，失敗只記錄，孤兒 blob 是可接受的退化結果
		if delErr := g.videoStore.Delete(ctx, fid); delErr != nil {
			logger.Log.Warn("compensating delete failed, orphan video blob left behind",
				zap.String("video_fid", fid), zap.Error(delErr))
		}
		return "", errprocess.New(errprocess.KindServiceUnavailable, "failed to enqueue transcode job")
	}

	logger.Log.Info("upload accepted", zap.String("video_fid", fid), zap.String("username", username))
	return fid, nil
}

// Download 從 audio store 取回 blob stream
func (g *gatewayUseCase) Download(ctx context.Context, fid string) (io.ReadCloser, int64, error) {
	if fid == "" {
		return nil, 0, errprocess.New(errprocess.KindBadRequest, "fid is required")
	}

	// 只有 store 明確回報不存在才是 404，連線或讀取故障一律 500
	size, err := g.audioStore.Stat(ctx, fid)
	if err != nil {
		if errors.Is(err, database.ErrBlobNotFound) {
			return nil, 0, errprocess.New(errprocess.KindNotFound, "file not found")
		}
		return nil, 0, errprocess.Wrap(err, errprocess.KindInternal, "failed to stat file")
	}

	rc, err := g.audioStore.Get(ctx, fid)
	if err != nil {
		if errors.Is(err, database.ErrBlobNotFound) {
			return nil, 0, errprocess.New(errprocess.KindNotFound, "file not found")
		}
		return nil, 0, errprocess.Wrap(err, errprocess.KindInternal, "failed to fetch file")
	}

	return rc, size, nil
}
