package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"video_audio_service/internal/pipeline/domain"
	"video_audio_service/pkg/database"
	errprocess "video_audio_service/pkg/err"
	"video_audio_service/pkg/logger"
)

// MockBlobStore Mock database.BlobStore
type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) Put(ctx context.Context, r io.Reader, size int64) (string, error) {
	args := m.Called(ctx, r, size)
	return args.String(0), args.Error(1)
}

func (m *MockBlobStore) Get(ctx context.Context, fid string) (io.ReadCloser, error) {
	args := m.Called(ctx, fid)
	if args.Get(0) != nil {
		return args.Get(0).(io.ReadCloser), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBlobStore) Stat(ctx context.Context, fid string) (int64, error) {
	args := m.Called(ctx, fid)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBlobStore) Delete(ctx context.Context, fid string) error {
	args := m.Called(ctx, fid)
	return args.Error(0)
}

// MockPublisher Mock Publisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishPersistent(queue string, body []byte) error {
	args := m.Called(queue, body)
	return args.Error(0)
}

func TestGatewayUseCase_Upload(t *testing.T) {
	ctx := context.Background()
	logger.SetNewNop()
	payload := bytes.NewReader([]byte("fake video bytes"))

	t.Run("成功上傳並發布工作", func(t *testing.T) {
		videoStore := new(MockBlobStore)
		audioStore := new(MockBlobStore)
		publisher := new(MockPublisher)

		videoStore.On("Put", ctx, payload, int64(16)).Return("fid-1", nil).Once()
		var published []byte
		publisher.On("PublishPersistent", "video", mock.Anything).Run(func(args mock.Arguments) {
			published = args.Get(1).([]byte)
		}).Return(nil).Once()

		uc := NewGatewayUseCase(videoStore, audioStore, publisher, "video")
		fid, err := uc.Upload(ctx, payload, 16, "alice@example.com")

		assert.NoError(t, err)
		assert.Equal(t, "fid-1", fid)

		job, err := domain.DecodeJobMessage(published)
		assert.NoError(t, err)
		assert.Equal(t, "fid-1", job.VideoFid)
		assert.Nil(t, job.MP3Fid)
		assert.Equal(t, "alice@example.com", job.Username)

		videoStore.AssertExpectations(t)
		publisher.AssertExpectations(t)
		videoStore.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("發布失敗時補償刪除 video blob", func(t *testing.T) {
		videoStore := new(MockBlobStore)
		publisher := new(MockPublisher)

		videoStore.On("Put", ctx, mock.Anything, mock.Anything).Return("fid-2", nil).Once()
		publisher.On("PublishPersistent", "video", mock.Anything).Return(errors.New("broker down")).Once()
		videoStore.On("Delete", ctx, "fid-2").Return(nil).Once()

		uc := NewGatewayUseCase(videoStore, new(MockBlobStore), publisher, "video")
		fid, err := uc.Upload(ctx, payload, 16, "alice@example.com")

		assert.Empty(t, fid)
		assert.Equal(t, errprocess.KindServiceUnavailable, errprocess.KindOf(err))
		videoStore.AssertExpectations(t)
	})

	t.Run("補償刪除失敗仍回報 ServiceUnavailable", func(t *testing.T) {
		videoStore := new(MockBlobStore)
		publisher := new(MockPublisher)

		videoStore.On("Put", ctx, mock.Anything, mock.Anything).Return("fid-3", nil).Once()
		publisher.On("PublishPersistent", "video", mock.Anything).Return(errors.New("broker down")).Once()
		videoStore.On("Delete", ctx, "fid-3").Return(errors.New("store down")).Once()

		uc := NewGatewayUseCase(videoStore, new(MockBlobStore), publisher, "video")
		_, err := uc.Upload(ctx, payload, 16, "alice@example.com")

		assert.Equal(t, errprocess.KindServiceUnavailable, errprocess.KindOf(err))
		videoStore.AssertExpectations(t)
	})

	t.Run("store 寫入失敗不發布工作", func(t *testing.T) {
		videoStore := new(MockBlobStore)
		publisher := new(MockPublisher)

		videoStore.On("Put", ctx, mock.Anything, mock.Anything).Return("", errors.New("disk full")).Once()

		uc := NewGatewayUseCase(videoStore, new(MockBlobStore), publisher, "video")
		_, err := uc.Upload(ctx, payload, 16, "alice@example.com")

		assert.Equal(t, errprocess.KindInternal, errprocess.KindOf(err))
		publisher.AssertNotCalled(t, "PublishPersistent", mock.Anything, mock.Anything)
	})
}

func TestGatewayUseCase_Download(t *testing.T) {
	ctx := context.Background()
	logger.SetNewNop()

	t.Run("fid 為空", func(t *testing.T) {
		uc := NewGatewayUseCase(new(MockBlobStore), new(MockBlobStore), new(MockPublisher), "video")
		rc, _, err := uc.Download(ctx, "")

		assert.Nil(t, rc)
		assert.Equal(t, errprocess.KindBadRequest, errprocess.KindOf(err))
	})

	t.Run("未知 fid 映射為 NotFound，不外洩 store 錯誤", func(t *testing.T) {
		audioStore := new(MockBlobStore)
		audioStore.On("Stat", ctx, "ghost").Return(int64(0), database.ErrBlobNotFound).Once()

		uc := NewGatewayUseCase(new(MockBlobStore), audioStore, new(MockPublisher), "video")
		rc, _, err := uc.Download(ctx, "ghost")

		assert.Nil(t, rc)
		assert.Equal(t, errprocess.KindNotFound, errprocess.KindOf(err))
		assert.Equal(t, "file not found", err.Error())
	})

	t.Run("store 故障映射為 Internal 而非 NotFound", func(t *testing.T) {
		audioStore := new(MockBlobStore)
		audioStore.On("Stat", ctx, "fid-9").
			Return(int64(0), errors.New("dial tcp 10.0.0.5:9000: connect: connection refused")).Once()

		uc := NewGatewayUseCase(new(MockBlobStore), audioStore, new(MockPublisher), "video")
		rc, _, err := uc.Download(ctx, "fid-9")

		assert.Nil(t, rc)
		assert.Equal(t, errprocess.KindInternal, errprocess.KindOf(err))
		assert.NotContains(t, err.Error(), "dial tcp")
	})

	t.Run("Get 回報不存在同樣映射為 NotFound", func(t *testing.T) {
		audioStore := new(MockBlobStore)
		audioStore.On("Stat", ctx, "fid-9").Return(int64(4), nil).Once()
		audioStore.On("Get", ctx, "fid-9").Return(nil, database.ErrBlobNotFound).Once()

		uc := NewGatewayUseCase(new(MockBlobStore), audioStore, new(MockPublisher), "video")
		rc, _, err := uc.Download(ctx, "fid-9")

		assert.Nil(t, rc)
		assert.Equal(t, errprocess.KindNotFound, errprocess.KindOf(err))
	})

	t.Run("成功取回 stream", func(t *testing.T) {
		audioStore := new(MockBlobStore)
		audioStore.On("Stat", ctx, "fid-9").Return(int64(4), nil).Once()
		audioStore.On("Get", ctx, "fid-9").Return(io.NopCloser(bytes.NewReader([]byte("mp3!"))), nil).Once()

		uc := NewGatewayUseCase(new(MockBlobStore), audioStore, new(MockPublisher), "video")
		rc, size, err := uc.Download(ctx, "fid-9")

		assert.NoError(t, err)
		assert.Equal(t, int64(4), size)
		data, _ := io.ReadAll(rc)
		assert.Equal(t, "mp3!", string(data))
	})
}
