package database

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOStore definition minio-backed BlobStore, 一個 bucket 一個 namespace
type MinIOStore struct {
	client *minio.Client
	bucket string
}

// NewMinIOStore create a minio BlobStore have retry
func NewMinIOStore(d BlobConnection) (*MinIOStore, error) {
	var s *MinIOStore
	var err error

	for i := 1; i <= d.RetryCount; i++ {
		s, err = newMinIOClient(d.URI, d.User, d.Password, d.Bucket, d.UseSSL)
		if err == nil {
			log.Printf("minIO[%s] 連線成功 (嘗試 %d 次)", d.URI, i)
			return s, nil
		}

		log.Printf("minIO[%s] 連線失敗 (嘗試 %d/%d): %v", d.URI, i, d.RetryCount, err)
		time.Sleep(d.RetryInterval * time.Second)
	}

	return s, err
}

func newMinIOClient(endpoint, accessKey, secretKey, bucketName string, useSSL bool) (*MinIOStore, error) {
	minioClient, err := minio.New(endpoint,
		&minio.Options{
			Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
			Secure: useSSL,
		})
	if err != nil {
		return nil, fmt.Errorf("初始化 MinIO 失敗: %v", err)
	}

	ctx := context.Background()
	// 檢查 bucket 是否存在，不存在就建立
	exists, err := minioClient.BucketExists(ctx, bucketName)
	if err != nil {
		return nil, fmt.Errorf("檢查 bucket [%s] 失敗: %v", bucketName, err)
	}

	if !exists {
		if err = minioClient.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("建立 bucket [%s] 失敗: %v", bucketName, err)
		}
		log.Printf("Bucket [%s] 建立成功", bucketName)
	}

	return &MinIOStore{
		client: minioClient,
		bucket: bucketName,
	}, nil
}

// Put 寫入 blob，object key 由 store 產生
func (s *MinIOStore) Put(ctx context.Context, r io.Reader, size int64) (string, error) {
	fid := uuid.New().String()
	_, err := s.client.PutObject(ctx, s.bucket, fid, r, size, minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return "", fmt.Errorf("寫入物件失敗: %w", err)
	}
	return fid, nil
}

// Get 取得 blob stream
func (s *MinIOStore) Get(ctx context.Context, fid string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, fid, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("取得物件失敗: %w", err)
	}
	return obj, nil
}

// Stat 回傳 blob 大小，物件不存在時回傳 ErrBlobNotFound
func (s *MinIOStore) Stat(ctx context.Context, fid string) (int64, error) {
	info, err := s.client.StatObject(ctx, s.bucket, fid, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return 0, ErrBlobNotFound
		}
		return 0, fmt.Errorf("查詢物件失敗: %w", err)
	}
	return info.Size, nil
}

// Delete 刪除 blob
func (s *MinIOStore) Delete(ctx context.Context, fid string) error {
	return s.client.RemoveObject(ctx, s.bucket, fid, minio.RemoveObjectOptions{})
}
