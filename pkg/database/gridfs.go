package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// GridFSStore definition mongo GridFS-backed BlobStore
type GridFSStore struct {
	client *mongo.Client
	bucket *gridfs.Bucket
}

// NewGridFSStore create a GridFS BlobStore have retry, Bucket 為 database 名稱
func NewGridFSStore(d BlobConnection) (*GridFSStore, error) {
	clientOpts := options.Client().ApplyURI(d.URI)
	if d.User != "" {
		clientOpts.SetAuth(options.Credential{
			Username: d.User,
			Password: d.Password,
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var client *mongo.Client
	var err error

	for i := 0; i <= d.RetryCount; i++ {
		client, err = mongo.Connect(ctx, clientOpts)
		if err == nil {
			pingErr := client.Ping(ctx, readpref.Primary())
			if pingErr == nil {
				bucket, bErr := gridfs.NewBucket(client.Database(d.Bucket))
				if bErr != nil {
					return nil, bErr
				}
				return &GridFSStore{
					client: client,
					bucket: bucket,
				}, nil
			}
			err = pingErr
		}

		if i < d.RetryCount {
			time.Sleep(d.RetryInterval * time.Second)
		}
	}

	return nil, errors.New("failed to connect to MongoDB after retries: " + err.Error())
}

// Put 寫入 blob，fid 為 GridFS ObjectID 的 hex
func (s *GridFSStore) Put(ctx context.Context, r io.Reader, size int64) (string, error) {
	id, err := s.bucket.UploadFromStream("", r)
	if err != nil {
		return "", fmt.Errorf("GridFS 寫入失敗: %w", err)
	}
	return id.Hex(), nil
}

// Get 取得 blob stream，物件不存在時回傳 ErrBlobNotFound
func (s *GridFSStore) Get(ctx context.Context, fid string) (io.ReadCloser, error) {
	oid, err := primitive.ObjectIDFromHex(fid)
	if err != nil {
		// 非 ObjectID hex 的 fid 不可能存在
		return nil, ErrBlobNotFound
	}

	ds, err := s.bucket.OpenDownloadStream(oid)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("GridFS 讀取失敗: %w", err)
	}
	return ds, nil
}

// Stat 回傳 blob 大小，物件不存在時回傳 ErrBlobNotFound
func (s *GridFSStore) Stat(ctx context.Context, fid string) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(fid)
	if err != nil {
		return 0, ErrBlobNotFound
	}

	ds, err := s.bucket.OpenDownloadStream(oid)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return 0, ErrBlobNotFound
		}
		return 0, fmt.Errorf("GridFS 查詢失敗: %w", err)
	}
	defer ds.Close()

	return ds.GetFile().Length, nil
}

// Delete 刪除 blob
func (s *GridFSStore) Delete(ctx context.Context, fid string) error {
	oid, err := primitive.ObjectIDFromHex(fid)
	if err != nil {
		return fmt.Errorf("無效的 fid: %w", err)
	}
	return s.bucket.Delete(oid)
}

// Close disenable mongoDB connection
func (s *GridFSStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
