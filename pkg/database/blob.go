package database

import (
	"context"
	"errors"
	"io"
	"strings"
)

// ErrBlobNotFound fid 不存在；store 連線或讀取故障回傳其他錯誤，
// 呼叫端靠這個區分 404 與 500
var ErrBlobNotFound = errors.New("blob not found")

// BlobStore content-addressed binary storage, 由 store 產生不透明識別碼
type BlobStore interface {
	// Put 寫入整個 stream，回傳 store 產生的 fid；size 未知時傳 -1
	Put(ctx context.Context, r io.Reader, size int64) (string, error)
	// Get 以 fid 取回 blob stream
	Get(ctx context.Context, fid string) (io.ReadCloser, error)
	// Stat 回傳 blob 大小，fid 不存在時回傳錯誤
	Stat(ctx context.Context, fid string) (int64, error)
	// Delete 刪除 blob，只用於補償
	Delete(ctx context.Context, fid string) error
}

// NewBlobStore 依連線字串選擇後端
func NewBlobStore(d BlobConnection) (BlobStore, error) {
	if strings.HasPrefix(d.URI, "mongodb://") || strings.HasPrefix(d.URI, "mongodb+srv://") {
		return NewGridFSStore(d)
	}
	return NewMinIOStore(d)
}
