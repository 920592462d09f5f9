package database

import (
	"time"
)

// Connection definition broker/sql setting
type Connection struct {
	ConnectStr string

	RetryCount    int
	RetryInterval time.Duration
}

// BlobConnection definition blob store setting
// URI 以 mongodb:// 開頭時走 GridFS，否則視為 MinIO endpoint
type BlobConnection struct {
	URI      string
	User     string
	Password string
	Bucket   string
	UseSSL   bool

	RetryCount    int
	RetryInterval time.Duration
}
