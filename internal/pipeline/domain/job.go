package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	errprocess "video_audio_service/pkg/err"
)

const (
	// VideoQueueName default queue carrying transcode jobs
	VideoQueueName = "video"
	// MP3QueueName default queue carrying notify jobs
	MP3QueueName = "mp3"
)

// JobMessage 管線中的一個工作單位
// MP3Fid 非空若且唯若工作已通過轉檔階段
type JobMessage struct {
	VideoFid string  `json:"video_fid"`
	MP3Fid   *string `json:"mp3_fid"`
	Username string  `json:"username"`
}

// DecodeJobMessage fail-closed 解析 queue payload
// 非法 JSON 或未知欄位一律視為 poison message
func DecodeJobMessage(body []byte) (*JobMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()

	var job JobMessage
	if err := dec.Decode(&job); err != nil {
		return nil, errprocess.New(errprocess.KindPoisonMessage, fmt.Sprintf("invalid job message: %v", err))
	}
	// 一條訊息只能帶一個 JSON object
	if dec.More() {
		return nil, errprocess.New(errprocess.KindPoisonMessage, "invalid job message: trailing data")
	}

	return &job, nil
}

// Encode 序列化為 UTF-8 JSON
func (j *JobMessage) Encode() ([]byte, error) {
	return json.Marshal(j)
}

// ValidateForTranscode 轉檔階段必要欄位檢查
func (j *JobMessage) ValidateForTranscode() error {
	if j.VideoFid == "" {
		return errprocess.New(errprocess.KindPoisonMessage, "job message missing video_fid")
	}
	if j.Username == "" {
		return errprocess.New(errprocess.KindPoisonMessage, "job message missing username")
	}
	return nil
}

// ValidateForNotify 通知階段必要欄位檢查
func (j *JobMessage) ValidateForNotify() error {
	if j.MP3Fid == nil || *j.MP3Fid == "" {
		return errprocess.New(errprocess.KindPoisonMessage, "job message missing mp3_fid")
	}
	if j.Username == "" {
		return errprocess.New(errprocess.KindPoisonMessage, "job message missing username")
	}
	return nil
}
