package app

import (
	"context"
	"fmt"
	"os/exec"
)

// Codec 將影片的音軌抽成 mp3，實作視為不透明的外部轉碼器
type Codec interface {
	ExtractAudio(ctx context.Context, videoPath, mp3Path string) error
}

// FFmpegCodec definition ffmpeg-backed codec
type FFmpegCodec struct{}

// ExtractAudio 以 ffmpeg 抽取 videoPath 的音軌，輸出到 mp3Path
func (FFmpegCodec) ExtractAudio(ctx context.Context, videoPath, mp3Path string) error {
	cmdArgs := []string{
		"-i", videoPath,
		"-vn",
		"-acodec", "libmp3lame",
		"-q:a", "2",
		"-y",
		mp3Path,
	}
	cmd := exec.CommandContext(ctx, "ffmpeg", cmdArgs...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("FFmpeg 抽取音軌錯誤: %v, output: %s", err, string(output))
	}
	return nil
}
