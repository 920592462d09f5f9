package domain

import (
	"video_audio_service/pkg/encrypt"
)

// User 用來表示使用者，註冊後不可變
type User struct {
	ID       int64
	Name     string
	Username string
	Password string // bcrypt hash，永不回傳給呼叫端
}

// IsPasswordMatch 密碼驗證
func (u *User) IsPasswordMatch(inputPwd string) error {
	return encrypt.CheckPassword(u.Password, inputPwd)
}
