package app

import (
	"context"
	"errors"

	"video_audio_service/internal/auth/domain"
	"video_audio_service/internal/auth/repository"
	"video_audio_service/pkg/encrypt"
	errprocess "video_audio_service/pkg/err"
	"video_audio_service/pkg/logger"
	"video_audio_service/pkg/token"
)

// AuthUseCase 這裡封裝了對外提供的應用服務
type AuthUseCase interface {
	Register(ctx context.Context, name, username, password string) (*domain.User, error)
	Issue(ctx context.Context, username, password string) (string, error)
	Validate(authHeader string) (string, error)
}

type authUseCase struct {
	userRepo repository.UserRepository
}

// NewAuthUseCase 建立一個新的 AuthUseCase
func NewAuthUseCase(userRepo repository.UserRepository) AuthUseCase {
	return &authUseCase{userRepo: userRepo}
}

// Register 建立新使用者，username 重複時回報 Conflict
func (a *authUseCase) Register(ctx context.Context, name, username, password string) (*domain.User, error) {
	if _, err := a.userRepo.FindByUsername(ctx, username); err == nil {
		return nil, errprocess.New(errprocess.KindConflict, "username already registered")
	}

	pw, err := encrypt.HashPassword(password)
	if err != nil {
		return nil, errprocess.Wrap(err, errprocess.KindInternal, "failed to hash password")
	}

	user := domain.User{
		Name:     name,
		Username: username,
		Password: pw,
	}

	if err := a.userRepo.CreateUser(ctx, &user); err != nil {
		// 先查再插有競態：輸掉的那邊由 unique constraint 回報
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return nil, errprocess.New(errprocess.KindConflict, "username already registered")
		}
		return nil, errprocess.Wrap(err, errprocess.KindInternal, "failed to create user")
	}

	logger.Log.Infof("user registered :", user.Username)
	return &user, nil
}

// Issue 以帳密換取 token，查無使用者或密碼不符都回報 Unauthorized
func (a *authUseCase) Issue(ctx context.Context, username, password string) (string, error) {
	user, err := a.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", errprocess.New(errprocess.KindUnauthorized, "invalid credentials")
		}
		return "", errprocess.Wrap(err, errprocess.KindInternal, "failed to look up user")
	}

	if err := user.IsPasswordMatch(password); err != nil {
		return "", errprocess.New(errprocess.KindUnauthorized, "invalid credentials")
	}

	signed, err := token.GenerateJWT(user.Username)
	if err != nil {
		return "", errprocess.Wrap(err, errprocess.KindInternal, "failed to sign token")
	}

	return signed, nil
}

// Validate 純函數驗證 bearer token，不碰任何狀態
func (a *authUseCase) Validate(authHeader string) (string, error) {
	username, err := token.ValidateBearer(authHeader)
	if err != nil {
		return "", &errprocess.Error{Kind: errprocess.KindUnauthorized, Msg: err.Error()}
	}
	return username, nil
}
