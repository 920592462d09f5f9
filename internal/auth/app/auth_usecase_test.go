package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"video_audio_service/internal/auth/domain"
	"video_audio_service/internal/auth/repository"
	"video_audio_service/pkg/encrypt"
	errprocess "video_audio_service/pkg/err"
	"video_audio_service/pkg/logger"
)

// MockUserRepo Mock UserRepository
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) CreateUser(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepo) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestAuthUseCase_Register(t *testing.T) {
	ctx := context.Background()
	logger.SetNewNop()

	t.Run("成功註冊", func(t *testing.T) {
		mockRepo := new(MockUserRepo)
		mockRepo.On("FindByUsername", ctx, "alice@example.com").Return(nil, repository.ErrUserNotFound).Once()
		mockRepo.On("CreateUser", ctx, mock.Anything).Return(nil).Once()

		uc := NewAuthUseCase(mockRepo)
		user, err := uc.Register(ctx, "Alice", "alice@example.com", "pw123")

		assert.NoError(t, err)
		assert.Equal(t, "alice@example.com", user.Username)
		assert.Equal(t, "Alice", user.Name)
		// 存的是 hash，不是明文
		assert.NotEqual(t, "pw123", user.Password)
		assert.NoError(t, encrypt.CheckPassword(user.Password, "pw123"))
		mockRepo.AssertExpectations(t)
	})

	t.Run("username 已存在", func(t *testing.T) {
		mockRepo := new(MockUserRepo)
		existing := &domain.User{ID: 1, Name: "Alice", Username: "alice@example.com"}
		mockRepo.On("FindByUsername", ctx, "alice@example.com").Return(existing, nil).Once()

		uc := NewAuthUseCase(mockRepo)
		user, err := uc.Register(ctx, "Alice", "alice@example.com", "pw123")

		assert.Nil(t, user)
		assert.Equal(t, errprocess.KindConflict, errprocess.KindOf(err))
		mockRepo.AssertExpectations(t)
	})

	t.Run("同名併發註冊，insert 撞 unique 也是 Conflict", func(t *testing.T) {
		// 兩條同名註冊同時通過 FindByUsername，輸家在 insert 才失敗
		mockRepo := new(MockUserRepo)
		mockRepo.On("FindByUsername", ctx, "alice@example.com").Return(nil, repository.ErrUserNotFound).Once()
		mockRepo.On("CreateUser", ctx, mock.Anything).Return(repository.ErrDuplicateUsername).Once()

		uc := NewAuthUseCase(mockRepo)
		user, err := uc.Register(ctx, "Alice", "alice@example.com", "pw123")

		assert.Nil(t, user)
		assert.Equal(t, errprocess.KindConflict, errprocess.KindOf(err))
		mockRepo.AssertExpectations(t)
	})
}

func TestAuthUseCase_Issue(t *testing.T) {
	ctx := context.Background()
	logger.SetNewNop()

	hash, err := encrypt.HashPassword("pw123")
	assert.NoError(t, err)
	stored := &domain.User{ID: 1, Name: "Alice", Username: "alice@example.com", Password: hash}

	t.Run("帳密正確簽出可驗證的 token", func(t *testing.T) {
		mockRepo := new(MockUserRepo)
		mockRepo.On("FindByUsername", ctx, "alice@example.com").Return(stored, nil).Once()

		uc := NewAuthUseCase(mockRepo)
		signed, err := uc.Issue(ctx, "alice@example.com", "pw123")

		assert.NoError(t, err)
		username, err := uc.Validate("Bearer " + signed)
		assert.NoError(t, err)
		assert.Equal(t, "alice@example.com", username)
		mockRepo.AssertExpectations(t)
	})

	t.Run("查無使用者", func(t *testing.T) {
		mockRepo := new(MockUserRepo)
		mockRepo.On("FindByUsername", ctx, "nobody").Return(nil, repository.ErrUserNotFound).Once()

		uc := NewAuthUseCase(mockRepo)
		signed, err := uc.Issue(ctx, "nobody", "pw123")

		assert.Empty(t, signed)
		assert.Equal(t, errprocess.KindUnauthorized, errprocess.KindOf(err))
	})

	t.Run("密碼不符", func(t *testing.T) {
		mockRepo := new(MockUserRepo)
		mockRepo.On("FindByUsername", ctx, "alice@example.com").Return(stored, nil).Once()

		uc := NewAuthUseCase(mockRepo)
		signed, err := uc.Issue(ctx, "alice@example.com", "wrong")

		assert.Empty(t, signed)
		assert.Equal(t, errprocess.KindUnauthorized, errprocess.KindOf(err))
	})
}

func TestAuthUseCase_Validate(t *testing.T) {
	logger.SetNewNop()
	uc := NewAuthUseCase(new(MockUserRepo))

	t.Run("缺 token", func(t *testing.T) {
		username, err := uc.Validate("")
		assert.Empty(t, username)
		assert.Equal(t, errprocess.KindUnauthorized, errprocess.KindOf(err))
	})

	t.Run("非法 token", func(t *testing.T) {
		username, err := uc.Validate("Bearer not.a.jwt")
		assert.Empty(t, username)
		assert.Equal(t, errprocess.KindUnauthorized, errprocess.KindOf(err))
	})
}
