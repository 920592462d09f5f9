package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"video_audio_service/internal/auth/domain"
)

// ErrUserNotFound no user matches the given username
var ErrUserNotFound = errors.New("no user found with given username")

// ErrDuplicateUsername username unique constraint violated
var ErrDuplicateUsername = errors.New("username already exists")

// unique_violation, https://www.postgresql.org/docs/current/errcodes-appendix.html
const pgUniqueViolation = "23505"

// UserRepository definition get User info
type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
}

type userRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository create a UserRepository
func NewUserRepository(db *pgxpool.Pool) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) CreateUser(ctx context.Context, user *domain.User) error {
	row := r.db.QueryRow(ctx,
		"INSERT INTO users(name, username, password) VALUES ($1, $2, $3) RETURNING id",
		user.Name, user.Username, user.Password)
	if err := row.Scan(&user.ID); err != nil {
		// 同名註冊的競態由 unique constraint 收尾
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrDuplicateUsername
		}
		return err
	}
	return nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := r.db.QueryRow(ctx,
		"SELECT id, name, username, password FROM users WHERE username = $1", username)

	var user domain.User
	err := row.Scan(&user.ID, &user.Name, &user.Username, &user.Password)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return &user, nil
}
