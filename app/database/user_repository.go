package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/lysyi3m/rss-picks/app/errs"
)

// userRepository handles database operations for user accounts
type userRepository struct {
	db *DB
}

func NewUserRepository(db *DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) CreateUser(ctx context.Context, username, passwordHash string) (string, error) {
	id := uuid.NewString()

	ib := r.db.Flavor.NewInsertBuilder()
	ib.InsertInto("users").
		Cols("id", "username", "password_hash").
		Values(id, username, passwordHash)
	query, args := ib.Build()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return "", errs.ErrDuplicateIdentity
		}
		return "", errs.Storage("create user", err)
	}

	return id, nil
}

func (r *userRepository) FindUserByUsername(ctx context.Context, username string, match UsernameMatch) (*User, error) {
	sb := r.db.Flavor.NewSelectBuilder()
	sb.Select("id", "username", "password_hash").From("users")

	switch match {
	case UsernamePattern:
		sb.Where(sb.Like("username", username)).OrderBy("created_at", "id").Asc()
	case UsernameExact, "":
		sb.Where(sb.Equal("username", username))
	default:
		return nil, fmt.Errorf("unknown username match policy: %q", string(match))
	}
	sb.Limit(1)

	query, args := sb.Build()

	var user User
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&user.ID, &user.Username, &user.PasswordHash)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Storage("find user", err)
	}

	return &user, nil
}

func (r *userRepository) UpdatePasswordHash(ctx context.Context, userID, passwordHash string) error {
	ub := r.db.Flavor.NewUpdateBuilder()
	ub.Update("users").
		Set(ub.Assign("password_hash", passwordHash), "updated_at = CURRENT_TIMESTAMP").
		Where(ub.Equal("id", userID))
	query, args := ub.Build()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return errs.Storage("update password", err)
	}

	return nil
}

func (r *userRepository) DeleteUser(ctx context.Context, userID string) error {
	db := r.db.Flavor.NewDeleteBuilder()
	db.DeleteFrom("users").Where(db.Equal("id", userID))
	query, args := db.Build()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return errs.Storage("delete user", err)
	}

	return nil
}

// GetUserCount returns the total number of accounts
func (r *userRepository) GetUserCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count)
	if err != nil {
		return 0, errs.Storage("count users", err)
	}
	return count, nil
}
