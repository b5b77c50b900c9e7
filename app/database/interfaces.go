package database

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_repositories.go -package=mocks

import (
	"context"
)

type UserRepository interface {
	// CreateUser stores a new account and returns its id. A taken username
	// yields errs.ErrDuplicateIdentity.
	CreateUser(ctx context.Context, username, passwordHash string) (string, error)
	// FindUserByUsername returns nil, nil when no account matches.
	FindUserByUsername(ctx context.Context, username string, match UsernameMatch) (*User, error)
	UpdatePasswordHash(ctx context.Context, userID, passwordHash string) error
	// DeleteUser removes the account and, by cascade, its saved preferences.
	DeleteUser(ctx context.Context, userID string) error
	GetUserCount(ctx context.Context) (int, error)
}

type PreferenceRepository interface {
	ListAuthors(ctx context.Context, userID string) ([]Preference, error)
	ListCategories(ctx context.Context, userID string) ([]Preference, error)

	AddAuthor(ctx context.Context, userID, name string) (int64, error)
	AddCategory(ctx context.Context, userID, name string) (int64, error)

	// RemoveAuthor and RemoveCategory delete every row whose name matches
	// ignoring case and report how many went away.
	RemoveAuthor(ctx context.Context, userID, name string) (int64, error)
	RemoveCategory(ctx context.Context, userID, name string) (int64, error)

	// CompactDuplicates deletes rows that repeat an earlier (user, name)
	// pair exactly, across both kinds.
	CompactDuplicates(ctx context.Context) (int64, error)
}
