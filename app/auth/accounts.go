package auth

import (
	"context"
	"fmt"

	"github.com/lysyi3m/rss-picks/app/database"
	"github.com/lysyi3m/rss-picks/app/errs"
)

// Accounts handles registration and secret changes.
type Accounts struct {
	users  database.UserRepository
	hasher Hasher
}

func NewAccounts(users database.UserRepository, hasher Hasher) *Accounts {
	return &Accounts{users: users, hasher: hasher}
}

// Register creates a user and returns its id. A taken username yields
// errs.ErrDuplicateIdentity.
func (a *Accounts) Register(ctx context.Context, cred Credential) (Identity, error) {
	if cred.Username == "" || cred.Secret == "" {
		return Identity{}, errs.Malformed("username and password are required")
	}

	hash, err := a.hasher.Hash(cred.Secret)
	if err != nil {
		return Identity{}, err
	}

	userID, err := a.users.CreateUser(ctx, cred.Username, hash)
	if err != nil {
		return Identity{}, fmt.Errorf("failed to register user: %w", err)
	}

	return Identity{UserID: userID}, nil
}

// ChangeSecret stores a new hash for an already verified identity.
func (a *Accounts) ChangeSecret(ctx context.Context, id Identity, newSecret string) error {
	if newSecret == "" {
		return errs.Malformed("new password is required")
	}

	hash, err := a.hasher.Hash(newSecret)
	if err != nil {
		return err
	}

	if err := a.users.UpdatePasswordHash(ctx, id.UserID, hash); err != nil {
		return fmt.Errorf("failed to change password: %w", err)
	}

	return nil
}

func (a *Accounts) Delete(ctx context.Context, id Identity) error {
	if err := a.users.DeleteUser(ctx, id.UserID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
