package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/lysyi3m/rss-picks/app/database"
	"github.com/lysyi3m/rss-picks/app/errs"
	"github.com/lysyi3m/rss-picks/app/metrics"
)

// Credential is a claimed username and cleartext secret. It is never stored
// or logged.
type Credential struct {
	Username string
	Secret   string
}

// Identity is the request-scoped result of a successful verification.
type Identity struct {
	UserID string
}

type Verifier struct {
	users  database.UserRepository
	hasher Hasher
	match  database.UsernameMatch

	// Compared against when the username is unknown so both failure paths
	// pay for one hash comparison.
	dummyHash string
}

func NewVerifier(users database.UserRepository, hasher Hasher, match database.UsernameMatch) (*Verifier, error) {
	dummyHash, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("failed to prepare verifier: %w", err)
	}

	return &Verifier{
		users:     users,
		hasher:    hasher,
		match:     match,
		dummyHash: dummyHash,
	}, nil
}

// Verify turns a credential into an Identity. It reads the user store and
// nothing else.
func (v *Verifier) Verify(ctx context.Context, cred Credential) (Identity, error) {
	if cred.Username == "" || cred.Secret == "" {
		metrics.AuthFailuresTotal.WithLabelValues("missing_credentials").Inc()
		return Identity{}, errs.ErrMissingCredentials
	}

	user, err := v.users.FindUserByUsername(ctx, cred.Username, v.match)
	if err != nil {
		return Identity{}, fmt.Errorf("failed to look up user: %w", err)
	}

	if user == nil {
		_ = v.hasher.Compare(v.dummyHash, cred.Secret)
		metrics.AuthFailuresTotal.WithLabelValues("user_not_found").Inc()
		return Identity{}, errs.ErrUserNotFound
	}

	if err := v.hasher.Compare(user.PasswordHash, cred.Secret); err != nil {
		if !errors.Is(err, ErrMismatch) {
			slog.Warn("Stored password hash is unusable", "user_id", user.ID, "error", err)
		}
		metrics.AuthFailuresTotal.WithLabelValues("invalid_secret").Inc()
		return Identity{}, errs.ErrInvalidSecret
	}

	return Identity{UserID: user.ID}, nil
}
