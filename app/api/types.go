package api

import (
	"context"

	"github.com/lysyi3m/rss-picks/app/auth"
	"github.com/lysyi3m/rss-picks/app/database"
	"github.com/lysyi3m/rss-picks/app/feed"
	"github.com/lysyi3m/rss-picks/app/pipeline"
)

type GeneratorInterface interface {
	Run(channel feed.Channel, items []feed.Item) (string, error)
}

var _ GeneratorInterface = (*feed.Generator)(nil)

type AccountManager interface {
	Register(ctx context.Context, cred auth.Credential) (auth.Identity, error)
	ChangeSecret(ctx context.Context, id auth.Identity, newSecret string) error
	Delete(ctx context.Context, id auth.Identity) error
}

var _ AccountManager = (*auth.Accounts)(nil)

// Envelope is the body of every non-RSS response.
type Envelope struct {
	Status   int     `json:"status"`
	Error    *string `json:"error"`
	Response any     `json:"response"`
}

// requestBody holds every field a JSON request may carry. Key matching is
// case-insensitive, so "Username" and "username" both bind.
type requestBody struct {
	Username          string   `json:"username"`
	Password          string   `json:"password"`
	NewPassword       string   `json:"new_password"`
	// Key sent by older clients; underscores do not fold in key matching.
	NewPasswordCompat string   `json:"NewPassword"`
	Name              string   `json:"name"`
	Authors           []string `json:"authors"`
	Categories        []string `json:"categories"`
}

type Deps struct {
	Verifier      pipeline.CredentialVerifier
	Accounts      AccountManager
	Users         database.UserRepository
	Preferences   database.PreferenceRepository
	Fetcher       pipeline.FeedFetcher
	Generator     GeneratorInterface
	Configs       *feed.ConfigCache
	Statuses      *feed.StatusBoard
	DefaultSource string
	Version       string
}

type Handler struct {
	verifier      pipeline.CredentialVerifier
	accounts      AccountManager
	users         database.UserRepository
	prefs         database.PreferenceRepository
	fetcher       pipeline.FeedFetcher
	generator     GeneratorInterface
	configCache   *feed.ConfigCache
	statuses      *feed.StatusBoard
	defaultSource string
	version       string
}
