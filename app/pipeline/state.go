package pipeline

import (
	"fmt"

	"github.com/lysyi3m/rss-picks/app/auth"
	"github.com/lysyi3m/rss-picks/app/database"
	"github.com/lysyi3m/rss-picks/app/feed"
)

type Phase int

const (
	PhaseUnauthenticated Phase = iota
	PhaseAuthenticated
	PhasePreferencesLoaded
	PhaseFeedReady
	PhaseResponded
)

func (p Phase) String() string {
	switch p {
	case PhaseUnauthenticated:
		return "unauthenticated"
	case PhaseAuthenticated:
		return "authenticated"
	case PhasePreferencesLoaded:
		return "preferences_loaded"
	case PhaseFeedReady:
		return "feed_ready"
	case PhaseResponded:
		return "responded"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// State is the value threaded through the stages of one request. Stages
// return an updated copy; nothing else carries data between them.
type State struct {
	Phase Phase

	Credential auth.Credential
	Identity   *auth.Identity

	Authors    []database.Preference
	Categories []database.Preference

	SourceName string
	Metadata   *feed.Metadata
	Items      []feed.Item
}

func (s State) AuthorNames() []string {
	return names(s.Authors)
}

func (s State) CategoryNames() []string {
	return names(s.Categories)
}
