package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/lysyi3m/rss-picks/app/auth"
	"github.com/lysyi3m/rss-picks/app/database"
	"github.com/lysyi3m/rss-picks/app/feed"
	"github.com/lysyi3m/rss-picks/app/match"
	"github.com/lysyi3m/rss-picks/app/metrics"
)

type CredentialVerifier interface {
	Verify(ctx context.Context, cred auth.Credential) (auth.Identity, error)
}

type FeedFetcher interface {
	Fetch(ctx context.Context, sourceName string) (*feed.Metadata, []feed.Item, error)
}

// Stage advances a request by one step.
type Stage func(ctx context.Context, s State) (State, error)

var ErrOutOfOrder = errors.New("pipeline stage out of order")

// Run applies stages in order. The first failure ends the request and
// nothing gathered so far is returned with it.
func Run(ctx context.Context, initial State, stages ...Stage) (State, error) {
	state := initial
	for _, stage := range stages {
		next, err := stage(ctx, state)
		if err != nil {
			return State{Phase: PhaseResponded}, err
		}
		state = next
	}
	state.Phase = PhaseResponded
	return state, nil
}

func Authenticate(verifier CredentialVerifier) Stage {
	return func(ctx context.Context, s State) (State, error) {
		if s.Phase != PhaseUnauthenticated {
			return s, fmt.Errorf("%w: authenticate in phase %s", ErrOutOfOrder, s.Phase)
		}

		identity, err := verifier.Verify(ctx, s.Credential)
		if err != nil {
			return s, err
		}

		s.Credential = auth.Credential{}
		s.Identity = &identity
		s.Phase = PhaseAuthenticated
		return s, nil
	}
}

type PreferenceSelection struct {
	Authors    bool
	Categories bool
}

// LoadPreferences reads the selected preference sets of the authenticated
// user. Both sets load concurrently.
func LoadPreferences(prefs database.PreferenceRepository, sel PreferenceSelection) Stage {
	return func(ctx context.Context, s State) (State, error) {
		if s.Identity == nil || s.Phase != PhaseAuthenticated {
			return s, fmt.Errorf("%w: load preferences in phase %s", ErrOutOfOrder, s.Phase)
		}
		userID := s.Identity.UserID

		g, gctx := errgroup.WithContext(ctx)
		if sel.Authors {
			g.Go(func() error {
				authors, err := prefs.ListAuthors(gctx, userID)
				if err != nil {
					return fmt.Errorf("failed to load authors: %w", err)
				}
				s.Authors = authors
				return nil
			})
		}
		if sel.Categories {
			g.Go(func() error {
				categories, err := prefs.ListCategories(gctx, userID)
				if err != nil {
					return fmt.Errorf("failed to load categories: %w", err)
				}
				s.Categories = categories
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return s, err
		}

		s.Phase = PhasePreferencesLoaded
		return s, nil
	}
}

// FetchFeed fetches and normalizes the items of s.SourceName.
func FetchFeed(fetcher FeedFetcher) Stage {
	return func(ctx context.Context, s State) (State, error) {
		if s.Phase == PhaseAuthenticated || s.Phase >= PhaseFeedReady {
			return s, fmt.Errorf("%w: fetch feed in phase %s", ErrOutOfOrder, s.Phase)
		}

		metadata, items, err := fetcher.Fetch(ctx, s.SourceName)
		if err != nil {
			return s, err
		}

		s.Metadata = metadata
		s.Items = items
		s.Phase = PhaseFeedReady
		return s, nil
	}
}

// Match filters s.Items with the predicate built from the state so far.
func Match(build func(State) match.Predicate) Stage {
	return func(ctx context.Context, s State) (State, error) {
		if s.Phase != PhaseFeedReady {
			return s, fmt.Errorf("%w: match in phase %s", ErrOutOfOrder, s.Phase)
		}

		predicate := build(s)
		matched, err := match.Run(s.Items, predicate)
		if err != nil {
			return s, fmt.Errorf("failed to match items: %w", err)
		}

		metrics.MatchedItems.WithLabelValues(predicate.Kind.String()).Observe(float64(len(matched)))

		s.Items = matched
		return s, nil
	}
}

func names(prefs []database.Preference) []string {
	return lo.Map(prefs, func(p database.Preference, _ int) string {
		return p.Name
	})
}

// PersonalFeed keeps items by a favorite author or in a favorite category.
func PersonalFeed(s State) match.Predicate {
	return match.CompoundOr(s.AuthorNames(), match.FieldAuthor, s.CategoryNames(), match.FieldCategories)
}

func FavoriteAuthors(s State) match.Predicate {
	return match.AnyOf(s.AuthorNames(), match.FieldAuthor)
}

func FavoriteCategories(s State) match.Predicate {
	return match.IntersectsAny(s.CategoryNames(), match.FieldCategories)
}
