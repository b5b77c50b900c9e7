package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/lysyi3m/rss-picks/app/auth"
	"github.com/lysyi3m/rss-picks/app/database"
	"github.com/lysyi3m/rss-picks/app/database/mocks"
	"github.com/lysyi3m/rss-picks/app/errs"
	"github.com/lysyi3m/rss-picks/app/feed"
	"github.com/lysyi3m/rss-picks/app/match"
)

type stubVerifier struct {
	identity auth.Identity
	err      error
	calls    int
}

func (v *stubVerifier) Verify(_ context.Context, _ auth.Credential) (auth.Identity, error) {
	v.calls++
	return v.identity, v.err
}

type stubFetcher struct {
	items []feed.Item
	err   error
	calls int
}

func (f *stubFetcher) Fetch(_ context.Context, _ string) (*feed.Metadata, []feed.Item, error) {
	f.calls++
	if f.err != nil {
		return nil, nil, f.err
	}
	return &feed.Metadata{Title: "Test"}, f.items, nil
}

func testItems() []feed.Item {
	return []feed.Item{
		{Title: "By Alice", Author: "Alice", Categories: []string{"Opinion"}},
		{Title: "News by Bob", Author: "Bob", Categories: []string{"News"}},
		{Title: "Arts by Eve", Author: "Eve", Categories: []string{"Arts"}},
	}
}

func itemTitles(items []feed.Item) []string {
	titles := make([]string, 0, len(items))
	for _, item := range items {
		titles = append(titles, item.Title)
	}
	return titles
}

func TestRun_PersonalFeed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	prefs := mocks.NewMockPreferenceRepository(ctrl)
	prefs.EXPECT().ListAuthors(gomock.Any(), "user-1").
		Return([]database.Preference{{ID: 1, Name: "alice"}}, nil)
	prefs.EXPECT().ListCategories(gomock.Any(), "user-1").
		Return([]database.Preference{{ID: 2, Name: "NEWS"}}, nil)

	verifier := &stubVerifier{identity: auth.Identity{UserID: "user-1"}}
	fetcher := &stubFetcher{items: testItems()}

	state, err := Run(context.Background(),
		State{Credential: auth.Credential{Username: "alice", Secret: "x"}, SourceName: "default"},
		Authenticate(verifier),
		LoadPreferences(prefs, PreferenceSelection{Authors: true, Categories: true}),
		FetchFeed(fetcher),
		Match(PersonalFeed),
	)
	require.NoError(t, err)

	assert.Equal(t, PhaseResponded, state.Phase)
	assert.Equal(t, []string{"By Alice", "News by Bob"}, itemTitles(state.Items))
	assert.Empty(t, state.Credential.Secret)
}

func TestRun_AuthFailureStopsBeforePreferences(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// No expectations: any preference call fails the test.
	prefs := mocks.NewMockPreferenceRepository(ctrl)
	fetcher := &stubFetcher{items: testItems()}

	state, err := Run(context.Background(),
		State{Credential: auth.Credential{Username: "alice", Secret: "bad"}},
		Authenticate(&stubVerifier{err: errs.ErrInvalidSecret}),
		LoadPreferences(prefs, PreferenceSelection{Authors: true}),
		FetchFeed(fetcher),
		Match(FavoriteAuthors),
	)

	assert.ErrorIs(t, err, errs.ErrInvalidSecret)
	assert.Equal(t, PhaseResponded, state.Phase)
	assert.Zero(t, fetcher.calls)
}

func TestLoadPreferences_RequiresIdentity(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	prefs := mocks.NewMockPreferenceRepository(ctrl)

	_, err := Run(context.Background(), State{},
		LoadPreferences(prefs, PreferenceSelection{Authors: true, Categories: true}),
	)
	assert.ErrorIs(t, err, ErrOutOfOrder)
}

func TestRun_StorageFailureReturnsNoPartialResult(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	storageErr := errs.Storage("list saved_categories", errors.New("disk I/O error"))

	prefs := mocks.NewMockPreferenceRepository(ctrl)
	prefs.EXPECT().ListAuthors(gomock.Any(), "user-1").
		Return([]database.Preference{{ID: 1, Name: "alice"}}, nil).AnyTimes()
	prefs.EXPECT().ListCategories(gomock.Any(), "user-1").Return(nil, storageErr)

	fetcher := &stubFetcher{items: testItems()}

	state, err := Run(context.Background(),
		State{Credential: auth.Credential{Username: "alice", Secret: "x"}},
		Authenticate(&stubVerifier{identity: auth.Identity{UserID: "user-1"}}),
		LoadPreferences(prefs, PreferenceSelection{Authors: true, Categories: true}),
		FetchFeed(fetcher),
		Match(PersonalFeed),
	)

	var se *errs.StorageError
	require.ErrorAs(t, err, &se)
	assert.Nil(t, state.Identity)
	assert.Nil(t, state.Authors)
	assert.Nil(t, state.Items)
	assert.Zero(t, fetcher.calls)
}

func TestRun_UpstreamFailure(t *testing.T) {
	upstream := errs.Upstream("default", errors.New("connection refused"))

	_, err := Run(context.Background(), State{SourceName: "default"},
		FetchFeed(&stubFetcher{err: upstream}),
		Match(func(State) match.Predicate { return match.AnyOf([]string{"alice"}, match.FieldAuthor) }),
	)

	var ue *errs.UpstreamFeedError
	assert.ErrorAs(t, err, &ue)
}

func TestRun_BrowseWithoutAuthentication(t *testing.T) {
	state, err := Run(context.Background(), State{SourceName: "default"},
		FetchFeed(&stubFetcher{items: testItems()}),
		Match(func(State) match.Predicate {
			return match.IntersectsAny([]string{"arts"}, match.FieldCategories)
		}),
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"Arts by Eve"}, itemTitles(state.Items))
	assert.Nil(t, state.Identity)
}

func TestMatch_RequiresFeed(t *testing.T) {
	_, err := Run(context.Background(), State{}, Match(FavoriteCategories))
	assert.ErrorIs(t, err, ErrOutOfOrder)
}

func TestAuthenticate_NotReentered(t *testing.T) {
	verifier := &stubVerifier{identity: auth.Identity{UserID: "user-1"}}

	_, err := Run(context.Background(), State{},
		Authenticate(verifier),
		Authenticate(verifier),
	)
	assert.ErrorIs(t, err, ErrOutOfOrder)
	assert.Equal(t, 1, verifier.calls)
}

func TestFavoritePredicates(t *testing.T) {
	s := State{
		Authors:    []database.Preference{{Name: "Eve"}},
		Categories: []database.Preference{{Name: "opinion"}},
	}

	authors, err := match.Run(testItems(), FavoriteAuthors(s))
	require.NoError(t, err)
	assert.Equal(t, []string{"Arts by Eve"}, itemTitles(authors))

	categories, err := match.Run(testItems(), FavoriteCategories(s))
	require.NoError(t, err)
	assert.Equal(t, []string{"By Alice"}, itemTitles(categories))
}
