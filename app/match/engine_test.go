package match

import (
	"errors"
	"testing"

	"github.com/lysyi3m/rss-picks/app/feed"
)

func sampleItems() []feed.Item {
	return []feed.Item{
		{Title: "Alice on sports", Author: "Alice", Categories: []string{"Sports"}},
		{Title: "Town news", Author: "Bob", Categories: []string{"News", "Local"}},
		{Title: "Anonymous weather", Categories: []string{"Weather"}},
		{Title: "Uncategorized by Carol", Author: "CAROL"},
		{Title: "Empty categories", Author: "Dave", Categories: []string{}},
	}
}

func titles(items []feed.Item) []string {
	result := make([]string, 0, len(items))
	for _, item := range items {
		result = append(result, item.Title)
	}
	return result
}

func assertTitles(t *testing.T, got []feed.Item, want ...string) {
	t.Helper()
	gotTitles := titles(got)
	if len(gotTitles) != len(want) {
		t.Fatalf("Expected titles %v, got %v", want, gotTitles)
	}
	for i := range want {
		if gotTitles[i] != want[i] {
			t.Errorf("Expected title %d to be '%s', got '%s'", i, want[i], gotTitles[i])
		}
	}
}

func TestMatchEquals_CaseInsensitive(t *testing.T) {
	result := MatchEquals("carol", sampleItems(), FieldAuthor)
	assertTitles(t, result, "Uncategorized by Carol")
}

func TestMatchEquals_AbsentFieldExcluded(t *testing.T) {
	items := []feed.Item{{Title: "No author"}}

	result := MatchEquals("", items, FieldAuthor)
	if len(result) != 0 {
		t.Errorf("Expected item with absent author to be excluded, got %v", titles(result))
	}
}

func TestMatchAny_Membership(t *testing.T) {
	result := MatchAny([]string{"alice", "BOB"}, sampleItems(), FieldAuthor)
	assertTitles(t, result, "Alice on sports", "Town news")
}

func TestMatchAny_UppercaseValueMatchesLowercaseQuery(t *testing.T) {
	items := []feed.Item{{Title: "Shouting", Author: "SPORTS"}}

	result := MatchAny([]string{"sports"}, items, FieldAuthor)
	assertTitles(t, result, "Shouting")
}

func TestMatchAny_EmptySetMatchesNothing(t *testing.T) {
	if result := MatchAny(nil, sampleItems(), FieldAuthor); len(result) != 0 {
		t.Errorf("Expected no items for nil set, got %v", titles(result))
	}
	if result := MatchAny([]string{}, sampleItems(), FieldAuthor); len(result) != 0 {
		t.Errorf("Expected no items for empty set, got %v", titles(result))
	}
}

func TestMatchIntersects_NonEmptyIntersection(t *testing.T) {
	items := []feed.Item{{Title: "Mixed", Categories: []string{"News", "Sports"}}}

	assertTitles(t, MatchIntersects([]string{"sports"}, items, FieldCategories), "Mixed")

	if result := MatchIntersects([]string{"weather"}, items, FieldCategories); len(result) != 0 {
		t.Errorf("Expected no match for 'weather', got %v", titles(result))
	}
}

func TestMatchIntersects_AbsentOrEmptySequenceExcluded(t *testing.T) {
	result := MatchIntersects([]string{"news", "sports", "weather", ""}, sampleItems(), FieldCategories)
	assertTitles(t, result, "Alice on sports", "Town news", "Anonymous weather")
}

func TestMatchIntersects_EmptySetMatchesNothing(t *testing.T) {
	if result := MatchIntersects([]string{}, sampleItems(), FieldCategories); len(result) != 0 {
		t.Errorf("Expected no items for empty set, got %v", titles(result))
	}
}

func TestMatchCompound_EitherBranchKeepsItem(t *testing.T) {
	items := []feed.Item{
		{Title: "By Alice", Author: "Alice", Categories: []string{"Opinion"}},
		{Title: "News by Bob", Author: "Bob", Categories: []string{"News"}},
		{Title: "Neither", Author: "Eve", Categories: []string{"Arts"}},
		{Title: "No fields"},
	}

	result := MatchCompound([]string{"alice"}, []string{"news"}, items, FieldAuthor, FieldCategories)
	assertTitles(t, result, "By Alice", "News by Bob")
}

func TestMatchCompound_EmptyHalvesReduceToOtherBranch(t *testing.T) {
	items := sampleItems()

	onlyAuthors := MatchCompound([]string{"dave"}, nil, items, FieldAuthor, FieldCategories)
	assertTitles(t, onlyAuthors, "Empty categories")

	onlyCategories := MatchCompound(nil, []string{"local"}, items, FieldAuthor, FieldCategories)
	assertTitles(t, onlyCategories, "Town news")

	if result := MatchCompound(nil, nil, items, FieldAuthor, FieldCategories); len(result) != 0 {
		t.Errorf("Expected no items when both sets are empty, got %v", titles(result))
	}
}

func TestMatchCompound_OrderIndependent(t *testing.T) {
	items := sampleItems()
	authors := []string{"bob", "carol"}
	categories := []string{"sports", "weather"}

	compound := MatchCompound(authors, categories, items, FieldAuthor, FieldCategories)

	// Union of both single predicates, in original order.
	byAuthor := MatchAny(authors, items, FieldAuthor)
	byCategory := MatchIntersects(categories, items, FieldCategories)
	union := map[string]bool{}
	for _, item := range append(byAuthor, byCategory...) {
		union[item.Title] = true
	}

	var expected []string
	for _, item := range items {
		if union[item.Title] {
			expected = append(expected, item.Title)
		}
	}

	assertTitles(t, compound, expected...)
}

func TestRun_DoesNotMutateInput(t *testing.T) {
	items := sampleItems()
	before := titles(items)

	result, err := Run(items, AnyOf([]string{"carol"}, FieldAuthor))
	if err != nil {
		t.Fatal(err)
	}
	if len(result) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(result))
	}

	result[0].Title = "changed"
	after := titles(items)
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("Input item %d changed from '%s' to '%s'", i, before[i], after[i])
		}
	}
}

func TestRun_DispatchesEveryKind(t *testing.T) {
	items := sampleItems()

	tests := []struct {
		name      string
		predicate Predicate
		want      []string
	}{
		{"equals", Equals("ALICE", FieldAuthor), []string{"Alice on sports"}},
		{"any of", AnyOf([]string{"bob", "dave"}, FieldAuthor), []string{"Town news", "Empty categories"}},
		{"intersects", IntersectsAny([]string{"LOCAL"}, FieldCategories), []string{"Town news"}},
		{"compound", CompoundOr([]string{"carol"}, FieldAuthor, []string{"weather"}, FieldCategories),
			[]string{"Anonymous weather", "Uncategorized by Carol"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Run(items, tt.predicate)
			if err != nil {
				t.Fatal(err)
			}
			assertTitles(t, result, tt.want...)
		})
	}
}

func TestRun_RejectsWrongShape(t *testing.T) {
	invalid := []Predicate{
		Equals("Sports", FieldCategories),
		AnyOf([]string{"sports"}, FieldCategories),
		IntersectsAny([]string{"alice"}, FieldAuthor),
		CompoundOr([]string{"alice"}, FieldCategories, []string{"news"}, FieldAuthor),
	}

	for _, predicate := range invalid {
		_, err := Run(sampleItems(), predicate)
		if !errors.Is(err, ErrFieldShape) {
			t.Errorf("Expected ErrFieldShape for %s on %s, got %v", predicate.Kind, predicate.Field, err)
		}
	}

	if _, err := Run(sampleItems(), Equals("x", Field("publisher"))); err == nil {
		t.Error("Expected error for unknown field")
	}
}

func TestNewSet_CollapsesCaseDuplicates(t *testing.T) {
	set := NewSet([]string{"News", "news", "NEWS", "Sports"})

	if len(set) != 2 {
		t.Errorf("Expected 2 distinct values, got %d", len(set))
	}
	if !set.Has("nEwS") {
		t.Error("Expected set to contain 'nEwS'")
	}
}
