package match

import (
	"fmt"

	"github.com/samber/lo"
	"golang.org/x/text/cases"

	"github.com/lysyi3m/rss-picks/app/feed"
)

// Normalize returns the canonical case of s used on both sides of every
// comparison. A fresh Caser per call keeps it safe for concurrent use.
func Normalize(s string) string {
	return cases.Fold().String(s)
}

// Set is a case-folded membership set. Duplicate inputs collapse.
type Set map[string]struct{}

func NewSet(values []string) Set {
	return lo.SliceToMap(values, func(v string) (string, struct{}) {
		return Normalize(v), struct{}{}
	})
}

func (s Set) Has(value string) bool {
	_, ok := s[Normalize(value)]
	return ok
}

// Run filters items through p. The input slice is never modified and the
// result keeps the original relative order.
func Run(items []feed.Item, p Predicate) ([]feed.Item, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	switch p.Kind {
	case KindEquals:
		return MatchEquals(p.Value, items, p.Field), nil
	case KindAnyOf:
		return MatchAny(p.Values, items, p.Field), nil
	case KindIntersectsAny:
		return MatchIntersects(p.Values, items, p.Field), nil
	case KindCompoundOr:
		return MatchCompound(p.Values, p.OrValues, items, p.Field, p.OrField), nil
	default:
		return nil, fmt.Errorf("unknown predicate kind: %s", p.Kind)
	}
}

// MatchEquals keeps items whose scalar field equals value, ignoring case.
func MatchEquals(value string, items []feed.Item, field Field) []feed.Item {
	want := Normalize(value)
	return filter(items, func(item feed.Item) bool {
		got, ok := scalarValue(item, field)
		return ok && Normalize(got) == want
	})
}

// MatchAny keeps items whose scalar field is a member of values.
func MatchAny(values []string, items []feed.Item, field Field) []feed.Item {
	set := NewSet(values)
	return filter(items, func(item feed.Item) bool {
		return memberOf(set, item, field)
	})
}

// MatchIntersects keeps items whose sequence field shares at least one
// element with values.
func MatchIntersects(values []string, items []feed.Item, field Field) []feed.Item {
	set := NewSet(values)
	return filter(items, func(item feed.Item) bool {
		return intersects(set, item, field)
	})
}

// MatchCompound keeps items satisfying membership on field or intersection
// on orField. Membership is tested first and short-circuits.
func MatchCompound(values, orValues []string, items []feed.Item, field, orField Field) []feed.Item {
	set := NewSet(values)
	orSet := NewSet(orValues)
	return filter(items, func(item feed.Item) bool {
		return memberOf(set, item, field) || intersects(orSet, item, orField)
	})
}

func memberOf(set Set, item feed.Item, field Field) bool {
	if len(set) == 0 {
		return false
	}
	value, ok := scalarValue(item, field)
	return ok && set.Has(value)
}

func intersects(set Set, item feed.Item, field Field) bool {
	if len(set) == 0 {
		return false
	}
	return lo.ContainsBy(sequenceValue(item, field), set.Has)
}

func filter(items []feed.Item, keep func(feed.Item) bool) []feed.Item {
	return lo.Filter(items, func(item feed.Item, _ int) bool {
		return keep(item)
	})
}

func scalarValue(item feed.Item, field Field) (string, bool) {
	var value string
	switch field {
	case FieldTitle:
		value = item.Title
	case FieldAuthor:
		value = item.Author
	case FieldContent:
		value = item.Content
	case FieldLink:
		value = item.Link
	}
	return value, value != ""
}

func sequenceValue(item feed.Item, field Field) []string {
	switch field {
	case FieldCategories:
		return item.Categories
	default:
		return nil
	}
}
