package match

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindEquals Kind = iota
	KindAnyOf
	KindIntersectsAny
	KindCompoundOr
)

func (k Kind) String() string {
	switch k {
	case KindEquals:
		return "equals"
	case KindAnyOf:
		return "any_of"
	case KindIntersectsAny:
		return "intersects_any"
	case KindCompoundOr:
		return "compound_or"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Field names an Item attribute a predicate can look at.
type Field string

const (
	FieldTitle      Field = "title"
	FieldAuthor     Field = "author"
	FieldContent    Field = "content"
	FieldLink       Field = "link"
	FieldCategories Field = "categories"
)

type shape int

const (
	shapeUnknown shape = iota
	shapeScalar
	shapeSequence
)

func (f Field) shape() shape {
	switch f {
	case FieldTitle, FieldAuthor, FieldContent, FieldLink:
		return shapeScalar
	case FieldCategories:
		return shapeSequence
	default:
		return shapeUnknown
	}
}

var ErrFieldShape = errors.New("field has the wrong shape for predicate")

// Predicate is the tagged variant Equals | AnyOf | IntersectsAny | CompoundOr.
// Build it with the constructors below rather than by hand.
type Predicate struct {
	Kind   Kind
	Value  string   // Equals
	Values []string // AnyOf, IntersectsAny, and the membership half of CompoundOr
	Field  Field

	// Intersection half of CompoundOr.
	OrValues []string
	OrField  Field
}

func Equals(value string, field Field) Predicate {
	return Predicate{Kind: KindEquals, Value: value, Field: field}
}

func AnyOf(values []string, field Field) Predicate {
	return Predicate{Kind: KindAnyOf, Values: values, Field: field}
}

func IntersectsAny(values []string, field Field) Predicate {
	return Predicate{Kind: KindIntersectsAny, Values: values, Field: field}
}

// CompoundOr keeps an item when AnyOf(values, field) or
// IntersectsAny(orValues, orField) holds.
func CompoundOr(values []string, field Field, orValues []string, orField Field) Predicate {
	return Predicate{
		Kind:     KindCompoundOr,
		Values:   values,
		Field:    field,
		OrValues: orValues,
		OrField:  orField,
	}
}

func (p Predicate) Validate() error {
	switch p.Kind {
	case KindEquals, KindAnyOf:
		return requireShape(p.Field, shapeScalar)
	case KindIntersectsAny:
		return requireShape(p.Field, shapeSequence)
	case KindCompoundOr:
		if err := requireShape(p.Field, shapeScalar); err != nil {
			return err
		}
		return requireShape(p.OrField, shapeSequence)
	default:
		return fmt.Errorf("unknown predicate kind: %s", p.Kind)
	}
}

func requireShape(field Field, want shape) error {
	got := field.shape()
	if got == shapeUnknown {
		return fmt.Errorf("unknown field: %q", field)
	}
	if got != want {
		return fmt.Errorf("%w: %q", ErrFieldShape, field)
	}
	return nil
}
