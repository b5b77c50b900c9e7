package database

import (
	"fmt"
	"time"
)

type User struct {
	ID           string // UUID
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Preference is one saved author or category name.
type Preference struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type PreferenceKind string

const (
	PreferenceAuthor   PreferenceKind = "author"
	PreferenceCategory PreferenceKind = "category"
)

func (k PreferenceKind) table() (string, error) {
	switch k {
	case PreferenceAuthor:
		return "saved_authors", nil
	case PreferenceCategory:
		return "saved_categories", nil
	default:
		return "", fmt.Errorf("unknown preference kind: %q", string(k))
	}
}

// UsernameMatch selects how a login name is looked up.
type UsernameMatch string

const (
	// UsernameExact compares names byte for byte.
	UsernameExact UsernameMatch = "exact"
	// UsernamePattern passes the name to LIKE, so % and _ act as wildcards
	// and the first matching row wins.
	UsernamePattern UsernameMatch = "pattern"
)
