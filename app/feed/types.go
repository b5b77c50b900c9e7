package feed

import (
	"time"
)

// Feed processing types

type Metadata struct {
	Title           string
	Link            string
	Description     string
	ImageURL        string
	Language        string
	FeedPublishedAt *time.Time
}

// Item is the canonical article shape handed to the matching engine.
// Author == "" and an empty Categories both mean the field is absent.
type Item struct {
	GUID        string     `json:"-"`
	Title       string     `json:"title"`
	Link        string     `json:"link,omitempty"`
	Author      string     `json:"author,omitempty"`
	Categories  []string   `json:"categories,omitempty"`
	PublishedAt *time.Time `json:"pubDate,omitempty"`
	Content     string     `json:"content,omitempty"`
}

// Configuration types

type Config struct {
	Name     string         // Derived from filename (without .yml extension)
	URL      string         `yaml:"url"`
	Settings ConfigSettings `yaml:"settings"`
}

type ConfigSettings struct {
	Enabled   bool   `yaml:"enabled"`
	Timeout   int    `yaml:"timeout"` // seconds
	UserAgent string `yaml:"user_agent"`
}

type Status struct {
	Source        string     `json:"source"`
	LastCheckedAt *time.Time `json:"last_checked_at,omitempty"`
	LastSuccessAt *time.Time `json:"last_success_at,omitempty"`
	ItemCount     int        `json:"item_count"`
	LastError     string     `json:"last_error,omitempty"`
}
