package feed

import (
	"bytes"
	"cmp"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
)

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

func (p *Parser) Run(data []byte) (*Metadata, []Item, error) {
	feed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	metadata := &Metadata{
		Title:       feed.Title,
		Link:        feed.Link,
		Description: feed.Description,
		Language:    feed.Language,
	}

	if feed.Image != nil {
		metadata.ImageURL = feed.Image.URL
	}

	if feed.PublishedParsed != nil {
		metadata.FeedPublishedAt = feed.PublishedParsed
	}

	items := make([]Item, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		items = append(items, p.normalizeItem(item))
	}

	return metadata, items, nil
}

func (p *Parser) normalizeItem(item *gofeed.Item) Item {
	normalized := Item{
		GUID:    cmp.Or(item.GUID, item.Link),
		Title:   item.Title,
		Link:    item.Link,
		Content: cmp.Or(item.Content, item.Description),
		Author:  p.extractAuthor(item),
	}

	if item.PublishedParsed != nil {
		published := *item.PublishedParsed
		normalized.PublishedAt = &published
	}

	categories := make([]string, 0, len(item.Categories))
	for _, category := range item.Categories {
		if category = strings.TrimSpace(category); category != "" {
			categories = append(categories, category)
		}
	}
	if len(categories) > 0 {
		normalized.Categories = categories
	}

	return normalized
}

// extractAuthor keeps the first named author. Matching compares author names,
// so an e-mail only author is used as-is.
func (p *Parser) extractAuthor(item *gofeed.Item) string {
	for _, author := range item.Authors {
		if author == nil {
			continue
		}
		if name := strings.TrimSpace(cmp.Or(author.Name, author.Email)); name != "" {
			return name
		}
	}

	if item.Author != nil {
		return strings.TrimSpace(cmp.Or(item.Author.Name, item.Author.Email))
	}

	return ""
}
