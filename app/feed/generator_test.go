package feed

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func TestGeneratorBasicChannel(t *testing.T) {
	generator := NewGenerator("https://picks.example.com", "1.2.3")

	published := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	items := []Item{
		{
			GUID:        "https://example.com/a",
			Title:       "First Article",
			Link:        "https://example.com/a",
			Author:      "Alice",
			Categories:  []string{"News", "Local"},
			PublishedAt: &published,
			Content:     "<p>Hello</p>",
		},
	}

	output, err := generator.Run(Channel{
		Title:       "Campus",
		Link:        "https://example.com",
		Description: "Campus news",
		SelfPath:    "/browse/all?format=rss",
	}, items)
	if err != nil {
		t.Fatal(err)
	}

	expected := []string{
		`<?xml version="1.0" encoding="UTF-8"?>`,
		`<title>Campus</title>`,
		`<link>https://example.com</link>`,
		`<description>Campus news</description>`,
		`<atom:link href="https://picks.example.com/browse/all?format=rss" rel="self" type="application/rss+xml" />`,
		`<generator>RSS-Picks/1.2.3</generator>`,
		`<lastBuildDate>Fri, 01 Mar 2024 12:00:00 +0000</lastBuildDate>`,
		`<guid isPermaLink="true">https://example.com/a</guid>`,
		`<title>First Article</title>`,
		`<author>Alice</author>`,
		`<category>News</category>`,
		`<category>Local</category>`,
		`<pubDate>Fri, 01 Mar 2024 12:00:00 +0000</pubDate>`,
		`<content:encoded><![CDATA[<p>Hello</p>]]></content:encoded>`,
	}

	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("Expected output to contain %q", want)
		}
	}
}

func TestGeneratorWellFormedXML(t *testing.T) {
	generator := NewGenerator("https://picks.example.com", "dev")

	items := []Item{
		{Title: `Fish & Chips <today> "quoted"`, Author: "O'Brien", Categories: []string{"A&B"}},
		{Title: "Second", Content: "contains ]]> terminator"},
	}

	output, err := generator.Run(Channel{Title: "Tom & Jerry"}, items)
	if err != nil {
		t.Fatal(err)
	}

	decoder := xml.NewDecoder(strings.NewReader(output))
	for {
		_, err := decoder.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			t.Fatalf("Expected well-formed XML, got error: %v", err)
		}
	}

	if !strings.Contains(output, "<title>Tom &amp; Jerry</title>") {
		t.Error("Expected channel title to be escaped")
	}
	if !strings.Contains(output, "Fish &amp; Chips &lt;today&gt;") {
		t.Error("Expected item title to be escaped")
	}
	if !strings.Contains(output, "]]]]><![CDATA[>") {
		t.Error("Expected CDATA terminator to be split")
	}
}

func TestGeneratorWithoutBaseURL(t *testing.T) {
	generator := NewGenerator("", "dev")

	output, err := generator.Run(Channel{SelfPath: "/browse/all"}, nil)
	if err != nil {
		t.Fatal(err)
	}

	if strings.Contains(output, "atom:link href") {
		t.Error("Expected no atom:link without a base URL")
	}
	if !strings.Contains(output, "<title>RSS Picks</title>") {
		t.Error("Expected default channel title")
	}
	if !strings.Contains(output, "<description>Filtered feed</description>") {
		t.Error("Expected default channel description")
	}
}

func TestGeneratorEmptyItems(t *testing.T) {
	generator := NewGenerator("https://picks.example.com", "dev")

	output, err := generator.Run(Channel{Title: "Empty"}, []Item{})
	if err != nil {
		t.Fatal(err)
	}

	if strings.Contains(output, "<item>") {
		t.Error("Expected no items in output")
	}
	if !strings.Contains(output, "<lastBuildDate>") {
		t.Error("Expected lastBuildDate even without items")
	}
	if !strings.HasSuffix(output, "</channel>\n</rss>") {
		t.Error("Expected closed channel and rss elements")
	}
}

func TestGeneratorOmitsAbsentFields(t *testing.T) {
	generator := NewGenerator("", "dev")

	output, err := generator.Run(Channel{}, []Item{{Title: "Bare"}})
	if err != nil {
		t.Fatal(err)
	}

	for _, unwanted := range []string{"<guid", "<author>", "<category>", "<pubDate>", "<content:encoded>"} {
		if strings.Contains(output, unwanted) {
			t.Errorf("Expected output not to contain %q", unwanted)
		}
	}
}

func TestGeneratorIsURL(t *testing.T) {
	generator := NewGenerator("", "dev")

	tests := []struct {
		input    string
		expected bool
	}{
		{"https://example.com/item", true},
		{"http://example.com/item", true},
		{"urn:uuid:1234", false},
		{"http://", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := generator.isURL(tt.input); got != tt.expected {
			t.Errorf("isURL(%q) = %v, expected %v", tt.input, got, tt.expected)
		}
	}
}
