package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lysyi3m/rss-picks/app/errs"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Sample</title>
    <link>https://example.com</link>
    <item>
      <title>One</title>
      <author>alice@example.com (Alice)</author>
      <category>News</category>
    </item>
    <item>
      <title>Two</title>
    </item>
  </channel>
</rss>`

func newTestSource(t *testing.T, handler http.HandlerFunc) (*Source, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	configs := NewConfigCache("")
	if err := configs.Register(&Config{
		Name:     "sample",
		URL:      server.URL,
		Settings: ConfigSettings{Enabled: true},
	}); err != nil {
		t.Fatal(err)
	}

	return NewSource(configs, server.Client(), NewParser(), "RSS-Picks/test", 5*time.Second), server
}

func TestSourceFetchSuccess(t *testing.T) {
	var userAgent string
	source, _ := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(sampleRSS))
	})

	metadata, items, err := source.Fetch(context.Background(), "sample")
	if err != nil {
		t.Fatal(err)
	}

	if metadata.Title != "Sample" {
		t.Errorf("Expected feed title 'Sample', got '%s'", metadata.Title)
	}
	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}
	if items[0].Title != "One" {
		t.Errorf("Expected first item 'One', got '%s'", items[0].Title)
	}
	if userAgent != "RSS-Picks/test" {
		t.Errorf("Expected User-Agent 'RSS-Picks/test', got '%s'", userAgent)
	}
}

func TestSourceFetchUsesSourceUserAgent(t *testing.T) {
	var userAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("User-Agent")
		w.Write([]byte(sampleRSS))
	}))
	defer server.Close()

	configs := NewConfigCache("")
	if err := configs.Register(&Config{
		Name:     "custom",
		URL:      server.URL,
		Settings: ConfigSettings{Enabled: true, UserAgent: "Custom/1.0"},
	}); err != nil {
		t.Fatal(err)
	}

	source := NewSource(configs, server.Client(), NewParser(), "RSS-Picks/test", 5*time.Second)
	if _, _, err := source.Fetch(context.Background(), "custom"); err != nil {
		t.Fatal(err)
	}

	if userAgent != "Custom/1.0" {
		t.Errorf("Expected User-Agent 'Custom/1.0', got '%s'", userAgent)
	}
}

func TestSourceFetchHTTPError(t *testing.T) {
	source, _ := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusServiceUnavailable)
	})

	_, _, err := source.Fetch(context.Background(), "sample")
	if err == nil {
		t.Fatal("Expected error for non-200 response")
	}

	var upstreamErr *errs.UpstreamFeedError
	if !errors.As(err, &upstreamErr) {
		t.Errorf("Expected UpstreamFeedError, got %T: %v", err, err)
	}
}

func TestSourceFetchInvalidBody(t *testing.T) {
	source, _ := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("definitely not a feed"))
	})

	_, _, err := source.Fetch(context.Background(), "sample")

	var upstreamErr *errs.UpstreamFeedError
	if !errors.As(err, &upstreamErr) {
		t.Errorf("Expected UpstreamFeedError for unparseable body, got %v", err)
	}
}

func TestSourceFetchUnknownSource(t *testing.T) {
	source, _ := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("Expected no request for unknown source")
	})

	_, _, err := source.Fetch(context.Background(), "missing")
	if !errors.Is(err, errs.ErrUnknownSource) {
		t.Errorf("Expected ErrUnknownSource, got %v", err)
	}
}

func TestSourceFetchTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	configs := NewConfigCache("")
	if err := configs.Register(&Config{Name: "slow", URL: server.URL, Settings: ConfigSettings{Enabled: true}}); err != nil {
		t.Fatal(err)
	}

	source := NewSource(configs, server.Client(), NewParser(), "RSS-Picks/test", 50*time.Millisecond)

	started := time.Now()
	_, _, err := source.Fetch(context.Background(), "slow")
	if err == nil {
		t.Fatal("Expected timeout error")
	}
	if time.Since(started) > 5*time.Second {
		t.Errorf("Expected fetch to give up quickly, took %v", time.Since(started))
	}
}

func TestNewHTTPClientHasNoOverallTimeout(t *testing.T) {
	if client := NewHTTPClient(); client.Timeout != 0 {
		t.Errorf("Expected no client-wide timeout, got %v", client.Timeout)
	}
}

func TestSourceFetchHonorsLongerSourceTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(1200 * time.Millisecond):
		case <-r.Context().Done():
			return
		}
		w.Write([]byte(sampleRSS))
	}))
	defer server.Close()

	configs := NewConfigCache("")
	if err := configs.Register(&Config{
		Name:     "patient",
		URL:      server.URL,
		Settings: ConfigSettings{Enabled: true, Timeout: 3},
	}); err != nil {
		t.Fatal(err)
	}

	// The default timeout is shorter than the upstream delay; the source's own
	// timeout must apply instead.
	source := NewSource(configs, NewHTTPClient(), NewParser(), "RSS-Picks/test", 100*time.Millisecond)

	_, items, err := source.Fetch(context.Background(), "patient")
	if err != nil {
		t.Fatalf("Expected fetch within source timeout to succeed, got %v", err)
	}
	if len(items) != 2 {
		t.Errorf("Expected 2 items, got %d", len(items))
	}
}

func TestSourceFetchRejectsOversizedFeed(t *testing.T) {
	source, _ := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", maxFeedBytes+1)))
	})

	_, _, err := source.Fetch(context.Background(), "sample")
	if !errors.Is(err, ErrFeedTooLarge) {
		t.Errorf("Expected ErrFeedTooLarge, got %v", err)
	}
}
