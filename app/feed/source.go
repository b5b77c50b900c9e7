package feed

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/lysyi3m/rss-picks/app/errs"
	"github.com/lysyi3m/rss-picks/app/metrics"
)

const maxFeedBytes = 10 << 20

var ErrFeedTooLarge = errors.New("feed exceeds size limit")

// NewHTTPClient returns a client without an overall timeout. Each fetch is
// bounded by its source's own timeout through the request context.
func NewHTTPClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext
	transport.TLSHandshakeTimeout = 10 * time.Second

	return &http.Client{Transport: transport}
}

// Source fetches a configured remote feed and normalizes its entries.
// Every call goes to the network; nothing is kept between calls.
type Source struct {
	configs        *ConfigCache
	httpClient     *http.Client
	parser         *Parser
	userAgent      string
	defaultTimeout time.Duration
}

func NewSource(configs *ConfigCache, httpClient *http.Client, parser *Parser, userAgent string, defaultTimeout time.Duration) *Source {
	return &Source{
		configs:        configs,
		httpClient:     httpClient,
		parser:         parser,
		userAgent:      userAgent,
		defaultTimeout: defaultTimeout,
	}
}

func (s *Source) Fetch(ctx context.Context, sourceName string) (*Metadata, []Item, error) {
	sourceConfig, err := s.configs.GetConfig(sourceName)
	if err != nil {
		return nil, nil, err
	}

	started := time.Now()
	metadata, items, err := s.fetchAndParse(ctx, sourceConfig)
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	metrics.UpstreamFetchDuration.WithLabelValues(sourceName, outcome).Observe(time.Since(started).Seconds())

	if err != nil {
		slog.Error("Upstream feed error", "source", sourceName, "url", sourceConfig.URL, "error", err)
		return nil, nil, errs.Upstream(sourceName, err)
	}

	slog.Debug("Feed fetched", "source", sourceName, "items", len(items), "duration", time.Since(started))
	return metadata, items, nil
}

func (s *Source) fetchAndParse(ctx context.Context, sourceConfig *Config) (*Metadata, []Item, error) {
	data, err := s.fetch(ctx, sourceConfig)
	if err != nil {
		return nil, nil, err
	}

	return s.parser.Run(data)
}

func (s *Source) fetch(ctx context.Context, sourceConfig *Config) ([]byte, error) {
	timeout := s.defaultTimeout
	if sourceConfig.Settings.Timeout > 0 {
		timeout = time.Duration(sourceConfig.Settings.Timeout) * time.Second
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, sourceConfig.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", cmp.Or(sourceConfig.Settings.UserAgent, s.userAgent))

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(data) > maxFeedBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrFeedTooLarge, maxFeedBytes)
	}

	return data, nil
}
