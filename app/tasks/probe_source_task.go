package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/rss-picks/app/feed"
)

// ProbeSourceTask checks that a source can be fetched and parsed and records
// the outcome. The fetched items are dropped.
type ProbeSourceTask struct {
	Task
	fetcher  SourceFetcher
	statuses *feed.StatusBoard
}

func NewProbeSourceTask(sourceName string, fetcher SourceFetcher, statuses *feed.StatusBoard) *ProbeSourceTask {
	return &ProbeSourceTask{
		Task:     NewTask(TaskTypeProbeSource, sourceName),
		fetcher:  fetcher,
		statuses: statuses,
	}
}

func (t *ProbeSourceTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	_, items, err := t.fetcher.Fetch(ctx, t.Subject)
	if err != nil {
		t.statuses.RecordFailure(t.Subject, err, time.Now())
		return fmt.Errorf("failed to probe source: %w", err)
	}

	t.statuses.RecordSuccess(t.Subject, len(items), time.Now())

	slog.Debug("Source probed", "source", t.Subject, "items", len(items), "duration", t.GetDuration())
	return nil
}
