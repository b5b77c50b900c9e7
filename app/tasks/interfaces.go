package tasks

import (
	"context"

	"github.com/lysyi3m/rss-picks/app/feed"
)

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Used by the main application to manage background task processing.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}

type SourceFetcher interface {
	Fetch(ctx context.Context, sourceName string) (*feed.Metadata, []feed.Item, error)
}

var _ SourceFetcher = (*feed.Source)(nil)

type PreferenceCompactor interface {
	CompactDuplicates(ctx context.Context) (int64, error)
}
