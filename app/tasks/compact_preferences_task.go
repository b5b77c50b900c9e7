package tasks

import (
	"context"
	"fmt"
	"log/slog"
)

type CompactPreferencesTask struct {
	Task
	prefs PreferenceCompactor
}

func NewCompactPreferencesTask(prefs PreferenceCompactor) *CompactPreferencesTask {
	return &CompactPreferencesTask{
		Task:  NewTask(TaskTypeCompactPreferences, "*"),
		prefs: prefs,
	}
}

func (t *CompactPreferencesTask) Execute(ctx context.Context) error {
	removed, err := t.prefs.CompactDuplicates(ctx)
	if err != nil {
		return fmt.Errorf("failed to compact preferences: %w", err)
	}

	if removed > 0 {
		slog.Info("Duplicate preferences removed", "count", removed)
	}
	return nil
}
